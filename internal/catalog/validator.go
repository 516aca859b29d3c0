package catalog

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	tegerrors "github.com/tegflow/tegflow/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
		ve := ves[0]
		return tegerrors.NewValidationError(tegerrors.KindInvalidField, ve.Namespace(), fmt.Sprintf("failed validation for tag %q", ve.Tag()))
	}

	return tegerrors.NewValidationError(tegerrors.KindInvalidField, "", err.Error())
}
