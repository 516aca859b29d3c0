// Package catalog implements the one validation contract every id-keyed
// entity collection shares: ids must be unique within the collection, and
// every cross-reference must resolve to an id that exists in its target
// collection. The concrete catalogs (board, pieces, dice) and the rule
// goals all instantiate these two checks instead of re-deriving them.
package catalog

import (
	"fmt"

	tegerrors "github.com/tegflow/tegflow/pkg/errors"
)

// Unique indexes the items by id and fails on the first collision.
// Insertion order is irrelevant for uniqueness; the first duplicate
// encountered in sequence order aborts.
func Unique[T any, K comparable](items []T, field string, id func(T) K) (map[K]struct{}, error) {
	seen := make(map[K]struct{}, len(items))
	for _, item := range items {
		key := id(item)
		if _, dup := seen[key]; dup {
			return nil, tegerrors.NewDuplicateID(field, fmt.Sprint(key))
		}
		seen[key] = struct{}{}
	}
	return seen, nil
}

// References verifies that every foreign key extracted from the items
// resolves within the given id set, failing on the first miss.
func References[T any, K comparable](items []T, ids map[K]struct{}, from func(T) string, refs func(T) []K) error {
	for _, item := range items {
		for _, ref := range refs(item) {
			if _, ok := ids[ref]; !ok {
				return tegerrors.NewUnknownReference(from(item), fmt.Sprint(ref))
			}
		}
	}
	return nil
}
