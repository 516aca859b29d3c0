package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/tegflow/tegflow/internal/logger"
)

// envConfig carries defaults picked up from the environment.
type envConfig struct {
	DataDir   string `env:"TEGFLOW_DATA_DIR" envDefault:"."`
	LogLevel  string `env:"TEGFLOW_LOG_LEVEL" envDefault:"info"`
	SessionDB string `env:"TEGFLOW_SESSION_DB" envDefault:"tegflow.db"`
}

func main() {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read environment: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Console: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg, log).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
