package app

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

type envVars struct {
	Environment string `split_words:"true" default:"dev"`

	DataDir      string `split_words:"true" default:"."`
	PoolCapacity int    `split_words:"true" default:"100"`
	Strategy     string `split_words:"true" default:"LRU"`
}

// loadEnv merges an optional .env file with HEAPDB_-prefixed environment
// variables. A missing .env is fine; a malformed one is not.
func loadEnv() (envVars, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return envVars{}, fmt.Errorf("loading .env: %w", err)
	}

	var env envVars
	if err := envconfig.Process("HEAPDB", &env); err != nil {
		return envVars{}, fmt.Errorf("parsing environment: %w", err)
	}

	if env.Environment != EnvDev && env.Environment != EnvProd {
		return envVars{}, fmt.Errorf("invalid environment %q, must be dev or prod", env.Environment)
	}

	if env.PoolCapacity <= 0 {
		return envVars{}, fmt.Errorf("invalid pool capacity %d", env.PoolCapacity)
	}

	return env, nil
}
