package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	// EnvPrinter names the printer used when --printer is not given
	EnvPrinter = "PRINTLINK_PRINTER"

	// EnvTimeout overrides the dial timeout, in seconds
	EnvTimeout = "PRINTLINK_TIMEOUT"

	// EnvFile is the dotenv file read from the working directory
	EnvFile = ".env"
)

// LoadEnv loads variables from dotenv files into the process environment.
// With no arguments it reads EnvFile. Missing files are skipped and
// variables already set in the environment are never overridden.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{EnvFile}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// TimeoutFromEnv returns the dial timeout in seconds from EnvTimeout, or
// fallback when it is unset or not a positive integer.
func TimeoutFromEnv(fallback int) int {
	if v := getEnvAsInt(EnvTimeout, fallback); v > 0 {
		return v
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(name string, defaultValue int) int {
	valueStr := getEnv(name, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
