// Package config reads client configuration from the environment.
package config

import (
	"os"
	"strings"
)

type Config struct {
	Server       string
	BaseURL      string
	LogLevel     string
	Verbose      bool
	RegistryFile string
}

func FromEnv() Config {
	return Config{
		Server:       getenv("FDSN_SERVER", "IRIS"),
		BaseURL:      getenv("FDSN_BASE_URL", ""),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		Verbose:      getbool("FDSN_VERBOSE", false),
		RegistryFile: getenv("FDSN_REGISTRY_FILE", ""),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}
