package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks that every value the server cannot run without is set.
func ValidateConfig(cfg *Config) error {
	var errors []string

	required := map[string]string{
		"server port": cfg.ServerPort,
		"db host":     cfg.DBHost,
		"db port":     cfg.DBPort,
		"db user":     cfg.DBUser,
		"db password": cfg.DBPassword,
		"db name":     cfg.DBName,
		"jwt secret":  cfg.JWTSecret,
	}
	for name, value := range required {
		if value == "" {
			errors = append(errors, fmt.Sprintf("required configuration %s is not set", name))
		}
	}

	switch cfg.StorageBackend {
	case "local", "s3":
	default:
		errors = append(errors, fmt.Sprintf("unknown storage backend %q", cfg.StorageBackend))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "\n"))
	}

	return nil
}
