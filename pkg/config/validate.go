package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for invalid or inconsistent values.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("invalid value for %s (rule: %s)", e.Namespace(), e.Tag())
		}
		return err
	}

	if err := cfg.Database.Validate(); err != nil {
		return err
	}

	return cfg.API.Validate()
}
