package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var validate = validator.New()

// Validate checks the `validate` struct tags of v.
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// LogValidationErrors logs one line per field that failed validation.
func LogValidationErrors(logger *log.Entry, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		if err != nil {
			logger.WithError(err).Error("ConfigError")
		}
		return
	}
	for _, err := range validationErrors {
		fieldName := stripPrefix(err.Namespace())
		tag := err.Tag()
		switch tag {
		case "required":
			logger.Errorf("ConfigError: Field %s is required but was not found", fieldName)
		default:
			logger.Errorf("ConfigError: Field %s has invalid value %v: %s", fieldName, err.Value(), tag)
		}
	}
}

func stripPrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}
