package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
)

// ValidationError converts an ozzo-validation result into a domain
// ValidationError carrying per-field messages. nil stays nil.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for field, fe := range fieldErrs {
			if fe != nil {
				fields[field] = fe.Error()
			}
		}
		return &domain.ValidationError{Message: "validation failed", Fields: fields}
	}

	return &domain.ValidationError{Message: err.Error()}
}

// NotBlank rejects strings that are empty after trimming whitespace
func NotBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// OptionalMaxLength bounds the value of a present OptionalString
func OptionalMaxLength(max int) validation.RuleFunc {
	return func(value interface{}) error {
		o, ok := value.(models.OptionalString)
		if !ok || !o.Present || o.Value == nil {
			return nil
		}
		if utf8.RuneCountInString(*o.Value) > max {
			return fmt.Errorf("the length must be no more than %d", max)
		}
		return nil
	}
}
