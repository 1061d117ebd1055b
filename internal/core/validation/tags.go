package validation

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Format tags registered on the validator engine. Request DTOs may use them
// in `validate` struct tags as well.
const (
	TagPersonName = "person_name"
	TagEmail      = "loose_email"
	TagPhone      = "lk_phone"
	TagNIC        = "lk_nic"
)

var patterns = map[string]*regexp.Regexp{
	TagPersonName: regexp.MustCompile(`^[A-Za-z ]{2,50}$`),
	TagEmail:      regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`),
	// Sri Lankan numbers: optional +94 or 0 prefix, then nine digits not starting with 0.
	TagPhone: regexp.MustCompile(`^(?:\+94|0)?[1-9]\d{8}$`),
	// Legacy 9 digits plus V/X, or the 12-digit form.
	TagNIC: regexp.MustCompile(`^(?:\d{9}[VvXx]|\d{12})$`),
}

// RegisterTags adds the portal's format tags to v.
func RegisterTags(v *validator.Validate) error {
	for tag, re := range patterns {
		re := re
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}
