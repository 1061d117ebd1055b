// Package validation holds the synchronous field validators used by the
// registration, profile and password forms. Every validator is pure: it
// returns a human-readable message, or "" when the value is acceptable.
package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

const (
	// DateLayout is the wire format of every date field.
	DateLayout = "2006-01-02"

	minAge = 16
	maxAge = 100

	// MaxPictureBytes caps profile picture uploads.
	MaxPictureBytes = 2 << 20
)

var pictureTypes = []string{"image/jpeg", "image/png", "image/webp"}

// PasswordPolicy is the single rule set applied to every password field.
type PasswordPolicy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

// DefaultPasswordPolicy requires 8 characters with upper, lower and digit.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 8, RequireUpper: true, RequireLower: true, RequireDigit: true}
}

// Option customises a Validator.
type Option func(*Validator)

// WithClock fixes the evaluation time used by date rules.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// WithLocation sets the timezone in which "today" is computed.
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) { v.loc = loc }
}

type Validator struct {
	engine *validator.Validate
	policy PasswordPolicy
	now    func() time.Time
	loc    *time.Location
}

func New(policy PasswordPolicy, opts ...Option) *Validator {
	engine := validator.New()
	if err := RegisterTags(engine); err != nil {
		panic(err)
	}
	if policy.MinLength <= 0 {
		policy.MinLength = DefaultPasswordPolicy().MinLength
	}
	v := &Validator{engine: engine, policy: policy, now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Engine exposes the underlying go-playground validator with the portal tags.
func (v *Validator) Engine() *validator.Validate {
	return v.engine
}

// Policy returns the password policy in force.
func (v *Validator) Policy() PasswordPolicy {
	return v.policy
}

func (v *Validator) matches(value, tag string) bool {
	return v.engine.Var(value, tag) == nil
}

func (v *Validator) today() time.Time {
	t := v.now().In(v.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, v.loc)
}

func (v *Validator) parseDate(value string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), v.loc)
	return t, err == nil
}

// Name checks a person-name field labelled label.
func (v *Validator) Name(label, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return label + " is required"
	}
	if !v.matches(value, TagPersonName) {
		return label + " must be 2-50 letters and spaces"
	}
	return ""
}

func (v *Validator) Email(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Email is required"
	}
	if !v.matches(value, TagEmail) {
		return "Enter a valid email address"
	}
	return ""
}

// Phone accepts Sri Lankan numbers; whitespace is ignored.
func (v *Validator) Phone(value string) string {
	value = strings.Join(strings.Fields(value), "")
	if value == "" {
		return "Phone number is required"
	}
	if !v.matches(value, TagPhone) {
		return "Enter a valid phone number (e.g. 0771234567 or +94771234567)"
	}
	return ""
}

func (v *Validator) NIC(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "NIC is required"
	}
	if !v.matches(value, TagNIC) {
		return "Enter a valid NIC (9 digits followed by V or X, or 12 digits)"
	}
	return ""
}

// DateOfBirth requires an age between 16 and 100 at evaluation time.
func (v *Validator) DateOfBirth(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Date of birth is required"
	}
	dob, ok := v.parseDate(value)
	if !ok {
		return "Enter a valid date of birth"
	}
	age := yearsBetween(dob, v.today())
	switch {
	case age < minAge:
		return fmt.Sprintf("You must be at least %d years old", minAge)
	case age > maxAge:
		return "Enter a valid date of birth"
	}
	return ""
}

func yearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	if to.Month() < from.Month() || (to.Month() == from.Month() && to.Day() < from.Day()) {
		years--
	}
	return years
}

// StartDate must not lie in the future.
func (v *Validator) StartDate(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Start date is required"
	}
	start, ok := v.parseDate(value)
	if !ok {
		return "Enter a valid start date"
	}
	if start.After(v.today()) {
		return "Start date cannot be in the future"
	}
	return ""
}

// EndDate must be strictly after the start date and not in the past.
func (v *Validator) EndDate(value, startValue string) string {
	if strings.TrimSpace(value) == "" {
		return "End date is required"
	}
	end, ok := v.parseDate(value)
	if !ok {
		return "Enter a valid end date"
	}
	if start, ok := v.parseDate(startValue); ok && !start.Before(end) {
		return "End date must be after the start date"
	}
	if end.Before(v.today()) {
		return "End date cannot be in the past"
	}
	return ""
}

// DateRange validates an internship period and keys errors by field.
func (v *Validator) DateRange(start, end string) Errors {
	errs := Errors{}
	errs.add(FieldStartDate, v.StartDate(start))
	errs.add(FieldEndDate, v.EndDate(end, start))
	return errs
}

// Password applies the policy to any password field, current or new.
func (v *Validator) Password(label, value string) string {
	if value == "" {
		return label + " is required"
	}
	p := v.policy
	if utf8.RuneCountInString(value) < p.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", label, p.MinLength)
	}

	var upper, lower, digit, special bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	var missing []string
	if p.RequireUpper && !upper {
		missing = append(missing, "an uppercase letter")
	}
	if p.RequireLower && !lower {
		missing = append(missing, "a lowercase letter")
	}
	if p.RequireDigit && !digit {
		missing = append(missing, "a digit")
	}
	if p.RequireSpecial && !special {
		missing = append(missing, "a special character")
	}
	if len(missing) > 0 {
		return fmt.Sprintf("%s must contain %s", label, joinList(missing))
	}
	return ""
}

func joinList(items []string) string {
	if len(items) == 1 {
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

// ConfirmPassword must repeat password exactly.
func (v *Validator) ConfirmPassword(value, password string) string {
	if value == "" {
		return "Please confirm the password"
	}
	if value != password {
		return "Passwords do not match"
	}
	return ""
}

// ProfilePicture accepts JPEG, PNG or WebP images up to MaxPictureBytes.
func (v *Validator) ProfilePicture(content []byte) string {
	if len(content) == 0 {
		return "Profile picture is empty"
	}
	if len(content) > MaxPictureBytes {
		return fmt.Sprintf("Profile picture must be at most %d MB", MaxPictureBytes>>20)
	}
	mt := mimetype.Detect(content)
	for _, allowed := range pictureTypes {
		if mt.Is(allowed) {
			return ""
		}
	}
	return "Profile picture must be a JPEG, PNG or WebP image"
}
