package validation

import "strings"

// Field names shared by the portal forms and the backend payloads.
const (
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldNIC             = "nic"
	FieldDateOfBirth     = "dob"
	FieldStartDate       = "start_date"
	FieldEndDate         = "end_date"
	FieldPassword        = "password"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldConfirmPassword = "confirm_password"
	FieldProfilePicture  = "profile_picture"
)

// Form is a snapshot of a form's string values keyed by field name.
type Form map[string]string

// Errors maps a field name to its validation message.
type Errors map[string]string

func (e Errors) add(field, msg string) {
	if msg != "" {
		e[field] = msg
	}
}

// Valid reports whether no field failed.
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Schema names a form and the fields it validates, in display order.
type Schema struct {
	Name   string
	Fields []string
}

var (
	Registration = Schema{
		Name: "registration",
		Fields: []string{
			FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldNIC, FieldDateOfBirth,
			FieldStartDate, FieldEndDate, FieldPassword, FieldConfirmPassword,
		},
	}
	Profile = Schema{
		Name:   "profile",
		Fields: []string{FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldNIC, FieldDateOfBirth},
	}
	PasswordChange = Schema{
		Name:   "password",
		Fields: []string{FieldCurrentPassword, FieldNewPassword, FieldConfirmPassword},
	}
)

var schemas = map[string]Schema{
	Registration.Name:   Registration,
	Profile.Name:        Profile,
	PasswordChange.Name: PasswordChange,
}

// Lookup returns the schema registered under name.
func Lookup(name string) (Schema, bool) {
	s, ok := schemas[strings.ToLower(name)]
	return s, ok
}

// Field validates one field of form by the family its name belongs to.
// Unknown fields are accepted.
func (v *Validator) Field(name, value string, form Form) string {
	switch name {
	case FieldFirstName:
		return v.Name("First name", value)
	case FieldLastName:
		return v.Name("Last name", value)
	case FieldEmail:
		return v.Email(value)
	case FieldPhone:
		return v.Phone(value)
	case FieldNIC:
		return v.NIC(value)
	case FieldDateOfBirth:
		return v.DateOfBirth(value)
	case FieldStartDate:
		return v.StartDate(value)
	case FieldEndDate:
		return v.EndDate(value, form[FieldStartDate])
	case FieldPassword:
		return v.Password("Password", value)
	case FieldCurrentPassword:
		return v.Password("Current password", value)
	case FieldNewPassword:
		return v.Password("New password", value)
	case FieldConfirmPassword:
		if pw, ok := form[FieldNewPassword]; ok {
			return v.ConfirmPassword(value, pw)
		}
		return v.ConfirmPassword(value, form[FieldPassword])
	}
	return ""
}

// Validate runs every field of schema against form and aggregates the
// failures. A non-empty result blocks submission.
func (v *Validator) Validate(schema Schema, form Form) Errors {
	errs := Errors{}
	for _, field := range schema.Fields {
		errs.add(field, v.Field(field, form[field], form))
	}
	return errs
}
