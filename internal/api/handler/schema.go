package handler

import (
	"time"

	"github.com/internhub/portal/internal/core/domain"
	"github.com/internhub/portal/internal/core/validation"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// validationResponse lists field messages; an empty map means the form passed.
type validationResponse struct {
	Errors validation.Errors `json:"errors"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    form:"email"    validate:"required,loose_email"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

type sessionResponse struct {
	Authenticated  bool        `json:"authenticated"`
	Role           domain.Role `json:"role,omitempty"`
	Email          string      `json:"email,omitempty"`
	ID             string      `json:"id,omitempty"`
	UserCode       string      `json:"userCode,omitempty"`
	Home           string      `json:"home"`
	TokenExpiresAt *time.Time  `json:"token_expires_at,omitempty"`
}

// --- Forms ---

type registrationRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	NIC             string `json:"nic"`
	DateOfBirth     string `json:"dob"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r registrationRequest) form() validation.Form {
	return validation.Form{
		validation.FieldFirstName:       r.FirstName,
		validation.FieldLastName:        r.LastName,
		validation.FieldEmail:           r.Email,
		validation.FieldPhone:           r.Phone,
		validation.FieldNIC:             r.NIC,
		validation.FieldDateOfBirth:     r.DateOfBirth,
		validation.FieldStartDate:       r.StartDate,
		validation.FieldEndDate:         r.EndDate,
		validation.FieldPassword:        r.Password,
		validation.FieldConfirmPassword: r.ConfirmPassword,
	}
}

func (r registrationRequest) user() domain.User {
	return domain.User{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Phone:           r.Phone,
		NIC:             r.NIC,
		DateOfBirth:     r.DateOfBirth,
		InternshipStart: r.StartDate,
		InternshipEnd:   r.EndDate,
		Role:            domain.RoleEmployee,
		Password:        r.Password,
	}
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r passwordRequest) form() validation.Form {
	return validation.Form{
		validation.FieldCurrentPassword: r.CurrentPassword,
		validation.FieldNewPassword:     r.NewPassword,
		validation.FieldConfirmPassword: r.ConfirmPassword,
	}
}

// --- Clock and tasks ---

type clockResponse struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
}

type selectedTaskResponse struct {
	Task domain.Task `json:"task"`
}
