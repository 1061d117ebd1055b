package domain

// User is the profile record exchanged with the backend on registration and
// profile edits. Dates are ISO-8601 calendar dates.
type User struct {
	ID              string `json:"id,omitempty"`
	UserCode        string `json:"userCode,omitempty"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	NIC             string `json:"nic,omitempty"`
	DateOfBirth     string `json:"dob,omitempty"`
	InternshipStart string `json:"startDate,omitempty"`
	InternshipEnd   string `json:"endDate,omitempty"`
	Role            Role   `json:"role,omitempty"`
	Password        string `json:"password,omitempty"`
}

// LoginResult is the backend's answer to a successful login; every field
// becomes a session key.
type LoginResult struct {
	Token    string `json:"token"`
	Role     Role   `json:"role"`
	Email    string `json:"email"`
	ID       string `json:"id"`
	UserCode string `json:"userCode"`
}

// Session converts the login result into the session written to the store.
func (r LoginResult) Session() Session {
	return Session{
		Token:    r.Token,
		Role:     r.Role,
		Email:    r.Email,
		ID:       r.ID,
		UserCode: r.UserCode,
	}
}
