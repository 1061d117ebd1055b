package domain

// Credentials are submitted by the login form.
type Credentials struct {
	Email    string
	Password string
}

// PasswordChange carries a password update for the signed-in user.
type PasswordChange struct {
	CurrentPassword string
	NewPassword     string
}

// Upload is a file picked in a form.
type Upload struct {
	Field    string
	Filename string
	Content  []byte
}
