package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/internhub/portal/internal/core/domain"
)

// Backend routes used by the portal.
const (
	pathLogin    = "/auth/login"
	pathRegister = "/users/register"
	pathUser     = "/users/%s"
	pathPassword = "/users/%s/password"
	pathHealth   = "/health"

	pictureField = "profilePicture"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Login exchanges credentials for the session claims. A rejected login is
// reported as domain.ErrInvalidCredentials, not as an expired session.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error) {
	var res domain.LoginResult
	err := c.doJSON(ctx, http.MethodPost, pathLogin, loginRequest{Email: creds.Email, Password: creds.Password}, &res)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if res.Token == "" {
		return nil, fmt.Errorf("login: %w: response without token", domain.ErrBackend)
	}
	if !res.Role.Valid() {
		return nil, fmt.Errorf("login: %w: unknown role %q", domain.ErrBackend, res.Role)
	}
	return &res, nil
}

// RegisterIntern creates an intern account; admin only on the backend.
func (c *Client) RegisterIntern(ctx context.Context, user domain.User) (*domain.User, error) {
	var created domain.User
	if err := c.doJSON(ctx, http.MethodPost, pathRegister, user, &created); err != nil {
		return nil, fmt.Errorf("register intern: %w", err)
	}
	return &created, nil
}

// UpdateProfile sends the profile as multipart form data, with the picture
// attached when one was picked.
func (c *Client) UpdateProfile(ctx context.Context, userID string, user domain.User, picture *domain.Upload) (*domain.User, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"firstName", user.FirstName},
		{"lastName", user.LastName},
		{"email", user.Email},
		{"phone", user.Phone},
		{"nic", user.NIC},
		{"dob", user.DateOfBirth},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	if picture != nil {
		fw, err := mw.CreateFormFile(pictureField, picture.Filename)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		if _, err := fw.Write(picture.Content); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, fmt.Sprintf(pathUser, url.PathEscape(userID)), &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var updated domain.User
	if err := c.do(req, &updated); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &updated, nil
}

// ChangePassword updates the password of userID. The backend answers a wrong
// current password with 401, which is reported as domain.ErrIncorrectPassword
// so it is not mistaken for an expired session.
func (c *Client) ChangePassword(ctx context.Context, userID string, change domain.PasswordChange) error {
	body := passwordRequest{CurrentPassword: change.CurrentPassword, NewPassword: change.NewPassword}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf(pathPassword, url.PathEscape(userID)), body, nil); err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return fmt.Errorf("change password: %w", domain.ErrIncorrectPassword)
		}
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}
