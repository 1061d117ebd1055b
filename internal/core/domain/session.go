package domain

import (
	"context"
	"time"
)

// Cookie keys shared between the login flow and every protected page.
const (
	KeyToken    = "token"
	KeyRole     = "role"
	KeyEmail    = "email"
	KeyID       = "id"
	KeyUserCode = "userCode"
)

// SessionKeys lists the keys written together on login.
var SessionKeys = []string{KeyToken, KeyRole, KeyEmail, KeyID, KeyUserCode}

// DefaultSessionTTL is the expiry applied to every session key.
const DefaultSessionTTL = time.Hour

// Session is the set of identity claims held for a browser.
type Session struct {
	Token    string `json:"-"`
	Role     Role   `json:"role,omitempty"`
	Email    string `json:"email,omitempty"`
	ID       string `json:"id,omitempty"`
	UserCode string `json:"userCode,omitempty"`
}

// Authenticated is false whenever the token is absent, whatever else is set.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Get returns the value stored under one of the session keys.
func (s Session) Get(key string) (string, bool) {
	var v string
	switch key {
	case KeyToken:
		v = s.Token
	case KeyRole:
		v = string(s.Role)
	case KeyEmail:
		v = s.Email
	case KeyID:
		v = s.ID
	case KeyUserCode:
		v = s.UserCode
	}
	return v, v != ""
}

// Set assigns the value of one session key. Unknown keys are ignored.
func (s *Session) Set(key, value string) {
	switch key {
	case KeyToken:
		s.Token = value
	case KeyRole:
		s.Role = Role(value)
	case KeyEmail:
		s.Email = value
	case KeyID:
		s.ID = value
	case KeyUserCode:
		s.UserCode = value
	}
}

// Scope identifies the session for per-browser state such as the selected task.
func (s Session) Scope() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Email
}

type sessionKey struct{}

// ContextWithSession returns a copy of ctx carrying s.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored by ContextWithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// TokenFromContext returns the bearer token of the session carried by ctx.
func TokenFromContext(ctx context.Context) (string, bool) {
	s, ok := SessionFromContext(ctx)
	if !ok || !s.Authenticated() {
		return "", false
	}
	return s.Token, true
}
