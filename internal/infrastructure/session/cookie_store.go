// Package session implements ports.SessionStore. CookieStore keeps the five
// session keys in browser cookies; RedisStore keeps them server-side behind
// an opaque session id.
package session

import (
	"net/http"
	"net/url"
	"time"

	"github.com/internhub/portal/internal/core/domain"
	"github.com/internhub/portal/internal/core/ports"
)

// CookieOptions are the attributes shared by every cookie a store writes.
type CookieOptions struct {
	TTL    time.Duration
	Secure bool
	Domain string
}

func (o CookieOptions) ttl() time.Duration {
	if o.TTL <= 0 {
		return domain.DefaultSessionTTL
	}
	return o.TTL
}

func (o CookieOptions) cookie(name, value string, httpOnly bool, now time.Time) *http.Cookie {
	ttl := o.ttl()
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   o.Domain,
		MaxAge:   int(ttl / time.Second),
		Expires:  now.Add(ttl),
		Secure:   o.Secure,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	}
}

func (o CookieOptions) expired(name string, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   o.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   o.Secure,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookieStore writes one cookie per session key. The token cookie is
// HttpOnly; the other claims stay readable by the SPA.
type CookieStore struct {
	opts CookieOptions
	now  func() time.Time
}

var _ ports.SessionStore = (*CookieStore)(nil)

func NewCookieStore(opts CookieOptions) *CookieStore {
	return &CookieStore{opts: opts, now: time.Now}
}

func isSessionKey(key string) bool {
	for _, k := range domain.SessionKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (s *CookieStore) Get(r *http.Request, key string) (string, bool) {
	if !isSessionKey(key) {
		return "", false
	}
	c, err := r.Cookie(key)
	if err != nil || c.Value == "" {
		return "", false
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return c.Value, true
	}
	return v, v != ""
}

func (s *CookieStore) Load(r *http.Request) (domain.Session, error) {
	var sess domain.Session
	for _, key := range domain.SessionKeys {
		if v, ok := s.Get(r, key); ok {
			sess.Set(key, v)
		}
	}
	return sess, nil
}

// Save writes all five keys with the same expiry. Empty claims are written
// as expired cookies so nothing survives from a previous session.
func (s *CookieStore) Save(w http.ResponseWriter, _ *http.Request, sess domain.Session) error {
	if !sess.Authenticated() {
		return domain.ErrInvalidSession
	}
	now := s.now()
	for _, key := range domain.SessionKeys {
		httpOnly := key == domain.KeyToken
		v, ok := sess.Get(key)
		if !ok {
			http.SetCookie(w, s.opts.expired(key, httpOnly))
			continue
		}
		http.SetCookie(w, s.opts.cookie(key, url.QueryEscape(v), httpOnly, now))
	}
	return nil
}

func (s *CookieStore) Clear(w http.ResponseWriter, _ *http.Request) error {
	for _, key := range domain.SessionKeys {
		http.SetCookie(w, s.opts.expired(key, key == domain.KeyToken))
	}
	return nil
}
