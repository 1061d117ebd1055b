package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/internhub/portal/internal/core/domain"
	"github.com/internhub/portal/internal/core/ports"
)

const (
	// SessionIDCookie holds the opaque id of a server-side session.
	SessionIDCookie = "sid"

	redisKeyPrefix = "portal:session:"
)

// RedisStore keeps the session keys in a Redis hash that expires with the
// session TTL. The browser only holds the session id.
type RedisStore struct {
	client *redis.Client
	opts   CookieOptions
	now    func() time.Time
}

var _ ports.SessionStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, opts CookieOptions) *RedisStore {
	return &RedisStore{client: client, opts: opts, now: time.Now}
}

func (s *RedisStore) key(sid string) string {
	return redisKeyPrefix + sid
}

func (s *RedisStore) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionIDCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

func (s *RedisStore) Get(r *http.Request, key string) (string, bool) {
	sid, ok := s.sessionID(r)
	if !ok || !isSessionKey(key) {
		return "", false
	}
	v, err := s.client.HGet(r.Context(), s.key(sid), key).Result()
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (s *RedisStore) Load(r *http.Request) (domain.Session, error) {
	var sess domain.Session
	sid, ok := s.sessionID(r)
	if !ok {
		return sess, nil
	}
	fields, err := s.client.HGetAll(r.Context(), s.key(sid)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sess, nil
		}
		return sess, fmt.Errorf("load session: %w", err)
	}
	for k, v := range fields {
		sess.Set(k, v)
	}
	return sess, nil
}

// Save stores every key under a fresh session id in one transaction, so a
// partially written session is never visible. Any previous session of the
// browser is dropped.
func (s *RedisStore) Save(w http.ResponseWriter, r *http.Request, sess domain.Session) error {
	if !sess.Authenticated() {
		return domain.ErrInvalidSession
	}

	fields := make(map[string]any, len(domain.SessionKeys))
	for _, k := range domain.SessionKeys {
		v, _ := sess.Get(k)
		fields[k] = v
	}

	ctx := r.Context()
	sid := uuid.NewString()
	ttl := s.opts.ttl()

	pipe := s.client.TxPipeline()
	if old, ok := s.sessionID(r); ok {
		pipe.Del(ctx, s.key(old))
	}
	pipe.HSet(ctx, s.key(sid), fields)
	pipe.Expire(ctx, s.key(sid), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	http.SetCookie(w, s.opts.cookie(SessionIDCookie, sid, true, s.now()))
	return nil
}

func (s *RedisStore) Clear(w http.ResponseWriter, r *http.Request) error {
	if sid, ok := s.sessionID(r); ok {
		if err := s.client.Del(r.Context(), s.key(sid)).Err(); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	http.SetCookie(w, s.opts.expired(SessionIDCookie, true))
	return nil
}
