// Package redis opens the connection that backs the server-side session store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultDialTimeout = 3 * time.Second
	defaultIOTimeout   = time.Second
	defaultAttempts    = 3
	defaultRetryWait   = 500 * time.Millisecond
)

// Config holds the settings of the session Redis.
type Config struct {
	Addr     string
	Password string
	DB       int

	DialTimeout time.Duration
	// IOTimeout bounds every read and write. Session lookups sit on the
	// request path, so it should stay well under a page render.
	IOTimeout time.Duration
	// Attempts is how many pings Connect tries before giving up, RetryWait
	// apart. Redis often starts after the portal in a fresh deployment.
	Attempts  int
	RetryWait time.Duration
}

func (c Config) withDefaults() Config {
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.IOTimeout <= 0 {
		c.IOTimeout = defaultIOTimeout
	}
	if c.Attempts <= 0 {
		c.Attempts = defaultAttempts
	}
	if c.RetryWait <= 0 {
		c.RetryWait = defaultRetryWait
	}
	return c
}

// Connect returns a client for cfg once Redis answers a ping. A wrong
// password fails on the first attempt; only unreachable servers are retried.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	cfg = cfg.withDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.IOTimeout,
		WriteTimeout: cfg.IOTimeout,
	})

	var err error
	for attempt := 1; ; attempt++ {
		if err = ping(ctx, client, cfg.DialTimeout); err == nil {
			return client, nil
		}
		if redis.IsAuthError(err) || attempt >= cfg.Attempts {
			break
		}
		if !sleep(ctx, cfg.RetryWait) {
			err = ctx.Err()
			break
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("session redis %s db %d: %w", cfg.Addr, cfg.DB, err)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Pinger returns the readiness check for client, bounded by timeout.
func Pinger(client redis.UniversalClient, timeout time.Duration) func(ctx context.Context) error {
	if timeout <= 0 {
		timeout = defaultIOTimeout
	}
	return func(ctx context.Context) error {
		return ping(ctx, client, timeout)
	}
}

func ping(ctx context.Context, client redis.UniversalClient, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
