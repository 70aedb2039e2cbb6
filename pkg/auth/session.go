// Package auth resolves the caller identity (user id, role, chef id) that the
// inventory handlers authorize against. Identities arrive either as an HS256
// bearer token or in a session written by the external login flow.
//
// Session keys should be 32 or 64 bytes for HMAC authentication,
// and 16, 24, or 32 bytes for AES encryption:
//
//	openssl rand -base64 32
package auth

import (
	"bytes"
	"context"
	"encoding/base32"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/larder/pkg/cache"
	"github.com/ghuser/larder/pkg/config"
)

const (
	sessionKeyPrefix = "session"
	sessionMaxAge    = 86400 * 7
)

// NewSessionStore returns the session store for cfg. With Redis available the
// identity stays server-side and only an encrypted id travels in the cookie;
// without it (the memory storage driver) the identity is kept in the
// encrypted cookie itself.
func NewSessionStore(cfg *config.Config, rc *cache.RedisClient) sessions.Store {
	secure := cfg.Environment == config.EnvProduction
	authKey, encKey := []byte(cfg.SessionAuthKey), []byte(cfg.SessionEncryptionKey)
	if rc != nil {
		return NewRedisStore(rc, authKey, encKey, secure)
	}
	store := sessions.NewCookieStore(authKey, encKey)
	store.Options = sessionOptions(secure)
	return store
}

func sessionOptions(secure bool) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// RedisStore is a sessions.Store backed by Redis. Keys are
// "<namespace>:session:<id>" with a TTL equal to the session MaxAge that is
// renewed on every read; values are gob-encoded.
type RedisStore struct {
	client  *cache.RedisClient
	codecs  []securecookie.Codec
	options *sessions.Options
}

// NewRedisStore creates a Redis-backed session store. secureCookie restricts
// the cookie to HTTPS.
func NewRedisStore(client *cache.RedisClient, authKey, encryptionKey []byte, secureCookie bool) *RedisStore {
	return &RedisStore{
		client:  client,
		codecs:  securecookie.CodecsFromPairs(authKey, encryptionKey),
		options: sessionOptions(secureCookie),
	}
}

// Get returns a session for the given name, loading from Redis if a valid
// session cookie exists.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie, or starts a new one.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	// A tampered cookie or an expired Redis key both yield a fresh session.
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil
	}
	session.ID = id
	if err := s.load(r.Context(), session); err != nil {
		return session, nil
	}
	session.IsNew = false
	return session, nil
}

// Save persists the session and writes the cookie. MaxAge < 0 logs the user out.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			_ = s.client.Client().Del(r.Context(), s.key(session.ID)).Err()
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = strings.TrimRight(
			base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
			"=",
		)
	}

	if err := s.save(r.Context(), session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *RedisStore) save(ctx context.Context, session *sessions.Session) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(session.Values); err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}
	if err := s.client.Client().Set(ctx, s.key(session.ID), buf.Bytes(), ttl(session.Options)).Err(); err != nil {
		return fmt.Errorf("set session in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, session *sessions.Session) error {
	data, err := s.client.Client().GetEx(ctx, s.key(session.ID), ttl(session.Options)).Bytes()
	if errors.Is(err, redis.Nil) {
		return errSessionExpired
	}
	if err != nil {
		return fmt.Errorf("get session from redis: %w", err)
	}
	return gob.NewDecoder(bytes.NewReader(data)).Decode(&session.Values)
}

var errSessionExpired = errors.New("session expired")

func (s *RedisStore) key(id string) string {
	return s.client.Key(sessionKeyPrefix, id)
}

func ttl(opts *sessions.Options) time.Duration {
	return time.Duration(opts.MaxAge) * time.Second
}
