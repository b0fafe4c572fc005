package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName carries the opaque session token.
	CookieName = "warbler_session"

	// CurrUserField is the fixed hash field holding the logged-in user id.
	// A value of 0 (or a missing session) means not logged in.
	CurrUserField = "curr_user"
)

// Flash is a one-shot message rendered on the next page load.
type Flash struct {
	Level   string `json:"level"` // "success" or "danger"
	Message string `json:"message"`
}

// Session is the server-side state for one client.
type Session struct {
	Token  string
	UserID uint
}

// Store keeps sessions in Redis, one hash per token, TTL-refreshed on access.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(redisURL string, ttl time.Duration) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return NewStoreWithClient(client, ttl), nil
}

// NewStoreWithClient wraps an existing client (tests use miniredis here).
func NewStoreWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// New creates an anonymous session and returns it.
func (s *Store) New(ctx context.Context) (*Session, error) {
	token := uuid.New().String()

	key := sessionKey(token)
	if err := s.client.HSet(ctx, key, CurrUserField, 0).Err(); err != nil {
		return nil, err
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return nil, err
	}

	return &Session{Token: token}, nil
}

// Get resolves a token to its session. An unknown or expired token returns
// (nil, nil); the caller treats that identically to no session at all.
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	key := sessionKey(token)

	val, err := s.client.HGet(ctx, key, CurrUserField).Uint64()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Sliding expiry
	s.client.Expire(ctx, key, s.ttl)

	return &Session{Token: token, UserID: uint(val)}, nil
}

// Login records the user id in the session.
func (s *Store) Login(ctx context.Context, sess *Session, userID uint) error {
	sess.UserID = userID
	return s.client.HSet(ctx, sessionKey(sess.Token), CurrUserField, userID).Err()
}

// Logout clears the user id but keeps the session (and any pending flashes)
// alive so the goodbye flash still renders.
func (s *Store) Logout(ctx context.Context, sess *Session) error {
	sess.UserID = 0
	return s.client.HSet(ctx, sessionKey(sess.Token), CurrUserField, 0).Err()
}

// AddFlash queues a one-shot message for the session's next rendered page.
func (s *Store) AddFlash(ctx context.Context, token string, flash Flash) error {
	data, err := json.Marshal(flash)
	if err != nil {
		return err
	}

	key := flashesKey(token)
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

// PopFlashes drains and returns the session's pending flashes.
func (s *Store) PopFlashes(ctx context.Context, token string) ([]Flash, error) {
	key := flashesKey(token)

	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return nil, err
	}

	flashes := make([]Flash, 0, len(raw))
	for _, entry := range raw {
		var f Flash
		if err := json.Unmarshal([]byte(entry), &f); err != nil {
			continue
		}
		flashes = append(flashes, f)
	}

	return flashes, nil
}

// Destroy removes the session entirely.
func (s *Store) Destroy(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token), flashesKey(token)).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func sessionKey(token string) string {
	return "session:" + token
}

func flashesKey(token string) string {
	return "session:" + token + ":flashes"
}
