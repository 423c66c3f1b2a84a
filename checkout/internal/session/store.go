package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keySession = "checkout:%s"

// ErrNotFound is returned when no checkout attempt is in flight for a user.
var ErrNotFound = errors.New("checkout session not found")

// Store keeps at most one in-flight checkout attempt per user.
type Store struct {
	cache *redis.Client
}

func NewStore(cache *redis.Client) *Store {
	return &Store{cache: cache}
}

func (s *Store) Load(c context.Context, userId uuid.UUID) (Session, error) {
	raw, err := s.cache.Get(c, fmt.Sprintf(keySession, userId.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed loading checkout session with error=%w", err)
	}
	session := Session{}
	if err := json.Unmarshal(raw, &session); err != nil {
		return Session{}, fmt.Errorf("failed unmarshaling checkout session with error=%w", err)
	}
	return session, nil
}

func (s *Store) Save(c context.Context, session Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed marshaling checkout session with error=%w", err)
	}
	err = s.cache.Set(c, fmt.Sprintf(keySession, session.UserID.String()), raw, 0).Err()
	if err != nil {
		return fmt.Errorf("failed saving checkout session with error=%w", err)
	}
	return nil
}

func (s *Store) Delete(c context.Context, userId uuid.UUID) error {
	err := s.cache.Del(c, fmt.Sprintf(keySession, userId.String())).Err()
	if err != nil {
		return fmt.Errorf("failed deleting checkout session with error=%w", err)
	}
	return nil
}
