package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/telcocrm/crm-system/internal/core/domain"
)

// SessionStore persists sessions as Redis hashes. The field names are kept
// identical to the storage keys the legacy frontend used so that dumps stay
// readable to operators who knew the old system.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	return &domain.Session{
		ID:          id,
		IsLoggedIn:  fields["isLoggedIn"] == "true",
		Role:        fields["userRole"],
		UserID:      fields["userId"],
		Email:       fields["email"],
		UserName:    fields["userName"],
		Token:       fields["token"],
		CustomerID:  fields["customerId"],
		HasCustomer: fields["hasCustomer"] == "true",
	}, nil
}

// Save writes the full session record and refreshes its TTL. Login overwrites
// every field; there is no partial save.
func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	key := sessionKey(sess.ID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"isLoggedIn":  strconv.FormatBool(sess.IsLoggedIn),
		"userRole":    sess.Role,
		"userId":      sess.UserID,
		"email":       sess.Email,
		"userName":    sess.UserName,
		"token":       sess.Token,
		"customerId":  sess.CustomerID,
		"hasCustomer": strconv.FormatBool(sess.HasCustomer),
	})
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *SessionStore) SetCustomer(ctx context.Context, id, customerID string) error {
	err := s.client.HSet(ctx, sessionKey(id), map[string]any{
		"customerId":  customerID,
		"hasCustomer": "true",
	}).Err()
	if err != nil {
		return fmt.Errorf("session set customer: %w", err)
	}
	return nil
}

// Clear removes the session hash, and with it all eight fields at once.
func (s *SessionStore) Clear(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
