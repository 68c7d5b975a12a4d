package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const guardTTL = time.Hour

// ProvisionGuard serialises auto-provisioning across instances with a
// SETNX-style marker per user. The marker expires so a crashed provisioner
// does not block the user forever.
type ProvisionGuard struct {
	client *redis.Client
}

func NewProvisionGuard(client *redis.Client) *ProvisionGuard {
	return &ProvisionGuard{client: client}
}

// Acquire returns true when this caller owns provisioning for userID.
func (g *ProvisionGuard) Acquire(ctx context.Context, userID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(userID), "1", guardTTL).Result()
	if err != nil {
		return false, fmt.Errorf("provision guard: %w", err)
	}
	return ok, nil
}

func (g *ProvisionGuard) key(userID string) string {
	return "provision:" + userID
}
