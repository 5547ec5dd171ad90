// Package revocation tracks access tokens that were revoked before their
// natural expiry, keyed by the token's jti claim.
package revocation

import (
	"context"
	"sync"
	"time"
)

// Denylist records revoked token ids until they would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryDenylist is a process-local Denylist. Expired entries are dropped
// lazily on write.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist(now func() time.Time) *MemoryDenylist {
	if now == nil {
		now = time.Now
	}
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     now,
	}
}

func (d *MemoryDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, exp := range d.entries {
		if !exp.After(now) {
			delete(d.entries, k)
		}
	}

	if expiresAt.After(now) {
		d.entries[jti] = expiresAt
	}
	return nil
}

func (d *MemoryDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.entries[jti]
	if !ok {
		return false, nil
	}
	return exp.After(d.now()), nil
}
