package auth

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// BoundedHasher caps how many hash or verify calls run at once. Callers over
// the limit wait for a slot or for their context to end.
type BoundedHasher struct {
	next PasswordHasher
	sem  *semaphore.Weighted
}

var _ PasswordHasher = (*BoundedHasher)(nil)

// NewBoundedHasher wraps next with a limit of n concurrent operations.
// n below 1 is treated as 1.
func NewBoundedHasher(next PasswordHasher, n int) *BoundedHasher {
	if n < 1 {
		n = 1
	}
	return &BoundedHasher{next: next, sem: semaphore.NewWeighted(int64(n))}
}

func (h *BoundedHasher) Hash(ctx context.Context, password string) ([]byte, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for hash slot: %w", err)
	}
	defer h.sem.Release(1)

	return h.next.Hash(ctx, password)
}

func (h *BoundedHasher) Verify(ctx context.Context, password string, hash []byte) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("wait for hash slot: %w", err)
	}
	defer h.sem.Release(1)

	return h.next.Verify(ctx, password, hash)
}
