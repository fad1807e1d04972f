package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordHasher turns plaintext passwords into salted one-way hashes and
// checks candidates against them.
type PasswordHasher interface {
	// Hash returns a new salted hash of password. Two calls with the same
	// password return different hashes.
	Hash(ctx context.Context, password string) ([]byte, error)

	// Verify reports whether password matches hash. A mismatch is (false, nil);
	// an error means the hash itself is unusable.
	Verify(ctx context.Context, password string, hash []byte) (bool, error)
}

// BcryptHasher implements PasswordHasher with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher returns a hasher using the given bcrypt work factor.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int { return h.cost }

func (h *BcryptHasher) Hash(_ context.Context, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password must not be empty", common.ErrInvalidInput)
	}
	if len(password) > MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password longer than %d bytes", common.ErrInvalidInput, MaxPasswordBytes)
	}

	plain := []byte(password)
	defer common.WipeByteArray(plain)

	hash, err := bcrypt.GenerateFromPassword(plain, h.cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt: %w", err)
	}
	return hash, nil
}

func (h *BcryptHasher) Verify(_ context.Context, password string, hash []byte) (bool, error) {
	plain := []byte(password)
	defer common.WipeByteArray(plain)

	err := bcrypt.CompareHashAndPassword(hash, plain)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, fmt.Errorf("bcrypt: %w", err)
	}
}
