package security

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used for stored passwords.
const DefaultBcryptCost = 10

// PasswordHasher hashes and verifies passwords. Both calls give up when ctx
// is done; the bcrypt computation itself is not interruptible.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	// Verify returns (false, nil) on mismatch and an error only when the
	// stored hash is unusable or ctx expired.
	Verify(ctx context.Context, password, hash string) (bool, error)
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	return bounded(ctx, func() (string, error) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
		if err != nil {
			return "", err
		}
		return string(hashed), nil
	})
}

func (h *BcryptHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	return bounded(ctx, func() (bool, error) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	})
}

type outcome[T any] struct {
	val T
	err error
}

func bounded[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	done := make(chan outcome[T], 1)
	go func() {
		v, err := fn()
		done <- outcome[T]{val: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-done:
		return res.val, res.err
	}
}
