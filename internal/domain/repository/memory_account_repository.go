package repository

import (
	"campus_auth/internal/common"
	"campus_auth/internal/domain/model"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// memoryAccountRepository keeps accounts in process memory. It is used for
// local development (STORAGE_DRIVER=memory) and tests.
type memoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[model.Variant]map[string]*model.Account
	now      func() time.Time
}

func NewMemoryAccountRepository() AccountRepository {
	return &memoryAccountRepository{
		accounts: map[model.Variant]map[string]*model.Account{
			model.VariantStudent: {},
			model.VariantFaculty: {},
		},
		now: time.Now,
	}
}

func (r *memoryAccountRepository) collection(v model.Variant) (map[string]*model.Account, error) {
	c, ok := r.accounts[v]
	if !ok {
		return nil, fmt.Errorf("unknown account variant %q", v)
	}
	return c, nil
}

func (r *memoryAccountRepository) FindByEmail(ctx context.Context, variant model.Variant, email string) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, err := r.collection(variant)
	if err != nil {
		return nil, err
	}
	a, ok := c[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memoryAccountRepository) Insert(ctx context.Context, account *model.Account) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.collection(account.Variant)
	if err != nil {
		return nil, err
	}
	if _, exists := c[account.Email]; exists {
		return nil, fmt.Errorf("%s with email %q already exists: %w", account.Variant, account.Email, common.ErrDuplicateEmail)
	}

	now := r.now()
	account.CreatedAt = now
	account.UpdatedAt = now
	stored := *account
	c[account.Email] = &stored
	return account, nil
}

func (r *memoryAccountRepository) Update(ctx context.Context, variant model.Variant, email string, patch model.AccountPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.collection(variant)
	if err != nil {
		return err
	}
	a, ok := c[email]
	if !ok {
		return common.ErrNotFound
	}
	if patch.PasswordHash == nil {
		return nil
	}
	a.PasswordHash = *patch.PasswordHash
	a.UpdatedAt = r.now()
	return nil
}

func (r *memoryAccountRepository) List(ctx context.Context, variant model.Variant) ([]*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, err := r.collection(variant)
	if err != nil {
		return nil, err
	}
	accounts := make([]*model.Account, 0, len(c))
	for _, a := range c {
		cp := *a
		accounts = append(accounts, &cp)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].ID < accounts[j].ID
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}
