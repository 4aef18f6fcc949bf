package authserver

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryAccountRepository keeps accounts in memory
type InMemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*Account
	byEmail  map[string]uuid.UUID
}

func NewInMemoryAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{
		accounts: make(map[uuid.UUID]*Account),
		byEmail:  make(map[string]uuid.UUID),
	}
}

func (r *InMemoryAccountRepository) CreateAccount(ctx context.Context, account Account) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account.Email = NormalizeEmail(account.Email)
	if _, exists := r.byEmail[account.Email]; exists {
		return nil, ErrAccountExists
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = account.CreatedAt
	}

	stored := cloneAccount(&account)
	r.accounts[account.ID] = stored
	r.byEmail[account.Email] = account.ID
	return cloneAccount(stored), nil
}

func (r *InMemoryAccountRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

func (r *InMemoryAccountRepository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(r.accounts[id]), nil
}

func (r *InMemoryAccountRepository) ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if account.EmailConfirmedAt == nil {
		confirmedAt := at
		account.EmailConfirmedAt = &confirmedAt
		account.UpdatedAt = at
	}
	return cloneAccount(account), nil
}

// cloneAccount copies an account so callers never share the stored
// metadata map or confirmation time
func cloneAccount(src *Account) *Account {
	dst := *src
	dst.Metadata = maps.Clone(src.Metadata)
	if src.EmailConfirmedAt != nil {
		at := *src.EmailConfirmedAt
		dst.EmailConfirmedAt = &at
	}
	return &dst
}
