package emailverification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository is a Repository kept in process memory
type InMemoryRepository struct {
	mu     sync.RWMutex
	tokens map[uuid.UUID]*VerificationToken
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{tokens: make(map[uuid.UUID]*VerificationToken)}
}

func (r *InMemoryRepository) CreateToken(ctx context.Context, token VerificationToken) (*VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token.ID = uuid.New()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	stored := token
	r.tokens[token.ID] = &stored
	return &token, nil
}

func (r *InMemoryRepository) GetTokenByValue(ctx context.Context, value string) (*VerificationToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tokens {
		if t.Token == value && t.DeletedAt == nil && t.VerifiedAt == nil {
			found := *t
			return &found, nil
		}
	}
	return nil, ErrTokenNotFound
}

func (r *InMemoryRepository) MarkTokenAsVerified(ctx context.Context, tokenID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[tokenID]
	if !ok {
		return ErrTokenNotFound
	}
	t.VerifiedAt = &at
	return nil
}

func (r *InMemoryRepository) SoftDeleteUserTokens(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, t := range r.tokens {
		if t.UserID == userID && t.DeletedAt == nil {
			t.DeletedAt = &now
		}
	}
	return nil
}

func (r *InMemoryRepository) CountRecentTokensByUserID(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, t := range r.tokens {
		if t.UserID == userID && t.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryRepository) CleanupExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, t := range r.tokens {
		if t.VerifiedAt == nil && now.After(t.ExpiresAt) {
			delete(r.tokens, id)
			removed++
		}
	}
	return removed, nil
}
