package emailverification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by PostgresRepository, satisfied by
// *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Schema creates the table PostgresRepository uses
const Schema = `
CREATE TABLE IF NOT EXISTS email_confirmation_tokens (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id     UUID NOT NULL,
	email       TEXT NOT NULL,
	token       TEXT NOT NULL UNIQUE,
	redirect_to TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	expires_at  TIMESTAMPTZ NOT NULL,
	verified_at TIMESTAMPTZ,
	deleted_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS email_confirmation_tokens_user_id_idx ON email_confirmation_tokens (user_id);
`

// PostgresRepository stores confirmation tokens in PostgreSQL
type PostgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const tokenColumns = `id, user_id, email, token, redirect_to, created_at, expires_at, verified_at, deleted_at`

func scanToken(row pgx.Row) (*VerificationToken, error) {
	var vt VerificationToken
	err := row.Scan(
		&vt.ID,
		&vt.UserID,
		&vt.Email,
		&vt.Token,
		&vt.RedirectTo,
		&vt.CreatedAt,
		&vt.ExpiresAt,
		&vt.VerifiedAt,
		&vt.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &vt, nil
}

func (r *PostgresRepository) CreateToken(ctx context.Context, token VerificationToken) (*VerificationToken, error) {
	query := `
		INSERT INTO email_confirmation_tokens (user_id, email, token, redirect_to, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + tokenColumns

	return scanToken(r.db.QueryRow(ctx, query, token.UserID, token.Email, token.Token, token.RedirectTo, token.ExpiresAt))
}

func (r *PostgresRepository) GetTokenByValue(ctx context.Context, token string) (*VerificationToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM email_confirmation_tokens
		WHERE token = $1
		AND deleted_at IS NULL
		AND verified_at IS NULL`

	return scanToken(r.db.QueryRow(ctx, query, token))
}

func (r *PostgresRepository) MarkTokenAsVerified(ctx context.Context, tokenID uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE email_confirmation_tokens SET verified_at = $2 WHERE id = $1`, tokenID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (r *PostgresRepository) SoftDeleteUserTokens(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE email_confirmation_tokens
		SET deleted_at = NOW()
		WHERE user_id = $1
		AND deleted_at IS NULL`

	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *PostgresRepository) CountRecentTokensByUserID(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM email_confirmation_tokens WHERE user_id = $1 AND created_at > $2`,
		userID, since,
	).Scan(&count)
	return count, err
}

func (r *PostgresRepository) CleanupExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM email_confirmation_tokens
		WHERE expires_at < $1
		AND verified_at IS NULL`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
