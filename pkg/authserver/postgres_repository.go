package authserver

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by PostgresAccountRepository, satisfied by
// *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Schema creates the accounts table
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	email              TEXT NOT NULL UNIQUE,
	password_hash      TEXT NOT NULL,
	role               TEXT NOT NULL DEFAULT 'authenticated',
	user_metadata      JSONB NOT NULL DEFAULT '{}'::jsonb,
	email_confirmed_at TIMESTAMPTZ,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const uniqueViolation = "23505"

// PostgresAccountRepository stores accounts in PostgreSQL
type PostgresAccountRepository struct {
	db DBTX
}

func NewPostgresAccountRepository(db DBTX) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

const accountColumns = `id, email, password_hash, role, user_metadata, email_confirmed_at, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&a.Metadata,
		&a.EmailConfirmedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, account Account) (*Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if account.Role == "" {
		account.Role = "authenticated"
	}
	if account.Metadata == nil {
		account.Metadata = map[string]any{}
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = account.CreatedAt
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO accounts (id, email, password_hash, role, user_metadata, email_confirmed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+accountColumns,
		account.ID,
		NormalizeEmail(account.Email),
		account.PasswordHash,
		account.Role,
		account.Metadata,
		account.EmailConfirmedAt,
		account.CreatedAt,
		account.UpdatedAt,
	)
	created, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	return created, nil
}

func (r *PostgresAccountRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

func (r *PostgresAccountRepository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, NormalizeEmail(email)))
}

// ConfirmEmail sets email_confirmed_at unless it is already set
func (r *PostgresAccountRepository) ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) (*Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `
		UPDATE accounts
		SET email_confirmed_at = COALESCE(email_confirmed_at, $2),
		    updated_at = CASE WHEN email_confirmed_at IS NULL THEN $2 ELSE updated_at END
		WHERE id = $1
		RETURNING `+accountColumns, id, at))
}
