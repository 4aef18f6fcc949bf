package authserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteAccountRepository stores accounts in a SQLite database opened with
// the modernc.org/sqlite driver:
//
//	db, err := sql.Open("sqlite", "file:skycast.db")
type SQLiteAccountRepository struct {
	db *sql.DB
}

// NewSQLiteAccountRepository creates the accounts table if needed and
// returns the repository
func NewSQLiteAccountRepository(db *sql.DB) (*SQLiteAccountRepository, error) {
	r := &SQLiteAccountRepository{db: db}
	if err := r.initSchema(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SQLiteAccountRepository) initSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			user_metadata TEXT NOT NULL,
			email_confirmed_at TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (r *SQLiteAccountRepository) CreateAccount(ctx context.Context, account Account) (*Account, error) {
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
	account.Email = NormalizeEmail(account.Email)

	metadata, err := json.Marshal(account.Metadata)
	if err != nil {
		return nil, err
	}
	var confirmedAt sql.NullString
	if account.EmailConfirmedAt != nil {
		confirmedAt = sql.NullString{String: formatTime(*account.EmailConfirmedAt), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, password_hash, role, user_metadata, email_confirmed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID.String(),
		account.Email,
		account.PasswordHash,
		account.Role,
		string(metadata),
		confirmedAt,
		formatTime(account.CreatedAt),
		formatTime(account.UpdatedAt),
	)
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	return r.GetAccountByID(ctx, account.ID)
}

func (r *SQLiteAccountRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return r.scan(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id.String()))
}

func (r *SQLiteAccountRepository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	return r.scan(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, NormalizeEmail(email)))
}

func (r *SQLiteAccountRepository) ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) (*Account, error) {
	ts := formatTime(at)
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET email_confirmed_at = ?, updated_at = ?
		WHERE id = ? AND email_confirmed_at IS NULL`,
		ts, ts, id.String(),
	)
	if err != nil {
		return nil, err
	}
	if _, err := res.RowsAffected(); err != nil {
		return nil, err
	}
	return r.GetAccountByID(ctx, id)
}

func (r *SQLiteAccountRepository) scan(row *sql.Row) (*Account, error) {
	var (
		a           Account
		id          string
		metadata    string
		confirmedAt sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&id, &a.Email, &a.PasswordHash, &a.Role, &metadata, &confirmedAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if a.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metadata), &a.Metadata); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}
	if confirmedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, confirmedAt.String)
		if err != nil {
			return nil, err
		}
		a.EmailConfirmedAt = &t
	}
	return &a, nil
}
