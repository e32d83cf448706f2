package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// User is one account row. TokenVersion is stamped into every token the
// account signs; revoking sessions bumps it so outstanding tokens stop
// matching before they expire.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	TokenVersion int
	CreatedAt    time.Time
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const userColumns = "id, username, email, password_hash, token_version, created_at"

func (r *Repo) Create(ctx context.Context, u *User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES (?, ?, ?, ?)
	`, u.ID, u.Username, u.Email, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Taken reports whether the username or the email already belongs to an
// account. Callers still rely on the unique indexes for races.
func (r *Repo) Taken(ctx context.Context, username, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE username = ? OR email = ?
	`, username, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check account taken: %w", err)
	}
	return n > 0, nil
}

func (r *Repo) ByEmail(ctx context.Context, email string) (*User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *Repo) ByID(ctx context.Context, id string) (*User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *Repo) one(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.TokenVersion, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &u, nil
}

// TokenVersion loads only the version column. A deleted account is an
// error, not version zero, so its tokens can never validate again.
func (r *Repo) TokenVersion(ctx context.Context, id string) (int, error) {
	var v int
	err := r.DB.QueryRowContext(ctx, `
		SELECT token_version FROM users WHERE id = ?
	`, id).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("token version: %w", err)
	}
	return v, nil
}

// SetPassword stores the new hash and revokes every outstanding session in
// the same statement.
func (r *Repo) SetPassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, token_version = token_version + 1
		WHERE id = ?
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return requireRow(res, "set password")
}

func (r *Repo) RevokeSessions(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET token_version = token_version + 1 WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return requireRow(res, "revoke sessions")
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: no such user", op)
	}
	return nil
}
