package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// User Methods
// -----------------------------------------------------------------------------

const userColumns = `id, name, email, password_hash, role, profile, is_active, is_verified,
	last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*UserRecord, error) {
	var u UserRecord
	var profileJSON []byte
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &profileJSON,
		&u.IsActive, &u.IsVerified, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(profileJSON) > 0 {
		if err := json.Unmarshal(profileJSON, &u.Profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile for user %s: %w", u.ID, err)
		}
	}
	return &u, nil
}

// CreateUser inserts a new account. A duplicate email returns ErrUniqueViolation.
func (db *DB) CreateUser(ctx context.Context, input *UserCreateInput) (*UserRecord, error) {
	profileJSON, err := json.Marshal(input.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	u, err := scanUser(db.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, profile)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		input.Name, strings.ToLower(strings.TrimSpace(input.Email)), input.PasswordHash, input.Role, profileJSON,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUniqueViolation
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUserByID retrieves an account by ID. Returns nil, nil when absent.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*UserRecord, error) {
	u, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail retrieves an account by email, case-insensitively. Returns nil, nil when
// absent.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	u, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// ModifyUser applies fn to an account and writes its name and profile back, all inside one
// transaction holding the row lock. Concurrent modifications of the same account are
// serialized. Returns nil, nil when the account is absent; an error from fn is returned
// unchanged and nothing is written.
func (db *DB) ModifyUser(ctx context.Context, id uuid.UUID, fn func(u *UserRecord) error) (*UserRecord, error) {
	var updated *UserRecord
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to lock user: %w", err)
		}

		if err := fn(u); err != nil {
			return err
		}

		profileJSON, err := json.Marshal(u.Profile)
		if err != nil {
			return fmt.Errorf("failed to marshal profile: %w", err)
		}
		updated, err = scanUser(tx.QueryRow(ctx,
			`UPDATE users SET name = $2, profile = $3, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+userColumns,
			id, u.Name, profileJSON,
		))
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdatePassword replaces the stored password hash.
func (db *DB) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// TouchLastLogin records a successful login.
func (db *DB) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// DeleteUser removes an account and cascades to its applications and resumes.
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
