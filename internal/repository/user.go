package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dokanhq/dokan-api/internal/domain/user"
)

const (
	userColumns = `id, name, email, phone, is_admin, addresses`

	insertUserSQL = `INSERT INTO users (id, name, email, phone, password_hash, is_admin, addresses)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	getUserByIDSQL = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	findUserByIdentifierSQL = `SELECT ` + userColumns + `, password_hash FROM users
		WHERE LOWER(email) = LOWER($1) OR phone = $1`

	updateUserSQL = `UPDATE users SET name = $2, email = $3, phone = $4, addresses = $5
		WHERE id = $1`

	updateUserPasswordSQL = `UPDATE users SET password_hash = $2 WHERE id = $1`

	listUsersSQL = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	saveResetCodeSQL = `INSERT INTO password_reset_codes (user_id, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at`

	consumeResetCodeSQL = `DELETE FROM password_reset_codes prc
		USING users u
		WHERE prc.user_id = u.id
		  AND LOWER(u.email) = LOWER($1)
		  AND prc.code = $2
		  AND prc.expires_at > $3
		RETURNING prc.user_id`
)

const uniqueViolationCode = "23505"

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL. Saved
// addresses are stored as a JSONB array on the user row.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user with the given password hash. Email and phone
// uniqueness violations map to user.ErrEmailTaken and user.ErrPhoneTaken.
func (r *UserRepository) Create(ctx context.Context, u *user.User, passwordHash string) error {
	addresses, err := encodeAddresses(u)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, insertUserSQL,
		u.ID, u.Name, u.Email, u.Phone, passwordHash, u.IsAdmin, addresses,
	)
	if err != nil {
		if taken := takenError(err); taken != nil {
			return taken
		}
		return fmt.Errorf("creating user %q: %w", u.Email, err)
	}
	return nil
}

// GetByID returns a single user, or user.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	return &u, nil
}

// FindByIdentifier matches a user by email (case-insensitive) or exact phone
// and returns the stored password hash alongside the user.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*user.User, string, error) {
	var (
		u             user.User
		addressesJSON []byte
		hash          string
	)
	err := r.pool.QueryRow(ctx, findUserByIdentifierSQL, identifier).Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.IsAdmin, &addressesJSON, &hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", user.ErrNotFound
		}
		return nil, "", fmt.Errorf("finding user %q: %w", identifier, err)
	}

	if err := json.Unmarshal(addressesJSON, &u.Addresses); err != nil {
		return nil, "", fmt.Errorf("decoding user addresses: %w", err)
	}
	return &u, hash, nil
}

// Update replaces profile fields and addresses. The password hash and admin
// flag are untouched.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	addresses, err := encodeAddresses(u)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, updateUserSQL, u.ID, u.Name, u.Email, u.Phone, addresses)
	if err != nil {
		if taken := takenError(err); taken != nil {
			return taken
		}
		return fmt.Errorf("updating user %q: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, updateUserPasswordSQL, id, passwordHash)
	if err != nil {
		return fmt.Errorf("updating password for user %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// List returns every user, newest first.
func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx, listUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// SaveResetCode stores a password reset code, replacing any previous one for
// the user.
func (r *UserRepository) SaveResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, saveResetCodeSQL, userID, code, expiresAt)
	if err != nil {
		return fmt.Errorf("saving reset code for user %q: %w", userID, err)
	}
	return nil
}

// ConsumeResetCode atomically deletes a matching unexpired reset code and
// returns the owning user's id. A wrong, expired or already used code yields
// user.ErrResetCodeInvalid.
func (r *UserRepository) ConsumeResetCode(ctx context.Context, email, code string, now time.Time) (string, error) {
	var userID string
	err := r.pool.QueryRow(ctx, consumeResetCodeSQL, email, code, now).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", user.ErrResetCodeInvalid
		}
		return "", fmt.Errorf("consuming reset code: %w", err)
	}
	return userID, nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var (
		u             user.User
		addressesJSON []byte
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.IsAdmin, &addressesJSON)
	if err != nil {
		return user.User{}, err
	}

	if err := json.Unmarshal(addressesJSON, &u.Addresses); err != nil {
		return user.User{}, fmt.Errorf("decoding user addresses: %w", err)
	}
	return u, nil
}

func encodeAddresses(u *user.User) ([]byte, error) {
	if u.Addresses == nil {
		u.Addresses = []user.Address{}
	}
	addresses, err := json.Marshal(u.Addresses)
	if err != nil {
		return nil, fmt.Errorf("encoding user addresses: %w", err)
	}
	return addresses, nil
}

// takenError maps unique index violations to the matching sentinel, or nil
// when the error is not a uniqueness conflict.
func takenError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return nil
	}
	switch pgErr.ConstraintName {
	case "idx_users_email":
		return user.ErrEmailTaken
	case "idx_users_phone":
		return user.ErrPhoneTaken
	}
	return nil
}
