package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for account operations.
var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrPhoneTaken         = errors.New("phone is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrResetCodeInvalid   = errors.New("reset code is invalid or expired")
)

// ResetCodeTTL is how long a password reset code stays valid.
const ResetCodeTTL = 300 * time.Second

// Address is one saved delivery destination. The zilla deterministically
// selects the delivery zone tier at checkout.
type Address struct {
	ID       string `json:"id"`
	Division string `json:"division"`
	Zilla    string `json:"zilla"`
	Upazilla string `json:"upazilla"`
	Street   string `json:"street"`
}

// Complete reports whether every component of the address is filled in.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Division) != "" &&
		strings.TrimSpace(a.Zilla) != "" &&
		strings.TrimSpace(a.Upazilla) != "" &&
		strings.TrimSpace(a.Street) != ""
}

// Flatten renders the address as the single-line form stored on orders:
// "street, upazilla, zilla, division".
func (a Address) Flatten() string {
	return a.Street + ", " + a.Upazilla + ", " + a.Zilla + ", " + a.Division
}

// User is a customer account. Password hashes never leave the repository
// except through FindByIdentifier for credential checks.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Addresses []Address `json:"addresses"`
	IsAdmin   bool      `json:"isAdmin"`
}

// AddressByID returns the saved address with the given id, or nil.
func (u *User) AddressByID(id string) *Address {
	for i := range u.Addresses {
		if u.Addresses[i].ID == id {
			return &u.Addresses[i]
		}
	}
	return nil
}

// Repository defines persistence operations for user accounts.
type Repository interface {
	// Create stores a new user with the given bcrypt password hash.
	// Returns ErrEmailTaken or ErrPhoneTaken on uniqueness violations.
	Create(ctx context.Context, u *User, passwordHash string) error

	GetByID(ctx context.Context, id string) (*User, error)

	// FindByIdentifier matches a user by email (case-insensitive) or phone and
	// returns the user together with the stored password hash.
	FindByIdentifier(ctx context.Context, identifier string) (*User, string, error)

	// Update replaces profile fields and addresses; the password is untouched.
	Update(ctx context.Context, u *User) error

	UpdatePassword(ctx context.Context, id, passwordHash string) error

	List(ctx context.Context) ([]User, error)

	// SaveResetCode stores a password reset code for the user, replacing any
	// previous one. ConsumeResetCode deletes it on successful match and
	// returns ErrResetCodeInvalid for a wrong or expired code.
	SaveResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error
	ConsumeResetCode(ctx context.Context, email, code string, now time.Time) (string, error)
}
