package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Validator determines whether a user-supplied code yields a usable coupon.
type Validator interface {
	Validate(ctx context.Context, code string) (*Coupon, error)
}

// RepoValidator implements Validator by looking up coupons from a Repository
// and checking activity and expiry.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate trims and looks up the given code. A coupon is usable only while
// it is active and the current time is strictly before its expiry; anything
// else fails with ErrInvalidOrExpired. At most one coupon applies per order,
// so Validate takes a single code and never combines discounts.
func (v *RepoValidator) Validate(ctx context.Context, code string) (*Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrInvalidOrExpired
	}

	c, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpired) {
			return nil, ErrInvalidOrExpired
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	if !c.IsActive || !v.now().Before(c.ExpiryDate) {
		return nil, ErrInvalidOrExpired
	}

	return c, nil
}
