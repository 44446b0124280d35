// Package checkout implements the order pricing and checkout engine: pricing
// breakdown computation, submit-time validation, the pending-payment hand-off,
// and atomic order placement with inventory deduction.
package checkout

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/dokanhq/dokan-api/internal/domain/cart"
	"github.com/dokanhq/dokan-api/internal/domain/catalog"
	"github.com/dokanhq/dokan-api/internal/domain/coupon"
	"github.com/dokanhq/dokan-api/internal/domain/order"
	"github.com/dokanhq/dokan-api/internal/domain/settings"
	"github.com/dokanhq/dokan-api/internal/domain/user"
)

// Validation failures. All are recoverable: the caller corrects the input and
// resubmits; nothing is retried automatically.
var (
	ErrAuthRequired        = errors.New("authentication required")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrAddressIncomplete   = errors.New("delivery address is incomplete")
	ErrContactIncomplete   = errors.New("recipient name and phone are required")
	ErrPhoneInvalid        = errors.New("phone is not a valid Bangladeshi mobile number")
	ErrPaymentUnsupported  = errors.New("unsupported payment method")
	ErrTransactionRequired = errors.New("transaction id is required")
	ErrPendingNotFound     = errors.New("pending order not found or expired")
)

// Bangladeshi mobile numbers: local 01[3-9]XXXXXXXX, optionally with a
// +880/880 country prefix replacing the leading zero's position.
var phonePattern = regexp.MustCompile(`^(\+?880|0)1[3-9]\d{8}$`)

// ValidPhone reports whether phone matches the accepted mobile format.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// pendingTTL bounds how long an unconfirmed wallet payment draft is kept.
const pendingTTL = 30 * time.Minute

// TxStore atomically persists an order together with its stock deductions.
// Either the order row and every deduction land, or none do; a ghost order
// next to stale stock cannot occur.
type TxStore interface {
	PlaceOrder(ctx context.Context, o *order.Order, deductions []catalog.StockDeduction) error
}

// Notifier receives the user-facing order-placed event. Implementations must
// not fail the placement.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *order.Order)
}

// SubmitRequest is the input to a checkout submission.
type SubmitRequest struct {
	// User is the authenticated customer, or nil when unauthenticated.
	User *user.User
	// Items is the cart snapshot being purchased.
	Items []cart.Item
	// RecipientName and RecipientPhone identify who receives the delivery.
	RecipientName  string
	RecipientPhone string
	// AddressID selects one of the user's saved addresses. When empty,
	// NewAddress must be a fully completed address.
	AddressID  string
	NewAddress *user.Address
	// PaymentMethod chooses COD (places immediately) or a mobile wallet
	// (defers to payment confirmation).
	PaymentMethod PaymentMethod
	// CouponCode optionally applies a single coupon.
	CouponCode string
}

// PendingOrder is a priced, validated draft awaiting a payment transaction
// reference. No order exists and no stock has been deducted yet.
type PendingOrder struct {
	Token     string      `json:"token"`
	Draft     order.Order `json:"draft"`
	Breakdown Breakdown   `json:"breakdown"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Result is the outcome of a successful submission: exactly one of Order
// (placed) or Pending (awaiting payment confirmation) is set.
type Result struct {
	Breakdown Breakdown
	Order     *order.Order
	Pending   *PendingOrder
}

// Service is the checkout engine. It depends only on abstract repository
// contracts so the storage backend can be substituted wholesale.
type Service struct {
	coupons  coupon.Validator
	settings settings.Repository
	store    TxStore
	notifier Notifier

	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	pending map[string]*PendingOrder
}

// NewService creates a checkout Service with the required collaborators.
func NewService(coupons coupon.Validator, st settings.Repository, store TxStore, notifier Notifier) *Service {
	return &Service{
		coupons:  coupons,
		settings: st,
		store:    store,
		notifier: notifier,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		pending:  make(map[string]*PendingOrder),
	}
}

// Quote prices a cart without any validation side effects. Used for the
// order summary preview; an invalid coupon code fails the quote.
func (s *Service) Quote(ctx context.Context, items []cart.Item, zone Zone, method PaymentMethod, couponCode string) (Breakdown, error) {
	cpn, err := s.resolveCoupon(ctx, couponCode)
	if err != nil {
		return Breakdown{}, err
	}

	delivery, err := s.settings.Delivery(ctx)
	if err != nil {
		return Breakdown{}, errors.Wrap(err, "load delivery settings")
	}

	return Price(items, zone, method, cpn, delivery), nil
}

// Submit runs the checkout state machine for one submission. Validation
// failures reject synchronously without touching the cart or inventory. COD
// submissions place the order; wallet submissions return a pending draft that
// Confirm later places with the payment's transaction id.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Result, error) {
	if req.User == nil {
		return nil, ErrAuthRequired
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	addr, err := s.resolveAddress(req)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.RecipientName)
	phone := strings.TrimSpace(req.RecipientPhone)
	if name == "" || phone == "" {
		return nil, ErrContactIncomplete
	}
	if !ValidPhone(phone) {
		return nil, ErrPhoneInvalid
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrPaymentUnsupported
	}

	cpn, err := s.resolveCoupon(ctx, req.CouponCode)
	if err != nil {
		return nil, err
	}

	delivery, err := s.settings.Delivery(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load delivery settings")
	}

	breakdown := Price(req.Items, ZoneForZilla(addr.Zilla), req.PaymentMethod, cpn, delivery)

	draft := order.Order{
		UserID:         req.User.ID,
		UserName:       name,
		UserPhone:      phone,
		UserAddress:    addr.Flatten(),
		Items:          req.Items,
		Subtotal:       breakdown.Subtotal,
		DeliveryCharge: breakdown.DeliveryCharge,
		CouponDiscount: breakdown.CouponDiscount,
		CouponCode:     breakdown.CouponCode,
		CODFee:         breakdown.CODFee,
		GrandTotal:     breakdown.GrandTotal,
		PaymentMethod:  req.PaymentMethod.DisplayName(),
		Status:         order.StatusPending,
	}

	if req.PaymentMethod != PaymentCOD {
		p := &PendingOrder{
			Token:     s.newID(),
			Draft:     draft,
			Breakdown: breakdown,
			CreatedAt: s.now(),
		}
		s.mu.Lock()
		s.prunePendingLocked()
		s.pending[p.Token] = p
		s.mu.Unlock()

		return &Result{Breakdown: breakdown, Pending: p}, nil
	}

	placed, err := s.place(ctx, draft)
	if err != nil {
		return nil, err
	}
	return &Result{Breakdown: breakdown, Order: placed}, nil
}

// Confirm completes a pending wallet payment: the confirmation step supplies
// the transaction reference and the draft is placed. The token is single-use.
func (s *Service) Confirm(ctx context.Context, token, transactionID string) (*order.Order, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, ErrTransactionRequired
	}

	s.mu.Lock()
	s.prunePendingLocked()
	p, ok := s.pending[token]
	if ok {
		delete(s.pending, token)
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrPendingNotFound
	}

	draft := p.Draft
	draft.TransactionID = transactionID
	return s.place(ctx, draft)
}

// place assigns identity, persists the order atomically with its stock
// deductions, and enqueues the user notification.
func (s *Service) place(ctx context.Context, draft order.Order) (*order.Order, error) {
	draft.ID = s.newID()
	draft.CreatedAt = s.now()

	deductions := make([]catalog.StockDeduction, len(draft.Items))
	for i, it := range draft.Items {
		deductions[i] = catalog.StockDeduction{
			ProductID: it.Product.ID,
			Options:   it.SelectedOptions,
			Quantity:  it.Quantity,
		}
	}

	if err := s.store.PlaceOrder(ctx, &draft, deductions); err != nil {
		return nil, errors.Wrap(err, "place order")
	}

	if s.notifier != nil {
		s.notifier.OrderPlaced(ctx, &draft)
	}
	return &draft, nil
}

func (s *Service) resolveAddress(req SubmitRequest) (user.Address, error) {
	if req.AddressID != "" {
		if a := req.User.AddressByID(req.AddressID); a != nil {
			return *a, nil
		}
		return user.Address{}, ErrAddressIncomplete
	}
	if req.NewAddress == nil || !req.NewAddress.Complete() {
		return user.Address{}, ErrAddressIncomplete
	}
	return *req.NewAddress, nil
}

func (s *Service) resolveCoupon(ctx context.Context, code string) (*coupon.Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	cpn, err := s.coupons.Validate(ctx, code)
	if err != nil {
		if errors.Is(err, coupon.ErrInvalidOrExpired) {
			return nil, coupon.ErrInvalidOrExpired
		}
		return nil, errors.Wrap(err, "validate coupon")
	}
	return cpn, nil
}

// prunePendingLocked drops drafts older than pendingTTL. Caller holds s.mu.
func (s *Service) prunePendingLocked() {
	cutoff := s.now().Add(-pendingTTL)
	for token, p := range s.pending {
		if p.CreatedAt.Before(cutoff) {
			delete(s.pending, token)
		}
	}
}
