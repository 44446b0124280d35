package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokanhq/dokan-api/internal/domain/catalog"
	"github.com/dokanhq/dokan-api/internal/domain/checkout"
	"github.com/dokanhq/dokan-api/internal/domain/coupon"
	"github.com/dokanhq/dokan-api/internal/domain/notification"
	"github.com/dokanhq/dokan-api/internal/domain/order"
	"github.com/dokanhq/dokan-api/internal/domain/review"
	"github.com/dokanhq/dokan-api/internal/domain/settings"
	"github.com/dokanhq/dokan-api/internal/domain/user"
)

type memProducts struct {
	products map[string]catalog.Product
}

func (m *memProducts) List(context.Context) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProducts) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

func (m *memProducts) Create(_ context.Context, p *catalog.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.products[p.ID] = *p
	return nil
}

func (m *memProducts) Update(_ context.Context, p *catalog.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	m.products[p.ID] = *p
	return nil
}

func (m *memProducts) Delete(_ context.Context, id string) error {
	delete(m.products, id)
	return nil
}

func (m *memProducts) Categories(context.Context) ([]string, error) {
	return []string{"Test"}, nil
}

type memCoupons struct {
	coupons map[string]coupon.Coupon
}

func (m *memCoupons) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	c, ok := m.coupons[code]
	if !ok {
		return nil, coupon.ErrInvalidOrExpired
	}
	return &c, nil
}

func (m *memCoupons) List(context.Context) ([]coupon.Coupon, error) { return nil, nil }
func (m *memCoupons) Create(_ context.Context, c *coupon.Coupon) error {
	m.coupons[c.Code] = *c
	return nil
}
func (m *memCoupons) Delete(context.Context, string) error { return nil }

type memUsers struct {
	users  map[string]*user.User
	hashes map[string]string
}

func (m *memUsers) Create(_ context.Context, u *user.User, hash string) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
		if existing.Phone == u.Phone {
			return user.ErrPhoneTaken
		}
	}
	m.users[u.ID] = u
	m.hashes[u.ID] = hash
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) FindByIdentifier(_ context.Context, identifier string) (*user.User, string, error) {
	for id, u := range m.users {
		if u.Email == identifier || u.Phone == identifier {
			return u, m.hashes[id], nil
		}
	}
	return nil, "", user.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, u *user.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	if _, ok := m.users[id]; !ok {
		return user.ErrNotFound
	}
	m.hashes[id] = hash
	return nil
}

func (m *memUsers) List(context.Context) ([]user.User, error) { return nil, nil }

func (m *memUsers) SaveResetCode(context.Context, string, string, time.Time) error { return nil }

func (m *memUsers) ConsumeResetCode(context.Context, string, string, time.Time) (string, error) {
	return "", user.ErrResetCodeInvalid
}

// memStore records atomic placements and serves order reads.
type memStore struct {
	orders     []order.Order
	deductions [][]catalog.StockDeduction
}

func (m *memStore) PlaceOrder(_ context.Context, o *order.Order, d []catalog.StockDeduction) error {
	m.orders = append(m.orders, *o)
	m.deductions = append(m.deductions, d)
	return nil
}

func (m *memStore) ListAll(context.Context) ([]order.Order, error) { return m.orders, nil }

func (m *memStore) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*order.Order, error) {
	for i := range m.orders {
		if m.orders[i].ID == id {
			return &m.orders[i], nil
		}
	}
	return nil, order.ErrNotFound
}

func (m *memStore) UpdateStatus(_ context.Context, id string, status order.Status) (*order.Order, error) {
	if !status.Valid() {
		return nil, order.ErrInvalidStatus
	}
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Status = status
			return &m.orders[i], nil
		}
	}
	return nil, order.ErrNotFound
}

type memReviews struct{ reviews []review.Review }

func (m *memReviews) ListAll(context.Context) ([]review.Review, error) { return m.reviews, nil }
func (m *memReviews) ListByProduct(_ context.Context, productID string) ([]review.Review, error) {
	var out []review.Review
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}
func (m *memReviews) Add(_ context.Context, r *review.Review) error {
	m.reviews = append(m.reviews, *r)
	return nil
}
func (m *memReviews) Delete(context.Context, string) error { return nil }

type memNotifications struct{ notifications []notification.Notification }

func (m *memNotifications) ListByUser(_ context.Context, userID string) ([]notification.Notification, error) {
	var out []notification.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}
func (m *memNotifications) UnreadCount(_ context.Context, userID string) (int, error) {
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
func (m *memNotifications) Add(_ context.Context, n *notification.Notification) error {
	m.notifications = append(m.notifications, *n)
	return nil
}
func (m *memNotifications) MarkRead(context.Context, string) error    { return nil }
func (m *memNotifications) MarkAllRead(context.Context, string) error { return nil }

type memSettings struct{ delivery settings.Delivery }

func (m *memSettings) Delivery(context.Context) (settings.Delivery, error) {
	return m.delivery, nil
}
func (m *memSettings) SaveDelivery(_ context.Context, d settings.Delivery) error {
	m.delivery = d
	return nil
}

type fixture struct {
	engine        *gin.Engine
	products      *memProducts
	coupons       *memCoupons
	users         *memUsers
	store         *memStore
	notifications *memNotifications
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := &memProducts{products: map[string]catalog.Product{
		"p1": {ID: "p1", Name: "Panjabi", Price: decimal.NewFromInt(1000), Images: []string{"a.jpg"}, Stock: 10},
		"p2": {ID: "p2", Name: "Saree", Price: decimal.NewFromInt(900), DiscountPrice: decimalPtr(800), Stock: 5},
	}}
	coupons := &memCoupons{coupons: map[string]coupon.Coupon{
		"SAVE100": {
			ID:            "c1",
			Code:          "SAVE100",
			DiscountValue: decimal.NewFromInt(100),
			ExpiryDate:    time.Now().Add(24 * time.Hour),
			IsActive:      true,
		},
	}}
	users := &memUsers{users: map[string]*user.User{}, hashes: map[string]string{}}
	store := &memStore{}
	notifications := &memNotifications{}
	st := &memSettings{delivery: settings.DefaultDelivery()}

	validator := coupon.NewRepoValidator(coupons)
	inbox := notification.NewInbox(notifications)
	svc := checkout.NewService(validator, st, store, inbox)

	h := New(products, coupons, validator, store, users, &memReviews{}, notifications, st, svc, NewAuth("test-secret", time.Hour))

	engine := gin.New()
	h.Routes(engine)

	return &fixture{
		engine:        engine,
		products:      products,
		coupons:       coupons,
		users:         users,
		store:         store,
		notifications: notifications,
	}
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *fixture) registerUser(t *testing.T) (token string, userID string) {
	t.Helper()

	w := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Rahim Uddin",
		"email":    "rahim@example.com",
		"phone":    "01712345678",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.ID
}

func codSubmitBody() gin.H {
	return gin.H{
		"items": []gin.H{
			{"productId": "p1", "quantity": 1},
			{"productId": "p2", "quantity": 2},
		},
		"recipientName":  "Rahim Uddin",
		"recipientPhone": "01712345678",
		"newAddress": gin.H{
			"division": "Dhaka",
			"zilla":    "Dhaka",
			"upazilla": "Dhanmondi",
			"street":   "House 7, Road 2",
		},
		"paymentMethod": "cod",
		"couponCode":    "SAVE100",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	f.registerUser(t)

	w := f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"identifier": "rahim@example.com",
		"password":   "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"identifier": "rahim@example.com",
		"password":   "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.registerUser(t)

	w := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Other",
		"email":    "rahim@example.com",
		"phone":    "01812345678",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_InvalidPhone(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Rahim",
		"email":    "rahim@example.com",
		"phone":    "12345",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var products []catalog.Product
	require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
	assert.Len(t, products, 2)
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/products/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckout_GuestRejected(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/checkout", "", codSubmitBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.store.orders)
}

func TestCheckout_CODPlacesOrder(t *testing.T) {
	f := newFixture(t)
	token, userID := f.registerUser(t)

	w := f.do(t, http.MethodPost, "/api/checkout", token, codSubmitBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Status    string             `json:"status"`
		Order     order.Order        `json:"order"`
		Breakdown checkout.Breakdown `json:"breakdown"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	// 1000 + 2*800 subtotal, inside Dhaka 60, COD 10, coupon 100.
	assert.Equal(t, "placed", resp.Status)
	assert.True(t, resp.Breakdown.Subtotal.Equal(decimal.NewFromInt(2600)))
	assert.True(t, resp.Breakdown.GrandTotal.Equal(decimal.NewFromInt(2570)))
	assert.Equal(t, userID, resp.Order.UserID)
	assert.Equal(t, "Cash on Delivery", resp.Order.PaymentMethod)

	require.Len(t, f.store.orders, 1)
	require.Len(t, f.store.deductions, 1)
	assert.Len(t, f.store.deductions[0], 2)

	// Placement leaves one unread notification behind.
	require.Len(t, f.notifications.notifications, 1)
	assert.Equal(t, userID, f.notifications.notifications[0].UserID)
}

func TestCheckout_WalletDefersToConfirm(t *testing.T) {
	f := newFixture(t)
	token, _ := f.registerUser(t)

	body := codSubmitBody()
	body["paymentMethod"] = "bkash"
	w := f.do(t, http.MethodPost, "/api/checkout", token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var pending struct {
		Status string `json:"status"`
		Token  string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&pending))
	assert.Equal(t, "pendingPayment", pending.Status)
	require.NotEmpty(t, pending.Token)
	assert.Empty(t, f.store.orders, "no order until payment is confirmed")

	w = f.do(t, http.MethodPost, "/api/checkout/confirm", token, gin.H{
		"token":         pending.Token,
		"transactionId": "TXN12345",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.Len(t, f.store.orders, 1)
	assert.Equal(t, "TXN12345", f.store.orders[0].TransactionID)
	assert.Equal(t, "bKash", f.store.orders[0].PaymentMethod)
}

func TestCheckout_ConfirmWithoutTransaction(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/checkout/confirm", "", gin.H{
		"token":         "whatever",
		"transactionId": "  ",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestQuote_AppliesCouponAndZone(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/checkout/quote", "", gin.H{
		"items":         []gin.H{{"productId": "p1", "quantity": 1}},
		"zilla":         "Chattogram",
		"paymentMethod": "bkash",
		"couponCode":    "SAVE100",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var b checkout.Breakdown
	require.NoError(t, json.NewDecoder(w.Body).Decode(&b))
	// 1000 + 120 outside delivery - 100 coupon, no COD fee.
	assert.True(t, b.GrandTotal.Equal(decimal.NewFromInt(1020)))
	assert.True(t, b.CODFee.IsZero())
}

func TestValidateCoupon(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/coupons/validate", "", gin.H{"code": "SAVE100"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/coupons/validate", "", gin.H{"code": "NOPE"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	f := newFixture(t)
	token, _ := f.registerUser(t)

	w := f.do(t, http.MethodGet, "/api/admin/orders", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, "/api/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminUpdatesOrderStatus(t *testing.T) {
	f := newFixture(t)
	token, userID := f.registerUser(t)
	f.users.users[userID].IsAdmin = true

	w := f.do(t, http.MethodPost, "/api/checkout", token, codSubmitBody())
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := f.store.orders[0].ID

	w = f.do(t, http.MethodPut, "/api/admin/orders/"+orderID+"/status", token, gin.H{"status": "Shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, order.StatusShipped, f.store.orders[0].Status)

	w = f.do(t, http.MethodPut, "/api/admin/orders/"+orderID+"/status", token, gin.H{"status": "Lost"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestMyOrdersScopedToUser(t *testing.T) {
	f := newFixture(t)
	token, userID := f.registerUser(t)

	w := f.do(t, http.MethodPost, "/api/checkout", token, codSubmitBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var orders []order.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&orders))
	require.Len(t, orders, 1)
	assert.Equal(t, userID, orders[0].UserID)
}

func TestAddReviewRequiresAuth(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/products/p1/reviews", "", gin.H{"rating": 5})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAddReview(t *testing.T) {
	f := newFixture(t)
	token, _ := f.registerUser(t)

	w := f.do(t, http.MethodPost, "/api/products/p1/reviews", token, gin.H{
		"rating":  4,
		"comment": "Quality fabric",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var rev review.Review
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rev))
	assert.Equal(t, "Panjabi", rev.ProductName)
	assert.Equal(t, "Rahim Uddin", rev.UserName)
}

func TestInvalidBearerTokenRejected(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/orders", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
