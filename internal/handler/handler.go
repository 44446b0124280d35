// Package handler exposes the storefront API over HTTP. Handlers translate
// between the JSON surface and the domain services, and map domain errors to
// status codes.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/dokanhq/dokan-api/internal/domain/catalog"
	"github.com/dokanhq/dokan-api/internal/domain/checkout"
	"github.com/dokanhq/dokan-api/internal/domain/coupon"
	"github.com/dokanhq/dokan-api/internal/domain/notification"
	"github.com/dokanhq/dokan-api/internal/domain/order"
	"github.com/dokanhq/dokan-api/internal/domain/review"
	"github.com/dokanhq/dokan-api/internal/domain/settings"
	"github.com/dokanhq/dokan-api/internal/domain/user"
)

// Handler carries the domain collaborators for every route.
type Handler struct {
	products      catalog.Repository
	coupons       coupon.Repository
	validator     coupon.Validator
	orders        order.Repository
	users         user.Repository
	reviews       review.Repository
	notifications notification.Repository
	settings      settings.Repository
	checkout      *checkout.Service
	auth          *Auth
}

// New assembles a Handler from its collaborators.
func New(
	products catalog.Repository,
	coupons coupon.Repository,
	validator coupon.Validator,
	orders order.Repository,
	users user.Repository,
	reviews review.Repository,
	notifications notification.Repository,
	st settings.Repository,
	co *checkout.Service,
	auth *Auth,
) *Handler {
	return &Handler{
		products:      products,
		coupons:       coupons,
		validator:     validator,
		orders:        orders,
		users:         users,
		reviews:       reviews,
		notifications: notifications,
		settings:      st,
		checkout:      co,
		auth:          auth,
	}
}

// Routes registers every route on the engine. Authentication is resolved once
// per request; the auth and admin groups only gate access.
func (h *Handler) Routes(r *gin.Engine) {
	api := r.Group("/api", h.authenticate)

	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)
	api.POST("/auth/password-reset/request", h.requestPasswordReset)
	api.POST("/auth/password-reset/confirm", h.confirmPasswordReset)

	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)
	api.GET("/products/:id/reviews", h.listProductReviews)
	api.GET("/categories", h.listCategories)

	api.POST("/coupons/validate", h.validateCoupon)

	api.POST("/checkout/quote", h.quote)
	api.POST("/checkout", h.submitCheckout)
	api.POST("/checkout/confirm", h.confirmCheckout)

	authed := api.Group("", h.requireAuth)
	authed.GET("/orders", h.listMyOrders)
	authed.GET("/orders/:id", h.getOrder)
	authed.POST("/products/:id/reviews", h.addReview)
	authed.GET("/notifications", h.listNotifications)
	authed.POST("/notifications/:id/read", h.markNotificationRead)
	authed.POST("/notifications/read-all", h.markAllNotificationsRead)
	authed.GET("/me", h.getProfile)
	authed.PUT("/me", h.updateProfile)
	authed.PUT("/me/password", h.changePassword)
	authed.POST("/me/addresses", h.addAddress)
	authed.PUT("/me/addresses/:id", h.updateAddress)
	authed.DELETE("/me/addresses/:id", h.deleteAddress)

	admin := api.Group("/admin", h.requireAuth, h.requireAdmin)
	admin.GET("/products", h.listProducts)
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.GET("/coupons", h.listCoupons)
	admin.POST("/coupons", h.createCoupon)
	admin.DELETE("/coupons/:id", h.deleteCoupon)
	admin.GET("/orders", h.listAllOrders)
	admin.PUT("/orders/:id/status", h.updateOrderStatus)
	admin.GET("/reviews", h.listAllReviews)
	admin.DELETE("/reviews/:id", h.deleteReview)
	admin.GET("/users", h.listUsers)
	admin.GET("/settings/delivery", h.getDeliverySettings)
	admin.PUT("/settings/delivery", h.saveDeliverySettings)
}

// respondError maps domain errors to HTTP status codes. Unknown errors are
// logged and surface as an opaque 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, checkout.ErrAuthRequired):
		abortJSON(c, http.StatusUnauthorized, err)
	case errors.Is(err, user.ErrInvalidCredentials):
		abortJSON(c, http.StatusUnauthorized, err)
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, review.ErrNotFound):
		abortJSON(c, http.StatusNotFound, err)
	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, user.ErrPhoneTaken):
		abortJSON(c, http.StatusConflict, err)
	case errors.Is(err, coupon.ErrInvalidOrExpired),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrAddressIncomplete),
		errors.Is(err, checkout.ErrContactIncomplete),
		errors.Is(err, checkout.ErrPhoneInvalid),
		errors.Is(err, checkout.ErrPaymentUnsupported),
		errors.Is(err, checkout.ErrTransactionRequired),
		errors.Is(err, checkout.ErrPendingNotFound),
		errors.Is(err, user.ErrResetCodeInvalid),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, catalog.ErrStockMismatch):
		abortJSON(c, http.StatusUnprocessableEntity, err)
	default:
		zctx.From(c.Request.Context()).Error("Unhandled request error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func abortJSON(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}
