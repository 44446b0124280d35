package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dokanhq/dokan-api/internal/domain/cart"
	"github.com/dokanhq/dokan-api/internal/domain/checkout"
	"github.com/dokanhq/dokan-api/internal/domain/user"
)

// checkoutItem is one cart line as submitted by the client. The product
// snapshot is always loaded server-side so prices cannot be tampered with.
type checkoutItem struct {
	ProductID       string            `json:"productId" binding:"required"`
	SelectedOptions map[string]string `json:"selectedOptions"`
	Quantity        int               `json:"quantity" binding:"required,min=1"`
	SelectedImage   string            `json:"selectedImage"`
}

// buildCart resolves submitted lines against the catalog and merges duplicate
// selections.
func (h *Handler) buildCart(ctx context.Context, items []checkoutItem) ([]cart.Item, error) {
	c := cart.New()
	for _, it := range items {
		p, err := h.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}

		image := it.SelectedImage
		if image == "" && len(p.Images) > 0 {
			image = p.Images[0]
		}
		c.Add(*p, it.SelectedOptions, it.Quantity, image)
	}
	return c.Items(), nil
}

type quoteRequest struct {
	Items         []checkoutItem         `json:"items" binding:"required"`
	Zilla         string                 `json:"zilla"`
	PaymentMethod checkout.PaymentMethod `json:"paymentMethod" binding:"required"`
	CouponCode    string                 `json:"couponCode"`
}

func (h *Handler) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.PaymentMethod.Valid() {
		respondError(c, checkout.ErrPaymentUnsupported)
		return
	}

	ctx := c.Request.Context()
	items, err := h.buildCart(ctx, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	breakdown, err := h.checkout.Quote(ctx, items, checkout.ZoneForZilla(req.Zilla), req.PaymentMethod, req.CouponCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

type submitRequest struct {
	Items          []checkoutItem         `json:"items" binding:"required"`
	RecipientName  string                 `json:"recipientName"`
	RecipientPhone string                 `json:"recipientPhone"`
	AddressID      string                 `json:"addressId"`
	NewAddress     *user.Address          `json:"newAddress"`
	PaymentMethod  checkout.PaymentMethod `json:"paymentMethod" binding:"required"`
	CouponCode     string                 `json:"couponCode"`
}

func (h *Handler) submitCheckout(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	items, err := h.buildCart(ctx, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.checkout.Submit(ctx, checkout.SubmitRequest{
		User:           currentUser(c),
		Items:          items,
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
		AddressID:      req.AddressID,
		NewAddress:     req.NewAddress,
		PaymentMethod:  req.PaymentMethod,
		CouponCode:     req.CouponCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Pending != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":    "pendingPayment",
			"token":     result.Pending.Token,
			"breakdown": result.Breakdown,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"status":    "placed",
		"order":     result.Order,
		"breakdown": result.Breakdown,
	})
}

type confirmRequest struct {
	Token         string `json:"token" binding:"required"`
	TransactionID string `json:"transactionId"`
}

func (h *Handler) confirmCheckout(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	o, err := h.checkout.Confirm(c.Request.Context(), req.Token, req.TransactionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "placed", "order": o})
}
