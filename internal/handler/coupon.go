package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dokanhq/dokan-api/internal/domain/coupon"
)

type validateCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *Handler) validateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cpn, err := h.validator.Validate(c.Request.Context(), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":          cpn.Code,
		"discountValue": cpn.DiscountValue,
	})
}

func (h *Handler) listCoupons(c *gin.Context) {
	coupons, err := h.coupons.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupons)
}

type createCouponRequest struct {
	Code          string          `json:"code" binding:"required"`
	DiscountValue decimal.Decimal `json:"discountValue" binding:"required"`
	ExpiryDate    time.Time       `json:"expiryDate" binding:"required"`
	IsActive      *bool           `json:"isActive"`
}

func (h *Handler) createCoupon(c *gin.Context) {
	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	cpn := &coupon.Coupon{
		ID:            uuid.New().String(),
		Code:          req.Code,
		DiscountValue: req.DiscountValue,
		ExpiryDate:    req.ExpiryDate,
		IsActive:      active,
	}
	if err := h.coupons.Create(c.Request.Context(), cpn); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cpn)
}

func (h *Handler) deleteCoupon(c *gin.Context) {
	if err := h.coupons.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
