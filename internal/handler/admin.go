package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dokanhq/dokan-api/internal/domain/settings"
)

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) getDeliverySettings(c *gin.Context) {
	d, err := h.settings.Delivery(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type deliverySettingsRequest struct {
	InsideDhaka  decimal.Decimal `json:"insideDhaka"`
	OutsideDhaka decimal.Decimal `json:"outsideDhaka"`
	CODFee       decimal.Decimal `json:"codFee"`
}

func (h *Handler) saveDeliverySettings(c *gin.Context) {
	var req deliverySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.InsideDhaka.IsNegative() || req.OutsideDhaka.IsNegative() || req.CODFee.IsNegative() {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "delivery charges must be non-negative"})
		return
	}

	d := settings.Delivery{
		InsideDhaka:  req.InsideDhaka,
		OutsideDhaka: req.OutsideDhaka,
		CODFee:       req.CODFee,
	}
	if err := h.settings.SaveDelivery(c.Request.Context(), d); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
