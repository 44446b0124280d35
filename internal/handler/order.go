package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dokanhq/dokan-api/internal/domain/order"
)

func (h *Handler) listMyOrders(c *gin.Context) {
	orders, err := h.orders.ListByUser(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// getOrder returns one order. Customers can only read their own orders; the
// order stays hidden from everyone else.
func (h *Handler) getOrder(c *gin.Context) {
	o, err := h.orders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	u := currentUser(c)
	if o.UserID != u.ID && !u.IsAdmin {
		respondError(c, order.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) listAllOrders(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

type orderStatusRequest struct {
	Status order.Status `json:"status" binding:"required"`
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
