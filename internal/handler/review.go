package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dokanhq/dokan-api/internal/domain/review"
)

func (h *Handler) listProductReviews(c *gin.Context) {
	reviews, err := h.reviews.ListByProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

type addReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func (h *Handler) addReview(c *gin.Context) {
	var req addReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	p, err := h.products.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	u := currentUser(c)
	rev := &review.Review{
		ID:          uuid.New().String(),
		ProductID:   p.ID,
		ProductName: p.Name,
		UserID:      u.ID,
		UserName:    u.Name,
		Rating:      req.Rating,
		Comment:     req.Comment,
		CreatedAt:   time.Now(),
	}
	if err := h.reviews.Add(ctx, rev); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rev)
}

func (h *Handler) listAllReviews(c *gin.Context) {
	reviews, err := h.reviews.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) deleteReview(c *gin.Context) {
	if err := h.reviews.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
