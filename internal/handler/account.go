package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dokanhq/dokan-api/internal/domain/checkout"
	"github.com/dokanhq/dokan-api/internal/domain/user"
)

func (h *Handler) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

type updateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	phone := strings.TrimSpace(req.Phone)
	if !checkout.ValidPhone(phone) {
		respondError(c, checkout.ErrPhoneInvalid)
		return
	}

	u := *currentUser(c)
	u.Name = strings.TrimSpace(req.Name)
	u.Email = strings.ToLower(strings.TrimSpace(req.Email))
	u.Phone = phone

	if err := h.users.Update(c.Request.Context(), &u); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	u := currentUser(c)

	_, hash, err := h.users.FindByIdentifier(ctx, u.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.CurrentPassword)) != nil {
		respondError(c, user.ErrInvalidCredentials)
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, errors.Wrap(err, "hash password"))
		return
	}
	if err := h.users.UpdatePassword(ctx, u.ID, string(newHash)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

type addressRequest struct {
	Division string `json:"division" binding:"required"`
	Zilla    string `json:"zilla" binding:"required"`
	Upazilla string `json:"upazilla" binding:"required"`
	Street   string `json:"street" binding:"required"`
}

func (r addressRequest) toAddress(id string) user.Address {
	return user.Address{
		ID:       id,
		Division: strings.TrimSpace(r.Division),
		Zilla:    strings.TrimSpace(r.Zilla),
		Upazilla: strings.TrimSpace(r.Upazilla),
		Street:   strings.TrimSpace(r.Street),
	}
}

func (h *Handler) addAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	u := *currentUser(c)
	addr := req.toAddress(uuid.New().String())
	u.Addresses = append(u.Addresses, addr)

	if err := h.users.Update(c.Request.Context(), &u); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, addr)
}

func (h *Handler) updateAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	u := *currentUser(c)
	id := c.Param("id")
	a := u.AddressByID(id)
	if a == nil {
		respondError(c, user.ErrNotFound)
		return
	}
	*a = req.toAddress(id)

	if err := h.users.Update(c.Request.Context(), &u); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, *a)
}

func (h *Handler) deleteAddress(c *gin.Context) {
	u := *currentUser(c)
	id := c.Param("id")

	kept := make([]user.Address, 0, len(u.Addresses))
	found := false
	for _, a := range u.Addresses {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		respondError(c, user.ErrNotFound)
		return
	}
	u.Addresses = kept

	if err := h.users.Update(c.Request.Context(), &u); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
