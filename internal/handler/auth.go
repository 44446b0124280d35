package handler

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dokanhq/dokan-api/internal/domain/checkout"
	"github.com/dokanhq/dokan-api/internal/domain/user"
)

// Auth issues and verifies the HS256 bearer tokens used by the API.
type Auth struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuth creates an Auth signing with the given secret.
func NewAuth(secret string, ttl time.Duration) *Auth {
	return &Auth{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken signs an access token for the user.
func (a *Auth) IssueToken(u *user.User) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"admin": u.IsAdmin,
		"iat":   now.Unix(),
		"exp":   now.Add(a.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken verifies a token and returns the subject user id.
func (a *Auth) ParseToken(raw string) (string, error) {
	token, err := jwt.Parse(raw,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", errors.Wrap(err, "parse token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	phone := strings.TrimSpace(req.Phone)
	if !checkout.ValidPhone(phone) {
		respondError(c, checkout.ErrPhoneInvalid)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, errors.Wrap(err, "hash password"))
		return
	}

	u := &user.User{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     phone,
		Addresses: []user.Address{},
	}
	if err := h.users.Create(c.Request.Context(), u, string(hash)); err != nil {
		respondError(c, err)
		return
	}

	token, err := h.auth.IssueToken(u)
	if err != nil {
		respondError(c, errors.Wrap(err, "issue token"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": u})
}

type loginRequest struct {
	// Identifier is the account email or phone number.
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	u, hash, err := h.users.FindByIdentifier(c.Request.Context(), strings.TrimSpace(req.Identifier))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondError(c, user.ErrInvalidCredentials)
			return
		}
		respondError(c, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		respondError(c, user.ErrInvalidCredentials)
		return
	}

	token, err := h.auth.IssueToken(u)
	if err != nil {
		respondError(c, errors.Wrap(err, "issue token"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

type resetRequestRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *Handler) requestPasswordReset(c *gin.Context) {
	var req resetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	u, _, err := h.users.FindByIdentifier(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		respondError(c, err)
		return
	}

	code, err := resetCode()
	if err != nil {
		respondError(c, errors.Wrap(err, "generate reset code"))
		return
	}

	expiresAt := time.Now().Add(user.ResetCodeTTL)
	if err := h.users.SaveResetCode(ctx, u.ID, code, expiresAt); err != nil {
		respondError(c, err)
		return
	}

	// There is no mail transport; the code is logged for the operator to
	// relay. TODO: send the code over SMS once a gateway is wired in.
	zctx.From(ctx).Info("Password reset code issued",
		zap.String("user_id", u.ID),
		zap.String("code", code),
	)
	c.JSON(http.StatusOK, gin.H{
		"message":   "reset code issued",
		"expiresAt": expiresAt,
	})
}

type resetConfirmRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

func (h *Handler) confirmPasswordReset(c *gin.Context) {
	var req resetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	userID, err := h.users.ConsumeResetCode(ctx, strings.TrimSpace(req.Email), strings.TrimSpace(req.Code), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, errors.Wrap(err, "hash password"))
		return
	}
	if err := h.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// resetCode draws a 6-digit numeric code.
func resetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
