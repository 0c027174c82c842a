package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SVG-campus/ContractKit/config"
	"github.com/SVG-campus/ContractKit/middleware"
	"github.com/SVG-campus/ContractKit/model"
	"github.com/SVG-campus/ContractKit/service"
	"github.com/SVG-campus/ContractKit/store"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	config *config.Config
	store  *store.Store
	gate   *service.SubscriptionService
}

func NewAuthHandler(cfg *config.Config, st *store.Store, gate *service.SubscriptionService) *AuthHandler {
	return &AuthHandler{config: cfg, store: st, gate: gate}
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
}

// SignUp creates an account and opens its trial.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
	}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		respondError(c, err)
		return
	}

	if _, err := h.gate.StartTrial(c.Request.Context(), user.ID); err != nil {
		// The account exists; the trial can be repaired on next sign-in
		slog.ErrorContext(c.Request.Context(), "failed to start trial", "user_id", user.ID, "error", err)
	}

	h.respondWithToken(c, user)
}

// SignIn authenticates an account and returns a token.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	h.respondWithToken(c, user)
}

// Me returns the authenticated account with its billing state.
func (h *AuthHandler) Me(c *gin.Context) {
	principal := principalFrom(c)

	user, err := h.store.GetUser(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	status, err := h.gate.Status(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"subscription": status,
	})
}

func (h *AuthHandler) respondWithToken(c *gin.Context, user *model.User) {
	token, expiresAt, err := middleware.GenerateToken(user.ID, user.Email, &h.config.Auth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
		UserID:    user.ID,
		Email:     user.Email,
	})
}
