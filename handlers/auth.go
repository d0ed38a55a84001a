package handlers

import (
	"errors"
	"net/http"

	"solar-prediction-api/logger"
	"solar-prediction-api/middleware"
	"solar-prediction-api/models"
	"solar-prediction-api/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users       *services.UserService
	authService *services.AuthService
	log         *logger.Logger
}

func NewAuthHandler(users *services.UserService, authService *services.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{users: users, authService: authService, log: log.With("handler", "auth")}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type AuthResponse struct {
	Message string             `json:"message"`
	User    models.User        `json:"user"`
	Tokens  services.TokenPair `json:"tokens"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, verr.Fields)
		return
	}
	if err != nil {
		h.log.Error("Registration error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	tokens, err := h.authService.IssueTokens(*user)
	if err != nil {
		h.log.Error("Token issue failed", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		User:    *user,
		Tokens:  tokens,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	case errors.Is(err, services.ErrAccountInactive):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
		return
	case err != nil:
		h.log.Error("Login error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	tokens, err := h.authService.IssueTokens(*user)
	if err != nil {
		h.log.Error("Token issue failed", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Message: "Login successful", User: *user, Tokens: tokens})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	_ = c.ShouldBindJSON(&req)
	if req.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token is required"})
		return
	}

	access, err := h.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		h.log.Warn("Token refresh rejected", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// Verify is public: it answers whether the bearer access token is still usable.
func (h *AuthHandler) Verify(c *gin.Context) {
	token := middleware.ExtractToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}
	claims, err := h.authService.ValidateAccess(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}
	user, err := h.users.Get(c.Request.Context(), claims.UserID)
	if err != nil || !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": user})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	_ = c.ShouldBindJSON(&req)
	if req.Refresh != "" {
		if err := h.authService.Revoke(c.Request.Context(), req.Refresh); err != nil {
			h.log.Warn("Logout revoke failed", "user_id", middleware.CurrentUserID(c), "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Logout failed"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
