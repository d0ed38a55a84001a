package middleware

import (
	"context"
	"net/http"
	"strings"

	"solar-prediction-api/logger"
	"solar-prediction-api/models"
	"solar-prediction-api/services"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserIDKey = "user_id"
	ctxUserKey   = "user"
)

type UserLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

type AuthMiddleware struct {
	log   *logger.Logger
	auth  *services.AuthService
	users UserLookup
}

func NewAuthMiddleware(log *logger.Logger, auth *services.AuthService, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "auth"), auth: auth, users: users}
}

// RequireAuth accepts a bearer access token (or ?token= for websocket upgrades)
// belonging to an existing, active user.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication credentials were not provided.",
			})
			return
		}
		claims, err := am.auth.ValidateAccess(tokenString)
		if err != nil {
			am.log.Debug("Rejected token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Given token not valid for any token type",
			})
			return
		}
		user, err := am.users.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
			return
		}
		c.Set(ctxUserIDKey, user.ID)
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return c.Query("token")
}

func CurrentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
