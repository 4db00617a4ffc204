package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edustore/edustore-backend/internal/models"
	"github.com/edustore/edustore-backend/internal/sessions"
	"github.com/edustore/edustore-backend/internal/tokens"
	"github.com/edustore/edustore-backend/internal/users"
	"github.com/edustore/edustore-backend/pkg/logger"
	"github.com/edustore/edustore-backend/pkg/metrics"
	"github.com/edustore/edustore-backend/pkg/middleware"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	users     *users.Service
	tokens    *tokens.Manager
	blacklist *sessions.Blacklist
}

func NewAuthHandler(u *users.Service, t *tokens.Manager, bl *sessions.Blacklist) *AuthHandler {
	return &AuthHandler{users: u, tokens: t, blacklist: bl}
}

// Register routes under /auth. Logout needs a verified token, so it runs
// behind the auth middleware.
func (h *AuthHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/login", h.Login)
	a.POST("/register", h.RegisterUser)
	a.POST("/logout", auth, h.Logout)
}

// Login verifies the credentials and returns a signed session token.
// Unknown username and wrong password produce the same response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}
	u, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		metrics.AuthFailures.Inc()
		logger.Debugf("login failed for %q: %v", req.Username, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	token, err := h.tokens.Issue(u.Username, u.Role)
	if err != nil {
		logger.Errorf("issue token for %q: %v", u.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    gin.H{"username": u.Username, "role": u.Role},
	})
}

// RegisterUser creates a regular (non-admin) account.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}
	u, err := h.users.Register(req.Username, req.Email, req.Password, models.RoleUser)
	if err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
			return
		}
		logger.Errorf("register %q: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    gin.H{"username": u.Username, "role": u.Role},
	})
}

// Logout revokes the presented token until its natural expiry. Without a
// Redis-backed blacklist this only acknowledges the request.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := h.blacklist.Revoke(c.Request.Context(), middleware.RawToken(c), ttl); err != nil {
		logger.Warnf("revoke token for %q: %v", claims.Username, err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
