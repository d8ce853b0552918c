package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wikid82/autosource/backend/internal/api/middleware"
	"github.com/Wikid82/autosource/backend/internal/services"
)

type AuthHandler struct {
	authService  *services.AuthService
	secureCookie bool
}

func NewAuthHandler(authService *services.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

// setSecureCookie sets an HttpOnly SameSite=Strict cookie. Secure is only
// set in production so local HTTP development keeps working.
func (h *AuthHandler) setSecureCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, maxAge, "/", "", h.secureCookie, true)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondError(c, "login", err)
		return
	}

	h.setSecureCookie(c, middleware.AuthCookieName, token, int(h.authService.TokenTTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.Actor(c), c.GetString(middleware.UserIDKey)); err != nil {
		respondError(c, "logout", err)
		return
	}
	h.setSecureCookie(c, middleware.AuthCookieName, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.authService.GetUserByUUID(c.GetString(middleware.UserIDKey))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    u.UUID,
		"role":       u.Role,
		"name":       u.Name,
		"email":      u.Email,
		"last_login": u.LastLogin,
	})
}
