package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebooking/internal/http/middleware"
	"ridebooking/internal/services"
)

type AdminHandler struct {
	Auth         services.AuthService
	CookieSecure bool
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/admin/login
func (h AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.Auth.WithRequestID(middleware.GetRequestID(c))
	res, err := svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	maxAge := int(svc.SessionTTL().Seconds())
	h.setSessionCookie(c, res.Token, maxAge)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user":    res.User,
		"token":   res.Token,
	})
}

// POST /api/admin/logout
func (h AdminHandler) Logout(c *gin.Context) {
	svc := h.Auth.WithRequestID(middleware.GetRequestID(c))
	if err := svc.Logout(c.Request.Context(), middleware.TokenFromRequest(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// GET /api/admin/check-auth
func (h AdminHandler) CheckAuth(c *gin.Context) {
	_, user, err := h.Auth.Authenticate(c.Request.Context(), middleware.TokenFromRequest(c))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user.ToPublic()})
}

func (h AdminHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", h.CookieSecure, true)
}
