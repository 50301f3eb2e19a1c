package handlers

import (
	"net/http"

	"surya-backend/internal/apperr"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks a credential pair against the admin gate. It issues nothing;
// protected routes expect the same pair on every request.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if !h.gate.Check(req.Username, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// RequireAdmin rejects requests whose HTTP Basic credentials do not pass the gate.
func (h *Handlers) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok || !h.gate.Check(user, pass) {
			c.Header("WWW-Authenticate", `Basic realm="surya"`)
			h.respondError(c, apperr.Unauthorized("Admin credentials required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
