package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/radio-site/app/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	InviteCode string `json:"inviteCode"`
}

func userBody(u *auth.User) gin.H {
	return gin.H{"id": u.ID, "email": u.Email}
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.InviteCode)
	if err != nil {
		respondError(c, "register", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": userBody(user)})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondError(c, "login", err)
		return
	}

	auth.SetSessionCookie(c, token, int(h.auth.Tokens().TTL().Seconds()), h.secureCookies)
	c.JSON(http.StatusOK, gin.H{"user": userBody(user)})
}

func (h *Handler) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c, h.secureCookies)
	c.Status(http.StatusNoContent)
}

func (h *Handler) CurrentUser(c *gin.Context) {
	claims, ok := auth.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": gin.H{"id": claims.Subject, "email": claims.Email}})
}
