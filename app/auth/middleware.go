package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/radio-site/app/apperr"
)

const (
	CookieName = "session"

	claimsKey = "auth.claims"
)

// SetSessionCookie stores token in an HttpOnly cookie.
func SetSessionCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}

// RequireSession rejects requests without a valid session cookie.
func RequireSession(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(CookieName)
		claims, err := svc.Authenticate(token)
		if err != nil {
			ae := apperr.NewAuthError(apperr.AuthUnauthenticated, err)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": ae.Message(),
				"code":  ae.Code,
			})
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CurrentClaims returns the claims RequireSession attached to c.
func CurrentClaims(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
