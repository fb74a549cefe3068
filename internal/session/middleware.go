package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"anistream/pkg/models"
)

const CtxUserKey = "session_user"

// Middleware gates the admin route group. Browser-shaped requests get a
// redirect to the login route; API callers get a 401.
func Middleware(m *Manager, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := m.Current()
		if snap.State == StateAuthenticated && snap.User != nil {
			c.Set(CtxUserKey, snap.User)
			c.Next()
			return
		}

		if acceptsHTML(c.GetHeader("Accept")) {
			c.Redirect(http.StatusFound, loginPath)
		} else {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		}
		c.Abort()
	}
}

func MustGetUser(c *gin.Context) *models.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func acceptsHTML(accept string) bool {
	return strings.Contains(accept, "text/html")
}
