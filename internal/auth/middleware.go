package auth

import (
	"net/http"

	"real-estate-site/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUsername = "username"
	SessionKeyRole     = "role"
)

// AdminRequired gates the admin routes on a logged-in session with the
// admin role. The acting username is exposed on the gin context for the
// handlers to pass into the editor.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		username := session.Get(SessionKeyUsername)
		role := session.Get(SessionKeyRole)
		if username == nil || role == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		roleInt, ok := role.(int)
		if !ok || roleInt < models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin privileges required"})
			c.Abort()
			return
		}

		c.Set("username", username.(string))
		c.Set("role", roleInt)
		c.Next()
	}
}

// LoginSession writes the authenticated user into the session.
func LoginSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(SessionKeyUserID, user.ID)
	session.Set(SessionKeyUsername, user.Username)
	session.Set(SessionKeyRole, user.Role)
	return session.Save()
}

// LogoutSession clears the session.
func LogoutSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}
