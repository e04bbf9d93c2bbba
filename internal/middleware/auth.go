package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker/internal/constants"
	apierrors "github.com/yukikurage/task-tracker/internal/errors"
	"github.com/yukikurage/task-tracker/internal/services"
)

// LoadActor resolves who is making the request. In single tenant mode every
// request acts as the shared actor; otherwise the session user, if any.
func LoadActor(tenantMode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tenantMode == constants.TenantModeSingle {
			c.Set(constants.ContextKeyActor, services.SharedActor())
			c.Next()
			return
		}

		session := sessions.Default(c)
		actor := services.Anonymous()
		if userID, ok := toUint64(session.Get(constants.ContextKeyUserID)); ok {
			actor = services.UserActor(userID)
			c.Set(constants.ContextKeyUserID, userID)
		}

		c.Set(constants.ContextKeyActor, actor)
		c.Next()
	}
}

// RequireActor sends anonymous visitors to the login page. Used on the form
// routes, which redirect instead of returning JSON errors.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActor(c).IsAnonymous() {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := GetUserID(c); !exists {
			apierrors.Unauthorized(c, "")
			return
		}
		c.Next()
	}
}

// GetActor returns the actor stored by LoadActor, or the anonymous actor
func GetActor(c *gin.Context) services.Actor {
	if v, exists := c.Get(constants.ContextKeyActor); exists {
		if actor, ok := v.(services.Actor); ok {
			return actor
		}
	}
	return services.Anonymous()
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUint64(userID)
}

func toUint64(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
