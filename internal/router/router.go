package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker/internal/constants"
	"github.com/yukikurage/task-tracker/internal/handlers"
	"github.com/yukikurage/task-tracker/internal/middleware"
)

// Options controls the cross-cutting middleware of the engine
type Options struct {
	TenantMode     string
	AllowedOrigins string
	SessionStore   sessions.Store
	// RequestLogging is off in tests
	RequestLogging bool
}

// New wires every route onto a fresh gin engine
func New(opts Options, taskHandler *handlers.TaskHandler, authHandler *handlers.AuthHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if opts.RequestLogging {
		r.Use(middleware.Logger())
	}
	if opts.AllowedOrigins != "" {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, opts.SessionStore))
	r.Use(middleware.LoadActor(opts.TenantMode))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Tracker is running",
		})
	})

	// Dashboard and read-only views; anonymous visitors get empty data
	r.GET("/", taskHandler.Index)
	r.GET("/history", taskHandler.History)
	r.GET("/categories", taskHandler.Categories)

	// Task mutations
	tasks := r.Group("/")
	tasks.Use(middleware.RejectCrossSite(), middleware.RequireActor())
	{
		tasks.POST("/", taskHandler.Create)
		tasks.POST("/edit/:id", taskHandler.Edit)
		tasks.GET("/complete/:id", taskHandler.Complete)
		tasks.GET("/delete/:id", taskHandler.Delete)
		tasks.GET("/clear_history", taskHandler.ClearHistory)
		tasks.POST("/bulk_action", taskHandler.BulkAction)
		tasks.POST("/suggest", taskHandler.Suggest)
	}

	// Account lifecycle
	r.GET("/login", authHandler.LoginPage)
	r.POST("/login", authHandler.Login)
	r.POST("/register", authHandler.Register)
	r.GET("/logout", authHandler.Logout)
	r.POST("/check_uniqueness", authHandler.CheckUniqueness)

	account := r.Group("/")
	account.Use(middleware.RequireAuth())
	{
		account.GET("/me", authHandler.GetCurrentUser)
		account.POST("/update_profile", authHandler.UpdateProfile)
	}

	return r
}
