package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "ridebooking/internal/config"
	h "ridebooking/internal/http/handlers"
	"ridebooking/internal/http/middleware"
	"ridebooking/internal/services"
	"ridebooking/internal/utils"
)

// Deps carries the wired services the routes are served from.
type Deps struct {
	Bookings services.BookingService
	Auth     services.AuthService
	Docs     services.DocsService
	System   h.SystemHandler
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().Warn("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	bookings := h.BookingHandler{Bookings: deps.Bookings, Docs: deps.Docs}
	admin := h.AdminHandler{Auth: deps.Auth, CookieSecure: env.CookieSecure}
	requireAdmin := middleware.RequireAdmin(deps.Auth)

	api := r.Group("/api")
	{
		api.GET("/health", deps.System.Health)
		api.GET("/db-check", deps.System.DBCheck)

		b := api.Group("/bookings")
		b.POST("", bookings.Create)
		b.POST("/quote", bookings.Quote)
		b.GET("/:booking_id", bookings.Get)
		b.GET("", requireAdmin, bookings.List)
		b.PUT("/:booking_id", requireAdmin, bookings.Update)
		b.DELETE("/:booking_id", requireAdmin, bookings.Delete)
		b.GET("/:booking_id/confirmation.pdf", requireAdmin, bookings.ConfirmationPDF)

		api.GET("/stats", requireAdmin, bookings.Stats)

		a := api.Group("/admin")
		a.POST("/login", admin.Login)
		a.POST("/logout", admin.Logout)
		a.GET("/check-auth", admin.CheckAuth)
	}

	return r
}
