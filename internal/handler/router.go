package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/cinema-booking/internal/app"
)

func NewRouter(app *app.App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(app.Logger.Named("http")))

	authHandler := NewAuthHandler(app)
	bookingHandler := NewBookingHandler(app)
	catalogHandler := NewCatalogHandler(app)
	requireAuth := RequireAuth(app.TokenService, app.Logger)

	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.HandleRegister)
		api.POST("/auth/login", authHandler.HandleLogin)
		api.GET("/auth/me", requireAuth, authHandler.HandleMe)
		api.POST("/auth/logout", authHandler.HandleLogout)

		api.GET("/movies", catalogHandler.HandleMovies)
		api.GET("/sessions", catalogHandler.HandleSessions)
		api.GET("/sessions/:id/seats", bookingHandler.HandleSeats)

		api.GET("/bookings/my", requireAuth, bookingHandler.HandleMyBookings)
		api.POST("/bookings", requireAuth, bookingHandler.HandleReserve)
		api.DELETE("/bookings/:id", requireAuth, bookingHandler.HandleCancel)
	}

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "API route not found"})
			return
		}
		ctx.String(http.StatusNotFound, "Not Found")
	})

	return r
}
