package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/handlers"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
)

type Deps struct {
	Config   *config.Config
	Sessions handlers.Sessions
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
	// DB is the audit database, nil when audit events are only logged.
	DB *gorm.DB
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware(d.Config.CORSOrigins))

	// ======================================================
	// INFRA
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// ======================================================
	// HANDLERS
	// ======================================================
	bookingHandler := handlers.NewBookingHandler(d.Sessions, d.Logger)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	api.Use(middleware.SessionMiddleware(d.Config.JWTSecret))
	{
		sessions := api.Group("/booking/sessions")
		{
			sessions.POST("", bookingHandler.Create)
			sessions.GET("/:id", bookingHandler.Get)
			sessions.DELETE("/:id", bookingHandler.Delete)

			sessions.POST("/:id/gender", bookingHandler.SelectGender)
			sessions.POST("/:id/service", bookingHandler.SelectService)
			sessions.POST("/:id/barber", bookingHandler.SelectBarber)
			sessions.POST("/:id/continue", bookingHandler.Continue)
			sessions.POST("/:id/back", bookingHandler.Back)
			sessions.POST("/:id/date", bookingHandler.SelectDate)
			sessions.POST("/:id/time", bookingHandler.SelectTime)
			sessions.POST("/:id/payment", bookingHandler.SetPayment)
			sessions.POST("/:id/confirm", bookingHandler.Confirm)
		}

		if d.DB != nil {
			api.GET("/booking/audits", handlers.NewBookingAuditsHandler(d.DB).List)
		}
	}
}
