package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/audit"
	"github.com/peluqueria-anita/salon-api/internal/config"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/handlers"
	infraRepo "github.com/peluqueria-anita/salon-api/internal/infra/repository"
	"github.com/peluqueria-anita/salon-api/internal/middleware"
	"github.com/peluqueria-anita/salon-api/internal/models"
	"github.com/peluqueria-anita/salon-api/internal/usecase/payment"
	"github.com/peluqueria-anita/salon-api/internal/usecase/stats"
)

// Deps carries what the route table needs beyond the database. Cache,
// Store and Checkout are optional.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Audit    *audit.Dispatcher
	Limiter  *middleware.RateLimiter
	Cache    stats.Cache
	Store    handlers.ObjectStore
	Checkout payment.CheckoutProvider
	Now      func() time.Time
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config

	// ======================================================
	// MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins()))

	// ======================================================
	// INFRA
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(d.DB)
	paymentRepo := infraRepo.NewPaymentGormRepository(d.DB, cfg.Timezone)
	statsRepo := infraRepo.NewStatsGormRepository(d.DB, cfg.Timezone)

	hours := domain.WorkingHours{
		Start:       cfg.WorkStart,
		End:         cfg.WorkEnd,
		SlotMinutes: cfg.SlotMinutes,
	}

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.DB, cfg.JWTSecret, d.Audit, d.Now)
	meHandler := handlers.NewMeHandler(d.DB, d.Store, d.Audit, d.Now)
	stylistHandler := handlers.NewStylistHandler(d.DB)
	publicHandler := handlers.NewPublicHandler(d.DB, appointmentRepo, hours, d.Now)

	clientHandler := handlers.NewClientHandler(d.DB, statsRepo, d.Audit, d.Now)
	serviceHandler := handlers.NewServiceHandler(d.DB, statsRepo, d.Audit, d.Now)
	attentionHandler := handlers.NewAttentionHandler(d.DB, statsRepo, d.Audit, d.Now)
	workingHoursHandler := handlers.NewWorkingHoursHandler(d.DB, d.Audit, hours)

	appointmentHandler := handlers.NewAppointmentHandler(appointmentRepo, d.Audit, hours, d.Now)
	paymentHandler := handlers.NewPaymentHandler(paymentRepo, d.Audit, d.Checkout, d.Now)

	dashboardHandler := handlers.NewDashboardHandler(statsRepo, d.Cache, d.Now)
	reportHandler := handlers.NewReportHandler(statsRepo, d.Cache, d.Store, d.Audit, d.Now)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB, cfg.Timezone)

	// ======================================================
	// HEALTH
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": d.Now().Format(time.RFC3339)})
	})

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/services", publicHandler.ListServices)
			publicAPI.GET("/stylists/:id/available-slots", publicHandler.AvailableSlots)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		authAPI := api.Group("/auth")
		authAPI.Use(d.Limiter.Middleware())
		{
			authAPI.POST("/register", authHandler.Register)
			authAPI.POST("/login", authHandler.Login)
		}

		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			secured.GET("/auth/user", meHandler.GetMe)
			secured.PUT("/auth/profile", meHandler.UpdateProfile)
			secured.POST("/auth/avatar", meHandler.UploadAvatar)
			secured.POST("/auth/logout", authHandler.Logout)
		}

		// ------------------------------
		// STAFF
		// ------------------------------
		staff := secured.Group("/")
		staff.Use(middleware.RequireRole(models.RoleAdmin, models.RoleStylist))
		{
			staff.GET("/stylists", stylistHandler.List)

			staff.GET("/working-hours", workingHoursHandler.Get)
			staff.PUT("/working-hours", workingHoursHandler.Update)

			// CLIENTS
			staff.GET("/clients/stats", clientHandler.Overview)
			staff.GET("/clients", clientHandler.Index)
			staff.POST("/clients", clientHandler.Store)
			staff.GET("/clients/:id", clientHandler.Show)
			staff.PUT("/clients/:id", clientHandler.Update)
			staff.DELETE("/clients/:id", clientHandler.Destroy)
			staff.PATCH("/clients/:id/toggle-status", clientHandler.ToggleStatus)
			staff.GET("/clients/:id/appointments", clientHandler.Appointments)
			staff.GET("/clients/:id/stats", clientHandler.Stats)

			// SERVICES
			staff.GET("/services/popular", serviceHandler.Popular)
			staff.GET("/services", serviceHandler.Index)
			staff.POST("/services", serviceHandler.Store)
			staff.GET("/services/:id", serviceHandler.Show)
			staff.PUT("/services/:id", serviceHandler.Update)
			staff.DELETE("/services/:id", serviceHandler.Destroy)
			staff.PATCH("/services/:id/toggle-status", serviceHandler.ToggleStatus)

			// APPOINTMENTS
			staff.GET("/appointments/today", appointmentHandler.Today)
			staff.GET("/appointments/available-slots", appointmentHandler.AvailableSlots)
			staff.GET("/appointments/check-availability", appointmentHandler.CheckAvailability)
			staff.GET("/appointments/search", appointmentHandler.Search)
			staff.GET("/appointments/stats", dashboardHandler.AppointmentStats)
			staff.GET("/appointments", appointmentHandler.Index)
			staff.POST("/appointments", appointmentHandler.Store)
			staff.GET("/appointments/:id", appointmentHandler.Show)
			staff.PUT("/appointments/:id", appointmentHandler.Update)
			staff.DELETE("/appointments/:id", appointmentHandler.Destroy)
			staff.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)
			staff.PATCH("/appointments/:id/confirm", appointmentHandler.Confirm)
			staff.PATCH("/appointments/:id/start", appointmentHandler.Start)
			staff.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
			staff.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
			staff.PATCH("/appointments/:id/no-show", appointmentHandler.NoShow)
			staff.PATCH("/appointments/:id/reschedule", appointmentHandler.Reschedule)

			// PAYMENTS
			staff.GET("/payments", paymentHandler.Index)
			staff.POST("/payments", paymentHandler.Store)
			staff.GET("/payments/appointment/:id/summary", paymentHandler.Summary)
			staff.POST("/payments/appointment/:id/checkout", paymentHandler.Checkout)
			staff.GET("/payments/:id", paymentHandler.Show)
			staff.PUT("/payments/:id", paymentHandler.Update)
			staff.DELETE("/payments/:id", paymentHandler.Destroy)
			staff.POST("/payments/:id/refund", paymentHandler.Refund)

			// ATTENTIONS
			staff.GET("/attentions/stats", attentionHandler.Stats)
			staff.GET("/attentions", attentionHandler.Index)
			staff.POST("/attentions", attentionHandler.Store)
			staff.GET("/attentions/:id", attentionHandler.Show)
			staff.PUT("/attentions/:id", attentionHandler.Update)
			staff.DELETE("/attentions/:id", attentionHandler.Destroy)
			staff.PATCH("/attentions/:id/status", attentionHandler.UpdateStatus)

			// DASHBOARD
			staff.GET("/dashboard/stats", dashboardHandler.Stats)
			staff.GET("/dashboard/monthly-overview", dashboardHandler.MonthlyOverview)
			staff.GET("/dashboard/quick-stats", dashboardHandler.QuickStats)

			// REPORTS
			staff.GET("/reports/clients-by-appointment", reportHandler.ClientsByAppointment)
			staff.GET("/reports/clients-attentions-services", reportHandler.ClientsAttentions)
			staff.GET("/reports/client-sales", reportHandler.ClientSales)
			staff.GET("/reports/appointments-attentions", reportHandler.AppointmentsAttentions)
			staff.GET("/reports/consolidated", reportHandler.Consolidated)
			staff.GET("/reports/export", reportHandler.Export)
		}

		// ------------------------------
		// ADMIN
		// ------------------------------
		admin := secured.Group("/")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/reports/export/upload", reportHandler.Upload)
			admin.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
