package router

import (
	"github.com/gin-gonic/gin"

	"deedflow/internal/config"
	"deedflow/internal/domain"
	"deedflow/internal/handler"
	"deedflow/internal/middleware"
	"deedflow/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	formH *handler.FormHandler,
	deliveryH *handler.DeliveryHandler,
	fileH *handler.FileHandler,
	userH *handler.UserHandler,
	reportH *handler.ReportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	protected.GET("/auth/me", authH.Me)

	// Form lifecycle
	forms := protected.Group("/forms")
	forms.POST("", formH.Submit)
	forms.GET("", formH.List)
	forms.GET("/queue", middleware.RequireStaff(), formH.Queue)
	forms.GET("/:id", formH.Get)
	forms.GET("/:id/audit", formH.AuditTrail)
	forms.GET("/:id/files", fileH.ListByForm)
	forms.POST("/:id/advance", middleware.RequireStaff(), formH.Advance)
	forms.POST("/:id/final-done", middleware.RequireRole(domain.RoleStaff2, domain.RoleAdmin), formH.FinalDone)
	forms.POST("/:id/submit", formH.Finalize)
	forms.POST("/:id/resubmit", formH.Resubmit)
	forms.POST("/:id/notes", middleware.RequireStaff(), formH.AddNote)

	// Delivery sub-workflow
	forms.POST("/:id/delivery", deliveryH.Select)
	forms.POST("/:id/delivery/decide", middleware.RequireRole(domain.RoleStaff4, domain.RoleAdmin), deliveryH.Decide)
	forms.POST("/:id/delivery/dispatch", middleware.RequireRole(domain.RoleStaff4, domain.RoleStaff5, domain.RoleAdmin), deliveryH.Dispatch)
	forms.POST("/:id/delivery/delivered", middleware.RequireRole(domain.RoleStaff4, domain.RoleStaff5, domain.RoleAdmin), deliveryH.Delivered)

	// Attachments
	files := protected.Group("/files")
	files.POST("", fileH.Upload)
	files.GET("/:id", fileH.Get)
	files.GET("/:id/download", fileH.DownloadURL)
	files.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), fileH.Delete)

	// Reports
	reports := protected.Group("/reports")
	reports.GET("/register", middleware.RequireStaff(), reportH.ExportRegister)

	// User management
	users := protected.Group("/users")
	users.Use(middleware.RequireRole(domain.RoleAdmin))
	users.POST("", userH.Create)
	users.GET("", userH.List)
	users.GET("/:id", userH.Get)
	users.PUT("/:id", userH.Update)
	users.DELETE("/:id", userH.Delete)

	return r
}
