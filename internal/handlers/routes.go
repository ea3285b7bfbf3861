package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/physiocare-api/internal/middleware"
	"github.com/harentsoaR/physiocare-api/internal/policy"
)

type RouterConfig struct {
	BasePath    string
	CORSOrigins []string
	Logger      zerolog.Logger
	// Auth authenticates the protected routes; see middleware.AuthMiddleware.
	Auth gin.HandlerFunc
}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(cfg.Logger),
		middleware.Recovery(cfg.Logger),
	)

	// cors panics on an empty origin list.
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", h.Health)

	api := r.Group(cfg.BasePath)

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/logout", cfg.Auth, h.Logout)
		authRoutes.GET("/me", cfg.Auth, h.GetCurrentUser)
		authRoutes.POST("/register", cfg.Auth, middleware.RequireRole(policy.RoleAdmin), h.RegisterUser)
	}

	patients := api.Group("/patients", cfg.Auth)
	{
		patients.GET("", h.ListPatients)
		patients.GET("/find", h.FindPatients)
		patients.GET("/:id", h.GetPatient)
		patients.POST("", h.CreatePatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
	}

	physios := api.Group("/physios", cfg.Auth)
	{
		physios.GET("", h.ListPhysios)
		physios.GET("/find", h.FindPhysios)
		physios.GET("/:id", h.GetPhysio)
		physios.POST("", h.CreatePhysio)
		physios.PUT("/:id", h.UpdatePhysio)
		physios.DELETE("/:id", h.DeletePhysio)
	}

	records := api.Group("/records", cfg.Auth)
	{
		records.GET("", h.ListRecords)
		records.GET("/find", h.FindRecords)
		records.GET("/appointments", h.ListAppointments)
		records.GET("/appointments/physio/:physioId", h.GetPhysioAppointments)
		records.DELETE("/appointments/:appointmentId", h.CancelAppointmentByID)
		records.GET("/patient/:patientId", h.GetPatientRecord)
		records.GET("/patient/:patientId/id", h.GetPatientRecordID)
		records.GET("/patient/:patientId/appointments", h.GetPatientAppointments)
		records.GET("/patient/:patientId/appointments/count", h.CountPatientAppointments)
		records.POST("/patient/:patientId/appointments", h.CreatePatientAppointment)
		records.GET("/:id", h.GetRecord)
		records.POST("", h.CreateRecord)
		records.POST("/:id/appointments", h.CreateAppointment)
		records.DELETE("/:id/appointments/:appointmentId", h.CancelAppointment)
		records.DELETE("/:id", h.DeleteRecord)
	}

	return r
}
