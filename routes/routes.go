package routes

import (
	"time"

	"slotwise/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterServiceRoutes registers service management and availability
// endpoints.
func RegisterServiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.POST("", hb.CreateServiceHandler)
		api.GET("", hb.ListServicesHandler)
		api.GET("/:id", hb.GetServiceHandler)
		api.PUT("/:id", hb.UpdateServiceHandler)
		api.DELETE("/:id", hb.DeleteServiceHandler)

		// Availability windows and blackouts.
		api.PUT("/:id/windows", hb.SetWindowsHandler)
		api.GET("/:id/windows", hb.GetWindowsHandler)
		api.DELETE("/:id/windows/:windowId", hb.DeleteWindowHandler)

		// Availability change impact surface.
		api.POST("/:id/windows/analyze", hb.AnalyzeImpactHandler)
		api.POST("/:id/windows/apply", hb.ApplyChangeHandler)

		// Slot generation.
		api.POST("/:id/generate", hb.GenerateForServiceHandler)
		api.POST("/:id/extend", hb.ExtendByOneDayHandler)

		// Slot listing.
		api.GET("/:id/slots", hb.ListSlotsHandler)
	}
}

// RegisterUnavailabilityRoutes registers blackout management endpoints.
func RegisterUnavailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/unavailability")
	{
		api.POST("", hb.CreateUnavailabilityHandler)
		api.DELETE("/:unavailabilityId", hb.DeleteUnavailabilityHandler)
	}
}

// RegisterSlotRoutes registers booking endpoints.
func RegisterSlotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/slots")
	{
		api.POST("/:slotId/enroll", hb.EnrollHandler)
		api.POST("/:slotId/unenroll", hb.UnenrollHandler)
		api.GET("/:slotId/feasibility", hb.CheckFeasibilityHandler)
	}
	r.GET("/api/clients/:clientId/enrollments", hb.ListClientEnrollmentsHandler)
}

// RegisterRecurrenceRoutes registers recurrence endpoints.
func RegisterRecurrenceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/recurrences")
	{
		api.POST("", hb.CreateRecurrenceHandler)
		api.DELETE("/:recurrenceId", hb.CancelRecurrenceHandler)
	}
}

// RegisterWaitlistRoutes registers waitlist endpoints.
func RegisterWaitlistRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/waitlist")
	{
		api.POST("", hb.EnqueueWaitlistHandler)
		api.DELETE("/:entryId", hb.CancelWaitlistEntryHandler)
	}
}

// RegisterRoutes wires global middleware and all endpoint groups.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Actor-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", hb.HealthHandler)

	RegisterServiceRoutes(r, hb)
	RegisterUnavailabilityRoutes(r, hb)
	RegisterSlotRoutes(r, hb)
	RegisterRecurrenceRoutes(r, hb)
	RegisterWaitlistRoutes(r, hb)
}
