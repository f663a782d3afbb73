package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Service management endpoints
	CreateServiceHandler gin.HandlerFunc
	UpdateServiceHandler gin.HandlerFunc
	DeleteServiceHandler gin.HandlerFunc
	GetServiceHandler    gin.HandlerFunc
	ListServicesHandler  gin.HandlerFunc

	// Availability endpoints
	SetWindowsHandler           gin.HandlerFunc
	GetWindowsHandler           gin.HandlerFunc
	DeleteWindowHandler         gin.HandlerFunc
	CreateUnavailabilityHandler gin.HandlerFunc
	DeleteUnavailabilityHandler gin.HandlerFunc
	AnalyzeImpactHandler        gin.HandlerFunc
	ApplyChangeHandler          gin.HandlerFunc

	// Generation endpoints
	GenerateForServiceHandler gin.HandlerFunc
	ExtendByOneDayHandler     gin.HandlerFunc

	// Slot booking endpoints
	ListSlotsHandler             gin.HandlerFunc
	EnrollHandler                gin.HandlerFunc
	UnenrollHandler              gin.HandlerFunc
	ListClientEnrollmentsHandler gin.HandlerFunc

	// Recurrence endpoints
	CheckFeasibilityHandler gin.HandlerFunc
	CreateRecurrenceHandler gin.HandlerFunc
	CancelRecurrenceHandler gin.HandlerFunc

	// Waitlist endpoints
	EnqueueWaitlistHandler     gin.HandlerFunc
	CancelWaitlistEntryHandler gin.HandlerFunc

	// Operational endpoints
	HealthHandler gin.HandlerFunc
}

// actor resolves the acting user for attribution. Falls back to the given
// default (usually the client id in the request) when the header is absent.
func actor(c *gin.Context, fallback string) string {
	if a := c.GetHeader("X-Actor-Id"); a != "" {
		return a
	}
	return fallback
}
