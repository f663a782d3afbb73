package impact

import (
	"context"

	availabilityRepo "slotwise/database/repository/availability"
	clientRepo "slotwise/database/repository/client"
	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/services/audit"
	"slotwise/services/notification"
	"slotwise/services/tasks"
	"slotwise/utils"

	"go.uber.org/zap"
)

// Analyzer measures and applies the booking impact of availability changes.
// AnalyzeImpact is read-only; ApplyChange is the destructive counterpart,
// gated on that read, whose reprocessing runs off the request path.
type Analyzer interface {
	AnalyzeImpact(ctx context.Context, serviceID string, proposed []models.AvailabilityWindow) (*models.ImpactReport, error)
	ApplyChange(ctx context.Context, serviceID string, proposed []models.AvailabilityWindow, actor string) error
	// ReprocessAffected is the worker-side half of ApplyChange: cancels the
	// reserved slots that no longer fit the stored windows and notifies
	// their clients.
	ReprocessAffected(ctx context.Context, serviceID, actor string) error
}

// DefaultAnalyzer is the production implementation.
type DefaultAnalyzer struct {
	Slots        slotRepo.SlotRepository
	Availability availabilityRepo.AvailabilityRepository
	Clients      clientRepo.ClientRepository
	Notify       notification.NotificationService
	Audit        audit.AuditService
	Runner       tasks.Submitter
	Clock        utils.Clock
	Logger       *zap.Logger
}
