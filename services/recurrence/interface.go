package recurrence

import (
	"context"

	recurrenceRepo "slotwise/database/repository/recurrence"
	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/services/audit"
	"slotwise/utils"

	"go.uber.org/zap"
)

// CreateRequest carries the inputs for binding a client to a repeating
// pattern.
type CreateRequest struct {
	ClientID        string `json:"clientId"`
	ServiceID       string `json:"serviceId"`
	ProviderID      string `json:"providerId"`
	SourceSlotID    string `json:"sourceSlotId"`
	Type            string `json:"type"`
	OccurrenceCount int    `json:"occurrenceCount,omitempty"`
	EndDate         string `json:"endDate,omitempty"`
}

// Engine binds clients to repeating day/time patterns across future slots.
type Engine interface {
	CheckFeasibility(ctx context.Context, sourceSlotID string) (*models.FeasibilityReport, error)
	Create(ctx context.Context, req CreateRequest, actor string) (*models.Recurrence, error)
	Cancel(ctx context.Context, recurrenceID, actor string) error
	// ApplyToNewSlots is invoked by the generator after a daily extension so
	// standing recurrences claim matching slots on the fresh day.
	ApplyToNewSlots(ctx context.Context, svc *models.Service, date string, newSlots []models.Slot) error
}

// DefaultEngine is the production implementation.
type DefaultEngine struct {
	Repo   recurrenceRepo.RecurrenceRepository
	Slots  slotRepo.SlotRepository
	Audit  audit.AuditService
	Clock  utils.Clock
	Logger *zap.Logger

	// ScanMonths bounds the feasibility scan; ForeverMonths bounds eager
	// assignment for FOREVER recurrences (propagation past that point rides
	// on daily extension).
	ScanMonths    int
	ForeverMonths int
}

func (e *DefaultEngine) scanMonths() int {
	if e.ScanMonths <= 0 {
		return 6
	}
	return e.ScanMonths
}

func (e *DefaultEngine) foreverMonths() int {
	if e.ForeverMonths <= 0 {
		return 12
	}
	return e.ForeverMonths
}
