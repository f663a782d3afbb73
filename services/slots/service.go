package slots

import (
	"context"
	"errors"
	"fmt"

	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func (e *DefaultSlotEngine) Enroll(ctx context.Context, slotID, clientID, actor string) (*models.Slot, error) {
	if clientID == "" {
		return nil, utils.ValidationError("clientId is required")
	}

	slot, err := e.Repo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError(fmt.Sprintf("slot %s not found", slotID))
		}
		return nil, err
	}
	if slot.Terminal() {
		return nil, utils.ConflictError(fmt.Sprintf("slot %s is %s", slotID, slot.Status))
	}
	if slot.FreeSlots <= 0 {
		return nil, utils.ConflictError(fmt.Sprintf("slot %s is full", slotID))
	}

	enr := &models.Enrollment{
		SlotID:    slotID,
		ServiceID: slot.ServiceID,
		ClientID:  clientID,
		CreatedBy: actor,
	}
	updated, err := e.Repo.Enroll(ctx, slotID, enr)
	if err != nil {
		if errors.Is(err, slotRepo.ErrNoCapacity) {
			// The pre-read raced a concurrent writer; the guarded update is
			// the source of truth.
			return nil, utils.ConflictError(fmt.Sprintf("slot %s has no free capacity", slotID))
		}
		return nil, err
	}

	// Best-effort reconciliation of a pending waitlist notification.
	if err := e.Waitlist.Fulfill(ctx, updated, clientID); err != nil {
		e.Logger.Warn("waitlist fulfillment reconciliation failed",
			zap.String("slotId", slotID),
			zap.String("clientId", clientID),
			zap.Error(err))
	}

	e.Audit.Record(ctx, "slot.enroll", actor, []string{slotID, clientID}, "ok")
	return updated, nil
}

func (e *DefaultSlotEngine) Unenroll(ctx context.Context, slotID, clientID, actor string) (*models.Slot, error) {
	if clientID == "" {
		return nil, utils.ValidationError("clientId is required")
	}

	updated, err := e.Repo.Unenroll(ctx, slotID, clientID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrNotEnrolled) {
			return nil, utils.NotFoundError(fmt.Sprintf("client %s is not enrolled in slot %s", clientID, slotID))
		}
		return nil, err
	}

	// Offer the freed seat to queued demand. A waitlist failure must not
	// undo the unenroll; the seat simply stays open.
	if err := e.Waitlist.OnSlotReleased(ctx, updated); err != nil {
		e.Logger.Error("waitlist release handling failed",
			zap.String("slotId", slotID),
			zap.Error(err))
	}

	e.Audit.Record(ctx, "slot.unenroll", actor, []string{slotID, clientID}, "ok")
	return updated, nil
}

func (e *DefaultSlotEngine) CompleteElapsed(ctx context.Context) (int64, error) {
	moved, err := e.Repo.CompleteElapsed(ctx, e.Clock.Now())
	if err != nil {
		return moved, utils.TransientError("end-of-day completion sweep failed", err)
	}
	if moved > 0 {
		e.Logger.Info("completed elapsed slots", zap.Int64("count", moved))
	}
	return moved, nil
}

func (e *DefaultSlotEngine) ListClientEnrollments(ctx context.Context, clientID, serviceID string) ([]models.Enrollment, error) {
	if clientID == "" || serviceID == "" {
		return nil, utils.ValidationError("clientId and serviceId are required")
	}
	enrollments, err := e.Repo.FindEnrollmentsByClientAndService(ctx, clientID, serviceID)
	if err != nil {
		return nil, utils.TransientError("failed to load enrollments", err)
	}
	return enrollments, nil
}
