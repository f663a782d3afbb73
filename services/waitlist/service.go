package waitlist

import (
	"context"
	"errors"
	"fmt"

	"slotwise/models"
	"slotwise/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// defaultExpirationMinutes applies when a service does not configure its own
// notification expiry window.
const defaultExpirationMinutes = 15

// Enqueue joins the client to the service's waitlist at the back of the
// queue. Position assignment is serialized per service so concurrent
// enqueues cannot mint duplicate ranks.
func (e *DefaultEngine) Enqueue(ctx context.Context, req EnqueueRequest) (*models.WaitlistEntry, error) {
	if err := validateEnqueue(req); err != nil {
		return nil, err
	}

	svc, err := e.Services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError(fmt.Sprintf("service %s not found", req.ServiceID))
		}
		return nil, utils.TransientError("failed to load service", err)
	}
	if !svc.WaitlistEnabled {
		return nil, utils.ValidationError(fmt.Sprintf("service %s does not accept waitlist entries", req.ServiceID))
	}

	entry := &models.WaitlistEntry{
		ID:                uuid.New().String(),
		ClientID:          req.ClientID,
		ServiceID:         req.ServiceID,
		ProviderID:        req.ProviderID,
		OrganizationID:    req.OrganizationID,
		Type:              req.Type,
		SlotID:            req.SlotID,
		Date:              req.Date,
		TimeFrom:          req.TimeFrom,
		TimeTo:            req.TimeTo,
		Status:            models.WaitlistWaiting,
		ExpirationMinutes: svc.WaitlistExpirationMinutes,
	}
	if entry.ExpirationMinutes <= 0 {
		entry.ExpirationMinutes = defaultExpirationMinutes
	}

	if req.Type == models.WaitlistSpecific {
		slot, err := e.Slots.GetByID(ctx, req.SlotID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, utils.NotFoundError(fmt.Sprintf("slot %s not found", req.SlotID))
			}
			return nil, utils.TransientError("failed to load target slot", err)
		}
		if slot.ServiceID != req.ServiceID {
			return nil, utils.ValidationError("target slot does not belong to the given service")
		}
		if slot.Status == models.SlotFree || slot.Status == models.SlotFreeAfterCancel {
			return nil, utils.ValidationError(fmt.Sprintf("slot %s is free, enroll directly", req.SlotID))
		}
		// a SPECIFIC entry's demand is exactly the target slot's interval
		entry.Date = slot.Date
		entry.TimeFrom = slot.Start
		entry.TimeTo = slot.End
	}

	active, err := e.Repo.HasActiveEntry(ctx, req.ClientID, req.ServiceID, entry.Date)
	if err != nil {
		return nil, utils.TransientError("failed to check existing waitlist entries", err)
	}
	if active {
		return nil, utils.ConflictError(fmt.Sprintf("client %s already waits for service %s on %s", req.ClientID, req.ServiceID, entry.Date))
	}

	release, err := e.Locker.Acquire(ctx, "waitlist:"+req.ServiceID)
	if err != nil {
		return nil, utils.TransientError("failed to serialize waitlist access", err)
	}
	defer release()

	waiting, err := e.Repo.CountWaiting(ctx, req.ServiceID)
	if err != nil {
		return nil, utils.TransientError("failed to count waiting entries", err)
	}
	entry.Position = int(waiting) + 1

	if err := e.Repo.Create(ctx, entry); err != nil {
		return nil, utils.TransientError("failed to persist waitlist entry", err)
	}

	e.Audit.Record(ctx, "waitlist.enqueue", req.ClientID, []string{entry.ID, req.ServiceID}, "queued")
	return entry, nil
}

// OnSlotReleased offers freed capacity to at most one queued entry. SPECIFIC
// entries bound to this exact slot take precedence over TIME_WINDOW entries;
// within a kind the lowest position wins.
func (e *DefaultEngine) OnSlotReleased(ctx context.Context, slot *models.Slot) error {
	if slot == nil || slot.Terminal() || slot.FreeSlots <= 0 {
		return nil
	}

	release, err := e.Locker.Acquire(ctx, "waitlist:"+slot.ServiceID)
	if err != nil {
		return fmt.Errorf("serialize candidate selection: %w", err)
	}
	defer release()

	waiting, err := e.Repo.FindWaiting(ctx, slot.ServiceID, slot.Date)
	if err != nil {
		return fmt.Errorf("load waiting entries: %w", err)
	}

	// FindWaiting is position-ordered, so the first covering entry of each
	// kind is that kind's winner.
	var candidates []models.WaitlistEntry
	for _, kind := range []string{models.WaitlistSpecific, models.WaitlistTimeWindow} {
		for _, entry := range waiting {
			if entry.Type == kind && entry.CoversSlot(slot) {
				candidates = append(candidates, entry)
				break
			}
		}
	}

	for _, entry := range candidates {
		now := e.Clock.Now()
		expires := now.Add(entry.ExpirationDuration())
		if err := e.Repo.MarkNotified(ctx, entry.ID, slot.ID, now, expires); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue // raced into another state, try the next kind
			}
			return fmt.Errorf("notify waitlist entry %s: %w", entry.ID, err)
		}
		entry.Status = models.WaitlistNotified
		entry.NotifiedSlotID = slot.ID
		entry.NotifiedAt = &now
		entry.ExpiresAt = &expires

		// the notified entry left the WAITING set, close its position gap
		// while the lock is still held
		if err := e.renumber(ctx, slot.ServiceID); err != nil {
			e.Logger.Error("position renumbering after notification failed",
				zap.String("serviceId", slot.ServiceID),
				zap.Error(err),
			)
		}

		if err := e.Notify.NotifySlotAvailable(ctx, entry, *slot); err != nil {
			e.Logger.Warn("slot-available notification dispatch failed",
				zap.String("entryId", entry.ID),
				zap.String("slotId", slot.ID),
				zap.Error(err),
			)
		}
		e.Audit.Record(ctx, "waitlist.notify", "", []string{entry.ID, slot.ID}, "notified")
		return nil
	}
	return nil
}

// SweepExpired expires every NOTIFIED entry past its deadline. SPECIFIC
// expirations cascade the slot to the next candidate; TIME_WINDOW
// expirations release the offered slot back to FREE_AFTER_CANCEL. Entry
// failures are isolated so one bad record cannot stall the sweep.
func (e *DefaultEngine) SweepExpired(ctx context.Context) (int, error) {
	expired, err := e.Repo.FindExpired(ctx, e.Clock.Now())
	if err != nil {
		return 0, utils.TransientError("failed to query expired waitlist entries", err)
	}

	swept := 0
	for _, entry := range expired {
		if err := e.expireEntry(ctx, &entry); err != nil {
			e.Logger.Error("waitlist expiration failed",
				zap.String("entryId", entry.ID),
				zap.Error(err),
			)
			continue
		}
		swept++
	}
	if swept > 0 {
		e.Logger.Info("expired waitlist entries", zap.Int("count", swept))
	}
	return swept, nil
}

func (e *DefaultEngine) expireEntry(ctx context.Context, entry *models.WaitlistEntry) error {
	if err := e.Repo.MarkExpired(ctx, entry.ID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil // fulfilled or cancelled since the query ran
		}
		return fmt.Errorf("mark expired: %w", err)
	}
	e.Audit.Record(ctx, "waitlist.expire", "", []string{entry.ID}, "expired")

	switch entry.Type {
	case models.WaitlistSpecific:
		slot, err := e.Slots.GetByID(ctx, entry.SlotID)
		if err != nil {
			return fmt.Errorf("load slot %s for cascade: %w", entry.SlotID, err)
		}
		if err := e.OnSlotReleased(ctx, slot); err != nil {
			return fmt.Errorf("cascade release of slot %s: %w", entry.SlotID, err)
		}
	case models.WaitlistTimeWindow:
		if entry.NotifiedSlotID == "" {
			return nil
		}
		if err := e.Slots.UpdateStatus(ctx, entry.NotifiedSlotID, models.SlotFreeAfterCancel); err != nil {
			return fmt.Errorf("release offered slot %s: %w", entry.NotifiedSlotID, err)
		}
	}
	return nil
}

// CancelEntry removes the client's own entry from the queue and closes the
// resulting position gap.
func (e *DefaultEngine) CancelEntry(ctx context.Context, entryID, clientID string) error {
	entry, err := e.Repo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.NotFoundError(fmt.Sprintf("waitlist entry %s not found", entryID))
		}
		return utils.TransientError("failed to load waitlist entry", err)
	}
	if entry.ClientID != clientID {
		// ownership mismatch reads the same as absence
		return utils.NotFoundError(fmt.Sprintf("waitlist entry %s not found", entryID))
	}

	if err := e.Repo.MarkCancelled(ctx, entryID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.ConflictError(fmt.Sprintf("waitlist entry %s is already %s", entryID, entry.Status))
		}
		return utils.TransientError("failed to cancel waitlist entry", err)
	}

	if err := e.RecalculatePositions(ctx, entry.ServiceID); err != nil {
		e.Logger.Error("position renumbering after cancellation failed",
			zap.String("serviceId", entry.ServiceID),
			zap.Error(err),
		)
	}

	e.Audit.Record(ctx, "waitlist.cancel", clientID, []string{entryID}, "cancelled")
	return nil
}

// RecalculatePositions renumbers the service's WAITING entries as a dense
// 1..N sequence ordered by creation time, ties broken by id.
func (e *DefaultEngine) RecalculatePositions(ctx context.Context, serviceID string) error {
	release, err := e.Locker.Acquire(ctx, "waitlist:"+serviceID)
	if err != nil {
		return fmt.Errorf("serialize position renumbering: %w", err)
	}
	defer release()

	return e.renumber(ctx, serviceID)
}

// renumber does the position rewrite. The caller must hold the service's
// waitlist lock; the lock is not reentrant.
func (e *DefaultEngine) renumber(ctx context.Context, serviceID string) error {
	waiting, err := e.Repo.FindWaitingByService(ctx, serviceID)
	if err != nil {
		return fmt.Errorf("load waiting entries: %w", err)
	}

	positions := make(map[string]int, len(waiting))
	for i, entry := range waiting {
		if entry.Position != i+1 {
			positions[entry.ID] = i + 1
		}
	}
	if len(positions) == 0 {
		return nil
	}
	if err := e.Repo.SetPositions(ctx, positions); err != nil {
		return fmt.Errorf("rewrite positions: %w", err)
	}
	return nil
}

// Fulfill reconciles a successful enrollment with a pending notification:
// if the client had been offered this capacity, the entry closes as
// FULFILLED. Purely best-effort, enrollment never depends on it.
func (e *DefaultEngine) Fulfill(ctx context.Context, slot *models.Slot, clientID string) error {
	notified, err := e.Repo.FindNotifiedForClient(ctx, clientID, slot.ServiceID, slot.Date)
	if err != nil {
		return fmt.Errorf("load notified entries: %w", err)
	}
	for _, entry := range notified {
		if !entry.CoversSlot(slot) {
			continue
		}
		if err := e.Repo.MarkFulfilled(ctx, entry.ID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue
			}
			return fmt.Errorf("fulfill waitlist entry %s: %w", entry.ID, err)
		}
		e.Audit.Record(ctx, "waitlist.fulfill", clientID, []string{entry.ID, slot.ID}, "fulfilled")
		return nil
	}
	return nil
}

func validateEnqueue(req EnqueueRequest) error {
	if req.ClientID == "" || req.ServiceID == "" {
		return utils.ValidationError("clientId and serviceId are required")
	}
	switch req.Type {
	case models.WaitlistSpecific:
		if req.SlotID == "" {
			return utils.ValidationError("slotId is required for SPECIFIC entries")
		}
	case models.WaitlistTimeWindow:
		if req.Date == "" {
			return utils.ValidationError("date is required for TIME_WINDOW entries")
		}
		if _, err := utils.ParseDate(req.Date); err != nil {
			return utils.ValidationError("date must be a valid YYYY-MM-DD date")
		}
		if req.TimeFrom < 0 || req.TimeTo > 24*60 || req.TimeFrom >= req.TimeTo {
			return utils.ValidationError("timeFrom/timeTo must describe a non-empty range within the day")
		}
	default:
		return utils.ValidationError("type must be SPECIFIC or TIME_WINDOW")
	}
	return nil
}
