package recurrence

import (
	"context"
	"errors"
	"fmt"
	"time"

	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CheckFeasibility scans future slots matching the source slot's
// (dayOfWeek, timeOfDay) pattern over a bounded horizon and partitions them
// into available and conflicting. A slot counts as available when it is fully
// free (FREE or FREE_AFTER_CANCEL); cancelled slots are ignored; anything
// else conflicts. Dates with no generated slot yet are counted in neither
// bucket, daily extension will cover them.
func (e *DefaultEngine) CheckFeasibility(ctx context.Context, sourceSlotID string) (*models.FeasibilityReport, error) {
	slot, err := e.Slots.GetByID(ctx, sourceSlotID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError(fmt.Sprintf("slot %s not found", sourceSlotID))
		}
		return nil, utils.TransientError("failed to load source slot", err)
	}

	day, err := utils.ParseDate(slot.Date)
	if err != nil {
		return nil, utils.TransientError("source slot carries an invalid date", err)
	}

	horizon := day.AddDate(0, e.scanMonths(), 0)
	report, _, err := e.scanPattern(ctx, slot.ServiceID, day, horizon, slot.Start)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// scanPattern walks the weekly dates in (from, until], fetches the slots
// starting at startMinutes and partitions them. It also returns the available
// slots themselves so Create can reuse the scan for eager assignment.
func (e *DefaultEngine) scanPattern(ctx context.Context, serviceID string, from, until time.Time, startMinutes int) (*models.FeasibilityReport, []models.Slot, error) {
	var dates []string
	for d := from.AddDate(0, 0, 7); !d.After(until); d = d.AddDate(0, 0, 7) {
		dates = append(dates, utils.FormatDate(d))
	}

	report := &models.FeasibilityReport{}
	var available []models.Slot
	if len(dates) > 0 {
		slots, err := e.Slots.FindByServiceDatesAndStart(ctx, serviceID, dates, startMinutes)
		if err != nil {
			return nil, nil, utils.TransientError("failed to scan matching slots", err)
		}
		for _, s := range slots {
			switch s.Status {
			case models.SlotFree, models.SlotFreeAfterCancel:
				report.AvailableCount++
				report.AvailableDates = append(report.AvailableDates, s.Date)
				available = append(available, s)
			case models.SlotCancelled:
				// ignored, the interval no longer exists for booking
			default:
				report.ConflictingCount++
				report.ConflictingDates = append(report.ConflictingDates, s.Date)
			}
		}
	}

	report.Feasible = report.ConflictingCount == 0
	weekday := utils.ISOWeekday(from)
	hhmm := utils.MinutesToHHMM(startMinutes)
	if report.Feasible {
		report.Verdict = fmt.Sprintf("recurrence is feasible: %d available slot(s) for weekday %d at %s, no conflicts",
			report.AvailableCount, weekday, hhmm)
	} else {
		report.Verdict = fmt.Sprintf("recurrence is not feasible: %d conflicting slot(s) for weekday %d at %s",
			report.ConflictingCount, weekday, hhmm)
	}
	return report, available, nil
}

// Create persists a recurrence anchored on the source slot and eagerly
// enrolls the client into every matching available slot within the type's
// horizon. The source slot counts as the first occurrence.
func (e *DefaultEngine) Create(ctx context.Context, req CreateRequest, actor string) (*models.Recurrence, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	slot, err := e.Slots.GetByID(ctx, req.SourceSlotID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError(fmt.Sprintf("slot %s not found", req.SourceSlotID))
		}
		return nil, utils.TransientError("failed to load source slot", err)
	}
	if slot.ServiceID != req.ServiceID {
		return nil, utils.ValidationError("source slot does not belong to the given service")
	}
	if !enrolled(slot, req.ClientID) {
		return nil, utils.ValidationError("client is not enrolled in the source slot")
	}

	day, err := utils.ParseDate(slot.Date)
	if err != nil {
		return nil, utils.TransientError("source slot carries an invalid date", err)
	}
	// The conflict scan stops at the recurrence's own end condition when it
	// is known; only FOREVER falls back to the generic scan horizon. A slot
	// conflicting past the recurrence's last occurrence is not a conflict.
	horizon := day.AddDate(0, e.scanMonths(), 0)
	switch req.Type {
	case models.RecurrenceEndDate:
		end, perr := utils.ParseDate(req.EndDate)
		if perr != nil {
			return nil, utils.ValidationError("endDate must be a valid YYYY-MM-DD date")
		}
		if !end.After(day) {
			return nil, utils.ValidationError("endDate must fall after the source slot's date")
		}
		horizon = end
	case models.RecurrenceCount:
		// the source slot is occurrence 1, the budget's last occurrence
		// lands OccurrenceCount-1 weeks out
		horizon = day.AddDate(0, 0, 7*(req.OccurrenceCount-1))
	}

	report, available, err := e.scanPattern(ctx, slot.ServiceID, day, horizon, slot.Start)
	if err != nil {
		return nil, err
	}
	if !report.Feasible {
		return nil, utils.ConflictError(report.Verdict)
	}

	now := e.Clock.Now()
	rec := &models.Recurrence{
		ID:              uuid.New().String(),
		ClientID:        req.ClientID,
		ServiceID:       req.ServiceID,
		ProviderID:      req.ProviderID,
		DayOfWeek:       utils.ISOWeekday(day),
		TimeOfDay:       slot.Start,
		Type:            req.Type,
		OccurrenceCount: req.OccurrenceCount,
		AssignedCount:   1, // the source slot
		EndDate:         req.EndDate,
		Active:          true,
		SourceSlotID:    slot.ID,
		CreatedBy:       actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.Repo.Create(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, utils.ConflictError("an active recurrence already exists for this pattern")
		}
		return nil, utils.TransientError("failed to persist recurrence", err)
	}

	e.assignEagerly(ctx, rec, day, available)

	e.Audit.Record(ctx, "recurrence.create", actor, []string{rec.ID, slot.ID}, "created")
	return rec, nil
}

// assignEagerly claims the already-scanned available slots within the type's
// horizon. Failures on individual slots are logged, never fatal: the
// recurrence itself is already persisted and daily extension will retry
// propagation for dates it could not claim now.
func (e *DefaultEngine) assignEagerly(ctx context.Context, rec *models.Recurrence, sourceDay time.Time, available []models.Slot) {
	bound := ""
	switch rec.Type {
	case models.RecurrenceEndDate:
		bound = rec.EndDate
	case models.RecurrenceForever:
		bound = utils.FormatDate(sourceDay.AddDate(0, e.foreverMonths(), 0))
	}

	for i := range available {
		s := &available[i]
		if rec.Type == models.RecurrenceCount && rec.AssignedCount >= rec.OccurrenceCount {
			break
		}
		if bound != "" && s.Date > bound {
			break
		}
		claimed, err := e.claimSlot(ctx, rec, s)
		if err != nil {
			e.Logger.Warn("eager recurrence assignment failed",
				zap.String("recurrenceId", rec.ID),
				zap.String("slotId", s.ID),
				zap.Error(err),
			)
			continue
		}
		if !claimed {
			e.Logger.Info("slot no longer claimable during eager assignment",
				zap.String("recurrenceId", rec.ID),
				zap.String("slotId", s.ID),
			)
		}
	}
	e.retireIfExhausted(ctx, rec)
}

// claimSlot enrolls the recurrence's client into the slot and then consumes
// one occurrence of the budget. If the budget was exhausted by a concurrent
// claim, the seat is released again.
func (e *DefaultEngine) claimSlot(ctx context.Context, rec *models.Recurrence, slot *models.Slot) (bool, error) {
	enr := &models.Enrollment{
		ID:           uuid.New().String(),
		SlotID:       slot.ID,
		ServiceID:    slot.ServiceID,
		ClientID:     rec.ClientID,
		RecurrenceID: rec.ID,
		CreatedBy:    rec.CreatedBy,
		CreatedAt:    e.Clock.Now(),
	}
	if _, err := e.Slots.Enroll(ctx, slot.ID, enr); err != nil {
		if errors.Is(err, slotRepo.ErrNoCapacity) {
			return false, nil
		}
		return false, fmt.Errorf("enroll into slot %s: %w", slot.ID, err)
	}

	ok, err := e.Repo.ConsumeOccurrence(ctx, rec.ID)
	if err != nil {
		if _, uerr := e.Slots.Unenroll(ctx, slot.ID, rec.ClientID); uerr != nil {
			e.Logger.Error("failed to release seat after budget error",
				zap.String("slotId", slot.ID),
				zap.String("recurrenceId", rec.ID),
				zap.Error(uerr),
			)
		}
		return false, fmt.Errorf("consume occurrence of %s: %w", rec.ID, err)
	}
	if !ok {
		// budget raced out under us, give the seat back
		if _, uerr := e.Slots.Unenroll(ctx, slot.ID, rec.ClientID); uerr != nil {
			e.Logger.Error("failed to release seat after exhausted budget",
				zap.String("slotId", slot.ID),
				zap.String("recurrenceId", rec.ID),
				zap.Error(uerr),
			)
		}
		return false, nil
	}
	rec.AssignedCount++
	return true, nil
}

// retireIfExhausted deactivates a COUNT recurrence once its budget is used
// up, so daily extension stops considering it.
func (e *DefaultEngine) retireIfExhausted(ctx context.Context, rec *models.Recurrence) {
	if rec.Type != models.RecurrenceCount || rec.AssignedCount < rec.OccurrenceCount {
		return
	}
	if err := e.Repo.SetActive(ctx, rec.ID, false); err != nil {
		e.Logger.Warn("failed to retire exhausted recurrence",
			zap.String("recurrenceId", rec.ID),
			zap.Error(err),
		)
		return
	}
	rec.Active = false
}

// Cancel deactivates the recurrence. Already-assigned future slots keep
// their enrollments; the client unenrolls from those individually.
func (e *DefaultEngine) Cancel(ctx context.Context, recurrenceID, actor string) error {
	rec, err := e.Repo.GetByID(ctx, recurrenceID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.NotFoundError(fmt.Sprintf("recurrence %s not found", recurrenceID))
		}
		return utils.TransientError("failed to load recurrence", err)
	}
	if !rec.Active {
		return utils.ConflictError("recurrence is already cancelled")
	}
	if err := e.Repo.SetActive(ctx, recurrenceID, false); err != nil {
		return utils.TransientError("failed to cancel recurrence", err)
	}
	e.Audit.Record(ctx, "recurrence.cancel", actor, []string{recurrenceID}, "cancelled")
	return nil
}

// ApplyToNewSlots claims freshly generated slots for every active recurrence
// on (service, weekday of date) that is still valid on that date. Failures
// are isolated per recurrence.
func (e *DefaultEngine) ApplyToNewSlots(ctx context.Context, svc *models.Service, date string, newSlots []models.Slot) error {
	day, err := utils.ParseDate(date)
	if err != nil {
		return fmt.Errorf("apply recurrences: %w", err)
	}

	recs, err := e.Repo.FindActiveByServiceAndDay(ctx, svc.ID, utils.ISOWeekday(day))
	if err != nil {
		return fmt.Errorf("apply recurrences: load active for service %s: %w", svc.ID, err)
	}

	for i := range recs {
		rec := &recs[i]
		if !rec.ValidOn(date) {
			e.retire(ctx, rec, date)
			continue
		}
		slot := matchSlot(newSlots, rec.TimeOfDay)
		if slot == nil {
			e.Logger.Debug("no generated slot matches recurrence pattern",
				zap.String("recurrenceId", rec.ID),
				zap.String("date", date),
				zap.Int("timeOfDay", rec.TimeOfDay),
			)
			continue
		}
		if slot.Status != models.SlotFree && slot.Status != models.SlotFreeAfterCancel {
			e.Logger.Warn("slot for recurrence pattern is not free",
				zap.String("recurrenceId", rec.ID),
				zap.String("slotId", slot.ID),
				zap.String("status", slot.Status),
			)
			continue
		}
		claimed, err := e.claimSlot(ctx, rec, slot)
		if err != nil {
			e.Logger.Error("recurrence propagation failed",
				zap.String("recurrenceId", rec.ID),
				zap.String("slotId", slot.ID),
				zap.Error(err),
			)
			continue
		}
		if claimed {
			e.retireIfExhausted(ctx, rec)
		}
	}
	return nil
}

// retire deactivates recurrences that can never be valid again: END_DATE
// past its bound, COUNT out of budget. FOREVER recurrences are only retired
// by explicit cancellation.
func (e *DefaultEngine) retire(ctx context.Context, rec *models.Recurrence, date string) {
	expired := (rec.Type == models.RecurrenceEndDate && date > rec.EndDate) ||
		(rec.Type == models.RecurrenceCount && rec.AssignedCount >= rec.OccurrenceCount)
	if !expired {
		return
	}
	if err := e.Repo.SetActive(ctx, rec.ID, false); err != nil {
		e.Logger.Warn("failed to retire expired recurrence",
			zap.String("recurrenceId", rec.ID),
			zap.Error(err),
		)
	}
}

func matchSlot(slots []models.Slot, startMinutes int) *models.Slot {
	for i := range slots {
		if slots[i].Start == startMinutes {
			return &slots[i]
		}
	}
	return nil
}

func enrolled(slot *models.Slot, clientID string) bool {
	for _, id := range slot.ClientIDs {
		if id == clientID {
			return true
		}
	}
	return false
}

func validateCreate(req CreateRequest) error {
	if req.ClientID == "" || req.ServiceID == "" || req.ProviderID == "" || req.SourceSlotID == "" {
		return utils.ValidationError("clientId, serviceId, providerId and sourceSlotId are required")
	}
	switch req.Type {
	case models.RecurrenceForever:
	case models.RecurrenceEndDate:
		if req.EndDate == "" {
			return utils.ValidationError("endDate is required for END_DATE recurrences")
		}
	case models.RecurrenceCount:
		if req.OccurrenceCount < 1 {
			return utils.ValidationError("occurrenceCount must be at least 1")
		}
	default:
		return utils.ValidationError("type must be one of FOREVER, COUNT, END_DATE")
	}
	return nil
}
