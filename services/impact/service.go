package impact

import (
	"context"
	"fmt"

	"slotwise/models"
	"slotwise/services/tasks"
	"slotwise/utils"

	"go.uber.org/zap"
)

// fitsWindows is the containment test shared by analysis and reprocessing:
// the slot's interval must lie fully inside some window on its weekday.
func fitsWindows(slot *models.Slot, windows []models.AvailabilityWindow) (bool, error) {
	day, err := utils.ParseDate(slot.Date)
	if err != nil {
		return false, fmt.Errorf("slot %s carries an invalid date: %w", slot.ID, err)
	}
	weekday := utils.ISOWeekday(day)
	for _, w := range windows {
		if w.DayOfWeek == weekday && w.Start <= slot.Start && slot.End <= w.End {
			return true, nil
		}
	}
	return false, nil
}

// futureReserved loads the service's reserved slots that have not started
// yet. The repository filter is date-granular, so today's slots are trimmed
// in memory against the current time of day.
func (a *DefaultAnalyzer) futureReserved(ctx context.Context, serviceID string) ([]models.Slot, error) {
	now := a.Clock.Now()
	today := utils.FormatDate(now)
	minutesNow := now.Hour()*60 + now.Minute()

	slots, err := a.Slots.FindFutureReserved(ctx, serviceID, utils.FormatDate(now.AddDate(0, 0, -1)))
	if err != nil {
		return nil, fmt.Errorf("load future reserved slots: %w", err)
	}

	kept := slots[:0]
	for _, s := range slots {
		if s.Date == today && s.Start <= minutesNow {
			continue
		}
		kept = append(kept, s)
	}
	return kept, nil
}

// AnalyzeImpact reports which future reserved slots would stop fitting if
// the proposed windows replaced the current ones, with enrolled-client
// contact detail for manual outreach. Nothing is mutated.
func (a *DefaultAnalyzer) AnalyzeImpact(ctx context.Context, serviceID string, proposed []models.AvailabilityWindow) (*models.ImpactReport, error) {
	if serviceID == "" {
		return nil, utils.ValidationError("serviceId is required")
	}
	if err := validateWindows(proposed); err != nil {
		return nil, err
	}

	slots, err := a.futureReserved(ctx, serviceID)
	if err != nil {
		return nil, utils.TransientError("impact analysis failed", err)
	}

	report := &models.ImpactReport{ServiceID: serviceID}
	for i := range slots {
		s := &slots[i]
		ok, err := fitsWindows(s, proposed)
		if err != nil {
			return nil, utils.TransientError("impact analysis failed", err)
		}
		if ok {
			continue
		}
		// enrollments are the booking source of truth; the slot's ClientIDs
		// mirror is for display only
		enrollments, err := a.Slots.FindEnrollmentsBySlot(ctx, s.ID)
		if err != nil {
			return nil, utils.TransientError("failed to load slot enrollments", err)
		}
		ids := make([]string, 0, len(enrollments))
		for _, enr := range enrollments {
			ids = append(ids, enr.ClientID)
		}
		clients, err := a.Clients.GetByIDs(ctx, ids)
		if err != nil {
			return nil, utils.TransientError("failed to load enrolled clients", err)
		}
		report.Affected = append(report.Affected, models.AffectedSlot{Slot: *s, Clients: clients})
	}
	report.AffectedCount = len(report.Affected)
	return report, nil
}

// ApplyChange swaps the service's availability windows for the proposed set
// and queues reprocessing of the bookings the swap orphans. The caller gets
// an answer as soon as the work is queued.
func (a *DefaultAnalyzer) ApplyChange(ctx context.Context, serviceID string, proposed []models.AvailabilityWindow, actor string) error {
	if serviceID == "" {
		return utils.ValidationError("serviceId is required")
	}
	if err := validateWindows(proposed); err != nil {
		return err
	}
	for i := range proposed {
		proposed[i].ServiceID = serviceID
	}

	if err := a.Availability.ReplaceWindows(ctx, serviceID, proposed); err != nil {
		return utils.TransientError("failed to replace availability windows", err)
	}

	task, err := tasks.NewReprocessTask(models.ReprocessPayload{ServiceID: serviceID, Actor: actor})
	if err != nil {
		return utils.TransientError("failed to build reprocess task", err)
	}
	if err := a.Runner.Submit(task); err != nil {
		return utils.TransientError("failed to queue booking reprocessing", err)
	}

	a.Audit.Record(ctx, "availability.replace", actor, []string{serviceID}, "applied")
	return nil
}

// ReprocessAffected cancels every future reserved slot that no longer fits
// the stored windows and notifies its clients. Per-slot failures are logged
// and skipped; the remaining batch still runs.
func (a *DefaultAnalyzer) ReprocessAffected(ctx context.Context, serviceID, actor string) error {
	windows, err := a.Availability.GetWindowsByService(ctx, serviceID)
	if err != nil {
		return fmt.Errorf("reprocess service %s: load windows: %w", serviceID, err)
	}
	slots, err := a.futureReserved(ctx, serviceID)
	if err != nil {
		return fmt.Errorf("reprocess service %s: %w", serviceID, err)
	}

	cancelled := 0
	for i := range slots {
		s := &slots[i]
		ok, err := fitsWindows(s, windows)
		if err != nil {
			a.Logger.Error("containment test failed", zap.String("slotId", s.ID), zap.Error(err))
			continue
		}
		if ok {
			continue
		}
		if err := a.cancelSlot(ctx, s, actor); err != nil {
			a.Logger.Error("affected slot cancellation failed",
				zap.String("slotId", s.ID),
				zap.Error(err),
			)
			continue
		}
		cancelled++
	}

	removed, err := a.realignFreeInventory(ctx, serviceID)
	if err != nil {
		return fmt.Errorf("reprocess service %s: %w", serviceID, err)
	}

	a.Logger.Info("availability reprocessing finished",
		zap.String("serviceId", serviceID),
		zap.Int("cancelled", cancelled),
		zap.Int("scanned", len(slots)),
		zap.Int64("freeSlotsRebuilt", removed),
	)
	return nil
}

// realignFreeInventory rebuilds the unbooked future inventory under the new
// windows: free slots from tomorrow to the generation frontier are purged
// and regenerated, so stale intervals outside the replaced windows cannot
// stay bookable. Booked slots are never touched here; the cancel loop
// already handled the ill-fitting ones.
func (a *DefaultAnalyzer) realignFreeInventory(ctx context.Context, serviceID string) (int64, error) {
	frontier, err := a.Slots.GetMaxGeneratedDate(ctx, serviceID)
	if err != nil {
		return 0, fmt.Errorf("resolve generation frontier: %w", err)
	}
	tomorrow := utils.FormatDate(a.Clock.Now().AddDate(0, 0, 1))
	if frontier < tomorrow {
		return 0, nil
	}

	removed, err := a.Slots.DeleteByServiceFromDate(ctx, serviceID, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("purge free slots: %w", err)
	}

	task, err := tasks.NewGenerateTask(models.GeneratePayload{
		ServiceID:    serviceID,
		HorizonStart: tomorrow,
		HorizonEnd:   frontier,
	})
	if err != nil {
		return removed, fmt.Errorf("build regeneration task: %w", err)
	}
	if err := a.Runner.Submit(task); err != nil {
		return removed, fmt.Errorf("queue regeneration: %w", err)
	}
	return removed, nil
}

func (a *DefaultAnalyzer) cancelSlot(ctx context.Context, s *models.Slot, actor string) error {
	if err := a.Slots.UpdateStatus(ctx, s.ID, models.SlotCancelled); err != nil {
		return fmt.Errorf("cancel slot: %w", err)
	}

	clientIDs := s.ClientIDs
	if enrollments, err := a.Slots.FindEnrollmentsBySlot(ctx, s.ID); err != nil {
		// notification fan-out falls back to the slot's mirror
		a.Logger.Warn("enrollment lookup for cancellation failed",
			zap.String("slotId", s.ID),
			zap.Error(err),
		)
	} else {
		clientIDs = make([]string, 0, len(enrollments))
		for _, enr := range enrollments {
			clientIDs = append(clientIDs, enr.ClientID)
		}
	}

	for _, clientID := range clientIDs {
		if err := a.Notify.NotifySlotCancelled(ctx, clientID, *s); err != nil {
			a.Logger.Warn("cancellation notification dispatch failed",
				zap.String("slotId", s.ID),
				zap.String("clientId", clientID),
				zap.Error(err),
			)
		}
	}
	a.Audit.Record(ctx, "slot.cancel", actor, append([]string{s.ID}, clientIDs...), "availability_change")
	return nil
}

func validateWindows(windows []models.AvailabilityWindow) error {
	if len(windows) == 0 {
		return utils.ValidationError("at least one availability window is required")
	}
	for _, w := range windows {
		if w.DayOfWeek < 1 || w.DayOfWeek > 7 {
			return utils.ValidationError("dayOfWeek must be 1..7 (Monday..Sunday)")
		}
		if w.Start < 0 || w.End > 24*60 || w.Start >= w.End {
			return utils.ValidationError("window start/end must describe a non-empty range within the day")
		}
	}
	return nil
}
