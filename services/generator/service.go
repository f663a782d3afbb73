package generator

import (
	"context"
	"fmt"
	"time"

	availabilityRepo "slotwise/database/repository/availability"
	serviceRepo "slotwise/database/repository/service"
	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/utils"

	"go.uber.org/zap"
)

// RecurrenceApplier is the hook the generator invokes after a daily
// extension so standing recurrences can claim the new slots before they are
// exposed.
type RecurrenceApplier interface {
	ApplyToNewSlots(ctx context.Context, svc *models.Service, date string, newSlots []models.Slot) error
}

// GeneratorService materializes concrete slots from recurring availability.
type GeneratorService interface {
	// GenerateForService produces slots over [horizonStart, horizonEnd]
	// (inclusive date strings). Idempotent per (service, date). Returns the
	// number of slots inserted.
	GenerateForService(ctx context.Context, serviceID, horizonStart, horizonEnd string) (int, error)
	// ExtendByOneDay rolls the horizon of one service forward to the next
	// day past its latest generated slot that actually yields slots, then
	// applies recurrences. Days outside the weekly pattern and blacked-out
	// days are walked over so the frontier cannot stall on them.
	ExtendByOneDay(ctx context.Context, serviceID string) (int, error)
	// ExtendAll runs ExtendByOneDay across every service; used by the daily
	// cron trigger.
	ExtendAll(ctx context.Context) error
}

// DefaultGeneratorService is the production implementation.
type DefaultGeneratorService struct {
	Services     serviceRepo.ServiceRepository
	Availability availabilityRepo.AvailabilityRepository
	Slots        slotRepo.SlotRepository
	Recurrences  RecurrenceApplier
	Clock        utils.Clock
	Logger       *zap.Logger

	// ChunkDays bounds how many days are expanded in memory at once;
	// BatchSize bounds one persistence flush. Results are identical for any
	// positive values.
	ChunkDays int
	BatchSize int
}

func (g *DefaultGeneratorService) chunkDays() int {
	if g.ChunkDays <= 0 {
		return 30
	}
	return g.ChunkDays
}

func (g *DefaultGeneratorService) batchSize() int {
	if g.BatchSize <= 0 {
		return 250
	}
	return g.BatchSize
}

func (g *DefaultGeneratorService) GenerateForService(ctx context.Context, serviceID, horizonStart, horizonEnd string) (int, error) {
	svc, err := g.Services.GetByID(ctx, serviceID)
	if err != nil {
		return 0, utils.NotFoundError(fmt.Sprintf("service %s not found", serviceID))
	}
	if err := validateService(svc); err != nil {
		return 0, err
	}

	start, err := utils.ParseDate(horizonStart)
	if err != nil {
		return 0, utils.ValidationError(err.Error())
	}
	end, err := utils.ParseDate(horizonEnd)
	if err != nil {
		return 0, utils.ValidationError(err.Error())
	}
	if end.Before(start) {
		return 0, utils.ValidationError("horizon end precedes horizon start")
	}

	windows, err := g.Availability.GetWindowsByService(ctx, serviceID)
	if err != nil {
		return 0, fmt.Errorf("load windows: %w", err)
	}
	if len(windows) == 0 {
		g.Logger.Info("service has no availability windows, nothing to generate",
			zap.String("serviceId", serviceID))
		return 0, nil
	}

	total := 0
	for chunkStart := start; !chunkStart.After(end); chunkStart = chunkStart.AddDate(0, 0, g.chunkDays()) {
		chunkEnd := chunkStart.AddDate(0, 0, g.chunkDays()-1)
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		blackouts, err := g.Availability.GetBlackouts(ctx, serviceID,
			utils.FormatDate(chunkStart), utils.FormatDate(chunkEnd))
		if err != nil {
			return total, fmt.Errorf("load blackouts: %w", err)
		}

		var batch []models.Slot
		for day := chunkStart; !day.After(chunkEnd); day = day.AddDate(0, 0, 1) {
			date := utils.FormatDate(day)
			if blackedOut(blackouts, date) {
				continue
			}
			batch = append(batch, BuildDaySlots(svc, windows, date, day)...)
			if len(batch) >= g.batchSize() {
				n, err := g.Slots.InsertGenerated(ctx, batch)
				if err != nil {
					return total, fmt.Errorf("persist slot batch: %w", err)
				}
				total += n
				batch = batch[:0]
			}
		}
		if len(batch) > 0 {
			n, err := g.Slots.InsertGenerated(ctx, batch)
			if err != nil {
				return total, fmt.Errorf("persist slot batch: %w", err)
			}
			total += n
		}
	}

	g.Logger.Info("slot generation finished",
		zap.String("serviceId", serviceID),
		zap.String("from", horizonStart),
		zap.String("to", horizonEnd),
		zap.Int("inserted", total))
	return total, nil
}

// extendLookaheadDays bounds how far past the frontier one extension run
// searches for a day that produces slots. A weekly pattern repeats within 7
// days, so the bound only matters under long blackout spans.
const extendLookaheadDays = 31

func (g *DefaultGeneratorService) ExtendByOneDay(ctx context.Context, serviceID string) (int, error) {
	svc, err := g.Services.GetByID(ctx, serviceID)
	if err != nil {
		return 0, utils.NotFoundError(fmt.Sprintf("service %s not found", serviceID))
	}
	if err := validateService(svc); err != nil {
		return 0, err
	}

	maxDate, err := g.Slots.GetMaxGeneratedDate(ctx, serviceID)
	if err != nil {
		return 0, fmt.Errorf("resolve generation frontier: %w", err)
	}

	var next time.Time
	if maxDate == "" {
		next = g.Clock.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	} else {
		frontier, err := utils.ParseDate(maxDate)
		if err != nil {
			return 0, fmt.Errorf("parse generation frontier %q: %w", maxDate, err)
		}
		next = frontier.AddDate(0, 0, 1)
	}

	windows, err := g.Availability.GetWindowsByService(ctx, serviceID)
	if err != nil {
		return 0, fmt.Errorf("load windows: %w", err)
	}
	if len(windows) == 0 {
		return 0, nil
	}
	patternDays := make(map[int]bool, len(windows))
	for _, w := range windows {
		patternDays[w.DayOfWeek] = true
	}

	// The frontier only moves when slots land, so days that cannot yield
	// any (outside the pattern, or blacked out) must be walked over here or
	// every future run would re-target the same empty day.
	for i := 0; i < extendLookaheadDays; i++ {
		day := next.AddDate(0, 0, i)
		if !patternDays[utils.ISOWeekday(day)] {
			continue
		}
		date := utils.FormatDate(day)

		inserted, err := g.GenerateForService(ctx, serviceID, date, date)
		if err != nil {
			return 0, err
		}
		if inserted == 0 {
			continue // blacked out
		}

		newSlots, err := g.Slots.GetByServiceAndDate(ctx, serviceID, date)
		if err != nil {
			return inserted, fmt.Errorf("reload generated slots: %w", err)
		}
		if err := g.Recurrences.ApplyToNewSlots(ctx, svc, date, newSlots); err != nil {
			// Recurrence propagation failing must not undo generation; the
			// next extension run retries the remaining assignments.
			g.Logger.Error("recurrence auto-assignment failed",
				zap.String("serviceId", serviceID),
				zap.String("date", date),
				zap.Error(err))
		}
		return inserted, nil
	}
	return 0, nil
}

func (g *DefaultGeneratorService) ExtendAll(ctx context.Context) error {
	services, err := g.Services.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list services: %w", err)
	}
	for i := range services {
		if _, err := g.ExtendByOneDay(ctx, services[i].ID); err != nil {
			// One broken service must not starve the rest of the fleet.
			g.Logger.Error("daily extension failed",
				zap.String("serviceId", services[i].ID),
				zap.Error(err))
		}
	}
	return nil
}

func validateService(svc *models.Service) error {
	if svc.DurationMinutes <= 0 {
		return utils.ValidationError(fmt.Sprintf("service %s has non-positive duration", svc.ID))
	}
	if svc.Capacity <= 0 {
		return utils.ValidationError(fmt.Sprintf("service %s has non-positive capacity", svc.ID))
	}
	if svc.OffsetMinutes < 0 {
		return utils.ValidationError(fmt.Sprintf("service %s has negative offset", svc.ID))
	}
	return nil
}
