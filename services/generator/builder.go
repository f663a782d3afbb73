package generator

import (
	"time"

	"slotwise/models"
	"slotwise/utils"
)

const minutesPerDay = 24 * 60

// BuildDaySlots materializes the slots of one calendar day from the windows
// matching its weekday. The cursor walks each window in steps of
// duration+offset; a slot is only emitted when it fits entirely inside the
// window, and the walk stops rather than wrap past midnight.
func BuildDaySlots(svc *models.Service, windows []models.AvailabilityWindow, date string, day time.Time) []models.Slot {
	weekday := utils.ISOWeekday(day)

	var slots []models.Slot
	for _, w := range windows {
		if w.DayOfWeek != weekday {
			continue
		}
		for cursor := w.Start; cursor+svc.DurationMinutes <= w.End; cursor += svc.DurationMinutes + svc.OffsetMinutes {
			if cursor+svc.DurationMinutes > minutesPerDay {
				break
			}
			slots = append(slots, models.Slot{
				ServiceID:  svc.ID,
				ProviderID: svc.ProviderID,
				Date:       date,
				Start:      cursor,
				End:        cursor + svc.DurationMinutes,
				Status:     models.SlotFree,
				FreeSlots:  svc.Capacity,
				Capacity:   svc.Capacity,
				CreatedAt:  time.Now(),
			})
		}
	}
	return slots
}

// blackedOut reports whether any of the spans covers the date.
func blackedOut(blackouts []models.Unavailability, date string) bool {
	for _, b := range blackouts {
		if b.Covers(date) {
			return true
		}
	}
	return false
}
