package notification

import (
	"context"
	"fmt"
	"time"

	"slotwise/models"
	"slotwise/services/tasks"
	"slotwise/utils"

	"go.uber.org/zap"
)

// QueueNotificationService enqueues notification payloads onto the background
// task queue; the worker hands them to a Sender.
type QueueNotificationService struct {
	Runner tasks.Submitter
}

func NewQueueNotificationService(runner tasks.Submitter) *QueueNotificationService {
	return &QueueNotificationService{Runner: runner}
}

func (s *QueueNotificationService) NotifySlotAvailable(ctx context.Context, entry models.WaitlistEntry, slot models.Slot) error {
	data := map[string]string{
		"entryId":   entry.ID,
		"slotId":    slot.ID,
		"serviceId": slot.ServiceID,
		"date":      slot.Date,
		"start":     utils.MinutesToHHMM(slot.Start),
	}
	if entry.ExpiresAt != nil {
		data["expiresAt"] = entry.ExpiresAt.Format(time.RFC3339)
	}
	return s.enqueue(models.NotifyPayload{
		Event:    EventSlotAvailable,
		ClientID: entry.ClientID,
		Data:     data,
	})
}

func (s *QueueNotificationService) NotifySlotCancelled(ctx context.Context, clientID string, slot models.Slot) error {
	return s.enqueue(models.NotifyPayload{
		Event:    EventSlotCancelled,
		ClientID: clientID,
		Data: map[string]string{
			"slotId":    slot.ID,
			"serviceId": slot.ServiceID,
			"date":      slot.Date,
			"start":     utils.MinutesToHHMM(slot.Start),
		},
	})
}

func (s *QueueNotificationService) enqueue(p models.NotifyPayload) error {
	task, err := tasks.NewNotifyTask(p)
	if err != nil {
		return fmt.Errorf("build notify task: %w", err)
	}
	if err := s.Runner.Submit(task); err != nil {
		return fmt.Errorf("enqueue notify task: %w", err)
	}
	return nil
}

// LogSender is the default Sender: it records the notification and drops it.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, p models.NotifyPayload) error {
	utils.GetLogger().Info("notification dispatched",
		zap.String("event", p.Event),
		zap.String("clientId", p.ClientID),
		zap.Any("data", p.Data),
	)
	return nil
}
