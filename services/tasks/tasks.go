package tasks

import (
	"encoding/json"

	"slotwise/models"

	"github.com/hibiken/asynq"
)

// Task type names handled by the background worker.
const (
	TypeGenerateSlots = "slots:generate"
	TypeReprocess     = "availability:reprocess"
	TypeSendNotify    = "notify:send"
)

// Submitter is the background-runner port: engine callers hand work off
// through it instead of blocking the request path.
type Submitter interface {
	Submit(task *asynq.Task, opts ...asynq.Option) error
}

// Runner submits tasks onto the asynq queue.
type Runner struct {
	Client *asynq.Client
}

func NewRunner(client *asynq.Client) *Runner {
	return &Runner{Client: client}
}

func (r *Runner) Submit(task *asynq.Task, opts ...asynq.Option) error {
	_, err := r.Client.Enqueue(task, opts...)
	return err
}

func NewGenerateTask(p models.GeneratePayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeGenerateSlots, b), nil
}

func NewReprocessTask(p models.ReprocessPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReprocess, b), nil
}

func NewNotifyTask(p models.NotifyPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSendNotify, b), nil
}
