// File: database/repository/recurrence/interface.go
package recurrenceRepo

import (
	"context"

	"slotwise/database"
	"slotwise/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type RecurrenceRepository interface {
	// Create persists a recurrence. A second active recurrence for the same
	// (client, service, provider, dayOfWeek, timeOfDay) key fails against the
	// partial unique index with a duplicate-key error.
	Create(ctx context.Context, rec *models.Recurrence) error
	GetByID(ctx context.Context, id string) (*models.Recurrence, error)
	FindActiveByServiceAndDay(ctx context.Context, serviceID string, dayOfWeek int) ([]models.Recurrence, error)
	SetActive(ctx context.Context, id string, active bool) error
	// ConsumeOccurrence increments AssignedCount, guarded so a COUNT
	// recurrence can never be driven past its budget. Returns false when the
	// budget was already exhausted (or the recurrence is gone/inactive).
	ConsumeOccurrence(ctx context.Context, id string) (bool, error)

	EnsureIndexes() error
}

type mongoRecurrenceRepo struct {
	coll *mongo.Collection
}

// NewMongoRecurrenceRepo constructs a new MongoDB RecurrenceRepository.
func NewMongoRecurrenceRepo() RecurrenceRepository {
	return &mongoRecurrenceRepo{
		coll: database.DB().Collection("recurrences"),
	}
}
