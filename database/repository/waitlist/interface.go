// File: database/repository/waitlist/interface.go
package waitlistRepo

import (
	"context"
	"time"

	"slotwise/database"
	"slotwise/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type WaitlistRepository interface {
	Create(ctx context.Context, entry *models.WaitlistEntry) error
	GetByID(ctx context.Context, id string) (*models.WaitlistEntry, error)
	CountWaiting(ctx context.Context, serviceID string) (int64, error)
	// FindWaiting returns WAITING entries for (service, date) ordered by
	// ascending position.
	FindWaiting(ctx context.Context, serviceID, date string) ([]models.WaitlistEntry, error)
	// FindWaitingByService returns all WAITING entries of a service ordered
	// by creation time, for position renumbering.
	FindWaitingByService(ctx context.Context, serviceID string) ([]models.WaitlistEntry, error)
	// HasActiveEntry reports whether the client already waits for this
	// service on this date.
	HasActiveEntry(ctx context.Context, clientID, serviceID, date string) (bool, error)
	FindNotifiedForClient(ctx context.Context, clientID, serviceID, date string) ([]models.WaitlistEntry, error)
	FindExpired(ctx context.Context, now time.Time) ([]models.WaitlistEntry, error)

	// Status transitions. Each is guarded on the expected current status and
	// returns mongo.ErrNoDocuments when the entry raced into another state.
	MarkNotified(ctx context.Context, id, slotID string, notifiedAt, expiresAt time.Time) error
	MarkExpired(ctx context.Context, id string) error
	MarkFulfilled(ctx context.Context, id string) error
	MarkCancelled(ctx context.Context, id string) error

	SetPositions(ctx context.Context, positions map[string]int) error

	EnsureIndexes() error
}

type mongoWaitlistRepo struct {
	coll *mongo.Collection
}

// NewMongoWaitlistRepo constructs a new MongoDB WaitlistRepository.
func NewMongoWaitlistRepo() WaitlistRepository {
	return &mongoWaitlistRepo{
		coll: database.DB().Collection("waitlist_entries"),
	}
}
