// File: database/repository/availability/interface.go
package availabilityRepo

import (
	"context"

	"slotwise/database"
	"slotwise/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type AvailabilityRepository interface {
	CreateWindows(ctx context.Context, windows []models.AvailabilityWindow) error
	GetWindowsByService(ctx context.Context, serviceID string) ([]models.AvailabilityWindow, error)
	ReplaceWindows(ctx context.Context, serviceID string, windows []models.AvailabilityWindow) error
	DeleteWindow(ctx context.Context, serviceID, windowID string) error

	CreateUnavailability(ctx context.Context, u *models.Unavailability) error
	DeleteUnavailability(ctx context.Context, id string) error
	// GetBlackouts returns global unavailability plus the service-scoped kind,
	// restricted to spans overlapping [fromDate, toDate].
	GetBlackouts(ctx context.Context, serviceID, fromDate, toDate string) ([]models.Unavailability, error)
}

type mongoAvailabilityRepo struct {
	windowColl   *mongo.Collection
	blackoutColl *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a new MongoDB AvailabilityRepository.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	db := database.DB()
	return &mongoAvailabilityRepo{
		windowColl:   db.Collection("availability_windows"),
		blackoutColl: db.Collection("unavailability"),
	}
}
