// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"
	"time"

	"slotwise/database"
	"slotwise/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type SlotRepository interface {
	// InsertGenerated persists a batch of generated slots, silently skipping
	// any that already exist for their (service, date, start) key so that
	// re-running generation is idempotent.
	InsertGenerated(ctx context.Context, slots []models.Slot) (int, error)
	GetByID(ctx context.Context, id string) (*models.Slot, error)
	GetByServiceAndDate(ctx context.Context, serviceID, date string) ([]models.Slot, error)
	// GetMaxGeneratedDate returns the latest slot date present for a service,
	// or "" when the service has no slots yet.
	GetMaxGeneratedDate(ctx context.Context, serviceID string) (string, error)
	// FindByServiceDatesAndStart returns slots of the service on any of the
	// given dates starting exactly at startMinutes.
	FindByServiceDatesAndStart(ctx context.Context, serviceID string, dates []string, startMinutes int) ([]models.Slot, error)
	// FindFutureReserved returns slots with remaining enrollments
	// (RESERVED or PARTIALLY_RESERVED) strictly after the given date.
	FindFutureReserved(ctx context.Context, serviceID, afterDate string) ([]models.Slot, error)
	UpdateStatus(ctx context.Context, slotID, status string) error
	DeleteByServiceFromDate(ctx context.Context, serviceID, fromDate string) (int64, error)

	// Enroll atomically claims one seat: it decrements freeSlots (guarded so
	// it never goes below zero or onto a terminal slot), appends the client,
	// derives the new status and inserts the enrollment record, all in one
	// transaction. Returns the updated slot.
	Enroll(ctx context.Context, slotID string, enr *models.Enrollment) (*models.Slot, error)
	// Unenroll is the inverse: releases the seat, removes the enrollment and
	// re-derives status. Returns the updated slot.
	Unenroll(ctx context.Context, slotID, clientID string) (*models.Slot, error)

	// CompleteElapsed transitions reserved slots whose end has passed into
	// their completed form. Idempotent. Returns the number of slots moved.
	CompleteElapsed(ctx context.Context, asOf time.Time) (int64, error)

	FindEnrollmentsBySlot(ctx context.Context, slotID string) ([]models.Enrollment, error)
	FindEnrollmentsByClientAndService(ctx context.Context, clientID, serviceID string) ([]models.Enrollment, error)

	EnsureIndexes() error
}

type mongoSlotRepo struct {
	slotColl       *mongo.Collection
	enrollmentColl *mongo.Collection
}

// NewMongoSlotRepo constructs a new MongoDB SlotRepository.
func NewMongoSlotRepo() SlotRepository {
	db := database.DB()
	return &mongoSlotRepo{
		slotColl:       db.Collection("slots"),
		enrollmentColl: db.Collection("enrollments"),
	}
}
