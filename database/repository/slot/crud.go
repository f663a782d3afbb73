// File: database/repository/slot/crud.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"slotwise/models"
)

func (r *mongoSlotRepo) InsertGenerated(ctx context.Context, slots []models.Slot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	docs := make([]interface{}, len(slots))
	for i, s := range slots {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		docs[i] = s
	}

	// Unordered insert: duplicates (already-generated days) fail individually
	// against the unique (serviceId, date, start) index while the rest land.
	res, err := r.slotColl.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if res != nil {
				return len(res.InsertedIDs), nil
			}
			return 0, nil
		}
		return 0, fmt.Errorf("failed to insert generated slots: %w", err)
	}
	return len(res.InsertedIDs), nil
}

func (r *mongoSlotRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.Slot
	if err := r.slotColl.FindOne(ctx, bson.M{"id": id}).Decode(&slot); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch slot %s: %w", id, err)
	}
	return &slot, nil
}

func (r *mongoSlotRepo) GetByServiceAndDate(ctx context.Context, serviceID, date string) ([]models.Slot, error) {
	return r.find(ctx, bson.M{"serviceId": serviceID, "date": date})
}

func (r *mongoSlotRepo) FindByServiceDatesAndStart(ctx context.Context, serviceID string, dates []string, startMinutes int) ([]models.Slot, error) {
	return r.find(ctx, bson.M{
		"serviceId": serviceID,
		"date":      bson.M{"$in": dates},
		"start":     startMinutes,
	})
}

func (r *mongoSlotRepo) FindFutureReserved(ctx context.Context, serviceID, afterDate string) ([]models.Slot, error) {
	return r.find(ctx, bson.M{
		"serviceId": serviceID,
		"date":      bson.M{"$gt": afterDate},
		"status":    bson.M{"$in": bson.A{models.SlotReserved, models.SlotPartiallyReserved}},
	})
}

func (r *mongoSlotRepo) find(ctx context.Context, filter bson.M) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start", Value: 1}})
	cursor, err := r.slotColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

func (r *mongoSlotRepo) UpdateStatus(ctx context.Context, slotID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.slotColl.UpdateOne(ctx,
		bson.M{"id": slotID},
		bson.M{"$set": bson.M{"status": status}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to update slot %s status: %w", slotID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoSlotRepo) DeleteByServiceFromDate(ctx context.Context, serviceID, fromDate string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := r.slotColl.DeleteMany(ctx, bson.M{
		"serviceId": serviceID,
		"date":      bson.M{"$gte": fromDate},
		"status":    bson.M{"$in": bson.A{models.SlotFree, models.SlotFreeAfterCancel}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete free slots for service %s: %w", serviceID, err)
	}
	return res.DeletedCount, nil
}

func (r *mongoSlotRepo) FindEnrollmentsBySlot(ctx context.Context, slotID string) ([]models.Enrollment, error) {
	return r.findEnrollments(ctx, bson.M{"slotId": slotID})
}

func (r *mongoSlotRepo) FindEnrollmentsByClientAndService(ctx context.Context, clientID, serviceID string) ([]models.Enrollment, error) {
	return r.findEnrollments(ctx, bson.M{"clientId": clientID, "serviceId": serviceID})
}

func (r *mongoSlotRepo) findEnrollments(ctx context.Context, filter bson.M) ([]models.Enrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.enrollmentColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer cursor.Close(ctx)

	var enrollments []models.Enrollment
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, fmt.Errorf("failed to decode enrollments: %w", err)
	}
	return enrollments, nil
}
