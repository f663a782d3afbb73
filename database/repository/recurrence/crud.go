// File: database/repository/recurrence/crud.go
package recurrenceRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"slotwise/models"
)

func (r *mongoRecurrenceRepo) Create(ctx context.Context, rec *models.Recurrence) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return err
		}
		return fmt.Errorf("failed to insert recurrence: %w", err)
	}
	return nil
}

func (r *mongoRecurrenceRepo) GetByID(ctx context.Context, id string) (*models.Recurrence, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rec models.Recurrence
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&rec); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch recurrence %s: %w", id, err)
	}
	return &rec, nil
}

func (r *mongoRecurrenceRepo) FindActiveByServiceAndDay(ctx context.Context, serviceID string, dayOfWeek int) ([]models.Recurrence, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{
		"serviceId": serviceID,
		"dayOfWeek": dayOfWeek,
		"active":    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query recurrences for service %s: %w", serviceID, err)
	}
	defer cursor.Close(ctx)

	var recs []models.Recurrence
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode recurrences: %w", err)
	}
	return recs, nil
}

func (r *mongoRecurrenceRepo) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"active": active, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update recurrence %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoRecurrenceRepo) ConsumeOccurrence(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// COUNT budgets are guarded in the filter; FOREVER and END_DATE
	// recurrences have no budget and always match.
	filter := bson.M{
		"id":     id,
		"active": true,
		"$or": bson.A{
			bson.M{"type": bson.M{"$ne": models.RecurrenceCount}},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$assignedCount", "$occurrenceCount"}}},
		},
	}
	res, err := r.coll.UpdateOne(ctx, filter,
		bson.M{"$inc": bson.M{"assignedCount": 1}, "$set": bson.M{"updatedAt": time.Now()}})
	if err != nil {
		return false, fmt.Errorf("failed to consume occurrence for recurrence %s: %w", id, err)
	}
	return res.ModifiedCount > 0, nil
}
