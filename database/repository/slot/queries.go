// File: database/repository/slot/queries.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"slotwise/models"
	"slotwise/utils"
)

// GetMaxGeneratedDate retrieves the maximum slot date present for a service.
func (r *mongoSlotRepo) GetMaxGeneratedDate(ctx context.Context, serviceID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"serviceId": serviceID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"maxDate": bson.M{"$max": "$date"},
		}}},
	}

	cursor, err := r.slotColl.Aggregate(ctx, pipeline)
	if err != nil {
		return "", fmt.Errorf("error aggregating max date for service %s: %w", serviceID, err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		MaxDate string `bson:"maxDate"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return "", fmt.Errorf("error decoding max date: %w", err)
	}

	if len(results) == 0 {
		return "", nil
	}
	return results[0].MaxDate, nil
}

// CompleteElapsed moves reserved slots whose end has passed into their
// completed form. Already completed slots never match, so repeat runs are
// no-ops.
func (r *mongoSlotRepo) CompleteElapsed(ctx context.Context, asOf time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	today := utils.FormatDate(asOf)
	minutes := asOf.Hour()*60 + asOf.Minute()

	elapsed := bson.M{"$or": bson.A{
		bson.M{"date": bson.M{"$lt": today}},
		bson.M{"date": today, "end": bson.M{"$lte": minutes}},
	}}

	var moved int64
	transitions := []struct {
		from, to string
	}{
		{models.SlotReserved, models.SlotCompleted},
		{models.SlotReservedAfterCancel, models.SlotCompletedAfterCancel},
	}
	for _, t := range transitions {
		filter := bson.M{"status": t.from}
		for k, v := range elapsed {
			filter[k] = v
		}
		res, err := r.slotColl.UpdateMany(ctx, filter,
			bson.M{"$set": bson.M{"status": t.to}, "$inc": bson.M{"version": 1}})
		if err != nil {
			return moved, fmt.Errorf("failed to complete elapsed %s slots: %w", t.from, err)
		}
		moved += res.ModifiedCount
	}
	return moved, nil
}
