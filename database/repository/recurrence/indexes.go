// File: database/repository/recurrence/indexes.go
package recurrenceRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the recurrences collection.
// The partial unique index enforces "at most one active recurrence per
// (client, service, provider, dayOfWeek, timeOfDay)".
func (r *mongoRecurrenceRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys: bson.D{
				{Key: "clientId", Value: 1},
				{Key: "serviceId", Value: 1},
				{Key: "providerId", Value: 1},
				{Key: "dayOfWeek", Value: 1},
				{Key: "timeOfDay", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_active_pattern").
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{
			Keys:    bson.D{{Key: "serviceId", Value: 1}, {Key: "dayOfWeek", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index().SetName("service_day_active_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create recurrence indexes: %w", err)
	}
	return nil
}
