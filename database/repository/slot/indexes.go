// File: database/repository/slot/indexes.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the slots and enrollments
// collections. The unique (serviceId, date, start) index is what makes slot
// generation idempotent per day.
func (r *mongoSlotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slotIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "serviceId", Value: 1}, {Key: "date", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_service_date_start"),
		},
		{
			Keys:    bson.D{{Key: "serviceId", Value: 1}, {Key: "status", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("service_status_date_idx"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}, {Key: "end", Value: 1}},
			Options: options.Index().SetName("status_date_end_idx"),
		},
	}
	if _, err := r.slotColl.Indexes().CreateMany(ctx, slotIndexes); err != nil {
		return fmt.Errorf("failed to create slot indexes: %w", err)
	}

	enrollmentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slotId", Value: 1}, {Key: "clientId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_slot_client"),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "serviceId", Value: 1}},
			Options: options.Index().SetName("client_service_idx"),
		},
	}
	if _, err := r.enrollmentColl.Indexes().CreateMany(ctx, enrollmentIndexes); err != nil {
		return fmt.Errorf("failed to create enrollment indexes: %w", err)
	}
	return nil
}
