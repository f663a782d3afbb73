// File: database/repository/slot/transaction.go
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

// ErrNoCapacity is returned when the guarded update matched no document:
// the slot is full, terminal, already holds the client, or does not exist.
var ErrNoCapacity = fmt.Errorf("no matching slot with capacity")

// ErrNotEnrolled is returned when an unenroll found no enrollment to remove.
var ErrNotEnrolled = fmt.Errorf("client not enrolled in slot")

func (r *mongoSlotRepo) Enroll(ctx context.Context, slotID string, enr *models.Enrollment) (*models.Slot, error) {
	if enr.ID == "" {
		enr.ID = uuid.New().String()
	}
	enr.CreatedAt = time.Now()

	var updated models.Slot
	txnFn := func(sc mongo.SessionContext) error {
		// Guarded seat claim: the filter is the oversell barrier. Concurrent
		// enrolls on a one-seat slot race on freeSlots >= 1 and only one
		// update can match.
		filter := bson.M{
			"id":        slotID,
			"freeSlots": bson.M{"$gte": 1},
			"status":    bson.M{"$nin": bson.A{models.SlotCancelled, models.SlotCompleted, models.SlotCompletedAfterCancel}},
			"clientIds": bson.M{"$ne": enr.ClientID},
		}
		update := bson.M{
			"$inc":      bson.M{"freeSlots": -1, "version": 1},
			"$addToSet": bson.M{"clientIds": enr.ClientID},
		}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		if err := r.slotColl.FindOneAndUpdate(sc, filter, update, opts).Decode(&updated); err != nil {
			if err == mongo.ErrNoDocuments {
				return ErrNoCapacity
			}
			return fmt.Errorf("guarded slot update failed: %w", err)
		}

		newStatus := models.NextStatus(updated.Status, updated.FreeSlots, updated.Capacity)
		if newStatus != updated.Status {
			if _, err := r.slotColl.UpdateOne(sc, bson.M{"id": slotID}, bson.M{"$set": bson.M{"status": newStatus}}); err != nil {
				return fmt.Errorf("status update failed: %w", err)
			}
			updated.Status = newStatus
		}

		if _, err := r.enrollmentColl.InsertOne(sc, enr); err != nil {
			return fmt.Errorf("insert enrollment failed: %w", err)
		}
		return nil
	}

	if err := r.withTransaction(ctx, txnFn); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *mongoSlotRepo) Unenroll(ctx context.Context, slotID, clientID string) (*models.Slot, error) {
	var updated models.Slot
	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{
			"id":        slotID,
			"clientIds": clientID,
		}
		update := bson.M{
			"$inc":  bson.M{"freeSlots": 1, "version": 1},
			"$pull": bson.M{"clientIds": clientID},
		}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		if err := r.slotColl.FindOneAndUpdate(sc, filter, update, opts).Decode(&updated); err != nil {
			if err == mongo.ErrNoDocuments {
				return ErrNotEnrolled
			}
			return fmt.Errorf("guarded slot update failed: %w", err)
		}

		newStatus := models.NextStatus(updated.Status, updated.FreeSlots, updated.Capacity)
		if newStatus != updated.Status {
			if _, err := r.slotColl.UpdateOne(sc, bson.M{"id": slotID}, bson.M{"$set": bson.M{"status": newStatus}}); err != nil {
				return fmt.Errorf("status update failed: %w", err)
			}
			updated.Status = newStatus
		}

		if _, err := r.enrollmentColl.DeleteOne(sc, bson.M{"slotId": slotID, "clientId": clientID}); err != nil {
			return fmt.Errorf("delete enrollment failed: %w", err)
		}
		return nil
	}

	if err := r.withTransaction(ctx, txnFn); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *mongoSlotRepo) withTransaction(ctx context.Context, txnFn func(mongo.SessionContext) error) error {
	client := r.slotColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}
