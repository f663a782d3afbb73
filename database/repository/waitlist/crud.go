// File: database/repository/waitlist/crud.go
package waitlistRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"slotwise/models"
)

func (r *mongoWaitlistRepo) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert waitlist entry: %w", err)
	}
	return nil
}

func (r *mongoWaitlistRepo) GetByID(ctx context.Context, id string) (*models.WaitlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var entry models.WaitlistEntry
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&entry); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch waitlist entry %s: %w", id, err)
	}
	return &entry, nil
}

func (r *mongoWaitlistRepo) CountWaiting(ctx context.Context, serviceID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"serviceId": serviceID, "status": models.WaitlistWaiting})
	if err != nil {
		return 0, fmt.Errorf("failed to count waiting entries: %w", err)
	}
	return n, nil
}

func (r *mongoWaitlistRepo) HasActiveEntry(ctx context.Context, clientID, serviceID, date string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{
		"clientId":  clientID,
		"serviceId": serviceID,
		"date":      date,
		"status":    models.WaitlistWaiting,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check active waitlist entry: %w", err)
	}
	return n > 0, nil
}

// MarkNotified transitions WAITING -> NOTIFIED, records which slot was
// offered and stamps the expiry window.
func (r *mongoWaitlistRepo) MarkNotified(ctx context.Context, id, slotID string, notifiedAt, expiresAt time.Time) error {
	return r.transition(ctx, id, models.WaitlistWaiting, bson.M{
		"status":         models.WaitlistNotified,
		"notifiedSlotId": slotID,
		"notifiedAt":     notifiedAt,
		"expiresAt":      expiresAt,
	})
}

// MarkExpired transitions NOTIFIED -> EXPIRED.
func (r *mongoWaitlistRepo) MarkExpired(ctx context.Context, id string) error {
	return r.transition(ctx, id, models.WaitlistNotified, bson.M{"status": models.WaitlistExpired})
}

// MarkFulfilled transitions NOTIFIED -> FULFILLED.
func (r *mongoWaitlistRepo) MarkFulfilled(ctx context.Context, id string) error {
	return r.transition(ctx, id, models.WaitlistNotified, bson.M{"status": models.WaitlistFulfilled})
}

// MarkCancelled transitions WAITING or NOTIFIED -> CANCELLED.
func (r *mongoWaitlistRepo) MarkCancelled(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": bson.M{"$in": bson.A{models.WaitlistWaiting, models.WaitlistNotified}}},
		bson.M{"$set": bson.M{"status": models.WaitlistCancelled}},
	)
	if err != nil {
		return fmt.Errorf("failed to cancel waitlist entry %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoWaitlistRepo) transition(ctx context.Context, id, from string, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to transition waitlist entry %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetPositions rewrites position ranks in one bulk write.
func (r *mongoWaitlistRepo) SetPositions(ctx context.Context, positions map[string]int) error {
	if len(positions) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	writes := make([]mongo.WriteModel, 0, len(positions))
	for id, pos := range positions {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"id": id}).
			SetUpdate(bson.M{"$set": bson.M{"position": pos}}))
	}
	if _, err := r.coll.BulkWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to bulk update waitlist positions: %w", err)
	}
	return nil
}
