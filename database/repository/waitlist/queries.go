// File: database/repository/waitlist/queries.go
package waitlistRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"slotwise/models"
)

func (r *mongoWaitlistRepo) FindWaiting(ctx context.Context, serviceID, date string) ([]models.WaitlistEntry, error) {
	return r.find(ctx,
		bson.M{"serviceId": serviceID, "date": date, "status": models.WaitlistWaiting},
		bson.D{{Key: "position", Value: 1}},
	)
}

func (r *mongoWaitlistRepo) FindWaitingByService(ctx context.Context, serviceID string) ([]models.WaitlistEntry, error) {
	return r.find(ctx,
		bson.M{"serviceId": serviceID, "status": models.WaitlistWaiting},
		bson.D{{Key: "createdAt", Value: 1}, {Key: "id", Value: 1}},
	)
}

func (r *mongoWaitlistRepo) FindNotifiedForClient(ctx context.Context, clientID, serviceID, date string) ([]models.WaitlistEntry, error) {
	return r.find(ctx,
		bson.M{"clientId": clientID, "serviceId": serviceID, "date": date, "status": models.WaitlistNotified},
		bson.D{{Key: "notifiedAt", Value: 1}},
	)
}

func (r *mongoWaitlistRepo) FindExpired(ctx context.Context, now time.Time) ([]models.WaitlistEntry, error) {
	return r.find(ctx,
		bson.M{"status": models.WaitlistNotified, "expiresAt": bson.M{"$lt": now}},
		bson.D{{Key: "expiresAt", Value: 1}},
	)
}

func (r *mongoWaitlistRepo) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.WaitlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to query waitlist entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.WaitlistEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode waitlist entries: %w", err)
	}
	return entries, nil
}
