// File: database/repository/availability/crud.go
package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"slotwise/models"
)

func (r *mongoAvailabilityRepo) CreateWindows(ctx context.Context, windows []models.AvailabilityWindow) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	docs := make([]interface{}, len(windows))
	for i, w := range windows {
		if w.ID == "" {
			w.ID = uuid.New().String()
		}
		docs[i] = w
	}
	if _, err := r.windowColl.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert availability windows: %w", err)
	}
	return nil
}

func (r *mongoAvailabilityRepo) GetWindowsByService(ctx context.Context, serviceID string) ([]models.AvailabilityWindow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.windowColl.Find(ctx, bson.M{"serviceId": serviceID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch windows for service %s: %w", serviceID, err)
	}
	defer cursor.Close(ctx)

	var windows []models.AvailabilityWindow
	if err := cursor.All(ctx, &windows); err != nil {
		return nil, fmt.Errorf("failed to decode windows: %w", err)
	}
	return windows, nil
}

// ReplaceWindows swaps a service's weekly windows atomically inside a session
// transaction, so a concurrent generation run never observes a half-applied
// configuration.
func (r *mongoAvailabilityRepo) ReplaceWindows(ctx context.Context, serviceID string, windows []models.AvailabilityWindow) error {
	client := r.windowColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := r.windowColl.DeleteMany(sc, bson.M{"serviceId": serviceID}); err != nil {
			return fmt.Errorf("delete old windows failed: %w", err)
		}
		if len(windows) == 0 {
			return nil
		}
		docs := make([]interface{}, len(windows))
		for i, w := range windows {
			if w.ID == "" {
				w.ID = uuid.New().String()
			}
			w.ServiceID = serviceID
			docs[i] = w
		}
		if _, err := r.windowColl.InsertMany(sc, docs); err != nil {
			return fmt.Errorf("insert new windows failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("replace windows transaction failed: %w", err)
	}
	return nil
}

func (r *mongoAvailabilityRepo) DeleteWindow(ctx context.Context, serviceID, windowID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.windowColl.DeleteOne(ctx, bson.M{"id": windowID, "serviceId": serviceID})
	if err != nil {
		return fmt.Errorf("failed to delete window %s: %w", windowID, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoAvailabilityRepo) CreateUnavailability(ctx context.Context, u *models.Unavailability) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if _, err := r.blackoutColl.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("failed to insert unavailability: %w", err)
	}
	return nil
}

func (r *mongoAvailabilityRepo) DeleteUnavailability(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.blackoutColl.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete unavailability %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoAvailabilityRepo) GetBlackouts(ctx context.Context, serviceID, fromDate, toDate string) ([]models.Unavailability, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"serviceId": serviceID},
				bson.M{"serviceId": bson.M{"$exists": false}},
				bson.M{"serviceId": ""},
			}},
			bson.M{"startDate": bson.M{"$lte": toDate}},
			bson.M{"endDate": bson.M{"$gte": fromDate}},
		},
	}
	cursor, err := r.blackoutColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blackouts for service %s: %w", serviceID, err)
	}
	defer cursor.Close(ctx)

	var blackouts []models.Unavailability
	if err := cursor.All(ctx, &blackouts); err != nil {
		return nil, fmt.Errorf("failed to decode blackouts: %w", err)
	}
	return blackouts, nil
}
