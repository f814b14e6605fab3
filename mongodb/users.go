package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"travel-friend/api/models"
)

func GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching user: %v", err)
	}
	return &user, nil
}

// EnsureUser upserts the skeleton user document for the authenticated
// subject so notification appends always have a target.
func EnsureUser(ctx context.Context, userID, name, email string, now time.Time) error {
	opts := options.UpdateOne().SetUpsert(true)
	_, err := users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$set": bson.M{"name": name, "email": email, "updated_at": now},
			"$setOnInsert": bson.M{
				"notifications": []models.Notification{},
				"created_at":    now,
			},
		},
		opts,
	)
	if err != nil {
		return fmt.Errorf("error upserting user: %v", err)
	}
	return nil
}

func SetPaymentHandle(ctx context.Context, userID, handle string, now time.Time) error {
	_, err := users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"payment_handle": handle, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("error setting payment handle: %v", err)
	}
	return nil
}

// AppendNotification pushes the notification to the front of the user's list
// and trims anything past the cap, so the list is a bounded, newest-first
// collection with explicit eviction.
func AppendNotification(ctx context.Context, userID string, n models.Notification) error {
	result, err := users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"notifications": bson.M{
			"$each":     bson.A{n},
			"$position": 0,
			"$slice":    models.MaxNotificationsPerUser,
		}}},
	)
	if err != nil {
		return fmt.Errorf("error appending notification: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

func GetNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	user, err := GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return []models.Notification{}, nil
	}
	if user.Notifications == nil {
		return []models.Notification{}, nil
	}
	return user.Notifications, nil
}

func MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	result, err := users().UpdateOne(ctx,
		bson.M{"_id": userID, "notifications.id": notificationID},
		bson.M{"$set": bson.M{"notifications.$.read": true}},
	)
	if err != nil {
		return fmt.Errorf("error marking notification read: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification %s not found", notificationID)
	}
	return nil
}

func MarkAllNotificationsRead(ctx context.Context, userID string) error {
	_, err := users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"notifications.$[].read": true}},
	)
	if err != nil {
		return fmt.Errorf("error marking notifications read: %v", err)
	}
	return nil
}
