package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"travel-friend/api/models"
)

func CreateGroup(ctx context.Context, group *models.Group) error {
	_, err := groups().InsertOne(ctx, group)
	if err != nil {
		return fmt.Errorf("error creating group: %v", err)
	}
	return nil
}

func GetGroupByID(ctx context.Context, groupID string) (*models.Group, error) {
	var group models.Group
	err := groups().FindOne(ctx, bson.M{"_id": groupID}).Decode(&group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching group: %v", err)
	}
	return &group, nil
}

// GetGroupsForUser returns every group the user created or is a member of.
func GetGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"creator_id": userID},
		bson.M{"members.user_id": userID},
	}}
	cursor, err := groups().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching groups: %v", err)
	}
	defer cursor.Close(ctx)

	var results []models.Group
	for cursor.Next(ctx) {
		var group models.Group
		if err := cursor.Decode(&group); err != nil {
			return nil, fmt.Errorf("error decoding group: %v", err)
		}
		results = append(results, group)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return results, nil
}

func AddJoinRequest(ctx context.Context, groupID string, request models.JoinRequest) error {
	_, err := groups().UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{"$push": bson.M{"join_requests": request}},
	)
	if err != nil {
		return fmt.Errorf("error adding join request: %v", err)
	}
	return nil
}

// ApproveJoinRequest flips the pending request to approved and appends the
// requester as an approved member in a single update.
func ApproveJoinRequest(ctx context.Context, groupID, userID string, now time.Time) error {
	_, err := groups().UpdateOne(ctx,
		bson.M{"_id": groupID, "join_requests.user_id": userID},
		bson.M{
			"$set": bson.M{"join_requests.$.status": models.RequestStatusApproved},
			"$push": bson.M{"members": models.Member{
				UserID:   userID,
				Status:   models.MemberStatusApproved,
				JoinedAt: now,
			}},
		},
	)
	if err != nil {
		return fmt.Errorf("error approving join request: %v", err)
	}
	return nil
}

func RejectJoinRequest(ctx context.Context, groupID, userID string) error {
	_, err := groups().UpdateOne(ctx,
		bson.M{"_id": groupID, "join_requests.user_id": userID},
		bson.M{"$set": bson.M{"join_requests.$.status": models.RequestStatusRejected}},
	)
	if err != nil {
		return fmt.Errorf("error rejecting join request: %v", err)
	}
	return nil
}

func AddInvitation(ctx context.Context, groupID string, invitation models.Invitation) error {
	_, err := groups().UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{"$push": bson.M{"invitations": invitation}},
	)
	if err != nil {
		return fmt.Errorf("error adding invitation: %v", err)
	}
	return nil
}
