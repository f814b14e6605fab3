package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"travel-friend/api/models"
)

// CreateExpense inserts the expense and bumps the owning group's running
// total inside one transaction, so a crash can never leave the counter out of
// step with the expense set.
func CreateExpense(ctx context.Context, expense *models.Expense) error {
	session, err := MongoClient.StartSession()
	if err != nil {
		return fmt.Errorf("error starting mongo session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		if _, err := expenses().InsertOne(ctx, expense); err != nil {
			return nil, fmt.Errorf("error creating expense: %v", err)
		}
		_, err := groups().UpdateOne(ctx,
			bson.M{"_id": expense.GroupID},
			bson.M{"$inc": bson.M{"total_expenses": expense.Amount}},
		)
		if err != nil {
			return nil, fmt.Errorf("error updating group total: %v", err)
		}
		return nil, nil
	})
	return err
}

// DeleteExpense removes the expense and decrements the group total, floored
// at zero, inside one transaction.
func DeleteExpense(ctx context.Context, expense *models.Expense) error {
	session, err := MongoClient.StartSession()
	if err != nil {
		return fmt.Errorf("error starting mongo session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		if _, err := expenses().DeleteOne(ctx, bson.M{"_id": expense.ID}); err != nil {
			return nil, fmt.Errorf("error deleting expense: %v", err)
		}
		// Aggregation-pipeline update so the counter never goes negative.
		pipeline := mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				"total_expenses": bson.M{"$max": bson.A{
					0,
					bson.M{"$subtract": bson.A{"$total_expenses", expense.Amount}},
				}},
			}}},
		}
		if _, err := groups().UpdateOne(ctx, bson.M{"_id": expense.GroupID}, pipeline); err != nil {
			return nil, fmt.Errorf("error updating group total: %v", err)
		}
		return nil, nil
	})
	return err
}

func GetExpenseByID(ctx context.Context, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	err := expenses().FindOne(ctx, bson.M{"_id": expenseID}).Decode(&expense)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching expense: %v", err)
	}
	return &expense, nil
}

func GetExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := expenses().Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching expenses: %v", err)
	}
	defer cursor.Close(ctx)

	var results []models.Expense
	for cursor.Next(ctx) {
		var expense models.Expense
		if err := cursor.Decode(&expense); err != nil {
			return nil, fmt.Errorf("error decoding expense: %v", err)
		}
		results = append(results, expense)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return results, nil
}

// UpdateExpenseFields applies administrative edits (description, amount,
// category, status) to the expense document.
func UpdateExpenseFields(ctx context.Context, expenseID string, updates bson.M) error {
	_, err := expenses().UpdateOne(ctx,
		bson.M{"_id": expenseID},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("error updating expense: %v", err)
	}
	return nil
}

// SaveExpenseEdit persists an administrative edit. When the amount changed,
// the group's running total is adjusted by the difference in the same
// transaction as the expense write.
func SaveExpenseEdit(ctx context.Context, expense *models.Expense, amountDelta float64) error {
	updates := bson.M{
		"description": expense.Description,
		"amount":      expense.Amount,
		"category":    expense.Category,
		"splits":      expense.Splits,
		"updated_at":  expense.UpdatedAt,
	}
	if amountDelta == 0 {
		return UpdateExpenseFields(ctx, expense.ID, updates)
	}

	session, err := MongoClient.StartSession()
	if err != nil {
		return fmt.Errorf("error starting mongo session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		if _, err := expenses().UpdateOne(ctx, bson.M{"_id": expense.ID}, bson.M{"$set": updates}); err != nil {
			return nil, fmt.Errorf("error updating expense: %v", err)
		}
		pipeline := mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				"total_expenses": bson.M{"$max": bson.A{
					0,
					bson.M{"$add": bson.A{"$total_expenses", amountDelta}},
				}},
			}}},
		}
		if _, err := groups().UpdateOne(ctx, bson.M{"_id": expense.GroupID}, pipeline); err != nil {
			return nil, fmt.Errorf("error updating group total: %v", err)
		}
		return nil, nil
	})
	return err
}

// SaveSettlement persists the mutated settlement state (settled set, split
// flags, status) after a settle operation.
func SaveSettlement(ctx context.Context, expense *models.Expense) error {
	_, err := expenses().UpdateOne(ctx,
		bson.M{"_id": expense.ID},
		bson.M{"$set": bson.M{
			"settled_users": expense.SettledUsers,
			"splits":        expense.Splits,
			"status":        expense.Status,
			"updated_at":    expense.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("error saving settlement: %v", err)
	}
	return nil
}
