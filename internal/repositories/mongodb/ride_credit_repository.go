package mongodb

import (
	"context"
	"fmt"
	"time"

	"limoride/internal/models"
	"limoride/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type rideCreditRepository struct {
	balances     *mongo.Collection
	transactions *mongo.Collection
}

func NewRideCreditRepository(db *mongo.Database) interfaces.RideCreditRepository {
	return &rideCreditRepository{
		balances:     db.Collection("ride_credits"),
		transactions: db.Collection("credit_transactions"),
	}
}

func (r *rideCreditRepository) GetBalance(ctx context.Context, userID primitive.ObjectID) (float64, error) {
	var credit models.RideCredit
	err := r.balances.FindOne(ctx, bson.M{"user_id": userID}).Decode(&credit)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get credit balance: %w", err)
	}

	return credit.Balance, nil
}

// ApplyCredit decrements with the balance floor in the update filter, so a
// concurrent spend of the same balance cannot drive it negative.
func (r *rideCreditRepository) ApplyCredit(ctx context.Context, userID primitive.ObjectID, bookingID primitive.ObjectID, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive")
	}

	filter := bson.M{
		"user_id": userID,
		"balance": bson.M{"$gte": amount},
	}
	update := bson.M{
		"$inc": bson.M{"balance": -amount},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := r.balances.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to apply credit: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrInsufficientBalance
	}

	return r.recordTransaction(ctx, userID, &bookingID, models.CreditTransactionApply, -amount, "")
}

func (r *rideCreditRepository) RefundCredit(ctx context.Context, userID primitive.ObjectID, bookingID primitive.ObjectID, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("refund amount must be positive")
	}

	if err := r.upsertBalance(ctx, userID, amount); err != nil {
		return fmt.Errorf("failed to refund credit: %w", err)
	}

	return r.recordTransaction(ctx, userID, &bookingID, models.CreditTransactionRefund, amount, "booking cancelled")
}

func (r *rideCreditRepository) GrantCredit(ctx context.Context, userID primitive.ObjectID, amount float64, note string) error {
	if amount <= 0 {
		return fmt.Errorf("grant amount must be positive")
	}

	if err := r.upsertBalance(ctx, userID, amount); err != nil {
		return fmt.Errorf("failed to grant credit: %w", err)
	}

	return r.recordTransaction(ctx, userID, nil, models.CreditTransactionGrant, amount, note)
}

func (r *rideCreditRepository) GetTransactions(ctx context.Context, userID primitive.ObjectID) ([]*models.CreditTransaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.transactions.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query credit transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txns []*models.CreditTransaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("failed to decode credit transactions: %w", err)
	}

	return txns, nil
}

func (r *rideCreditRepository) upsertBalance(ctx context.Context, userID primitive.ObjectID, delta float64) error {
	now := time.Now()
	update := bson.M{
		"$inc": bson.M{"balance": delta},
		"$set": bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"user_id":    userID,
			"currency":   "USD",
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.balances.UpdateOne(ctx, bson.M{"user_id": userID}, update, opts)
	return err
}

func (r *rideCreditRepository) recordTransaction(ctx context.Context, userID primitive.ObjectID, bookingID *primitive.ObjectID, txnType models.CreditTransactionType, amount float64, note string) error {
	txn := models.CreditTransaction{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		BookingID: bookingID,
		Type:      txnType,
		Amount:    amount,
		Note:      note,
		CreatedAt: time.Now(),
	}

	if _, err := r.transactions.InsertOne(ctx, txn); err != nil {
		return fmt.Errorf("failed to record credit transaction: %w", err)
	}

	return nil
}
