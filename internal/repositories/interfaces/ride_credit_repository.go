package interfaces

import (
	"context"

	"limoride/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideCreditRepository interface {
	GetBalance(ctx context.Context, userID primitive.ObjectID) (float64, error)

	// ApplyCredit decrements the balance by amount, guarded so the balance
	// never goes negative. Returns ErrInsufficientBalance when the guard
	// fails, and records an apply transaction on success.
	ApplyCredit(ctx context.Context, userID primitive.ObjectID, bookingID primitive.ObjectID, amount float64) error

	// RefundCredit returns previously applied credit, e.g. on cancellation.
	RefundCredit(ctx context.Context, userID primitive.ObjectID, bookingID primitive.ObjectID, amount float64) error

	// GrantCredit increases the balance (admin action), creating the
	// balance record if the user has none yet.
	GrantCredit(ctx context.Context, userID primitive.ObjectID, amount float64, note string) error

	GetTransactions(ctx context.Context, userID primitive.ObjectID) ([]*models.CreditTransaction, error)
}
