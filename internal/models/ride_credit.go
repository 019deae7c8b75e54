package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RideCredit is a per-user running balance. It is decremented by the credit
// applied at booking creation and never goes negative.
type RideCredit struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Balance   float64            `json:"balance" bson:"balance"`
	Currency  string             `json:"currency" bson:"currency"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

type CreditTransactionType string

const (
	CreditTransactionGrant  CreditTransactionType = "grant"
	CreditTransactionApply  CreditTransactionType = "apply"
	CreditTransactionRefund CreditTransactionType = "refund"
)

// CreditTransaction is an audit entry for every balance change.
type CreditTransaction struct {
	ID        primitive.ObjectID    `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID    `json:"user_id" bson:"user_id"`
	BookingID *primitive.ObjectID   `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	Type      CreditTransactionType `json:"type" bson:"type"`
	Amount    float64               `json:"amount" bson:"amount"`
	Note      string                `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt time.Time             `json:"created_at" bson:"created_at"`
}
