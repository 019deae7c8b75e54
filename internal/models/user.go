package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RolePassenger  UserRole = "passenger"
	RoleDriver     UserRole = "driver"
	RoleDispatcher UserRole = "dispatcher"
	RoleAdmin      UserRole = "admin"
)

type User struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Role             UserRole           `json:"role" bson:"role"`
	FirstName        string             `json:"first_name" bson:"first_name" validate:"required"`
	LastName         string             `json:"last_name" bson:"last_name" validate:"required"`
	Email            string             `json:"email" bson:"email" validate:"required,email"`
	Phone            string             `json:"phone" bson:"phone"`
	PasswordHash     string             `json:"-" bson:"password_hash"`
	StripeCustomerID string             `json:"-" bson:"stripe_customer_id,omitempty"`
	// Payment entitlements are granted per account by an admin; pay-later
	// and cash bookings are rejected without them.
	PayLaterEnabled bool `json:"pay_later_enabled" bson:"pay_later_enabled"`
	CashEnabled     bool `json:"cash_enabled" bson:"cash_enabled"`
	// DiscountPercent is a negotiated account-level discount. When it beats a
	// rule's discount it replaces it in quotes for this user.
	DiscountPercent float64   `json:"discount_percent" bson:"discount_percent"`
	IsActive        bool      `json:"is_active" bson:"is_active"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleDispatcher
}
