package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingStatusPending          BookingStatus = "pending"
	BookingStatusDriverAcceptance BookingStatus = "pending_driver_acceptance"
	BookingStatusConfirmed        BookingStatus = "confirmed"
	BookingStatusInProgress       BookingStatus = "in_progress"
	BookingStatusCompleted        BookingStatus = "completed"
	BookingStatusCancelled        BookingStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodPayNow   PaymentMethod = "pay_now"
	PaymentMethodPayLater PaymentMethod = "pay_later"
	PaymentMethodCredit   PaymentMethod = "credit"
	PaymentMethodCash     PaymentMethod = "cash"
)

// BookingAction names a lifecycle operation attempted against a booking.
type BookingAction string

const (
	ActionAssignDriver BookingAction = "assign_driver"
	ActionAccept       BookingAction = "accept"
	ActionDecline      BookingAction = "decline"
	ActionStart        BookingAction = "start"
	ActionComplete     BookingAction = "complete"
	ActionCancel       BookingAction = "cancel"
)

// transitionMap lists, per action, the statuses the booking must currently
// be in for the action to be legal.
var transitionMap = map[BookingAction][]BookingStatus{
	ActionAssignDriver: {BookingStatusPending},
	ActionAccept:       {BookingStatusDriverAcceptance},
	ActionDecline:      {BookingStatusDriverAcceptance},
	ActionStart:        {BookingStatusConfirmed},
	ActionComplete:     {BookingStatusInProgress},
	ActionCancel: {
		BookingStatusPending,
		BookingStatusDriverAcceptance,
		BookingStatusConfirmed,
		BookingStatusInProgress,
	},
}

// ValidTransition reports whether an action is legal from the given status.
// Terminal statuses (completed, cancelled) permit nothing.
func ValidTransition(action BookingAction, from BookingStatus) bool {
	for _, status := range transitionMap[action] {
		if status == from {
			return true
		}
	}
	return false
}

// AllowedStatuses returns the statuses an action may start from, for use as
// an atomic update guard.
func AllowedStatuses(action BookingAction) []BookingStatus {
	return transitionMap[action]
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// DriverDecline records a driver turning an assignment down. Kept on the
// booking so dispatchers can see why it is back in the pool.
type DriverDecline struct {
	DriverID   primitive.ObjectID `json:"driver_id" bson:"driver_id"`
	Reason     string             `json:"reason,omitempty" bson:"reason,omitempty"`
	DeclinedAt time.Time          `json:"declined_at" bson:"declined_at"`
}

// FlightInfo is a snapshot of the passenger's flight taken at booking time.
type FlightInfo struct {
	FlightNumber  string     `json:"flight_number" bson:"flight_number"`
	Airline       string     `json:"airline,omitempty" bson:"airline,omitempty"`
	Origin        string     `json:"origin,omitempty" bson:"origin,omitempty"`
	Destination   string     `json:"destination,omitempty" bson:"destination,omitempty"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty" bson:"scheduled_time,omitempty"`
	Status        string     `json:"status,omitempty" bson:"status,omitempty"`
}

// Booking is the durable entity produced by the booking flow. TotalAmount
// equals the selected vehicle's final quoted price at creation time;
// CreditAmountApplied never exceeds min(account balance, TotalAmount).
type Booking struct {
	ID                  primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	BookingReference    string              `json:"booking_reference" bson:"booking_reference"`
	UserID              primitive.ObjectID  `json:"user_id" bson:"user_id" validate:"required"`
	BookingType         ServiceType         `json:"booking_type" bson:"booking_type" validate:"required"`
	Status              BookingStatus       `json:"status" bson:"status"`
	Pickup              Location            `json:"pickup" bson:"pickup" validate:"required"`
	Destination         *Location           `json:"destination,omitempty" bson:"destination,omitempty"`
	ViaPoints           []Location          `json:"via_points,omitempty" bson:"via_points,omitempty"`
	Hours               int                 `json:"hours,omitempty" bson:"hours,omitempty"`
	ScheduledAt         time.Time           `json:"scheduled_at" bson:"scheduled_at" validate:"required"`
	VehicleTypeID       primitive.ObjectID  `json:"vehicle_type_id" bson:"vehicle_type_id" validate:"required"`
	VehicleTypeSlug     string              `json:"vehicle_type_slug" bson:"vehicle_type_slug"`
	TotalAmount         float64             `json:"total_amount" bson:"total_amount"`
	CreditAmountApplied float64             `json:"credit_amount_applied" bson:"credit_amount_applied"`
	Currency            string              `json:"currency" bson:"currency"`
	PassengerName       string              `json:"passenger_name" bson:"passenger_name" validate:"required"`
	PassengerPhone      string              `json:"passenger_phone" bson:"passenger_phone" validate:"required"`
	PassengerEmail      string              `json:"passenger_email" bson:"passenger_email" validate:"required,email"`
	PassengerCount      int                 `json:"passenger_count" bson:"passenger_count" validate:"min=1"`
	LuggageCount        int                 `json:"luggage_count" bson:"luggage_count" validate:"min=0"`
	BabySeat            bool                `json:"baby_seat" bson:"baby_seat"`
	Flight              *FlightInfo         `json:"flight,omitempty" bson:"flight,omitempty"`
	SpecialInstructions string              `json:"special_instructions,omitempty" bson:"special_instructions,omitempty"`
	BillReference       string              `json:"bill_reference,omitempty" bson:"bill_reference,omitempty"`
	PaymentMethod       PaymentMethod       `json:"payment_method" bson:"payment_method"`
	PaymentIntentID     string              `json:"payment_intent_id,omitempty" bson:"payment_intent_id,omitempty"`
	DriverID            *primitive.ObjectID `json:"driver_id,omitempty" bson:"driver_id,omitempty"`
	DriverPayment       float64             `json:"driver_payment,omitempty" bson:"driver_payment,omitempty"`
	Declines            []DriverDecline     `json:"declines,omitempty" bson:"declines,omitempty"`
	DistanceMiles       float64             `json:"distance_miles,omitempty" bson:"distance_miles,omitempty"`
	DurationMinutes     int                 `json:"duration_minutes,omitempty" bson:"duration_minutes,omitempty"`
	CancellationReason  string              `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	CancelledBy         string              `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	ConfirmedAt         *time.Time          `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	StartedAt           *time.Time          `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt         *time.Time          `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CancelledAt         *time.Time          `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt           time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at" bson:"updated_at"`
}

// RemainingAmount is what is still owed after applied credit.
func (b *Booking) RemainingAmount() float64 {
	remaining := b.TotalAmount - b.CreditAmountApplied
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsOwnedBy reports whether a user may act on the booking as its passenger
// or its assigned driver.
func (b *Booking) IsOwnedBy(userID primitive.ObjectID) bool {
	if b.UserID == userID {
		return true
	}
	return b.DriverID != nil && *b.DriverID == userID
}
