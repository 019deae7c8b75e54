// Package flow holds the multi-step booking flow state. A flow starts
// anonymously with a quote, survives login, and ends when a booking is
// created from it. Steps complete strictly in order; editing an earlier step
// discards everything built on top of it.
package flow

import (
	"errors"
	"fmt"
	"time"

	"limoride/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Step int

const (
	StepQuote Step = iota + 1
	StepVehicle
	StepDetails
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepQuote:
		return "quote"
	case StepVehicle:
		return "vehicle"
	case StepDetails:
		return "details"
	case StepPayment:
		return "payment"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

var (
	ErrStepOutOfOrder = errors.New("flow step attempted out of order")
	ErrQuoteExpired   = errors.New("quote has expired, request a new one")
	ErrLoginRequired  = errors.New("sign in to continue past vehicle selection")
	ErrSessionOwned   = errors.New("booking session belongs to another account")
)

// quoteTTL bounds how long a generated quote may back a booking. Prices move;
// a stale quote forces the flow back to step one.
const quoteTTL = 15 * time.Minute

// TripDetails is everything gathered in step three.
type TripDetails struct {
	PassengerName       string             `json:"passenger_name"`
	PassengerPhone      string             `json:"passenger_phone"`
	PassengerEmail      string             `json:"passenger_email"`
	PassengerCount      int                `json:"passenger_count"`
	LuggageCount        int                `json:"luggage_count"`
	BabySeat            bool               `json:"baby_seat"`
	FlightNumber        string             `json:"flight_number,omitempty"`
	Flight              *models.FlightInfo `json:"flight,omitempty"`
	SpecialInstructions string             `json:"special_instructions,omitempty"`
	BillReference       string             `json:"bill_reference,omitempty"`
}

// State is the full flow snapshot, JSON round-trippable so it can live in the
// session store between requests.
type State struct {
	SessionID       string              `json:"session_id"`
	UserID          *primitive.ObjectID `json:"user_id,omitempty"`
	Step            Step                `json:"step"`
	Quote           *models.Quote       `json:"quote,omitempty"`
	VehicleTypeSlug string              `json:"vehicle_type_slug,omitempty"`
	Details         *TripDetails        `json:"details,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func NewState(sessionID string) *State {
	now := time.Now().UTC()
	return &State{
		SessionID: sessionID,
		Step:      StepQuote,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AttachUser binds a logged-in user to a flow started anonymously. The rest
// of the state is untouched, which is what lets a visitor quote first and
// sign in later without losing their selection. A session already bound to
// a different account stays with that account.
func (s *State) AttachUser(userID primitive.ObjectID) error {
	if s.UserID != nil && *s.UserID != userID {
		return ErrSessionOwned
	}
	s.UserID = &userID
	s.touch()
	return nil
}

// SetQuote records a fresh quote and resets every later step. Re-quoting from
// any step is always legal; it just starts the selection over.
func (s *State) SetQuote(quote *models.Quote) {
	s.Quote = quote
	s.VehicleTypeSlug = ""
	s.Details = nil
	s.Step = StepVehicle
	s.touch()
}

// SelectVehicle picks one of the quoted options. Selecting a different
// vehicle later keeps the gathered details; only the price selection changes.
func (s *State) SelectVehicle(slug string) error {
	if s.Quote == nil {
		return ErrStepOutOfOrder
	}
	// Quoting is open to visitors; everything past it needs an account.
	if s.UserID == nil {
		return ErrLoginRequired
	}
	if s.QuoteStale() {
		return ErrQuoteExpired
	}
	if _, ok := s.Quote.Option(slug); !ok {
		return fmt.Errorf("vehicle type %q is not among the quoted options", slug)
	}

	s.VehicleTypeSlug = slug
	if s.Step < StepDetails {
		s.Step = StepDetails
	}
	s.touch()
	return nil
}

// SetDetails records the trip details gathered in step three.
func (s *State) SetDetails(details *TripDetails) error {
	if s.Quote == nil || s.VehicleTypeSlug == "" {
		return ErrStepOutOfOrder
	}
	if s.UserID == nil {
		return ErrLoginRequired
	}
	s.Details = details
	if s.Step < StepPayment {
		s.Step = StepPayment
	}
	s.touch()
	return nil
}

// ReadyToBook reports whether the flow has everything the final step needs.
func (s *State) ReadyToBook() error {
	if s.UserID == nil {
		return ErrLoginRequired
	}
	if s.Quote == nil || s.VehicleTypeSlug == "" || s.Details == nil {
		return ErrStepOutOfOrder
	}
	if s.QuoteStale() {
		return ErrQuoteExpired
	}
	return nil
}

// QuoteStale reports whether the held quote is too old to book against.
func (s *State) QuoteStale() bool {
	if s.Quote == nil {
		return true
	}
	return time.Since(s.Quote.GeneratedAt) > quoteTTL
}

func (s *State) SelectedOption() (models.VehicleQuote, bool) {
	if s.Quote == nil || s.VehicleTypeSlug == "" {
		return models.VehicleQuote{}, false
	}
	return s.Quote.Option(s.VehicleTypeSlug)
}

func (s *State) touch() {
	s.UpdatedAt = time.Now().UTC()
}
