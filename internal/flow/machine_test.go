package flow

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"limoride/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func freshQuote() *models.Quote {
	return &models.Quote{
		ServiceType: models.ServiceTypeTransfer,
		Pickup:      models.Location{Address: "Heathrow T5", Latitude: 51.4719, Longitude: -0.4887},
		Destination: &models.Location{Address: "The Savoy", Latitude: 51.5101, Longitude: -0.1202},
		Vehicles: []models.VehicleQuote{
			{VehicleTypeSlug: "executive_sedan", RegularPrice: 95, FinalPrice: 95},
			{VehicleTypeSlug: "luxury_van", RegularPrice: 140, DiscountAmount: 14, FinalPrice: 126},
		},
		GeneratedAt: time.Now().UTC(),
	}
}

func attachUser(t *testing.T, state *State) primitive.ObjectID {
	t.Helper()
	userID := primitive.NewObjectID()
	if err := state.AttachUser(userID); err != nil {
		t.Fatalf("AttachUser: %v", err)
	}
	return userID
}

func TestFlowHappyPath(t *testing.T) {
	state := NewState("sess-1")
	if state.Step != StepQuote {
		t.Fatalf("new flow should start at the quote step, got %v", state.Step)
	}

	state.SetQuote(freshQuote())
	if state.Step != StepVehicle {
		t.Fatalf("after quoting, step = %v, want %v", state.Step, StepVehicle)
	}

	attachUser(t, state)
	if err := state.SelectVehicle("luxury_van"); err != nil {
		t.Fatalf("SelectVehicle: %v", err)
	}
	if state.Step != StepDetails {
		t.Fatalf("after selection, step = %v, want %v", state.Step, StepDetails)
	}

	err := state.SetDetails(&TripDetails{
		PassengerName:  "Ana Petrova",
		PassengerPhone: "+447700900123",
		PassengerEmail: "ana@example.com",
		PassengerCount: 3,
	})
	if err != nil {
		t.Fatalf("SetDetails: %v", err)
	}
	if state.Step != StepPayment {
		t.Fatalf("after details, step = %v, want %v", state.Step, StepPayment)
	}

	if err := state.ReadyToBook(); err != nil {
		t.Fatalf("ReadyToBook: %v", err)
	}

	option, ok := state.SelectedOption()
	if !ok {
		t.Fatal("selected option missing")
	}
	if option.FinalPrice != 126 {
		t.Fatalf("selected price = %v, want 126", option.FinalPrice)
	}
}

func TestAnonymousFlowStopsAtVehicleSelection(t *testing.T) {
	state := NewState("sess-anon")
	state.SetQuote(freshQuote())

	// Quoting is open to visitors; the flow must refuse to advance past
	// step two until an account is attached.
	if err := state.SelectVehicle("luxury_van"); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("anonymous selection: err = %v, want ErrLoginRequired", err)
	}

	state.VehicleTypeSlug = "luxury_van"
	if err := state.SetDetails(&TripDetails{PassengerName: "Ana"}); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("anonymous details: err = %v, want ErrLoginRequired", err)
	}
	if state.Step != StepVehicle {
		t.Fatalf("anonymous flow advanced to step %v", state.Step)
	}

	attachUser(t, state)
	if err := state.SelectVehicle("luxury_van"); err != nil {
		t.Fatalf("SelectVehicle after login: %v", err)
	}
}

func TestAttachRejectsDifferentUser(t *testing.T) {
	state := NewState("sess-owned")
	state.SetQuote(freshQuote())
	owner := attachUser(t, state)

	if err := state.AttachUser(primitive.NewObjectID()); !errors.Is(err, ErrSessionOwned) {
		t.Fatalf("attaching a second user: err = %v, want ErrSessionOwned", err)
	}
	if state.UserID == nil || *state.UserID != owner {
		t.Fatal("rejected attach must not change the owner")
	}

	// Re-attaching the owner is a no-op, not an error.
	if err := state.AttachUser(owner); err != nil {
		t.Fatalf("re-attaching the owner: %v", err)
	}
}

func TestStepsOutOfOrder(t *testing.T) {
	state := NewState("sess-2")

	if err := state.SelectVehicle("executive_sedan"); !errors.Is(err, ErrStepOutOfOrder) {
		t.Fatalf("selecting before quoting: err = %v, want ErrStepOutOfOrder", err)
	}
	if err := state.SetDetails(&TripDetails{}); !errors.Is(err, ErrStepOutOfOrder) {
		t.Fatalf("details before selection: err = %v, want ErrStepOutOfOrder", err)
	}
}

func TestSelectVehicleNotQuoted(t *testing.T) {
	state := NewState("sess-3")
	state.SetQuote(freshQuote())
	attachUser(t, state)

	if err := state.SelectVehicle("stretch_limo"); err == nil {
		t.Fatal("selecting a vehicle outside the quote should fail")
	}
}

func TestRequoteResetsDownstreamSteps(t *testing.T) {
	state := NewState("sess-4")
	state.SetQuote(freshQuote())
	attachUser(t, state)
	if err := state.SelectVehicle("executive_sedan"); err != nil {
		t.Fatalf("SelectVehicle: %v", err)
	}
	if err := state.SetDetails(&TripDetails{PassengerName: "Ana"}); err != nil {
		t.Fatalf("SetDetails: %v", err)
	}

	state.SetQuote(freshQuote())

	if state.VehicleTypeSlug != "" {
		t.Fatal("re-quoting should clear the vehicle selection")
	}
	if state.Details != nil {
		t.Fatal("re-quoting should clear the gathered details")
	}
	if state.Step != StepVehicle {
		t.Fatalf("after re-quoting, step = %v, want %v", state.Step, StepVehicle)
	}
}

func TestStaleQuoteRejected(t *testing.T) {
	state := NewState("sess-5")
	attachUser(t, state)
	quote := freshQuote()
	quote.GeneratedAt = time.Now().UTC().Add(-time.Hour)
	state.Quote = quote

	if err := state.SelectVehicle("executive_sedan"); !errors.Is(err, ErrQuoteExpired) {
		t.Fatalf("stale quote selection: err = %v, want ErrQuoteExpired", err)
	}

	state.SetQuote(quote)
	state.VehicleTypeSlug = "executive_sedan"
	state.Details = &TripDetails{PassengerName: "Ana"}
	if err := state.ReadyToBook(); !errors.Is(err, ErrQuoteExpired) {
		t.Fatalf("stale quote booking: err = %v, want ErrQuoteExpired", err)
	}
}

func TestAttachUserKeepsProgress(t *testing.T) {
	state := NewState("sess-6")
	state.SetQuote(freshQuote())
	userID := attachUser(t, state)
	if err := state.SelectVehicle("luxury_van"); err != nil {
		t.Fatalf("SelectVehicle: %v", err)
	}

	// The attach after login finds the session already bound.
	if err := state.AttachUser(userID); err != nil {
		t.Fatalf("AttachUser after login: %v", err)
	}

	if state.UserID == nil || *state.UserID != userID {
		t.Fatal("user not attached")
	}
	if state.VehicleTypeSlug != "luxury_van" {
		t.Fatal("login must not reset the vehicle selection")
	}
	if state.Step != StepDetails {
		t.Fatalf("login must not move the step, got %v", state.Step)
	}
}

func TestStateSurvivesJSONRoundTrip(t *testing.T) {
	state := NewState("sess-7")
	state.SetQuote(freshQuote())
	attachUser(t, state)
	if err := state.SelectVehicle("executive_sedan"); err != nil {
		t.Fatalf("SelectVehicle: %v", err)
	}
	if err := state.SetDetails(&TripDetails{
		PassengerName:  "Ana Petrova",
		PassengerCount: 2,
		FlightNumber:   "BA117",
	}); err != nil {
		t.Fatalf("SetDetails: %v", err)
	}

	raw, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored State
	if err := json.Unmarshal(raw, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if restored.Step != state.Step {
		t.Fatalf("step lost in round trip: %v != %v", restored.Step, state.Step)
	}
	if restored.VehicleTypeSlug != state.VehicleTypeSlug {
		t.Fatal("vehicle selection lost in round trip")
	}
	if restored.Details == nil || restored.Details.PassengerName != "Ana Petrova" {
		t.Fatal("details lost in round trip")
	}
	if restored.UserID == nil || *restored.UserID != *state.UserID {
		t.Fatal("user lost in round trip")
	}
	if err := restored.ReadyToBook(); err != nil {
		t.Fatalf("restored state not ready to book: %v", err)
	}
}
