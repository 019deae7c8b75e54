package validators

import (
	"testing"
	"time"
)

func validPickup() LocationRequest {
	return LocationRequest{Address: "Heathrow T5", Latitude: 51.4719, Longitude: -0.4887}
}

func TestValidateQuoteRequest(t *testing.T) {
	destination := LocationRequest{Address: "The Savoy", Latitude: 51.5101, Longitude: -0.1202}
	tomorrow := time.Now().Add(24 * time.Hour)

	cases := []struct {
		name    string
		req     QuoteRequestPayload
		wantErr bool
	}{
		{
			name: "valid transfer",
			req: QuoteRequestPayload{
				ServiceType: "transfer",
				Pickup:      validPickup(),
				Destination: &destination,
				ScheduledAt: tomorrow,
			},
		},
		{
			name: "valid hourly",
			req: QuoteRequestPayload{
				ServiceType: "hourly",
				Pickup:      validPickup(),
				Hours:       4,
				ScheduledAt: tomorrow,
			},
		},
		{
			name: "transfer without destination",
			req: QuoteRequestPayload{
				ServiceType: "transfer",
				Pickup:      validPickup(),
				ScheduledAt: tomorrow,
			},
			wantErr: true,
		},
		{
			name: "hourly below minimum",
			req: QuoteRequestPayload{
				ServiceType: "hourly",
				Pickup:      validPickup(),
				Hours:       1,
				ScheduledAt: tomorrow,
			},
			wantErr: true,
		},
		{
			name: "unknown service type",
			req: QuoteRequestPayload{
				ServiceType: "shuttle",
				Pickup:      validPickup(),
				ScheduledAt: tomorrow,
			},
			wantErr: true,
		},
		{
			name: "pickup in the past",
			req: QuoteRequestPayload{
				ServiceType: "transfer",
				Pickup:      validPickup(),
				Destination: &destination,
				ScheduledAt: time.Now().Add(-time.Hour),
			},
			wantErr: true,
		},
		{
			name: "too many via points",
			req: QuoteRequestPayload{
				ServiceType: "transfer",
				Pickup:      validPickup(),
				Destination: &destination,
				ViaPoints:   []LocationRequest{destination, destination, destination, destination},
				ScheduledAt: tomorrow,
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateQuoteRequest(&tc.req)
			if tc.wantErr && len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			if !tc.wantErr && len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
		})
	}
}

func TestValidateTripDetails(t *testing.T) {
	valid := TripDetailsPayload{
		PassengerName:  "Ana Petrova",
		PassengerPhone: "+447700900123",
		PassengerEmail: "ana@example.com",
		PassengerCount: 2,
		FlightNumber:   "BA117",
	}
	if errs := ValidateTripDetails(&valid); len(errs) > 0 {
		t.Fatalf("valid details rejected: %v", errs)
	}

	invalid := valid
	invalid.FlightNumber = "not-a-flight"
	if errs := ValidateTripDetails(&invalid); len(errs) == 0 {
		t.Fatal("bad flight number accepted")
	}

	invalid = valid
	invalid.PassengerPhone = "abc"
	if errs := ValidateTripDetails(&invalid); len(errs) == 0 {
		t.Fatal("bad phone accepted")
	}
}

func TestValidateConfirmBooking(t *testing.T) {
	payNow := ConfirmBookingPayload{PaymentMethod: "pay_now"}
	if errs := ValidateConfirmBooking(&payNow); len(errs) == 0 {
		t.Fatal("pay now without a payment method should fail")
	}

	payNow.PaymentMethodID = "pm_test_visa"
	if errs := ValidateConfirmBooking(&payNow); len(errs) > 0 {
		t.Fatalf("valid pay now rejected: %v", errs)
	}

	cash := ConfirmBookingPayload{PaymentMethod: "cash"}
	if errs := ValidateConfirmBooking(&cash); len(errs) > 0 {
		t.Fatalf("cash rejected: %v", errs)
	}
}
