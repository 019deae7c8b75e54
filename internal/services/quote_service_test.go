package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"limoride/internal/config"
	"limoride/internal/models"
	"limoride/internal/repositories/interfaces"
	"limoride/pkg/logger"
	"limoride/pkg/maps"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func testBookingConfig() *config.BookingConfig {
	return &config.BookingConfig{
		DriverPaymentShare: 0.75,
		MinHourlyHours:     2,
		MaxHourlyHours:     24,
		MaxViaPoints:       3,
		RequireCardOnFile:  true,
	}
}

type fakePricingRuleRepo struct {
	rules []*models.PricingRule
	err   error
}

func (f *fakePricingRuleRepo) Create(ctx context.Context, rule *models.PricingRule) error {
	return nil
}

func (f *fakePricingRuleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.PricingRule, error) {
	return nil, interfaces.ErrNotFound
}

func (f *fakePricingRuleRepo) GetActiveByServiceType(ctx context.Context, serviceType models.ServiceType) ([]*models.PricingRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.PricingRule
	for _, r := range f.rules {
		if r.ServiceType == serviceType && r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePricingRuleRepo) GetBySlugAndServiceType(ctx context.Context, slug string, serviceType models.ServiceType) (*models.PricingRule, error) {
	for _, r := range f.rules {
		if r.VehicleTypeSlug == slug && r.ServiceType == serviceType {
			return r, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakePricingRuleRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (f *fakePricingRuleRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

type fakeVehicleTypeRepo struct {
	types map[string]*models.VehicleType
}

func (f *fakeVehicleTypeRepo) Create(ctx context.Context, vehicleType *models.VehicleType) error {
	return nil
}

func (f *fakeVehicleTypeRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.VehicleType, error) {
	for _, vt := range f.types {
		if vt.ID == id {
			return vt, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeVehicleTypeRepo) GetBySlug(ctx context.Context, slug string) (*models.VehicleType, error) {
	if vt, ok := f.types[slug]; ok {
		return vt, nil
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeVehicleTypeRepo) GetActive(ctx context.Context) ([]*models.VehicleType, error) {
	var out []*models.VehicleType
	for _, vt := range f.types {
		if vt.IsActive {
			out = append(out, vt)
		}
	}
	return out, nil
}

func (f *fakeVehicleTypeRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (f *fakeVehicleTypeRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

type fakeMapsProvider struct {
	distance *maps.DistanceResponse
	err      error
	calls    atomic.Int64
}

func (f *fakeMapsProvider) Geocode(ctx context.Context, address string) (*maps.GeocodeResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeMapsProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*maps.GeocodeResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeMapsProvider) CalculateDistance(ctx context.Context, request *maps.DistanceRequest) (*maps.DistanceResponse, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.distance, nil
}

func transferRequest() *QuoteRequest {
	return &QuoteRequest{
		ServiceType: models.ServiceTypeTransfer,
		Pickup:      models.Location{Address: "Heathrow T5", Latitude: 51.4719, Longitude: -0.4887},
		Destination: &models.Location{Address: "The Savoy", Latitude: 51.5101, Longitude: -0.1202},
		ScheduledAt: time.Now().Add(48 * time.Hour),
	}
}

func TestTransferQuotePricesEveryVehicle(t *testing.T) {
	rules := &fakePricingRuleRepo{rules: []*models.PricingRule{
		{
			VehicleTypeSlug: "executive_sedan",
			ServiceType:     models.ServiceTypeTransfer,
			BaseFare:        20,
			PerMileRate:     2.5,
			PerMinuteRate:   0.5,
			DiscountPercent: 10,
			IsActive:        true,
		},
		{
			VehicleTypeSlug: "luxury_van",
			ServiceType:     models.ServiceTypeTransfer,
			BaseFare:        40,
			PerMileRate:     4,
			PerMinuteRate:   1,
			IsActive:        true,
		},
	}}
	mapsProvider := &fakeMapsProvider{distance: &maps.DistanceResponse{
		DistanceMiles:   10,
		DistanceKM:      16.09,
		DurationMinutes: 30,
	}}

	svc := NewQuoteService(rules, &fakeVehicleTypeRepo{}, newFakeUserRepo(), mapsProvider, testBookingConfig(), newTestLogger(t))

	quote, err := svc.GetQuote(context.Background(), transferRequest())
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}

	if len(quote.Vehicles) != 2 {
		t.Fatalf("got %d vehicle options, want 2", len(quote.Vehicles))
	}

	// Options come back cheapest first.
	sedan, van := quote.Vehicles[0], quote.Vehicles[1]
	if sedan.VehicleTypeSlug != "executive_sedan" || van.VehicleTypeSlug != "luxury_van" {
		t.Fatalf("options out of order: %s, %s", sedan.VehicleTypeSlug, van.VehicleTypeSlug)
	}

	// sedan: 20 + 10*2.50 + 30*0.50 = 60.00, 10% off = 54.00
	if sedan.RegularPrice != 60.00 || sedan.DiscountAmount != 6.00 || sedan.FinalPrice != 54.00 {
		t.Fatalf("sedan priced %+v", sedan)
	}
	// van: 40 + 10*4 + 30*1 = 110.00, no discount
	if van.RegularPrice != 110.00 || van.DiscountAmount != 0 || van.FinalPrice != 110.00 {
		t.Fatalf("van priced %+v", van)
	}

	if quote.DistanceMiles != 10 || quote.DurationMinutes != 30 {
		t.Fatalf("route data not carried onto quote: %+v", quote)
	}
	if calls := mapsProvider.calls.Load(); calls != 1 {
		t.Fatalf("distance computed %d times, want exactly 1", calls)
	}
}

func TestHourlyQuoteUsesVehicleHourlyRate(t *testing.T) {
	rules := &fakePricingRuleRepo{rules: []*models.PricingRule{
		{
			VehicleTypeSlug: "executive_sedan",
			ServiceType:     models.ServiceTypeHourly,
			SurgeMultiplier: 1.2,
			IsActive:        true,
		},
	}}
	vehicles := &fakeVehicleTypeRepo{types: map[string]*models.VehicleType{
		"executive_sedan": {Name: "Executive Sedan", HourlyRate: 75, IsActive: true},
	}}
	mapsProvider := &fakeMapsProvider{}

	svc := NewQuoteService(rules, vehicles, newFakeUserRepo(), mapsProvider, testBookingConfig(), newTestLogger(t))

	quote, err := svc.GetQuote(context.Background(), &QuoteRequest{
		ServiceType: models.ServiceTypeHourly,
		Pickup:      models.Location{Address: "Mayfair", Latitude: 51.51, Longitude: -0.15},
		Hours:       4,
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}

	if len(quote.Vehicles) != 1 {
		t.Fatalf("got %d options, want 1", len(quote.Vehicles))
	}
	// 75 * 4 hours * 1.2 surge = 360.00
	if got := quote.Vehicles[0].FinalPrice; got != 360.00 {
		t.Fatalf("hourly price = %v, want 360.00", got)
	}
	if calls := mapsProvider.calls.Load(); calls != 0 {
		t.Fatalf("hourly quote made %d distance calls, want 0", calls)
	}
}

func TestQuoteWithNoRulesFails(t *testing.T) {
	svc := NewQuoteService(&fakePricingRuleRepo{}, &fakeVehicleTypeRepo{}, newFakeUserRepo(),
		&fakeMapsProvider{distance: &maps.DistanceResponse{DistanceMiles: 5}},
		testBookingConfig(), newTestLogger(t))

	_, err := svc.GetQuote(context.Background(), transferRequest())
	if !errors.Is(err, ErrNoPricingRules) {
		t.Fatalf("err = %v, want ErrNoPricingRules", err)
	}
}

func TestFailedVehicleIsOmittedNotFatal(t *testing.T) {
	rules := &fakePricingRuleRepo{rules: []*models.PricingRule{
		{VehicleTypeSlug: "executive_sedan", ServiceType: models.ServiceTypeHourly, IsActive: true},
		{VehicleTypeSlug: "phantom", ServiceType: models.ServiceTypeHourly, IsActive: true},
	}}
	// No vehicle type record exists for "phantom", so its price computation
	// fails while the sedan still prices.
	vehicles := &fakeVehicleTypeRepo{types: map[string]*models.VehicleType{
		"executive_sedan": {Name: "Executive Sedan", HourlyRate: 75, IsActive: true},
	}}

	svc := NewQuoteService(rules, vehicles, newFakeUserRepo(), &fakeMapsProvider{}, testBookingConfig(), newTestLogger(t))

	quote, err := svc.GetQuote(context.Background(), &QuoteRequest{
		ServiceType: models.ServiceTypeHourly,
		Pickup:      models.Location{Address: "Mayfair", Latitude: 51.51, Longitude: -0.15},
		Hours:       2,
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if len(quote.Vehicles) != 1 {
		t.Fatalf("got %d options, want only the sedan", len(quote.Vehicles))
	}
	if quote.Vehicles[0].VehicleTypeSlug != "executive_sedan" {
		t.Fatalf("unexpected option %q", quote.Vehicles[0].VehicleTypeSlug)
	}
}

func TestMinimumFareFloor(t *testing.T) {
	rules := &fakePricingRuleRepo{rules: []*models.PricingRule{
		{
			VehicleTypeSlug: "executive_sedan",
			ServiceType:     models.ServiceTypeTransfer,
			BaseFare:        10,
			PerMileRate:     2,
			MinimumFare:     45,
			IsActive:        true,
		},
	}}
	mapsProvider := &fakeMapsProvider{distance: &maps.DistanceResponse{DistanceMiles: 1, DurationMinutes: 5}}

	svc := NewQuoteService(rules, &fakeVehicleTypeRepo{}, newFakeUserRepo(), mapsProvider, testBookingConfig(), newTestLogger(t))

	quote, err := svc.GetQuote(context.Background(), transferRequest())
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if got := quote.Vehicles[0].FinalPrice; got != 45.00 {
		t.Fatalf("short trip priced %v, want minimum fare 45.00", got)
	}
}

func TestAccountDiscountBeatsRuleDiscount(t *testing.T) {
	rules := &fakePricingRuleRepo{rules: []*models.PricingRule{
		{
			VehicleTypeSlug: "executive_sedan",
			ServiceType:     models.ServiceTypeTransfer,
			BaseFare:        20,
			PerMileRate:     2.5,
			PerMinuteRate:   0.5,
			DiscountPercent: 10,
			IsActive:        true,
		},
	}}
	mapsProvider := &fakeMapsProvider{distance: &maps.DistanceResponse{
		DistanceMiles:   10,
		DurationMinutes: 30,
	}}
	account := &models.User{
		ID:              primitive.NewObjectID(),
		Role:            models.RolePassenger,
		DiscountPercent: 20,
		IsActive:        true,
	}

	svc := NewQuoteService(rules, &fakeVehicleTypeRepo{}, newFakeUserRepo(account), mapsProvider, testBookingConfig(), newTestLogger(t))

	req := transferRequest()
	req.UserID = &account.ID

	quote, err := svc.GetQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}

	// 60.00 regular, and the account's 20% replaces the rule's 10%.
	got := quote.Vehicles[0]
	if got.RegularPrice != 60.00 || got.DiscountAmount != 12.00 || got.FinalPrice != 48.00 {
		t.Fatalf("priced %+v, want the account discount applied", got)
	}

	// An unknown user quotes at the anonymous price instead of failing.
	ghost := primitive.NewObjectID()
	req.UserID = &ghost
	quote, err = svc.GetQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("GetQuote with unknown user: %v", err)
	}
	if got := quote.Vehicles[0].FinalPrice; got != 54.00 {
		t.Fatalf("anonymous fallback price = %v, want 54.00", got)
	}
}

func TestQuoteRequestValidation(t *testing.T) {
	svc := NewQuoteService(&fakePricingRuleRepo{}, &fakeVehicleTypeRepo{}, newFakeUserRepo(), &fakeMapsProvider{},
		testBookingConfig(), newTestLogger(t))

	pickup := models.Location{Address: "Mayfair", Latitude: 51.51, Longitude: -0.15}
	via := models.Location{Address: "Chelsea", Latitude: 51.48, Longitude: -0.17}

	cases := []struct {
		name string
		req  *QuoteRequest
	}{
		{"transfer without destination", &QuoteRequest{
			ServiceType: models.ServiceTypeTransfer,
			Pickup:      pickup,
		}},
		{"pickup without coordinates", &QuoteRequest{
			ServiceType: models.ServiceTypeTransfer,
			Pickup:      models.Location{Address: "somewhere"},
			Destination: &via,
		}},
		{"too many via points", &QuoteRequest{
			ServiceType: models.ServiceTypeTransfer,
			Pickup:      pickup,
			Destination: &via,
			ViaPoints:   []models.Location{via, via, via, via},
		}},
		{"hourly below minimum", &QuoteRequest{
			ServiceType: models.ServiceTypeHourly,
			Pickup:      pickup,
			Hours:       1,
		}},
		{"hourly above maximum", &QuoteRequest{
			ServiceType: models.ServiceTypeHourly,
			Pickup:      pickup,
			Hours:       25,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.GetQuote(context.Background(), tc.req); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
