package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"limoride/internal/config"
	"limoride/internal/models"
	"limoride/internal/repositories/interfaces"
	"limoride/pkg/logger"
	"limoride/pkg/maps"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuoteRequest carries everything needed to price a trip across all active
// vehicle types. Destination and via points apply to transfers; Hours applies
// to hourly hires. UserID is set for authenticated requests so account-level
// discounts apply; anonymous visitors quote without one.
type QuoteRequest struct {
	ServiceType models.ServiceType
	Pickup      models.Location
	Destination *models.Location
	ViaPoints   []models.Location
	Hours       int
	ScheduledAt time.Time
	UserID      *primitive.ObjectID
}

type QuoteService interface {
	// GetQuote prices the trip for every active vehicle type with a matching
	// pricing rule. Vehicle types whose price computation fails are omitted
	// from the result rather than failing the whole quote.
	GetQuote(ctx context.Context, req *QuoteRequest) (*models.Quote, error)

	// CalculateDistance resolves the driving distance for a transfer route,
	// including any via points.
	CalculateDistance(ctx context.Context, pickup models.Location, destination models.Location, viaPoints []models.Location) (*maps.DistanceResponse, error)
}

type quoteService struct {
	pricingRuleRepo interfaces.PricingRuleRepository
	vehicleTypeRepo interfaces.VehicleTypeRepository
	userRepo        interfaces.UserRepository
	mapsProvider    maps.Provider
	cfg             *config.BookingConfig
	logger          *logger.Logger
}

func NewQuoteService(
	pricingRuleRepo interfaces.PricingRuleRepository,
	vehicleTypeRepo interfaces.VehicleTypeRepository,
	userRepo interfaces.UserRepository,
	mapsProvider maps.Provider,
	cfg *config.BookingConfig,
	logger *logger.Logger,
) QuoteService {
	return &quoteService{
		pricingRuleRepo: pricingRuleRepo,
		vehicleTypeRepo: vehicleTypeRepo,
		userRepo:        userRepo,
		mapsProvider:    mapsProvider,
		cfg:             cfg,
		logger:          logger,
	}
}

func (s *quoteService) GetQuote(ctx context.Context, req *QuoteRequest) (*models.Quote, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	rules, err := s.pricingRuleRepo.GetActiveByServiceType(ctx, req.ServiceType)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, ErrNoPricingRules
	}

	quote := &models.Quote{
		ServiceType: req.ServiceType,
		Pickup:      req.Pickup,
		Destination: req.Destination,
		ViaPoints:   req.ViaPoints,
		Hours:       req.Hours,
		ScheduledAt: req.ScheduledAt,
		GeneratedAt: time.Now().UTC(),
	}

	// One distance lookup per quote, shared by every vehicle type.
	var distance *maps.DistanceResponse
	if req.ServiceType == models.ServiceTypeTransfer {
		distance, err = s.CalculateDistance(ctx, req.Pickup, *req.Destination, req.ViaPoints)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate route distance: %w", err)
		}
		quote.DistanceMiles = distance.DistanceMiles
		quote.DistanceKM = distance.DistanceKM
		quote.DurationMinutes = distance.DurationMinutes
	}

	// An account-level discount replaces a rule's discount when it is
	// larger. A failed lookup degrades to the anonymous price.
	var userDiscount float64
	if req.UserID != nil {
		user, err := s.userRepo.GetByID(ctx, *req.UserID)
		if err != nil {
			s.logger.WithUserID(*req.UserID).WithError(err).
				Warn("Quoting without account discount")
		} else {
			userDiscount = user.DiscountPercent
		}
	}

	// Price every rule concurrently. A failed computation drops that vehicle
	// type from the quote; the remaining options still go out.
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		options []models.VehicleQuote
	)
	for _, rule := range rules {
		wg.Add(1)
		go func(rule *models.PricingRule) {
			defer wg.Done()

			option, err := s.priceVehicle(ctx, rule, distance, req.Hours, userDiscount)
			if err != nil {
				s.logger.WithVehicleType(rule.VehicleTypeSlug).WithError(err).
					Warn("Skipping vehicle type in quote")
				return
			}

			mu.Lock()
			options = append(options, *option)
			mu.Unlock()
		}(rule)
	}
	wg.Wait()

	sort.Slice(options, func(i, j int) bool {
		return options[i].FinalPrice < options[j].FinalPrice
	})
	quote.Vehicles = options

	s.logger.WithFields(map[string]interface{}{
		"service_type":  req.ServiceType,
		"vehicle_count": len(options),
		"rule_count":    len(rules),
	}).Info("Quote generated")

	return quote, nil
}

func (s *quoteService) CalculateDistance(ctx context.Context, pickup models.Location, destination models.Location, viaPoints []models.Location) (*maps.DistanceResponse, error) {
	request := &maps.DistanceRequest{
		Origin:      maps.Location{Latitude: pickup.Latitude, Longitude: pickup.Longitude},
		Destination: maps.Location{Latitude: destination.Latitude, Longitude: destination.Longitude},
	}
	for _, via := range viaPoints {
		request.Waypoints = append(request.Waypoints, maps.Location{
			Latitude:  via.Latitude,
			Longitude: via.Longitude,
		})
	}
	return s.mapsProvider.CalculateDistance(ctx, request)
}

func (s *quoteService) validateRequest(req *QuoteRequest) error {
	if !req.Pickup.HasCoordinates() {
		return fmt.Errorf("pickup location has no coordinates")
	}

	switch req.ServiceType {
	case models.ServiceTypeTransfer:
		if req.Destination == nil || !req.Destination.HasCoordinates() {
			return fmt.Errorf("transfer quote requires a destination with coordinates")
		}
		if len(req.ViaPoints) > s.cfg.MaxViaPoints {
			return fmt.Errorf("at most %d via points are allowed", s.cfg.MaxViaPoints)
		}
		for _, via := range req.ViaPoints {
			if !via.HasCoordinates() {
				return fmt.Errorf("via point %q has no coordinates", via.Address)
			}
		}
	case models.ServiceTypeHourly:
		if req.Hours < s.cfg.MinHourlyHours || req.Hours > s.cfg.MaxHourlyHours {
			return fmt.Errorf("hourly hires must be between %d and %d hours", s.cfg.MinHourlyHours, s.cfg.MaxHourlyHours)
		}
	default:
		return fmt.Errorf("unknown service type %q", req.ServiceType)
	}
	return nil
}

// priceVehicle computes one vehicle option. Hourly pricing needs the vehicle
// type record for its hourly rate, so a missing or inactive type fails the
// option.
func (s *quoteService) priceVehicle(ctx context.Context, rule *models.PricingRule, distance *maps.DistanceResponse, hours int, userDiscount float64) (*models.VehicleQuote, error) {
	var regular decimal.Decimal

	switch rule.ServiceType {
	case models.ServiceTypeTransfer:
		if distance == nil {
			return nil, fmt.Errorf("no distance available for transfer pricing")
		}
		regular = decimal.NewFromFloat(rule.BaseFare).
			Add(decimal.NewFromFloat(distance.DistanceMiles).Mul(decimal.NewFromFloat(rule.PerMileRate))).
			Add(decimal.NewFromInt(int64(distance.DurationMinutes)).Mul(decimal.NewFromFloat(rule.PerMinuteRate)))

	case models.ServiceTypeHourly:
		vehicleType, err := s.vehicleTypeRepo.GetBySlug(ctx, rule.VehicleTypeSlug)
		if err != nil {
			return nil, fmt.Errorf("failed to load vehicle type: %w", err)
		}
		if !vehicleType.IsActive {
			return nil, fmt.Errorf("vehicle type is inactive")
		}
		if vehicleType.HourlyRate <= 0 {
			return nil, fmt.Errorf("vehicle type has no hourly rate")
		}
		regular = decimal.NewFromFloat(vehicleType.HourlyRate).Mul(decimal.NewFromInt(int64(hours)))

	default:
		return nil, fmt.Errorf("unknown service type %q", rule.ServiceType)
	}

	if rule.SurgeMultiplier > 0 {
		regular = regular.Mul(decimal.NewFromFloat(rule.SurgeMultiplier))
	}

	minimum := decimal.NewFromFloat(rule.MinimumFare)
	if regular.LessThan(minimum) {
		regular = minimum
	}
	regular = regular.Round(2)

	discountPercent := rule.DiscountPercent
	if userDiscount > discountPercent {
		discountPercent = userDiscount
	}
	discount := decimal.Zero
	if discountPercent > 0 {
		discount = regular.
			Mul(decimal.NewFromFloat(discountPercent)).
			Div(decimal.NewFromInt(100)).
			Round(2)
	}
	final := regular.Sub(discount)

	regularF, _ := regular.Float64()
	discountF, _ := discount.Float64()
	finalF, _ := final.Float64()

	return &models.VehicleQuote{
		VehicleTypeSlug: rule.VehicleTypeSlug,
		RegularPrice:    regularF,
		DiscountAmount:  discountF,
		FinalPrice:      finalF,
	}, nil
}
