package services

import (
	"context"
	"fmt"

	"limoride/internal/config"
	"limoride/internal/models"
	"limoride/pkg/flight"
	"limoride/pkg/logger"
)

// FlightService wraps the flight status client with the configured lookup
// timeout. Airport pickups snapshot the result onto the booking; a lookup
// failure does not block the booking, the flow just stores the bare number.
type FlightService struct {
	client *flight.Client
	cfg    *config.FlightConfig
	logger *logger.Logger
}

func NewFlightService(client *flight.Client, cfg *config.FlightConfig, logger *logger.Logger) *FlightService {
	return &FlightService{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *FlightService) Lookup(ctx context.Context, flightNumber string) (*models.FlightInfo, error) {
	if flightNumber == "" {
		return nil, fmt.Errorf("flight number is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)
	defer cancel()

	result, err := s.client.Lookup(ctx, flightNumber)
	if err != nil {
		s.logger.WithField("flight_number", flightNumber).WithError(err).Warn("Flight lookup failed")
		return nil, err
	}

	return &models.FlightInfo{
		FlightNumber:  result.FlightNumber,
		Airline:       result.Airline,
		Origin:        result.Origin,
		Destination:   result.Destination,
		ScheduledTime: result.ScheduledTime,
		Status:        result.Status,
	}, nil
}
