package validators

import (
	"time"

	"limoride/internal/utils"
)

type LocationRequest struct {
	Address   string  `json:"address" validate:"required,min=3,max=255"`
	Latitude  float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"required,min=-180,max=180"`
	PlaceID   string  `json:"place_id" validate:"omitempty,max=255"`
}

type QuoteRequestPayload struct {
	ServiceType string            `json:"service_type" validate:"required,oneof=transfer hourly"`
	Pickup      LocationRequest   `json:"pickup" validate:"required"`
	Destination *LocationRequest  `json:"destination" validate:"omitempty"`
	ViaPoints   []LocationRequest `json:"via_points" validate:"omitempty,max=3,dive"`
	Hours       int               `json:"hours" validate:"omitempty,min=2,max=24"`
	ScheduledAt time.Time         `json:"scheduled_at" validate:"required,future_date"`
}

type DistanceRequestPayload struct {
	Pickup      LocationRequest   `json:"pickup" validate:"required"`
	Destination LocationRequest   `json:"destination" validate:"required"`
	ViaPoints   []LocationRequest `json:"via_points" validate:"omitempty,max=3,dive"`
}

func ValidateQuoteRequest(req *QuoteRequestPayload) ValidationErrors {
	errors := ValidateStruct(req)

	switch req.ServiceType {
	case "transfer":
		if req.Destination == nil {
			errors = append(errors, ValidationError{
				Field:   "destination",
				Tag:     "required",
				Message: "Transfers require a destination",
			})
		}
	case "hourly":
		if req.Hours < utils.MinHourlyHours || req.Hours > utils.MaxHourlyHours {
			errors = append(errors, ValidationError{
				Field:   "hours",
				Tag:     "range",
				Message: "Hourly hires must be between 2 and 24 hours",
			})
		}
	}

	return errors
}

func ValidateDistanceRequest(req *DistanceRequestPayload) ValidationErrors {
	return ValidateStruct(req)
}
