package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ServiceType string

const (
	ServiceTypeTransfer ServiceType = "transfer"
	ServiceTypeHourly   ServiceType = "hourly"
)

func ParseServiceType(s string) (ServiceType, bool) {
	switch ServiceType(s) {
	case ServiceTypeTransfer, ServiceTypeHourly:
		return ServiceType(s), true
	default:
		return "", false
	}
}

// PricingRule holds the fare parameters for one vehicle-type slug and service
// type. Rules are read-only at booking time; admins manage them separately.
type PricingRule struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VehicleTypeSlug string             `json:"vehicle_type_slug" bson:"vehicle_type_slug" validate:"required"`
	ServiceType     ServiceType        `json:"service_type" bson:"service_type" validate:"required,oneof=transfer hourly"`
	BaseFare        float64            `json:"base_fare" bson:"base_fare" validate:"min=0"`
	PerMileRate     float64            `json:"per_mile_rate" bson:"per_mile_rate" validate:"min=0"`
	PerMinuteRate   float64            `json:"per_minute_rate" bson:"per_minute_rate" validate:"min=0"`
	MinimumFare     float64            `json:"minimum_fare" bson:"minimum_fare" validate:"min=0"`
	DiscountPercent float64            `json:"discount_percent" bson:"discount_percent" validate:"min=0,max=100"`
	SurgeMultiplier float64            `json:"surge_multiplier" bson:"surge_multiplier" validate:"min=0"`
	IsActive        bool               `json:"is_active" bson:"is_active"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}
