package validators

type VehicleTypePayload struct {
	Name              string  `json:"name" validate:"required,min=2,max=100"`
	DisplayName       string  `json:"display_name" validate:"required,min=2,max=100"`
	Description       string  `json:"description" validate:"omitempty,max=500"`
	Image             string  `json:"image" validate:"omitempty,url"`
	PassengerCapacity int     `json:"passenger_capacity" validate:"required,min=1,max=16"`
	LuggageCapacity   int     `json:"luggage_capacity" validate:"min=0,max=20"`
	HourlyRate        float64 `json:"hourly_rate" validate:"min=0"`
	SortOrder         int     `json:"sort_order" validate:"min=0"`
	IsActive          *bool   `json:"is_active"`
}

type PricingRulePayload struct {
	VehicleTypeSlug string  `json:"vehicle_type_slug" validate:"required,vehicle_slug"`
	ServiceType     string  `json:"service_type" validate:"required,oneof=transfer hourly"`
	BaseFare        float64 `json:"base_fare" validate:"min=0"`
	PerMileRate     float64 `json:"per_mile_rate" validate:"min=0"`
	PerMinuteRate   float64 `json:"per_minute_rate" validate:"min=0"`
	MinimumFare     float64 `json:"minimum_fare" validate:"min=0"`
	DiscountPercent float64 `json:"discount_percent" validate:"min=0,max=100"`
	SurgeMultiplier float64 `json:"surge_multiplier" validate:"min=0,max=10"`
	IsActive        *bool   `json:"is_active"`
}

type GrantCreditPayload struct {
	UserID string  `json:"user_id" validate:"required,object_id"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Note   string  `json:"note" validate:"omitempty,max=255"`
}

func ValidateVehicleType(req *VehicleTypePayload) ValidationErrors {
	return ValidateStruct(req)
}

func ValidatePricingRule(req *PricingRulePayload) ValidationErrors {
	return ValidateStruct(req)
}
