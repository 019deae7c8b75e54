package models

import "time"

// VehicleQuote is one priced vehicle option inside a quote. A zero
// DiscountAmount means the option renders as a plain price; a non-zero one
// carries the regular price alongside so the client can show both.
type VehicleQuote struct {
	VehicleTypeSlug string  `json:"vehicle_type_slug"`
	RegularPrice    float64 `json:"regular_price"`
	DiscountAmount  float64 `json:"discount_amount"`
	FinalPrice      float64 `json:"final_price"`
}

// Quote is ephemeral: it lives in the booking flow state until a booking is
// created or the flow is abandoned, and is never persisted on its own.
type Quote struct {
	ServiceType     ServiceType    `json:"service_type"`
	Pickup          Location       `json:"pickup"`
	Destination     *Location      `json:"destination,omitempty"`
	ViaPoints       []Location     `json:"via_points,omitempty"`
	DistanceMiles   float64        `json:"distance_miles,omitempty"`
	DistanceKM      float64        `json:"distance_km,omitempty"`
	DurationMinutes int            `json:"duration_minutes,omitempty"`
	Hours           int            `json:"hours,omitempty"`
	ScheduledAt     time.Time      `json:"scheduled_at"`
	Vehicles        []VehicleQuote `json:"vehicles"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// Option returns the priced option for a slug, if the quote contains it.
func (q *Quote) Option(slug string) (VehicleQuote, bool) {
	for _, v := range q.Vehicles {
		if v.VehicleTypeSlug == slug {
			return v, true
		}
	}
	return VehicleQuote{}, false
}
