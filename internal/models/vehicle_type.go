package models

import (
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleType is admin-managed reference data describing a vehicle class
// offered for booking. Pricing rules are keyed by the type's slug.
type VehicleType struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name              string             `json:"name" bson:"name" validate:"required"`
	DisplayName       string             `json:"display_name" bson:"display_name" validate:"required"`
	Description       string             `json:"description" bson:"description"`
	Image             string             `json:"image" bson:"image"`
	PassengerCapacity int                `json:"passenger_capacity" bson:"passenger_capacity" validate:"required,min=1"`
	LuggageCapacity   int                `json:"luggage_capacity" bson:"luggage_capacity" validate:"min=0"`
	HourlyRate        float64            `json:"hourly_rate" bson:"hourly_rate" validate:"min=0"`
	IsActive          bool               `json:"is_active" bson:"is_active"`
	SortOrder         int                `json:"sort_order" bson:"sort_order"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

// Slug returns the pricing key for the type: name lower-cased, spaces and
// hyphens collapsed to underscores, every other non-alphanumeric stripped.
func (v *VehicleType) Slug() string {
	return SlugifyVehicleName(v.Name)
}

func SlugifyVehicleName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	// collapse runs of underscores left by consecutive separators
	slug := b.String()
	for strings.Contains(slug, "__") {
		slug = strings.ReplaceAll(slug, "__", "_")
	}
	return strings.Trim(slug, "_")
}
