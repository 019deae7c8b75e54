package utils

import "time"

// Application Constants
const (
	AppName    = "LimoRide"
	AppVersion = "1.0.0"

	DefaultCurrency = "USD"
	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Booking Constants
	MaxViaPoints    = 3
	MinHourlyHours  = 2
	MaxHourlyHours  = 24
	MaxRideDistance = 500.0 // miles

	// Quote Constants
	QuoteTTL        = 15 * time.Minute
	DistanceTimeout = 10 * time.Second
	PriceTimeout    = 10 * time.Second

	// Flow Constants
	FlowStateTTL = 24 * time.Hour

	// Flight lookup
	FlightLookupTimeout = 30 * time.Second

	// Driver Constants
	DefaultDriverPaymentShare = 0.75

	// Rate Limiting
	DefaultRateLimit  = 100
	QuoteRateLimit    = 20
	RateLimitWindow   = time.Minute
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidCredentials = "invalid credentials"
	ErrUserNotFound       = "user not found"
	ErrInvalidToken       = "invalid token"
	ErrInvalidInput       = "invalid input"
	ErrInternalServer     = "internal server error"
	ErrUnauthorized       = "unauthorized"
	ErrForbidden          = "forbidden"
	ErrNotFound           = "not found"
	ErrValidationFailed   = "validation failed"
	ErrPaymentFailed      = "payment failed"
	ErrBookingNotFound    = "booking not found"
	ErrRateLimited        = "too many requests"
)

// Cache Keys
const (
	CacheKeyFlowState   = "flow:state:"
	CacheKeyRateLimit   = "ratelimit:"
	CacheKeyVehicleList = "vehicle_types:active"
)
