package routes

import (
	"limoride/internal/handlers"
	"limoride/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes sets up the passenger-facing booking routes.
func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler, jwtSecret string) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthRequired(jwtSecret))
	{
		bookings.GET("", bookingHandler.GetBookings)
		bookings.GET("/:id", bookingHandler.GetBooking)
		bookings.PUT("/:id/cancel", bookingHandler.CancelBooking)
	}
}
