package routes

import (
	"limoride/internal/handlers"
	"limoride/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupDriverRoutes sets up the driver app surface: assigned trips, the
// accept/decline/start/complete lifecycle, and the dispatch websocket.
func SetupDriverRoutes(r *gin.RouterGroup, driverHandler *handlers.DriverHandler, jwtSecret string) {
	driver := r.Group("/driver")
	driver.Use(middleware.AuthRequired(jwtSecret), middleware.DriverRequired())
	{
		driver.GET("/bookings", driverHandler.GetBookings)
		driver.PUT("/bookings/:id/accept", driverHandler.AcceptBooking)
		driver.PUT("/bookings/:id/decline", driverHandler.DeclineBooking)
		driver.PUT("/bookings/:id/start", driverHandler.StartRide)
		driver.PUT("/bookings/:id/complete", driverHandler.CompleteRide)
		driver.GET("/ws", driverHandler.ServeWS)
	}
}
