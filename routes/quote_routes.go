package routes

import (
	"limoride/internal/handlers"
	"limoride/internal/middleware"
	"limoride/internal/utils"

	"github.com/gin-gonic/gin"
)

// SetupQuoteRoutes sets up the public quoting and booking flow routes. None
// of them require authentication until the final confirm step; the flow is
// built to let a visitor price a trip before signing in.
func SetupQuoteRoutes(
	r *gin.RouterGroup,
	quoteHandler *handlers.QuoteHandler,
	flowHandler *handlers.FlowHandler,
	flightHandler *handlers.FlightHandler,
	adminHandler *handlers.AdminHandler,
	limiter middleware.RateLimiter,
	jwtSecret string,
) {
	quotes := r.Group("/quotes")
	quotes.Use(
		middleware.RateLimitMiddleware(limiter, utils.QuoteRateLimit, "quotes"),
		middleware.AuthOptional(jwtSecret),
	)
	{
		quotes.POST("", quoteHandler.GetQuote)
		quotes.POST("/distance", quoteHandler.GetDistance)
	}

	r.GET("/vehicle-types", adminHandler.GetVehicleTypes)
	r.GET("/flights/:number", flightHandler.GetFlight)

	// Quoting is the only anonymous step; everything after it needs an
	// account, with the session surviving the login in between.
	bookingFlow := r.Group("/flow")
	bookingFlow.Use(middleware.RateLimitMiddleware(limiter, utils.QuoteRateLimit, "flow"))
	{
		bookingFlow.GET("", flowHandler.GetState)
		bookingFlow.DELETE("", flowHandler.Reset)
		bookingFlow.POST("/quote", middleware.AuthOptional(jwtSecret), flowHandler.StartQuote)

		authed := bookingFlow.Group("")
		authed.Use(middleware.AuthRequired(jwtSecret))
		{
			authed.POST("/vehicle", flowHandler.SelectVehicle)
			authed.POST("/details", flowHandler.SetDetails)
			authed.POST("/attach", flowHandler.Attach)
			authed.POST("/confirm", flowHandler.Confirm)
		}
	}
}
