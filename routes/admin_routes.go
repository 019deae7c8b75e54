package routes

import (
	"limoride/internal/handlers"
	"limoride/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes sets up the dispatcher and admin surface. Dispatchers get
// the pool and assignment; fleet data, pricing, and credit grants are admin
// only.
func SetupAdminRoutes(r *gin.RouterGroup, adminHandler *handlers.AdminHandler, jwtSecret string) {
	dispatch := r.Group("/dispatch")
	dispatch.Use(middleware.AuthRequired(jwtSecret), middleware.StaffRequired())
	{
		dispatch.GET("/pool", adminHandler.GetAssignablePool)
		dispatch.PUT("/bookings/:id/assign", adminHandler.AssignDriver)
		dispatch.GET("/drivers", adminHandler.GetDrivers)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("/vehicle-types", adminHandler.CreateVehicleType)
		admin.PUT("/vehicle-types/:id", adminHandler.UpdateVehicleType)
		admin.DELETE("/vehicle-types/:id", adminHandler.DeleteVehicleType)

		admin.POST("/pricing-rules", adminHandler.CreatePricingRule)
		admin.PUT("/pricing-rules/:id", adminHandler.UpdatePricingRule)
		admin.DELETE("/pricing-rules/:id", adminHandler.DeletePricingRule)

		admin.POST("/credits/grant", adminHandler.GrantCredit)
		admin.GET("/credits/:id/transactions", adminHandler.GetCreditTransactions)
	}
}
