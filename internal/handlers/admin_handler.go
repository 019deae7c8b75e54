package handlers

import (
	"limoride/internal/models"
	"limoride/internal/repositories/interfaces"
	"limoride/internal/services"
	"limoride/internal/utils"
	"limoride/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler covers the dispatcher and admin surface: fleet reference data,
// pricing rules, the assignable pool, and ride credit grants.
type AdminHandler struct {
	bookingService  services.BookingService
	vehicleTypeRepo interfaces.VehicleTypeRepository
	pricingRuleRepo interfaces.PricingRuleRepository
	creditRepo      interfaces.RideCreditRepository
	userRepo        interfaces.UserRepository
}

func NewAdminHandler(
	bookingService services.BookingService,
	vehicleTypeRepo interfaces.VehicleTypeRepository,
	pricingRuleRepo interfaces.PricingRuleRepository,
	creditRepo interfaces.RideCreditRepository,
	userRepo interfaces.UserRepository,
) *AdminHandler {
	return &AdminHandler{
		bookingService:  bookingService,
		vehicleTypeRepo: vehicleTypeRepo,
		pricingRuleRepo: pricingRuleRepo,
		creditRepo:      creditRepo,
		userRepo:        userRepo,
	}
}

// --- dispatch ---

// GetAssignablePool lists pending bookings without a driver.
func (h *AdminHandler) GetAssignablePool(c *gin.Context) {
	pool, err := h.bookingService.GetAssignablePool(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Assignable bookings retrieved", pool)
}

// AssignDriver offers a pending booking to a driver.
func (h *AdminHandler) AssignDriver(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	var request validators.AssignDriverPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	driverID, err := primitive.ObjectIDFromHex(request.DriverID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid driver ID")
		return
	}

	booking, err := h.bookingService.AssignDriver(c.Request.Context(), bookingID, driverID, request.DriverPayment)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver assigned", booking)
}

// GetDrivers lists all driver accounts.
func (h *AdminHandler) GetDrivers(c *gin.Context) {
	drivers, err := h.userRepo.GetDrivers(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Drivers retrieved", drivers)
}

// --- vehicle types ---

// GetVehicleTypes lists bookable vehicle types with their slugs.
func (h *AdminHandler) GetVehicleTypes(c *gin.Context) {
	vehicleTypes, err := h.vehicleTypeRepo.GetActive(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	type vehicleTypeView struct {
		*models.VehicleType
		Slug string `json:"slug"`
	}
	views := make([]vehicleTypeView, 0, len(vehicleTypes))
	for _, vt := range vehicleTypes {
		views = append(views, vehicleTypeView{VehicleType: vt, Slug: vt.Slug()})
	}

	utils.SuccessResponse(c, "Vehicle types retrieved", views)
}

func (h *AdminHandler) CreateVehicleType(c *gin.Context) {
	var request validators.VehicleTypePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateVehicleType(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	vehicleType := &models.VehicleType{
		Name:              request.Name,
		DisplayName:       request.DisplayName,
		Description:       request.Description,
		Image:             request.Image,
		PassengerCapacity: request.PassengerCapacity,
		LuggageCapacity:   request.LuggageCapacity,
		HourlyRate:        request.HourlyRate,
		SortOrder:         request.SortOrder,
		IsActive:          true,
	}
	if request.IsActive != nil {
		vehicleType.IsActive = *request.IsActive
	}

	if err := h.vehicleTypeRepo.Create(c.Request.Context(), vehicleType); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Vehicle type created", vehicleType)
}

func (h *AdminHandler) UpdateVehicleType(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle type ID")
		return
	}

	var request validators.VehicleTypePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateVehicleType(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	updates := map[string]interface{}{
		"name":               request.Name,
		"display_name":       request.DisplayName,
		"description":        request.Description,
		"image":              request.Image,
		"passenger_capacity": request.PassengerCapacity,
		"luggage_capacity":   request.LuggageCapacity,
		"hourly_rate":        request.HourlyRate,
		"sort_order":         request.SortOrder,
	}
	if request.IsActive != nil {
		updates["is_active"] = *request.IsActive
	}

	if err := h.vehicleTypeRepo.Update(c.Request.Context(), id, updates); err != nil {
		handleServiceError(c, err)
		return
	}

	vehicleType, err := h.vehicleTypeRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Vehicle type updated", vehicleType)
}

func (h *AdminHandler) DeleteVehicleType(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle type ID")
		return
	}

	if err := h.vehicleTypeRepo.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// --- pricing rules ---

func (h *AdminHandler) CreatePricingRule(c *gin.Context) {
	var request validators.PricingRulePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidatePricingRule(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	serviceType, _ := models.ParseServiceType(request.ServiceType)
	rule := &models.PricingRule{
		VehicleTypeSlug: request.VehicleTypeSlug,
		ServiceType:     serviceType,
		BaseFare:        request.BaseFare,
		PerMileRate:     request.PerMileRate,
		PerMinuteRate:   request.PerMinuteRate,
		MinimumFare:     request.MinimumFare,
		DiscountPercent: request.DiscountPercent,
		SurgeMultiplier: request.SurgeMultiplier,
		IsActive:        true,
	}
	if request.IsActive != nil {
		rule.IsActive = *request.IsActive
	}

	if err := h.pricingRuleRepo.Create(c.Request.Context(), rule); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Pricing rule created", rule)
}

func (h *AdminHandler) UpdatePricingRule(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid pricing rule ID")
		return
	}

	var request validators.PricingRulePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidatePricingRule(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	updates := map[string]interface{}{
		"vehicle_type_slug": request.VehicleTypeSlug,
		"service_type":      request.ServiceType,
		"base_fare":         request.BaseFare,
		"per_mile_rate":     request.PerMileRate,
		"per_minute_rate":   request.PerMinuteRate,
		"minimum_fare":      request.MinimumFare,
		"discount_percent":  request.DiscountPercent,
		"surge_multiplier":  request.SurgeMultiplier,
	}
	if request.IsActive != nil {
		updates["is_active"] = *request.IsActive
	}

	if err := h.pricingRuleRepo.Update(c.Request.Context(), id, updates); err != nil {
		handleServiceError(c, err)
		return
	}

	rule, err := h.pricingRuleRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Pricing rule updated", rule)
}

func (h *AdminHandler) DeletePricingRule(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid pricing rule ID")
		return
	}

	if err := h.pricingRuleRepo.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// --- ride credit ---

// GrantCredit tops up a user's ride credit balance.
func (h *AdminHandler) GrantCredit(c *gin.Context) {
	var request validators.GrantCreditPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	userID, err := primitive.ObjectIDFromHex(request.UserID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}
	if _, err := h.userRepo.GetByID(c.Request.Context(), userID); err != nil {
		handleServiceError(c, err)
		return
	}

	if err := h.creditRepo.GrantCredit(c.Request.Context(), userID, request.Amount, request.Note); err != nil {
		handleServiceError(c, err)
		return
	}

	balance, err := h.creditRepo.GetBalance(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Credit granted", gin.H{
		"user_id": userID.Hex(),
		"balance": balance,
	})
}

// GetCreditTransactions lists a user's credit ledger.
func (h *AdminHandler) GetCreditTransactions(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	transactions, err := h.creditRepo.GetTransactions(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Credit transactions retrieved", transactions)
}
