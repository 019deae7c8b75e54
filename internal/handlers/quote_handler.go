package handlers

import (
	"limoride/internal/middleware"
	"limoride/internal/models"
	"limoride/internal/services"
	"limoride/internal/utils"
	"limoride/internal/validators"

	"github.com/gin-gonic/gin"
)

type QuoteHandler struct {
	quoteService services.QuoteService
}

func NewQuoteHandler(quoteService services.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// GetQuote prices a trip across all bookable vehicle types.
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	var request validators.QuoteRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateQuoteRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	serviceType, _ := models.ParseServiceType(request.ServiceType)
	req := &services.QuoteRequest{
		ServiceType: serviceType,
		Pickup:      toLocation(request.Pickup),
		ViaPoints:   toLocations(request.ViaPoints),
		Hours:       request.Hours,
		ScheduledAt: request.ScheduledAt,
	}
	if request.Destination != nil {
		destination := toLocation(*request.Destination)
		req.Destination = &destination
	}
	if userID, ok := middleware.GetUserID(c); ok {
		req.UserID = &userID
	}

	quote, err := h.quoteService.GetQuote(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Quote generated successfully", quote)
}

// GetDistance resolves the driving distance for a route without pricing it.
func (h *QuoteHandler) GetDistance(c *gin.Context) {
	var request validators.DistanceRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateDistanceRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	distance, err := h.quoteService.CalculateDistance(
		c.Request.Context(),
		toLocation(request.Pickup),
		toLocation(request.Destination),
		toLocations(request.ViaPoints),
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Distance calculated successfully", distance)
}
