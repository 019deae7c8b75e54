package handlers

import (
	"limoride/internal/middleware"
	"limoride/internal/models"
	"limoride/internal/repositories/interfaces"
	"limoride/internal/services"
	"limoride/internal/utils"
	"limoride/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingHandler struct {
	bookingService services.BookingService
	userRepo       interfaces.UserRepository
}

func NewBookingHandler(bookingService services.BookingService, userRepo interfaces.UserRepository) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		userRepo:       userRepo,
	}
}

// GetBookings lists the authenticated user's bookings.
func (h *BookingHandler) GetBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	bookings, total, err := h.bookingService.GetUserBookings(c.Request.Context(), userID, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Bookings retrieved successfully", bookings, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// GetBooking returns one booking, visible to its passenger, its driver, or
// staff.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		utils.UnauthorizedResponse(c)
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking retrieved successfully", booking)
}

// CancelBooking cancels a booking on behalf of its passenger or staff.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	var request validators.CancelBookingPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		utils.UnauthorizedResponse(c)
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), actor, bookingID, request.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking cancelled successfully", booking)
}

func (h *BookingHandler) actor(c *gin.Context) (*models.User, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, services.ErrNotAuthorized
	}
	return h.userRepo.GetByID(c.Request.Context(), userID)
}
