package handlers

import (
	"limoride/internal/middleware"
	"limoride/internal/services"
	"limoride/internal/utils"
	"limoride/internal/validators"
	"limoride/pkg/logger"
	"limoride/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverHandler struct {
	bookingService services.BookingService
	hub            *websocket.Hub
	logger         *logger.Logger
}

func NewDriverHandler(bookingService services.BookingService, hub *websocket.Hub, logger *logger.Logger) *DriverHandler {
	return &DriverHandler{
		bookingService: bookingService,
		hub:            hub,
		logger:         logger,
	}
}

// GetBookings lists the driver's assigned bookings.
func (h *DriverHandler) GetBookings(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	bookings, total, err := h.bookingService.GetDriverBookings(c.Request.Context(), driverID, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Bookings retrieved successfully", bookings, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// AcceptBooking confirms an offered booking.
func (h *DriverHandler) AcceptBooking(c *gin.Context) {
	driverID, bookingID, ok := h.driverAndBooking(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.AcceptBooking(c.Request.Context(), driverID, bookingID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking accepted", booking)
}

// DeclineBooking turns an offered booking down and returns it to the pool.
func (h *DriverHandler) DeclineBooking(c *gin.Context) {
	driverID, bookingID, ok := h.driverAndBooking(c)
	if !ok {
		return
	}

	var request validators.DeclineBookingPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	booking, err := h.bookingService.DeclineBooking(c.Request.Context(), driverID, bookingID, request.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking declined", booking)
}

// StartRide marks the ride as underway.
func (h *DriverHandler) StartRide(c *gin.Context) {
	driverID, bookingID, ok := h.driverAndBooking(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.StartRide(c.Request.Context(), driverID, bookingID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride started", booking)
}

// CompleteRide finishes the ride.
func (h *DriverHandler) CompleteRide(c *gin.Context) {
	driverID, bookingID, ok := h.driverAndBooking(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.CompleteRide(c.Request.Context(), driverID, bookingID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride completed", booking)
}

// ServeWS upgrades the connection for live dispatch events.
func (h *DriverHandler) ServeWS(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	role, _ := c.Get("user_role")
	roleStr, _ := role.(string)
	if err := websocket.ServeWS(h.hub, c.Writer, c.Request, driverID, roleStr); err != nil {
		// The upgrader has already written its own response by now.
		h.logger.WithUserID(driverID).WithError(err).Warn("Websocket upgrade failed")
	}
}

func (h *DriverHandler) driverAndBooking(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	return driverID, bookingID, true
}
