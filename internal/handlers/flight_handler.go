package handlers

import (
	"net/http"

	"limoride/internal/services"
	"limoride/internal/utils"

	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	flightService *services.FlightService
}

func NewFlightHandler(flightService *services.FlightService) *FlightHandler {
	return &FlightHandler{flightService: flightService}
}

// GetFlight looks up current status for a flight number.
func (h *FlightHandler) GetFlight(c *gin.Context) {
	flightNumber := c.Param("number")
	if flightNumber == "" {
		utils.BadRequestResponse(c, "Flight number is required")
		return
	}

	info, err := h.flightService.Lookup(c.Request.Context(), flightNumber)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadGateway, "FLIGHT_LOOKUP_FAILED", "Unable to look up flight status")
		return
	}

	utils.SuccessResponse(c, "Flight retrieved successfully", info)
}
