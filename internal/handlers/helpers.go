package handlers

import (
	"errors"
	"net/http"

	"limoride/internal/flow"
	"limoride/internal/models"
	"limoride/internal/repositories/interfaces"
	"limoride/internal/services"
	"limoride/internal/utils"
	"limoride/internal/validators"

	"github.com/gin-gonic/gin"
)

// handleServiceError maps domain errors onto HTTP responses so every handler
// reports the same way.
func handleServiceError(c *gin.Context, err error) {
	var transitionErr *services.StateTransitionError
	var paymentErr *services.PaymentError

	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		utils.NotFoundResponse(c, "Resource")
	case errors.Is(err, services.ErrNotAuthorized):
		utils.ForbiddenResponse(c)
	case errors.As(err, &transitionErr):
		utils.ErrorResponse(c, http.StatusConflict, "INVALID_TRANSITION", transitionErr.Error())
	case errors.As(err, &paymentErr):
		utils.ErrorResponse(c, http.StatusPaymentRequired, "PAYMENT_FAILED", paymentErr.Error())
	case errors.Is(err, services.ErrNoPricingRules):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "PRICING_NOT_CONFIGURED", err.Error())
	case errors.Is(err, services.ErrVehicleNotQuoted):
		utils.BadRequestResponse(c, err.Error())
	case errors.Is(err, services.ErrPaymentMethodNotAllowed):
		utils.ErrorResponse(c, http.StatusForbidden, "PAYMENT_METHOD_NOT_ALLOWED", err.Error())
	case errors.Is(err, flow.ErrStepOutOfOrder):
		utils.ErrorResponse(c, http.StatusConflict, "STEP_OUT_OF_ORDER", err.Error())
	case errors.Is(err, flow.ErrQuoteExpired):
		utils.ErrorResponse(c, http.StatusGone, "QUOTE_EXPIRED", err.Error())
	case errors.Is(err, flow.ErrLoginRequired):
		utils.UnauthorizedResponse(c)
	case errors.Is(err, flow.ErrSessionOwned):
		utils.ErrorResponse(c, http.StatusForbidden, "SESSION_OWNED", err.Error())
	case errors.Is(err, flow.ErrSessionNotFound):
		utils.NotFoundResponse(c, "Booking session")
	default:
		utils.InternalServerErrorResponse(c)
	}
}

func validationDetails(errs validators.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, e := range errs {
		details[e.Field] = e.Message
	}
	return details
}

func toLocation(req validators.LocationRequest) models.Location {
	return models.Location{
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		PlaceID:   req.PlaceID,
	}
}

func toLocations(reqs []validators.LocationRequest) []models.Location {
	if len(reqs) == 0 {
		return nil
	}
	out := make([]models.Location, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, toLocation(r))
	}
	return out
}
