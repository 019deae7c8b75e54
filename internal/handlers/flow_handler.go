package handlers

import (
	"limoride/internal/flow"
	"limoride/internal/middleware"
	"limoride/internal/models"
	"limoride/internal/services"
	"limoride/internal/utils"
	"limoride/internal/validators"

	"github.com/gin-gonic/gin"
)

const sessionHeader = "X-Session-ID"

// FlowHandler drives the multi-step booking flow. The client carries a
// session id between requests; everything else lives server-side so the flow
// survives reloads and the login redirect.
type FlowHandler struct {
	store          *flow.Store
	quoteService   services.QuoteService
	bookingService services.BookingService
	flightService  *services.FlightService
}

func NewFlowHandler(
	store *flow.Store,
	quoteService services.QuoteService,
	bookingService services.BookingService,
	flightService *services.FlightService,
) *FlowHandler {
	return &FlowHandler{
		store:          store,
		quoteService:   quoteService,
		bookingService: bookingService,
		flightService:  flightService,
	}
}

type flowResponse struct {
	SessionID string      `json:"session_id"`
	Step      string      `json:"step"`
	State     *flow.State `json:"state"`
}

func newFlowResponse(state *flow.State) flowResponse {
	return flowResponse{
		SessionID: state.SessionID,
		Step:      state.Step.String(),
		State:     state,
	}
}

// GetState returns the current flow snapshot for the session.
func (h *FlowHandler) GetState(c *gin.Context) {
	state, err := h.store.Load(c.Request.Context(), h.sessionID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Booking session retrieved", newFlowResponse(state))
}

// Reset discards the session's flow state. Missing state is not an error;
// the client just starts fresh either way.
func (h *FlowHandler) Reset(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), h.sessionID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Booking session discarded", nil)
}

// StartQuote generates a quote and (re)starts the flow with it. Quoting again
// from a later step resets the selection and details.
func (h *FlowHandler) StartQuote(c *gin.Context) {
	var request validators.QuoteRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateQuoteRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	state, err := h.store.LoadOrNew(c.Request.Context(), h.sessionID(c))
	if err != nil {
		handleServiceError(c, err)
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

	state.SetQuote(quote)
	if userID, ok := middleware.GetUserID(c); ok {
		if err := state.AttachUser(userID); err != nil {
			handleServiceError(c, err)
			return
		}
	}
	if err := h.store.Save(c.Request.Context(), state); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Quote generated successfully", newFlowResponse(state))
}

// SelectVehicle records the chosen vehicle type for the quoted trip.
func (h *FlowHandler) SelectVehicle(c *gin.Context) {
	var request validators.SelectVehiclePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	state, err := h.store.Load(c.Request.Context(), h.sessionID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if err := h.attachCaller(c, state); err != nil {
		handleServiceError(c, err)
		return
	}
	if err := state.SelectVehicle(request.VehicleTypeSlug); err != nil {
		handleServiceError(c, err)
		return
	}
	if err := h.store.Save(c.Request.Context(), state); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle selected", newFlowResponse(state))
}

// SetDetails stores the passenger and trip details. A flight number triggers
// a status lookup; lookup failures keep the bare number rather than blocking
// the step.
func (h *FlowHandler) SetDetails(c *gin.Context) {
	var request validators.TripDetailsPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateTripDetails(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	state, err := h.store.Load(c.Request.Context(), h.sessionID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if err := h.attachCaller(c, state); err != nil {
		handleServiceError(c, err)
		return
	}

	details := &flow.TripDetails{
		PassengerName:       request.PassengerName,
		PassengerPhone:      request.PassengerPhone,
		PassengerEmail:      request.PassengerEmail,
		PassengerCount:      request.PassengerCount,
		LuggageCount:        request.LuggageCount,
		BabySeat:            request.BabySeat,
		FlightNumber:        request.FlightNumber,
		SpecialInstructions: request.SpecialInstructions,
		BillReference:       request.BillReference,
	}
	if request.FlightNumber != "" {
		if info, err := h.flightService.Lookup(c.Request.Context(), request.FlightNumber); err == nil {
			details.Flight = info
		} else {
			details.Flight = &models.FlightInfo{FlightNumber: request.FlightNumber}
		}
	}

	if err := state.SetDetails(details); err != nil {
		handleServiceError(c, err)
		return
	}
	if err := h.store.Save(c.Request.Context(), state); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Trip details saved", newFlowResponse(state))
}

// Attach binds the authenticated user to a flow started before login.
func (h *FlowHandler) Attach(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	state, err := h.store.Load(c.Request.Context(), h.sessionID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if err := state.AttachUser(userID); err != nil {
		handleServiceError(c, err)
		return
	}
	if err := h.store.Save(c.Request.Context(), state); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Session attached to account", newFlowResponse(state))
}

// Confirm finishes the flow: it creates the booking from the accumulated
// state and discards the session.
func (h *FlowHandler) Confirm(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.ConfirmBookingPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateConfirmBooking(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return
	}

	state, err := h.store.Load(c.Request.Context(), h.sessionID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	// A session bound to another account cannot be confirmed with it.
	if err := state.AttachUser(userID); err != nil {
		handleServiceError(c, err)
		return
	}
	if err := state.ReadyToBook(); err != nil {
		handleServiceError(c, err)
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), &services.CreateBookingRequest{
		UserID:              *state.UserID,
		Quote:               state.Quote,
		VehicleTypeSlug:     state.VehicleTypeSlug,
		PassengerName:       state.Details.PassengerName,
		PassengerPhone:      state.Details.PassengerPhone,
		PassengerEmail:      state.Details.PassengerEmail,
		PassengerCount:      state.Details.PassengerCount,
		LuggageCount:        state.Details.LuggageCount,
		BabySeat:            state.Details.BabySeat,
		Flight:              state.Details.Flight,
		SpecialInstructions: state.Details.SpecialInstructions,
		BillReference:       state.Details.BillReference,
		PaymentMethod:       models.PaymentMethod(request.PaymentMethod),
		PaymentMethodID:     request.PaymentMethodID,
		CreditAmount:        request.CreditAmount,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if err := h.store.Delete(c.Request.Context(), state.SessionID); err != nil {
		// The entry expires on its own; a failed delete is not worth
		// failing the booking response over.
		_ = err
	}

	utils.CreatedResponse(c, "Booking created successfully", booking)
}

// attachCaller binds the authenticated caller to the loaded state. Sessions
// owned by a different account are rejected rather than hijacked.
func (h *FlowHandler) attachCaller(c *gin.Context, state *flow.State) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil
	}
	return state.AttachUser(userID)
}

func (h *FlowHandler) sessionID(c *gin.Context) string {
	if id := c.GetHeader(sessionHeader); id != "" {
		return id
	}
	id := utils.GenerateSessionID()
	c.Header(sessionHeader, id)
	return id
}
