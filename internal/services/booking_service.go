package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"limoride/internal/config"
	"limoride/internal/models"
	"limoride/internal/repositories/interfaces"
	"limoride/internal/utils"
	"limoride/pkg/logger"
	"limoride/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateBookingRequest is the assembled output of the booking flow: the quote
// generated in step one plus everything gathered in the later steps.
type CreateBookingRequest struct {
	UserID              primitive.ObjectID
	Quote               *models.Quote
	VehicleTypeSlug     string
	PassengerName       string
	PassengerPhone      string
	PassengerEmail      string
	PassengerCount      int
	LuggageCount        int
	BabySeat            bool
	Flight              *models.FlightInfo
	SpecialInstructions string
	BillReference       string
	PaymentMethod       models.PaymentMethod
	PaymentMethodID     string
	CreditAmount        float64
	// DriverID pre-assigns a driver at creation time. Dispatcher bookings
	// only; the booking starts in pending_driver_acceptance.
	DriverID *primitive.ObjectID
}

// Reassigner decides what happens to a booking after a driver declines it.
// The default implementation does nothing: the booking sits in the pool until
// a dispatcher picks it up again.
type Reassigner interface {
	Reassign(ctx context.Context, booking *models.Booking) error
}

type NoopReassigner struct{}

func (NoopReassigner) Reassign(ctx context.Context, booking *models.Booking) error { return nil }

type BookingService interface {
	CreateBooking(ctx context.Context, req *CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, actor *models.User, id primitive.ObjectID) (*models.Booking, error)
	GetUserBookings(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetDriverBookings(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetAssignablePool(ctx context.Context) ([]*models.Booking, error)

	AssignDriver(ctx context.Context, bookingID, driverID primitive.ObjectID, driverPayment *float64) (*models.Booking, error)
	AcceptBooking(ctx context.Context, driverID, bookingID primitive.ObjectID) (*models.Booking, error)
	DeclineBooking(ctx context.Context, driverID, bookingID primitive.ObjectID, reason string) (*models.Booking, error)
	StartRide(ctx context.Context, driverID, bookingID primitive.ObjectID) (*models.Booking, error)
	CompleteRide(ctx context.Context, driverID, bookingID primitive.ObjectID) (*models.Booking, error)
	CancelBooking(ctx context.Context, actor *models.User, bookingID primitive.ObjectID, reason string) (*models.Booking, error)
}

type bookingService struct {
	bookingRepo     interfaces.BookingRepository
	vehicleTypeRepo interfaces.VehicleTypeRepository
	userRepo        interfaces.UserRepository
	creditRepo      interfaces.RideCreditRepository
	paymentProvider payment.Provider
	notifications   *NotificationService
	reassigner      Reassigner
	cfg             *config.BookingConfig
	currency        string
	logger          *logger.Logger
}

func NewBookingService(
	bookingRepo interfaces.BookingRepository,
	vehicleTypeRepo interfaces.VehicleTypeRepository,
	userRepo interfaces.UserRepository,
	creditRepo interfaces.RideCreditRepository,
	paymentProvider payment.Provider,
	notifications *NotificationService,
	reassigner Reassigner,
	cfg *config.BookingConfig,
	currency string,
	logger *logger.Logger,
) BookingService {
	if reassigner == nil {
		reassigner = NoopReassigner{}
	}
	return &bookingService{
		bookingRepo:     bookingRepo,
		vehicleTypeRepo: vehicleTypeRepo,
		userRepo:        userRepo,
		creditRepo:      creditRepo,
		paymentProvider: paymentProvider,
		notifications:   notifications,
		reassigner:      reassigner,
		cfg:             cfg,
		currency:        currency,
		logger:          logger,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*models.Booking, error) {
	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	vehicleType, err := s.vehicleTypeRepo.GetBySlug(ctx, req.VehicleTypeSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicle type: %w", err)
	}

	option, ok := req.Quote.Option(req.VehicleTypeSlug)
	if !ok {
		return nil, ErrVehicleNotQuoted
	}
	totalAmount := option.FinalPrice

	if err := s.checkPaymentEntitlement(ctx, user, req.PaymentMethod); err != nil {
		return nil, err
	}

	// Applied credit is capped at min(balance, total). A request for more
	// than the balance silently applies what the account holds.
	creditToApply := 0.0
	if req.CreditAmount > 0 {
		balance, err := s.creditRepo.GetBalance(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load credit balance: %w", err)
		}
		creditToApply = utils.RoundCurrency(min(req.CreditAmount, balance, totalAmount))
	}
	if req.PaymentMethod == models.PaymentMethodCredit && creditToApply < totalAmount {
		return nil, &PaymentError{Err: errors.New("ride credit does not cover the booking total")}
	}

	now := time.Now().UTC()
	booking := &models.Booking{
		ID:                  primitive.NewObjectID(),
		BookingReference:    utils.GenerateBookingReference(now),
		UserID:              user.ID,
		BookingType:         req.Quote.ServiceType,
		Status:              models.BookingStatusPending,
		Pickup:              req.Quote.Pickup,
		Destination:         req.Quote.Destination,
		ViaPoints:           req.Quote.ViaPoints,
		Hours:               req.Quote.Hours,
		ScheduledAt:         req.Quote.ScheduledAt,
		VehicleTypeID:       vehicleType.ID,
		VehicleTypeSlug:     req.VehicleTypeSlug,
		TotalAmount:         totalAmount,
		CreditAmountApplied: creditToApply,
		Currency:            s.currency,
		PassengerName:       req.PassengerName,
		PassengerPhone:      req.PassengerPhone,
		PassengerEmail:      req.PassengerEmail,
		PassengerCount:      req.PassengerCount,
		LuggageCount:        req.LuggageCount,
		BabySeat:            req.BabySeat,
		Flight:              req.Flight,
		SpecialInstructions: req.SpecialInstructions,
		BillReference:       req.BillReference,
		PaymentMethod:       req.PaymentMethod,
		DistanceMiles:       req.Quote.DistanceMiles,
		DurationMinutes:     req.Quote.DurationMinutes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	// Charge before anything is written. A declined card means no booking.
	remaining := booking.RemainingAmount()
	if req.PaymentMethod == models.PaymentMethodPayNow && remaining > 0 {
		response, err := s.paymentProvider.ProcessPayment(ctx, &payment.PaymentRequest{
			PaymentMethodID: req.PaymentMethodID,
			Amount:          remaining,
			Currency:        s.currency,
			Description:     fmt.Sprintf("Booking %s", booking.BookingReference),
			CustomerID:      user.StripeCustomerID,
			Metadata: map[string]string{
				"booking_reference": booking.BookingReference,
				"user_id":           user.ID.Hex(),
			},
		})
		if err != nil {
			return nil, &PaymentError{Err: err}
		}
		if !response.Succeeded() {
			return nil, &PaymentError{Err: fmt.Errorf("charge ended in status %q", response.Status)}
		}
		booking.PaymentIntentID = response.TransactionID
		s.logger.LogPaymentEvent(booking.ID, "charge_succeeded", remaining, s.currency)
	}

	if creditToApply > 0 {
		if err := s.creditRepo.ApplyCredit(ctx, user.ID, booking.ID, creditToApply); err != nil {
			// A concurrent spend can shrink the balance between the read
			// and the guarded decrement.
			if errors.Is(err, interfaces.ErrInsufficientBalance) {
				return nil, &PaymentError{Err: errors.New("ride credit balance changed, retry the booking")}
			}
			return nil, fmt.Errorf("failed to apply ride credit: %w", err)
		}
	}

	if req.DriverID != nil {
		booking.Status = models.BookingStatusDriverAcceptance
		booking.DriverID = req.DriverID
		booking.DriverPayment = s.driverPayment(totalAmount, nil)
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if creditToApply > 0 {
			if refundErr := s.creditRepo.RefundCredit(ctx, user.ID, booking.ID, creditToApply); refundErr != nil {
				s.logger.WithBookingID(booking.ID).WithError(refundErr).
					Error("Failed to return credit after booking insert failure")
			}
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.logger.LogBookingEvent(booking.ID, "created", map[string]interface{}{
		"reference":      booking.BookingReference,
		"booking_type":   booking.BookingType,
		"total_amount":   booking.TotalAmount,
		"payment_method": booking.PaymentMethod,
	})

	if booking.DriverID != nil {
		s.notifications.NotifyDriverAssigned(ctx, *booking.DriverID, booking)
	}
	s.notifications.NotifyBookingCreated(ctx, booking)

	return booking, nil
}

func (s *bookingService) checkPaymentEntitlement(ctx context.Context, user *models.User, method models.PaymentMethod) error {
	switch method {
	case models.PaymentMethodPayNow, models.PaymentMethodCredit:
		return nil
	case models.PaymentMethodCash:
		if !user.CashEnabled {
			return ErrPaymentMethodNotAllowed
		}
		return nil
	case models.PaymentMethodPayLater:
		if !user.PayLaterEnabled {
			return ErrPaymentMethodNotAllowed
		}
		if s.cfg.RequireCardOnFile {
			onFile, err := s.paymentProvider.HasPaymentMethodOnFile(ctx, user.StripeCustomerID)
			if err != nil {
				return fmt.Errorf("failed to check stored payment method: %w", err)
			}
			if !onFile {
				return ErrPaymentMethodNotAllowed
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown payment method %q", method)
	}
}

func (s *bookingService) GetBooking(ctx context.Context, actor *models.User, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && !booking.IsOwnedBy(actor.ID) {
		return nil, ErrNotAuthorized
	}
	return booking, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return s.bookingRepo.GetByUser(ctx, userID, params)
}

func (s *bookingService) GetDriverBookings(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return s.bookingRepo.GetByDriver(ctx, driverID, params)
}

func (s *bookingService) GetAssignablePool(ctx context.Context) ([]*models.Booking, error) {
	return s.bookingRepo.GetAssignablePool(ctx)
}

// AssignDriver moves a pending booking to pending_driver_acceptance. The
// driver payment defaults to the configured share of the total unless the
// dispatcher overrides it.
func (s *bookingService) AssignDriver(ctx context.Context, bookingID, driverID primitive.ObjectID, driverPayment *float64) (*models.Booking, error) {
	driver, err := s.userRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to load driver: %w", err)
	}
	if driver.Role != models.RoleDriver {
		return nil, fmt.Errorf("user %s is not a driver", driverID.Hex())
	}

	current, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.transition(ctx, bookingID, models.ActionAssignDriver, map[string]interface{}{
		"status":         models.BookingStatusDriverAcceptance,
		"driver_id":      driverID,
		"driver_payment": s.driverPayment(current.TotalAmount, driverPayment),
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogBookingEvent(bookingID, "driver_assigned", map[string]interface{}{
		"driver_id": driverID.Hex(),
	})
	s.notifications.NotifyDriverAssigned(ctx, driverID, booking)
	return booking, nil
}

func (s *bookingService) AcceptBooking(ctx context.Context, driverID, bookingID primitive.ObjectID) (*models.Booking, error) {
	if err := s.requireAssignedDriver(ctx, driverID, bookingID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking, err := s.transition(ctx, bookingID, models.ActionAccept, map[string]interface{}{
		"status":       models.BookingStatusConfirmed,
		"confirmed_at": now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogBookingEvent(bookingID, "driver_accepted", map[string]interface{}{
		"driver_id": driverID.Hex(),
	})
	s.notifications.NotifyBookingConfirmed(ctx, booking)
	return booking, nil
}

// DeclineBooking returns the booking to the pool: driver cleared, status back
// to pending, decline recorded. The configured reassigner then gets a chance
// to act.
func (s *bookingService) DeclineBooking(ctx context.Context, driverID, bookingID primitive.ObjectID, reason string) (*models.Booking, error) {
	if err := s.requireAssignedDriver(ctx, driverID, bookingID); err != nil {
		return nil, err
	}

	booking, err := s.transition(ctx, bookingID, models.ActionDecline, map[string]interface{}{
		"status":         models.BookingStatusPending,
		"driver_id":      nil,
		"driver_payment": nil,
		"$push_decline": models.DriverDecline{
			DriverID:   driverID,
			Reason:     reason,
			DeclinedAt: time.Now().UTC(),
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogBookingEvent(bookingID, "driver_declined", map[string]interface{}{
		"driver_id": driverID.Hex(),
		"reason":    reason,
	})

	if err := s.reassigner.Reassign(ctx, booking); err != nil {
		s.logger.WithBookingID(bookingID).WithError(err).Warn("Reassignment failed, booking stays in pool")
	}
	s.notifications.NotifyBookingDeclined(ctx, booking)
	return booking, nil
}

func (s *bookingService) StartRide(ctx context.Context, driverID, bookingID primitive.ObjectID) (*models.Booking, error) {
	if err := s.requireAssignedDriver(ctx, driverID, bookingID); err != nil {
		return nil, err
	}

	booking, err := s.transition(ctx, bookingID, models.ActionStart, map[string]interface{}{
		"status":     models.BookingStatusInProgress,
		"started_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogBookingEvent(bookingID, "ride_started", nil)
	return booking, nil
}

func (s *bookingService) CompleteRide(ctx context.Context, driverID, bookingID primitive.ObjectID) (*models.Booking, error) {
	if err := s.requireAssignedDriver(ctx, driverID, bookingID); err != nil {
		return nil, err
	}

	booking, err := s.transition(ctx, bookingID, models.ActionComplete, map[string]interface{}{
		"status":       models.BookingStatusCompleted,
		"completed_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogBookingEvent(bookingID, "ride_completed", map[string]interface{}{
		"driver_payment": booking.DriverPayment,
	})
	s.notifications.NotifyRideCompleted(ctx, booking)
	return booking, nil
}

// CancelBooking is legal from every non-terminal status. Applied credit is
// returned and a captured pay-now charge is refunded.
func (s *bookingService) CancelBooking(ctx context.Context, actor *models.User, bookingID primitive.ObjectID, reason string) (*models.Booking, error) {
	current, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && current.UserID != actor.ID {
		return nil, ErrNotAuthorized
	}

	booking, err := s.transition(ctx, bookingID, models.ActionCancel, map[string]interface{}{
		"status":              models.BookingStatusCancelled,
		"cancellation_reason": reason,
		"cancelled_by":        string(actor.Role),
		"cancelled_at":        time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if booking.CreditAmountApplied > 0 {
		if err := s.creditRepo.RefundCredit(ctx, booking.UserID, booking.ID, booking.CreditAmountApplied); err != nil {
			s.logger.WithBookingID(bookingID).WithError(err).Error("Failed to return credit on cancellation")
		}
	}

	if booking.PaymentMethod == models.PaymentMethodPayNow && booking.PaymentIntentID != "" {
		_, err := s.paymentProvider.RefundPayment(ctx, &payment.RefundRequest{
			TransactionID: booking.PaymentIntentID,
			Amount:        booking.RemainingAmount(),
			Reason:        "requested_by_customer",
		})
		if err != nil {
			s.logger.WithBookingID(bookingID).WithError(err).Error("Failed to refund payment on cancellation")
		} else {
			s.logger.LogPaymentEvent(bookingID, "refund_issued", booking.RemainingAmount(), booking.Currency)
		}
	}

	s.logger.LogBookingEvent(bookingID, "cancelled", map[string]interface{}{
		"cancelled_by": actor.Role,
		"reason":       reason,
	})

	if booking.DriverID != nil {
		s.notifications.NotifyBookingCancelled(ctx, booking)
	}
	return booking, nil
}

// transition performs the atomic status change for an action. The repository
// applies the update only while the booking is in a status the action allows,
// so concurrent racers resolve to exactly one winner.
func (s *bookingService) transition(ctx context.Context, bookingID primitive.ObjectID, action models.BookingAction, updates map[string]interface{}) (*models.Booking, error) {
	booking, err := s.bookingRepo.UpdateIfStatus(ctx, bookingID, models.AllowedStatuses(action), updates)
	if err == nil {
		return booking, nil
	}
	if errors.Is(err, interfaces.ErrStaleStatus) {
		current, getErr := s.bookingRepo.GetByID(ctx, bookingID)
		if getErr != nil {
			return nil, err
		}
		return nil, &StateTransitionError{Action: action, Status: current.Status}
	}
	return nil, err
}

// requireAssignedDriver rejects driver actions from anyone but the driver on
// the booking. The status itself is enforced by the transition, not here.
func (s *bookingService) requireAssignedDriver(ctx context.Context, driverID, bookingID primitive.ObjectID) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.DriverID == nil || *booking.DriverID != driverID {
		return ErrNotAuthorized
	}
	return nil
}

func (s *bookingService) driverPayment(totalAmount float64, override *float64) float64 {
	if override != nil && *override >= 0 {
		return utils.RoundCurrency(*override)
	}
	return utils.RoundCurrency(totalAmount * s.cfg.DriverPaymentShare)
}
