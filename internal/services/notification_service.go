package services

import (
	"context"
	"fmt"
	"time"

	"limoride/internal/models"
	"limoride/internal/repositories/interfaces"
	"limoride/pkg/logger"
	"limoride/pkg/sms"
	"limoride/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService pushes booking events to passengers and drivers over
// SMS and the dispatch websocket. Delivery is best effort: a failed
// notification is logged, never surfaced to the caller.
type NotificationService struct {
	smsProvider sms.Provider
	hub         *websocket.Hub
	userRepo    interfaces.UserRepository
	fromNumber  string
	logger      *logger.Logger
}

func NewNotificationService(
	smsProvider sms.Provider,
	hub *websocket.Hub,
	userRepo interfaces.UserRepository,
	fromNumber string,
	logger *logger.Logger,
) *NotificationService {
	return &NotificationService{
		smsProvider: smsProvider,
		hub:         hub,
		userRepo:    userRepo,
		fromNumber:  fromNumber,
		logger:      logger,
	}
}

func (n *NotificationService) NotifyBookingCreated(ctx context.Context, booking *models.Booking) {
	message := fmt.Sprintf("Your booking %s is confirmed for %s. We will let you know once a chauffeur is assigned.",
		booking.BookingReference, booking.ScheduledAt.Format("Mon 2 Jan 15:04"))
	n.sendSMS(ctx, booking.PassengerPhone, message, booking.ID)
}

func (n *NotificationService) NotifyDriverAssigned(ctx context.Context, driverID primitive.ObjectID, booking *models.Booking) {
	n.hub.NotifyAssignment(driverID, booking.ID, map[string]interface{}{
		"reference":      booking.BookingReference,
		"pickup":         booking.Pickup.Address,
		"scheduled_at":   booking.ScheduledAt.Format(time.RFC3339),
		"driver_payment": booking.DriverPayment,
	})

	driver, err := n.userRepo.GetByID(ctx, driverID)
	if err != nil {
		n.logger.WithBookingID(booking.ID).WithError(err).Warn("Could not load driver for SMS notification")
		return
	}
	message := fmt.Sprintf("New trip offer %s: pickup %s at %s. Open the app to accept or decline.",
		booking.BookingReference, booking.Pickup.Address, booking.ScheduledAt.Format("Mon 2 Jan 15:04"))
	n.sendSMS(ctx, driver.Phone, message, booking.ID)
}

func (n *NotificationService) NotifyBookingConfirmed(ctx context.Context, booking *models.Booking) {
	n.hub.SendToUser(booking.UserID, websocket.Message{
		Type:      "booking_confirmed",
		UserID:    booking.UserID,
		Timestamp: time.Now().Unix(),
		Data: map[string]interface{}{
			"booking_id": booking.ID.Hex(),
			"reference":  booking.BookingReference,
		},
	})

	message := fmt.Sprintf("Your chauffeur has confirmed booking %s. See you at %s.",
		booking.BookingReference, booking.ScheduledAt.Format("Mon 2 Jan 15:04"))
	n.sendSMS(ctx, booking.PassengerPhone, message, booking.ID)
}

func (n *NotificationService) NotifyBookingDeclined(ctx context.Context, booking *models.Booking) {
	n.hub.NotifyPoolUpdate(booking.ID)
}

func (n *NotificationService) NotifyRideCompleted(ctx context.Context, booking *models.Booking) {
	message := fmt.Sprintf("Thanks for riding with us. Booking %s is complete.", booking.BookingReference)
	n.sendSMS(ctx, booking.PassengerPhone, message, booking.ID)
}

func (n *NotificationService) NotifyBookingCancelled(ctx context.Context, booking *models.Booking) {
	if booking.DriverID == nil {
		return
	}
	n.hub.SendToUser(*booking.DriverID, websocket.Message{
		Type:      "booking_cancelled",
		UserID:    *booking.DriverID,
		Timestamp: time.Now().Unix(),
		Data: map[string]interface{}{
			"booking_id": booking.ID.Hex(),
			"reference":  booking.BookingReference,
		},
	})
}

func (n *NotificationService) sendSMS(ctx context.Context, to, message string, bookingID primitive.ObjectID) {
	if to == "" {
		return
	}
	_, err := n.smsProvider.SendSMS(ctx, &sms.SMSRequest{
		To:      to,
		From:    n.fromNumber,
		Message: message,
	})
	if err != nil {
		n.logger.WithBookingID(bookingID).WithError(err).Warn("SMS delivery failed")
	}
}
