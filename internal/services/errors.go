package services

import (
	"errors"
	"fmt"

	"limoride/internal/models"
)

var (
	// ErrNoPricingRules means no active pricing rule exists for the
	// requested service type. The quote fails outright; this is a
	// configuration problem, not a partial result.
	ErrNoPricingRules = errors.New("no pricing rules configured for service type")

	// ErrNotAuthorized is returned when an actor who is neither the owner
	// nor staff attempts to read or mutate a booking.
	ErrNotAuthorized = errors.New("not authorized for this booking")

	// ErrVehicleNotQuoted is returned when a booking names a vehicle type
	// the quote did not price.
	ErrVehicleNotQuoted = errors.New("selected vehicle type is not part of the quote")

	// ErrPaymentMethodNotAllowed is returned when the account lacks the
	// entitlement or stored card the chosen payment path requires.
	ErrPaymentMethodNotAllowed = errors.New("payment method not available for this account")
)

// StateTransitionError reports an action attempted against a booking whose
// current status does not permit it. The original state is unchanged.
type StateTransitionError struct {
	Action models.BookingAction
	Status models.BookingStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a booking in status %q", e.Action, e.Status)
}

// PaymentError wraps a failed charge. The booking is never created when a
// pay-now charge fails; the provider's message is surfaced verbatim.
type PaymentError struct {
	Err error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment failed: %v", e.Err)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}
