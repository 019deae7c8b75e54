package models

import "testing"

func TestValidTransition(t *testing.T) {
	cases := []struct {
		action BookingAction
		from   BookingStatus
		want   bool
	}{
		{ActionAssignDriver, BookingStatusPending, true},
		{ActionAssignDriver, BookingStatusDriverAcceptance, false},
		{ActionAccept, BookingStatusDriverAcceptance, true},
		{ActionAccept, BookingStatusPending, false},
		{ActionAccept, BookingStatusConfirmed, false},
		{ActionDecline, BookingStatusDriverAcceptance, true},
		{ActionDecline, BookingStatusConfirmed, false},
		{ActionStart, BookingStatusConfirmed, true},
		{ActionStart, BookingStatusDriverAcceptance, false},
		{ActionComplete, BookingStatusInProgress, true},
		{ActionComplete, BookingStatusConfirmed, false},
		{ActionCancel, BookingStatusPending, true},
		{ActionCancel, BookingStatusInProgress, true},
		{ActionCancel, BookingStatusCompleted, false},
		{ActionCancel, BookingStatusCancelled, false},
	}

	for _, tc := range cases {
		if got := ValidTransition(tc.action, tc.from); got != tc.want {
			t.Errorf("ValidTransition(%s, %s) = %v, want %v", tc.action, tc.from, got, tc.want)
		}
	}
}

func TestTerminalStatusesPermitNothing(t *testing.T) {
	actions := []BookingAction{ActionAssignDriver, ActionAccept, ActionDecline, ActionStart, ActionComplete, ActionCancel}
	for _, status := range []BookingStatus{BookingStatusCompleted, BookingStatusCancelled} {
		if !status.IsTerminal() {
			t.Errorf("%s should be terminal", status)
		}
		for _, action := range actions {
			if ValidTransition(action, status) {
				t.Errorf("action %s must not be legal from %s", action, status)
			}
		}
	}
}

func TestRemainingAmount(t *testing.T) {
	b := Booking{TotalAmount: 150, CreditAmountApplied: 50}
	if got := b.RemainingAmount(); got != 100 {
		t.Errorf("RemainingAmount = %v, want 100", got)
	}

	b = Booking{TotalAmount: 80, CreditAmountApplied: 80}
	if got := b.RemainingAmount(); got != 0 {
		t.Errorf("full credit: RemainingAmount = %v, want 0", got)
	}
}
