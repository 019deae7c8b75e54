package validators

type TripDetailsPayload struct {
	PassengerName       string `json:"passenger_name" validate:"required,min=2,max=100"`
	PassengerPhone      string `json:"passenger_phone" validate:"required,phone_number"`
	PassengerEmail      string `json:"passenger_email" validate:"required,email"`
	PassengerCount      int    `json:"passenger_count" validate:"required,min=1,max=16"`
	LuggageCount        int    `json:"luggage_count" validate:"min=0,max=20"`
	BabySeat            bool   `json:"baby_seat"`
	FlightNumber        string `json:"flight_number" validate:"omitempty,flight_number"`
	SpecialInstructions string `json:"special_instructions" validate:"omitempty,max=500"`
	BillReference       string `json:"bill_reference" validate:"omitempty,max=100"`
}

type SelectVehiclePayload struct {
	VehicleTypeSlug string `json:"vehicle_type_slug" validate:"required,vehicle_slug"`
}

type ConfirmBookingPayload struct {
	PaymentMethod   string  `json:"payment_method" validate:"required,oneof=pay_now pay_later credit cash"`
	PaymentMethodID string  `json:"payment_method_id" validate:"omitempty,max=255"`
	CreditAmount    float64 `json:"credit_amount" validate:"min=0"`
}

type CancelBookingPayload struct {
	Reason string `json:"reason" validate:"required,min=3,max=255"`
}

type DeclineBookingPayload struct {
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

type AssignDriverPayload struct {
	DriverID      string   `json:"driver_id" validate:"required,object_id"`
	DriverPayment *float64 `json:"driver_payment" validate:"omitempty,min=0"`
}

func ValidateTripDetails(req *TripDetailsPayload) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateConfirmBooking(req *ConfirmBookingPayload) ValidationErrors {
	errors := ValidateStruct(req)

	// Card charges need a payment method id unless the whole total is
	// covered by credit or settled later.
	if req.PaymentMethod == "pay_now" && req.PaymentMethodID == "" && req.CreditAmount == 0 {
		errors = append(errors, ValidationError{
			Field:   "payment_method_id",
			Tag:     "required",
			Message: "Pay now requires a payment method",
		})
	}

	return errors
}
