package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"limoride/internal/models"
	"limoride/internal/repositories/interfaces"
	"limoride/internal/utils"
	"limoride/pkg/payment"
	"limoride/pkg/sms"
	"limoride/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeBookingRepo keeps bookings in memory with the same compare-and-swap
// contract as the real repository: UpdateIfStatus applies atomically and only
// while the current status is allowed.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[primitive.ObjectID]*models.Booking)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.BookingReference == reference {
			copied := *b
			return &copied, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeBookingRepo) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, allowed []models.BookingStatus, updates map[string]interface{}) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}

	allowedNow := false
	for _, status := range allowed {
		if booking.Status == status {
			allowedNow = true
			break
		}
	}
	if !allowedNow {
		return nil, interfaces.ErrStaleStatus
	}

	for key, value := range updates {
		switch key {
		case "status":
			booking.Status = value.(models.BookingStatus)
		case "driver_id":
			if value == nil {
				booking.DriverID = nil
			} else {
				id := value.(primitive.ObjectID)
				booking.DriverID = &id
			}
		case "driver_payment":
			if value == nil {
				booking.DriverPayment = 0
			} else {
				booking.DriverPayment = value.(float64)
			}
		case "confirmed_at":
			t := value.(time.Time)
			booking.ConfirmedAt = &t
		case "started_at":
			t := value.(time.Time)
			booking.StartedAt = &t
		case "completed_at":
			t := value.(time.Time)
			booking.CompletedAt = &t
		case "cancelled_at":
			t := value.(time.Time)
			booking.CancelledAt = &t
		case "cancellation_reason":
			booking.CancellationReason = value.(string)
		case "cancelled_by":
			booking.CancelledBy = value.(string)
		case "$push_decline":
			booking.Declines = append(booking.Declines, value.(models.DriverDecline))
		}
	}
	booking.UpdatedAt = time.Now().UTC()

	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return nil, 0, nil
}

func (f *fakeBookingRepo) GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return nil, 0, nil
}

func (f *fakeBookingRepo) GetByStatus(ctx context.Context, status models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return nil, 0, nil
}

func (f *fakeBookingRepo) GetAssignablePool(ctx context.Context) ([]*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pool []*models.Booking
	for _, b := range f.bookings {
		if b.Status == models.BookingStatusPending && b.DriverID == nil {
			copied := *b
			pool = append(pool, &copied)
		}
	}
	return pool, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (f *fakeUserRepo) GetDrivers(ctx context.Context) ([]*models.User, error) {
	return nil, nil
}

type creditOp struct {
	bookingID primitive.ObjectID
	amount    float64
}

type fakeCreditRepo struct {
	mu       sync.Mutex
	balances map[primitive.ObjectID]float64
	applied  []creditOp
	refunded []creditOp
}

func newFakeCreditRepo() *fakeCreditRepo {
	return &fakeCreditRepo{balances: make(map[primitive.ObjectID]float64)}
}

func (f *fakeCreditRepo) GetBalance(ctx context.Context, userID primitive.ObjectID) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID], nil
}

func (f *fakeCreditRepo) ApplyCredit(ctx context.Context, userID, bookingID primitive.ObjectID, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balances[userID] < amount {
		return interfaces.ErrInsufficientBalance
	}
	f.balances[userID] -= amount
	f.applied = append(f.applied, creditOp{bookingID: bookingID, amount: amount})
	return nil
}

func (f *fakeCreditRepo) RefundCredit(ctx context.Context, userID, bookingID primitive.ObjectID, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[userID] += amount
	f.refunded = append(f.refunded, creditOp{bookingID: bookingID, amount: amount})
	return nil
}

func (f *fakeCreditRepo) GrantCredit(ctx context.Context, userID primitive.ObjectID, amount float64, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[userID] += amount
	return nil
}

func (f *fakeCreditRepo) GetTransactions(ctx context.Context, userID primitive.ObjectID) ([]*models.CreditTransaction, error) {
	return nil, nil
}

type fakePaymentProvider struct {
	mu         sync.Mutex
	failCharge bool
	cardOnFile bool
	charges    []*payment.PaymentRequest
	refunds    []*payment.RefundRequest
}

func (f *fakePaymentProvider) ProcessPayment(ctx context.Context, request *payment.PaymentRequest) (*payment.PaymentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCharge {
		return nil, errors.New("card declined")
	}
	f.charges = append(f.charges, request)
	return &payment.PaymentResponse{
		TransactionID: "pi_test_123",
		Status:        "succeeded",
		Amount:        request.Amount,
		Currency:      request.Currency,
	}, nil
}

func (f *fakePaymentProvider) RefundPayment(ctx context.Context, request *payment.RefundRequest) (*payment.RefundResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunds = append(f.refunds, request)
	return &payment.RefundResponse{RefundID: "re_test_123", Status: "succeeded", Amount: request.Amount}, nil
}

func (f *fakePaymentProvider) HasPaymentMethodOnFile(ctx context.Context, customerID string) (bool, error) {
	return f.cardOnFile, nil
}

type fakeSMSProvider struct{}

func (fakeSMSProvider) SendSMS(ctx context.Context, request *sms.SMSRequest) (*sms.SMSResponse, error) {
	return &sms.SMSResponse{MessageID: "sm_test", Status: "sent"}, nil
}

type bookingFixture struct {
	svc      BookingService
	bookings *fakeBookingRepo
	credits  *fakeCreditRepo
	payments *fakePaymentProvider
	users    *fakeUserRepo

	passenger *models.User
	driver    *models.User
	sedan     *models.VehicleType
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	passenger := &models.User{
		ID:        primitive.NewObjectID(),
		Role:      models.RolePassenger,
		FirstName: "Ana",
		LastName:  "Petrova",
		Email:     "ana@example.com",
		IsActive:  true,
	}
	driver := &models.User{
		ID:        primitive.NewObjectID(),
		Role:      models.RoleDriver,
		FirstName: "Marc",
		LastName:  "Osei",
		Email:     "marc@example.com",
		Phone:     "+447700900456",
		IsActive:  true,
	}
	sedan := &models.VehicleType{
		ID:       primitive.NewObjectID(),
		Name:     "Executive Sedan",
		IsActive: true,
	}

	bookings := newFakeBookingRepo()
	credits := newFakeCreditRepo()
	payments := &fakePaymentProvider{}
	users := newFakeUserRepo(passenger, driver)
	log := newTestLogger(t)

	notifications := NewNotificationService(fakeSMSProvider{}, websocket.NewHub(), users, "+15550100", log)

	svc := NewBookingService(
		bookings,
		&fakeVehicleTypeRepo{types: map[string]*models.VehicleType{"executive_sedan": sedan}},
		users,
		credits,
		payments,
		notifications,
		nil,
		testBookingConfig(),
		"USD",
		log,
	)

	return &bookingFixture{
		svc:       svc,
		bookings:  bookings,
		credits:   credits,
		payments:  payments,
		users:     users,
		passenger: passenger,
		driver:    driver,
		sedan:     sedan,
	}
}

func (fx *bookingFixture) createRequest() *CreateBookingRequest {
	return &CreateBookingRequest{
		UserID: fx.passenger.ID,
		Quote: &models.Quote{
			ServiceType: models.ServiceTypeTransfer,
			Pickup:      models.Location{Address: "Heathrow T5", Latitude: 51.4719, Longitude: -0.4887},
			Destination: &models.Location{Address: "The Savoy", Latitude: 51.5101, Longitude: -0.1202},
			ScheduledAt: time.Now().Add(48 * time.Hour),
			Vehicles: []models.VehicleQuote{
				{VehicleTypeSlug: "executive_sedan", RegularPrice: 100, FinalPrice: 100},
			},
			GeneratedAt: time.Now().UTC(),
		},
		VehicleTypeSlug: "executive_sedan",
		PassengerName:   "Ana Petrova",
		PassengerPhone:  "+447700900123",
		PassengerEmail:  "ana@example.com",
		PassengerCount:  2,
		PaymentMethod:   models.PaymentMethodPayNow,
		PaymentMethodID: "pm_test_visa",
	}
}

func (fx *bookingFixture) mustCreate(t *testing.T) *models.Booking {
	t.Helper()
	booking, err := fx.svc.CreateBooking(context.Background(), fx.createRequest())
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	return booking
}

func (fx *bookingFixture) mustAssign(t *testing.T, bookingID primitive.ObjectID) *models.Booking {
	t.Helper()
	booking, err := fx.svc.AssignDriver(context.Background(), bookingID, fx.driver.ID, nil)
	if err != nil {
		t.Fatalf("AssignDriver: %v", err)
	}
	return booking
}

func TestCreateBookingPayNow(t *testing.T) {
	fx := newBookingFixture(t)

	booking := fx.mustCreate(t)

	if booking.Status != models.BookingStatusPending {
		t.Fatalf("status = %v, want pending", booking.Status)
	}
	if booking.BookingReference == "" {
		t.Fatal("booking reference not generated")
	}
	if booking.TotalAmount != 100 {
		t.Fatalf("total = %v, want the quoted final price", booking.TotalAmount)
	}
	if booking.PaymentIntentID != "pi_test_123" {
		t.Fatal("payment intent not recorded on booking")
	}
	if len(fx.payments.charges) != 1 || fx.payments.charges[0].Amount != 100 {
		t.Fatalf("charges = %+v, want one charge of 100", fx.payments.charges)
	}

	stored, err := fx.bookings.GetByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("booking not persisted: %v", err)
	}
	if stored.Status != models.BookingStatusPending {
		t.Fatalf("persisted status = %v", stored.Status)
	}
}

func TestCreateBookingChargeDeclined(t *testing.T) {
	fx := newBookingFixture(t)
	fx.payments.failCharge = true

	_, err := fx.svc.CreateBooking(context.Background(), fx.createRequest())

	var payErr *PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("err = %v, want PaymentError", err)
	}
	if len(fx.bookings.bookings) != 0 {
		t.Fatal("declined charge must not leave a booking behind")
	}
}

func TestCreateBookingCreditCappedAtBalance(t *testing.T) {
	fx := newBookingFixture(t)
	fx.credits.balances[fx.passenger.ID] = 30

	req := fx.createRequest()
	req.CreditAmount = 1000 // far more than the balance holds

	booking, err := fx.svc.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if booking.CreditAmountApplied != 30 {
		t.Fatalf("credit applied = %v, want capped at balance 30", booking.CreditAmountApplied)
	}
	if got := fx.payments.charges[0].Amount; got != 70 {
		t.Fatalf("charged %v, want the 70 remainder", got)
	}
	if fx.credits.balances[fx.passenger.ID] != 0 {
		t.Fatalf("balance = %v after applying", fx.credits.balances[fx.passenger.ID])
	}
}

func TestCreditLedgerReferencesStoredBooking(t *testing.T) {
	fx := newBookingFixture(t)
	fx.credits.balances[fx.passenger.ID] = 30

	req := fx.createRequest()
	req.CreditAmount = 30

	booking, err := fx.svc.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if len(fx.credits.applied) != 1 {
		t.Fatalf("applied = %+v, want one ledger entry", fx.credits.applied)
	}
	if got := fx.credits.applied[0].bookingID; got != booking.ID {
		t.Fatalf("ledger booking_id = %s, want the stored booking %s", got.Hex(), booking.ID.Hex())
	}
	if _, err := fx.bookings.GetByID(context.Background(), fx.credits.applied[0].bookingID); err != nil {
		t.Fatalf("ledger references a booking that was never stored: %v", err)
	}
}

func TestCreateBookingCreditOnlyNeedsFullCover(t *testing.T) {
	fx := newBookingFixture(t)
	fx.credits.balances[fx.passenger.ID] = 60

	req := fx.createRequest()
	req.PaymentMethod = models.PaymentMethodCredit
	req.CreditAmount = 100

	_, err := fx.svc.CreateBooking(context.Background(), req)
	var payErr *PaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("err = %v, want PaymentError for partial credit cover", err)
	}

	fx.credits.balances[fx.passenger.ID] = 150
	booking, err := fx.svc.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateBooking with full cover: %v", err)
	}
	if booking.CreditAmountApplied != 100 {
		t.Fatalf("credit applied = %v, want the full total", booking.CreditAmountApplied)
	}
	if len(fx.payments.charges) != 0 {
		t.Fatal("credit-only booking must not hit the card")
	}
}

func TestPaymentEntitlements(t *testing.T) {
	t.Run("pay later without entitlement", func(t *testing.T) {
		fx := newBookingFixture(t)
		req := fx.createRequest()
		req.PaymentMethod = models.PaymentMethodPayLater

		_, err := fx.svc.CreateBooking(context.Background(), req)
		if !errors.Is(err, ErrPaymentMethodNotAllowed) {
			t.Fatalf("err = %v, want ErrPaymentMethodNotAllowed", err)
		}
	})

	t.Run("pay later without stored card", func(t *testing.T) {
		fx := newBookingFixture(t)
		fx.passenger.PayLaterEnabled = true
		fx.payments.cardOnFile = false
		req := fx.createRequest()
		req.PaymentMethod = models.PaymentMethodPayLater

		_, err := fx.svc.CreateBooking(context.Background(), req)
		if !errors.Is(err, ErrPaymentMethodNotAllowed) {
			t.Fatalf("err = %v, want ErrPaymentMethodNotAllowed", err)
		}
	})

	t.Run("pay later with card on file", func(t *testing.T) {
		fx := newBookingFixture(t)
		fx.passenger.PayLaterEnabled = true
		fx.payments.cardOnFile = true
		req := fx.createRequest()
		req.PaymentMethod = models.PaymentMethodPayLater

		booking, err := fx.svc.CreateBooking(context.Background(), req)
		if err != nil {
			t.Fatalf("CreateBooking: %v", err)
		}
		if len(fx.payments.charges) != 0 {
			t.Fatal("pay later must not charge at creation time")
		}
		if booking.PaymentMethod != models.PaymentMethodPayLater {
			t.Fatalf("payment method = %v", booking.PaymentMethod)
		}
	})

	t.Run("cash without entitlement", func(t *testing.T) {
		fx := newBookingFixture(t)
		req := fx.createRequest()
		req.PaymentMethod = models.PaymentMethodCash

		_, err := fx.svc.CreateBooking(context.Background(), req)
		if !errors.Is(err, ErrPaymentMethodNotAllowed) {
			t.Fatalf("err = %v, want ErrPaymentMethodNotAllowed", err)
		}
	})
}

func TestCreateBookingWrongVehicle(t *testing.T) {
	fx := newBookingFixture(t)
	req := fx.createRequest()
	req.VehicleTypeSlug = "executive_sedan"
	req.Quote.Vehicles = []models.VehicleQuote{{VehicleTypeSlug: "luxury_van", FinalPrice: 140}}

	_, err := fx.svc.CreateBooking(context.Background(), req)
	if !errors.Is(err, ErrVehicleNotQuoted) {
		t.Fatalf("err = %v, want ErrVehicleNotQuoted", err)
	}
}

func TestAssignAcceptStartComplete(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	booking := fx.mustCreate(t)
	assigned := fx.mustAssign(t, booking.ID)

	if assigned.Status != models.BookingStatusDriverAcceptance {
		t.Fatalf("after assignment, status = %v", assigned.Status)
	}
	if assigned.DriverID == nil || *assigned.DriverID != fx.driver.ID {
		t.Fatal("driver not attached")
	}
	if assigned.DriverPayment != 75 {
		t.Fatalf("driver payment = %v, want 75%% of 100", assigned.DriverPayment)
	}

	confirmed, err := fx.svc.AcceptBooking(ctx, fx.driver.ID, booking.ID)
	if err != nil {
		t.Fatalf("AcceptBooking: %v", err)
	}
	if confirmed.Status != models.BookingStatusConfirmed || confirmed.ConfirmedAt == nil {
		t.Fatalf("after acceptance: %+v", confirmed)
	}

	started, err := fx.svc.StartRide(ctx, fx.driver.ID, booking.ID)
	if err != nil {
		t.Fatalf("StartRide: %v", err)
	}
	if started.Status != models.BookingStatusInProgress || started.StartedAt == nil {
		t.Fatalf("after start: %+v", started)
	}

	completed, err := fx.svc.CompleteRide(ctx, fx.driver.ID, booking.ID)
	if err != nil {
		t.Fatalf("CompleteRide: %v", err)
	}
	if completed.Status != models.BookingStatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("after completion: %+v", completed)
	}
}

func TestAssignDriverPaymentOverride(t *testing.T) {
	fx := newBookingFixture(t)
	booking := fx.mustCreate(t)

	override := 82.50
	assigned, err := fx.svc.AssignDriver(context.Background(), booking.ID, fx.driver.ID, &override)
	if err != nil {
		t.Fatalf("AssignDriver: %v", err)
	}
	if assigned.DriverPayment != 82.50 {
		t.Fatalf("driver payment = %v, want the override", assigned.DriverPayment)
	}
}

func TestDeclineReturnsBookingToPool(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	booking := fx.mustCreate(t)
	fx.mustAssign(t, booking.ID)

	declined, err := fx.svc.DeclineBooking(ctx, fx.driver.ID, booking.ID, "vehicle off the road")
	if err != nil {
		t.Fatalf("DeclineBooking: %v", err)
	}

	if declined.Status != models.BookingStatusPending {
		t.Fatalf("after decline, status = %v, want pending", declined.Status)
	}
	if declined.DriverID != nil {
		t.Fatal("decline must clear the driver")
	}
	if len(declined.Declines) != 1 || declined.Declines[0].DriverID != fx.driver.ID {
		t.Fatalf("decline not recorded: %+v", declined.Declines)
	}
	if declined.Declines[0].Reason != "vehicle off the road" {
		t.Fatalf("decline reason = %q", declined.Declines[0].Reason)
	}

	pool, err := fx.svc.GetAssignablePool(ctx)
	if err != nil {
		t.Fatalf("GetAssignablePool: %v", err)
	}
	if len(pool) != 1 || pool[0].ID != booking.ID {
		t.Fatal("declined booking should be back in the assignable pool")
	}
}

func TestDriverActionsRequireAssignedDriver(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	otherDriver := &models.User{ID: primitive.NewObjectID(), Role: models.RoleDriver, IsActive: true}
	if err := fx.users.Create(ctx, otherDriver); err != nil {
		t.Fatal(err)
	}

	booking := fx.mustCreate(t)
	fx.mustAssign(t, booking.ID)

	if _, err := fx.svc.AcceptBooking(ctx, otherDriver.ID, booking.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("foreign accept: err = %v, want ErrNotAuthorized", err)
	}
	if _, err := fx.svc.DeclineBooking(ctx, otherDriver.ID, booking.ID, ""); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("foreign decline: err = %v, want ErrNotAuthorized", err)
	}
}

func TestIllegalTransitionReported(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	booking := fx.mustCreate(t)
	fx.mustAssign(t, booking.ID)

	// Starting a ride that was never accepted.
	_, err := fx.svc.StartRide(ctx, fx.driver.ID, booking.ID)
	var transitionErr *StateTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("err = %v, want StateTransitionError", err)
	}
	if transitionErr.Status != models.BookingStatusDriverAcceptance {
		t.Fatalf("reported status = %v", transitionErr.Status)
	}
}

func TestCancelRefundsCreditAndPayment(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()
	fx.credits.balances[fx.passenger.ID] = 30

	req := fx.createRequest()
	req.CreditAmount = 30
	booking, err := fx.svc.CreateBooking(ctx, req)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	cancelled, err := fx.svc.CancelBooking(ctx, fx.passenger, booking.ID, "change of plans")
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}

	if cancelled.Status != models.BookingStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("after cancel: %+v", cancelled)
	}
	if cancelled.CancellationReason != "change of plans" {
		t.Fatalf("reason = %q", cancelled.CancellationReason)
	}
	if fx.credits.balances[fx.passenger.ID] != 30 {
		t.Fatalf("credit balance = %v, want the applied 30 returned", fx.credits.balances[fx.passenger.ID])
	}
	if len(fx.payments.refunds) != 1 || fx.payments.refunds[0].Amount != 70 {
		t.Fatalf("refunds = %+v, want one refund of the 70 charged", fx.payments.refunds)
	}
}

func TestCancelByStranger(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	stranger := &models.User{ID: primitive.NewObjectID(), Role: models.RolePassenger, IsActive: true}
	if err := fx.users.Create(ctx, stranger); err != nil {
		t.Fatal(err)
	}

	booking := fx.mustCreate(t)
	if _, err := fx.svc.CancelBooking(ctx, stranger, booking.ID, ""); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestCancelTerminalBooking(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	booking := fx.mustCreate(t)
	if _, err := fx.svc.CancelBooking(ctx, fx.passenger, booking.ID, "first"); err != nil {
		t.Fatalf("first cancel: %v", err)
	}

	_, err := fx.svc.CancelBooking(ctx, fx.passenger, booking.ID, "second")
	var transitionErr *StateTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("second cancel: err = %v, want StateTransitionError", err)
	}
}

// TestAcceptCancelRace races a driver acceptance against a passenger
// cancellation. Exactly one side may win; the loser must observe a state
// transition error and the stored booking must match the winner.
func TestAcceptCancelRace(t *testing.T) {
	for i := 0; i < 50; i++ {
		fx := newBookingFixture(t)
		ctx := context.Background()

		booking := fx.mustCreate(t)
		fx.mustAssign(t, booking.ID)

		var wg sync.WaitGroup
		var acceptErr, cancelErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, acceptErr = fx.svc.AcceptBooking(ctx, fx.driver.ID, booking.ID)
		}()
		go func() {
			defer wg.Done()
			_, cancelErr = fx.svc.CancelBooking(ctx, fx.passenger, booking.ID, "raced")
		}()
		wg.Wait()

		stored, err := fx.bookings.GetByID(ctx, booking.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}

		switch {
		case acceptErr == nil && cancelErr == nil:
			// Accept landing first still leaves the booking cancellable,
			// so both succeeding is legal only in that order.
			if stored.Status != models.BookingStatusCancelled {
				t.Fatalf("both won but status = %v", stored.Status)
			}
		case acceptErr == nil:
			if stored.Status != models.BookingStatusConfirmed {
				t.Fatalf("accept won but status = %v", stored.Status)
			}
			var transitionErr *StateTransitionError
			if !errors.As(cancelErr, &transitionErr) {
				t.Fatalf("cancel loser saw %v", cancelErr)
			}
		case cancelErr == nil:
			if stored.Status != models.BookingStatusCancelled {
				t.Fatalf("cancel won but status = %v", stored.Status)
			}
			var transitionErr *StateTransitionError
			if !errors.As(acceptErr, &transitionErr) {
				t.Fatalf("accept loser saw %v", acceptErr)
			}
		default:
			t.Fatalf("both sides lost: accept=%v cancel=%v", acceptErr, cancelErr)
		}
	}
}
