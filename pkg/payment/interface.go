package payment

import "context"

// Provider collects and refunds payments. The pay-now booking path confirms
// a payment through ProcessPayment before any booking row is written.
type Provider interface {
	ProcessPayment(ctx context.Context, request *PaymentRequest) (*PaymentResponse, error)
	RefundPayment(ctx context.Context, request *RefundRequest) (*RefundResponse, error)
	HasPaymentMethodOnFile(ctx context.Context, customerID string) (bool, error)
}

type PaymentRequest struct {
	PaymentMethodID string            `json:"payment_method_id"`
	Amount          float64           `json:"amount"`
	Currency        string            `json:"currency"`
	Description     string            `json:"description"`
	CustomerID      string            `json:"customer_id"`
	Metadata        map[string]string `json:"metadata"`
}

type PaymentResponse struct {
	TransactionID string  `json:"transaction_id"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	CreatedAt     int64   `json:"created_at"`
}

// Succeeded reports whether the charge actually completed; anything else is
// treated as a payment failure by the booking flow.
func (p *PaymentResponse) Succeeded() bool {
	return p.Status == "succeeded"
}

type RefundRequest struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Reason        string  `json:"reason"`
}

type RefundResponse struct {
	RefundID  string  `json:"refund_id"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	CreatedAt int64   `json:"created_at"`
}
