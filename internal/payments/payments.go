package payments

import "context"

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
	StatusExpired = "expired"
)

// SessionRequest describes a checkout session to open with the processor.
type SessionRequest struct {
	Amount     float64
	Currency   string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// Session is an opened checkout session the client is redirected to.
type Session struct {
	ID  string
	URL string
}

// SessionStatus is the processor-side state of a session.
type SessionStatus struct {
	Status        string
	PaymentStatus string
	AmountTotal   float64
	Currency      string
}

// Provider is the payment-processor boundary. The marketplace never talks
// to the processor outside this interface.
type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error)
}
