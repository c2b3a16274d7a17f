package payments

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// DevProvider is an in-memory stand-in used when no processor credentials
// are configured. Sessions are marked paid on first status poll so local
// checkout flows can complete end to end.
type DevProvider struct {
	mu       sync.Mutex
	sessions map[string]SessionRequest
}

func NewDevProvider() *DevProvider {
	return &DevProvider{sessions: make(map[string]SessionRequest)}
}

func (p *DevProvider) CreateSession(_ context.Context, req SessionRequest) (*Session, error) {
	id := "dev_" + uuid.NewString()

	p.mu.Lock()
	p.sessions[id] = req
	p.mu.Unlock()

	return &Session{ID: id, URL: "/dev/checkout/" + id}, nil
}

func (p *DevProvider) GetSessionStatus(_ context.Context, sessionID string) (*SessionStatus, error) {
	p.mu.Lock()
	req, ok := p.sessions[sessionID]
	p.mu.Unlock()

	if !ok {
		return &SessionStatus{Status: StatusExpired, PaymentStatus: "unpaid"}, nil
	}
	return &SessionStatus{
		Status:        StatusPaid,
		PaymentStatus: "paid",
		AmountTotal:   req.Amount,
		Currency:      req.Currency,
	}, nil
}
