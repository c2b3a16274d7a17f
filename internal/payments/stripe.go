package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StripeProvider implements Provider against the Stripe checkout REST API.
type StripeProvider struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewStripeProvider(apiKey string) *StripeProvider {
	return &StripeProvider{
		APIKey:     apiKey,
		BaseURL:    "https://api.stripe.com",
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *StripeProvider) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("line_items[0][price_data][currency]", req.Currency)
	form.Set("line_items[0][price_data][product_data][name]", "Order")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(toMinorUnits(req.Amount), 10))
	form.Set("line_items[0][quantity]", "1")
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var parsed struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := p.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &parsed); err != nil {
		return nil, err
	}
	return &Session{ID: parsed.ID, URL: parsed.URL}, nil
}

func (p *StripeProvider) GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	var parsed struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
		AmountTotal   int64  `json:"amount_total"`
		Currency      string `json:"currency"`
	}
	if err := p.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+sessionID, nil, &parsed); err != nil {
		return nil, err
	}

	status := StatusPending
	switch {
	case parsed.PaymentStatus == "paid":
		status = StatusPaid
	case parsed.Status == "expired":
		status = StatusExpired
	}

	return &SessionStatus{
		Status:        status,
		PaymentStatus: parsed.PaymentStatus,
		AmountTotal:   float64(parsed.AmountTotal) / 100,
		Currency:      parsed.Currency,
	}, nil
}

func (p *StripeProvider) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(p.APIKey, "")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("stripe request: status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
