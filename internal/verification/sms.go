package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GatewaySMSSender posts messages to an HTTP SMS gateway.
type GatewaySMSSender struct {
	URL    string
	APIKey string
	Sender string
	Client *http.Client
}

func NewGatewaySMSSender(url, apiKey, sender string) *GatewaySMSSender {
	return &GatewaySMSSender{
		URL:    url,
		APIKey: apiKey,
		Sender: sender,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GatewaySMSSender) Send(ctx context.Context, phone, message string) error {
	payload := map[string]string{
		"to":      phone,
		"from":    g.Sender,
		"message": message,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway: status %s", resp.Status)
	}
	return nil
}
