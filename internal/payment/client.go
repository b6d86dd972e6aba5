// Package payment talks to the external payment gateway. Only the
// abstract initiate/notify contract matters here; the gateway's own
// protocol stays behind its API.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alexzinovi/Skyparking-sub000/internal/config"
	"golang.org/x/oauth2/clientcredentials"
)

type Client struct {
	gatewayURL   string
	redirectBase string
	httpClient   *http.Client
}

// NewClient builds a gateway client authorized via OAuth2 client
// credentials against the gateway's token endpoint. With no gateway
// configured the client is nil and payment endpoints report the
// collaborator as unavailable.
func NewClient(cfg *config.Config) *Client {
	if cfg.PaymentGatewayURL == "" {
		return nil
	}
	cc := clientcredentials.Config{
		ClientID:     cfg.PaymentClientID,
		ClientSecret: cfg.PaymentClientSecret,
		TokenURL:     cfg.PaymentTokenURL,
	}
	httpClient := cc.Client(context.Background())
	httpClient.Timeout = 10 * time.Second
	return &Client{
		gatewayURL:   cfg.PaymentGatewayURL,
		redirectBase: cfg.PaymentRedirectBase,
		httpClient:   httpClient,
	}
}

type initiateRequest struct {
	BookingID string  `json:"booking_id"`
	Amount    float64 `json:"amount"`
	Customer  string  `json:"customer"`
}

type initiateResponse struct {
	PaymentID   string `json:"payment_id"`
	RedirectURL string `json:"redirect_url"`
}

// Initiate registers a payment with the gateway and returns the
// redirect handle the customer is sent to.
func (c *Client) Initiate(ctx context.Context, bookingID string, amount float64, customer string) (string, string, error) {
	body, err := json.Marshal(initiateRequest{
		BookingID: bookingID,
		Amount:    amount,
		Customer:  customer,
	})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("payment gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", "", fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var out initiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	return out.PaymentID, out.RedirectURL, nil
}

// WebhookPayload is the gateway's notify callback body mapping its
// external payment id back to a booking.
type WebhookPayload struct {
	PaymentID string `json:"payment_id"`
	BookingID string `json:"booking_id"`
	Status    string `json:"status"` // "paid" | "failed"
}
