package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SVG-campus/ContractKit/config"
)

// StripeService talks to the Stripe REST API with the account's secret
// key. The secret never leaves this process; browsers only ever see the
// checkout URL and session id.
type StripeService struct {
	config     *config.StripeConfig
	httpClient *http.Client
}

// CheckoutSession is the subset of Stripe's checkout session object the
// billing flow reads.
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	Customer      string `json:"customer"`
	Subscription  string `json:"subscription"`
	CustomerEmail string `json:"customer_email"`
}

type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewStripeService(cfg *config.StripeConfig) *StripeService {
	return &StripeService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateCheckoutSession starts a subscription checkout for the account's
// email and returns the hosted checkout URL plus session id.
// DefaultPriceID returns the configured subscription price. Safe on a
// nil receiver so the gate can validate before billing is configured.
func (s *StripeService) DefaultPriceID() string {
	if s == nil {
		return ""
	}
	return s.config.PriceID
}

func (s *StripeService) CreateCheckoutSession(ctx context.Context, email, priceID, successURL, cancelURL string) (*CheckoutSession, error) {
	if priceID == "" {
		priceID = s.config.PriceID
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer_email", email)
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.APIURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return s.do(req)
}

// GetCheckoutSession fetches a session after the client returns from
// checkout, yielding the customer and subscription ids.
func (s *StripeService) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/v1/checkout/sessions/%s", s.config.APIURL, url.PathEscape(sessionID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.SecretKey)

	return s.do(req)
}

func (s *StripeService) do(req *http.Request) (*CheckoutSession, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr stripeErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe API error: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("stripe API error: status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}

	return &session, nil
}
