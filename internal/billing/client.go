// Package billing talks to a Stripe-compatible checkout API to sell the pro
// tier. Only two calls are used: create a checkout session and read back its
// payment status.
package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

var ErrNotFound = errors.New("billing: checkout session not found")

// Client wraps the checkout session API of stripe-go.
type Client struct {
	sessions   session.Client
	priceID    string
	returnURL  string
	httpClient *http.Client
}

// NewClient returns a client for the API at baseURL. returnURL is the public
// base URL of this service; checkout redirects back to it.
func NewClient(baseURL, secretKey, priceID, returnURL string) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        httpClient,
		URL:               stripe.String(strings.TrimRight(baseURL, "/")),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return &Client{
		sessions:   session.Client{B: backend, Key: secretKey},
		priceID:    priceID,
		returnURL:  strings.TrimRight(returnURL, "/"),
		httpClient: httpClient,
	}
}

// Checkout is a created payment session.
type Checkout struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Verification is the payment state of a checkout session.
type Verification struct {
	ID                string `json:"id"`
	PaymentStatus     string `json:"payment_status"`
	ClientReferenceID string `json:"client_reference_id"`
}

func (v *Verification) Paid() bool {
	switch stripe.CheckoutSessionPaymentStatus(v.PaymentStatus) {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return true
	}
	return false
}

// CreateCheckout opens a one-off payment session for userID and returns the
// URL to redirect the user to.
func (c *Client) CreateCheckout(ctx context.Context, userID, email string) (*Checkout, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(c.priceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(userID),
		SuccessURL:        stripe.String(c.returnURL + "/?checkout_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(c.returnURL + "/?checkout=cancelled"),
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	cs, err := c.sessions.New(params)
	if err != nil {
		return nil, providerError("create checkout", err)
	}
	if cs.URL == "" {
		return nil, fmt.Errorf("create checkout: response has no url")
	}
	return &Checkout{ID: cs.ID, URL: cs.URL}, nil
}

// VerifySession fetches the payment state of a checkout session.
func (c *Client) VerifySession(ctx context.Context, checkoutID string) (*Verification, error) {
	if checkoutID == "" {
		return nil, ErrNotFound
	}
	cs, err := c.sessions.Get(checkoutID, &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, providerError("verify checkout", err)
	}
	return &Verification{
		ID:                cs.ID,
		PaymentStatus:     string(cs.PaymentStatus),
		ClientReferenceID: cs.ClientReferenceID,
	}, nil
}

func providerError(op string, err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing {
		return ErrNotFound
	}
	return fmt.Errorf("%s: status %d: %s", op, stripeErr.HTTPStatusCode, stripeErr.Msg)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
