package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/account"
	"github.com/stripe/stripe-go/v82/accountlink"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Gateway defines the payment-provider operations needed for seller
// onboarding. Implemented by StripeClient; tests substitute a fake.
type Gateway interface {
	CreateExpressAccount(ctx context.Context, email string) (string, error)
	CreateOnboardingLink(ctx context.Context, accountID string) (string, error)
	AccountChargesEnabled(ctx context.Context, accountID string) (bool, error)
}

// Event is the subset of a provider webhook event the application acts on.
type Event struct {
	Type           string
	AccountID      string
	ChargesEnabled bool
}

// WebhookVerifier checks a webhook payload against its signature header and
// extracts the account state.
type WebhookVerifier interface {
	VerifyEvent(payload []byte, sigHeader string) (Event, error)
}

// StripeClient talks to the Stripe API.
type StripeClient struct {
	webhookSecret string
	refreshURL    string
	returnURL     string
}

// NewStripeClient configures the Stripe SDK with the given secret key.
func NewStripeClient(secretKey, webhookSecret, refreshURL, returnURL string) *StripeClient {
	stripe.Key = secretKey
	return &StripeClient{
		webhookSecret: webhookSecret,
		refreshURL:    refreshURL,
		returnURL:     returnURL,
	}
}

// CreateExpressAccount allocates a new Express account for a seller and
// returns its id.
func (c *StripeClient) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
	}
	params.Context = ctx

	acct, err := account.New(params)
	if err != nil {
		return "", fmt.Errorf("create express account: %w", err)
	}
	return acct.ID, nil
}

// CreateOnboardingLink returns a provider-hosted URL that collects the
// payment and identity details needed to activate the account.
func (c *StripeClient) CreateOnboardingLink(ctx context.Context, accountID string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(c.refreshURL),
		ReturnURL:  stripe.String(c.returnURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}
	params.Context = ctx

	link, err := accountlink.New(params)
	if err != nil {
		return "", fmt.Errorf("create onboarding link: %w", err)
	}
	return link.URL, nil
}

// AccountChargesEnabled reports whether the account can accept charges.
func (c *StripeClient) AccountChargesEnabled(ctx context.Context, accountID string) (bool, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx

	acct, err := account.GetByID(accountID, params)
	if err != nil {
		return false, fmt.Errorf("fetch account %s: %w", accountID, err)
	}
	return acct.ChargesEnabled, nil
}

// VerifyEvent validates the Stripe-Signature header against the configured
// webhook secret and decodes the event. For account.updated events the
// embedded account object is extracted; other event types are returned with
// just their type so the caller can ignore them.
func (c *StripeClient) VerifyEvent(payload []byte, sigHeader string) (Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
	if err != nil {
		return Event{}, fmt.Errorf("verify webhook signature: %w", err)
	}

	ev := Event{Type: string(stripeEvent.Type)}
	if stripeEvent.Type != "account.updated" {
		return ev, nil
	}

	var acct stripe.Account
	if err := json.Unmarshal(stripeEvent.Data.Raw, &acct); err != nil {
		return Event{}, fmt.Errorf("decode account payload: %w", err)
	}
	ev.AccountID = acct.ID
	ev.ChargesEnabled = acct.ChargesEnabled
	return ev, nil
}
