package handlers

import (
	"io"
	"net/http"

	"github.com/pawspace/pawspace-be/internal/payments"
	"github.com/pawspace/pawspace-be/internal/services"
	"github.com/rs/zerolog/log"
)

// maxWebhookBodyBytes matches Stripe's documented payload cap.
const maxWebhookBodyBytes = 65536

// WebhookHandler receives payment-account notifications from the provider.
type WebhookHandler struct {
	verifier  payments.WebhookVerifier
	sellerSvc services.SellerServiceProvider
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(verifier payments.WebhookVerifier, sellerSvc services.SellerServiceProvider) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, sellerSvc: sellerSvc}
}

// Handle verifies the signature over the raw body and, on an account.updated
// event whose account can accept charges, activates the matching seller.
// Irrelevant event types and unknown accounts are acknowledged with 200 so
// the provider does not keep redelivering them; redelivered activation events
// are no-ops.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read webhook body")
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	event, err := h.verifier.VerifyEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Warn().Err(err).Msg("Webhook signature verification failed")
		http.Error(w, "Webhook signature verification failed", http.StatusBadRequest)
		return
	}

	if event.Type == "account.updated" && event.ChargesEnabled {
		activated, err := h.sellerSvc.ActivateByAccountID(event.AccountID)
		if err != nil {
			log.Error().Err(err).Str("account_id", event.AccountID).Msg("Failed to activate seller from webhook")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if activated {
			log.Info().Str("account_id", event.AccountID).Msg("Seller activated by webhook")
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Received"))
}
