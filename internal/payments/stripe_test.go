package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_unit_test"

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyEventAccountUpdated(t *testing.T) {
	client := NewStripeClient("sk_test_dummy", testSecret, "https://example.com", "https://example.com")

	payload := []byte(`{"id":"evt_1","type":"account.updated","data":{"object":{"id":"acct_42","object":"account","charges_enabled":true}}}`)
	event, err := client.VerifyEvent(payload, sign(payload, testSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "account.updated", event.Type)
	assert.Equal(t, "acct_42", event.AccountID)
	assert.True(t, event.ChargesEnabled)
}

func TestVerifyEventRejectsBadSignature(t *testing.T) {
	client := NewStripeClient("sk_test_dummy", testSecret, "https://example.com", "https://example.com")

	payload := []byte(`{"id":"evt_1","type":"account.updated","data":{"object":{"id":"acct_42"}}}`)

	_, err := client.VerifyEvent(payload, sign(payload, "whsec_other", time.Now()))
	assert.Error(t, err)

	// A stale timestamp is outside the tolerance window.
	_, err = client.VerifyEvent(payload, sign(payload, testSecret, time.Now().Add(-time.Hour)))
	assert.Error(t, err)
}

func TestVerifyEventPassesThroughOtherTypes(t *testing.T) {
	client := NewStripeClient("sk_test_dummy", testSecret, "https://example.com", "https://example.com")

	payload := []byte(`{"id":"evt_2","type":"payout.paid","data":{"object":{"id":"po_1","object":"payout"}}}`)
	event, err := client.VerifyEvent(payload, sign(payload, testSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "payout.paid", event.Type)
	assert.Empty(t, event.AccountID)
	assert.False(t, event.ChargesEnabled)
}
