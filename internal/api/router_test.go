package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pawspace/pawspace-be/internal/auth"
	"github.com/pawspace/pawspace-be/internal/database"
	"github.com/pawspace/pawspace-be/internal/monitoring"
	"github.com/pawspace/pawspace-be/internal/payments"
	"github.com/pawspace/pawspace-be/internal/services"
	"github.com/pawspace/pawspace-be/internal/storage"
	"github.com/pawspace/pawspace-be/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

type fakeGateway struct {
	accountsCreated int
	chargesEnabled  map[string]bool
}

func (g *fakeGateway) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	g.accountsCreated++
	id := fmt.Sprintf("acct_%d", g.accountsCreated)
	g.chargesEnabled[id] = false
	return id, nil
}

func (g *fakeGateway) CreateOnboardingLink(ctx context.Context, accountID string) (string, error) {
	return "https://connect.stripe.com/setup/" + accountID, nil
}

func (g *fakeGateway) AccountChargesEnabled(ctx context.Context, accountID string) (bool, error) {
	return g.chargesEnabled[accountID], nil
}

type testEnv struct {
	server  *httptest.Server
	db      *sql.DB
	gateway *fakeGateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	auth.Init("test-secret")

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	media, err := storage.NewMediaStore(t.TempDir())
	require.NoError(t, err)

	gateway := &fakeGateway{chargesEnabled: make(map[string]bool)}
	verifier := payments.NewStripeClient("sk_test_dummy", testWebhookSecret, "https://example.com", "https://example.com")

	hub := websocket.NewHub()
	go hub.Run()

	eventService := services.NewEventService(db, hub)
	userService := services.NewUserService(db, eventService)
	listingService := services.NewListingService(db, eventService)
	forumService := services.NewForumService(db, eventService)
	favoriteService := services.NewFavoriteService(db)
	sellerService := services.NewSellerService(db, gateway, eventService)

	rateLimiter := NewRateLimiter(DefaultRateLimiterConfig())
	t.Cleanup(rateLimiter.Stop)

	router := NewRouter(hub, userService, listingService, forumService,
		favoriteService, sellerService, eventService, verifier, media,
		monitoring.NewStatusService(t.TempDir()), rateLimiter, "http://localhost:3000")

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, db: db, gateway: gateway}
}

func (e *testEnv) postJSON(t *testing.T, path, token string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) getJSON(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// register creates an account through the API and returns its token and id.
func (e *testEnv) register(t *testing.T, name, email string) (token, userID string) {
	t.Helper()
	resp := e.postJSON(t, "/api/v1/auth/register", "", map[string]string{
		"displayName":     name,
		"email":           email,
		"password":        "hunter22",
		"confirmPassword": "hunter22",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeBody(t, resp, &body)
	return body.Token, body.User.ID
}

// signWebhookPayload produces a Stripe-Signature header for the payload.
func signWebhookPayload(payload []byte, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func accountUpdatedPayload(accountID string, chargesEnabled bool) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "account.updated",
		"api_version": "2025-03-31",
		"data": {"object": {"id": %q, "object": "account", "charges_enabled": %t}}
	}`, accountID, chargesEnabled))
}

func (e *testEnv) deliverWebhook(t *testing.T, payload []byte, signature string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/webhook", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Stripe-Signature", signature)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) isSeller(t *testing.T, userID string) bool {
	t.Helper()
	var isSeller bool
	require.NoError(t, e.db.QueryRow("SELECT is_seller FROM users WHERE id = ?", userID).Scan(&isSeller))
	return isSeller
}

func TestRegisterRejectsPasswordMismatchBeforeStore(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/auth/register", "", map[string]string{
		"displayName":     "Jane Smith",
		"email":           "jane@example.com",
		"password":        "hunter22",
		"confirmPassword": "different",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// No account was created.
	var count int
	require.NoError(t, env.db.QueryRow("SELECT COUNT(1) FROM users").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestAuthMeRecreatesMissingProfile(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.register(t, "Jane Smith", "jane@example.com")

	resp := env.getJSON(t, "/api/v1/auth/me", token)
	var me struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &me)
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "jane@example.com", me.Email)

	// The profile row vanished but the token is still valid: /auth/me
	// recreates the profile from the token's identity claims.
	_, err := env.db.Exec("DELETE FROM users WHERE id = ?", userID)
	require.NoError(t, err)

	resp = env.getJSON(t, "/api/v1/auth/me", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &me)
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "jane@example.com", me.Email)
}

func TestOnboardingLinkRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/seller/onboarding-link", "", map[string]string{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// No payment account was allocated.
	assert.Equal(t, 0, env.gateway.accountsCreated)
}

func TestOnboardingLinkRejectsForeignUID(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "Jane Smith", "jane@example.com")

	resp := env.postJSON(t, "/api/v1/seller/onboarding-link", token, map[string]string{"uid": "someone-else"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, env.gateway.accountsCreated)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.register(t, "Jane Smith", "jane@example.com")

	resp := env.postJSON(t, "/api/v1/seller/onboarding-link", token, map[string]string{})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := accountUpdatedPayload("acct_1", true)
	resp = env.deliverWebhook(t, payload, "t=123,v1=deadbeef")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.isSeller(t, userID))
}

func TestWebhookActivatesSellerIdempotently(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.register(t, "Jane Smith", "jane@example.com")

	resp := env.postJSON(t, "/api/v1/seller/onboarding-link", token, map[string]string{})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.False(t, env.isSeller(t, userID))

	payload := accountUpdatedPayload("acct_1", true)
	signature := signWebhookPayload(payload, time.Now())

	resp = env.deliverWebhook(t, payload, signature)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.isSeller(t, userID))

	// Redelivering the identical event is a harmless no-op.
	resp = env.deliverWebhook(t, payload, signWebhookPayload(payload, time.Now()))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.isSeller(t, userID))
}

func TestWebhookIgnoresIrrelevantEvents(t *testing.T) {
	env := newTestEnv(t)

	payload := []byte(`{"id": "evt_2", "type": "payout.paid", "data": {"object": {"id": "po_1", "object": "payout"}}}`)
	resp := env.deliverWebhook(t, payload, signWebhookPayload(payload, time.Now()))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMarketplaceAndForumFlow(t *testing.T) {
	env := newTestEnv(t)
	sellerToken, sellerID := env.register(t, "Jane Smith", "jane@example.com")
	buyerToken, _ := env.register(t, "Mike Johnson", "mike@example.com")

	// A buyer without an activated seller account cannot list items.
	resp := env.postJSON(t, "/api/v1/listings", buyerToken, map[string]interface{}{
		"title": "Dog Bed - Large", "description": "Comfy", "price": 45.99,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Onboard and activate the seller via webhook.
	resp = env.postJSON(t, "/api/v1/seller/onboarding-link", sellerToken, map[string]string{})
	var link struct {
		URL string `json:"url"`
	}
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &link)
	assert.Contains(t, link.URL, "connect.stripe.com")

	payload := accountUpdatedPayload("acct_1", true)
	resp = env.deliverWebhook(t, payload, signWebhookPayload(payload, time.Now()))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.isSeller(t, sellerID))

	// Create two listings and search for one.
	resp = env.postJSON(t, "/api/v1/listings", sellerToken, map[string]interface{}{
		"title":       "Dog Bed - Large",
		"description": "Comfortable large dog bed suitable for medium to large breeds.",
		"price":       45.99,
		"condition":   "Good",
		"category":    "Beds",
	})
	var bed struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &bed)

	resp = env.postJSON(t, "/api/v1/listings", sellerToken, map[string]interface{}{
		"title":       "Puppy Collar Set",
		"description": "Set of 3 adjustable puppy collars.",
		"price":       15.50,
		"condition":   "Like New",
		"category":    "Accessories",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.getJSON(t, "/api/v1/listings?q=bed", "")
	var results []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "Dog Bed - Large", results[0].Title)

	// The buyer favorites the bed and finds it in their saved list.
	resp = env.postJSON(t, "/api/v1/favorites/"+bed.ID, buyerToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.getJSON(t, "/api/v1/favorites", buyerToken)
	var favorites []struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &favorites)
	require.Len(t, favorites, 1)
	assert.Equal(t, bed.ID, favorites[0].ID)

	// Forum: post a question, comment on it, counter reflects the comment.
	resp = env.postJSON(t, "/api/v1/forum/posts", buyerToken, map[string]string{
		"title":    "Recommendations for dog food allergies?",
		"content":  "Looking for limited ingredient diets.",
		"category": "Advice",
	})
	var post struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &post)

	resp = env.postJSON(t, "/api/v1/forum/posts/"+post.ID+"/comments", sellerToken, map[string]string{
		"content": "We had success with a salmon-based food.",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.getJSON(t, "/api/v1/forum/posts/"+post.ID, "")
	var thread struct {
		Post struct {
			CommentCount int `json:"commentCount"`
		} `json:"post"`
		Comments []struct {
			Content string `json:"content"`
		} `json:"comments"`
	}
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &thread)
	assert.Equal(t, 1, thread.Post.CommentCount)
	require.Len(t, thread.Comments, 1)

	// The activity feed recorded the session's events.
	resp = env.getJSON(t, "/api/v1/events?limit=50", buyerToken)
	var events []struct {
		Type string `json:"type"`
	}
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &events)
	types := make(map[string]bool)
	for _, ev := range events {
		types[ev.Type] = true
	}
	assert.True(t, types["user.registered"])
	assert.True(t, types["listing.created"])
	assert.True(t, types["seller.activated"])
	assert.True(t, types["forum.comment.created"])
}

func TestGetListingNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.getJSON(t, "/api/v1/listings/does-not-exist", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
