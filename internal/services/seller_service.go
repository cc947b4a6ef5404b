package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pawspace/pawspace-be/internal/models"
	"github.com/pawspace/pawspace-be/internal/payments"
	"github.com/rs/zerolog/log"
)

// SellerServiceProvider defines the interface for seller onboarding.
type SellerServiceProvider interface {
	CreateOnboardingLink(ctx context.Context, userID string) (string, error)
	ActivateByAccountID(accountID string) (bool, error)
	ReconcilePending(ctx context.Context) error
}

// SellerService drives the seller onboarding state machine:
// not_seller -> onboarding_started -> pending -> active. A payment account is
// allocated at most once per user, and activation is monotonic.
type SellerService struct {
	db       *sql.DB
	gateway  payments.Gateway
	eventSvc EventServiceProvider
}

// NewSellerService creates a new SellerService.
func NewSellerService(db *sql.DB, gateway payments.Gateway, eventSvc EventServiceProvider) *SellerService {
	return &SellerService{db: db, gateway: gateway, eventSvc: eventSvc}
}

// CreateOnboardingLink allocates a payment account for the user if they have
// none yet and returns the provider-hosted onboarding URL. A second call for
// the same user reuses the existing account.
func (s *SellerService) CreateOnboardingLink(ctx context.Context, userID string) (string, error) {
	var email, accountID string
	row := s.db.QueryRow("SELECT email, stripe_account_id FROM users WHERE id = ?", userID)
	if err := row.Scan(&email, &accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", err
	}

	if accountID == "" {
		newAccountID, err := s.gateway.CreateExpressAccount(ctx, email)
		if err != nil {
			return "", fmt.Errorf("allocate payment account: %w", err)
		}

		// The guard clause keeps a concurrent onboarding request from
		// overwriting an id that won the race.
		res, err := s.db.Exec("UPDATE users SET stripe_account_id = ? WHERE id = ? AND stripe_account_id = ''",
			newAccountID, userID)
		if err != nil {
			return "", err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if err := s.db.QueryRow("SELECT stripe_account_id FROM users WHERE id = ?", userID).Scan(&accountID); err != nil {
				return "", err
			}
		} else {
			accountID = newAccountID
		}
	}

	url, err := s.gateway.CreateOnboardingLink(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("create onboarding link: %w", err)
	}
	return url, nil
}

// ActivateByAccountID sets the seller flag for the user owning the payment
// account. The update is a pure flag set, so redelivered notifications are
// harmless; the returned bool reports whether this call performed the
// transition. An unknown account id is not an error.
func (s *SellerService) ActivateByAccountID(accountID string) (bool, error) {
	if accountID == "" {
		return false, nil
	}

	res, err := s.db.Exec("UPDATE users SET is_seller = 1 WHERE stripe_account_id = ? AND is_seller = 0", accountID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if s.eventSvc != nil {
		var userID, name string
		if err := s.db.QueryRow("SELECT id, display_name FROM users WHERE stripe_account_id = ?", accountID).
			Scan(&userID, &name); err == nil {
			s.eventSvc.CreateEvent(models.EventSellerActivated, "info",
				fmt.Sprintf("%s can now sell on PawSpace", name), &userID)
		}
	}
	return true, nil
}

// ReconcilePending sweeps users whose payment account was allocated but whose
// seller flag is still off, and activates any whose account the provider now
// reports as chargeable. Covers webhook deliveries that never arrived.
func (s *SellerService) ReconcilePending(ctx context.Context) error {
	rows, err := s.db.Query("SELECT stripe_account_id FROM users WHERE stripe_account_id != '' AND is_seller = 0")
	if err != nil {
		return err
	}
	defer rows.Close()

	var accountIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		accountIDs = append(accountIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, accountID := range accountIDs {
		enabled, err := s.gateway.AccountChargesEnabled(ctx, accountID)
		if err != nil {
			log.Warn().Err(err).Str("account_id", accountID).Msg("Failed to fetch payment account state")
			continue
		}
		if !enabled {
			continue
		}
		if activated, err := s.ActivateByAccountID(accountID); err != nil {
			log.Error().Err(err).Str("account_id", accountID).Msg("Failed to activate seller")
		} else if activated {
			log.Info().Str("account_id", accountID).Msg("Seller activated by reconciliation sweep")
		}
	}
	return nil
}
