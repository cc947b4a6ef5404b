package monitoring

import (
	"context"
	"time"

	"github.com/pawspace/pawspace-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Reconciler periodically sweeps users stuck in the pending seller state and
// asks the payment provider whether their account became chargeable. It is
// the safety net for webhook deliveries that never arrive.
type Reconciler struct {
	sellerSvc services.SellerServiceProvider
	schedule  cron.Schedule
	ticker    *time.Ticker
	done      chan bool
}

// NewReconciler creates a reconciler from a cron expression such as
// "@every 10m" or "*/10 * * * *".
func NewReconciler(sellerSvc services.SellerServiceProvider, scheduleExpr string) (*Reconciler, error) {
	schedule, err := cron.ParseStandard(scheduleExpr)
	if err != nil {
		return nil, err
	}
	return &Reconciler{
		sellerSvc: sellerSvc,
		schedule:  schedule,
		done:      make(chan bool),
	}, nil
}

// Run starts the reconciler's ticking loop.
func (r *Reconciler) Run() {
	log.Info().Msg("Starting seller reconciliation sweep...")
	r.ticker = time.NewTicker(30 * time.Second)
	defer r.ticker.Stop()

	nextRun := r.schedule.Next(time.Now())

	for {
		select {
		case <-r.done:
			log.Info().Msg("Stopping seller reconciliation sweep.")
			return
		case <-r.ticker.C:
			now := time.Now()
			if now.Before(nextRun) {
				continue
			}
			nextRun = r.schedule.Next(now)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			if err := r.sellerSvc.ReconcilePending(ctx); err != nil {
				log.Error().Err(err).Msg("Seller reconciliation sweep failed")
			}
			cancel()
		}
	}
}

// Stop halts the reconciler.
func (r *Reconciler) Stop() {
	r.done <- true
}
