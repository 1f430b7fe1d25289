// Package background contains services that run independently of the HTTP
// request-response cycle. The one job here is housekeeping for the
// password-reset lifecycle: reset tokens already expire logically (the redeem
// query checks the expiry), but the stale hashes would otherwise sit in the
// users table forever, so a sweeper clears them on a timer.
package background

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// sweepInterval is how often expired reset tokens are cleared. The tokens are
// unusable the moment they expire; the sweep only reclaims the columns, so a
// coarse interval is fine.
const sweepInterval = 15 * time.Minute

// sweepTimeout bounds one sweep so a stuck database cannot wedge the loop.
const sweepTimeout = 30 * time.Second

// StartResetTokenSweeper runs the reset-token sweeper until stopChan closes.
// The returned WaitGroup is done once the final sweep in flight has finished,
// so shutdown can wait on it before closing the pool.
func StartResetTokenSweeper(dbPool *pgxpool.Pool, stopChan <-chan struct{}) *sync.WaitGroup {
	log.Println("Reset-token sweeper starting...")

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		defer log.Println("Reset-token sweeper stopped.")

		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sweepExpiredTokens(dbPool)
			case <-stopChan:
				return
			}
		}
	}()

	return &wg
}

// sweepExpiredTokens clears the token/expiry pair of every account whose
// reset window has elapsed. Failures are logged and retried on the next tick;
// there is nothing a caller could do differently.
func sweepExpiredTokens(dbPool *pgxpool.Pool) {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	tag, err := dbPool.Exec(ctx,
		`UPDATE users
		 SET reset_password_token = NULL, reset_password_expire = NULL
		 WHERE reset_password_token IS NOT NULL AND reset_password_expire < now()`)
	if err != nil {
		log.Printf("Reset-token sweep failed: %v", err)
		return
	}
	if n := tag.RowsAffected(); n > 0 {
		log.Printf("Reset-token sweep cleared %d expired token(s)", n)
	}
}
