package main

import (
	"time"

	"storefront/internal/domain/wishlist"
	"storefront/internal/ratelimiter"
)

// sweep drops closed rate limiter windows and idle wishlists every minute.
func (app *application) sweep(rl *ratelimiter.FixedWindowRateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		app.sweepOnce(rl)
	}
}

func (app *application) sweepOnce(rl *ratelimiter.FixedWindowRateLimiter) {
	if rl != nil {
		if n := rl.Sweep(); n > 0 {
			app.logger.Debugw("rate limiter windows swept", "count", n)
		}
	}

	idle := app.config.wishlist.idleTimeout
	if idle <= 0 {
		idle = wishlist.DefaultIdleTimeout
	}
	if n := app.wishlists.Sweep(idle); n > 0 {
		app.logger.Debugw("idle wishlists evicted", "count", n, "remaining", app.wishlists.Len())
	}
}
