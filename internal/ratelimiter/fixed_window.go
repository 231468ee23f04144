package ratelimiter

import (
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// FixedWindowRateLimiter allows limit requests per key in each window. A
// key's window opens with its first request.
type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]*window //string:client IP
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewFixedWindowLimiter(limit int, w time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  w,
		now:     time.Now,
	}
}

func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	win, ok := rl.clients[key]
	if !ok || now.Sub(win.start) >= rl.window {
		rl.clients[key] = &window{start: now, count: 1}
		return true, 0
	}
	if win.count < rl.limit {
		win.count++
		return true, 0
	}
	return false, win.start.Add(rl.window).Sub(now)
}

// Sweep drops windows that already closed. Run it periodically so idle
// clients do not accumulate.
func (rl *FixedWindowRateLimiter) Sweep() int {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	removed := 0
	for k, win := range rl.clients {
		if now.Sub(win.start) >= rl.window {
			delete(rl.clients, k)
			removed++
		}
	}
	return removed
}
