package ratelimiter

import (
	"testing"
	"time"
)

func TestFixedWindow(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewFixedWindowLimiter(2, 5*time.Second)
	rl.now = func() time.Time { return clock }

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow("1.1.1.1"); !ok {
			t.Fatalf("request %d should pass", i+1)
		}
	}

	clock = clock.Add(2 * time.Second)
	ok, retry := rl.Allow("1.1.1.1")
	if ok {
		t.Fatal("third request in the window should be limited")
	}
	if retry != 3*time.Second {
		t.Fatalf("retry after = %v, want 3s", retry)
	}

	if ok, _ := rl.Allow("2.2.2.2"); !ok {
		t.Fatal("other clients have their own window")
	}

	clock = clock.Add(3 * time.Second)
	if ok, _ := rl.Allow("1.1.1.1"); !ok {
		t.Fatal("a new window should reset the count")
	}
}

func TestSweep(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewFixedWindowLimiter(1, time.Second)
	rl.now = func() time.Time { return clock }

	rl.Allow("a")
	clock = clock.Add(500 * time.Millisecond)
	rl.Allow("b")
	clock = clock.Add(600 * time.Millisecond)

	if n := rl.Sweep(); n != 1 {
		t.Fatalf("swept %d windows, want 1", n)
	}
	if _, ok := rl.clients["b"]; !ok {
		t.Fatal("open window must be kept")
	}
}
