package memory

import (
	"context"
	"testing"
	"time"
)

func TestSignalBusFanOut(t *testing.T) {
	bus := NewSignalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := bus.Subscribe(ctx, "trades")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	b, err := bus.Subscribe(ctx, "trades")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := bus.Publish(ctx, "trades", []byte("hello")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for _, ch := range []<-chan []byte{a, b} {
		select {
		case got := <-ch:
			if string(got) != "hello" {
				t.Fatalf("payload = %q, want hello", got)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the message")
		}
	}
}

func TestSignalBusChannelIsolation(t *testing.T) {
	bus := NewSignalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	other, err := bus.Subscribe(ctx, "other")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := bus.Publish(ctx, "trades", []byte("hello")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-other:
		t.Fatalf("received %q on an unrelated channel", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSignalBusUnsubscribeOnCancel(t *testing.T) {
	bus := NewSignalBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx, "trades")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("received a message instead of close")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}

	// Publishing after cancel must not panic or deliver.
	if err := bus.Publish(context.Background(), "trades", []byte("late")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestRateLimiterFixedWindow(t *testing.T) {
	rl := NewRateLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := rl.Allow(ctx, "client", 3, time.Hour)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d denied under the limit", i+1)
		}
	}

	allowed, err := rl.Allow(ctx, "client", 3, time.Hour)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if allowed {
		t.Fatal("request over the limit allowed")
	}

	// Another key has its own window.
	allowed, err = rl.Allow(ctx, "other", 3, time.Hour)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !allowed {
		t.Fatal("independent key denied")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter()
	ctx := context.Background()

	if allowed, _ := rl.Allow(ctx, "client", 1, 10*time.Millisecond); !allowed {
		t.Fatal("first request denied")
	}
	if allowed, _ := rl.Allow(ctx, "client", 1, 10*time.Millisecond); allowed {
		t.Fatal("second request in the window allowed")
	}

	time.Sleep(15 * time.Millisecond)
	if allowed, _ := rl.Allow(ctx, "client", 1, 10*time.Millisecond); !allowed {
		t.Fatal("request after window reset denied")
	}
}
