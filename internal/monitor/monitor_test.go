package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pmfollow/followbot/internal/config"
	"github.com/pmfollow/followbot/internal/domain"
	"github.com/pmfollow/followbot/internal/engine"
)

// scriptedRand replays fixed draws for the synthetic feed.
type scriptedRand struct {
	vals []float64
	i    int
}

func (s *scriptedRand) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

// stubSource emits one fixed-amount trade per poll.
type stubSource struct {
	amount float64
}

func (s stubSource) Next(_ context.Context, wallet domain.TrackedWallet) (domain.WhaleTradeEvent, error) {
	return domain.WhaleTradeEvent{
		ID:            "wt_" + uuid.NewString(),
		WalletAddress: wallet.Address,
		WalletLabel:   wallet.Label,
		MarketID:      "mkt_btc_100k",
		Outcome:       "Yes",
		Side:          domain.SideBuy,
		Amount:        s.amount,
		Price:         0.5,
		Timestamp:     time.Now().UTC(),
	}, nil
}

func fastSettings(t *testing.T) *config.Store {
	t.Helper()
	cfg := config.Defaults()
	cfg.Follow.MonitorIntervalMs = 5
	return config.NewStore(&cfg)
}

func TestSyntheticSourceFields(t *testing.T) {
	// Draws: emit, market, outcome, side, amount, price.
	rng := &scriptedRand{vals: []float64{0.0, 0.0, 0.0, 0.6, 0.0, 0.0}}
	src := NewSyntheticSource(rng, 1.0)

	wallet := domain.TrackedWallet{Address: "0xabc", Label: "Whale Alpha"}
	ev, err := src.Next(context.Background(), wallet)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}

	if !strings.HasPrefix(ev.ID, "wt_") {
		t.Fatalf("id = %q, want wt_ prefix", ev.ID)
	}
	if ev.WalletAddress != "0xabc" || ev.WalletLabel != "Whale Alpha" {
		t.Fatalf("wallet fields = %q/%q", ev.WalletAddress, ev.WalletLabel)
	}
	if ev.MarketID != sampleMarkets[0].ID || ev.Outcome != "Yes" {
		t.Fatalf("market = %q outcome = %q", ev.MarketID, ev.Outcome)
	}
	if ev.TokenID != fmt.Sprintf("%s_0", sampleMarkets[0].ID) {
		t.Fatalf("tokenId = %q", ev.TokenID)
	}
	if ev.Side != domain.SideBuy {
		t.Fatalf("side = %s, want BUY", ev.Side)
	}
	if ev.Amount != 100 {
		t.Fatalf("amount = %v, want 100 at the lower edge", ev.Amount)
	}
	if ev.Price != 0.10 {
		t.Fatalf("price = %v, want 0.10 at the lower edge", ev.Price)
	}
}

func TestSyntheticSourceRanges(t *testing.T) {
	src := NewSyntheticSource(engine.NewRandomSource(7), 1.0)
	wallet := domain.TrackedWallet{Address: "0xabc", Label: "W"}

	for i := 0; i < 200; i++ {
		ev, err := src.Next(context.Background(), wallet)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if ev.Amount < 100 || ev.Amount >= 10000 {
			t.Fatalf("amount %v out of [100, 10000)", ev.Amount)
		}
		if ev.Price < 0.10 || ev.Price > 0.90 {
			t.Fatalf("price %v out of [0.10, 0.90]", ev.Price)
		}
		if !ev.Side.Valid() {
			t.Fatalf("invalid side %q", ev.Side)
		}
	}
}

func TestSyntheticSourceNoTrade(t *testing.T) {
	src := NewSyntheticSource(engine.NewRandomSource(7), 0)
	if _, err := src.Next(context.Background(), domain.TrackedWallet{}); err != ErrNoTrade {
		t.Fatalf("error = %v, want ErrNoTrade", err)
	}
}

func TestMonitorLifecycle(t *testing.T) {
	settings := fastSettings(t)
	m := New(settings, stubSource{amount: 5000}, config.MonitorConfig{
		MinWhaleAmount: 100,
		BufferSize:     64,
	}, slog.Default())

	if m.Status() != domain.MonitorStopped {
		t.Fatalf("initial status = %s, want STOPPED", m.Status())
	}
	if m.Start() {
		t.Fatal("Start before Run succeeded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx)
	}()

	// Run stores the base context asynchronously.
	deadline := time.Now().Add(time.Second)
	for !m.Start() {
		if time.Now().After(deadline) {
			t.Fatal("Start never succeeded")
		}
		time.Sleep(time.Millisecond)
	}
	if m.Start() {
		t.Fatal("second Start reported a state change")
	}
	if m.Status() != domain.MonitorRunning {
		t.Fatalf("status = %s, want RUNNING", m.Status())
	}

	select {
	case ev := <-m.Events():
		if ev.Amount != 5000 {
			t.Fatalf("amount = %v, want 5000", ev.Amount)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event emitted")
	}
	if m.Uptime() <= 0 {
		t.Fatal("uptime not positive while running")
	}

	if !m.Stop() {
		t.Fatal("Stop reported no state change")
	}
	if m.Stop() {
		t.Fatal("second Stop reported a state change")
	}
	if m.Status() != domain.MonitorStopped {
		t.Fatalf("status = %s, want STOPPED", m.Status())
	}
	if m.Uptime() != 0 {
		t.Fatalf("uptime = %v while stopped, want 0", m.Uptime())
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// The event channel closes on shutdown so the consumer can drain.
	for {
		if _, ok := <-m.Events(); !ok {
			return
		}
	}
}

func TestMonitorFiltersSmallTrades(t *testing.T) {
	settings := fastSettings(t)
	m := New(settings, stubSource{amount: 50}, config.MonitorConfig{
		MinWhaleAmount: 100,
		BufferSize:     16,
		AutoStart:      true,
	}, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx)
	}()

	select {
	case ev, ok := <-m.Events():
		if ok {
			t.Fatalf("event %v emitted below threshold", ev.Amount)
		}
	case <-time.After(time.Second):
		t.Fatal("event channel never closed")
	}
	<-done
}
