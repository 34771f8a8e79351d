package follower

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/pmfollow/followbot/internal/cache/memory"
	"github.com/pmfollow/followbot/internal/config"
	"github.com/pmfollow/followbot/internal/domain"
	"github.com/pmfollow/followbot/internal/ledger"
	"github.com/pmfollow/followbot/internal/notify"
)

// stubExecutor returns a canned fill, or blocks until the context expires.
type stubExecutor struct {
	trade domain.FollowTrade
	block bool
}

func (s *stubExecutor) Execute(ctx context.Context, _ domain.WhaleTradeEvent, _ domain.FollowConfig) (domain.FollowTrade, error) {
	if s.block {
		<-ctx.Done()
		return domain.FollowTrade{}, ctx.Err()
	}
	return s.trade, nil
}

func testWhaleEvent(id string) domain.WhaleTradeEvent {
	return domain.WhaleTradeEvent{
		ID:            id,
		WalletAddress: "0xabc",
		WalletLabel:   "Whale Alpha",
		MarketID:      "mkt_btc_100k",
		Outcome:       "Yes",
		Side:          domain.SideBuy,
		Amount:        1000,
		Price:         0.5,
		Timestamp:     time.Now().UTC(),
	}
}

type fixture struct {
	follower *Follower
	ledger   *ledger.Ledger
	settings *config.Store
	bus      *memory.SignalBus
}

func newFixture(t *testing.T, exec *stubExecutor, autoExecute bool) *fixture {
	t.Helper()

	cfg := config.Defaults()
	cfg.Follow.AutoExecute = autoExecute
	settings := config.NewStore(&cfg)
	l := ledger.New()
	bus := memory.NewSignalBus()
	notifier := notify.New(nil, settings, slog.Default())

	return &fixture{
		follower: New(l, exec, settings, bus, notifier, 50*time.Millisecond, slog.Default()),
		ledger:   l,
		settings: settings,
		bus:      bus,
	}
}

// run feeds the events through the follower and waits for Run to return.
func (f *fixture) run(t *testing.T, events ...domain.WhaleTradeEvent) {
	t.Helper()

	ch := make(chan domain.WhaleTradeEvent, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)

	done := make(chan error, 1)
	go func() { done <- f.follower.Run(context.Background(), ch) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("follower did not finish")
	}
}

func TestFollowerRecordsWhaleTrade(t *testing.T) {
	f := newFixture(t, &stubExecutor{}, false)

	subCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := f.bus.Subscribe(subCtx, domain.ChannelWhaleTrades)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	f.run(t, testWhaleEvent("wt_1"))

	whales, err := f.ledger.ListWhale(context.Background(), domain.ListOpts{})
	if err != nil {
		t.Fatalf("ListWhale: %v", err)
	}
	if len(whales) != 1 || whales[0].ID != "wt_1" {
		t.Fatalf("whales = %+v, want one wt_1", whales)
	}

	// AutoExecute off: no follow trade.
	follows, err := f.ledger.ListFollow(context.Background(), domain.ListOpts{})
	if err != nil {
		t.Fatalf("ListFollow: %v", err)
	}
	if len(follows) != 0 {
		t.Fatalf("follows = %+v, want none", follows)
	}

	select {
	case raw := <-msgs:
		var ev domain.BusEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("unmarshal bus event: %v", err)
		}
		if ev.Type != "whale_trade" {
			t.Fatalf("bus event type = %q, want whale_trade", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no bus event published")
	}
}

func TestFollowerDropsDuplicates(t *testing.T) {
	f := newFixture(t, &stubExecutor{}, false)

	f.run(t, testWhaleEvent("wt_1"), testWhaleEvent("wt_1"))

	whales, err := f.ledger.ListWhale(context.Background(), domain.ListOpts{})
	if err != nil {
		t.Fatalf("ListWhale: %v", err)
	}
	if len(whales) != 1 {
		t.Fatalf("whales = %d, want 1", len(whales))
	}
}

func TestFollowerAutoExecutes(t *testing.T) {
	now := time.Now().UTC()
	exec := &stubExecutor{trade: domain.FollowTrade{
		Status:        domain.StatusExecuted,
		FollowAmount:  100,
		ExecutedPrice: 0.503,
		Slippage:      0.005,
		PnL:           42.5,
		ExecutedAt:    &now,
	}}
	f := newFixture(t, exec, true)

	f.run(t, testWhaleEvent("wt_1"))

	follows, err := f.ledger.ListFollow(context.Background(), domain.ListOpts{})
	if err != nil {
		t.Fatalf("ListFollow: %v", err)
	}
	if len(follows) != 1 {
		t.Fatalf("follows = %d, want 1", len(follows))
	}

	got := follows[0]
	if got.Status != domain.StatusExecuted {
		t.Fatalf("status = %s, want EXECUTED", got.Status)
	}
	if got.WhaleTradeID != "wt_1" {
		t.Fatalf("whaleTradeId = %q, want wt_1", got.WhaleTradeID)
	}
	if got.FollowAmount != 100 || got.PnL != 42.5 {
		t.Fatalf("result fields not applied: %+v", got)
	}
	if got.ExecutedAt == nil {
		t.Fatal("executedAt not applied")
	}
}

func TestFollowerExecutionTimeout(t *testing.T) {
	f := newFixture(t, &stubExecutor{block: true}, true)

	f.run(t, testWhaleEvent("wt_1"))

	follows, err := f.ledger.ListFollow(context.Background(), domain.ListOpts{})
	if err != nil {
		t.Fatalf("ListFollow: %v", err)
	}
	if len(follows) != 1 {
		t.Fatalf("follows = %d, want 1", len(follows))
	}

	got := follows[0]
	if got.Status != domain.StatusFailed {
		t.Fatalf("status = %s, want FAILED", got.Status)
	}
	if got.Error != "execution timeout" {
		t.Fatalf("error = %q, want execution timeout", got.Error)
	}
}

func TestDedupObserveAndSweep(t *testing.T) {
	d := newDedup(10 * time.Millisecond)

	if d.observe("a") {
		t.Fatal("first observe reported duplicate")
	}
	if !d.observe("a") {
		t.Fatal("second observe within TTL not reported duplicate")
	}

	time.Sleep(15 * time.Millisecond)
	if d.observe("a") {
		t.Fatal("observe after TTL reported duplicate")
	}

	time.Sleep(15 * time.Millisecond)
	d.sweep()
	d.mu.Lock()
	n := len(d.seen)
	d.mu.Unlock()
	if n != 0 {
		t.Fatalf("seen = %d entries after sweep, want 0", n)
	}
}
