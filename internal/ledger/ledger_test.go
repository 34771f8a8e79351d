package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pmfollow/followbot/internal/domain"
)

func whaleEvent(id string, ts time.Time) domain.WhaleTradeEvent {
	return domain.WhaleTradeEvent{
		ID:            id,
		WalletAddress: "0xabc",
		WalletLabel:   "Whale Alpha",
		MarketID:      "mkt_btc_100k",
		Side:          domain.SideBuy,
		Amount:        1000,
		Price:         0.5,
		Timestamp:     ts,
	}
}

func followTrade(id string, status domain.TradeStatus, created time.Time) domain.FollowTrade {
	return domain.FollowTrade{
		ID:            id,
		WhaleTradeID:  "wt_1",
		WalletAddress: "0xabc",
		Side:          domain.SideBuy,
		WhaleAmount:   1000,
		Status:        status,
		CreatedAt:     created,
	}
}

func TestAppendWhaleDuplicate(t *testing.T) {
	l := New()
	ctx := context.Background()
	ev := whaleEvent("wt_1", time.Now())

	if err := l.AppendWhale(ctx, ev); err != nil {
		t.Fatalf("AppendWhale: %v", err)
	}
	if err := l.AppendWhale(ctx, ev); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("duplicate AppendWhale error = %v, want ErrAlreadyExists", err)
	}

	got, err := l.GetWhale(ctx, "wt_1")
	if err != nil {
		t.Fatalf("GetWhale: %v", err)
	}
	if got.Amount != 1000 {
		t.Fatalf("amount = %v, want 1000", got.Amount)
	}
}

func TestGetWhaleNotFound(t *testing.T) {
	l := New()
	if _, err := l.GetWhale(context.Background(), "wt_missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestListWhaleNewestFirst(t *testing.T) {
	l := New()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		ev := whaleEvent(fmt.Sprintf("wt_%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := l.AppendWhale(ctx, ev); err != nil {
			t.Fatalf("AppendWhale: %v", err)
		}
	}

	got, err := l.ListWhale(ctx, domain.ListOpts{Limit: 3})
	if err != nil {
		t.Fatalf("ListWhale: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Fatalf("results not newest first: %v before %v", got[i-1].Timestamp, got[i].Timestamp)
		}
	}
	if got[0].ID != "wt_4" {
		t.Fatalf("first id = %s, want wt_4", got[0].ID)
	}
}

func TestListWhaleFilters(t *testing.T) {
	l := New()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	a := whaleEvent("wt_a", base)
	b := whaleEvent("wt_b", base.Add(time.Hour))
	b.WalletAddress = "0xdef"
	for _, ev := range []domain.WhaleTradeEvent{a, b} {
		if err := l.AppendWhale(ctx, ev); err != nil {
			t.Fatalf("AppendWhale: %v", err)
		}
	}

	got, err := l.ListWhale(ctx, domain.ListOpts{Wallet: "0xdef"})
	if err != nil {
		t.Fatalf("ListWhale: %v", err)
	}
	if len(got) != 1 || got[0].ID != "wt_b" {
		t.Fatalf("wallet filter returned %+v, want only wt_b", got)
	}

	since := base.Add(30 * time.Minute)
	got, err = l.ListWhale(ctx, domain.ListOpts{Since: &since})
	if err != nil {
		t.Fatalf("ListWhale: %v", err)
	}
	if len(got) != 1 || got[0].ID != "wt_b" {
		t.Fatalf("since filter returned %+v, want only wt_b", got)
	}
}

func TestAppendFollowRejectsUnknownStatus(t *testing.T) {
	l := New()
	tr := followTrade("ft_1", domain.TradeStatus("BOGUS"), time.Now())
	if err := l.AppendFollow(context.Background(), tr); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("error = %v, want ErrInvalidStateTransition", err)
	}
}

func TestTransitionExactlyOnce(t *testing.T) {
	l := New()
	ctx := context.Background()

	if err := l.AppendFollow(ctx, followTrade("ft_1", domain.StatusPending, time.Now())); err != nil {
		t.Fatalf("AppendFollow: %v", err)
	}

	now := time.Now().UTC()
	got, err := l.Transition(ctx, "ft_1", domain.StatusExecuted, domain.FollowResult{
		FollowAmount:  100,
		ExecutedPrice: 0.503,
		Slippage:      0.005,
		PnL:           42.5,
		ExecutedAt:    &now,
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got.Status != domain.StatusExecuted || got.FollowAmount != 100 || got.PnL != 42.5 {
		t.Fatalf("transitioned trade = %+v", got)
	}
	if got.ExecutedAt == nil {
		t.Fatal("executedAt not applied")
	}

	// Second transition must fail: the record is terminal.
	if _, err := l.Transition(ctx, "ft_1", domain.StatusCancelled, domain.FollowResult{}); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("second transition error = %v, want ErrInvalidStateTransition", err)
	}
}

func TestTransitionValidation(t *testing.T) {
	l := New()
	ctx := context.Background()

	if _, err := l.Transition(ctx, "ft_missing", domain.StatusCancelled, domain.FollowResult{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown id error = %v, want ErrNotFound", err)
	}

	if err := l.AppendFollow(ctx, followTrade("ft_1", domain.StatusPending, time.Now())); err != nil {
		t.Fatalf("AppendFollow: %v", err)
	}
	if _, err := l.Transition(ctx, "ft_1", domain.StatusPending, domain.FollowResult{}); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("non-terminal target error = %v, want ErrInvalidStateTransition", err)
	}
}

func TestListFollowStatusFilter(t *testing.T) {
	l := New()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	statuses := []domain.TradeStatus{
		domain.StatusPending, domain.StatusExecuted, domain.StatusFailed, domain.StatusExecuted,
	}
	for i, st := range statuses {
		tr := followTrade(fmt.Sprintf("ft_%d", i), st, base.Add(time.Duration(i)*time.Minute))
		if err := l.AppendFollow(ctx, tr); err != nil {
			t.Fatalf("AppendFollow: %v", err)
		}
	}

	got, err := l.ListFollow(ctx, domain.ListOpts{Status: domain.StatusExecuted})
	if err != nil {
		t.Fatalf("ListFollow: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "ft_3" || got[1].ID != "ft_1" {
		t.Fatalf("order = %s, %s; want ft_3, ft_1", got[0].ID, got[1].ID)
	}
}

func TestListFollowStableTies(t *testing.T) {
	l := New()
	ctx := context.Background()
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		tr := followTrade(fmt.Sprintf("ft_%d", i), domain.StatusPending, ts)
		if err := l.AppendFollow(ctx, tr); err != nil {
			t.Fatalf("AppendFollow: %v", err)
		}
	}

	got, err := l.ListFollow(ctx, domain.ListOpts{})
	if err != nil {
		t.Fatalf("ListFollow: %v", err)
	}
	for i, want := range []string{"ft_0", "ft_1", "ft_2", "ft_3"} {
		if got[i].ID != want {
			t.Fatalf("tie order broken at %d: got %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestStats(t *testing.T) {
	l := New()
	ctx := context.Background()
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	yesterday := now.Add(-30 * time.Hour)

	add := func(id string, status domain.TradeStatus, pnl float64, created time.Time) {
		tr := followTrade(id, status, created)
		tr.PnL = pnl
		if err := l.AppendFollow(ctx, tr); err != nil {
			t.Fatalf("AppendFollow: %v", err)
		}
	}

	add("ft_1", domain.StatusExecuted, 100, yesterday)
	add("ft_2", domain.StatusExecuted, -40, now)
	add("ft_3", domain.StatusFailed, 0, now)
	add("ft_4", domain.StatusExecuted, 10, now)

	stats := l.Stats(now)
	if stats.TotalTrades != 4 {
		t.Fatalf("totalTrades = %d, want 4", stats.TotalTrades)
	}
	if stats.TotalPnL != 70 {
		t.Fatalf("totalPnl = %v, want 70", stats.TotalPnL)
	}
	// 2 of 3 executed trades are profitable.
	if want := 2.0 / 3.0; stats.WinRate != want {
		t.Fatalf("winRate = %v, want %v", stats.WinRate, want)
	}
	if stats.TodayTrades != 3 {
		t.Fatalf("todayTrades = %d, want 3", stats.TodayTrades)
	}
	if stats.TodayPnL != -30 {
		t.Fatalf("todayPnl = %v, want -30", stats.TodayPnL)
	}
}

func TestStatsEmpty(t *testing.T) {
	stats := New().Stats(time.Now())
	if stats.WinRate != 0 || stats.TotalTrades != 0 {
		t.Fatalf("empty ledger stats = %+v", stats)
	}
}
