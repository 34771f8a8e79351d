package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/pmfollow/followbot/internal/domain"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{10, "10.00"},
		{999.5, "999.50"},
		{1234.5, "1,234.50"},
		{1234567.891, "1,234,567.89"},
		{-1234.5, "-1,234.50"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.in); got != tt.want {
			t.Fatalf("formatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPnL(t *testing.T) {
	if got := formatPnL(42.5); got != "+$42.50" {
		t.Fatalf("formatPnL(42.5) = %q", got)
	}
	if got := formatPnL(-13.2); got != "-$13.20" {
		t.Fatalf("formatPnL(-13.2) = %q", got)
	}
	if got := formatPnL(0); got != "+$0.00" {
		t.Fatalf("formatPnL(0) = %q", got)
	}
}

func TestFormatWhaleTrade(t *testing.T) {
	ev := domain.WhaleTradeEvent{
		WalletLabel:    "Whale Alpha",
		MarketQuestion: "Will Bitcoin reach $100,000 by December 31, 2025?",
		Outcome:        "Yes",
		Side:           domain.SideBuy,
		Amount:         5000,
		Price:          0.45,
	}

	title, message := FormatWhaleTrade(ev)
	if !strings.Contains(title, "Whale Trade Detected") {
		t.Fatalf("title = %q", title)
	}
	for _, want := range []string{"Whale Alpha", "BUY", "5,000.00", `"Yes"`, "$0.45", ev.MarketQuestion} {
		if !strings.Contains(message, want) {
			t.Fatalf("message %q missing %q", message, want)
		}
	}
}

func TestFormatFollowTrade(t *testing.T) {
	now := time.Now().UTC()
	base := domain.FollowTrade{
		MarketQuestion: "Will the Fed cut rates at the September meeting?",
		Outcome:        "No",
		Side:           domain.SideSell,
		FollowAmount:   150,
		ExecutedPrice:  0.312,
		Slippage:       0.005,
		PnL:            42.5,
		ExecutedAt:     &now,
	}

	tests := []struct {
		status    domain.TradeStatus
		tradeErr  string
		wantTitle string
		wantIn    []string
	}{
		{
			status:    domain.StatusExecuted,
			wantTitle: "Executed",
			wantIn:    []string{"150.00", "$0.312", "0.50%", "+$42.50"},
		},
		{
			status:    domain.StatusFailed,
			tradeErr:  "insufficient liquidity",
			wantTitle: "Failed",
			wantIn:    []string{"insufficient liquidity"},
		},
		{
			status:    domain.StatusCancelled,
			wantTitle: "Cancelled",
			wantIn:    []string{"150.00"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			tr := base
			tr.Status = tt.status
			tr.Error = tt.tradeErr

			title, message := FormatFollowTrade(tr)
			if !strings.Contains(title, tt.wantTitle) {
				t.Fatalf("title = %q, want to contain %q", title, tt.wantTitle)
			}
			for _, want := range tt.wantIn {
				if !strings.Contains(message, want) {
					t.Fatalf("message %q missing %q", message, want)
				}
			}
		})
	}
}

func TestFollowEvent(t *testing.T) {
	if got := FollowEvent(domain.StatusExecuted); got != EventFollowExecuted {
		t.Fatalf("FollowEvent(EXECUTED) = %q", got)
	}
	if got := FollowEvent(domain.StatusFailed); got != EventFollowFailed {
		t.Fatalf("FollowEvent(FAILED) = %q", got)
	}
}
