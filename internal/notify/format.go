package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pmfollow/followbot/internal/domain"
)

// Event types recognized by the notification filter.
const (
	EventWhaleTrade     = "whale_trade"
	EventFollowExecuted = "follow_executed"
	EventFollowFailed   = "follow_failed"
)

// FormatWhaleTrade renders the alert for a detected whale trade.
func FormatWhaleTrade(ev domain.WhaleTradeEvent) (title, message string) {
	title = "🐋 Whale Trade Detected"
	message = fmt.Sprintf("%s %s $%s of %q\nMarket: %s\nPrice: $%.2f",
		ev.WalletLabel, ev.Side, formatAmount(ev.Amount), ev.Outcome, ev.MarketQuestion, ev.Price)
	return title, message
}

// FormatFollowTrade renders the alert for a follow trade outcome. The title
// reflects the terminal status; PENDING trades are not normally alerted but
// render with a neutral title.
func FormatFollowTrade(t domain.FollowTrade) (title, message string) {
	switch t.Status {
	case domain.StatusExecuted:
		title = "✅ Follow Trade Executed"
		message = fmt.Sprintf("%s $%s of %q @ $%.3f\nMarket: %s\nSlippage: %.2f%%\nPnL: %s",
			t.Side, formatAmount(t.FollowAmount), t.Outcome, t.ExecutedPrice,
			t.MarketQuestion, t.Slippage*100, formatPnL(t.PnL))
	case domain.StatusFailed:
		title = "❌ Follow Trade Failed"
		message = fmt.Sprintf("%s $%s of %q\nMarket: %s\nReason: %s",
			t.Side, formatAmount(t.FollowAmount), t.Outcome, t.MarketQuestion, t.Error)
	case domain.StatusCancelled:
		title = "🚫 Follow Trade Cancelled"
		message = fmt.Sprintf("%s $%s of %q\nMarket: %s",
			t.Side, formatAmount(t.FollowAmount), t.Outcome, t.MarketQuestion)
	default:
		title = "⏳ Follow Trade Pending"
		message = fmt.Sprintf("%s $%s of %q\nMarket: %s",
			t.Side, formatAmount(t.FollowAmount), t.Outcome, t.MarketQuestion)
	}
	return title, message
}

// FollowEvent maps a follow trade's status to its notification event type.
func FollowEvent(status domain.TradeStatus) string {
	if status == domain.StatusExecuted {
		return EventFollowExecuted
	}
	return EventFollowFailed
}

// formatAmount renders a dollar amount with two decimals and thousands
// separators: 1234.5 -> "1,234.50".
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// formatPnL renders a signed PnL with an explicit plus for gains.
func formatPnL(v float64) string {
	if v >= 0 {
		return "+$" + formatAmount(v)
	}
	return "-$" + formatAmount(-v)
}
