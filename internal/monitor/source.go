// Package monitor watches tracked whale wallets and emits trade events onto
// a shared channel for the follower pipeline. The feed behind it is
// abstracted as a Source so the synthetic generator can be swapped for a
// real chain or exchange feed.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pmfollow/followbot/internal/domain"
	"github.com/pmfollow/followbot/internal/engine"
)

// ErrNoTrade is returned by a Source when the wallet made no qualifying
// trade this polling cycle.
var ErrNoTrade = errors.New("monitor: no trade this cycle")

// Source produces the next detected trade for a tracked wallet. Next returns
// ErrNoTrade when the wallet was quiet this cycle; any other error is
// treated as a feed failure.
type Source interface {
	Next(ctx context.Context, wallet domain.TrackedWallet) (domain.WhaleTradeEvent, error)
}

// sampleMarkets is the fixture market set used by the synthetic feed.
var sampleMarkets = []domain.Market{
	{ID: "mkt_trump_2024", Question: "Will Donald Trump win the 2024 US Presidential Election?", Outcomes: []string{"Yes", "No"}},
	{ID: "mkt_btc_100k", Question: "Will Bitcoin reach $100,000 by December 31, 2025?", Outcomes: []string{"Yes", "No"}},
	{ID: "mkt_fed_cut_sep", Question: "Will the Fed cut rates at the September meeting?", Outcomes: []string{"Yes", "No"}},
	{ID: "mkt_lakers_2025", Question: "Will the Lakers win the 2025 NBA Championship?", Outcomes: []string{"Yes", "No"}},
	{ID: "mkt_eth_flip", Question: "Will Ethereum flip Bitcoin by market cap in 2025?", Outcomes: []string{"Yes", "No"}},
	{ID: "mkt_us_recession", Question: "Will the US enter a recession in 2025?", Outcomes: []string{"Yes", "No"}},
	{ID: "mkt_ucl_madrid", Question: "Will Real Madrid win the Champions League?", Outcomes: []string{"Yes", "No"}},
	{ID: "mkt_gpt5_2025", Question: "Will OpenAI release GPT-5 in 2025?", Outcomes: []string{"Yes", "No"}},
}

// SyntheticSource generates random whale trades over a fixture market set.
// It stands in for a real on-chain feed during development and demos.
type SyntheticSource struct {
	rng     engine.RandomSource
	markets []domain.Market
	// emitChance is the probability that a polling cycle yields a trade.
	emitChance float64
}

// NewSyntheticSource creates a SyntheticSource over the fixture markets.
// emitChance is clamped to [0, 1].
func NewSyntheticSource(rng engine.RandomSource, emitChance float64) *SyntheticSource {
	return &SyntheticSource{
		rng:        rng,
		markets:    sampleMarkets,
		emitChance: math.Min(math.Max(emitChance, 0), 1),
	}
}

// Next rolls the emit chance and, on success, fabricates a trade for the
// wallet: a random market and outcome, a price in [0.10, 0.90) and a
// notional in [100, 10000).
func (s *SyntheticSource) Next(ctx context.Context, wallet domain.TrackedWallet) (domain.WhaleTradeEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.WhaleTradeEvent{}, err
	}
	if s.rng.Float64() >= s.emitChance {
		return domain.WhaleTradeEvent{}, ErrNoTrade
	}

	market := s.markets[int(s.rng.Float64()*float64(len(s.markets)))]
	outcomeIdx := int(s.rng.Float64() * float64(len(market.Outcomes)))

	side := domain.SideBuy
	if s.rng.Float64() < 0.5 {
		side = domain.SideSell
	}

	return domain.WhaleTradeEvent{
		ID:             "wt_" + uuid.NewString(),
		WalletAddress:  wallet.Address,
		WalletLabel:    wallet.Label,
		MarketID:       market.ID,
		MarketQuestion: market.Question,
		TokenID:        fmt.Sprintf("%s_%d", market.ID, outcomeIdx),
		Outcome:        market.Outcomes[outcomeIdx],
		Side:           side,
		Amount:         roundTo(100+s.rng.Float64()*9900, 2),
		Price:          roundTo(0.10+s.rng.Float64()*0.80, 2),
		Timestamp:      time.Now().UTC(),
	}, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

var _ Source = (*SyntheticSource)(nil)
