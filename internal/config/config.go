// Package config defines the top-level configuration for the follow-trading
// backend and provides validation helpers plus the process-wide runtime
// settings store.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pmfollow/followbot/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by FOLLOWBOT_* environment
// variables.
type Config struct {
	Follow   domain.FollowConfig `toml:"follow"`
	Notify   NotifyConfig        `toml:"notify"`
	Monitor  MonitorConfig       `toml:"monitor"`
	Sim      SimConfig           `toml:"sim"`
	Redis    RedisConfig         `toml:"redis"`
	Server   ServerConfig        `toml:"server"`
	Wallets  []WalletSeed        `toml:"wallets"`
	Mode     string              `toml:"mode"`
	LogLevel string              `toml:"log_level"`
}

// NotifyConfig holds notification channel credentials and the event filter.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token" json:"telegramToken"`
	TelegramChatID    string   `toml:"telegram_chat_id" json:"telegramChatId"`
	DiscordWebhookURL string   `toml:"discord_webhook_url" json:"discordWebhookUrl"`
	Events            []string `toml:"events" json:"events"`
}

// MonitorConfig holds whale-detection parameters.
type MonitorConfig struct {
	// MinWhaleAmount filters out trades below this notional.
	MinWhaleAmount float64 `toml:"min_whale_amount"`
	// BufferSize is the event channel capacity between monitor and follower.
	BufferSize int `toml:"buffer_size"`
	// AutoStart begins monitoring on boot (full and monitor modes).
	AutoStart bool `toml:"auto_start"`
}

// SimConfig holds the execution simulator's fill model parameters.
type SimConfig struct {
	SuccessRate float64 `toml:"success_rate"`
	SlippageMin float64 `toml:"slippage_min"`
	SlippageMax float64 `toml:"slippage_max"`
	PnLMin      float64 `toml:"pnl_min"`
	PnLMax      float64 `toml:"pnl_max"`
	LatencyMs   int     `toml:"latency_ms"`
	// ExecTimeoutMs bounds a single execution; a PENDING trade past the
	// deadline is marked FAILED.
	ExecTimeoutMs int `toml:"exec_timeout_ms"`
	// Seed makes simulated fills reproducible; 0 picks a random seed.
	Seed uint64 `toml:"seed"`
}

// RedisConfig holds Redis connection parameters. An empty Addr disables
// Redis; the in-process signal bus and rate limiter are used instead.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	PoolSize int    `toml:"pool_size"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled         bool     `toml:"enabled"`
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	RateLimit       int      `toml:"rate_limit"`
	RateLimitWindow duration `toml:"rate_limit_window"`
}

// WalletSeed is a tracked wallet entry from the config file.
type WalletSeed struct {
	Address string   `toml:"address"`
	Label   string   `toml:"label"`
	Status  string   `toml:"status"`
	Tags    []string `toml:"tags"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with the reference defaults, including
// the sample whale wallets used when no wallet list is configured.
func Defaults() Config {
	return Config{
		Follow: domain.FollowConfig{
			FollowRatio:       0.1,
			MaxPositionSize:   1000,
			SlippageTolerance: 0.02,
			MinTradeAmount:    10,
			MaxTradeAmount:    500,
			AutoExecute:       false,
			MonitorIntervalMs: 5000,
		},
		Notify: NotifyConfig{
			Events: []string{"whale_trade", "follow_executed", "follow_failed"},
		},
		Monitor: MonitorConfig{
			MinWhaleAmount: 100,
			BufferSize:     256,
			AutoStart:      true,
		},
		Sim: SimConfig{
			SuccessRate:   0.90,
			SlippageMin:   -0.01,
			SlippageMax:   0.02,
			PnLMin:        -50,
			PnLMax:        150,
			LatencyMs:     0,
			ExecTimeoutMs: 5000,
			Seed:          0,
		},
		Redis: RedisConfig{
			Addr:     "",
			DB:       0,
			PoolSize: 10,
		},
		Server: ServerConfig{
			Enabled:         true,
			Port:            8000,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:       100,
			RateLimitWindow: duration{time.Minute},
		},
		Wallets: []WalletSeed{
			{
				Address: "0x1234a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5abcd",
				Label:   "Whale Alpha",
				Status:  "ACTIVE",
				Tags:    []string{"high-frequency", "large-cap"},
			},
			{
				Address: "0x5678a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5ef01",
				Label:   "Smart Money Beta",
				Status:  "ACTIVE",
				Tags:    []string{"political", "sports"},
			},
			{
				Address: "0x9abca0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5aa02",
				Label:   "Degen Trader Gamma",
				Status:  "PAUSED",
				Tags:    []string{"degen", "high-risk"},
			},
			{
				Address: "0xdef0a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5bb03",
				Label:   "Institutional Delta",
				Status:  "ACTIVE",
				Tags:    []string{"institutional", "conservative"},
			},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"monitor": true,
	"server":  true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: monitor, server, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if err := c.Follow.Validate(); err != nil {
		errs = append(errs, "follow: "+err.Error())
	}

	// Sim
	if c.Sim.SuccessRate < 0 || c.Sim.SuccessRate > 1 {
		errs = append(errs, fmt.Sprintf("sim: success_rate must be in [0, 1], got %v", c.Sim.SuccessRate))
	}
	if c.Sim.SlippageMin > c.Sim.SlippageMax {
		errs = append(errs, "sim: slippage_min must not exceed slippage_max")
	}
	if c.Sim.PnLMin > c.Sim.PnLMax {
		errs = append(errs, "sim: pnl_min must not exceed pnl_max")
	}
	if c.Sim.LatencyMs < 0 {
		errs = append(errs, "sim: latency_ms must be >= 0")
	}
	if c.Sim.ExecTimeoutMs <= 0 {
		errs = append(errs, "sim: exec_timeout_ms must be > 0")
	}

	// Monitor
	if c.Monitor.MinWhaleAmount < 0 {
		errs = append(errs, "monitor: min_whale_amount must be >= 0")
	}
	if c.Monitor.BufferSize < 1 {
		errs = append(errs, "monitor: buffer_size must be >= 1")
	}

	// Redis (only when enabled)
	if c.Redis.Addr != "" && c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
	}

	// Wallets
	for i, w := range c.Wallets {
		if !common.IsHexAddress(w.Address) {
			errs = append(errs, fmt.Sprintf("wallets[%d]: %q is not a valid address", i, w.Address))
		}
		if strings.TrimSpace(w.Label) == "" {
			errs = append(errs, fmt.Sprintf("wallets[%d]: label must not be empty", i))
		}
		if w.Status != "" && !domain.WalletStatus(w.Status).Valid() {
			errs = append(errs, fmt.Sprintf("wallets[%d]: unknown status %q", i, w.Status))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
