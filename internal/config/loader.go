package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies FOLLOWBOT_* environment variable overrides, and
// returns the final Config. A missing file is not an error; the defaults are
// used as-is. The returned Config has NOT been validated; the caller should
// invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known FOLLOWBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Follow policy ──
	setFloat64(&cfg.Follow.FollowRatio, "FOLLOWBOT_FOLLOW_RATIO")
	setFloat64(&cfg.Follow.MaxPositionSize, "FOLLOWBOT_FOLLOW_MAX_POSITION_SIZE")
	setFloat64(&cfg.Follow.SlippageTolerance, "FOLLOWBOT_FOLLOW_SLIPPAGE_TOLERANCE")
	setFloat64(&cfg.Follow.MinTradeAmount, "FOLLOWBOT_FOLLOW_MIN_TRADE_AMOUNT")
	setFloat64(&cfg.Follow.MaxTradeAmount, "FOLLOWBOT_FOLLOW_MAX_TRADE_AMOUNT")
	setBool(&cfg.Follow.AutoExecute, "FOLLOWBOT_FOLLOW_AUTO_EXECUTE")
	setInt(&cfg.Follow.MonitorIntervalMs, "FOLLOWBOT_FOLLOW_MONITOR_INTERVAL_MS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "FOLLOWBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "FOLLOWBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "FOLLOWBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "FOLLOWBOT_NOTIFY_EVENTS")

	// ── Monitor ──
	setFloat64(&cfg.Monitor.MinWhaleAmount, "FOLLOWBOT_MONITOR_MIN_WHALE_AMOUNT")
	setInt(&cfg.Monitor.BufferSize, "FOLLOWBOT_MONITOR_BUFFER_SIZE")
	setBool(&cfg.Monitor.AutoStart, "FOLLOWBOT_MONITOR_AUTO_START")

	// ── Sim ──
	setFloat64(&cfg.Sim.SuccessRate, "FOLLOWBOT_SIM_SUCCESS_RATE")
	setFloat64(&cfg.Sim.SlippageMin, "FOLLOWBOT_SIM_SLIPPAGE_MIN")
	setFloat64(&cfg.Sim.SlippageMax, "FOLLOWBOT_SIM_SLIPPAGE_MAX")
	setFloat64(&cfg.Sim.PnLMin, "FOLLOWBOT_SIM_PNL_MIN")
	setFloat64(&cfg.Sim.PnLMax, "FOLLOWBOT_SIM_PNL_MAX")
	setInt(&cfg.Sim.LatencyMs, "FOLLOWBOT_SIM_LATENCY_MS")
	setInt(&cfg.Sim.ExecTimeoutMs, "FOLLOWBOT_SIM_EXEC_TIMEOUT_MS")
	setUint64(&cfg.Sim.Seed, "FOLLOWBOT_SIM_SEED")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "FOLLOWBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "FOLLOWBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "FOLLOWBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "FOLLOWBOT_REDIS_POOL_SIZE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "FOLLOWBOT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "FOLLOWBOT_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "FOLLOWBOT_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimit, "FOLLOWBOT_SERVER_RATE_LIMIT")

	// ── Top-level ──
	setStr(&cfg.Mode, "FOLLOWBOT_MODE")
	setStr(&cfg.LogLevel, "FOLLOWBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
