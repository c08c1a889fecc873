package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	// Required
	TelegramBotToken    string
	TelegramAdminChatID int64
	TwitterBearerToken  string // read side: mention timeline
	TwitterAccessToken  string // write side: replies and the manual post endpoint
	TwitterUserID       string // the account whose mentions we poll

	// Optional (with defaults)
	DBPath          string        // default: "riskscan.db"
	SolanaRPCURL    string        // default: public mainnet
	SolanaWSS       string        // default: public mainnet websocket
	Commitment      string        // default: "processed"
	ListenAddr      string        // default: ":3001"
	PollInterval    time.Duration // default: 5m
	ReplyDelay      time.Duration // default: 10s, pacing between outbound replies
	AnalyzeTimeout  time.Duration // default: 20s, per-mention analysis budget
	MarketProvider  string        // default: "dexscreener" (or "jupiter")
	MentionSource   string        // default: "twitter" (or "nitter")
	NitterInstance  string        // default: "nitter.net", only used by the nitter source
	TwitterUsername string        // handle without @, required by the nitter source
	LogLevel        string
}

// allowedCommitments is kept small and explicit to avoid surprises.
var allowedCommitments = map[string]struct{}{
	"processed": {},
	"confirmed": {},
	"finalized": {},
}

var allowedMarketProviders = map[string]struct{}{
	"dexscreener": {},
	"jupiter":     {},
}

var allowedMentionSources = map[string]struct{}{
	"twitter": {},
	"nitter":  {},
}

// Load reads environment variables, applies defaults, validates,
// and returns a Config instance. It attempts to load .env if present.
func Load() (Config, error) {
	// Load .env if it exists; ignore if missing.
	_ = godotenv.Load()

	var cfg Config
	var errs []string

	// --- Required Fields ---

	// Required: TELEGRAM_BOT_TOKEN
	cfg.TelegramBotToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if cfg.TelegramBotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required (get it from @BotFather)")
	}

	// Required: TELEGRAM_ADMIN_CHAT_ID (must be a valid int64)
	adminStr := strings.TrimSpace(os.Getenv("TELEGRAM_ADMIN_CHAT_ID"))
	if adminStr == "" {
		errs = append(errs, "TELEGRAM_ADMIN_CHAT_ID is required (your numeric chat id)")
	} else {
		id, err := strconv.ParseInt(adminStr, 10, 64)
		if err != nil || id == 0 {
			errs = append(errs, fmt.Sprintf("TELEGRAM_ADMIN_CHAT_ID must be a valid integer, got %q", adminStr))
		} else {
			cfg.TelegramAdminChatID = id
		}
	}

	// Required: TWITTER_BEARER_TOKEN
	cfg.TwitterBearerToken = strings.TrimSpace(os.Getenv("TWITTER_BEARER_TOKEN"))
	if cfg.TwitterBearerToken == "" {
		errs = append(errs, "TWITTER_BEARER_TOKEN is required (app bearer token for the mention timeline)")
	}

	// Required: TWITTER_ACCESS_TOKEN
	cfg.TwitterAccessToken = strings.TrimSpace(os.Getenv("TWITTER_ACCESS_TOKEN"))
	if cfg.TwitterAccessToken == "" {
		errs = append(errs, "TWITTER_ACCESS_TOKEN is required (user token for posting replies)")
	}

	// Required: TWITTER_USER_ID (numeric id of the watched account)
	cfg.TwitterUserID = strings.TrimSpace(os.Getenv("TWITTER_USER_ID"))
	if cfg.TwitterUserID == "" {
		errs = append(errs, "TWITTER_USER_ID is required (numeric id of the account whose mentions are polled)")
	} else if _, err := strconv.ParseUint(cfg.TwitterUserID, 10, 64); err != nil {
		errs = append(errs, fmt.Sprintf("TWITTER_USER_ID must be numeric, got %q", cfg.TwitterUserID))
	}

	// --- Optional Fields with Defaults ---

	// Optional: DB_PATH (default: riskscan.db)
	cfg.DBPath = strings.TrimSpace(os.Getenv("DB_PATH"))
	if cfg.DBPath == "" {
		cfg.DBPath = "riskscan.db"
	}

	// Optional: SOLANA_RPC_URL (default: public mainnet)
	cfg.SolanaRPCURL = strings.TrimSpace(os.Getenv("SOLANA_RPC_URL"))
	if cfg.SolanaRPCURL == "" {
		cfg.SolanaRPCURL = "https://api.mainnet-beta.solana.com"
	}

	// Optional: SOLANA_WSS (default: public mainnet; used by /watch subscriptions)
	cfg.SolanaWSS = strings.TrimSpace(os.Getenv("SOLANA_WSS"))
	if cfg.SolanaWSS == "" {
		cfg.SolanaWSS = "wss://api.mainnet-beta.solana.com"
	} else if !strings.HasPrefix(strings.ToLower(cfg.SolanaWSS), "wss://") {
		errs = append(errs, fmt.Sprintf("SOLANA_WSS must start with wss://, got %q", cfg.SolanaWSS))
	}

	// Optional: COMMITMENT (default: processed; normalize to lowercase)
	commitment := strings.TrimSpace(os.Getenv("COMMITMENT"))
	if commitment == "" {
		commitment = "processed"
	}
	commitment = strings.ToLower(commitment)
	if _, ok := allowedCommitments[commitment]; !ok {
		errs = append(errs, fmt.Sprintf("COMMITMENT must be one of processed|confirmed|finalized, got %q", commitment))
	} else {
		cfg.Commitment = commitment
	}

	// Optional: LISTEN_ADDR (default: :3001)
	cfg.ListenAddr = strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":3001"
	}

	// Optional durations.
	cfg.PollInterval = parseDuration(&errs, "POLL_INTERVAL", 5*time.Minute)
	cfg.ReplyDelay = parseDuration(&errs, "REPLY_DELAY", 10*time.Second)
	cfg.AnalyzeTimeout = parseDuration(&errs, "ANALYZE_TIMEOUT", 20*time.Second)

	// Optional: MARKET_PROVIDER (default: dexscreener)
	cfg.MarketProvider = strings.TrimSpace(strings.ToLower(os.Getenv("MARKET_PROVIDER")))
	if cfg.MarketProvider == "" {
		cfg.MarketProvider = "dexscreener"
	}
	if _, ok := allowedMarketProviders[cfg.MarketProvider]; !ok {
		errs = append(errs, fmt.Sprintf("MARKET_PROVIDER must be one of dexscreener|jupiter, got %q", cfg.MarketProvider))
	}

	// Optional: MENTION_SOURCE (default: twitter)
	cfg.MentionSource = strings.TrimSpace(strings.ToLower(os.Getenv("MENTION_SOURCE")))
	if cfg.MentionSource == "" {
		cfg.MentionSource = "twitter"
	}
	if _, ok := allowedMentionSources[cfg.MentionSource]; !ok {
		errs = append(errs, fmt.Sprintf("MENTION_SOURCE must be one of twitter|nitter, got %q", cfg.MentionSource))
	}

	// Optional: NITTER_INSTANCE (default: nitter.net)
	cfg.NitterInstance = strings.TrimSpace(os.Getenv("NITTER_INSTANCE"))
	if cfg.NitterInstance == "" {
		cfg.NitterInstance = "nitter.net"
	}

	// TWITTER_USERNAME: the nitter source searches by handle, not id.
	cfg.TwitterUsername = strings.TrimSpace(strings.TrimPrefix(os.Getenv("TWITTER_USERNAME"), "@"))
	if cfg.MentionSource == "nitter" && cfg.TwitterUsername == "" {
		errs = append(errs, "TWITTER_USERNAME is required when MENTION_SOURCE=nitter")
	}

	// Optional: LOG_LEVEL (default: info)
	logLevel := strings.TrimSpace(strings.ToLower(os.Getenv("LOG_LEVEL")))
	switch logLevel {
	case "", "info", "debug", "warn", "error":
		// OK (empty becomes "info")
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of debug|info|warn|error, got %q", logLevel))
	}
	if logLevel == "" {
		logLevel = "info"
	}
	cfg.LogLevel = logLevel

	if len(errs) > 0 {
		return Config{}, errors.New("config validation error:\n  - " + strings.Join(errs, "\n  - "))
	}

	return cfg, nil
}

func parseDuration(errs *[]string, key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Sprintf("%s must be a positive duration (e.g. 5m, 30s), got %q", key, raw))
		return def
	}
	return d
}

// MustLoad is a convenience for main(): exit fast with a readable error.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		// Print a clean error (no stack trace) so non-Go users can fix env quickly.
		fmt.Fprintf(os.Stderr, "\nFATAL: %v\n\n", err)
		os.Exit(1)
	}
	return cfg
}

// RedactedSummary returns a safe human-readable snapshot of the config.
// Useful to log at startup for quick debugging without leaking secrets.
func (c Config) RedactedSummary() string {
	return fmt.Sprintf(
		"config{ db=%s, rpc=%s, wss=%s, commitment=%s, listen=%s, poll=%s, reply_delay=%s, provider=%s, source=%s, twitter_user=%s, bearer=%s, access=%s, telegram_bot_token=%s, admin_chat_id=%d, log_level=%s }",
		c.DBPath,
		redactURL(c.SolanaRPCURL),
		redactURL(c.SolanaWSS),
		c.Commitment,
		c.ListenAddr,
		c.PollInterval,
		c.ReplyDelay,
		c.MarketProvider,
		c.MentionSource,
		c.TwitterUserID,
		redactToken(c.TwitterBearerToken),
		redactToken(c.TwitterAccessToken),
		redactToken(c.TelegramBotToken),
		c.TelegramAdminChatID,
		c.LogLevel,
	)
}

func redactToken(tok string) string {
	if len(tok) > 6 {
		return tok[:6] + "...(redacted)"
	}
	if tok == "" {
		return "(empty)"
	}
	return "***"
}

func redactURL(u string) string {
	parts := strings.Split(u, "api-key=")
	if len(parts) < 2 {
		return u
	}
	tail := parts[1]
	if i := strings.IndexAny(tail, "&;"); i >= 0 {
		tail = tail[:i]
	}
	return strings.Replace(u, "api-key="+tail, "api-key=***", 1)
}
