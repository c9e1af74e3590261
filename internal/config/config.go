package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full configuration surface of the profiler.
type Config struct {
	// Ledger source
	RPCURL             string        `mapstructure:"rpc_url"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	MinRequestInterval time.Duration `mapstructure:"min_request_interval"`
	TxProcessingDelay  time.Duration `mapstructure:"tx_processing_delay"`

	// Swap detection
	SwapPrograms  map[string]string `mapstructure:"swap_programs"`  // program id -> protocol name
	NativeMints   []string          `mapstructure:"native_mints"`   // canonical native-asset identifiers
	ExcludedMints []string          `mapstructure:"excluded_mints"` // stables and bridged majors, skipped by accounting

	// Price resolution
	NativeHistoryURL string        `mapstructure:"native_history_url"` // hourly klines for the native asset
	CandleAPIURL     string        `mapstructure:"candle_api_url"`     // token candle source, native-denominated
	QuoteAPIURL      string        `mapstructure:"quote_api_url"`      // USD quote source
	PriceAPITimeout  time.Duration `mapstructure:"price_api_timeout"`
	PriceMaxRetries  int           `mapstructure:"price_max_retries"`
	PriceCacheFile   string        `mapstructure:"price_cache_file"`

	// Bot detection
	ModelPath                  string  `mapstructure:"model_path"`
	BotThreshold               float64 `mapstructure:"bot_threshold"`
	HighConfidenceBotThreshold float64 `mapstructure:"high_confidence_bot_threshold"`
	EarlyDetectionCount        int     `mapstructure:"early_detection_count"`
	DefaultMaxTransactions     int     `mapstructure:"default_max_transactions"`

	// Collaborators
	PostgresURL   string `mapstructure:"postgres_url"`
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisQueue    string `mapstructure:"redis_queue"`

	Development bool `mapstructure:"development"`
}

// Canonical identifiers used as defaults.
const (
	WSOLMint          = "So11111111111111111111111111111111111111112"
	SOLMint           = "So11111111111111111111111111111111111111111"
	SystemProgram     = "11111111111111111111111111111111"
	usdcMint          = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	usdtMint          = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	wethMint          = "7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs"
)

// defaultSwapPrograms maps known DEX program ids to protocol names.
var defaultSwapPrograms = map[string]string{
	"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4": "Jupiter",
	"whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc": "Orca",
	"9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP": "Raydium",
	"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8": "Raydium V4",
	"SwaPpA9LAaLfeLi3a68M4DjnLqgtticKg6CnyNwgAC8":  "Raydium Legacy",
	"DjVE6JNiYqPL2QXyCUUh8rNjHrbz9hXHNYt99MQ59qw1": "Orca Whirlpool",
}

// Load reads configuration from the given file (optional) and environment
// variables prefixed with PROFILER_.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PROFILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Empty defaults register the keys so AutomaticEnv can fill them.
	v.SetDefault("rpc_url", "")
	v.SetDefault("postgres_url", "")
	v.SetDefault("clickhouse_dsn", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("development", false)
	v.SetDefault("request_timeout", 2*time.Second)
	v.SetDefault("min_request_interval", 50*time.Millisecond)
	v.SetDefault("tx_processing_delay", 200*time.Millisecond)
	v.SetDefault("swap_programs", defaultSwapPrograms)
	v.SetDefault("native_mints", []string{WSOLMint, SOLMint})
	v.SetDefault("excluded_mints", []string{usdcMint, usdtMint, wethMint})
	v.SetDefault("native_history_url", "https://api.binance.com/api/v3/klines?symbol=SOLUSDT&interval=1h&startTime=%d&limit=1")
	v.SetDefault("candle_api_url", "https://frontend-api.pump.fun/candlesticks/%s?offset=0&limit=1&timeframe=1")
	v.SetDefault("quote_api_url", "https://price.jup.ag/v6/price?ids=%s&vsToken=USDC")
	v.SetDefault("price_api_timeout", time.Second)
	v.SetDefault("price_max_retries", 3)
	v.SetDefault("price_cache_file", "sol_price_cache.json")
	v.SetDefault("model_path", "models/wallet_classifier.json")
	v.SetDefault("bot_threshold", 0.75)
	v.SetDefault("high_confidence_bot_threshold", 0.95)
	v.SetDefault("early_detection_count", 80)
	v.SetDefault("default_max_transactions", 500)
	v.SetDefault("redis_queue", "wallet_addresses")
}

func (c *Config) validate() error {
	if c.RPCURL == "" {
		return errors.New("rpc_url is required")
	}
	if c.BotThreshold <= 0 || c.BotThreshold > 1 {
		return fmt.Errorf("bot_threshold must be in (0,1], got %v", c.BotThreshold)
	}
	if c.HighConfidenceBotThreshold < c.BotThreshold {
		return errors.New("high_confidence_bot_threshold must be >= bot_threshold")
	}
	if c.EarlyDetectionCount <= 0 {
		return errors.New("early_detection_count must be positive")
	}
	if c.DefaultMaxTransactions < c.EarlyDetectionCount {
		return errors.New("default_max_transactions must be >= early_detection_count")
	}
	return nil
}

// IsNative reports whether the identifier is one of the canonical
// native-asset mints.
func (c *Config) IsNative(mint string) bool {
	for _, m := range c.NativeMints {
		if m == mint {
			return true
		}
	}
	return false
}

// IsExcluded reports whether the identifier is in the excluded-token set.
func (c *Config) IsExcluded(mint string) bool {
	for _, m := range c.ExcludedMints {
		if m == mint {
			return true
		}
	}
	return false
}
