package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"SwingSentinel/internal/collector"
	"SwingSentinel/internal/strategy"
)

// DefaultTickers is the watch list used when no tickers file is readable.
var DefaultTickers = []string{"AAPL", "GOOGL", "MSFT", "NVDA", "MU", "ORCL", "CHTR"}

// Config holds all application configuration.
type Config struct {
	App struct {
		LogLevel    string `yaml:"log_level"`
		MetricsAddr string `yaml:"metrics_addr"`
	} `yaml:"app"`
	Strategy struct {
		Variant string `yaml:"variant"`
		// Params is the variant preset with any strategy.params overrides applied.
		Params strategy.Params `yaml:"-"`
	} `yaml:"strategy"`
	Schedule struct {
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		Concurrency     int           `yaml:"concurrency"`
		StartupNotice   *bool         `yaml:"startup_notice"`
	} `yaml:"schedule"`
	DataSource struct {
		Provider          string               `yaml:"provider"` // yahoo | rest | mock
		BaseURL           string               `yaml:"base_url"`
		APIKey            string               `yaml:"api_key"`
		RequestsPerSecond float64              `yaml:"requests_per_second"`
		Timeframes        collector.Timeframes `yaml:"timeframes"`
	} `yaml:"data_source"`
	Files struct {
		Tickers    string `yaml:"tickers"`
		Recipients string `yaml:"recipients"`
		AlertLog   string `yaml:"alert_log"`
	} `yaml:"files"`
	Email struct {
		Enabled    bool   `yaml:"enabled"`
		SMTPHost   string `yaml:"smtp_host"`
		SMTPPort   int    `yaml:"smtp_port"`
		User       string `yaml:"user"`
		Pass       string `yaml:"pass"`
		AlertEmail string `yaml:"alert_email"`
	} `yaml:"email"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Dedup struct {
		Backend   string `yaml:"backend"` // memory | redis
		StateFile string `yaml:"state_file"`
		RedisAddr string `yaml:"redis_addr"`
		RedisDB   int    `yaml:"redis_db"`
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"dedup"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Advisor struct {
		APIKey    string `yaml:"api_key"`
		Model     string `yaml:"model"`
		MaxTokens int    `yaml:"max_tokens"`
	} `yaml:"advisor"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults. A missing file yields a default config.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // best-effort

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var overrides struct {
		Strategy struct {
			Params yaml.Node `yaml:"params"`
		} `yaml:"strategy"`
		Email struct {
			Enabled *bool `yaml:"enabled"`
		} `yaml:"email"`
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("parse strategy params: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	// Mail is on by default once credentials exist, unless switched off explicitly.
	if overrides.Email.Enabled == nil && os.Getenv("EMAIL_ENABLED") == "" &&
		cfg.Email.User != "" && cfg.Email.Pass != "" {
		cfg.Email.Enabled = true
	}
	applyDefaults(cfg)

	params, err := strategy.Preset(cfg.Strategy.Variant)
	if err != nil {
		return nil, err
	}
	if !overrides.Strategy.Params.IsZero() {
		if err := overrides.Strategy.Params.Decode(&params); err != nil {
			return nil, fmt.Errorf("parse strategy params: %w", err)
		}
	}
	cfg.Strategy.Params = params

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"LOG_LEVEL":          &cfg.App.LogLevel,
		"METRICS_ADDR":       &cfg.App.MetricsAddr,
		"STRATEGY_VARIANT":   &cfg.Strategy.Variant,
		"DATA_PROVIDER":      &cfg.DataSource.Provider,
		"DATA_BASE_URL":      &cfg.DataSource.BaseURL,
		"DATA_API_KEY":       &cfg.DataSource.APIKey,
		"TICKERS_FILE":       &cfg.Files.Tickers,
		"RECIPIENTS_FILE":    &cfg.Files.Recipients,
		"ALERT_LOG_FILE":     &cfg.Files.AlertLog,
		"SMTP_HOST":          &cfg.Email.SMTPHost,
		"SMTP_USER":          &cfg.Email.User,
		"SMTP_PASS":          &cfg.Email.Pass,
		"ALERT_EMAIL":        &cfg.Email.AlertEmail,
		"TELEGRAM_BOT_TOKEN": &cfg.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &cfg.Telegram.ChatID,
		"REDIS_ADDR":         &cfg.Dedup.RedisAddr,
		"SQLITE_PATH":        &cfg.Database.SQLitePath,
		"ANTHROPIC_API_KEY":  &cfg.Advisor.APIKey,
		"HTTPS_PROXY":        &cfg.Proxy,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		d, err := parseInterval(v)
		if err != nil {
			return fmt.Errorf("REFRESH_INTERVAL: %w", err)
		}
		cfg.Schedule.RefreshInterval = d
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		cfg.Email.SMTPPort = port
	}
	if v := os.Getenv("EMAIL_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("EMAIL_ENABLED: %w", err)
		}
		cfg.Email.Enabled = enabled
	}
	// A Redis address from the environment selects the shared store unless one was chosen.
	if os.Getenv("REDIS_ADDR") != "" && cfg.Dedup.Backend == "" {
		cfg.Dedup.Backend = "redis"
	}
	return nil
}

// parseInterval accepts a Go duration ("90s", "5m") or a bare number of seconds.
func parseInterval(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func applyDefaults(cfg *Config) {
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.Strategy.Variant == "" {
		cfg.Strategy.Variant = "swing"
	}
	if cfg.Schedule.RefreshInterval == 0 {
		cfg.Schedule.RefreshInterval = 60 * time.Second
	}
	if cfg.Schedule.Concurrency == 0 {
		cfg.Schedule.Concurrency = 1
	}
	if cfg.Schedule.StartupNotice == nil {
		on := true
		cfg.Schedule.StartupNotice = &on
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.RequestsPerSecond == 0 {
		cfg.DataSource.RequestsPerSecond = collector.DefaultYahooRate
	}
	def := collector.DefaultTimeframes()
	tf := &cfg.DataSource.Timeframes
	for _, pair := range []struct{ dst, src *collector.Timeframe }{
		{&tf.Coarse, &def.Coarse},
		{&tf.Daily, &def.Daily},
		{&tf.Fine, &def.Fine},
		{&tf.Year, &def.Year},
		{&tf.History, &def.History},
	} {
		if pair.dst.Interval == "" && pair.dst.Period == "" {
			*pair.dst = *pair.src
		}
	}
	if cfg.Files.Tickers == "" {
		cfg.Files.Tickers = "swing_trade_tickers.txt"
	}
	if cfg.Files.Recipients == "" {
		cfg.Files.Recipients = "recipients.txt"
	}
	if cfg.Files.AlertLog == "" {
		cfg.Files.AlertLog = "data/trading_alerts.json"
	}
	if cfg.Email.SMTPHost == "" {
		cfg.Email.SMTPHost = "smtp.gmail.com"
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Dedup.Backend == "" {
		cfg.Dedup.Backend = "memory"
	}
	if cfg.Dedup.StateFile == "" {
		cfg.Dedup.StateFile = "data/last_alerts.json"
	}
	if cfg.Dedup.KeyPrefix == "" {
		cfg.Dedup.KeyPrefix = "sentinel:last_alert:"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/swing_sentinel.db"
	}
	if cfg.Advisor.Model == "" {
		cfg.Advisor.Model = "claude-3-5-haiku-latest"
	}
	if cfg.Advisor.MaxTokens == 0 {
		cfg.Advisor.MaxTokens = 100
	}
}

// EmailReady reports whether mail delivery is enabled and has credentials.
func (c *Config) EmailReady() bool {
	return c.Email.Enabled && c.Email.User != "" && c.Email.Pass != ""
}

// TelegramReady reports whether a Telegram chat is configured.
func (c *Config) TelegramReady() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Schedule.RefreshInterval < time.Second {
		return fmt.Errorf("schedule.refresh_interval must be at least 1s")
	}
	if c.Schedule.Concurrency < 1 {
		return fmt.Errorf("schedule.concurrency must be positive")
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, rest, mock", c.DataSource.Provider)
	}
	tf := c.DataSource.Timeframes
	for name, frame := range map[string]collector.Timeframe{"coarse": tf.Coarse, "daily": tf.Daily, "fine": tf.Fine} {
		if !frame.Enabled() {
			return fmt.Errorf("data_source.timeframes.%s needs interval and period", name)
		}
	}
	switch c.Dedup.Backend {
	case "memory":
	case "redis":
		if c.Dedup.RedisAddr == "" {
			return fmt.Errorf("dedup.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("dedup.backend %q is not one of memory, redis", c.Dedup.Backend)
	}
	if c.Email.Enabled && (c.Email.SMTPHost == "" || c.Email.SMTPPort <= 0) {
		return fmt.Errorf("email.smtp_host and email.smtp_port are required when email is enabled")
	}
	if err := c.Strategy.Params.Validate(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	return nil
}

// LoadTickers reads one symbol per line, skipping blanks and # comments.
// An unreadable or empty file yields DefaultTickers.
func LoadTickers(path string) []string {
	symbols, err := readLines(path)
	if err != nil || len(symbols) == 0 {
		return append([]string(nil), DefaultTickers...)
	}
	for i, s := range symbols {
		symbols[i] = strings.ToUpper(s)
	}
	return symbols
}

// LoadRecipients reads one address per line. An unreadable or empty file
// yields the fallback address alone, or nothing when fallback is empty.
func LoadRecipients(path, fallback string) []string {
	addrs, err := readLines(path)
	if err != nil || len(addrs) == 0 {
		if fallback == "" {
			return nil
		}
		return []string{fallback}
	}
	return addrs
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
