package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Dhan struct {
		BaseURL         string `yaml:"base_url"`
		ClientID        string `yaml:"client_id"`
		AccessToken     string `yaml:"access_token"`
		ExchangeSegment string `yaml:"exchange_segment"`
		SecurityIDsFile string `yaml:"security_ids_file"`
	} `yaml:"dhan"`
	Yahoo struct {
		Disabled bool `yaml:"disabled"`
	} `yaml:"yahoo"`
	Backtest struct {
		Cutoff             string `yaml:"cutoff"`      // HH:MM local, market close + grace
		Fallback           string `yaml:"fallback"`    // "synthetic" or "none"
		CallDelayMs        int    `yaml:"call_delay_ms"`
		ProviderTimeoutSec int    `yaml:"provider_timeout_sec"`
	} `yaml:"backtest"`
	Schedule struct {
		DailyCron  string `yaml:"daily_cron"`
		VacuumCron string `yaml:"vacuum_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DHAN_BASE_URL"); v != "" {
		cfg.Dhan.BaseURL = v
	}
	if v := os.Getenv("DHAN_CLIENT_ID"); v != "" {
		cfg.Dhan.ClientID = v
	}
	if v := os.Getenv("DHAN_ACCESS_TOKEN"); v != "" {
		cfg.Dhan.AccessToken = v
	}
	if v := os.Getenv("FALLBACK_MODE"); v != "" {
		cfg.Backtest.Fallback = v
	}
	if v := os.Getenv("CALL_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Backtest.CallDelayMs = ms
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Dhan.ExchangeSegment == "" {
		cfg.Dhan.ExchangeSegment = "NSE_EQ"
	}
	if cfg.Dhan.SecurityIDsFile == "" {
		cfg.Dhan.SecurityIDsFile = "data/security_ids.json"
	}
	if cfg.Backtest.Cutoff == "" {
		cfg.Backtest.Cutoff = "16:00" // 15:30 close + 30 min grace
	}
	if cfg.Backtest.Fallback == "" {
		cfg.Backtest.Fallback = "synthetic"
	}
	if cfg.Backtest.CallDelayMs == 0 {
		cfg.Backtest.CallDelayMs = 1000
	}
	if cfg.Backtest.ProviderTimeoutSec == 0 {
		cfg.Backtest.ProviderTimeoutSec = 20
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 15 16 * * 1-5" // 16:15 IST, Mon-Fri
	}
	if cfg.Schedule.VacuumCron == "" {
		cfg.Schedule.VacuumCron = "0 0 7 * * 6" // Saturday morning
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/signal_sentinel.db"
	}
	if os.Getenv("YAHOO_DISABLED") == "true" {
		cfg.Yahoo.Disabled = true
	}

	return cfg, nil
}

// Validate checks that all required fields are set and coherent.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	switch c.Backtest.Fallback {
	case "synthetic", "none":
	default:
		return fmt.Errorf("backtest.fallback must be \"synthetic\" or \"none\", got %q", c.Backtest.Fallback)
	}
	if _, err := c.CutoffMinutes(); err != nil {
		return err
	}
	if c.Dhan.ClientID != "" && c.Dhan.AccessToken == "" {
		return fmt.Errorf("dhan.access_token is required when dhan.client_id is set")
	}
	return nil
}

// CutoffMinutes parses the HH:MM cutoff into minutes after local midnight.
func (c *Config) CutoffMinutes() (int, error) {
	parts := strings.SplitN(c.Backtest.Cutoff, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("backtest.cutoff must be HH:MM, got %q", c.Backtest.Cutoff)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("backtest.cutoff hour invalid in %q", c.Backtest.Cutoff)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("backtest.cutoff minute invalid in %q", c.Backtest.Cutoff)
	}
	return h*60 + m, nil
}
