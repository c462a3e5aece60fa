package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"VolScope/internal/errors"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	App struct {
		Title      string `yaml:"title"`
		ChartTitle string `yaml:"chart_title"`
	} `yaml:"app"`
	DataSource struct {
		Provider      string  `yaml:"provider" validate:"required,oneof=yahoo alpaca polygon mock"`
		BaseURL       string  `yaml:"base_url" validate:"omitempty,url"`
		APIKey        string  `yaml:"api_key"`
		APISecret     string  `yaml:"api_secret"`
		Lookback      string  `yaml:"lookback" validate:"required,oneof=1mo 3mo 6mo 1y 2y 5y"`
		Window        int     `yaml:"window" validate:"gte=2,lte=252"`
		RatePerSecond float64 `yaml:"rate_per_second" validate:"gt=0"`
		Burst         int     `yaml:"burst" validate:"gte=1"`
	} `yaml:"data_source"`
	Server struct {
		Addr string `yaml:"addr" validate:"required"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron      string   `yaml:"cron" validate:"required"`
		Watchlist []string `yaml:"watchlist" validate:"dive,required"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Redis struct {
		URL    string `yaml:"url"`
		Stream string `yaml:"stream"`
	} `yaml:"redis"`
	Log struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Format string `yaml:"format" validate:"omitempty,oneof=json console"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
// A missing file is not an error.
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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VOLSCOPE_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("VOLSCOPE_LOOKBACK"); v != "" {
		c.DataSource.Lookback = v
	}
	if v := os.Getenv("VOLSCOPE_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DataSource.Window = n
		}
	}
	switch c.DataSource.Provider {
	case "alpaca":
		if v := os.Getenv("ALPACA_API_KEY"); v != "" {
			c.DataSource.APIKey = v
		}
		if v := os.Getenv("ALPACA_SECRET_KEY"); v != "" {
			c.DataSource.APISecret = v
		}
	case "polygon":
		if v := os.Getenv("POLYGON_API_KEY"); v != "" {
			c.DataSource.APIKey = v
		}
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Schedule.Watchlist = ParseTickers(v)
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
}

func (c *Config) applyDefaults() {
	if c.App.Title == "" {
		c.App.Title = "Options Volatility Analysis"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.Lookback == "" {
		c.DataSource.Lookback = "6mo"
	}
	if c.DataSource.Window == 0 {
		c.DataSource.Window = 30
	}
	if c.DataSource.RatePerSecond == 0 {
		c.DataSource.RatePerSecond = 2
	}
	if c.DataSource.Burst == 0 {
		c.DataSource.Burst = 4
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 22 * * 1-5"
	}
	if c.Redis.Stream == "" {
		c.Redis.Stream = "volscope:snapshots"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	for i, t := range c.Schedule.Watchlist {
		c.Schedule.Watchlist[i] = strings.ToUpper(strings.TrimSpace(t))
	}
}

// Validate checks field constraints and provider credentials.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}
	switch c.DataSource.Provider {
	case "alpaca":
		if c.DataSource.APIKey == "" || c.DataSource.APISecret == "" {
			return errors.New(errors.ErrCodeInvalidConfiguration, "data_source.api_key and data_source.api_secret are required for alpaca")
		}
	case "polygon":
		if c.DataSource.APIKey == "" {
			return errors.New(errors.ErrCodeInvalidConfiguration, "data_source.api_key is required for polygon")
		}
	}
	return nil
}

// ValidateTelegram checks the settings the watch command needs.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return errors.New(errors.ErrCodeInvalidConfiguration, "telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return errors.New(errors.ErrCodeInvalidConfiguration, "telegram.chat_id is required")
	}
	if len(c.Schedule.Watchlist) == 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "schedule.watchlist must name at least one ticker")
	}
	return nil
}

// ParseTickers splits a comma-separated list, upper-casing and dropping blanks.
func ParseTickers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, strings.ToUpper(t))
		}
	}
	return out
}
