package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken string        `yaml:"discord_token"`
	OpenAIKey    string        `yaml:"openai_api_key"`
	GeminiKey    string        `yaml:"gemini_api_key"`
	DataDir      string        `yaml:"data_dir"`
	LogLevel     string        `yaml:"log_level"`
	Health       HealthConfig  `yaml:"health"`
	Spam         SpamConfig    `yaml:"spam"`
	Tickets      TicketConfig  `yaml:"tickets"`
	Timeouts     TimeoutConfig `yaml:"timeouts"`
	DM           DMConfig      `yaml:"dm"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type SpamConfig struct {
	Threshold     int `yaml:"threshold"`
	WindowSeconds int `yaml:"window_seconds"`
}

type TicketConfig struct {
	CooldownSeconds   int    `yaml:"cooldown_seconds"`
	CloseGraceSeconds int    `yaml:"close_grace_seconds"`
	CategoryName      string `yaml:"category_name"`
}

type TimeoutConfig struct {
	SpamMinutes  int `yaml:"spam_minutes"`
	CurseMinutes int `yaml:"curse_minutes"`
}

type DMConfig struct {
	BroadcastDelayMillis int `yaml:"broadcast_delay_millis"`
}

func DefaultConfig() Config {
	return Config{
		DataDir:  ".",
		LogLevel: "info",
		Health:   HealthConfig{Enabled: false, Addr: ":8080"},
		Spam: SpamConfig{
			Threshold:     5,
			WindowSeconds: 6,
		},
		Tickets: TicketConfig{
			CooldownSeconds:   60,
			CloseGraceSeconds: 5,
			CategoryName:      "Tickets",
		},
		Timeouts: TimeoutConfig{
			SpamMinutes:  10,
			CurseMinutes: 5,
		},
		DM: DMConfig{BroadcastDelayMillis: 500},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.OpenAIKey = envString("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.GeminiKey = envString("GEMINI_API_KEY", cfg.GeminiKey)
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Spam.Threshold = envInt("SPAM_THRESHOLD", cfg.Spam.Threshold)
	cfg.Spam.WindowSeconds = envInt("SPAM_WINDOW_SECONDS", cfg.Spam.WindowSeconds)
	cfg.Tickets.CooldownSeconds = envInt("TICKET_COOLDOWN_SECONDS", cfg.Tickets.CooldownSeconds)
	cfg.Tickets.CloseGraceSeconds = envInt("TICKET_CLOSE_GRACE_SECONDS", cfg.Tickets.CloseGraceSeconds)
	cfg.Tickets.CategoryName = envString("TICKET_CATEGORY_NAME", cfg.Tickets.CategoryName)
	cfg.Timeouts.SpamMinutes = envInt("SPAM_TIMEOUT_MINUTES", cfg.Timeouts.SpamMinutes)
	cfg.Timeouts.CurseMinutes = envInt("CURSE_TIMEOUT_MINUTES", cfg.Timeouts.CurseMinutes)
	cfg.DM.BroadcastDelayMillis = envInt("DM_BROADCAST_DELAY_MILLIS", cfg.DM.BroadcastDelayMillis)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
