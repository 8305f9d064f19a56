package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the research agent system
type Config struct {
	General   GeneralConfig    `mapstructure:"general"`
	Server    ServerConfig     `mapstructure:"server"`
	LLM       LLMConfig        `mapstructure:"llm"`
	Search    SearchConfig     `mapstructure:"search"`
	Fetch     FetchConfig      `mapstructure:"fetch"`
	Agent     AgentConfig      `mapstructure:"agent"`
	Reports   ReportsConfig    `mapstructure:"reports"`
	Registry  RegistryConfig   `mapstructure:"registry"`
	Schedules []ScheduleConfig `mapstructure:"schedules"`
	Telemetry TelemetryConfig  `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig describes the OpenAI-compatible completion backend.
// BaseURL may point at any compatible server (e.g. an Ollama /v1 endpoint).
type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.Model) == "" {
		return fmt.Errorf("llm.model is required")
	}
	return nil
}

// SearchConfig contains web search settings
type SearchConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Normalize applies defaults for unset search values.
func (s SearchConfig) Normalize() SearchConfig {
	if strings.TrimSpace(s.Endpoint) == "" {
		s.Endpoint = "https://html.duckduckgo.com/html/"
	}
	if s.MaxResults <= 0 {
		s.MaxResults = 3
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	return s
}

// FetchConfig contains page retrieval settings
type FetchConfig struct {
	Type            string        `mapstructure:"type"` // http, chromedp
	Attempts        int           `mapstructure:"attempts"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Backoff         time.Duration `mapstructure:"backoff"`
	MinArticleChars int           `mapstructure:"min_article_chars"`
	MaxChars        int           `mapstructure:"max_chars"`
}

// Normalize applies defaults for unset fetch values.
func (f FetchConfig) Normalize() FetchConfig {
	if strings.TrimSpace(f.Type) == "" {
		f.Type = "http"
	}
	if f.Attempts <= 0 {
		f.Attempts = 3
	}
	if f.Timeout <= 0 {
		f.Timeout = 20 * time.Second
	}
	if f.Backoff <= 0 {
		f.Backoff = time.Second
	}
	if f.MinArticleChars <= 0 {
		f.MinArticleChars = 200
	}
	if f.MaxChars <= 0 {
		f.MaxChars = 20000
	}
	return f
}

// AgentConfig contains research loop settings
type AgentConfig struct {
	MaxIterations int `mapstructure:"max_iterations"`
	HistoryKeep   int `mapstructure:"history_keep"`
}

// Normalize applies defaults for unset agent values.
func (a AgentConfig) Normalize() AgentConfig {
	if a.MaxIterations <= 0 {
		a.MaxIterations = 20
	}
	if a.HistoryKeep <= 0 {
		a.HistoryKeep = 8
	}
	return a
}

// ReportsConfig contains report artifact settings
type ReportsConfig struct {
	Dir string `mapstructure:"dir"`
}

func (r ReportsConfig) Validate() error {
	if strings.TrimSpace(r.Dir) == "" {
		return fmt.Errorf("reports.dir is required")
	}
	return nil
}

// RegistryConfig selects the artifact registry backend
type RegistryConfig struct {
	Type  string      `mapstructure:"type"` // inmemory, redis
	Redis RedisConfig `mapstructure:"redis"`
}

func (r RegistryConfig) Validate() error {
	switch r.Type {
	case "", "inmemory":
		return nil
	case "redis":
		if strings.TrimSpace(r.Redis.Host) == "" {
			return fmt.Errorf("registry.redis.host required")
		}
		if strings.TrimSpace(r.Redis.Port) == "" {
			return fmt.Errorf("registry.redis.port required")
		}
		return nil
	default:
		return fmt.Errorf("registry.type must be inmemory or redis")
	}
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScheduleConfig describes one recurring research task
type ScheduleConfig struct {
	Task       string `mapstructure:"task"`
	Cron       string `mapstructure:"cron"`
	MaxResults int    `mapstructure:"max_results"`
}

// TelemetryConfig contains metrics settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig loads config from file, falling back to defaults plus
// environment overrides (SCOUR_*) when no file is present.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("server.address", ":10010")
	viper.SetDefault("llm.base_url", "http://localhost:11434/v1")
	viper.SetDefault("llm.api_key", "ollama")
	viper.SetDefault("llm.model", "command-r")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.timeout", "120s")
	viper.SetDefault("reports.dir", "reports")
	viper.SetDefault("registry.type", "inmemory")
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("SCOUR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	config.Search = config.Search.Normalize()
	config.Fetch = config.Fetch.Normalize()
	config.Agent = config.Agent.Normalize()

	if err := config.LLM.Validate(); err != nil {
		panic(err)
	}
	if err := config.Reports.Validate(); err != nil {
		panic(err)
	}
	if err := config.Registry.Validate(); err != nil {
		panic(err)
	}
	return &config
}
