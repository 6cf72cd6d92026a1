package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingAPIKey      = errors.New("OPENAI_API_KEY not set. Please set it in .env file or environment variable")
	ErrInvalidTemperature = errors.New("temperature must be between 0 and 2")
	ErrEnvExists          = errors.New(".env file already exists")
)

// EnvFile is the dotenv file loaded by Load before reading the environment.
var EnvFile = ".env"

type Config struct {
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Defaults DefaultsConfig `yaml:"defaults" mapstructure:"defaults"`
	Research ResearchConfig `yaml:"research" mapstructure:"research"`
	Unsplash UnsplashConfig `yaml:"unsplash" mapstructure:"unsplash"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
}

type LLMConfig struct {
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Model       string  `yaml:"model" mapstructure:"model"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

type DefaultsConfig struct {
	Language string `yaml:"language" mapstructure:"language"`
	Tone     string `yaml:"tone" mapstructure:"tone"`
	Length   string `yaml:"length" mapstructure:"length"`
	Author   string `yaml:"author" mapstructure:"author"`
}

type ResearchConfig struct {
	Servers  []string `yaml:"mcp_servers" mapstructure:"mcp_servers"`
	Feeds    []string `yaml:"feeds" mapstructure:"feeds"`
	FullText bool     `yaml:"full_text" mapstructure:"full_text"`
}

type UnsplashConfig struct {
	ApplicationID string `yaml:"application_id,omitempty" mapstructure:"application_id"`
	AccessKey     string `yaml:"access_key,omitempty" mapstructure:"access_key"`
	SecretKey     string `yaml:"secret_key,omitempty" mapstructure:"secret_key"`
}

type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"llm.api_key":             "OPENAI_API_KEY",
	"llm.base_url":            "OPENAI_API_BASE",
	"llm.model":               "DEFAULT_MODEL",
	"llm.temperature":         "TEMPERATURE",
	"defaults.language":       "DEFAULT_LANGUAGE",
	"defaults.tone":           "DEFAULT_TONE",
	"defaults.length":         "DEFAULT_LENGTH",
	"defaults.author":         "DEFAULT_AUTHOR",
	"research.mcp_servers":    "MCP_SERVERS",
	"research.feeds":          "RESEARCH_FEEDS",
	"research.full_text":      "RESEARCH_FULL_TEXT",
	"unsplash.application_id": "UNSPLASH_APPLICATION_ID",
	"unsplash.access_key":     "UNSPLASH_ACCESS_KEY",
	"unsplash.secret_key":     "UNSPLASH_SECRET_KEY",
	"fetch.timeout_seconds":   "REQUEST_TIMEOUT_SECONDS",
}

func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
		},
		Defaults: DefaultsConfig{
			Language: "Korean",
			Tone:     "professional",
			Length:   "medium",
			Author:   "Auto-Blogger",
		},
		Research: ResearchConfig{
			Servers: []string{},
			Feeds:   []string{},
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 30,
			UserAgent:      "autoblogger/0.1",
		},
	}
}

func Dir() string {
	if dir := os.Getenv("AUTOBLOGGER_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".autoblogger")
}

func configPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the dotenv file, the optional config.yaml and the environment,
// in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", EnvFile, err)
	}

	v := viper.New()
	def := Default()
	v.SetDefault("llm.model", def.LLM.Model)
	v.SetDefault("llm.temperature", def.LLM.Temperature)
	v.SetDefault("defaults.language", def.Defaults.Language)
	v.SetDefault("defaults.tone", def.Defaults.Tone)
	v.SetDefault("defaults.length", def.Defaults.Length)
	v.SetDefault("defaults.author", def.Defaults.Author)
	v.SetDefault("fetch.timeout_seconds", def.Fetch.TimeoutSeconds)
	v.SetDefault("fetch.user_agent", def.Fetch.UserAgent)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if _, err := os.Stat(configPath()); err == nil {
		v.SetConfigFile(configPath())
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.LLM.BaseURL = strings.TrimSpace(cfg.LLM.BaseURL)
	cfg.Research.Servers = cleanList(cfg.Research.Servers)
	cfg.Research.Feeds = cleanList(cfg.Research.Feeds)
	cfg.Unsplash.ApplicationID = strings.TrimSpace(cfg.Unsplash.ApplicationID)
	cfg.Unsplash.AccessKey = strings.TrimSpace(cfg.Unsplash.AccessKey)
	cfg.Unsplash.SecretKey = strings.TrimSpace(cfg.Unsplash.SecretKey)
	if cfg.Fetch.TimeoutSeconds <= 0 {
		cfg.Fetch.TimeoutSeconds = def.Fetch.TimeoutSeconds
	}
	return cfg, nil
}

func Save(cfg *Config) error {
	if err := os.MkdirAll(Dir(), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath(), data, 0644)
}

// LoadFile reads only config.yaml on top of the defaults, leaving the
// environment out. Use it when the result is written back with Save.
func LoadFile() (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(configPath())
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// AddFeed records a research feed in config.yaml. It reports false when the
// feed was already present.
func AddFeed(feedURL string) (bool, error) {
	cfg, err := LoadFile()
	if err != nil {
		return false, err
	}
	for _, f := range cfg.Research.Feeds {
		if f == feedURL {
			return false, nil
		}
	}
	cfg.Research.Feeds = append(cfg.Research.Feeds, feedURL)
	if err := Save(cfg); err != nil {
		return false, fmt.Errorf("failed to save config: %w", err)
	}
	return true, nil
}

// Validate reports configuration errors that must stop a run before any
// network call is made.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return ErrInvalidTemperature
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// UnsplashEnabled reports whether all three Unsplash credentials are present.
func (c *Config) UnsplashEnabled() bool {
	return c.Unsplash.ApplicationID != "" && c.Unsplash.AccessKey != "" && c.Unsplash.SecretKey != ""
}

// Masked returns a copy safe to print: secrets keep only their last four characters.
func (c *Config) Masked() *Config {
	out := *c
	out.LLM.APIKey = mask(c.LLM.APIKey)
	out.Unsplash.ApplicationID = mask(c.Unsplash.ApplicationID)
	out.Unsplash.AccessKey = mask(c.Unsplash.AccessKey)
	out.Unsplash.SecretKey = mask(c.Unsplash.SecretKey)
	return &out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func cleanList(items []string) []string {
	out := []string{}
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
