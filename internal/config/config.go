package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode     Mode   `yaml:"mode"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// mock, vertex, gemini, deepseek or anthropic
	LLMProvider string        `yaml:"llm_provider"`
	AITimeout   time.Duration `yaml:"ai_timeout"`

	GCPProjectID string `yaml:"gcp_project"`
	GCPLocation  string `yaml:"gcp_location"`
	ModelName    string `yaml:"model_name"`
	GeminiAPIKey string `yaml:"gemini_api_key"`

	DeepSeekAPIKey  string `yaml:"deepseek_api_key"`
	DeepSeekBaseURL string `yaml:"deepseek_base_url"`
	DeepSeekModel   string `yaml:"deepseek_model"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`

	StorageBackend string `yaml:"storage_backend"` // "memory", "sqlite" or "firestore"
	SQLitePath     string `yaml:"sqlite_path"`

	CatalogLive      bool          `yaml:"catalog_live"`
	CatalogBaseURL   string        `yaml:"catalog_base_url"`
	CatalogTimeout   time.Duration `yaml:"catalog_timeout"`
	CatalogCacheSize int           `yaml:"catalog_cache_size"`
	CatalogCacheTTL  time.Duration `yaml:"catalog_cache_ttl"`

	HistoryLimit int `yaml:"history_limit"`
}

// Default returns the local development configuration.
func Default() *Config {
	return &Config{
		Mode:     ModeLocal,
		Port:     "8080",
		LogLevel: "info",

		LLMProvider: "mock",
		AITimeout:   30 * time.Second,

		GCPLocation: "us-central1",
		ModelName:   "gemini-2.5-flash-lite",

		DeepSeekBaseURL: "https://api.deepseek.com",
		DeepSeekModel:   "deepseek-chat",
		AnthropicModel:  "claude-3-5-haiku-latest",

		StorageBackend: "memory",
		SQLitePath:     "partsdesk.db",

		CatalogBaseURL:   "https://www.partselect.com",
		CatalogTimeout:   5 * time.Second,
		CatalogCacheSize: 256,
		CatalogCacheTTL:  30 * time.Minute,

		HistoryLimit: 10,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load builds the config from defaults, the optional YAML file named by
// PARTSDESK_CONFIG and then environment variables.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("PARTSDESK_CONFIG"))
}

// LoadFile is Load with an explicit config file path; an empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	switch getEnv("PARTSDESK_MODE", string(c.Mode)) {
	case "gcp":
		c.Mode = ModeGCP
	default:
		c.Mode = ModeLocal
	}

	c.Port = getEnv("PARTSDESK_PORT", getEnv("PORT", c.Port))
	c.LogLevel = getEnv("PARTSDESK_LOG_LEVEL", c.LogLevel)

	c.LLMProvider = getEnv("PARTSDESK_LLM_PROVIDER", c.LLMProvider)
	c.AITimeout = getDurationEnv("PARTSDESK_AI_TIMEOUT", c.AITimeout)

	c.GCPProjectID = getEnv("PARTSDESK_GCP_PROJECT", c.GCPProjectID)
	c.GCPLocation = getEnv("PARTSDESK_GCP_LOCATION", c.GCPLocation)
	c.ModelName = getEnv("PARTSDESK_MODEL_NAME", c.ModelName)
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)

	c.DeepSeekAPIKey = getEnv("DEEPSEEK_API_KEY", c.DeepSeekAPIKey)
	c.DeepSeekBaseURL = getEnv("PARTSDESK_DEEPSEEK_BASE_URL", c.DeepSeekBaseURL)
	c.DeepSeekModel = getEnv("PARTSDESK_DEEPSEEK_MODEL", c.DeepSeekModel)

	c.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	c.AnthropicModel = getEnv("PARTSDESK_ANTHROPIC_MODEL", c.AnthropicModel)

	c.StorageBackend = getEnv("PARTSDESK_STORAGE_BACKEND", c.StorageBackend)
	c.SQLitePath = getEnv("PARTSDESK_SQLITE_PATH", c.SQLitePath)

	c.CatalogLive = getBoolEnv("PARTSDESK_CATALOG_LIVE", c.CatalogLive)
	c.CatalogBaseURL = getEnv("PARTSDESK_CATALOG_BASE_URL", c.CatalogBaseURL)
	c.CatalogTimeout = getDurationEnv("PARTSDESK_CATALOG_TIMEOUT", c.CatalogTimeout)
	c.CatalogCacheSize = getIntEnv("PARTSDESK_CATALOG_CACHE_SIZE", c.CatalogCacheSize)
	c.CatalogCacheTTL = getDurationEnv("PARTSDESK_CATALOG_CACHE_TTL", c.CatalogCacheTTL)

	c.HistoryLimit = getIntEnv("PARTSDESK_HISTORY_LIMIT", c.HistoryLimit)
}

// Validate rejects combinations that cannot start.
func (c *Config) Validate() error {
	var errs []error

	switch c.LLMProvider {
	case "mock":
	case "vertex":
		if c.GCPProjectID == "" {
			errs = append(errs, errors.New("PARTSDESK_GCP_PROJECT must be set for the vertex provider"))
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY must be set for the gemini provider"))
		}
	case "deepseek":
		if c.DeepSeekAPIKey == "" {
			errs = append(errs, errors.New("DEEPSEEK_API_KEY must be set for the deepseek provider"))
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY must be set for the anthropic provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLMProvider))
	}

	switch c.StorageBackend {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite path must be set for the sqlite backend"))
		}
	case "firestore":
		if c.GCPProjectID == "" {
			errs = append(errs, errors.New("PARTSDESK_GCP_PROJECT must be set for the firestore backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}

	if c.Mode == ModeGCP && c.GCPProjectID == "" {
		errs = append(errs, errors.New("PARTSDESK_GCP_PROJECT must be set in gcp mode"))
	}
	if c.AITimeout <= 0 {
		errs = append(errs, errors.New("ai timeout must be positive"))
	}

	return errors.Join(errs...)
}
