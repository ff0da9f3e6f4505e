package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	WebSocket   WebSocketConfig `toml:"websocket"`
	Shopify     ShopifyConfig   `toml:"shopify"`
	Ebay        EbayConfig      `toml:"ebay"`
	Images      ImagesConfig    `toml:"images"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	LLM         LLMConfig       `toml:"llm"`
	Pipeline    PipelineConfig  `toml:"pipeline"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Orders      OrdersConfig    `toml:"orders"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

// WebSocketConfig contains configuration for WebSocket event streaming
type WebSocketConfig struct {
	// Whitelist of event types to broadcast. Empty list allows all events.
	AllowedEvents []string `toml:"allowed_events"`
	// Minimum interval between job_progress broadcasts per connection
	ProgressThrottle string `toml:"progress_throttle"`
}

// ShopifyConfig contains catalog platform (Shopify Admin API) configuration
type ShopifyConfig struct {
	ShopDomain  string `toml:"shop_domain"`  // e.g. "my-store.myshopify.com"
	AccessToken string `toml:"access_token"` // Admin API access token
	APIVersion  string `toml:"api_version"`  // e.g. "2024-01"
	Timeout     string `toml:"timeout"`
}

// EbayConfig contains marketplace (eBay Sell API) configuration
type EbayConfig struct {
	BaseURL             string `toml:"base_url"` // defaults to production API
	Token               string `toml:"token"`    // OAuth user token
	MarketplaceID       string `toml:"marketplace_id"`
	MerchantLocationKey string `toml:"merchant_location_key"`
	LocationPostalCode  string `toml:"location_postal_code"`
	LocationCountry     string `toml:"location_country"`
	Currency            string `toml:"currency"`
	FulfillmentPolicyID string `toml:"fulfillment_policy_id"` // optional override; fetched when empty
	PaymentPolicyID     string `toml:"payment_policy_id"`
	ReturnPolicyID      string `toml:"return_policy_id"`
	Timeout             string `toml:"timeout"`
}

// ImagesConfig contains the background-removal image service configuration
type ImagesConfig struct {
	BaseURL       string `toml:"base_url"` // e.g. "http://localhost:8400"
	Timeout       string `toml:"timeout"`  // per-request timeout, mirrors the service's own limit
	TemplateText  string `toml:"template_text"`
	Background    string `toml:"background"`      // hex background color for processed photos
	OutputDir     string `toml:"output_dir"`      // where processed photos are written
	PublicBaseURL string `toml:"public_base_url"` // URL prefix the output dir is served under
}

// ClaudeConfig contains Anthropic Claude configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"` // ANTHROPIC_API_KEY or config
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// GeminiConfig contains Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// LLM provider names
const (
	LLMProviderClaude = "claude"
	LLMProviderGemini = "gemini"
)

type LLMConfig struct {
	Provider string `toml:"provider"` // "claude" or "gemini"
}

// PipelineConfig contains listing automation pipeline settings
type PipelineConfig struct {
	StreamBufferSize int `toml:"stream_buffer_size"` // per-subscriber frame buffer
}

// SchedulerConfig contains cron maintenance settings
type SchedulerConfig struct {
	Enabled           bool   `toml:"enabled"`
	StaleJobSchedule  string `toml:"stale_job_schedule"`  // cron expression
	StaleJobThreshold string `toml:"stale_job_threshold"` // running longer than this is stale
	StorageGCSchedule string `toml:"storage_gc_schedule"` // badger value log GC cadence
}

// OrdersConfig contains batch order cleanup settings
type OrdersConfig struct {
	CleanupDelay string `toml:"cleanup_delay"` // fixed inter-call delay between deletes
	CleanupLimit int    `toml:"cleanup_limit"` // max orders per cleanup run
}

// NewDefaultConfig returns the configuration defaults applied before any
// file or environment override.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/relist",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		WebSocket: WebSocketConfig{
			AllowedEvents:    []string{},
			ProgressThrottle: "500ms",
		},
		Shopify: ShopifyConfig{
			APIVersion: "2024-01",
			Timeout:    "30s",
		},
		Ebay: EbayConfig{
			BaseURL:             "https://api.ebay.com",
			MarketplaceID:       "EBAY_US",
			MerchantLocationKey: "default-location",
			LocationPostalCode:  "98101",
			LocationCountry:     "US",
			Currency:            "USD",
			Timeout:             "45s",
		},
		Images: ImagesConfig{
			BaseURL:       "http://localhost:8400",
			Timeout:       "120s", // matches the image service's own request timeout
			Background:    "FFFFFF",
			OutputDir:     "./data/photos",
			PublicBaseURL: "http://localhost:8080/photos",
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   2048,
			Timeout:     "2m",
			Temperature: 0.7,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-3-flash-preview",
			Timeout:     "2m",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			Provider: LLMProviderClaude,
		},
		Pipeline: PipelineConfig{
			StreamBufferSize: 64,
		},
		Scheduler: SchedulerConfig{
			Enabled:           true,
			StaleJobSchedule:  "@every 5m",
			StaleJobThreshold: "30m",
			StorageGCSchedule: "@every 1h",
		},
		Orders: OrdersConfig{
			CleanupDelay: "600ms",
			CleanupLimit: 250,
		},
	}
}

// LoadFromFiles loads configuration from files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override everything.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("RELIST_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("RELIST_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("RELIST_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("RELIST_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("RELIST_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("RELIST_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Catalog platform
	if domain := os.Getenv("SHOPIFY_SHOP_DOMAIN"); domain != "" {
		config.Shopify.ShopDomain = domain
	}
	if token := os.Getenv("SHOPIFY_ACCESS_TOKEN"); token != "" {
		config.Shopify.AccessToken = token
	}

	// Marketplace
	if token := os.Getenv("EBAY_TOKEN"); token != "" {
		config.Ebay.Token = token
	}
	if base := os.Getenv("EBAY_BASE_URL"); base != "" {
		config.Ebay.BaseURL = base
	}

	// Image service
	if base := os.Getenv("RELIST_IMAGES_BASE_URL"); base != "" {
		config.Images.BaseURL = base
	}

	// LLM providers
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if provider := os.Getenv("RELIST_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ParseDurationOr parses a duration string, returning the fallback when the
// value is empty or invalid.
func ParseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
