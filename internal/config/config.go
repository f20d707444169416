// Package config loads logoforge settings from an optional YAML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the YAML file, environment
// variables. Unknown YAML keys are rejected so typos do not go unnoticed.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/logoforge-mcp/internal/inference"
	"github.com/ironsheep/logoforge-mcp/internal/vectorize"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey   = "HUGGINGFACE_API_KEY"
	EnvHTTPAddr = "LOGOFORGE_HTTP_ADDR"
	EnvLogLevel = "LOGOFORGE_LOG_LEVEL"
	EnvConfig   = "LOGOFORGE_CONFIG"
)

// Log levels.
const (
	LogLevelInfo  = "info"
	LogLevelDebug = "debug"
)

// Config is the complete service configuration.
type Config struct {
	LogLevel    string            `yaml:"log_level"`
	HuggingFace HuggingFace       `yaml:"huggingface"`
	HTTP        HTTP              `yaml:"http"`
	Models      Models            `yaml:"models"`
	Trace       vectorize.Options `yaml:"trace"`
	Generation  Generation        `yaml:"generation"`
	Describe    Describe          `yaml:"describe"`
	OCR         OCR               `yaml:"ocr"`
	Cache       Cache             `yaml:"cache"`
}

// HuggingFace configures the inference provider.
type HuggingFace struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// HTTP configures the JSON API server.
type HTTP struct {
	Addr string `yaml:"addr"`

	// RequestTimeout bounds the handling of one request, provider calls
	// included.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// AllowedOrigins lists the origins allowed by CORS; "*" allows any.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// FetchRemote lets callers pass http(s) image URLs, which the service
	// then downloads. Loopback, private and link-local addresses are always
	// refused.
	FetchRemote bool `yaml:"fetch_remote"`

	// AllowedHosts restricts remote downloads to these host names. Empty
	// allows any public host.
	AllowedHosts []string `yaml:"allowed_hosts"`
}

// Models names the hosted models.
type Models struct {
	// Image is the text-to-image model used for logos and SVG sources.
	Image string `yaml:"image"`

	// Vision is the default vision-language model for descriptions.
	Vision string `yaml:"vision"`

	// AllowedVision lists the vision models callers may select.
	AllowedVision []string `yaml:"allowed_vision"`
}

// Generation holds the text-to-image parameters used when generating images
// meant for vectorization.
type Generation struct {
	Parameters inference.ImageParameters `yaml:"parameters"`
}

// Describe configures product descriptions.
type Describe struct {
	// Lengths maps a length name to its instruction.
	Lengths map[string]string `yaml:"lengths"`

	// DefaultLength is used when a request names none.
	DefaultLength string `yaml:"default_length"`

	// Languages lists the accepted language names.
	Languages []string `yaml:"languages"`

	// MaxLanguages bounds the languages of one request.
	MaxLanguages int `yaml:"max_languages"`

	// MaxTokens bounds each answer.
	MaxTokens int `yaml:"max_tokens"`

	// Concurrency bounds the parallel provider calls of one request.
	Concurrency int `yaml:"concurrency"`

	// UploadMaxSide downscales images before they are sent to the model.
	UploadMaxSide int `yaml:"upload_max_side"`
}

// OCR configures text hints for descriptions.
type OCR struct {
	Enabled        bool    `yaml:"enabled"`
	Language       string  `yaml:"language"`
	TessdataPrefix string  `yaml:"tessdata_prefix"`
	MinConfidence  float64 `yaml:"min_confidence"`
}

// Cache configures the vectorization result cache.
type Cache struct {
	// MaxEntries bounds the cache; zero disables caching.
	MaxEntries int `yaml:"max_entries"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: LogLevelInfo,
		HuggingFace: HuggingFace{
			BaseURL:    inference.DefaultBaseURL,
			Timeout:    2 * time.Minute,
			MaxRetries: 3,
			RetryDelay: 2 * time.Second,
		},
		HTTP: HTTP{
			Addr:           ":8080",
			RequestTimeout: 3 * time.Minute,
			MaxBodyBytes:   32 << 20,
			AllowedOrigins: []string{"*"},
		},
		Models: Models{
			Image:  "stabilityai/stable-diffusion-xl-base-1.0",
			Vision: "meta-llama/Llama-3.2-11B-Vision-Instruct",
			AllowedVision: []string{
				"meta-llama/Llama-3.2-11B-Vision-Instruct",
				"meta-llama/Llama-3.2-90B-Vision-Instruct",
			},
		},
		Trace: vectorize.DefaultOptions(),
		Generation: Generation{
			Parameters: inference.ImageParameters{
				NegativePrompt:    "text, words, letters, watermark, signature, blurry, low quality",
				NumInferenceSteps: 50,
				GuidanceScale:     7.5,
				Width:             1024,
				Height:            1024,
			},
		},
		Describe: Describe{
			Lengths: map[string]string{
				"short":  "Describe this product concisely in 2-3 sentences.",
				"medium": "Write a detailed product description in 4-5 sentences.",
				"long":   "Create a comprehensive product description including features, benefits, and use cases in 6-8 sentences.",
			},
			DefaultLength: "medium",
			Languages: []string{
				"english", "spanish", "french", "german", "italian",
				"japanese", "korean", "chinese", "portuguese",
			},
			MaxLanguages:  3,
			MaxTokens:     500,
			Concurrency:   3,
			UploadMaxSide: 1024,
		},
		OCR: OCR{
			Language:      "eng",
			MinConfidence: 0.6,
		},
		Cache: Cache{MaxEntries: 128},
	}
}

// Load returns the configuration for path: defaults, overlaid with the YAML
// file when path is not empty, overlaid with the environment. The result is
// validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := Decode(bytes.NewReader(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	ApplyEnv(&cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays YAML from r onto cfg, rejecting unknown keys. An empty
// document leaves cfg unchanged.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// ApplyEnv overrides cfg with the environment variables that are set.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAPIKey)); v != "" {
		cfg.HuggingFace.APIKey = v
	}
	if v := strings.TrimSpace(getenv(EnvHTTPAddr)); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch c.LogLevel {
	case LogLevelInfo, LogLevelDebug:
	default:
		return fmt.Errorf("log_level must be %q or %q, got %q", LogLevelInfo, LogLevelDebug, c.LogLevel)
	}

	if err := c.Trace.Validate(); err != nil {
		return fmt.Errorf("trace: %w", err)
	}

	if c.Models.Image == "" {
		return fmt.Errorf("models.image must be set")
	}
	if !contains(c.Models.AllowedVision, c.Models.Vision) {
		return fmt.Errorf("models.vision %q is not in models.allowed_vision", c.Models.Vision)
	}

	d := c.Describe
	if len(d.Lengths) == 0 {
		return fmt.Errorf("describe.lengths must not be empty")
	}
	if _, ok := d.Lengths[d.DefaultLength]; !ok {
		return fmt.Errorf("describe.default_length %q is not in describe.lengths", d.DefaultLength)
	}
	if len(d.Languages) == 0 {
		return fmt.Errorf("describe.languages must not be empty")
	}
	if d.MaxLanguages < 1 {
		return fmt.Errorf("describe.max_languages must be >= 1, got %d", d.MaxLanguages)
	}
	if d.Concurrency < 1 {
		return fmt.Errorf("describe.concurrency must be >= 1, got %d", d.Concurrency)
	}
	if d.MaxTokens < 0 || d.UploadMaxSide < 0 {
		return fmt.Errorf("describe.max_tokens and describe.upload_max_side must be >= 0")
	}

	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be >= 0, got %d", c.Cache.MaxEntries)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("http.max_body_bytes must be > 0, got %d", c.HTTP.MaxBodyBytes)
	}
	return nil
}

// Inference returns the client settings.
func (c Config) Inference() inference.Config {
	return inference.Config{
		APIKey:     c.HuggingFace.APIKey,
		BaseURL:    c.HuggingFace.BaseURL,
		Timeout:    c.HuggingFace.Timeout,
		MaxRetries: c.HuggingFace.MaxRetries,
		RetryDelay: c.HuggingFace.RetryDelay,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
