// Package config provides configuration loading and validation for the
// resume builder service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store backends, object stores and auth modes accepted by Validate.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"

	ObjectStoreLocal = "local"
	ObjectStoreS3    = "s3"

	AuthLocal    = "local"
	AuthSupabase = "supabase"
	AuthNone     = "none"
)

// Duration is a time.Duration that reads "30s" style strings or a number of
// seconds from JSON.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
	case string:
		parsed, err := parseDuration(v)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %s", string(data))
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config represents the service configuration. Values come from the
// environment and may be overridden by a JSON file.
type Config struct {
	// HTTP
	Port           int `json:"port,omitempty"`
	MaxUploadBytes int `json:"max_upload_bytes,omitempty"`

	// Persistence
	StoreBackend string `json:"store_backend,omitempty"` // memory, file or postgres
	DataFile     string `json:"data_file,omitempty"`     // JSON snapshot for the file backend
	DatabaseURL  string `json:"database_url,omitempty"`  // PostgreSQL connection URL

	// Object storage for compiled PDFs
	ObjectStore    string `json:"object_store,omitempty"` // local or s3
	ObjectStoreDir string `json:"object_store_dir,omitempty"`
	S3Bucket       string `json:"s3_bucket,omitempty"`
	S3Region       string `json:"s3_region,omitempty"`
	S3Prefix       string `json:"s3_prefix,omitempty"`

	// Generative AI
	LLMProvider   string `json:"llm_provider,omitempty"` // gemini or openai
	GeminiAPIKey  string `json:"gemini_api_key,omitempty"`
	OpenAIAPIKey  string `json:"openai_api_key,omitempty"`
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`

	// External tools
	PDFLatexPath        string   `json:"pdflatex_path,omitempty"`
	PandocPath          string   `json:"pandoc_path,omitempty"`
	CompileTimeout      Duration `json:"compile_timeout,omitempty"`
	AllowPlaceholderPDF bool     `json:"allow_placeholder_pdf,omitempty"`
	BrowserFetch        bool     `json:"browser_fetch,omitempty"` // Use headless browser for SPA job pages

	// Auth
	AuthMode           string `json:"auth_mode,omitempty"` // local, supabase or none
	JWTSecret          string `json:"jwt_secret,omitempty"`
	JWTExpirationHours int    `json:"jwt_expiration_hours,omitempty"`
	SupabaseJWTSecret  string `json:"supabase_jwt_secret,omitempty"`
	BcryptCost         int    `json:"bcrypt_cost,omitempty"`
	PasswordPepper     string `json:"password_pepper,omitempty"`

	// Logging
	LogLevel string `json:"log_level,omitempty"`
	LogDev   bool   `json:"log_dev,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:               8080,
		MaxUploadBytes:     10 << 20,
		StoreBackend:       StoreMemory,
		DataFile:           filepath.Join("data", "store.json"),
		ObjectStore:        ObjectStoreLocal,
		ObjectStoreDir:     filepath.Join("data", "objects"),
		LLMProvider:        "gemini",
		PDFLatexPath:       "pdflatex",
		PandocPath:         "pandoc",
		CompileTimeout:     Duration(60 * time.Second),
		AuthMode:           AuthLocal,
		JWTExpirationHours: 24,
		BcryptCost:         12,
		LogLevel:           "info",
	}
}

// Load builds the configuration from defaults and environment variables,
// then overlays the JSON file at path when path is non-empty. Fields absent
// from the file keep their environment value.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if path != "" {
		data, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}
	return &cfg, nil
}

// readFile reads a JSON configuration file.
func readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return data, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []string
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("invalid %s: %v", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("invalid %s: %v", key, err))
				return
			}
			*dst = b
		}
	}

	num("PORT", &c.Port)
	num("MAX_UPLOAD_BYTES", &c.MaxUploadBytes)
	str("STORE_BACKEND", &c.StoreBackend)
	str("DATA_FILE", &c.DataFile)
	str("DATABASE_URL", &c.DatabaseURL)
	str("OBJECT_STORE", &c.ObjectStore)
	str("OBJECT_STORE_DIR", &c.ObjectStoreDir)
	str("S3_BUCKET", &c.S3Bucket)
	str("S3_REGION", &c.S3Region)
	str("S3_PREFIX", &c.S3Prefix)
	str("LLM_PROVIDER", &c.LLMProvider)
	str("GEMINI_API_KEY", &c.GeminiAPIKey)
	str("OPENAI_API_KEY", &c.OpenAIAPIKey)
	str("OPENAI_BASE_URL", &c.OpenAIBaseURL)
	str("PDFLATEX_PATH", &c.PDFLatexPath)
	str("PANDOC_PATH", &c.PandocPath)
	flag("ALLOW_PLACEHOLDER_PDF", &c.AllowPlaceholderPDF)
	flag("BROWSER_FETCH", &c.BrowserFetch)
	str("AUTH_MODE", &c.AuthMode)
	str("JWT_SECRET", &c.JWTSecret)
	num("JWT_EXPIRATION_HOURS", &c.JWTExpirationHours)
	str("SUPABASE_JWT_SECRET", &c.SupabaseJWTSecret)
	num("BCRYPT_COST", &c.BcryptCost)
	str("PASSWORD_PEPPER", &c.PasswordPepper)
	str("LOG_LEVEL", &c.LogLevel)
	flag("LOG_DEV", &c.LogDev)

	if v, ok := lookup("COMPILE_TIMEOUT"); ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid COMPILE_TIMEOUT: %v", err))
		} else {
			c.CompileTimeout = Duration(d)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config error: %s", strings.Join(errs, "; "))
	}
	return nil
}

// parseDuration accepts Go duration strings or a bare number of seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be non-negative")
	}

	switch c.StoreBackend {
	case StoreMemory:
	case StoreFile:
		if c.DataFile == "" {
			return fmt.Errorf("config error: 'data_file' is required for the file store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres store")
		}
	default:
		return fmt.Errorf("config error: unknown store backend %q", c.StoreBackend)
	}

	switch c.ObjectStore {
	case ObjectStoreLocal:
		if c.ObjectStoreDir == "" {
			return fmt.Errorf("config error: 'object_store_dir' is required for the local object store")
		}
	case ObjectStoreS3:
		if c.S3Bucket == "" || c.S3Region == "" {
			return fmt.Errorf("config error: 's3_bucket' and 's3_region' are required for the s3 object store")
		}
	default:
		return fmt.Errorf("config error: unknown object store %q", c.ObjectStore)
	}

	switch c.LLMProvider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("config error: unknown llm provider %q", c.LLMProvider)
	}

	if c.CompileTimeout <= 0 {
		return fmt.Errorf("config error: 'compile_timeout' must be positive")
	}

	switch c.AuthMode {
	case AuthLocal:
		if _, err := c.JWTConfig(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if _, err := c.PasswordConfig(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	case AuthSupabase:
		if c.SupabaseJWTSecret == "" {
			return fmt.Errorf("config error: 'supabase_jwt_secret' is required when auth_mode is supabase")
		}
	case AuthNone:
	default:
		return fmt.Errorf("config error: unknown auth mode %q", c.AuthMode)
	}
	return nil
}

// APIKey returns the key for the configured LLM provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// JWTConfig returns the token settings held by c.
func (c *Config) JWTConfig() (*JWTConfig, error) {
	jc := &JWTConfig{Secret: c.JWTSecret, ExpirationHours: c.JWTExpirationHours}
	if err := jc.normalize(); err != nil {
		return nil, err
	}
	return jc, nil
}

// PasswordConfig returns the hashing settings held by c.
func (c *Config) PasswordConfig() (*PasswordConfig, error) {
	pc := &PasswordConfig{BcryptCost: c.BcryptCost, Pepper: c.PasswordPepper}
	if err := pc.normalize(); err != nil {
		return nil, err
	}
	return pc, nil
}
