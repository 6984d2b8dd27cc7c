package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"carlens/internal/domain"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

// Environment overrides
const (
	EnvAccessKey   = "CARLENS_UNSPLASH_ACCESS_KEY"
	EnvVPICURL     = "CARLENS_VPIC_URL"
	EnvUnsplashURL = "CARLENS_UNSPLASH_URL"
)

// Image pick strategies
const (
	PickRandom = "random"
	PickFirst  = "first"
)

// Duration is a time.Duration that reads and writes as "15s" in TOML
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config represents the application configuration
type Config struct {
	Version           int                `toml:"version"`
	VPICURL           string             `toml:"vpic_url"`
	UnsplashURL       string             `toml:"unsplash_url"`
	UnsplashAccessKey string             `toml:"unsplash_access_key"`
	Records           domain.RecordsKind `toml:"records"`
	MaxResults        int                `toml:"max_results"`
	ImagePick         string             `toml:"image_pick"`
	ImagesPerPage     int                `toml:"images_per_page"`
	RequestTimeout    Duration           `toml:"request_timeout"`
	Makes             []string           `toml:"makes"`
	UISettings        UISettings         `toml:"ui"`
	Cache             CacheSettings      `toml:"cache"`
	Server            ServerSettings     `toml:"server"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	NarrowWidth      int `toml:"narrow_width"`
	NarrowMaxResults int `toml:"narrow_max_results"`
}

// CacheSettings controls the in-memory response cache
type CacheSettings struct {
	Enabled bool     `toml:"enabled"`
	TTL     Duration `toml:"ttl"`
	MaxCost int64    `toml:"max_cost"`
}

// ServerSettings configures `carlens serve`
type ServerSettings struct {
	Addr       string   `toml:"addr"`
	RateLimit  int      `toml:"rate_limit"`
	RateWindow Duration `toml:"rate_window"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	filePath string
	getenv   func(string) string
}

// NewConfigService creates a config service backed by the user config directory
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	return &configService{
		filePath: filepath.Join(configDir, "carlens", "config.toml"),
		getenv:   os.Getenv,
	}
}

// NewConfigServiceAt creates a config service for an explicit file
func NewConfigServiceAt(path string) ConfigService {
	return &configService{
		filePath: path,
		getenv:   os.Getenv,
	}
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file. A missing file yields the defaults.
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnv(cs.getenv)
		return cfg, cfg.Validate()
	}

	cfg, err := cs.LoadFromPath(cs.filePath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so partial files keep sane values
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv(cs.getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold an access key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvAccessKey); v != "" {
		c.UnsplashAccessKey = v
	}
	if v := getenv(EnvVPICURL); v != "" {
		c.VPICURL = v
	}
	if v := getenv(EnvUnsplashURL); v != "" {
		c.UnsplashURL = v
	}
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	switch {
	case !c.Records.Valid():
		return fmt.Errorf("%w: records must be %q or %q, got %q", ErrInvalid, domain.RecordsModels, domain.RecordsTypes, c.Records)
	case c.MaxResults <= 0:
		return fmt.Errorf("%w: max_results must be positive", ErrInvalid)
	case c.UISettings.NarrowMaxResults <= 0:
		return fmt.Errorf("%w: ui.narrow_max_results must be positive", ErrInvalid)
	case c.ImagePick != PickRandom && c.ImagePick != PickFirst:
		return fmt.Errorf("%w: image_pick must be %q or %q, got %q", ErrInvalid, PickRandom, PickFirst, c.ImagePick)
	case c.ImagesPerPage <= 0 || c.ImagesPerPage > 30:
		return fmt.Errorf("%w: images_per_page must be between 1 and 30", ErrInvalid)
	case c.RequestTimeout < 0:
		return fmt.Errorf("%w: request_timeout must not be negative", ErrInvalid)
	case c.VPICURL == "" || c.UnsplashURL == "":
		return fmt.Errorf("%w: service URLs must be set", ErrInvalid)
	case c.Server.RateLimit < 0:
		return fmt.Errorf("%w: server.rate_limit must not be negative", ErrInvalid)
	}
	return nil
}

// Timeout returns the per-request timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout)
}

// DefaultMakes is the picker list shown when none is configured
var DefaultMakes = []string{
	"Mercedes", "Toyota", "Ford", "Honda", "Lexus", "Mazda",
	"Kia", "Hyundai", "Mitsubishi", "Tesla", "Subaru", "Isuzu",
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:        1,
		VPICURL:        "https://vpic.nhtsa.dot.gov/api/vehicles",
		UnsplashURL:    "https://api.unsplash.com",
		Records:        domain.RecordsModels,
		MaxResults:     10,
		ImagePick:      PickRandom,
		ImagesPerPage:  1,
		RequestTimeout: Duration(15 * time.Second),
		Makes:          append([]string(nil), DefaultMakes...),
		UISettings: UISettings{
			NarrowWidth:      80,
			NarrowMaxResults: 5,
		},
		Cache: CacheSettings{
			Enabled: true,
			TTL:     Duration(10 * time.Minute),
			MaxCost: 1 << 22,
		},
		Server: ServerSettings{
			Addr:       "127.0.0.1:8080",
			RateLimit:  60,
			RateWindow: Duration(time.Minute),
		},
	}
}
