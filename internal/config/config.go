package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PaperSize describes a printable page in inches.
type PaperSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Viewport describes the emulated browser viewport used for rendering.
type Viewport struct {
	Width  int64   `yaml:"width"`
	Height int64   `yaml:"height"`
	Scale  float64 `yaml:"scale"`
}

// Config holds all service configuration loaded from YAML with defaults
// applied for missing sections.
type Config struct {
	Server struct {
		Host    string `yaml:"host"`
		Port    string `yaml:"port"`
		Prefork bool   `yaml:"prefork"`
	} `yaml:"server"`

	CORS struct {
		AllowedOrigins string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	RateLimiter struct {
		Enabled  bool          `yaml:"enabled"`
		Max      int           `yaml:"max"`
		Interval time.Duration `yaml:"interval"`
	} `yaml:"rate_limiter"`

	PDF struct {
		ChromePath        string               `yaml:"chrome_path"`
		ChromeNoSandbox   bool                 `yaml:"chrome_no_sandbox"`
		UserDataDir       string               `yaml:"user_data_dir"`
		TimeoutSecs       int                  `yaml:"timeout_secs"`
		DefaultPaper      string               `yaml:"default_paper"`
		PaperSizes        map[string]PaperSize `yaml:"paper_sizes"`
		Viewport          Viewport             `yaml:"viewport"`
		MarginMM          float64              `yaml:"margin_mm"`
		NetworkQuietMS    int                  `yaml:"network_quiet_ms"`
		PerRequestBrowser bool                 `yaml:"per_request_browser"`
	} `yaml:"pdf"`

	Limits struct {
		MaxHTMLBytes int `yaml:"max_html_bytes"`
		MaxPDFBytes  int `yaml:"max_pdf_bytes"`
		MaxProducts  int `yaml:"max_products"`
	} `yaml:"limits"`

	Cache struct {
		RedisHost       string        `yaml:"redis_host"`
		RateLimitDB     int           `yaml:"rate_limit_db"`
		PDFCacheEnabled bool          `yaml:"pdf_cache_enabled"`
		PDFCacheDB      int           `yaml:"pdf_cache_db"`
		PDFCacheTTL     time.Duration `yaml:"pdf_cache_ttl"`
	} `yaml:"cache"`

	Logger struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
		Level      string `yaml:"level"`
	} `yaml:"logger"`

	DevMode bool `yaml:"dev_mode"`
}

// Default returns a Config populated with the service defaults. A missing
// config file is not an error; the defaults describe a working local setup.
func Default() Config {
	var cfg Config
	cfg.Server.Host = ""
	cfg.Server.Port = ":3000"

	cfg.RateLimiter.Max = 100
	cfg.RateLimiter.Interval = time.Minute

	cfg.PDF.TimeoutSecs = 30
	cfg.PDF.DefaultPaper = "A4"
	cfg.PDF.PaperSizes = map[string]PaperSize{
		"A4":     {Width: 8.27, Height: 11.69},
		"A3":     {Width: 11.69, Height: 16.54},
		"LETTER": {Width: 8.5, Height: 11},
		"LEGAL":  {Width: 8.5, Height: 14},
	}
	cfg.PDF.Viewport = Viewport{Width: 1200, Height: 800, Scale: 1}
	cfg.PDF.MarginMM = 10
	cfg.PDF.NetworkQuietMS = 500

	cfg.Limits.MaxHTMLBytes = 5 * 1024 * 1024
	cfg.Limits.MaxPDFBytes = 50 * 1024 * 1024
	cfg.Limits.MaxProducts = 500

	cfg.Cache.RedisHost = "127.0.0.1:6379"
	cfg.Cache.PDFCacheTTL = 24 * time.Hour

	cfg.Logger.Level = "info"
	cfg.Logger.MaxSizeMB = 50
	cfg.Logger.MaxBackups = 3
	cfg.Logger.MaxAgeDays = 14

	return cfg
}

// Load reads configuration from the path in CONFIG_PATH, falling back to
// ./config.yaml. A missing file yields the defaults.
func Load() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default()
	}
	return LoadFrom(path)
}

// LoadFrom reads and validates configuration from the given file. Invalid
// configuration is a deployment error, so it panics rather than limping on.
func LoadFrom(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: cannot read %s: %v", path, err))
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		panic(fmt.Sprintf("config: cannot parse %s: %v", path, err))
	}

	if cfg.PDF.TimeoutSecs <= 0 {
		panic("config: pdf.timeout_secs must be positive")
	}
	if _, ok := cfg.PDF.PaperSizes[cfg.PDF.DefaultPaper]; !ok {
		panic(fmt.Sprintf("config: pdf.default_paper %q not in pdf.paper_sizes", cfg.PDF.DefaultPaper))
	}
	if cfg.RateLimiter.Enabled && cfg.RateLimiter.Max <= 0 {
		panic("config: rate_limiter.max must be positive when enabled")
	}
	if cfg.Limits.MaxHTMLBytes <= 0 || cfg.Limits.MaxPDFBytes <= 0 {
		panic("config: limits must be positive")
	}

	return cfg
}
