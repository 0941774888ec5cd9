package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	Log     LogConfig
	HTTP    HTTPConfig
	CUPS    CUPSConfig
	Upload  UploadConfig
	Preview PreviewConfig
	Print   PrintConfig
	Render  RenderConfig
	Auth    AuthConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// CUPSConfig holds print backend connection settings
type CUPSConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
}

// UploadConfig holds upload storage settings
type UploadConfig struct {
	Dir               string
	MaxFileSize       int64
	AllowedExtensions []string
}

// PreviewConfig holds preview generation settings
type PreviewConfig struct {
	Dir          string
	MaxWidth     int
	MaxHeight    int
	PdftoppmPath string
}

// PrintConfig holds print job settings
type PrintConfig struct {
	DefaultPrinter string
}

// RenderConfig holds HTML-to-PDF engine settings
type RenderConfig struct {
	// Engine selects the renderer: "chromedp" or "wkhtmltopdf"
	Engine string
	// ChromeRemoteURL points to a remote Chrome instance (optional)
	ChromeRemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// WkhtmltopdfPath is the wkhtmltopdf binary location
	WkhtmltopdfPath string
	// Timeout for a single render
	Timeout time.Duration
}

// AuthConfig holds API authentication settings
type AuthConfig struct {
	// RequireKey enables the X-API-Key check on /api routes
	RequireKey bool
	// APIKey is the expected key value
	APIKey string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with PRINT_ prefix (e.g., PRINT_CUPS_HOST)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("PRINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		CUPS: CUPSConfig{
			Host:     v.GetString("cups.host"),
			Port:     v.GetInt("cups.port"),
			Username: v.GetString("cups.username"),
			Password: v.GetString("cups.password"),
			UseTLS:   v.GetBool("cups.use_tls"),
		},
		Upload: UploadConfig{
			Dir:               v.GetString("upload.dir"),
			MaxFileSize:       v.GetInt64("upload.max_file_size"),
			AllowedExtensions: v.GetStringSlice("upload.allowed_extensions"),
		},
		Preview: PreviewConfig{
			Dir:          v.GetString("preview.dir"),
			MaxWidth:     v.GetInt("preview.max_width"),
			MaxHeight:    v.GetInt("preview.max_height"),
			PdftoppmPath: v.GetString("preview.pdftoppm_path"),
		},
		Print: PrintConfig{
			DefaultPrinter: v.GetString("print.default_printer"),
		},
		Render: RenderConfig{
			Engine:          v.GetString("render.engine"),
			ChromeRemoteURL: v.GetString("render.chrome_remote_url"),
			NoSandbox:       v.GetBool("render.no_sandbox"),
			WkhtmltopdfPath: v.GetString("render.wkhtmltopdf_path"),
			Timeout:         v.GetDuration("render.timeout"),
		},
		Auth: AuthConfig{
			RequireKey: v.GetBool("auth.require_key"),
			APIKey:     v.GetString("auth.api_key"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "print-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Conversions can take a while; give responses room to finish
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 50 << 20 // 50MB, uploads included
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID", "X-API-Key"}
	}
	if cfg.CUPS.Host == "" {
		cfg.CUPS.Host = "localhost"
	}
	if cfg.CUPS.Port == 0 {
		cfg.CUPS.Port = 631
	}
	if cfg.Upload.Dir == "" {
		cfg.Upload.Dir = "/data/uploads"
	}
	if cfg.Upload.MaxFileSize == 0 {
		cfg.Upload.MaxFileSize = 50 << 20 // 50MB
	}
	if len(cfg.Upload.AllowedExtensions) == 0 {
		cfg.Upload.AllowedExtensions = []string{
			"pdf", "png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff",
			"txt", "csv", "html", "htm",
			"doc", "docx", "xls", "xlsx", "ppt", "pptx",
		}
	}
	if cfg.Preview.Dir == "" {
		cfg.Preview.Dir = "/data/previews"
	}
	if cfg.Preview.MaxWidth == 0 {
		cfg.Preview.MaxWidth = 800
	}
	if cfg.Preview.MaxHeight == 0 {
		cfg.Preview.MaxHeight = 1000
	}
	if cfg.Preview.PdftoppmPath == "" {
		cfg.Preview.PdftoppmPath = "pdftoppm"
	}
	if cfg.Render.Engine == "" {
		cfg.Render.Engine = "chromedp"
	}
	if cfg.Render.WkhtmltopdfPath == "" {
		cfg.Render.WkhtmltopdfPath = "wkhtmltopdf"
	}
	if cfg.Render.Timeout == 0 {
		cfg.Render.Timeout = 30 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Preview.MaxWidth < 0 || c.Preview.MaxHeight < 0 {
		return fmt.Errorf("preview dimensions cannot be negative")
	}
	if c.Upload.MaxFileSize < 0 {
		return fmt.Errorf("upload.max_file_size cannot be negative")
	}

	switch c.Render.Engine {
	case "chromedp", "wkhtmltopdf":
	default:
		return fmt.Errorf("render.engine must be 'chromedp' or 'wkhtmltopdf', got %q", c.Render.Engine)
	}

	if c.Auth.RequireKey && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required when auth.require_key is enabled")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// AllowsExtension reports whether uploads with the given extension are accepted
func (u *UploadConfig) AllowsExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, allowed := range u.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
