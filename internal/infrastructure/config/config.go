package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Localline LocallineConfig
	Mail      MailConfig
	Reports   ReportsConfig
	Database  DatabaseConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LocallineConfig holds backoffice API credentials and polling behavior.
type LocallineConfig struct {
	BaseURL         string
	Username        string
	Password        string
	RequestTimeout  time.Duration
	PollInterval    time.Duration // delay between export status checks
	PollLimit       int           // max status checks before giving up
	MaxDownloadSize int64         // cap on downloaded export bodies
}

// MailConfig holds outbound mail settings.
type MailConfig struct {
	SendgridAPIKey string
	From           string
	FromName       string
	// Recipients per report stream; Operator receives failure notices.
	Checklists     []string
	DeliveryOrders []string
	Analytics      []string
	Operator       string
}

// ReportsConfig holds file locations for reference data and output.
type ReportsConfig struct {
	OutputDir       string // generated PDFs and spreadsheets land here
	OverridesPath   string // manual disposition overrides (JSON)
	VendorOrderPath string // vendor packout order reference list (CSV)
	ColorsPath      string // persisted dropsite label colors (JSON)
	PDFRenderer     string // chromedp (default) or wkhtmltopdf
}

// DatabaseConfig holds the run-history database location.
type DatabaseConfig struct {
	Path string // sqlite file path
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// SchedulerConfig holds report scheduler configuration
type SchedulerConfig struct {
	Enabled       bool
	RunAtHour     int // local hour of day the report pass fires
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with FFCSA_ prefix (e.g., FFCSA_LOCALLINE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("FFCSA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Localline: LocallineConfig{
			BaseURL:         v.GetString("localline.base_url"),
			Username:        v.GetString("localline.username"),
			Password:        v.GetString("localline.password"),
			RequestTimeout:  v.GetDuration("localline.request_timeout"),
			PollInterval:    v.GetDuration("localline.poll_interval"),
			PollLimit:       v.GetInt("localline.poll_limit"),
			MaxDownloadSize: v.GetInt64("localline.max_download_size"),
		},
		Mail: MailConfig{
			SendgridAPIKey: v.GetString("mail.sendgrid_api_key"),
			From:           v.GetString("mail.from"),
			FromName:       v.GetString("mail.from_name"),
			Checklists:     v.GetStringSlice("mail.checklists"),
			DeliveryOrders: v.GetStringSlice("mail.delivery_orders"),
			Analytics:      v.GetStringSlice("mail.analytics"),
			Operator:       v.GetString("mail.operator"),
		},
		Reports: ReportsConfig{
			OutputDir:       v.GetString("reports.output_dir"),
			OverridesPath:   v.GetString("reports.overrides_path"),
			VendorOrderPath: v.GetString("reports.vendor_order_path"),
			ColorsPath:      v.GetString("reports.colors_path"),
			PDFRenderer:     v.GetString("reports.pdf_renderer"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("database.path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       v.GetBool("scheduler.enabled"),
			RunAtHour:     v.GetInt("scheduler.run_at_hour"),
			JobTimeout:    v.GetDuration("scheduler.job_timeout"),
			RetryAttempts: v.GetInt("scheduler.retry_attempts"),
			RetryDelay:    v.GetDuration("scheduler.retry_delay"),
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
		cfg.App.Name = "ffcsa-reports"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Localline.BaseURL == "" {
		cfg.Localline.BaseURL = "https://localline.ca/api/backoffice/v2"
	}
	if cfg.Localline.RequestTimeout == 0 {
		cfg.Localline.RequestTimeout = 30 * time.Second
	}
	if cfg.Localline.PollInterval == 0 {
		cfg.Localline.PollInterval = 5 * time.Second
	}
	if cfg.Localline.PollLimit == 0 {
		cfg.Localline.PollLimit = 18
	}
	if cfg.Localline.MaxDownloadSize == 0 {
		cfg.Localline.MaxDownloadSize = 10 << 20 // 10MB
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = "fullfarmcsa@deckfamilyfarm.com"
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = "Full Farm CSA"
	}
	if cfg.Reports.OutputDir == "" {
		cfg.Reports.OutputDir = "data"
	}
	if cfg.Reports.OverridesPath == "" {
		cfg.Reports.OverridesPath = "data/product_dispositions.json"
	}
	if cfg.Reports.VendorOrderPath == "" {
		cfg.Reports.VendorOrderPath = "data/vendor_order.csv"
	}
	if cfg.Reports.ColorsPath == "" {
		cfg.Reports.ColorsPath = "data/dropsite_colors.json"
	}
	if cfg.Reports.PDFRenderer == "" {
		cfg.Reports.PDFRenderer = "chromedp"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/reports.db"
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
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Scheduler.RunAtHour == 0 {
		cfg.Scheduler.RunAtHour = 5
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 30 * time.Minute
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 3
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = 5 * time.Minute
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Localline.PollLimit < 0 {
		return fmt.Errorf("localline.poll_limit cannot be negative")
	}
	if c.Scheduler.RunAtHour < 0 || c.Scheduler.RunAtHour > 23 {
		return fmt.Errorf("scheduler.run_at_hour must be between 0 and 23, got %d", c.Scheduler.RunAtHour)
	}
	if c.Reports.PDFRenderer != "chromedp" && c.Reports.PDFRenderer != "wkhtmltopdf" {
		return fmt.Errorf("reports.pdf_renderer must be chromedp or wkhtmltopdf, got %q", c.Reports.PDFRenderer)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Localline.Username == "" || c.Localline.Password == "" {
			return fmt.Errorf("localline credentials are required in production")
		}
		if c.Mail.SendgridAPIKey == "" {
			return fmt.Errorf("mail.sendgrid_api_key is required in production")
		}
		if c.Mail.Operator == "" {
			return fmt.Errorf("mail.operator is required in production (failure notices need a recipient)")
		}
	}

	return nil
}
