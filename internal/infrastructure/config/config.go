package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Market    MarketConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	Event     EventConfig
	HTTP      HTTPConfig
	Cache     CacheConfig
	Scheduler SchedulerConfig
	Storage   StorageConfig
	Payment   PaymentConfig
	Shipping  ShippingConfig
	Printing  PrintingConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string // public URL of the API, used for payment return links
}

// MarketConfig holds marketplace business defaults
type MarketConfig struct {
	DefaultCurrency      string
	DefaultCommission    decimal.Decimal // percent
	DefaultVat           decimal.Decimal // percent
	CartTTL              time.Duration
	ReturnWindowDays     int
	UnpaidOrderExpiry    time.Duration
	DisputeAutoCloseDays int
	IdempotencyTTL       time.Duration
}

// ReturnWindow is the return window as a duration
func (m MarketConfig) ReturnWindow() time.Duration {
	return time.Duration(m.ReturnWindowDays) * 24 * time.Hour
}

// DisputeAutoClose is the dispute idle period as a duration
func (m MarketConfig) DisputeAutoClose() time.Duration {
	return time.Duration(m.DisputeAutoCloseDays) * 24 * time.Hour
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	AutoMigrate     bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	RefreshSecret          string
	MaxRefreshCount        int
}

// EventConfig holds outbox processing configuration
type EventConfig struct {
	ProcessorEnabled bool
	BatchSize        int
	PollInterval     time.Duration
	MaxRetries       int
	CleanupEnabled   bool
	CleanupRetention time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	MaxHeaderBytes        int
	MaxBodySize           int64
	RateLimitEnabled      bool
	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitEnabled  bool
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration
	CORSAllowOrigins      []string
	CORSAllowMethods      []string
	CORSAllowHeaders      []string
	TrustedProxies        []string
}

// CacheConfig holds snapshot cache settings
type CacheConfig struct {
	SnapshotTTL          time.Duration
	InvalidationChannel  string
	IdempotencyKeyPrefix string
}

// SchedulerConfig holds background job settings. Interval jobs run on a
// ticker; cron expressions drive the heavier daily work.
type SchedulerConfig struct {
	Enabled               bool
	UnpaidOrderInterval   time.Duration
	CartPurgeInterval     time.Duration
	PrivacyCron           string
	DisputeAutoCloseCron  string
	JobTimeout            time.Duration
	PrivacyBatchSize      int
	DisputeCloseBatchSize int
}

// StorageConfig holds object storage (S3) settings
type StorageConfig struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string // custom endpoint for MinIO/LocalStack
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PresignExpiry   time.Duration
}

// PaymentConfig holds payment provider settings
type PaymentConfig struct {
	DefaultProvider string
	GatewaySecret   string
	GatewayURL      string // hosted checkout page of the simulated gateway
	TokenTTL        time.Duration
	Stripe          StripeConfig
}

// StripeConfig enables the Stripe Checkout provider when SecretKey is set
type StripeConfig struct {
	SecretKey  string
	TestMode   bool
	SessionTTL time.Duration
}

// ShippingConfig holds carrier API settings
type ShippingConfig struct {
	CarrierAPIEnabled bool
	CarrierCode       string
	CarrierBaseURL    string
	CarrierAPIKey     string
	CarrierTimeout    time.Duration
}

// PrintingConfig holds headless Chrome settings for packing slip PDFs
type PrintingConfig struct {
	Enabled   bool
	RemoteURL string // DevTools websocket of a shared Chrome; empty launches a local one
	NoSandbox bool   // required when Chrome runs as root inside a container
	Timeout   time.Duration
	PaperSize string
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	LogsEnabled       bool
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
	ProfilingEnabled  bool
	PyroscopeURL      string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with MERCATO_ prefix (e.g., MERCATO_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
// A .env file in the working directory is loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/mercato")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("MERCATO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := FromViper(v)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			BaseURL: v.GetString("app.base_url"),
		},
		Market: MarketConfig{
			DefaultCurrency:      v.GetString("market.default_currency"),
			DefaultCommission:    decimalOrZero(v.GetString("market.default_commission_percent")),
			DefaultVat:           decimalOrZero(v.GetString("market.default_vat_percent")),
			CartTTL:              v.GetDuration("market.cart_ttl"),
			ReturnWindowDays:     v.GetInt("market.return_window_days"),
			UnpaidOrderExpiry:    v.GetDuration("market.unpaid_order_expiry"),
			DisputeAutoCloseDays: v.GetInt("market.dispute_auto_close_days"),
			IdempotencyTTL:       v.GetDuration("market.idempotency_ttl"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Event: EventConfig{
			ProcessorEnabled: v.GetBool("event.processor_enabled"),
			BatchSize:        v.GetInt("event.batch_size"),
			PollInterval:     v.GetDuration("event.poll_interval"),
			MaxRetries:       v.GetInt("event.max_retries"),
			CleanupEnabled:   v.GetBool("event.cleanup_enabled"),
			CleanupRetention: v.GetDuration("event.cleanup_retention"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:           v.GetDuration("http.read_timeout"),
			WriteTimeout:          v.GetDuration("http.write_timeout"),
			IdleTimeout:           v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:        v.GetInt("http.max_header_bytes"),
			MaxBodySize:           v.GetInt64("http.max_body_size"),
			RateLimitEnabled:      v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:     v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:       v.GetDuration("http.rate_limit_window"),
			AuthRateLimitEnabled:  v.GetBool("http.auth_rate_limit_enabled"),
			AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
			AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
			CORSAllowOrigins:      v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:      v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:      v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:        v.GetStringSlice("http.trusted_proxies"),
		},
		Cache: CacheConfig{
			SnapshotTTL:          v.GetDuration("cache.snapshot_ttl"),
			InvalidationChannel:  v.GetString("cache.invalidation_channel"),
			IdempotencyKeyPrefix: v.GetString("cache.idempotency_key_prefix"),
		},
		Scheduler: SchedulerConfig{
			Enabled:               v.GetBool("scheduler.enabled"),
			UnpaidOrderInterval:   v.GetDuration("scheduler.unpaid_order_interval"),
			CartPurgeInterval:     v.GetDuration("scheduler.cart_purge_interval"),
			PrivacyCron:           v.GetString("scheduler.privacy_cron"),
			DisputeAutoCloseCron:  v.GetString("scheduler.dispute_auto_close_cron"),
			JobTimeout:            v.GetDuration("scheduler.job_timeout"),
			PrivacyBatchSize:      v.GetInt("scheduler.privacy_batch_size"),
			DisputeCloseBatchSize: v.GetInt("scheduler.dispute_close_batch_size"),
		},
		Storage: StorageConfig{
			Enabled:         v.GetBool("storage.enabled"),
			Bucket:          v.GetString("storage.bucket"),
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			PresignExpiry:   v.GetDuration("storage.presign_expiry"),
		},
		Payment: PaymentConfig{
			DefaultProvider: v.GetString("payment.default_provider"),
			GatewaySecret:   v.GetString("payment.gateway_secret"),
			GatewayURL:      v.GetString("payment.gateway_url"),
			TokenTTL:        v.GetDuration("payment.token_ttl"),
			Stripe: StripeConfig{
				SecretKey:  v.GetString("payment.stripe.secret_key"),
				TestMode:   v.GetBool("payment.stripe.test_mode"),
				SessionTTL: v.GetDuration("payment.stripe.session_ttl"),
			},
		},
		Shipping: ShippingConfig{
			CarrierAPIEnabled: v.GetBool("shipping.carrier_api_enabled"),
			CarrierCode:       v.GetString("shipping.carrier_code"),
			CarrierBaseURL:    v.GetString("shipping.carrier_base_url"),
			CarrierAPIKey:     v.GetString("shipping.carrier_api_key"),
			CarrierTimeout:    v.GetDuration("shipping.carrier_timeout"),
		},
		Printing: PrintingConfig{
			Enabled:   v.GetBool("printing.enabled"),
			RemoteURL: v.GetString("printing.remote_url"),
			NoSandbox: v.GetBool("printing.no_sandbox"),
			Timeout:   v.GetDuration("printing.timeout"),
			PaperSize: v.GetString("printing.paper_size"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeURL:      v.GetString("telemetry.pyroscope_url"),
		},
	}
}

func decimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "mercato"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.App.Port
	}

	if cfg.Market.DefaultCurrency == "" {
		cfg.Market.DefaultCurrency = "EUR"
	}
	if cfg.Market.DefaultCommission.IsZero() {
		cfg.Market.DefaultCommission = decimal.NewFromInt(10)
	}
	if cfg.Market.DefaultVat.IsZero() {
		cfg.Market.DefaultVat = decimal.NewFromInt(23)
	}
	if cfg.Market.CartTTL == 0 {
		cfg.Market.CartTTL = 72 * time.Hour
	}
	if cfg.Market.ReturnWindowDays == 0 {
		cfg.Market.ReturnWindowDays = 14
	}
	if cfg.Market.UnpaidOrderExpiry == 0 {
		cfg.Market.UnpaidOrderExpiry = 30 * time.Minute
	}
	if cfg.Market.DisputeAutoCloseDays == 0 {
		cfg.Market.DisputeAutoCloseDays = 30
	}
	if cfg.Market.IdempotencyTTL == 0 {
		cfg.Market.IdempotencyTTL = 24 * time.Hour
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "mercato"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "mercato.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 168 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "mercato"
	}
	if cfg.JWT.MaxRefreshCount == 0 {
		cfg.JWT.MaxRefreshCount = 10
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

	if cfg.Event.BatchSize == 0 {
		cfg.Event.BatchSize = 100
	}
	if cfg.Event.PollInterval == 0 {
		cfg.Event.PollInterval = 5 * time.Second
	}
	if cfg.Event.MaxRetries == 0 {
		cfg.Event.MaxRetries = 5
	}
	if cfg.Event.CleanupRetention == 0 {
		cfg.Event.CleanupRetention = 168 * time.Hour
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
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.AuthRateLimitRequests == 0 {
		cfg.HTTP.AuthRateLimitRequests = 5
	}
	if cfg.HTTP.AuthRateLimitWindow == 0 {
		cfg.HTTP.AuthRateLimitWindow = time.Minute
	}
	// An empty origin list means no cross-origin requests are allowed.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Tenant-ID", "Idempotency-Key"}
	}

	if cfg.Cache.SnapshotTTL == 0 {
		cfg.Cache.SnapshotTTL = 5 * time.Minute
	}
	if cfg.Cache.InvalidationChannel == "" {
		cfg.Cache.InvalidationChannel = "mercato:snapshot:invalidate"
	}
	if cfg.Cache.IdempotencyKeyPrefix == "" {
		cfg.Cache.IdempotencyKeyPrefix = "mercato:idem:"
	}

	if cfg.Scheduler.UnpaidOrderInterval == 0 {
		cfg.Scheduler.UnpaidOrderInterval = 5 * time.Minute
	}
	if cfg.Scheduler.CartPurgeInterval == 0 {
		cfg.Scheduler.CartPurgeInterval = time.Hour
	}
	if cfg.Scheduler.PrivacyCron == "" {
		cfg.Scheduler.PrivacyCron = "@every 10m"
	}
	if cfg.Scheduler.DisputeAutoCloseCron == "" {
		cfg.Scheduler.DisputeAutoCloseCron = "0 3 * * *"
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 10 * time.Minute
	}
	if cfg.Scheduler.PrivacyBatchSize == 0 {
		cfg.Scheduler.PrivacyBatchSize = 20
	}
	if cfg.Scheduler.DisputeCloseBatchSize == 0 {
		cfg.Scheduler.DisputeCloseBatchSize = 100
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "eu-central-1"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "mercato-exports"
	}
	if cfg.Storage.PresignExpiry == 0 {
		cfg.Storage.PresignExpiry = 15 * time.Minute
	}

	if cfg.Payment.DefaultProvider == "" {
		cfg.Payment.DefaultProvider = "simulated"
	}
	if cfg.Payment.GatewayURL == "" {
		cfg.Payment.GatewayURL = cfg.App.BaseURL + "/api/v1/payments/simulate"
	}
	if cfg.Payment.TokenTTL == 0 {
		cfg.Payment.TokenTTL = 30 * time.Minute
	}
	if cfg.Payment.Stripe.SessionTTL == 0 {
		cfg.Payment.Stripe.SessionTTL = time.Hour
	}

	if cfg.Shipping.CarrierCode == "" {
		cfg.Shipping.CarrierCode = "PARCEL_API"
	}
	if cfg.Shipping.CarrierTimeout == 0 {
		cfg.Shipping.CarrierTimeout = 10 * time.Second
	}

	if cfg.Printing.Timeout == 0 {
		cfg.Printing.Timeout = 30 * time.Second
	}
	if cfg.Printing.PaperSize == "" {
		cfg.Printing.PaperSize = "A4"
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "mercato"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.PyroscopeURL == "" {
		cfg.Telemetry.PyroscopeURL = "http://localhost:4040"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Market.DefaultCommission.IsNegative() || c.Market.DefaultCommission.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("market.default_commission_percent must be between 0 and 100")
	}
	if c.Market.DefaultVat.IsNegative() || c.Market.DefaultVat.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("market.default_vat_percent must be between 0 and 100")
	}
	if c.Market.ReturnWindowDays < 0 {
		return fmt.Errorf("market.return_window_days cannot be negative")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	if c.Shipping.CarrierAPIEnabled && c.Shipping.CarrierBaseURL == "" {
		return fmt.Errorf("shipping.carrier_base_url is required when the carrier API is enabled")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Payment.GatewaySecret == "" && c.Payment.Stripe.SecretKey == "" {
			return fmt.Errorf("payment.gateway_secret or payment.stripe.secret_key is required in production")
		}
		if c.Database.Driver != "postgres" {
			return fmt.Errorf("database.driver must be postgres in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	return nil
}

// IsProduction reports the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
