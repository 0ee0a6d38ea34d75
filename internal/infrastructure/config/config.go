package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Storage    StorageConfig
	Queue      QueueConfig
	Finalize   FinalizeConfig
	Pricing    PricingConfig
	Notify     NotifyConfig
	Conversion ConversionConfig
	Cleanup    CleanupConfig
	Telemetry  TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	Path            string // sqlite file path
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
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
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
	MaxBodySize     int64
	TrustedProxies  []string
	UserIDHeader    string // header carrying the authenticated user id set by the upstream gateway
	ShopIDHeader    string // header carrying the shop a shopkeeper acts for
	CORSOrigins     []string
	RateLimit       int // requests per minute per client, 0 disables
	HSTSEnabled     bool
}

// StorageConfig holds object storage settings
type StorageConfig struct {
	Driver         string // s3, supabase, local, memory
	Bucket         string
	AccessKey      string
	SecretKey      string
	Endpoint       string
	UseSSL         bool
	Region         string
	UsePathStyle   bool
	LocalPath      string
	SupabaseURL    string
	SupabaseKey    string
	BreakerEnabled bool
	BreakerTimeout time.Duration
	CreateBucket   bool // create the s3 bucket at startup when it is missing
}

// maxQueueAttempts bounds retries so backoff delays stay meaningful
const maxQueueAttempts = 20

// QueueConfig holds the background work policy knobs
type QueueConfig struct {
	Concurrency       int
	MaxAttempts       int
	BackoffInitial    time.Duration
	BackoffMax        time.Duration
	LeaseDuration     time.Duration
	HeartbeatInterval time.Duration
	PollInterval      time.Duration
	ReapInterval      time.Duration
	ItemTimeout       time.Duration
	ExternalWorkers   bool // work items are drained by cmd/worker instead of the API process
}

// FinalizeConfig holds finalization settings
type FinalizeConfig struct {
	ReceiptTTL      time.Duration
	FinalPathPrefix string
	DraftPathPrefix string
	ConfirmationTTL time.Duration // how long a payment confirmation id is remembered
}

// PricingConfig holds fallback per-page prices
type PricingConfig struct {
	DefaultBW    string
	DefaultColor string
}

// NotifyConfig selects the notification transport
type NotifyConfig struct {
	Drivers       []string // redis, amqp, log
	ChannelPrefix string
	AMQPURL       string
	AMQPExchange  string
}

// ConversionConfig holds document converter settings
type ConversionConfig struct {
	SofficePath    string
	SofficeTimeout time.Duration
	ChromeTimeout  time.Duration
	TempDir        string
}

// CleanupConfig holds expired receipt cleanup settings
type CleanupConfig struct {
	Enabled   bool
	Interval  time.Duration
	BatchSize int
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool
	MetricsInterval   time.Duration
	Profiling         ProfilingConfig
}

// ProfilingConfig holds Pyroscope continuous profiling configuration
type ProfilingConfig struct {
	Enabled           bool
	ServerAddress     string   // Pyroscope server (e.g., "http://pyroscope:4040")
	BasicAuthUser     string   // Optional, for hosted Pyroscope
	BasicAuthPassword string   // Optional, for hosted Pyroscope
	ProfileTypes      []string // cpu, alloc_space, inuse_space, goroutines, mutex_count, ...
	SpanProfiles      bool     // Link CPU profiles to trace spans (needs telemetry.enabled)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with PRINT_ prefix (e.g., PRINT_DATABASE_PASSWORD)
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
	}

	v.SetEnvPrefix("PRINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Path:            v.GetString("database.path"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
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
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:  v.GetInt("http.max_header_bytes"),
			MaxBodySize:     v.GetInt64("http.max_body_size"),
			TrustedProxies:  v.GetStringSlice("http.trusted_proxies"),
			UserIDHeader:    v.GetString("http.user_id_header"),
			ShopIDHeader:    v.GetString("http.shop_id_header"),
			CORSOrigins:     v.GetStringSlice("http.cors_origins"),
			RateLimit:       v.GetInt("http.rate_limit"),
			HSTSEnabled:     v.GetBool("http.hsts_enabled"),
		},
		Storage: StorageConfig{
			Driver:         v.GetString("storage.driver"),
			Bucket:         v.GetString("storage.bucket"),
			AccessKey:      v.GetString("storage.access_key"),
			SecretKey:      v.GetString("storage.secret_key"),
			Endpoint:       v.GetString("storage.endpoint"),
			UseSSL:         v.GetBool("storage.use_ssl"),
			Region:         v.GetString("storage.region"),
			UsePathStyle:   v.GetBool("storage.use_path_style"),
			LocalPath:      v.GetString("storage.local_path"),
			SupabaseURL:    v.GetString("storage.supabase_url"),
			SupabaseKey:    v.GetString("storage.supabase_key"),
			BreakerEnabled: v.GetBool("storage.breaker_enabled"),
			CreateBucket:   v.GetBool("storage.create_bucket"),
			BreakerTimeout: v.GetDuration("storage.breaker_timeout"),
		},
		Queue: QueueConfig{
			Concurrency:       v.GetInt("queue.concurrency"),
			MaxAttempts:       v.GetInt("queue.max_attempts"),
			BackoffInitial:    v.GetDuration("queue.backoff_initial"),
			BackoffMax:        v.GetDuration("queue.backoff_max"),
			LeaseDuration:     v.GetDuration("queue.lease_duration"),
			HeartbeatInterval: v.GetDuration("queue.heartbeat_interval"),
			PollInterval:      v.GetDuration("queue.poll_interval"),
			ReapInterval:      v.GetDuration("queue.reap_interval"),
			ItemTimeout:       v.GetDuration("queue.item_timeout"),
			ExternalWorkers:   v.GetBool("queue.external_workers"),
		},
		Finalize: FinalizeConfig{
			ReceiptTTL:      v.GetDuration("finalize.receipt_ttl"),
			FinalPathPrefix: v.GetString("finalize.final_path_prefix"),
			DraftPathPrefix: v.GetString("finalize.draft_path_prefix"),
			ConfirmationTTL: v.GetDuration("finalize.confirmation_ttl"),
		},
		Pricing: PricingConfig{
			DefaultBW:    v.GetString("pricing.default_bw"),
			DefaultColor: v.GetString("pricing.default_color"),
		},
		Notify: NotifyConfig{
			Drivers:       v.GetStringSlice("notify.drivers"),
			ChannelPrefix: v.GetString("notify.channel_prefix"),
			AMQPURL:       v.GetString("notify.amqp_url"),
			AMQPExchange:  v.GetString("notify.amqp_exchange"),
		},
		Conversion: ConversionConfig{
			SofficePath:    v.GetString("conversion.soffice_path"),
			SofficeTimeout: v.GetDuration("conversion.soffice_timeout"),
			ChromeTimeout:  v.GetDuration("conversion.chrome_timeout"),
			TempDir:        v.GetString("conversion.temp_dir"),
		},
		Cleanup: CleanupConfig{
			Enabled:   v.GetBool("cleanup.enabled"),
			Interval:  v.GetDuration("cleanup.interval"),
			BatchSize: v.GetInt("cleanup.batch_size"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			Profiling: ProfilingConfig{
				Enabled:           v.GetBool("telemetry.profiling.enabled"),
				ServerAddress:     v.GetString("telemetry.profiling.server_address"),
				BasicAuthUser:     v.GetString("telemetry.profiling.basic_auth_user"),
				BasicAuthPassword: v.GetString("telemetry.profiling.basic_auth_password"),
				ProfileTypes:      v.GetStringSlice("telemetry.profiling.profile_types"),
				SpanProfiles:      v.GetBool("telemetry.profiling.span_profiles"),
			},
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
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "print.db"
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
		cfg.Database.DBName = "print"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
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
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 25 << 20 // 25MB
	}
	if cfg.HTTP.UserIDHeader == "" {
		cfg.HTTP.UserIDHeader = "X-User-ID"
	}
	if cfg.HTTP.ShopIDHeader == "" {
		cfg.HTTP.ShopIDHeader = "X-Shop-ID"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "local"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "uploads"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data/storage"
	}
	if cfg.Storage.BreakerTimeout == 0 {
		cfg.Storage.BreakerTimeout = 30 * time.Second
	}
	if cfg.Queue.Concurrency == 0 {
		cfg.Queue.Concurrency = 3
	}
	if cfg.Queue.MaxAttempts == 0 {
		cfg.Queue.MaxAttempts = 3
	}
	if cfg.Queue.BackoffInitial == 0 {
		cfg.Queue.BackoffInitial = 2 * time.Second
	}
	if cfg.Queue.BackoffMax == 0 {
		cfg.Queue.BackoffMax = 5 * time.Minute
	}
	if cfg.Queue.LeaseDuration == 0 {
		cfg.Queue.LeaseDuration = 60 * time.Second
	}
	if cfg.Queue.HeartbeatInterval == 0 {
		cfg.Queue.HeartbeatInterval = 20 * time.Second
	}
	if cfg.Queue.PollInterval == 0 {
		cfg.Queue.PollInterval = time.Second
	}
	if cfg.Queue.ReapInterval == 0 {
		cfg.Queue.ReapInterval = 30 * time.Second
	}
	if cfg.Queue.ItemTimeout == 0 {
		cfg.Queue.ItemTimeout = 5 * time.Minute
	}
	if cfg.Finalize.ReceiptTTL == 0 {
		cfg.Finalize.ReceiptTTL = 15 * 24 * time.Hour
	}
	if cfg.Finalize.FinalPathPrefix == "" {
		cfg.Finalize.FinalPathPrefix = "final_invoices"
	}
	if cfg.Finalize.DraftPathPrefix == "" {
		cfg.Finalize.DraftPathPrefix = "user-uploads"
	}
	if cfg.Finalize.ConfirmationTTL == 0 {
		cfg.Finalize.ConfirmationTTL = 7 * 24 * time.Hour
	}
	if cfg.Pricing.DefaultBW == "" {
		cfg.Pricing.DefaultBW = "2"
	}
	if cfg.Pricing.DefaultColor == "" {
		cfg.Pricing.DefaultColor = "8"
	}
	if len(cfg.Notify.Drivers) == 0 {
		cfg.Notify.Drivers = []string{"log"}
	}
	if cfg.Notify.ChannelPrefix == "" {
		cfg.Notify.ChannelPrefix = "notify"
	}
	if cfg.Notify.AMQPExchange == "" {
		cfg.Notify.AMQPExchange = "print.notifications"
	}
	if cfg.Conversion.SofficePath == "" {
		cfg.Conversion.SofficePath = "soffice"
	}
	if cfg.Conversion.SofficeTimeout == 0 {
		cfg.Conversion.SofficeTimeout = 2 * time.Minute
	}
	if cfg.Conversion.ChromeTimeout == 0 {
		cfg.Conversion.ChromeTimeout = 30 * time.Second
	}
	if cfg.Cleanup.Interval == 0 {
		cfg.Cleanup.Interval = 12 * time.Hour
	}
	if cfg.Cleanup.BatchSize == 0 {
		cfg.Cleanup.BatchSize = 100
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "print-backend"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 15 * time.Second
	}
	if len(cfg.Telemetry.Profiling.ProfileTypes) == 0 {
		cfg.Telemetry.Profiling.ProfileTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}
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

	switch c.Storage.Driver {
	case "s3", "supabase", "local", "memory":
	default:
		return fmt.Errorf("storage.driver must be one of s3, supabase, local, memory, got %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "supabase" && (c.Storage.SupabaseURL == "" || c.Storage.SupabaseKey == "") {
		return fmt.Errorf("storage.supabase_url and storage.supabase_key are required for the supabase driver")
	}

	if c.Queue.Concurrency < 1 {
		return fmt.Errorf("queue.concurrency must be at least 1")
	}
	if c.Queue.MaxAttempts < 1 || c.Queue.MaxAttempts > maxQueueAttempts {
		return fmt.Errorf("queue.max_attempts must be between 1 and %d, got %d", maxQueueAttempts, c.Queue.MaxAttempts)
	}
	if c.Queue.HeartbeatInterval >= c.Queue.LeaseDuration {
		return fmt.Errorf("queue.heartbeat_interval (%s) must be shorter than queue.lease_duration (%s)",
			c.Queue.HeartbeatInterval, c.Queue.LeaseDuration)
	}

	for _, d := range c.Notify.Drivers {
		switch d {
		case "redis", "amqp", "log":
		default:
			return fmt.Errorf("notify.drivers contains unknown driver %q", d)
		}
		if d == "amqp" && c.Notify.AMQPURL == "" {
			return fmt.Errorf("notify.amqp_url is required for the amqp driver")
		}
	}

	if c.App.Env == "production" {
		if c.Database.Driver == "postgres" && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.Driver == "postgres" && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Storage.Driver == "memory" {
			return fmt.Errorf("storage.driver cannot be 'memory' in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.Profiling.Enabled && c.Telemetry.Profiling.ServerAddress == "" {
		return fmt.Errorf("telemetry.profiling.server_address is required when profiling is enabled")
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
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
