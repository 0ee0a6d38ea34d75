package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnvKeys = []string{
	"PRINT_APP_NAME",
	"PRINT_APP_ENV",
	"PRINT_APP_PORT",
	"PRINT_DATABASE_DRIVER",
	"PRINT_DATABASE_PATH",
	"PRINT_DATABASE_HOST",
	"PRINT_DATABASE_PORT",
	"PRINT_DATABASE_USER",
	"PRINT_DATABASE_PASSWORD",
	"PRINT_DATABASE_DBNAME",
	"PRINT_DATABASE_SSLMODE",
	"PRINT_DATABASE_MAX_OPEN_CONNS",
	"PRINT_DATABASE_MAX_IDLE_CONNS",
	"PRINT_STORAGE_DRIVER",
	"PRINT_STORAGE_SUPABASE_URL",
	"PRINT_STORAGE_SUPABASE_KEY",
	"PRINT_QUEUE_CONCURRENCY",
	"PRINT_QUEUE_MAX_ATTEMPTS",
	"PRINT_TELEMETRY_PROFILING_ENABLED",
	"PRINT_TELEMETRY_PROFILING_SERVER_ADDRESS",
	"PRINT_QUEUE_LEASE_DURATION",
	"PRINT_QUEUE_HEARTBEAT_INTERVAL",
	"PRINT_QUEUE_EXTERNAL_WORKERS",
	"PRINT_FINALIZE_RECEIPT_TTL",
	"PRINT_NOTIFY_DRIVERS",
	"PRINT_NOTIFY_AMQP_URL",
	"PRINT_CLEANUP_INTERVAL",
	"PRINT_TELEMETRY_SAMPLING_RATIO",
}

// withCleanEnv clears the PRINT_ variables used by these tests and restores them afterwards
func withCleanEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string, len(testEnvKeys))
	for _, k := range testEnvKeys {
		original[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range original {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		withCleanEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "print-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "print", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)

		assert.Equal(t, "local", cfg.Storage.Driver)
		assert.Equal(t, 3, cfg.Queue.Concurrency)
		assert.Equal(t, 3, cfg.Queue.MaxAttempts)
		assert.Equal(t, 2*time.Second, cfg.Queue.BackoffInitial)
		assert.Equal(t, 60*time.Second, cfg.Queue.LeaseDuration)
		assert.Equal(t, 15*24*time.Hour, cfg.Finalize.ReceiptTTL)
		assert.Equal(t, "final_invoices", cfg.Finalize.FinalPathPrefix)
		assert.Equal(t, "2", cfg.Pricing.DefaultBW)
		assert.Equal(t, "8", cfg.Pricing.DefaultColor)
		assert.Equal(t, []string{"log"}, cfg.Notify.Drivers)
		assert.Equal(t, 12*time.Hour, cfg.Cleanup.Interval)
		assert.False(t, cfg.Queue.ExternalWorkers)
	})

	t.Run("loads values from environment variables with PRINT prefix", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("PRINT_APP_NAME", "test-app")
		os.Setenv("PRINT_APP_PORT", "9000")
		os.Setenv("PRINT_DATABASE_HOST", "testdb.local")
		os.Setenv("PRINT_DATABASE_PORT", "5433")
		os.Setenv("PRINT_DATABASE_PASSWORD", "testpass")
		os.Setenv("PRINT_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("PRINT_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("PRINT_STORAGE_DRIVER", "memory")
		os.Setenv("PRINT_QUEUE_CONCURRENCY", "8")
		os.Setenv("PRINT_FINALIZE_RECEIPT_TTL", "48h")
		os.Setenv("PRINT_NOTIFY_DRIVERS", "redis log")
		os.Setenv("PRINT_CLEANUP_INTERVAL", "30m")
		os.Setenv("PRINT_QUEUE_EXTERNAL_WORKERS", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "memory", cfg.Storage.Driver)
		assert.Equal(t, 8, cfg.Queue.Concurrency)
		assert.Equal(t, 48*time.Hour, cfg.Finalize.ReceiptTTL)
		assert.Equal(t, []string{"redis", "log"}, cfg.Notify.Drivers)
		assert.Equal(t, 30*time.Minute, cfg.Cleanup.Interval)
		assert.True(t, cfg.Queue.ExternalWorkers)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("PRINT_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("PRINT_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("PRINT_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects unknown storage driver", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("PRINT_STORAGE_DRIVER", "ftp")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.driver")
	})

	t.Run("supabase driver requires credentials", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("PRINT_STORAGE_DRIVER", "supabase")
		os.Setenv("PRINT_STORAGE_SUPABASE_URL", "https://example.supabase.co")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "supabase_key")
	})

	t.Run("heartbeat must be shorter than the lease", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("PRINT_QUEUE_LEASE_DURATION", "10s")
		os.Setenv("PRINT_QUEUE_HEARTBEAT_INTERVAL", "10s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "heartbeat_interval")
	})

	t.Run("max attempts is bounded", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("PRINT_QUEUE_MAX_ATTEMPTS", "64")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "queue.max_attempts must be between 1 and 20")
	})

	t.Run("amqp notifications require a url", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("PRINT_NOTIFY_DRIVERS", "amqp")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "notify.amqp_url")
	})

	t.Run("profiling needs a server", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("PRINT_TELEMETRY_PROFILING_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.profiling.server_address")

		os.Setenv("PRINT_TELEMETRY_PROFILING_SERVER_ADDRESS", "http://pyroscope:4040")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Telemetry.Profiling.Enabled)
		assert.Equal(t, []string{"cpu", "alloc_space", "inuse_space", "goroutines"}, cfg.Telemetry.Profiling.ProfileTypes)
	})

	t.Run("rejects out of range sampling ratio", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("PRINT_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func() {
		os.Setenv("PRINT_APP_ENV", "production")
		os.Setenv("PRINT_DATABASE_PASSWORD", "secure-password")
		os.Setenv("PRINT_DATABASE_SSLMODE", "require")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Unsetenv("PRINT_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Setenv("PRINT_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects memory storage in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Setenv("PRINT_STORAGE_DRIVER", "memory")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.driver cannot be 'memory'")
	})

	t.Run("sqlite skips postgres production checks", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("PRINT_APP_ENV", "production")
		os.Setenv("PRINT_DATABASE_DRIVER", "sqlite")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "print.db", cfg.Database.DSN())
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("sqlite uses the file path", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "sqlite", Path: "/tmp/print.db"}
		assert.Equal(t, "/tmp/print.db", cfg.DSN())
	})
}
