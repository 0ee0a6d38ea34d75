package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/printshop/backend/internal/application/printing"
	domain "github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/infrastructure/config"
	"github.com/printshop/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("PRINT_DATABASE_DRIVER", "sqlite")
	t.Setenv("PRINT_DATABASE_PATH", ":memory:")
	t.Setenv("PRINT_STORAGE_DRIVER", "memory")
	t.Setenv("PRINT_REDIS_ENABLED", "false")
	t.Setenv("PRINT_NOTIFY_DRIVERS", "log")
	t.Setenv("PRINT_TELEMETRY_ENABLED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestNew_ProcessesUploadEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	app, err := New(ctx, cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	require.NotNil(t, app.Database)
	require.NotNil(t, app.Store)
	require.NotNil(t, app.Idempotency)
	require.NotNil(t, app.Shops)
	assert.Nil(t, app.Redis)
	require.NoError(t, app.Database.Ping())

	userID := testutil.TestUserID()
	draft, err := app.Drafts.Create(ctx, userID, printing.CreateDraftRequest{
		Source:      "shop",
		FileName:    "notes.pdf",
		ContentType: "application/pdf",
		Data:        testutil.SamplePDF("A", "B"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DraftStatusUploaded.String(), draft.Status)

	n, err := app.Coordinator.RunOnce(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := app.Drafts.Get(ctx, userID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftStatusReadyForPreview.String(), got.Status)
	assert.Equal(t, 2, got.PageCount)

	removed, err := app.Cleanup.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNew_InvalidSettingsClosesEverything(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pricing.DefaultBW = "not-a-price"

	app, err := New(context.Background(), cfg, nil, nil)
	require.Error(t, err)
	assert.Nil(t, app)
}

func TestNew_UnknownNotifyDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notify.Drivers = []string{"carrier-pigeon"}

	app, err := New(context.Background(), cfg, zap.NewNop(), nil)
	require.Error(t, err)
	assert.Nil(t, app)
}

func TestApp_CloseRunsInReverseOrder(t *testing.T) {
	var order []int
	app := &App{}
	for i := 1; i <= 3; i++ {
		app.onClose(func(context.Context) error {
			order = append(order, i)
			return nil
		})
	}

	require.NoError(t, app.Close(context.Background()))
	assert.Equal(t, []int{3, 2, 1}, order)
	require.NoError(t, app.Close(context.Background()))
	assert.Equal(t, []int{3, 2, 1}, order)
}

func TestNewLogger_TelemetryDisabled(t *testing.T) {
	cfg := testConfig(t)

	log, providers, err := NewLogger(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, log)
	require.NotNil(t, providers)
	assert.False(t, providers.IsEnabled())
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestStartProfiler(t *testing.T) {
	t.Run("disabled profiler is inert", func(t *testing.T) {
		cfg := testConfig(t)

		profiler, err := StartProfiler(cfg, "worker", nil, zap.NewNop())
		require.NoError(t, err)
		assert.False(t, profiler.IsEnabled())
		assert.NoError(t, profiler.Stop())
		assert.NoError(t, profiler.Stop())
	})

	t.Run("unknown profile type is rejected", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Telemetry.Profiling.Enabled = true
		cfg.Telemetry.Profiling.ServerAddress = "http://127.0.0.1:4040"
		cfg.Telemetry.Profiling.ProfileTypes = []string{"wall-clock"}

		profiler, err := StartProfiler(cfg, "server", nil, zap.NewNop())
		require.Error(t, err)
		assert.Nil(t, profiler)
	})
}
