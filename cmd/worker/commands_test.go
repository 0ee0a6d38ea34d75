package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PRINT_DATABASE_DRIVER", "sqlite")
	t.Setenv("PRINT_DATABASE_PATH", ":memory:")
	t.Setenv("PRINT_STORAGE_DRIVER", "memory")
	t.Setenv("PRINT_REDIS_ENABLED", "false")
	t.Setenv("PRINT_NOTIFY_DRIVERS", "log")
	t.Setenv("PRINT_TELEMETRY_ENABLED", "false")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	var names []string
	for _, c := range newRootCommand().Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"run", "drain", "cleanup", "failed", "requeue"}, names)
}

func TestFailedCommand_EmptyQueue(t *testing.T) {
	sqliteEnv(t)

	out, err := execute(t, "failed")
	require.NoError(t, err)
	assert.Contains(t, out, "No failed work items")
}

func TestRequeueCommand_Arguments(t *testing.T) {
	_, err := execute(t, "requeue")
	assert.Error(t, err)

	_, err = execute(t, "requeue", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid work item id")
}

func TestRequeueCommand_UnknownItem(t *testing.T) {
	sqliteEnv(t)

	_, err := execute(t, "requeue", uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPrintFailed(t *testing.T) {
	jobID := uuid.New()
	item, err := queue.NewWorkItem(queue.FinalizePrintJob{PrintJobID: jobID, UserID: uuid.New(), PaymentRef: "pay_1"}, 2)
	require.NoError(t, err)
	item.Attempts = 2
	item.MarkFailed("converted file missing", true, time.Second)

	var out bytes.Buffer
	require.NoError(t, printFailed(&out, []*queue.WorkItem{item}))
	line := out.String()
	assert.Contains(t, line, item.ID.String())
	assert.Contains(t, line, string(queue.KindFinalizePrintJob))
	assert.Contains(t, line, jobID.String())
	assert.Contains(t, line, "2/2")
	assert.Contains(t, line, "converted file missing")
}
