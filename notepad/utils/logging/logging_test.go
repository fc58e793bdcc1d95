package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggersAreUsableBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		AppLogger.Info("before init")
		LogDuration(context.Background(), "noop")()
	})
}

func TestInitLoggerWritesFiles(t *testing.T) {
	old := []*zap.Logger{AppLogger, RequestLogger, TimerLogger, ErrorLogger}
	t.Cleanup(func() {
		AppLogger, RequestLogger, TimerLogger, ErrorLogger = old[0], old[1], old[2], old[3]
	})

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, InitLogger(dir))

	ErrorLogger.Error("boom", zap.String("page", "1"))
	LogDuration(context.Background(), "TestInitLoggerWritesFiles")()
	Sync()

	for _, name := range []string{"error.log", "timer.log"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}
