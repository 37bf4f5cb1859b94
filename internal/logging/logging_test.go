package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
	"github.com/AntonStoeckl/hipfracture-arrivals/internal/logging"
)

func Test_Adapter_Writes_Key_Value_Pairs_As_Fields(t *testing.T) {
	// setup
	var buf bytes.Buffer
	adapter := logging.NewAdapter(zerolog.New(&buf))

	// act
	adapter.Info("arrival rate derived", "sex", "male", "expected_annual_cases", 62.0)

	// assert
	assert.JSONEq(t,
		`{"level":"info","message":"arrival rate derived","sex":"male","expected_annual_cases":62}`,
		buf.String())
}

func Test_Adapter_Respects_Level(t *testing.T) {
	// setup
	var buf bytes.Buffer
	adapter := logging.NewAdapter(zerolog.New(&buf).Level(zerolog.InfoLevel))

	// act
	adapter.Debug("patient generated", "age", 87)

	// assert
	assert.Empty(t, buf.String())
}

func Test_Adapter_Pads_Odd_Argument_Lists(t *testing.T) {
	// setup
	var buf bytes.Buffer
	adapter := logging.NewAdapter(zerolog.New(&buf))

	// act
	adapter.Error("storing patient failed, continuing", "error")

	// assert
	assert.Contains(t, buf.String(), `"error":"!MISSING"`)
}

func Test_Adapter_Uses_Logger_From_Context(t *testing.T) {
	// setup
	var fallback, fromCtx bytes.Buffer
	adapter := logging.NewAdapter(zerolog.New(&fallback))
	ctxLogger := zerolog.New(&fromCtx).With().Str("run_id", "r1").Logger()
	ctx := ctxLogger.WithContext(context.Background())

	// act
	adapter.WarnContext(ctx, "simulation run canceled")

	// assert
	assert.Empty(t, fallback.String())
	assert.Contains(t, fromCtx.String(), `"run_id":"r1"`)
}

func Test_Adapter_Satisfies_Arrivals_Logging_Interfaces(t *testing.T) {
	var _ arrivals.Logger = logging.NewAdapter(zerolog.Nop())
	var _ arrivals.ContextualLogger = logging.NewAdapter(zerolog.Nop())
}

func Test_Init_With_Folder_Writes_Rotating_File(t *testing.T) {
	// setup
	dir := t.TempDir()
	var console bytes.Buffer

	// act
	logger, closer, err := logging.Init(logging.Options{Level: "debug", Folder: dir, Console: &console})
	require.NoError(t, err)
	logger.Debug().Str("sex", "female").Msg("patient generated")
	require.NoError(t, closer.Close())

	// assert
	content, readErr := os.ReadFile(filepath.Join(dir, "hipfracture-sim.log"))
	require.NoError(t, readErr)
	assert.Contains(t, string(content), `"message":"patient generated"`)
	assert.Contains(t, console.String(), "patient generated")
}

func Test_Init_When_Level_Is_Unknown(t *testing.T) {
	// act
	_, _, err := logging.Init(logging.Options{Level: "chatty", Console: &bytes.Buffer{}})

	// assert
	assert.Error(t, err)
}
