package logger

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogUsableBeforeInit(t *testing.T) {
	require.NotNil(t, Log)
	Log.Infof("bootstrap logger drops %s", "info")
}

// A fatal error before Init, such as a bad config file, must still be printed.
func TestFatalBeforeInitReachesStderr(t *testing.T) {
	if os.Getenv("WORDRACE_LOGGER_FATAL") == "1" {
		Log.Fatalf("failed to load configuration: %s", "bad yaml")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatalBeforeInitReachesStderr$")
	cmd.Env = append(os.Environ(), "WORDRACE_LOGGER_FATAL=1")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, string(out), "failed to load configuration: bad yaml")
}

func TestInit(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	require.NoError(t, Init("debug", true))
	assert.NotSame(t, prev, Log)

	err := Init("loud", false)
	assert.Error(t, err)
}
