//go:build !windows

package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalExecutorCapturesOutput(t *testing.T) {
	e := NewLocalExecutor("sh", time.Second)

	res, err := e.Run(context.Background(), "echo hello")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.False(t, res.TimedOut)
}

func TestLocalExecutorReportsExitCode(t *testing.T) {
	e := NewLocalExecutor("sh", time.Second)

	res, err := e.Run(context.Background(), "ls /definitely/not/here")
	require.NoError(t, err)
	assert.NotEqual(t, 0, res.ExitCode)
	assert.NotEmpty(t, res.Stderr)
}

func TestLocalExecutorTimeout(t *testing.T) {
	e := NewLocalExecutor("sh", 50*time.Millisecond)

	res, err := e.Run(context.Background(), "sleep 5")
	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.Equal(t, -1, res.ExitCode)
}

func TestLocalExecutorMissingShell(t *testing.T) {
	e := NewLocalExecutor("/no/such/shell", time.Second)

	_, err := e.Run(context.Background(), "echo hi")
	assert.Error(t, err)
}

func TestLocalExecutorDefaults(t *testing.T) {
	e := NewLocalExecutor("", 0)
	assert.Equal(t, "sh", e.Shell())
}
