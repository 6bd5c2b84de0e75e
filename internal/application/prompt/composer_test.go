package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/cmdgen/internal/domain"
)

func TestComposeIsDeterministic(t *testing.T) {
	c := MustDefault()
	osCtx := domain.OSContext{Platform: "Linux", Distribution: "Debian GNU/Linux 12", Shell: "bash"}

	first, err := c.Compose("list files in the current directory", osCtx)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := c.Compose("list files in the current directory", osCtx)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	assert.Contains(t, first, "exactly one shell command")
	assert.Contains(t, first, "Linux (Debian GNU/Linux 12)")
	assert.Contains(t, first, "Commands run in bash.")
	assert.Contains(t, first, "Task: list files in the current directory")
}

func TestComposeEmptyDescription(t *testing.T) {
	_, err := MustDefault().Compose("  \t ", domain.OSContext{Platform: "Linux"})
	assert.ErrorIs(t, err, domain.ErrEmptyDescription)
}

func TestComposeCustomTemplate(t *testing.T) {
	c, err := NewComposer("{{.System}}|{{.Description}}")
	require.NoError(t, err)

	out, err := c.Compose("show disk usage", domain.OSContext{Platform: "Darwin"})
	require.NoError(t, err)
	assert.Equal(t, "Darwin|show disk usage", out)
}

func TestNewComposerRejectsBrokenTemplate(t *testing.T) {
	_, err := NewComposer("{{.Description")
	assert.Error(t, err)
}
