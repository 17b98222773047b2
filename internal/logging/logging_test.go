package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"auto", "always", "never"} {
		c, err := ParseColor(s)
		require.NoError(t, err)
		assert.Equal(t, Color(s), c)
	}
	_, err := ParseColor("sometimes")
	assert.Error(t, err)
}

func TestEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.True(t, Always.Enabled(&buf))
	assert.False(t, Never.Enabled(&buf))
	assert.False(t, Auto.Enabled(&buf), "a buffer is not a terminal")
}

func TestNewWritesHeaders(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, Never)
	logger.Info("Wrote Cargo.toml")
	logger.Warn("careful")

	assert.Equal(t, "info: Wrote Cargo.toml\nwarn: careful\n", buf.String())
}
