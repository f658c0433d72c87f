package term

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTerminal(t *testing.T) {
	t.Run("Буфер не терминал", func(t *testing.T) {
		assert.False(t, IsTerminal(&bytes.Buffer{}))
	})

	t.Run("Пайп не терминал", func(t *testing.T) {
		r, w, err := os.Pipe()
		require.NoError(t, err)
		defer r.Close()
		defer w.Close()

		assert.False(t, IsTerminal(w))
		assert.False(t, StyledOutput(w))
	})

	t.Run("Обычный файл не терминал", func(t *testing.T) {
		f, err := os.CreateTemp(t.TempDir(), "out")
		require.NoError(t, err)
		defer f.Close()

		assert.False(t, IsTerminal(f))
	})
}

func TestStyledOutputRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, StyledOutput(os.Stdout))
}
