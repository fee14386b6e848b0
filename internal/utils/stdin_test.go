package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadFromStdin(t *testing.T) {
	t.Run("pipe", func(t *testing.T) {
		oldStdin := os.Stdin
		defer func() { os.Stdin = oldStdin }()

		r, w, err := os.Pipe()
		require.NoError(t, err)
		os.Stdin = r

		go func() {
			_, _ = w.Write([]byte("ghp_secret\n"))
			_ = w.Close()
		}()

		token, err := ReadFromStdin()
		require.NoError(t, err)
		require.Equal(t, "ghp_secret", token)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty")
		require.NoError(t, os.WriteFile(path, nil, 0600))
		f, err := os.Open(path)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		token, err := readFrom(f)
		require.NoError(t, err)
		require.Empty(t, token)
	})
}
