package shellenv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPATHEntry(t *testing.T) {
	t.Run("creates file when missing", func(t *testing.T) {
		rc := filepath.Join(t.TempDir(), ".bashrc")

		added, err := AppendPATHEntry(rc, "/home/u/gaianet1/bin")
		require.NoError(t, err)
		assert.True(t, added)

		data, err := os.ReadFile(rc)
		require.NoError(t, err)
		assert.Equal(t, "export PATH=$PATH:/home/u/gaianet1/bin\n", string(data))
	})

	t.Run("rerun does not duplicate", func(t *testing.T) {
		rc := filepath.Join(t.TempDir(), ".bashrc")

		for i := 0; i < 3; i++ {
			_, err := AppendPATHEntry(rc, "/home/u/gaianet1/bin")
			require.NoError(t, err)
		}

		data, err := os.ReadFile(rc)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(data), "gaianet1/bin"))
	})

	t.Run("distinct instances get distinct lines", func(t *testing.T) {
		rc := filepath.Join(t.TempDir(), ".bashrc")

		for _, dir := range []string{"/home/u/gaianet1/bin", "/home/u/gaianet2/bin"} {
			added, err := AppendPATHEntry(rc, dir)
			require.NoError(t, err)
			assert.True(t, added)
		}

		data, err := os.ReadFile(rc)
		require.NoError(t, err)
		assert.Contains(t, string(data), "gaianet1/bin")
		assert.Contains(t, string(data), "gaianet2/bin")
	})

	t.Run("appends newline before entry when file lacks one", func(t *testing.T) {
		rc := filepath.Join(t.TempDir(), ".bashrc")
		require.NoError(t, os.WriteFile(rc, []byte("alias ll='ls -l'"), 0o644))

		_, err := AppendPATHEntry(rc, "/home/u/gaianet1/bin")
		require.NoError(t, err)

		data, err := os.ReadFile(rc)
		require.NoError(t, err)
		assert.Contains(t, string(data), "alias ll='ls -l'\nexport PATH=")
	})
}

func TestWriteCUDAProfile(t *testing.T) {
	t.Setenv("PATH", os.Getenv("PATH"))
	t.Setenv("LD_LIBRARY_PATH", "")
	path := filepath.Join(t.TempDir(), "cuda.sh")

	require.NoError(t, WriteCUDAProfile(path, "12.8"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/usr/local/cuda-12.8/bin")
	assert.Contains(t, string(data), "/usr/local/cuda-12.8/lib64")

	// overwrite is idempotent
	require.NoError(t, WriteCUDAProfile(path, "12.8"))
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	assert.Contains(t, os.Getenv("PATH"), "/usr/local/cuda-12.8/bin")
}
