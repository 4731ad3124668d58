// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Store
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyNCBIAPIKey, "  abc123  \n")
				writeFile(t, dir, KeyContactEmail, "user@example.com\n")
				return dir
			},
			want: Store{
				KeyNCBIAPIKey:   "abc123",
				KeyContactEmail: "user@example.com",
			},
		},
		{
			name: "returns empty store for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Store{},
		},
		{
			name: "skips empty files, dotfiles, and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyNCBIAPIKey, "abc123")
				writeFile(t, dir, "empty-key", "   \n\t  ")
				writeFile(t, dir, ".gitkeep", "hidden")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Store{
				KeyNCBIAPIKey: "abc123",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, KeyContactEmail, "user@example.com")

	badPath := filepath.Join(dir, KeyNCBIAPIKey)
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got[KeyContactEmail])
	assert.NotContains(t, got, KeyNCBIAPIKey, "unreadable file should be skipped")
}

func TestGetPrefersEnvironment(t *testing.T) {
	s := Store{KeyNCBIAPIKey: "from-file"}

	assert.Equal(t, "from-file", s.Get(KeyNCBIAPIKey))

	t.Setenv("NCBI_API_KEY", "from-env")
	assert.Equal(t, "from-env", s.Get(KeyNCBIAPIKey))

	assert.Empty(t, s.Get("unknown-key"))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
