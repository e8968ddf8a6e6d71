package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nnptud/lms-backend/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePut(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := NewLocalStore(dir, "/uploads/")

	url, err := s.Put(context.Background(), "1700000000000-essay-ab12cd34.pdf", strings.NewReader("%PDF-1.7"), 8, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000-essay-ab12cd34.pdf", url)

	got, err := os.ReadFile(filepath.Join(dir, "1700000000000-essay-ab12cd34.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(got))
}

func TestLocalStorePut_RejectsPathKeys(t *testing.T) {
	s := NewLocalStore(t.TempDir(), "/uploads")
	for _, key := range []string{"", ".", "..", "../etc/passwd", `dir\file`, "a/b"} {
		_, err := s.Put(context.Background(), key, strings.NewReader("x"), 1, "")
		assert.Error(t, err, key)
	}
}

func TestNew(t *testing.T) {
	store, err := New(&config.Config{StorageDriver: config.StorageDriverLocal, UploadDir: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = New(&config.Config{StorageDriver: "ftp"}, zerolog.Nop())
	assert.Error(t, err)
}
