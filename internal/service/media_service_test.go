package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/nnptud/lms-backend/internal/config"
	"github.com/nnptud/lms-backend/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFile struct{ *bytes.Reader }

func (memFile) Close() error { return nil }

func upload(name, contentType string, body []byte) (multipart.File, *multipart.FileHeader) {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	return memFile{bytes.NewReader(body)}, &multipart.FileHeader{Filename: name, Header: h, Size: int64(len(body))}
}

func newMediaService(t *testing.T, maxBytes int64) (*MediaService, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{UploadDir: dir, MaxUploadBytes: maxBytes}
	s := NewMediaService(cfg, storage.NewLocalStore(dir, "/uploads"), zerolog.Nop())
	s.now = func() time.Time { return time.UnixMilli(1772442000000) }
	return s, dir
}

func TestSaveUpload(t *testing.T) {
	s, dir := newMediaService(t, 1024)

	file, header := upload("My Essay (final).PDF", "application/pdf", []byte("%PDF"))
	res, err := s.SaveUpload(context.Background(), file, header)
	require.NoError(t, err)

	assert.Equal(t, UploadKindRaw, res.Kind)
	assert.Regexp(t, regexp.MustCompile(`^1772442000000-My_Essay_final-[0-9a-f]{8}\.pdf$`), res.Filename)
	assert.Equal(t, "/uploads/"+res.Filename, res.URL)

	stored, err := os.ReadFile(filepath.Join(dir, res.Filename))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(stored))
}

func TestSaveUpload_ImagesAndOddNames(t *testing.T) {
	s, _ := newMediaService(t, 1024)

	file, header := upload("../../../etc/passwd", "image/png", []byte("png"))
	res, err := s.SaveUpload(context.Background(), file, header)
	require.NoError(t, err)
	assert.Equal(t, UploadKindImage, res.Kind)
	assert.NotContains(t, res.Filename, "/")
	assert.Contains(t, res.Filename, "-passwd-")

	file, header = upload("???.weird-extension-too-long", "text/plain", []byte("x"))
	res, err = s.SaveUpload(context.Background(), file, header)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Filename, "1772442000000-file-"), res.Filename)
	assert.NotContains(t, res.Filename, ".weird")
}

func TestSaveUpload_Rejections(t *testing.T) {
	s, _ := newMediaService(t, 4)

	_, err := s.SaveUpload(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrFileRequired)

	file, header := upload("big.txt", "text/plain", []byte("too large"))
	_, err = s.SaveUpload(context.Background(), file, header)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
