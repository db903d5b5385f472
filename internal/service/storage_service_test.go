package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"eduassess_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newLocalStorage(t *testing.T) (*StorageService, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Storage.LocalPath = dir
	s := NewStorageService(cfg)
	s.now = func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local) }
	return s, dir
}

func TestUploadImageLocal(t *testing.T) {
	s, dir := newLocalStorage(t)
	require.IsType(t, &LocalStorageProvider{}, s.Provider)

	res, err := s.UploadImage(context.Background(), bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.ContentType)
	assert.True(t, strings.HasPrefix(res.Filename, "images/2024/03/"))
	assert.True(t, strings.HasSuffix(res.Filename, ".png"))
	assert.Equal(t, "/uploads/"+res.Filename, res.URL)
	assert.Equal(t, int64(len(pngHeader)), res.Size)

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(res.Filename)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	s, _ := newLocalStorage(t)

	_, err := s.UploadImage(context.Background(), strings.NewReader("hello, world"), 12)
	assert.ErrorIs(t, err, util.ErrInvalidFileType)

	_, err = s.UploadImage(context.Background(), strings.NewReader(""), 0)
	assert.ErrorIs(t, err, util.ErrInvalidFileType)
}

func TestUploadImageRejectsOversize(t *testing.T) {
	s, dir := newLocalStorage(t)

	_, err := s.UploadImage(context.Background(), bytes.NewReader(pngHeader), s.MaxBytes+1)
	assert.ErrorIs(t, err, util.ErrFileTooLarge)

	// 声明大小与实际内容不符
	big := append(append([]byte{}, pngHeader...), make([]byte, s.MaxBytes)...)
	_, err = s.UploadImage(context.Background(), bytes.NewReader(big), 10)
	assert.ErrorIs(t, err, util.ErrFileTooLarge)

	// 超出大小的截断文件不留在存储中
	var leftover []string
	require.NoError(t, filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			leftover = append(leftover, p)
		}
		return err
	}))
	assert.Empty(t, leftover)
}

func TestLocalStorageDeleteMissingFile(t *testing.T) {
	s, _ := newLocalStorage(t)
	assert.NoError(t, s.Provider.Delete(context.Background(), "images/2024/03/missing.png"))
}
