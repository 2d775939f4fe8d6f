package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func fileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir, "/media/", 1<<20)
	ctx := context.Background()

	url, err := s.Save(ctx, "covers", fileHeader(t, "cover_image", "My Cover!.png", pngHeader), ImageTypes)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/covers/"), url)
	assert.True(t, strings.HasSuffix(url, "_My_Cover_.png"), url)

	abs := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(url, "/media/")))
	data, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, s.Delete(ctx, url))
	_, err = os.Stat(abs)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, url))
	assert.NoError(t, s.Delete(ctx, "https://elsewhere.example/x.png"))
}

func TestLocalStorage_Rejects(t *testing.T) {
	s := NewLocal(t.TempDir(), "/media", 16)
	ctx := context.Background()

	_, err := s.Save(ctx, "files", fileHeader(t, "file", "a.png", pngHeader), ImageTypes)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	s = NewLocal(t.TempDir(), "/media", 1<<20)
	_, err = s.Save(ctx, "covers", fileHeader(t, "cover_image", "notes.txt", []byte("plain words here")), ImageTypes)
	assert.ErrorIs(t, err, ErrInvalidMimeType)

	_, err = s.Save(ctx, "files", fileHeader(t, "file", "empty.pdf", nil), DocumentTypes)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	key := objectKey("/files/", "book", "application/pdf", now)
	assert.True(t, strings.HasPrefix(key, "files/2024/03/05/"), key)
	assert.True(t, strings.HasSuffix(key, "_book.pdf"), key)
}

type failingClose struct {
	*os.File
}

func (f failingClose) Close() error {
	_ = f.File.Close()
	return errors.New("disk full")
}

func TestLocalStorage_CloseErrorRemovesFile(t *testing.T) {
	dir := t.TempDir()
	var created string
	orig := createFile
	createFile = func(name string) (io.WriteCloser, error) {
		created = name
		f, err := os.Create(name)
		if err != nil {
			return nil, err
		}
		return failingClose{f}, nil
	}
	t.Cleanup(func() { createFile = orig })

	s := NewLocal(dir, "/media", 1<<20)
	url, err := s.Save(context.Background(), "covers", fileHeader(t, "cover_image", "c.png", pngHeader), ImageTypes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, url)

	require.NotEmpty(t, created)
	_, statErr := os.Stat(created)
	assert.True(t, os.IsNotExist(statErr))
}
