// Package storage saves uploaded book covers and files either on local disk
// or in S3 and returns the public URL stored on the book.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidMimeType = errors.New("file type is not allowed")
)

// ImageTypes are accepted for book covers.
var ImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// DocumentTypes are accepted for book files. EPUB sniffs as application/zip.
var DocumentTypes = map[string]bool{
	"application/pdf": true,
	"application/zip": true,
	"text/plain":      true,
}

type Storage interface {
	// Save stores the upload under prefix and returns its public URL.
	Save(ctx context.Context, prefix string, fh *multipart.FileHeader, allowed map[string]bool) (string, error)
	// Delete removes a file previously returned by Save. Unknown URLs are ignored.
	Delete(ctx context.Context, url string) error
}

// opened is an upload that passed size and content-type checks.
type opened struct {
	file     multipart.File
	mimeType string
	key      string
}

func open(fh *multipart.FileHeader, prefix string, allowed map[string]bool, maxSize int64) (*opened, error) {
	if fh.Size == 0 {
		return nil, ErrEmptyFile
	}
	if maxSize > 0 && fh.Size > maxSize {
		return nil, ErrFileTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}

	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !allowed[mimeType] {
		_ = file.Close()
		return nil, ErrInvalidMimeType
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	return &opened{file: file, mimeType: mimeType, key: objectKey(prefix, fh.Filename, mimeType, time.Now())}, nil
}

// objectKey builds prefix/YYYY/MM/DD/<uuid>_<name><ext>.
func objectKey(prefix, filename, mimeType string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = mimeToExt(mimeType)
	}
	name := fmt.Sprintf("%s_%s%s", uuid.NewString(), sanitizeName(filename), ext)
	return path.Join(strings.Trim(prefix, "/"), fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day()), name)
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" || name == "_" {
		return "file"
	}
	return name
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	case "application/zip":
		return ".epub"
	case "text/plain":
		return ".txt"
	default:
		return ".bin"
	}
}
