// Package media stores blog cover images on local disk and serves them back
// through a static URL prefix. Files are renamed to UUIDs on save, so the
// original client filename never reaches the filesystem.
package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrFileRejected is returned when an upload violates the type or size
// policy. Handlers map it to a 400.
var ErrFileRejected = errors.New("file rejected")

// allowedTypes maps permitted file extensions to the sniffed MIME types they
// must match.
var allowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Store writes uploads below Dir and addresses them as BaseURL/<name>.
type Store struct {
	Dir      string
	BaseURL  string
	MaxBytes int64
}

// NewStore builds a Store rooted at dir. baseURL is the public path prefix
// the router serves dir under (e.g. /uploads/blog). maxBytes caps accepted
// upload size.
func NewStore(dir, baseURL string, maxBytes int64) *Store {
	return &Store{
		Dir:      dir,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		MaxBytes: maxBytes,
	}
}

// Save validates and persists an uploaded image, returning its public URL
// reference. Uploads failing the extension, MIME, or size policy return
// ErrFileRejected.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.MaxBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrFileRejected, s.MaxBytes)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	wantMIME, ok := allowedTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: extension %q not allowed", ErrFileRejected, ext)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	// Sniff the real content type instead of trusting the client header.
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if got := http.DetectContentType(head[:n]); got != wantMIME {
		return "", fmt.Errorf("%w: content type %s does not match %s", ErrFileRejected, got, ext)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, s.MaxBytes+1)); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}

	return s.BaseURL + "/" + name, nil
}

// Remove deletes the file behind a public reference previously returned by
// Save. References outside the store's URL namespace are ignored, as are
// already-deleted files.
func (s *Store) Remove(ref string) error {
	if !strings.HasPrefix(ref, s.BaseURL+"/") {
		return nil
	}
	name := path.Base(ref)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return fmt.Errorf("invalid media reference %q", ref)
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
