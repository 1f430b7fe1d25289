// Package uploads implements the file-storage collaborator: résumé files are
// persisted under a directory configured at startup and deleted by the same
// path later (when an application is replaced or an account is removed).
// The Express implementation this port follows moved `express-fileupload`
// temp files into UPLOAD_PATH; the contract here is the same byte-stream-in,
// path-out shape.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/config"
)

// allowedExtensions lists the résumé formats accepted for upload.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

// Store persists uploaded files on the local filesystem.
type Store struct {
	dir     string
	maxSize int64
}

// NewStore creates a Store rooted at the configured directory, creating the
// directory if it does not exist yet.
func NewStore(cfg *config.UploadConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, apperror.NewExternalServiceError(fmt.Sprintf("failed to create upload directory %s", cfg.Dir), err)
	}
	return &Store{dir: cfg.Dir, maxSize: cfg.MaxFileSize}, nil
}

// MaxSize returns the configured upper bound on a single upload, in bytes.
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// CheckFile validates the declared name and size before any bytes are read.
// The size limit is a numeric byte comparison against the parsed
// configuration value.
func (s *Store) CheckFile(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return apperror.NewValidationError("please upload a .pdf or .docx file", nil)
	}
	if size > s.maxSize {
		return apperror.NewValidationError(fmt.Sprintf("please upload a file smaller than %d bytes", s.maxSize), nil)
	}
	return nil
}

// Save writes the stream to `name` inside the store directory and returns the
// stored path. The target name is expected to already be unique per
// (user, timestamp); an existing file of the same name is overwritten.
// Reads are capped one byte past the limit so an understated Content-Length
// cannot smuggle an oversized body through.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	// The caller controls `name`; keep it a bare file name so it cannot
	// escape the store directory.
	path := filepath.Join(s.dir, filepath.Base(name))

	f, err := os.Create(path)
	if err != nil {
		return "", apperror.NewExternalServiceError("failed to store uploaded file", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		os.Remove(path)
		return "", apperror.NewExternalServiceError("failed to write uploaded file", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return "", apperror.NewValidationError(fmt.Sprintf("please upload a file smaller than %d bytes", s.maxSize), nil)
	}

	return path, nil
}

// Delete removes a previously stored file by its path. A file that is already
// gone is not an error; the caller only cares that it no longer exists.
func (s *Store) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apperror.NewExternalServiceError(fmt.Sprintf("failed to delete stored file %s", path), err)
	}
	return nil
}
