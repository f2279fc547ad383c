// Package storage persists uploaded files to a local directory or an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Kind classifies an upload and decides which file types are accepted.
type Kind string

// Upload kinds.
const (
	KindResume Kind = "resume"
	KindImage  Kind = "image"
)

// allowed maps each kind to its extensions and the sniffed MIME types each extension may
// carry.
var allowed = map[Kind]map[string][]string{
	KindResume: {
		".pdf":  {"application/pdf"},
		".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
		".doc":  {"application/msword", "application/x-ole-storage"},
		".txt":  {"text/plain"},
	},
	KindImage: {
		".jpg":  {"image/jpeg"},
		".jpeg": {"image/jpeg"},
		".png":  {"image/png"},
		".gif":  {"image/gif"},
		".webp": {"image/webp"},
	},
}

// File describes a stored upload.
type File struct {
	// Key is the backend-relative object name.
	Key string `json:"key"`
	// Path is what clients use to fetch the file.
	Path         string `json:"path"`
	OriginalName string `json:"originalName"`
	Extension    string `json:"extension"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size"`
	// Data holds the uploaded bytes so callers can parse them without a second read.
	Data []byte `json:"-"`
}

// Store saves uploads. Delete removes a saved file by its Key; deleting a missing file is
// not an error.
type Store interface {
	Save(ctx context.Context, kind Kind, originalName string, body io.Reader) (*File, error)
	Delete(ctx context.Context, key string) error
}

// UnsupportedFileError is returned for files whose extension or content is not accepted.
type UnsupportedFileError struct {
	Kind      Kind
	Extension string
	MIME      string
}

func (e *UnsupportedFileError) Error() string {
	if e.MIME != "" {
		return fmt.Sprintf("unsupported %s file: %s content does not match %q", e.Kind, e.MIME, e.Extension)
	}
	return fmt.Sprintf("unsupported %s file type %q", e.Kind, e.Extension)
}

// FileTooLargeError is returned when an upload exceeds the configured limit.
type FileTooLargeError struct {
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file exceeds the %d byte limit", e.Limit)
}

// AllowedExtensions lists the extensions accepted for a kind.
func AllowedExtensions(kind Kind) []string {
	out := make([]string, 0, len(allowed[kind]))
	for ext := range allowed[kind] {
		out = append(out, ext)
	}
	return out
}

// prepare reads at most maxBytes from body, checks the file type and builds the object
// key.
func prepare(kind Kind, originalName string, body io.Reader, maxBytes int64) (*File, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	mimes, ok := allowed[kind][ext]
	if !ok {
		return nil, &UnsupportedFileError{Kind: kind, Extension: ext}
	}

	data, err := io.ReadAll(io.LimitReader(body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, &FileTooLargeError{Limit: maxBytes}
	}

	detected := mimetype.Detect(data)
	if !matchesAny(detected, mimes) {
		return nil, &UnsupportedFileError{Kind: kind, Extension: ext, MIME: detected.String()}
	}

	return &File{
		Key:          fmt.Sprintf("%ss/%s%s", kind, uuid.New().String(), ext),
		OriginalName: filepath.Base(originalName),
		Extension:    ext,
		ContentType:  detected.String(),
		Size:         int64(len(data)),
		Data:         data,
	}, nil
}

// matchesAny reports whether the detected type, or one of its parents, is in mimes.
func matchesAny(detected *mimetype.MIME, mimes []string) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, want := range mimes {
			if m.Is(want) {
				return true
			}
		}
	}
	return false
}
