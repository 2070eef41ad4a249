// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns résumé files (PDF, DOCX, DOC) into plain text or
// Markdown with pluggable backends.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/talent-engine/pkg/types"
)

// Converter transforms a résumé file into text. Different backends
// (markitdown container, native Go readers) implement this interface.
type Converter interface {
	// Convert reads the file at path and returns its text content.
	Convert(ctx context.Context, path string) (string, error)
}

// SupportedExtensions lists the résumé formats accepted for ingestion.
var SupportedExtensions = []string{".pdf", ".docx", ".doc"}

// Metadata describes one conversion.
type Metadata struct {
	OriginalFile  string    `json:"original_file" yaml:"original_file"`
	FileType      string    `json:"file_type" yaml:"file_type"`
	ContentLength int       `json:"content_length" yaml:"content_length"`
	ParsedAt      time.Time `json:"parsed_at" yaml:"parsed_at"`

	// CacheFile is set by callers that keep a copy of the converted text.
	CacheFile string `json:"cache_file,omitempty" yaml:"cache_file,omitempty"`
}

// CheckExtension returns an error wrapping types.ErrUnsupportedFormat when
// name does not end in a supported extension.
func CheckExtension(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, ok := range SupportedExtensions {
		if ext == ok {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %q (allowed: %s)", types.ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions, ", "))
}

// Document validates and converts one résumé file. Conversion failures and
// empty output are returned as *types.CollaboratorError.
func Document(ctx context.Context, c Converter, path string) (string, Metadata, error) {
	ext, err := CheckExtension(path)
	if err != nil {
		return "", Metadata{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", Metadata{}, fmt.Errorf("résumé %s: %w", path, types.ErrNotFound)
		}
		return "", Metadata{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", Metadata{}, types.Validationf("%s is a directory", path)
	}

	text, err := c.Convert(ctx, path)
	if err != nil {
		return "", Metadata{}, &types.CollaboratorError{Collaborator: "conversion", Op: "convert", Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", Metadata{}, &types.CollaboratorError{
			Collaborator: "conversion",
			Op:           "convert",
			Err:          fmt.Errorf("no text extracted from %s", filepath.Base(path)),
		}
	}

	return text, Metadata{
		OriginalFile:  filepath.Base(path),
		FileType:      strings.TrimPrefix(ext, "."),
		ContentLength: len(text),
		ParsedAt:      time.Now().UTC(),
	}, nil
}
