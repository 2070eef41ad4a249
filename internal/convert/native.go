// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// NativeConverter reads PDF and DOCX files in-process without a container.
// Legacy .doc files are not supported and need the markitdown backend.
type NativeConverter struct{}

// NewNativeConverter returns a NativeConverter. A non-empty unidocKey is
// registered as the PDF library's metered license key.
func NewNativeConverter(unidocKey string) (*NativeConverter, error) {
	if unidocKey != "" {
		if err := license.SetMeteredKey(unidocKey); err != nil {
			return nil, fmt.Errorf("setting unidoc license: %w", err)
		}
	}
	return &NativeConverter{}, nil
}

// Convert dispatches on the file extension.
func (n *NativeConverter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return pdfText(path)
	case ".docx":
		return docxText(path)
	default:
		return "", fmt.Errorf("native converter cannot read %s; use the markitdown backend", filepath.Ext(path))
	}
}

// pdfText extracts the text of every page, marking page boundaries.
// Pages that fail to extract are skipped.
func pdfText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("reading PDF: %w", err)
	}
	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("counting PDF pages: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			continue
		}
		text, err := ex.ExtractText()
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&b, "<!-- page %d -->\n%s\n\n", i, strings.TrimSpace(text))
	}
	return b.String(), nil
}

func docxText(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("reading DOCX: %w", err)
	}
	defer r.Close()
	return wordXMLText(r.Editable().GetContent()), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:tab\s*/>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// wordXMLText flattens WordprocessingML to plain text, one paragraph per line.
func wordXMLText(content string) string {
	text := paragraphEnd.ReplaceAllStringFunc(content, func(m string) string {
		if strings.HasPrefix(m, "<w:tab") {
			return "\t"
		}
		return "\n"
	})
	text = html.UnescapeString(xmlTag.ReplaceAllString(text, ""))
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
