// Package loader provides filesystem document loaders used by the CLI
// ingest command and the watch-folder pipeline.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docqa/internal/domain/ports"
)

// TextLoader loads plain text documents (.txt, .md) as a single page.
type TextLoader struct{}

// NewTextLoader creates a new text document loader.
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

// Load reads a text document from the given path.
func (l *TextLoader) Load(ctx context.Context, path string) (*ports.LoadedFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &ports.LoadedFile{
		Filename: filepath.Base(path),
		Pages:    []string{string(content)},
		Size:     len(content),
	}, nil
}

// SupportedExtensions returns file extensions this loader handles.
func (l *TextLoader) SupportedExtensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

// BinaryLoader loads binary documents through the extraction collaborator.
type BinaryLoader struct {
	extractor ports.TextExtractor
}

// NewBinaryLoader creates a loader backed by the extraction service.
func NewBinaryLoader(extractor ports.TextExtractor) *BinaryLoader {
	return &BinaryLoader{extractor: extractor}
}

// Load reads the file and sends it through the extraction service.
func (l *BinaryLoader) Load(ctx context.Context, path string) (*ports.LoadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	pages, err := l.extractor.Extract(ctx, data, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	return &ports.LoadedFile{
		Filename: filepath.Base(path),
		Pages:    pages,
		Size:     len(data),
	}, nil
}

// SupportedExtensions returns file extensions this loader handles.
func (l *BinaryLoader) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Select picks the loader that handles the file's extension, or nil
// when the format is unsupported.
func Select(loaders []ports.DocumentLoader, path string) ports.DocumentLoader {
	ext := strings.ToLower(filepath.Ext(path))
	for _, l := range loaders {
		for _, supported := range l.SupportedExtensions() {
			if ext == supported {
				return l
			}
		}
	}
	return nil
}
