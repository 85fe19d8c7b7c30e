package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrNoText          = errors.New("no extractable text")
)

// OCRFunc recognizes text in an image or a scanned PDF.
type OCRFunc func(ctx context.Context, path string) (string, error)

// Extractor turns a document file into plain text.
type Extractor struct {
	ocr OCRFunc
}

// NewExtractor returns an Extractor. A nil ocr disables image files and the
// OCR fallback for PDFs without a text layer.
func NewExtractor(ocr OCRFunc) *Extractor {
	return &Extractor{ocr: ocr}
}

func (e *Extractor) OCREnabled() bool { return e.ocr != nil }

// ExtractText detects the file type and returns its text.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return nonEmpty(string(b))
	case ".pdf":
		text, err := ExtractTextFromPDF(ctx, path)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if e.ocr == nil {
			if err != nil {
				return "", fmt.Errorf("read pdf: %w", err)
			}
			return "", ErrNoText
		}
		text, ocrErr := e.ocr(ctx, path)
		if ocrErr != nil {
			return "", fmt.Errorf("ocr: %w", ocrErr)
		}
		return nonEmpty(text)
	case ".png", ".jpg", ".jpeg":
		if e.ocr == nil {
			return "", fmt.Errorf("%w: %s (OCR disabled)", ErrUnsupportedFile, ext)
		}
		text, err := e.ocr(ctx, path)
		if err != nil {
			return "", fmt.Errorf("ocr: %w", err)
		}
		return nonEmpty(text)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
}

func nonEmpty(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}
