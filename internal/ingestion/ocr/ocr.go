// Package ocr recognizes text in images and scanned PDFs with tesseract.
// PDF pages are rasterized with pdftoppm (poppler), which must be on PATH.
package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Extract runs OCR on an image or every page of a PDF.
func Extract(ctx context.Context, path string) (string, error) {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return runTesseract(path)
	}

	tmpDir, err := os.MkdirTemp("", "aeromind_pdfimg")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-png", path, prefix)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftoppm convert failed: %w", err)
	}
	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return "", err
	}
	sort.Strings(pages)

	var combined strings.Builder
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		t, err := runTesseract(p)
		if err != nil {
			continue
		}
		combined.WriteString(t)
		combined.WriteString("\n")
	}
	return strings.TrimSpace(combined.String()), nil
}

func runTesseract(imgPath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetImage(imgPath); err != nil {
		return "", err
	}
	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
