package ingestion

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// ExtractTextFromPDF reads the PDF text layer, falling back to the
// pdftotext CLI when the layer is empty. It returns "" when neither finds text.
func ExtractTextFromPDF(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	b, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(&buf, b); err != nil {
		return "", err
	}
	text := strings.TrimSpace(buf.String())
	if text == "" {
		// pdftotext is optional
		out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
		if err == nil {
			return strings.TrimSpace(string(out)), nil
		}
	}
	return text, nil
}
