package ingestion

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

var (
	documentExt = []string{".pdf", ".txt", ".md"}
	imageExt    = []string{".png", ".jpg", ".jpeg"}
)

// AllowedExtensions lists the file extensions that can be indexed.
func AllowedExtensions(ocr bool) []string {
	if !ocr {
		return slices.Clone(documentExt)
	}
	return append(slices.Clone(documentExt), imageExt...)
}

// IsAllowed reports whether name has an indexable extension.
func IsAllowed(name string, ocr bool) bool {
	return slices.Contains(AllowedExtensions(ocr), strings.ToLower(filepath.Ext(name)))
}

// LoadLocalFiles walks root and returns every indexable file in lexical order.
func LoadLocalFiles(root string, ocr bool) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsAllowed(path, ocr) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return out, nil
}
