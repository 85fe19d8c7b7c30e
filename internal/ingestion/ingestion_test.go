package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rohit-Gupta-126/aeromind/internal/config"
	"github.com/Rohit-Gupta-126/aeromind/internal/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type fakeEmbedder struct {
	err   error
	texts []string
}

func (f *fakeEmbedder) EmbedChunks(_ context.Context, chunks []string) ([][]float32, error) {
	f.texts = chunks
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(chunks))
	for i := range chunks {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

type fakeStore struct {
	err    error
	calls  int
	docs   []storage.DocumentRecord
	chunks []storage.ChunkRecord
	gen    int64
}

func (f *fakeStore) ReplaceIndex(_ context.Context, docs []storage.DocumentRecord, chunks []storage.ChunkRecord) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.docs, f.chunks = docs, chunks
	f.gen++
	return f.gen, nil
}

type fakePublisher struct{ published []int64 }

func (f *fakePublisher) Publish(gen int64) { f.published = append(f.published, gen) }

func ingestionConfig(dir string) config.IngestionConfig {
	cfg := config.Default().Ingestion
	cfg.DocumentsDir = dir
	return cfg
}

func TestLoadLocalFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.pdf", "%PDF")
	writeFile(t, dir, "a.txt", "text")
	writeFile(t, dir, "notes/c.MD", "md")
	writeFile(t, dir, "photo.png", "png")
	writeFile(t, dir, "report.docx", "docx")
	writeFile(t, dir, ".cache/d.txt", "hidden")

	t.Run("Should list documents in lexical order", func(t *testing.T) {
		files, err := LoadLocalFiles(dir, false)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.txt"),
			filepath.Join(dir, "b.pdf"),
			filepath.Join(dir, "notes", "c.MD"),
		}, files)
	})

	t.Run("Should include images when OCR is enabled", func(t *testing.T) {
		files, err := LoadLocalFiles(dir, true)
		require.NoError(t, err)
		assert.Contains(t, files, filepath.Join(dir, "photo.png"))
	})

	t.Run("Should fail for a missing directory", func(t *testing.T) {
		_, err := LoadLocalFiles(filepath.Join(dir, "missing"), false)
		assert.Error(t, err)
	})
}

func TestExtractor_ExtractText(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("Should read plain text files", func(t *testing.T) {
		path := writeFile(t, dir, "aero.txt", "Max Q occurs near 11 km.")
		text, err := NewExtractor(nil).ExtractText(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "Max Q occurs near 11 km.", text)
	})

	t.Run("Should reject blank documents", func(t *testing.T) {
		path := writeFile(t, dir, "blank.md", "  \n")
		_, err := NewExtractor(nil).ExtractText(ctx, path)
		assert.ErrorIs(t, err, ErrNoText)
	})

	t.Run("Should reject unknown extensions", func(t *testing.T) {
		path := writeFile(t, dir, "sheet.xlsx", "x")
		_, err := NewExtractor(nil).ExtractText(ctx, path)
		assert.ErrorIs(t, err, ErrUnsupportedFile)
	})

	t.Run("Should route images through OCR", func(t *testing.T) {
		path := writeFile(t, dir, "scan.jpg", "jpg")
		var seen string
		ocr := func(_ context.Context, p string) (string, error) {
			seen = p
			return "Rivet spacing 25 mm", nil
		}

		text, err := NewExtractor(ocr).ExtractText(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "Rivet spacing 25 mm", text)
		assert.Equal(t, path, seen)

		_, err = NewExtractor(nil).ExtractText(ctx, path)
		assert.ErrorIs(t, err, ErrUnsupportedFile)
	})

	t.Run("Should fall back to OCR for unreadable PDFs", func(t *testing.T) {
		path := writeFile(t, dir, "scanned.pdf", "not really a pdf")

		_, err := NewExtractor(nil).ExtractText(ctx, path)
		assert.Error(t, err)

		ocr := func(context.Context, string) (string, error) { return "Page one text", nil }
		text, err := NewExtractor(ocr).ExtractText(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "Page one text", text)
	})
}

func TestIndexer_BuildIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("Should index every readable document and publish the generation", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "engine.txt", strings.Repeat("Regenerative cooling keeps the chamber wall below its limit. ", 40))
		writeFile(t, dir, "loads/wing.md", "Limit load factor is 3.8 g.")
		writeFile(t, dir, "broken.pdf", "garbage")

		emb := &fakeEmbedder{}
		store := &fakeStore{}
		pub := &fakePublisher{}
		ix := NewIndexer(ingestionConfig(dir), NewExtractor(nil), emb, store, pub, nil)

		stats, err := ix.BuildIndex(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Documents)
		assert.Greater(t, stats.Chunks, 2)
		assert.Equal(t, int64(1), stats.Generation)
		assert.Equal(t, []int64{1}, pub.published)
		require.Len(t, stats.Skipped, 1)
		assert.True(t, stats.WasSkipped(filepath.Join(dir, "broken.pdf")))

		assert.Len(t, store.chunks, stats.Chunks)
		assert.Len(t, emb.texts, stats.Chunks)
		var names []string
		for _, d := range store.docs {
			names = append(names, d.Filename)
		}
		assert.Equal(t, []string{"engine.txt", "loads/wing.md"}, names)
		for _, c := range store.chunks {
			assert.LessOrEqual(t, len([]rune(c.Content)), 800)
			assert.NotEmpty(t, c.Embedding)
		}
	})

	t.Run("Should keep the previous index when embedding fails", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "Stall speed drops with flaps.")

		store := &fakeStore{}
		pub := &fakePublisher{}
		ix := NewIndexer(ingestionConfig(dir), NewExtractor(nil), &fakeEmbedder{err: errors.New("quota")}, store, pub, nil)

		_, err := ix.BuildIndex(ctx)
		assert.ErrorContains(t, err, "quota")
		assert.Zero(t, store.calls)
		assert.Empty(t, pub.published)
	})

	t.Run("Should surface store failures", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "Stall speed drops with flaps.")

		store := &fakeStore{err: errors.New("connection refused")}
		pub := &fakePublisher{}
		ix := NewIndexer(ingestionConfig(dir), NewExtractor(nil), &fakeEmbedder{}, store, pub, nil)

		_, err := ix.BuildIndex(ctx)
		assert.ErrorContains(t, err, "replace index")
		assert.Empty(t, pub.published)
	})

	t.Run("Should refuse to build from an empty directory", func(t *testing.T) {
		store := &fakeStore{}
		ix := NewIndexer(ingestionConfig(t.TempDir()), NewExtractor(nil), &fakeEmbedder{}, store, nil, nil)

		_, err := ix.BuildIndex(ctx)
		assert.ErrorIs(t, err, ErrNoDocuments)
		assert.Zero(t, store.calls)
	})
}
