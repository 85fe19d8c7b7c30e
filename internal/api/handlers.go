package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rohit-Gupta-126/aeromind/internal/ingestion"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("root endpoint accessed")
	writeJSONResponse(w, http.StatusOK, StatusResponse{Message: "AeroMind system online", Status: "OK"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	writeJSONResponse(w, http.StatusOK, s.deps.Workflow.Run(r.Context(), req.Question))
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: field required", fe.Field())
	case "min":
		return fmt.Sprintf("%s: must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s validation", fe.Field(), fe.Tag())
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "Multipart field \"file\" is required")
		return
	}
	defer file.Close()

	name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(header.Filename, "\\", "/")))
	if name == "/" || name == "." || strings.HasPrefix(name, ".") {
		writeError(w, http.StatusBadRequest, "Invalid file name")
		return
	}
	if !ingestion.IsAllowed(name, s.deps.Indexer.OCREnabled()) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file type; allowed: %s",
			strings.Join(ingestion.AllowedExtensions(s.deps.Indexer.OCREnabled()), ", ")))
		return
	}
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		mtype, err := mimetype.DetectReader(file)
		if err != nil || !mtype.Is("application/pdf") {
			writeError(w, http.StatusBadRequest, "File content is not a PDF")
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to read upload")
			return
		}
	}

	dest := filepath.Join(s.deps.Indexer.Dir(), name)
	upload, err := stageUpload(file, dest)
	if err != nil {
		s.logger.Error("failed to save upload", zap.String("source", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save file: "+err.Error())
		return
	}

	ctx := r.Context()
	stats, err := s.deps.Indexer.BuildIndex(ctx)
	if err != nil {
		s.rollbackUpload(upload)
		writeError(w, http.StatusInternalServerError, "Failed to rebuild index: "+err.Error())
		return
	}
	if stats.WasSkipped(dest) {
		reason := skipReason(stats, dest)
		s.rollbackUpload(upload)
		if _, err := s.deps.Indexer.BuildIndex(ctx); err != nil {
			s.logger.Error("failed to rebuild index after discarding upload", zap.String("source", name), zap.Error(err))
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to extract text from %s: %s", name, reason))
		return
	}
	if err := upload.commit(); err != nil {
		s.logger.Warn("failed to remove replaced document backup", zap.String("source", upload.backup), zap.Error(err))
	}

	s.logger.Info("document uploaded", zap.String("source", name),
		zap.Int("documents", stats.Documents), zap.Int("chunks", stats.Chunks))
	writeJSONResponse(w, http.StatusOK, UploadResponse{
		Filename: name,
		Status:   "success",
		Message:  fmt.Sprintf("File uploaded and index rebuilt (%d documents, %d chunks).", stats.Documents, stats.Chunks),
	})
}

// stagedUpload is an upload moved into place whose predecessor, if any, is
// kept under a hidden non-indexable name until the rebuild outcome is known.
type stagedUpload struct {
	dest   string
	backup string
}

// stageUpload writes src to a temporary file next to dest, moves an existing
// dest aside and renames the new file into place.
func stageUpload(src io.Reader, dest string) (*stagedUpload, error) {
	dir, name := filepath.Split(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(dir, "."+name+".upload-*")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}

	u := &stagedUpload{dest: dest}
	if _, err := os.Stat(dest); err == nil {
		u.backup = filepath.Join(dir, "."+name+".bak-"+uuid.NewString())
		if err := os.Rename(dest, u.backup); err != nil {
			os.Remove(tmp.Name())
			return nil, err
		}
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		if u.backup != "" {
			os.Rename(u.backup, dest)
		}
		return nil, err
	}
	return u, nil
}

// commit drops the replaced document.
func (u *stagedUpload) commit() error {
	if u.backup == "" {
		return nil
	}
	return os.Remove(u.backup)
}

// rollback removes the upload and puts the replaced document back.
func (u *stagedUpload) rollback() error {
	if err := os.Remove(u.dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if u.backup == "" {
		return nil
	}
	return os.Rename(u.backup, u.dest)
}

func (s *Server) rollbackUpload(u *stagedUpload) {
	if err := u.rollback(); err != nil {
		s.logger.Error("failed to roll back upload", zap.String("source", u.dest), zap.Error(err))
	}
}

func skipReason(stats ingestion.Stats, path string) string {
	for _, f := range stats.Skipped {
		if f.Path == path {
			return f.Reason
		}
	}
	return "unknown error"
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.deps.Store.Documents(r.Context())
	if err != nil {
		s.logger.Error("failed to list documents", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"documents": docs, "count": len(docs)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Database: "up", Cache: "disabled"}
	status := http.StatusOK

	if err := s.deps.Store.Ping(r.Context()); err != nil {
		resp.Status, resp.Database = "unhealthy", "down"
		status = http.StatusServiceUnavailable
	}
	if s.deps.Cache != nil && s.deps.Cache.Enabled() {
		resp.Cache = "up"
		if err := s.deps.Cache.Ping(r.Context()); err != nil {
			resp.Cache = "down"
		}
	}
	writeJSONResponse(w, status, resp)
}
