// Package server exposes the extraction and scoring pipelines over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/majinstudio/labvitals/constants"
	"github.com/majinstudio/labvitals/internal/audit"
	"github.com/majinstudio/labvitals/internal/common"
	"github.com/majinstudio/labvitals/internal/export"
	"github.com/majinstudio/labvitals/internal/extract"
	"github.com/majinstudio/labvitals/internal/risk"
)

// FileExtractor is the dispatcher surface the server depends on.
// Stubbed in tests.
type FileExtractor interface {
	Extract(ctx context.Context, path string) extract.Outcome
}

type Config struct {
	UploadDir      string
	MaxUploadBytes int64
	ExtractTimeout time.Duration
}

type Server struct {
	cfg        Config
	dispatcher FileExtractor
	scorer     *risk.Scorer
	auditStore *audit.Store    // optional; nil disables the trail
	exporter   *export.Service // optional; nil disables /export
	logger     *slog.Logger
}

func New(cfg Config, dispatcher FileExtractor, scorer *risk.Scorer, auditStore *audit.Store, exporter *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 16 << 20
	}
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = 2 * time.Minute
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		scorer:     scorer,
		auditStore: auditStore,
		exporter:   exporter,
		logger:     logger,
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Get("/healthz", s.handleHealth)
	r.Post("/extract", s.handleExtract)
	r.Post("/predict", s.handlePredict)
	r.Get("/export", s.handleExport)
	return r
}

// requestID tags every request with a UUID for log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := common.WithRequestID(r.Context(), id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.auditStore != nil {
		if err := s.auditStore.Ping(r.Context()); err != nil {
			status["audit"] = "unavailable"
		}
	}
	s.writeJSON(w, http.StatusOK, status)
}

// handleExtract accepts a multipart upload, runs the extraction
// pipeline and replies with the canonical field map, or with
// {"error": message} when the document failed structurally. The
// uploaded file lives only for the duration of the request.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	reqID := common.RequestIDFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, common.ErrInvalidInput, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, common.ErrInvalidInput, "no file uploaded")
		return
	}
	defer file.Close()

	if !constants.IsAllowedUpload(header.Filename) {
		s.writeError(w, common.ErrUnsupported, "invalid file type")
		return
	}

	path, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.logger.Error("save upload failed", "request_id", reqID, "error", err)
		s.writeError(w, common.ErrInternal, "could not store upload")
		return
	}
	defer os.Remove(path)

	format := constants.MapExtToFormat(constants.ExtFromPath(header.Filename))
	jobID := s.auditStart(r.Context(), header.Filename, format)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.ExtractTimeout)
	defer cancel()

	start := time.Now()
	out := s.dispatcher.Extract(ctx, path)
	dur := time.Since(start)

	s.auditFinish(r.Context(), jobID, out, dur)
	s.logger.Info("extraction done",
		"request_id", reqID,
		"file", header.Filename,
		"format", format,
		"fields", len(out.Fields),
		"ok", out.OK(),
		"duration_ms", dur.Milliseconds(),
	)

	s.writeJSON(w, http.StatusOK, out.AsJSONValue())
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeError(w, common.ErrInvalidInput, "unreadable body")
		return
	}

	vitals, err := risk.ValidateVitalsJSON(body)
	if err != nil {
		s.writeError(w, common.ErrInvalidInput, err.Error())
		return
	}

	report := s.scorer.Score(r.Context(), vitals)
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.writeError(w, common.ErrNotFound, "export disabled")
		return
	}

	var from, to *time.Time
	parseDate := func(q string) (*time.Time, bool) {
		v := r.URL.Query().Get(q)
		if v == "" {
			return nil, true
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, false
		}
		return &t, true
	}
	from, ok := parseDate("from")
	if !ok {
		s.writeError(w, common.ErrInvalidInput, "from must be YYYY-MM-DD")
		return
	}
	to, ok = parseDate("to")
	if !ok {
		s.writeError(w, common.ErrInvalidInput, "to must be YYYY-MM-DD")
		return
	}

	data, err := s.exporter.ExportJobsXLSX(r.Context(), from, to)
	if err != nil {
		s.logger.Error("export failed", "error", err)
		s.writeError(w, common.ErrInternal, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="extractions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// saveUpload copies the uploaded stream to a temp file that keeps the
// original extension so the dispatcher can route it.
func (s *Server) saveUpload(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", common.WrapError(err, "ensure upload dir")
	}
	ext := filepath.Ext(filename)
	f, err := os.CreateTemp(s.cfg.UploadDir, "upload-*"+ext)
	if err != nil {
		return "", common.WrapError(err, "create upload file")
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		os.Remove(f.Name())
		return "", common.WrapError(err, "copy upload")
	}
	return f.Name(), nil
}

func (s *Server) auditStart(ctx context.Context, fileName, format string) uuid.UUID {
	if s.auditStore == nil {
		return uuid.Nil
	}
	id, err := s.auditStore.Start(ctx, fileName, format)
	if err != nil {
		s.logger.Warn("audit start failed", "error", err)
		return uuid.Nil
	}
	return id
}

func (s *Server) auditFinish(ctx context.Context, id uuid.UUID, out extract.Outcome, dur time.Duration) {
	if s.auditStore == nil || id == uuid.Nil {
		return
	}
	o := audit.Outcome{
		Status:   constants.JobStatusOK,
		Duration: dur,
	}
	if out.OK() {
		o.FieldsFound = len(out.Fields)
		if b, err := json.Marshal(out.Fields); err == nil {
			o.FieldsJSON = string(b)
		}
	} else {
		o.Status = constants.JobStatusFailed
		o.ErrorMessage = out.Err
	}
	if err := s.auditStore.Finish(ctx, id, o); err != nil {
		s.logger.Warn("audit finish failed", "error", err)
	}
}

// writeError maps the sentinel to its HTTP status and replies with the
// wire error shape.
func (s *Server) writeError(w http.ResponseWriter, sentinel error, msg string) {
	s.writeJSON(w, common.HTTPStatus(sentinel), map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}
