// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/FairForge/wardkeeper/internal/archive"
	"github.com/FairForge/wardkeeper/internal/dispatch"
	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/FairForge/wardkeeper/internal/history"
	"github.com/FairForge/wardkeeper/internal/metrics"
)

// Handler serves the fault-recovery HTTP surface: fault reporting, history
// queries, snapshot export and the handler metrics endpoint.
type Handler struct {
	dispatcher *dispatch.Dispatcher
	history    *history.Log
	metrics    *metrics.Store
	exporter   *metrics.Exporter
	uploader   *archive.Uploader // nil when archival is not configured
	exportDir  string
	compress   bool
	logger     *zap.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithUploader enables shipping exported snapshots to object storage.
func WithUploader(u *archive.Uploader) HandlerOption {
	return func(h *Handler) { h.uploader = u }
}

// WithExportDir sets where snapshot files are written.
func WithExportDir(dir string) HandlerOption {
	return func(h *Handler) { h.exportDir = dir }
}

// WithCompression makes exports snappy-framed.
func WithCompression(on bool) HandlerOption {
	return func(h *Handler) { h.compress = on }
}

// NewHandler creates the API handler.
func NewHandler(d *dispatch.Dispatcher, log *history.Log, store *metrics.Store, exporter *metrics.Exporter, logger *zap.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		dispatcher: d,
		history:    log,
		metrics:    store,
		exporter:   exporter,
		exportDir:  os.TempDir(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers every API route on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/faults", h.ReportFault)
		r.Get("/faults/recent", h.RecentFaults)
		r.Get("/faults/active", h.ActiveFaults)
		r.Post("/faults/export", h.ExportSnapshot)
		r.Get("/metrics/handlers", h.HandlerMetrics)
	})
	r.Get("/health", h.Health)
	if h.exporter != nil {
		r.Method(http.MethodGet, "/metrics", h.exporter.Handler())
	}
}

// Router builds a standalone router with all routes registered.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// reportRequest is the wire form of a fault report.
type reportRequest struct {
	Category string         `json:"category"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Context  map[string]any `json:"context,omitempty"`
}

// ReportFault accepts a fault report and drives it to a terminal state.
// Fatal faults answer 500 with the fault id — the caller decides how to
// surface it, the service itself keeps running.
func (h *Handler) ReportFault(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Errorf("decode report: %w", err))
		return
	}

	category, err := fault.ParseCategory(req.Category)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	severity, err := fault.ParseSeverity(req.Severity)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	id, err := h.dispatcher.Report(r.Context(), category, severity, req.Message, req.Context)
	if err != nil {
		if errors.Is(err, dispatch.ErrFatal) {
			h.logger.Error("fault reached fatal state",
				zap.String("fault_id", id.String()),
				zap.Error(err))
			h.respondJSON(w, http.StatusInternalServerError, map[string]any{
				"fault_id": id.String(),
				"state":    string(fault.StateFatal),
				"error":    err.Error(),
			})
			return
		}
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	state := fault.StateDegradedResolved
	if f, ok := h.history.Get(id); ok {
		state = f.State()
	}
	h.respondJSON(w, http.StatusCreated, map[string]any{
		"fault_id": id.String(),
		"state":    string(state),
	})
}

// RecentFaults returns up to limit records, most recent first.
func (h *Handler) RecentFaults(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 100
	}
	records := h.history.Recent(limit)
	h.respondJSON(w, http.StatusOK, map[string]any{
		"faults": records,
		"count":  len(records),
	})
}

// ActiveFaults returns unhandled records. Steady state is empty; anything
// here is an escalation chain, a fatal fault, or a dispatcher bug.
func (h *Handler) ActiveFaults(w http.ResponseWriter, r *http.Request) {
	records := h.history.Active()
	h.respondJSON(w, http.StatusOK, map[string]any{
		"faults": records,
		"count":  len(records),
	})
}

// ExportSnapshot writes the audit snapshot to the export directory and, when
// an uploader is configured, ships it to the archive bucket.
func (h *Handler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	name := fmt.Sprintf("faults-%s.json", time.Now().UTC().Format("20060102T150405"))
	if h.compress {
		name += ".snappy"
	}
	path := filepath.Join(h.exportDir, name)

	var err error
	if h.compress {
		err = h.history.ExportCompressed(path)
	} else {
		err = h.history.Export(path)
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}

	resp := map[string]any{"path": path, "faults": h.history.Len()}
	if h.uploader != nil {
		key, err := h.uploader.ArchiveSnapshot(r.Context(), path)
		if err != nil {
			// The local export succeeded; report the archive failure
			// without discarding the snapshot.
			h.logger.Warn("snapshot archive failed", zap.String("path", path), zap.Error(err))
			resp["archive_error"] = err.Error()
		} else {
			resp["archive_key"] = key
		}
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// HandlerMetrics returns the per-category handler metrics snapshot as stable
// JSON keyed by category name.
func (h *Handler) HandlerMetrics(w http.ResponseWriter, _ *http.Request) {
	snapshot := h.metrics.Snapshot()
	out := make(map[string]metrics.HandlerMetrics, len(snapshot))
	for category, m := range snapshot {
		out[category.String()] = m
	}
	h.respondJSON(w, http.StatusOK, out)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"faults": h.history.Len(),
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, err error) {
	h.logger.Error("API error", zap.Error(err), zap.Int("status", status))
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}
