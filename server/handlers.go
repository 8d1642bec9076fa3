package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"mzview/cache"
	"mzview/config"
	"mzview/core/msdata"
	"mzview/core/report"
	"mzview/logger"
	"mzview/model"
	"mzview/repository"
	"mzview/storage"

	"github.com/gorilla/mux"
)

// APIHandler holds dependencies for the HTTP API handlers.
type APIHandler struct {
	runRepo    repository.RunRepository
	reportRepo repository.ReportRepository
	expCache   *cache.ExperimentCache
	renderer   *report.Renderer
	cfg        *config.Config
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(runRepo repository.RunRepository, reportRepo repository.ReportRepository,
	expCache *cache.ExperimentCache, renderer *report.Renderer, cfg *config.Config) *APIHandler {
	return &APIHandler{
		runRepo:    runRepo,
		reportRepo: reportRepo,
		expCache:   expCache,
		renderer:   renderer,
		cfg:        cfg,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode JSON response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps extraction errors to HTTP statuses. Missing
// data in an otherwise valid file is the client's problem, not ours.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, msdata.ErrNoSpectraData):
		writeError(w, http.StatusUnprocessableEntity, "No mass spectra data available.")
	case errors.Is(err, msdata.ErrNoChromatogramData):
		writeError(w, http.StatusUnprocessableEntity, "No chromatogram data found in this mzML file.")
	case errors.Is(err, report.ErrNotEnoughPoints):
		writeError(w, http.StatusUnprocessableEntity, "Not enough data points to draw a chart.")
	default:
		logger.Error("Request failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// HealthzHandler reports liveness.
func (h *APIHandler) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func (h *APIHandler) limits() msdata.Limits {
	return msdata.Limits{
		MaxSpectra:          h.cfg.MaxSpectra,
		MaxPeaksPerSpectrum: h.cfg.MaxPeaksPerSpectrum,
	}
}

// fetchRun resolves the {id} path variable to a run record, writing the
// error response itself. Returns nil when the caller should bail out.
func (h *APIHandler) fetchRun(w http.ResponseWriter, r *http.Request) *model.Run {
	id := mux.Vars(r)["id"]
	run, err := h.runRepo.GetRunByID(id)
	if err != nil {
		logger.Error("Failed to look up run", logger.String("runID", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to look up run")
		return nil
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "Run not found")
		return nil
	}
	return run
}

// loadExperiment returns the parsed experiment for a run, preferring
// the Redis cache and falling back to re-parsing the raw object from
// storage. Cache failures are logged, never fatal.
func (h *APIHandler) loadExperiment(ctx context.Context, run *model.Run) (*msdata.Experiment, error) {
	exp, err := h.expCache.Get(ctx, run.ID)
	if err != nil {
		logger.Warn("Experiment cache read failed", logger.String("runID", run.ID), logger.ErrorField(err))
	}
	if exp != nil {
		return exp, nil
	}

	obj, err := storage.Fetch(ctx, run.ObjectPath)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	exp, err = msdata.FromReader(obj, h.limits())
	if err != nil {
		return nil, err
	}

	if err := h.expCache.Save(ctx, run.ID, exp); err != nil {
		logger.Warn("Experiment cache write failed", logger.String("runID", run.ID), logger.ErrorField(err))
	}
	return exp, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// safeFilename reduces a client-supplied filename to a storage- and
// header-safe form.
func safeFilename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "upload.mzML"
	}
	return name
}
