package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mzview/core/msdata"
	"mzview/core/report"
	"mzview/logger"
	"mzview/model"
	"mzview/storage"

	"github.com/google/uuid"
)

type uploadResponse struct {
	Run     *model.Run     `json:"run"`
	TIC     []msdata.Point `json:"tic"`
	Warning string         `json:"warning,omitempty"`
}

// UploadRunHandler accepts an mzML file, parses it, stores the raw
// object and the run metadata, and answers with the run plus its TIC.
func (h *APIHandler) UploadRunHandler(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.cfg.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Could not read upload (limit %d MB): %v", h.cfg.MaxUploadMB, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'file' form field")
		return
	}
	defer file.Close()

	var raw bytes.Buffer
	if _, err := raw.ReadFrom(file); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Could not read upload: %v", err))
		return
	}

	exp, err := msdata.FromReader(bytes.NewReader(raw.Bytes()), h.limits())
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Could not parse mzML file: %v", err))
		return
	}

	ctx := r.Context()
	filename := safeFilename(header.Filename)
	run := &model.Run{
		ID:                uuid.NewString(),
		Filename:          filename,
		SizeBytes:         int64(raw.Len()),
		SpectrumCount:     len(exp.Spectra),
		ChromatogramCount: len(exp.Chromatograms),
		PeakCount:         exp.NumPeaks(),
		CreatedAt:         time.Now().UTC(),
	}
	run.ObjectPath = fmt.Sprintf("runs/%s/%s", run.ID, filename)

	if err := storage.Upload(ctx, run.ObjectPath, bytes.NewReader(raw.Bytes()), int64(raw.Len()), "application/octet-stream"); err != nil {
		logger.Error("Failed to store uploaded run", logger.String("runID", run.ID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to store uploaded file")
		return
	}

	if err := h.runRepo.CreateRun(run); err != nil {
		logger.Error("Failed to save run metadata", logger.String("runID", run.ID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to save run metadata")
		return
	}

	if err := h.expCache.Save(ctx, run.ID, exp); err != nil {
		logger.Warn("Experiment cache write failed", logger.String("runID", run.ID), logger.ErrorField(err))
	}

	logger.Info("Run uploaded",
		logger.String("runID", run.ID),
		logger.String("filename", filename),
		logger.Int("spectra", run.SpectrumCount),
		logger.Int("chromatograms", run.ChromatogramCount))

	resp := uploadResponse{Run: run}
	tic, err := exp.TIC()
	if err != nil {
		resp.TIC = []msdata.Point{}
		resp.Warning = "No chromatogram data found in this mzML file."
	} else {
		resp.TIC = tic
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListRunsHandler returns all uploaded runs, newest first.
func (h *APIHandler) ListRunsHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runRepo.GetAllRuns()
	if err != nil {
		logger.Error("Failed to list runs", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRunHandler returns one run's metadata.
func (h *APIHandler) GetRunHandler(w http.ResponseWriter, r *http.Request) {
	run := h.fetchRun(w, r)
	if run == nil {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// TICHandler returns the total-ion chromatogram of a run.
func (h *APIHandler) TICHandler(w http.ResponseWriter, r *http.Request) {
	run := h.fetchRun(w, r)
	if run == nil {
		return
	}
	exp, err := h.loadExperiment(r.Context(), run)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	tic, err := exp.TIC()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"points": tic})
}

// eicParams parses and validates the mz/tol query parameters.
func eicParams(r *http.Request) (mz, tol float64, err error) {
	mz, err = strconv.ParseFloat(r.URL.Query().Get("mz"), 64)
	if err != nil || mz <= 0 {
		return 0, 0, fmt.Errorf("query parameter 'mz' must be a positive number")
	}
	tol, err = strconv.ParseFloat(r.URL.Query().Get("tol"), 64)
	if err != nil || tol < 0 {
		return 0, 0, fmt.Errorf("query parameter 'tol' must be a non-negative number")
	}
	return mz, tol, nil
}

// EICHandler returns an extracted-ion chromatogram for ?mz=&tol=.
func (h *APIHandler) EICHandler(w http.ResponseWriter, r *http.Request) {
	run := h.fetchRun(w, r)
	if run == nil {
		return
	}
	mz, tol, err := eicParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exp, err := h.loadExperiment(r.Context(), run)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"targetMz":  mz,
		"tolerance": tol,
		"points":    exp.EIC(mz, tol),
	})
}

// topLimit parses ?limit= with the configured default and cap.
func (h *APIHandler) topLimit(r *http.Request) int {
	limit := h.cfg.DefaultTopPeaks
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > h.cfg.MaxTopPeaks {
		limit = h.cfg.MaxTopPeaks
	}
	return limit
}

// PeaksHandler returns the top-N most intense peaks across all spectra.
func (h *APIHandler) PeaksHandler(w http.ResponseWriter, r *http.Request) {
	run := h.fetchRun(w, r)
	if run == nil {
		return
	}
	exp, err := h.loadExperiment(r.Context(), run)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rows, err := exp.PeakTable()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	limit := h.topLimit(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"limit": limit,
		"total": len(rows),
		"peaks": msdata.TopN(rows, limit),
	})
}

func (h *APIHandler) chartOptions(r *http.Request) report.ChartOptions {
	return report.ChartOptions{
		Width:      h.cfg.ChartWidth,
		Height:     h.cfg.ChartHeight,
		ShowPoints: r.URL.Query().Get("points") == "1",
	}
}

func writePNG(w http.ResponseWriter, img []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Write(img)
}

// TICChartHandler renders the TIC as a PNG. ?points=1 adds data-point
// markers.
func (h *APIHandler) TICChartHandler(w http.ResponseWriter, r *http.Request) {
	run := h.fetchRun(w, r)
	if run == nil {
		return
	}
	exp, err := h.loadExperiment(r.Context(), run)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	tic, err := exp.TIC()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	img, err := report.RenderTIC(tic, h.chartOptions(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writePNG(w, img)
}

// EICChartHandler renders an EIC as a PNG for ?mz=&tol=.
func (h *APIHandler) EICChartHandler(w http.ResponseWriter, r *http.Request) {
	run := h.fetchRun(w, r)
	if run == nil {
		return
	}
	mz, tol, err := eicParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exp, err := h.loadExperiment(r.Context(), run)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	img, err := report.RenderEIC(exp.EIC(mz, tol), mz, tol, h.chartOptions(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writePNG(w, img)
}

// ExportPeaksHandler streams the full peak table as an Excel workbook.
func (h *APIHandler) ExportPeaksHandler(w http.ResponseWriter, r *http.Request) {
	run := h.fetchRun(w, r)
	if run == nil {
		return
	}
	exp, err := h.loadExperiment(r.Context(), run)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rows, err := exp.PeakTable()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	data, err := report.PeakTableXLSX(rows)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_peaks.xlsx"`, safeFilename(run.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
