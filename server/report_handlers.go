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
	"github.com/gorilla/mux"
)

const (
	defaultReportTitle = "Mass Spectrometry Report"
	reportFooter       = "Generated by mzview"
	logoMaxPixels      = 600
)

// CreateReportHandler builds a PDF report for a run from multipart form
// fields: title, topN, targetMz, tolerance (the latter two together
// enable the EIC section) and an optional logo image.
func (h *APIHandler) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	run := h.fetchRun(w, r)
	if run == nil {
		return
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Could not read report form: %v", err))
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = defaultReportTitle
	}

	topN := h.cfg.DefaultTopPeaks
	if raw := r.FormValue("topN"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "Form field 'topN' must be a positive integer")
			return
		}
		topN = v
	}
	if topN > h.cfg.MaxTopPeaks {
		topN = h.cfg.MaxTopPeaks
	}

	var targetMz, tolerance float64
	hasEIC := false
	if raw := r.FormValue("targetMz"); raw != "" {
		mz, err := strconv.ParseFloat(raw, 64)
		if err != nil || mz <= 0 {
			writeError(w, http.StatusBadRequest, "Form field 'targetMz' must be a positive number")
			return
		}
		tol, err := strconv.ParseFloat(r.FormValue("tolerance"), 64)
		if err != nil || tol < 0 {
			writeError(w, http.StatusBadRequest, "Form field 'tolerance' must be a non-negative number")
			return
		}
		targetMz, tolerance = mz, tol
		hasEIC = true
	}

	params := report.Params{
		Title:       title,
		SourceFile:  run.Filename,
		GeneratedAt: time.Now(),
		HasEIC:      hasEIC,
		TargetMz:    targetMz,
		Tolerance:   tolerance,
		Footer:      reportFooter,
	}

	if logoFile, _, err := r.FormFile("logo"); err == nil {
		defer logoFile.Close()
		logo, err := report.PrepareLogo(logoFile, logoMaxPixels)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Could not read logo image: %v", err))
			return
		}
		params.Logo = logo
	}

	ctx := r.Context()
	exp, err := h.loadExperiment(ctx, run)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Missing chromatogram or spectra data becomes a note in the PDF
	// rather than a failed report.
	if tic, err := exp.TIC(); err == nil {
		params.TIC = tic
	}
	if hasEIC {
		params.EIC = exp.EIC(targetMz, tolerance)
	}
	if rows, err := exp.PeakTable(); err == nil {
		params.Peaks = msdata.TopN(rows, topN)
	}

	pdfBytes, err := h.renderer.Build(params)
	if err != nil {
		logger.Error("Failed to build report", logger.String("runID", run.ID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to build report")
		return
	}

	rep := &model.Report{
		ID:        uuid.NewString(),
		RunID:     run.ID,
		Title:     title,
		TargetMz:  targetMz,
		Tolerance: tolerance,
		TopPeaks:  topN,
		CreatedAt: time.Now().UTC(),
	}
	rep.ObjectPath = fmt.Sprintf("runs/%s/reports/%s.pdf", run.ID, rep.ID)

	if err := storage.Upload(ctx, rep.ObjectPath, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), "application/pdf"); err != nil {
		logger.Error("Failed to store report", logger.String("reportID", rep.ID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to store report")
		return
	}

	if err := h.reportRepo.CreateReport(rep); err != nil {
		logger.Error("Failed to save report metadata", logger.String("reportID", rep.ID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to save report metadata")
		return
	}

	logger.Info("Report generated",
		logger.String("reportID", rep.ID),
		logger.String("runID", run.ID),
		logger.Int("sizeBytes", len(pdfBytes)))

	writeJSON(w, http.StatusCreated, rep)
}

// ListReportsHandler returns all reports of a run, newest first.
func (h *APIHandler) ListReportsHandler(w http.ResponseWriter, r *http.Request) {
	run := h.fetchRun(w, r)
	if run == nil {
		return
	}
	reports, err := h.reportRepo.GetReportsByRunID(run.ID)
	if err != nil {
		logger.Error("Failed to list reports", logger.String("runID", run.ID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// DownloadReportHandler streams a stored report PDF.
func (h *APIHandler) DownloadReportHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rep, err := h.reportRepo.GetReportByID(id)
	if err != nil {
		logger.Error("Failed to look up report", logger.String("reportID", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to look up report")
		return
	}
	if rep == nil {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}

	obj, err := storage.Fetch(r.Context(), rep.ObjectPath)
	if err != nil {
		logger.Error("Failed to fetch report object", logger.String("reportID", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch report")
		return
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(obj); err != nil {
		logger.Error("Failed to read report object", logger.String("reportID", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to read report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, safeFilename(rep.Title)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}
