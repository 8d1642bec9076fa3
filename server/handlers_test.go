package server

import (
	"net/http/httptest"
	"testing"

	"mzview/config"
	"mzview/core/msdata"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sample.mzML", "sample.mzML"},
		{"my run (1).mzML", "my_run_1_.mzML"},
		{`C:\Users\me\data.mzML`, "data.mzML"},
		{"../../etc/passwd", "passwd"},
		{"", "upload.mzML"},
		{"..", "upload.mzML"},
	}
	for _, tt := range tests {
		if got := safeFilename(tt.in); got != tt.want {
			t.Errorf("safeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEICParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/runs/x/eic?mz=100.5&tol=0.05", nil)
	mz, tol, err := eicParams(r)
	if err != nil {
		t.Fatalf("eicParams: %v", err)
	}
	if mz != 100.5 || tol != 0.05 {
		t.Errorf("eicParams = (%v, %v), want (100.5, 0.05)", mz, tol)
	}

	bad := []string{
		"/api/runs/x/eic",
		"/api/runs/x/eic?mz=abc&tol=0.5",
		"/api/runs/x/eic?mz=-5&tol=0.5",
		"/api/runs/x/eic?mz=100&tol=-1",
		"/api/runs/x/eic?mz=100",
	}
	for _, url := range bad {
		r := httptest.NewRequest("GET", url, nil)
		if _, _, err := eicParams(r); err == nil {
			t.Errorf("eicParams(%q) did not fail", url)
		}
	}
}

func TestTopLimit(t *testing.T) {
	h := &APIHandler{cfg: &config.Config{DefaultTopPeaks: 10, MaxTopPeaks: 50}}

	tests := []struct {
		query string
		want  int
	}{
		{"", 10}, // default
		{"limit=25", 25},
		{"limit=500", 50}, // capped
		{"limit=0", 1},    // floor
		{"limit=abc", 10}, // unparseable falls back to the default
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/api/runs/x/peaks?"+tt.query, nil)
		if got := h.topLimit(r); got != tt.want {
			t.Errorf("topLimit(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{msdata.ErrNoSpectraData, 422},
		{msdata.ErrNoChromatogramData, 422},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		writeDomainError(w, tt.err)
		if w.Code != tt.wantStatus {
			t.Errorf("writeDomainError(%v) status = %d, want %d", tt.err, w.Code, tt.wantStatus)
		}
	}
}
