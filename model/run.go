package model

import "time"

// Run represents one uploaded mzML acquisition.
type Run struct {
	ID                string    `json:"id"`
	Filename          string    `json:"filename"`
	SizeBytes         int64     `json:"sizeBytes"`
	SpectrumCount     int       `json:"spectrumCount"`
	ChromatogramCount int       `json:"chromatogramCount"`
	PeakCount         int       `json:"peakCount"`
	ObjectPath        string    `json:"-"` // MinIO object key of the raw file, not exposed in the API
	CreatedAt         time.Time `json:"createdAt"`
}

// Report represents one generated PDF report for a run.
type Report struct {
	ID         string    `json:"id"`
	RunID      string    `json:"runId"`
	Title      string    `json:"title"`
	TargetMz   float64   `json:"targetMz"`
	Tolerance  float64   `json:"tolerance"`
	TopPeaks   int       `json:"topPeaks"`
	ObjectPath string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}
