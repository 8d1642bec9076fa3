package msdata

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testExperiment is three scans at 1, 2 and 3 seconds with small peak
// lists around m/z 100 so extraction windows have something to catch.
func testExperiment() *Experiment {
	return &Experiment{
		RunID: "fixture",
		Spectra: []Spectrum{
			{RetentionTime: 1.0, Mz: []float64{100.0, 100.03, 200.0}, Intensity: []float64{50, 30, 70}},
			{RetentionTime: 2.0, Mz: []float64{99.97, 150.0}, Intensity: []float64{20, 40}},
			{RetentionTime: 3.0, Mz: []float64{300.0}, Intensity: []float64{60}},
		},
	}
}

func TestTICFromChromatogramRecord(t *testing.T) {
	exp := testExperiment()
	record := []Point{
		{RetentionTime: 0.9, Intensity: 151},
		{RetentionTime: 2.1, Intensity: 59},
	}
	exp.Chromatograms = [][]Point{record}

	got, err := exp.TIC()
	if err != nil {
		t.Fatalf("TIC: %v", err)
	}
	if diff := cmp.Diff(record, got); diff != "" {
		t.Errorf("TIC mismatch (-want +got):\n%s", diff)
	}

	// The returned slice is a copy, not an alias of the record.
	got[0].Intensity = 0
	if exp.Chromatograms[0][0].Intensity != 151 {
		t.Error("TIC result aliases the stored chromatogram record")
	}
}

func TestTICDerivedFromSpectra(t *testing.T) {
	exp := testExperiment()
	got, err := exp.TIC()
	if err != nil {
		t.Fatalf("TIC: %v", err)
	}
	want := []Point{
		{RetentionTime: 1.0, Intensity: 150},
		{RetentionTime: 2.0, Intensity: 60},
		{RetentionTime: 3.0, Intensity: 60},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TIC mismatch (-want +got):\n%s", diff)
	}
}

func TestTICEmptyRecordFallsBackToSpectra(t *testing.T) {
	exp := testExperiment()
	exp.Chromatograms = [][]Point{{}}
	got, err := exp.TIC()
	if err != nil {
		t.Fatalf("TIC: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len(TIC) = %d, want 3", len(got))
	}
}

func TestTICNoData(t *testing.T) {
	exp := &Experiment{}
	if _, err := exp.TIC(); !errors.Is(err, ErrNoChromatogramData) {
		t.Errorf("TIC error = %v, want ErrNoChromatogramData", err)
	}
}

func TestEIC(t *testing.T) {
	exp := testExperiment()
	got := exp.EIC(100.0, 0.05)
	want := []Point{
		{RetentionTime: 1.0, Intensity: 80},
		{RetentionTime: 2.0, Intensity: 20},
		{RetentionTime: 3.0, Intensity: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EIC mismatch (-want +got):\n%s", diff)
	}

	// Extraction does not modify the experiment; a second call gives
	// the same answer.
	if diff := cmp.Diff(want, exp.EIC(100.0, 0.05)); diff != "" {
		t.Errorf("second EIC differs (-want +got):\n%s", diff)
	}
}

func TestEICDensePolicy(t *testing.T) {
	// Three scans: two peaks near m/z 100 at 1 s, one at 2 s, and one
	// far away at 3 s. The window 100.0 ± 0.05 catches 100.05 (the
	// float64 difference is 0.04999999999999716, inside the inclusive
	// boundary) and the 3 s scan still appears, as a zero point.
	exp := &Experiment{Spectra: []Spectrum{
		{RetentionTime: 1.0, Mz: []float64{100.0, 100.05}, Intensity: []float64{50, 30}},
		{RetentionTime: 2.0, Mz: []float64{100.02}, Intensity: []float64{20}},
		{RetentionTime: 3.0, Mz: []float64{200.0}, Intensity: []float64{999}},
	}}
	got := exp.EIC(100.0, 0.05)
	want := []Point{
		{RetentionTime: 1.0, Intensity: 80},
		{RetentionTime: 2.0, Intensity: 20},
		{RetentionTime: 3.0, Intensity: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EIC mismatch (-want +got):\n%s", diff)
	}
}

func TestEICBoundaryInclusive(t *testing.T) {
	// 100.5 - 100.0 is exactly representable, so the boundary check is
	// not clouded by rounding.
	exp := &Experiment{Spectra: []Spectrum{
		{RetentionTime: 1.0, Mz: []float64{100.5}, Intensity: []float64{10}},
	}}

	if got := exp.EIC(100.0, 0.5); got[0].Intensity != 10 {
		t.Errorf("peak exactly at target+tolerance not matched: intensity = %v, want 10", got[0].Intensity)
	}
	if got := exp.EIC(100.0, 0.25); got[0].Intensity != 0 {
		t.Errorf("peak beyond tolerance matched: intensity = %v, want 0", got[0].Intensity)
	}
	if got := exp.EIC(101.0, 0.5); got[0].Intensity != 10 {
		t.Errorf("peak exactly at target-tolerance not matched: intensity = %v, want 10", got[0].Intensity)
	}
}

func TestEICZeroTolerance(t *testing.T) {
	exp := &Experiment{Spectra: []Spectrum{
		{RetentionTime: 1.0, Mz: []float64{100.0, 100.03}, Intensity: []float64{5, 7}},
	}}
	got := exp.EIC(100.0, 0)
	if got[0].Intensity != 5 {
		t.Errorf("zero tolerance intensity = %v, want 5 (exact match only)", got[0].Intensity)
	}
}

func TestEICEmptyExperiment(t *testing.T) {
	exp := &Experiment{}
	got := exp.EIC(100.0, 0.5)
	if len(got) != 0 {
		t.Errorf("EIC on empty experiment has %d points, want 0", len(got))
	}
}

func TestPeakTable(t *testing.T) {
	exp := testExperiment()
	got, err := exp.PeakTable()
	if err != nil {
		t.Fatalf("PeakTable: %v", err)
	}
	want := []PeakRow{
		{Mz: 100.0, RetentionTime: 1.0, Intensity: 50},
		{Mz: 100.03, RetentionTime: 1.0, Intensity: 30},
		{Mz: 200.0, RetentionTime: 1.0, Intensity: 70},
		{Mz: 99.97, RetentionTime: 2.0, Intensity: 20},
		{Mz: 150.0, RetentionTime: 2.0, Intensity: 40},
		{Mz: 300.0, RetentionTime: 3.0, Intensity: 60},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PeakTable mismatch (-want +got):\n%s", diff)
	}
}

func TestPeakTableNoSpectra(t *testing.T) {
	exp := &Experiment{}
	if _, err := exp.PeakTable(); !errors.Is(err, ErrNoSpectraData) {
		t.Errorf("PeakTable error = %v, want ErrNoSpectraData", err)
	}
}

func TestTopN(t *testing.T) {
	rows := []PeakRow{
		{Mz: 1, Intensity: 10},
		{Mz: 2, Intensity: 50},
		{Mz: 3, Intensity: 5},
		{Mz: 4, Intensity: 999},
		{Mz: 5, Intensity: 20},
	}

	got := TopN(rows, 3)
	want := []PeakRow{
		{Mz: 4, Intensity: 999},
		{Mz: 2, Intensity: 50},
		{Mz: 5, Intensity: 20},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TopN(3) mismatch (-want +got):\n%s", diff)
	}

	// The input order is untouched.
	if rows[0].Mz != 1 || rows[4].Mz != 5 {
		t.Error("TopN modified its input")
	}

	if got := TopN(rows, 100); len(got) != len(rows) {
		t.Errorf("TopN(100) returned %d rows, want %d", len(got), len(rows))
	}
	if got := TopN(rows, 0); len(got) != 0 {
		t.Errorf("TopN(0) returned %d rows, want 0", len(got))
	}
}

func TestTopNStableTies(t *testing.T) {
	rows := []PeakRow{
		{Mz: 10, Intensity: 7},
		{Mz: 20, Intensity: 7},
		{Mz: 30, Intensity: 7},
	}
	got := TopN(rows, 3)
	for i, row := range got {
		if row.Mz != rows[i].Mz {
			t.Fatalf("tied rows reordered: position %d has m/z %v, want %v", i, row.Mz, rows[i].Mz)
		}
	}
}
