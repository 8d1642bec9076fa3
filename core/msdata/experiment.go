// Package msdata holds the in-memory experiment model derived from an
// mzML file, and the chromatogram and peak-table views computed from it.
package msdata

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"mzview/mzml"
)

var (
	// ErrNoSpectraData means the experiment contains no spectra.
	ErrNoSpectraData = errors.New("msdata: no spectra in experiment")
	// ErrNoChromatogramData means neither a chromatogram record nor
	// spectra to derive one from are present.
	ErrNoChromatogramData = errors.New("msdata: no chromatogram data in experiment")
)

// Spectrum is one scan: a retention time with parallel m/z and
// intensity arrays of equal length.
type Spectrum struct {
	RetentionTime float64   `json:"retentionTime"`
	Mz            []float64 `json:"mz"`
	Intensity     []float64 `json:"intensity"`
}

// Point is one (retention time, intensity) pair of a chromatogram.
type Point struct {
	RetentionTime float64 `json:"rt"`
	Intensity     float64 `json:"intensity"`
}

// PeakRow is one flattened (m/z, retention time, intensity) triple of
// the peak table. Duplicate (m/z, rt) pairs are expected and kept.
type PeakRow struct {
	Mz            float64 `json:"mz"`
	RetentionTime float64 `json:"rt"`
	Intensity     float64 `json:"intensity"`
}

// Experiment is the immutable in-memory form of one mzML run. All
// derived views (TIC, EIC, peak table) are computed fresh from it.
type Experiment struct {
	RunID         string     `json:"runId"`
	Spectra       []Spectrum `json:"spectra"`
	Chromatograms [][]Point  `json:"chromatograms"`
}

// Limits caps how much of a file is loaded. Zero means unlimited.
type Limits struct {
	MaxSpectra          int
	MaxPeaksPerSpectrum int
}

// FromReader parses an mzML stream into an Experiment.
func FromReader(r io.Reader, lim Limits) (*Experiment, error) {
	f, err := mzml.Read(r)
	if err != nil {
		return nil, fmt.Errorf("parse mzML: %w", err)
	}
	return fromFile(&f, lim)
}

func fromFile(f *mzml.File, lim Limits) (*Experiment, error) {
	numSpectra := f.NumSpectra()
	if lim.MaxSpectra > 0 && numSpectra > lim.MaxSpectra {
		numSpectra = lim.MaxSpectra
	}

	exp := &Experiment{
		RunID:   f.RunID(),
		Spectra: make([]Spectrum, 0, numSpectra),
	}

	for i := 0; i < numSpectra; i++ {
		rt, err := f.RetentionTime(i)
		if err != nil {
			return nil, fmt.Errorf("spectrum %d retention time: %w", i, err)
		}
		peaks, err := f.Peaks(i)
		if err != nil {
			return nil, fmt.Errorf("spectrum %d peaks: %w", i, err)
		}
		peaks = capPeaks(peaks, lim.MaxPeaksPerSpectrum)

		spec := Spectrum{
			RetentionTime: rt,
			Mz:            make([]float64, len(peaks)),
			Intensity:     make([]float64, len(peaks)),
		}
		for j, p := range peaks {
			spec.Mz[j] = p.Mz
			spec.Intensity[j] = p.Intens
		}
		exp.Spectra = append(exp.Spectra, spec)
	}

	for i := 0; i < f.NumChromatograms(); i++ {
		points, err := f.Chromatogram(i)
		if err != nil {
			return nil, fmt.Errorf("chromatogram %d: %w", i, err)
		}
		chrom := make([]Point, len(points))
		for j, p := range points {
			chrom[j] = Point{RetentionTime: p.Time, Intensity: p.Intens}
		}
		exp.Chromatograms = append(exp.Chromatograms, chrom)
	}

	return exp, nil
}

// capPeaks keeps the max most intense peaks of a spectrum, preserving
// the original array order of the survivors.
func capPeaks(peaks []mzml.Peak, max int) []mzml.Peak {
	if max <= 0 || len(peaks) <= max {
		return peaks
	}
	idx := make([]int, len(peaks))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return peaks[idx[a]].Intens > peaks[idx[b]].Intens
	})
	keep := idx[:max]
	sort.Ints(keep)
	capped := make([]mzml.Peak, max)
	for i, j := range keep {
		capped[i] = peaks[j]
	}
	return capped
}

// NumPeaks returns the total number of peaks across all spectra.
func (e *Experiment) NumPeaks() int {
	n := 0
	for i := range e.Spectra {
		n += len(e.Spectra[i].Mz)
	}
	return n
}
