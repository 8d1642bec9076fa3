package msdata

import (
	"math"
	"sort"
)

// TIC returns the total-ion chromatogram. If the file carried a
// chromatogram record, the first record is returned as-is; otherwise
// one point per spectrum is derived by summing its intensity array.
// The output is always 1:1 with the input granularity.
func (e *Experiment) TIC() ([]Point, error) {
	if len(e.Chromatograms) > 0 && len(e.Chromatograms[0]) > 0 {
		points := make([]Point, len(e.Chromatograms[0]))
		copy(points, e.Chromatograms[0])
		return points, nil
	}

	if len(e.Spectra) == 0 {
		return nil, ErrNoChromatogramData
	}

	points := make([]Point, len(e.Spectra))
	for i := range e.Spectra {
		sum := 0.0
		for _, intens := range e.Spectra[i].Intensity {
			sum += intens
		}
		points[i] = Point{RetentionTime: e.Spectra[i].RetentionTime, Intensity: sum}
	}
	return points, nil
}

// PeakTable flattens every (retention time, m/z, intensity) triple
// across all spectra into one table, in spectrum order. No
// deduplication and no sorting happen here.
func (e *Experiment) PeakTable() ([]PeakRow, error) {
	if len(e.Spectra) == 0 {
		return nil, ErrNoSpectraData
	}
	rows := make([]PeakRow, 0, e.NumPeaks())
	for i := range e.Spectra {
		spec := &e.Spectra[i]
		for j := range spec.Mz {
			rows = append(rows, PeakRow{
				Mz:            spec.Mz[j],
				RetentionTime: spec.RetentionTime,
				Intensity:     spec.Intensity[j],
			})
		}
	}
	return rows, nil
}

// EIC extracts an ion chromatogram for targetMz with the given
// tolerance. A peak matches iff |mz - targetMz| <= tolerance, boundary
// inclusive on both sides. The output is dense: one point per
// spectrum in retention-time order, with intensity 0 where nothing
// matched, so the series stays aligned with the TIC for overlay
// plotting. An experiment without spectra yields an empty series, not
// an error; "no matches anywhere" yields an all-zero series.
//
// With tolerance 0 the predicate degenerates to floating-point
// equality, which only matches values that are bit-identical to the
// target.
func (e *Experiment) EIC(targetMz, tolerance float64) []Point {
	points := make([]Point, 0, len(e.Spectra))
	for i := range e.Spectra {
		spec := &e.Spectra[i]
		sum := 0.0
		for j, mz := range spec.Mz {
			if math.Abs(mz-targetMz) <= tolerance {
				sum += spec.Intensity[j]
			}
		}
		points = append(points, Point{RetentionTime: spec.RetentionTime, Intensity: sum})
	}
	return points
}

// TopN returns the n rows with the highest intensity, most intense
// first. Ties keep the original row order. The input is not modified.
func TopN(rows []PeakRow, n int) []PeakRow {
	if n <= 0 {
		return []PeakRow{}
	}
	sorted := make([]PeakRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Intensity > sorted[j].Intensity
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
