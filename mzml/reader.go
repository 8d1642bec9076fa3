package mzml

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"io"
	"math"
	"strconv"

	"golang.org/x/net/html/charset"
)

// Read reads an mzML file from an io.Reader.
func Read(reader io.Reader) (File, error) {
	var f File

	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	// We are only interested in the mzML element, so skip over the
	// indexedmzML wrapper and anything else around it.
	found := false
	for {
		t, tokenErr := d.Token()
		if tokenErr != nil {
			if tokenErr == io.EOF {
				break
			}
			return f, tokenErr
		}
		switch t := t.(type) {
		case xml.StartElement:
			if t.Name.Local == "mzML" {
				if err := d.DecodeElement(&f.content, &t); err != nil {
					return f, err
				}
				found = true
			}
		}
	}
	if !found {
		return f, ErrNoMzMLContent
	}
	return f, nil
}

// arrayKind tells what a binaryDataArray holds, per its CV terms.
type arrayKind int

const (
	arrayUnknown arrayKind = iota
	arrayMz
	arrayIntensity
	arrayTime
)

// binaryAttrs holds the decoded CV terms of a binaryDataArray.
//
// CV terms for binary data compression:
// MS:1000574 zlib compression
// MS:1000576 no compression
// MS:1002312..MS:1002314, MS:1002746..MS:1002748 MS-Numpress variants
//
// CV terms for binary data array types:
// MS:1000514 m/z array
// MS:1000515 intensity array
// MS:1000595 time array
//
// CV terms for the binary data type:
// MS:1000521 32-bit float
// MS:1000523 64-bit float
type binaryAttrs struct {
	zlibCompressed bool
	bits64         bool
	kind           arrayKind
	timeInMinutes  bool
}

func binaryDataAttrs(b *binaryDataArray) (binaryAttrs, error) {
	var attrs binaryAttrs
	for _, cvParam := range b.CvPar {
		switch cvParam.Accession {
		case `MS:1000574`:
			attrs.zlibCompressed = true
		case `MS:1000523`:
			attrs.bits64 = true
		case `MS:1000514`:
			attrs.kind = arrayMz
		case `MS:1000515`:
			attrs.kind = arrayIntensity
		case `MS:1000595`:
			attrs.kind = arrayTime
			// UO:0000031 is minute, MS:1000038 the deprecated equivalent.
			if cvParam.UnitAccession == "UO:0000031" ||
				cvParam.UnitAccession == "MS:1000038" {
				attrs.timeInMinutes = true
			}
		case `MS:1002312`, `MS:1002313`, `MS:1002314`,
			`MS:1002746`, `MS:1002747`, `MS:1002748`:
			return attrs, ErrUnsupportedCompression
		}
	}
	return attrs, nil
}

// decodeBinary decodes one binaryDataArray into float64 values.
func decodeBinary(b *binaryDataArray, attrs binaryAttrs) ([]float64, error) {
	data, err := base64.StdEncoding.DecodeString(b.Binary)
	if err != nil {
		return nil, err
	}
	if attrs.zlibCompressed {
		z, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer z.Close()
		d, err := io.ReadAll(z)
		if err != nil {
			return nil, err
		}
		data = d
	}

	var values []float64
	if attrs.bits64 {
		cnt := len(data) / 8
		values = make([]float64, cnt)
		for i := 0; i < cnt; i++ {
			bits := binary.LittleEndian.Uint64(data[i*8:])
			values[i] = math.Float64frombits(bits)
		}
	} else {
		cnt := len(data) / 4
		values = make([]float64, cnt)
		for i := 0; i < cnt; i++ {
			bits := binary.LittleEndian.Uint32(data[i*4:])
			values[i] = float64(math.Float32frombits(bits))
		}
	}
	return values, nil
}

// decodeArrayList decodes all binaryDataArrays of a list, keyed by array kind.
func decodeArrayList(list *binaryDataArrayList) (map[arrayKind][]float64, binaryAttrs, error) {
	arrays := make(map[arrayKind][]float64)
	var timeAttrs binaryAttrs
	for i := range list.BinaryDataArray {
		b := &list.BinaryDataArray[i]
		attrs, err := binaryDataAttrs(b)
		if err != nil {
			return nil, timeAttrs, err
		}
		if attrs.kind == arrayUnknown {
			continue
		}
		values, err := decodeBinary(b, attrs)
		if err != nil {
			return nil, timeAttrs, err
		}
		arrays[attrs.kind] = values
		if attrs.kind == arrayTime {
			timeAttrs = attrs
		}
	}
	return arrays, timeAttrs, nil
}

// NumSpectra returns the number of spectra.
func (f *File) NumSpectra() int {
	return len(f.content.Run.SpectrumList.Spectrum)
}

// NumChromatograms returns the number of chromatogram records.
func (f *File) NumChromatograms() int {
	return len(f.content.Run.ChromatogramList.Chromatogram)
}

// RunID returns the id attribute of the run, usually the acquisition name.
func (f *File) RunID() string {
	return f.content.Run.ID
}

// RetentionTime returns the retention time of a spectrum in seconds,
// or -1 if the spectrum has none.
func (f *File) RetentionTime(index int) (float64, error) {
	if index < 0 || index >= f.NumSpectra() {
		return 0.0, ErrInvalidSpectrumIndex
	}
	for _, scan := range f.content.Run.SpectrumList.Spectrum[index].ScanList.Scan {
		for _, cvParam := range scan.CvPar {
			if cvParam.Accession == "MS:1000016" {
				retentionTime, err := strconv.ParseFloat(cvParam.Value, 64)
				// Convert to seconds if the value is in minutes.
				if cvParam.UnitAccession == "UO:0000031" ||
					cvParam.UnitAccession == "MS:1000038" {
					retentionTime *= 60
				}
				return retentionTime, err
			}
		}
	}
	return -1.0, nil
}

// MSLevel returns the MS level of a spectrum.
func (f *File) MSLevel(index int) (int, error) {
	if index < 0 || index >= f.NumSpectra() {
		return 0, ErrInvalidSpectrumIndex
	}
	for _, cvParam := range f.content.Run.SpectrumList.Spectrum[index].CvPar {
		if cvParam.Accession == "MS:1000511" {
			msLevel, err := strconv.ParseInt(cvParam.Value, 10, 64)
			return int(msLevel), err
		}
	}
	return 1, nil // If nothing else, guess it's MS1
}

// Centroid returns true if the spectrum contains centroided peaks.
func (f *File) Centroid(index int) (bool, error) {
	if index < 0 || index >= f.NumSpectra() {
		return false, ErrInvalidSpectrumIndex
	}
	for _, cvParam := range f.content.Run.SpectrumList.Spectrum[index].CvPar {
		if cvParam.Accession == "MS:1000127" {
			return true, nil
		}
	}
	return false, nil
}

// Peaks returns the decoded peaks of a spectrum. The m/z and intensity
// arrays are zipped together; if their lengths disagree the shorter one
// wins.
func (f *File) Peaks(index int) ([]Peak, error) {
	if index < 0 || index >= f.NumSpectra() {
		return nil, ErrInvalidSpectrumIndex
	}
	arrays, _, err := decodeArrayList(&f.content.Run.SpectrumList.Spectrum[index].BinaryDataArrayList)
	if err != nil {
		return nil, err
	}
	mz := arrays[arrayMz]
	intens := arrays[arrayIntensity]
	n := len(mz)
	if len(intens) < n {
		n = len(intens)
	}
	peaks := make([]Peak, n)
	for i := 0; i < n; i++ {
		peaks[i] = Peak{Mz: mz[i], Intens: intens[i]}
	}
	return peaks, nil
}

// Chromatogram returns the decoded time/intensity points of a
// chromatogram record, with times in seconds.
func (f *File) Chromatogram(index int) ([]TimePoint, error) {
	if index < 0 || index >= f.NumChromatograms() {
		return nil, ErrInvalidChromatogramIndex
	}
	arrays, timeAttrs, err := decodeArrayList(&f.content.Run.ChromatogramList.Chromatogram[index].BinaryDataArrayList)
	if err != nil {
		return nil, err
	}
	times := arrays[arrayTime]
	intens := arrays[arrayIntensity]
	n := len(times)
	if len(intens) < n {
		n = len(intens)
	}
	points := make([]TimePoint, n)
	for i := 0; i < n; i++ {
		t := times[i]
		if timeAttrs.timeInMinutes {
			t *= 60
		}
		points[i] = TimePoint{Time: t, Intens: intens[i]}
	}
	return points, nil
}
