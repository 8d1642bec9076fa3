// Package mzml reads the mzML mass-spectrometry interchange format.
//
// Only the parts of the format that the viewer needs are parsed: the
// spectrum list (retention times plus binary m/z and intensity arrays)
// and the chromatogram list (binary time and intensity arrays). All
// other sections are skipped by the XML decoder.
package mzml

import (
	"encoding/xml"
	"errors"
)

// File wraps the parsed contents of an mzML file.
type File struct {
	content mzMLContent
}

// Peak contains one m/z, intensity pair of a spectrum.
type Peak struct {
	Mz     float64
	Intens float64
}

// TimePoint contains one retention time (seconds), intensity pair of a
// chromatogram record.
type TimePoint struct {
	Time   float64
	Intens float64
}

type mzMLContent struct {
	XMLName xml.Name `xml:"http://psi.hupo.org/ms/mzml mzML"`
	Run     run      `xml:"run"`
}

type run struct {
	ID               string           `xml:"id,attr,omitempty"`
	StartTimeStamp   string           `xml:"startTimeStamp,attr,omitempty"`
	SpectrumList     spectrumList     `xml:"spectrumList,omitempty"`
	ChromatogramList chromatogramList `xml:"chromatogramList,omitempty"`
}

type spectrumList struct {
	Count    int        `xml:"count,attr,omitempty"`
	Spectrum []spectrum `xml:"spectrum,omitempty"`
}

type chromatogramList struct {
	Count        int            `xml:"count,attr,omitempty"`
	Chromatogram []chromatogram `xml:"chromatogram,omitempty"`
}

type spectrum struct {
	Index               int                 `xml:"index,attr"`
	ID                  string              `xml:"id,attr"`
	DefaultArrayLength  int64               `xml:"defaultArrayLength,attr"`
	CvPar               []CVParam           `xml:"cvParam,omitempty"`
	ScanList            scanList            `xml:"scanList"`
	BinaryDataArrayList binaryDataArrayList `xml:"binaryDataArrayList"`
}

type chromatogram struct {
	Index               int                 `xml:"index,attr"`
	ID                  string              `xml:"id,attr"`
	DefaultArrayLength  int64               `xml:"defaultArrayLength,attr"`
	CvPar               []CVParam           `xml:"cvParam,omitempty"`
	BinaryDataArrayList binaryDataArrayList `xml:"binaryDataArrayList"`
}

type scanList struct {
	Count int       `xml:"count,attr,omitempty"`
	CvPar []CVParam `xml:"cvParam,omitempty"`
	Scan  []scan    `xml:"scan"`
}

type scan struct {
	InstrConfRef string    `xml:"instrumentConfigurationRef,attr,omitempty"`
	CvPar        []CVParam `xml:"cvParam,omitempty"`
}

type binaryDataArrayList struct {
	Count           int               `xml:"count,attr,omitempty"`
	BinaryDataArray []binaryDataArray `xml:"binaryDataArray"`
}

type binaryDataArray struct {
	EncodedLength int       `xml:"encodedLength,attr,omitempty"`
	ArrayLength   int       `xml:"arrayLength,attr,omitempty"`
	CvPar         []CVParam `xml:"cvParam,omitempty"`
	Binary        string    `xml:"binary"`
}

// CVParam contains values and attributes of a mzML Controlled Vocabulary term
// (http://www.peptideatlas.org/tmp/mzML1.1.0.html)
type CVParam struct {
	Accession     string `xml:"accession,attr,omitempty"`
	Name          string `xml:"name,attr,omitempty"`
	Value         string `xml:"value,attr,omitempty"`
	UnitCvRef     string `xml:"unitCvRef,attr,omitempty"`
	UnitAccession string `xml:"unitAccession,attr,omitempty"`
	UnitName      string `xml:"unitName,attr,omitempty"`
}

var (
	// ErrInvalidSpectrumIndex means an invalid spectrum index was supplied
	ErrInvalidSpectrumIndex = errors.New("mzml: invalid spectrum index")
	// ErrInvalidChromatogramIndex means an invalid chromatogram index was supplied
	ErrInvalidChromatogramIndex = errors.New("mzml: invalid chromatogram index")
	// ErrUnsupportedCompression means the binary data uses a compression
	// scheme (MS-Numpress) that this reader does not handle
	ErrUnsupportedCompression = errors.New("mzml: unsupported binary data compression")
	// ErrNoMzMLContent means the input was readable XML but contained
	// no mzML element
	ErrNoMzMLContent = errors.New("mzml: no mzML content found")
)
