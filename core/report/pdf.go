// Package report renders chromatogram charts and the PDF/Excel report
// artifacts of the viewer.
package report

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"mzview/core/msdata"
)

const (
	// Report accent color (#2563EB).
	accentR, accentG, accentB = 37, 99, 235

	pageMargin   = 25.0  // mm
	contentWidth = 165.9 // letter width (215.9 mm) minus left and right margins
	logoMaxWidth = 50.0  // mm, about two inches
)

// Params carries everything one report needs. Sections whose data is
// missing are written as a short note instead of aborting the report.
type Params struct {
	Title       string
	SourceFile  string
	GeneratedAt time.Time
	TIC         []msdata.Point
	HasEIC      bool
	EIC         []msdata.Point
	TargetMz    float64
	Tolerance   float64
	Peaks       []msdata.PeakRow
	Logo        image.Image // optional
	Footer      string      // optional
}

// Renderer builds PDF reports. Whether chart images can be embedded is
// resolved once at construction; when they can't, reports degrade to
// text-only sections instead of failing outright.
type Renderer struct {
	chartOpts ChartOptions
	imagesOK  bool
}

// NewRenderer probes the chart pipeline once and remembers the result.
func NewRenderer(opts ChartOptions) *Renderer {
	r := &Renderer{chartOpts: opts}
	probe := []msdata.Point{
		{RetentionTime: 0, Intensity: 0},
		{RetentionTime: 1, Intensity: 1},
	}
	if _, err := RenderTIC(probe, ChartOptions{Width: 160, Height: 100}); err == nil {
		r.imagesOK = true
	}
	return r
}

// ImagesAvailable reports whether chart images will be embedded.
func (r *Renderer) ImagesAvailable() bool {
	return r.imagesOK
}

// Build assembles the PDF report.
func (r *Renderer) Build(p Params) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	r.header(pdf, p)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 6, fmt.Sprintf("File: %s", p.SourceFile), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", p.GeneratedAt.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	r.chartSection(pdf, "Total Ion Chromatogram", "tic", len(p.TIC) > 0, func() ([]byte, error) {
		return RenderTIC(p.TIC, r.chartOpts)
	})

	if p.HasEIC {
		heading := fmt.Sprintf("Extracted Ion Chromatogram (m/z %g ± %g)", p.TargetMz, p.Tolerance)
		r.chartSection(pdf, heading, "eic", len(p.EIC) > 0, func() ([]byte, error) {
			return RenderEIC(p.EIC, p.TargetMz, p.Tolerance, r.chartOpts)
		})
	}

	r.peakTable(pdf, p.Peaks)

	if p.HasEIC {
		pdf.SetFont("Helvetica", "", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 6, fmt.Sprintf("Extracted ion chromatogram generated for target mass %g ± %g m/z.", p.TargetMz, p.Tolerance), "", 1, "L", false, 0, "")
	}

	if p.Footer != "" {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, p.Footer, "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("assemble PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// header writes the logo/title banner. A logo that fails to encode is
// skipped in favor of a plain title.
func (r *Renderer) header(pdf *fpdf.Fpdf, p Params) {
	pdf.SetTextColor(accentR, accentG, accentB)
	pdf.SetFont("Helvetica", "B", 18)

	if p.Logo != nil {
		var imgBuf bytes.Buffer
		if err := png.Encode(&imgBuf, p.Logo); err == nil {
			pdf.RegisterImageOptionsReader("logo", fpdf.ImageOptions{ImageType: "PNG"}, &imgBuf)
			bounds := p.Logo.Bounds()
			w := logoMaxWidth
			if float64(bounds.Dx())/3.0 < w {
				// Small logos keep their natural print size (~3 px/mm).
				w = float64(bounds.Dx()) / 3.0
			}
			h := w * float64(bounds.Dy()) / float64(bounds.Dx())
			y := pdf.GetY()
			pdf.ImageOptions("logo", pageMargin, y, w, h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			pdf.SetXY(pageMargin+w, y)
			pdf.CellFormat(contentWidth-w, h, p.Title, "", 1, "RM", false, 0, "")
			pdf.SetY(y + h + 8)
			return
		}
	}

	pdf.CellFormat(0, 10, p.Title, "", 1, "C", false, 0, "")
	pdf.Ln(6)
}

func (r *Renderer) chartSection(pdf *fpdf.Fpdf, heading, name string, haveData bool, render func() ([]byte, error)) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(accentR, accentG, accentB)
	pdf.CellFormat(0, 8, heading, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	switch {
	case !haveData:
		pdf.CellFormat(0, 6, "No chromatogram data available for this section.", "", 1, "L", false, 0, "")
	case !r.imagesOK:
		pdf.CellFormat(0, 6, "Chart rendering unavailable; section included without image.", "", 1, "L", false, 0, "")
	default:
		img, err := render()
		if err != nil {
			pdf.CellFormat(0, 6, fmt.Sprintf("Could not render chart: %v", err), "", 1, "L", false, 0, "")
		} else {
			pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(img))
			pdf.ImageOptions(name, pageMargin, pdf.GetY(), contentWidth, 0, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		}
	}
	pdf.Ln(8)
}

func (r *Renderer) peakTable(pdf *fpdf.Fpdf, rows []msdata.PeakRow) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(accentR, accentG, accentB)
	pdf.CellFormat(0, 8, fmt.Sprintf("Top %d Mass Spectra Peaks", len(rows)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 6, "No mass spectra data available.", "", 1, "L", false, 0, "")
		pdf.Ln(8)
		return
	}

	colW := contentWidth / 3

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(accentR, accentG, accentB)
	pdf.SetTextColor(255, 255, 255)
	for _, h := range []string{"m/z", "Retention Time (s)", "Intensity"} {
		pdf.CellFormat(colW, 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(245, 245, 245)
	for _, row := range rows {
		pdf.CellFormat(colW, 7, strconv.FormatFloat(row.Mz, 'f', 4, 64), "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW, 7, strconv.FormatFloat(row.RetentionTime, 'f', 2, 64), "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW, 7, strconv.FormatFloat(row.Intensity, 'f', 1, 64), "1", 0, "C", true, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(8)
}
