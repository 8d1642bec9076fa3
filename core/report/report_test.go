package report

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"mzview/core/msdata"
)

func testTIC() []msdata.Point {
	return []msdata.Point{
		{RetentionTime: 1.0, Intensity: 150},
		{RetentionTime: 2.0, Intensity: 60},
		{RetentionTime: 3.0, Intensity: 60},
	}
}

func testPeaks() []msdata.PeakRow {
	return []msdata.PeakRow{
		{Mz: 200.0, RetentionTime: 1.0, Intensity: 70},
		{Mz: 300.0, RetentionTime: 3.0, Intensity: 60},
		{Mz: 100.0, RetentionTime: 1.0, Intensity: 50},
	}
}

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderTIC(t *testing.T) {
	img, err := RenderTIC(testTIC(), ChartOptions{})
	if err != nil {
		t.Fatalf("RenderTIC: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Error("RenderTIC output is not a PNG")
	}
}

func TestRenderEICWithMarkers(t *testing.T) {
	points := []msdata.Point{
		{RetentionTime: 1.0, Intensity: 80},
		{RetentionTime: 2.0, Intensity: 20},
		{RetentionTime: 3.0, Intensity: 0},
	}
	img, err := RenderEIC(points, 100.0, 0.05, ChartOptions{Width: 400, Height: 300, ShowPoints: true})
	if err != nil {
		t.Fatalf("RenderEIC: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Error("RenderEIC output is not a PNG")
	}
}

func TestRenderNotEnoughPoints(t *testing.T) {
	if _, err := RenderTIC(nil, ChartOptions{}); !errors.Is(err, ErrNotEnoughPoints) {
		t.Errorf("RenderTIC(nil) error = %v, want ErrNotEnoughPoints", err)
	}
	one := []msdata.Point{{RetentionTime: 1, Intensity: 1}}
	if _, err := RenderTIC(one, ChartOptions{}); !errors.Is(err, ErrNotEnoughPoints) {
		t.Errorf("RenderTIC(one point) error = %v, want ErrNotEnoughPoints", err)
	}
}

func TestPeakTableXLSX(t *testing.T) {
	data, err := PeakTableXLSX(testPeaks())
	if err != nil {
		t.Fatalf("PeakTableXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Peaks")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("workbook has %d rows, want 4 (header + 3 peaks)", len(rows))
	}
	if rows[0][0] != "m/z" || rows[0][1] != "Retention Time (s)" || rows[0][2] != "Intensity" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][0] != "200" {
		t.Errorf("first data cell = %q, want %q", rows[1][0], "200")
	}
}

func TestPeakTableXLSXEmpty(t *testing.T) {
	data, err := PeakTableXLSX(nil)
	if err != nil {
		t.Fatalf("PeakTableXLSX(nil): %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Peaks")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("empty workbook has %d rows, want header only", len(rows))
	}
}

func testLogo(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 37, G: 99, B: 235, A: 255})
		}
	}
	return img
}

func TestPrepareLogo(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testLogo(100, 50)); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	logo, err := PrepareLogo(bytes.NewReader(buf.Bytes()), 50)
	if err != nil {
		t.Fatalf("PrepareLogo: %v", err)
	}
	if b := logo.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("scaled logo is %dx%d, want 50x25", b.Dx(), b.Dy())
	}

	// Already small enough: passes through at its original size.
	logo, err = PrepareLogo(bytes.NewReader(buf.Bytes()), 200)
	if err != nil {
		t.Fatalf("PrepareLogo: %v", err)
	}
	if b := logo.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("pass-through logo is %dx%d, want 100x50", b.Dx(), b.Dy())
	}
}

func TestPrepareLogoBadData(t *testing.T) {
	if _, err := PrepareLogo(bytes.NewReader([]byte("not an image")), 50); err == nil {
		t.Error("PrepareLogo on garbage did not fail")
	}
}

var pdfMagic = []byte("%PDF")

func TestBuildReport(t *testing.T) {
	r := NewRenderer(ChartOptions{Width: 400, Height: 300})
	params := Params{
		Title:       "Test Report",
		SourceFile:  "sample.mzML",
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		TIC:         testTIC(),
		HasEIC:      true,
		EIC: []msdata.Point{
			{RetentionTime: 1.0, Intensity: 80},
			{RetentionTime: 2.0, Intensity: 20},
			{RetentionTime: 3.0, Intensity: 0},
		},
		TargetMz:  100.0,
		Tolerance: 0.05,
		Peaks:     testPeaks(),
		Logo:      testLogo(60, 30),
		Footer:    "Generated by mzview",
	}

	pdfBytes, err := r.Build(params)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !bytes.HasPrefix(pdfBytes, pdfMagic) {
		t.Error("Build output is not a PDF")
	}
}

func TestBuildReportMinimal(t *testing.T) {
	// No TIC, no EIC, no peaks, no logo: the report still builds, with
	// the missing sections written as notes.
	r := NewRenderer(ChartOptions{})
	pdfBytes, err := r.Build(Params{
		Title:       "Empty Report",
		SourceFile:  "empty.mzML",
		GeneratedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !bytes.HasPrefix(pdfBytes, pdfMagic) {
		t.Error("Build output is not a PDF")
	}
}
