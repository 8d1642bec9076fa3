package msdata

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mzview/mzml"
)

func b64floats(t *testing.T, values []float64) string {
	t.Helper()
	var raw bytes.Buffer
	if err := binary.Write(&raw, binary.LittleEndian, values); err != nil {
		t.Fatalf("b64floats: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw.Bytes())
}

func mzMLDoc(t *testing.T, spectra []Spectrum) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="utf-8"?>
<mzML xmlns="http://psi.hupo.org/ms/mzml" version="1.1.0">
<run id="exp_test">
`)
	fmt.Fprintf(&sb, "<spectrumList count=\"%d\">\n", len(spectra))
	for i, s := range spectra {
		fmt.Fprintf(&sb, `<spectrum index="%d" id="scan=%d" defaultArrayLength="%d">
<scanList count="1">
<scan>
<cvParam accession="MS:1000016" name="scan start time" value="%g" unitAccession="UO:0000010"/>
</scan>
</scanList>
<binaryDataArrayList count="2">
<binaryDataArray>
<cvParam accession="MS:1000523" name="64-bit float"/>
<cvParam accession="MS:1000514" name="m/z array"/>
<binary>%s</binary>
</binaryDataArray>
<binaryDataArray>
<cvParam accession="MS:1000523" name="64-bit float"/>
<cvParam accession="MS:1000515" name="intensity array"/>
<binary>%s</binary>
</binaryDataArray>
</binaryDataArrayList>
</spectrum>
`, i, i+1, len(s.Mz), s.RetentionTime, b64floats(t, s.Mz), b64floats(t, s.Intensity))
	}
	sb.WriteString("</spectrumList>\n</run>\n</mzML>\n")
	return sb.String()
}

func TestFromReader(t *testing.T) {
	want := testExperiment()
	doc := mzMLDoc(t, want.Spectra)

	got, err := FromReader(strings.NewReader(doc), Limits{})
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	if got.RunID != "exp_test" {
		t.Errorf("RunID = %q, want %q", got.RunID, "exp_test")
	}
	if diff := cmp.Diff(want.Spectra, got.Spectra); diff != "" {
		t.Errorf("Spectra mismatch (-want +got):\n%s", diff)
	}
	if got.NumPeaks() != 6 {
		t.Errorf("NumPeaks = %d, want 6", got.NumPeaks())
	}
}

func TestFromReaderLimits(t *testing.T) {
	doc := mzMLDoc(t, testExperiment().Spectra)

	got, err := FromReader(strings.NewReader(doc), Limits{MaxSpectra: 2, MaxPeaksPerSpectrum: 2})
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	if len(got.Spectra) != 2 {
		t.Fatalf("len(Spectra) = %d, want 2", len(got.Spectra))
	}
	// Spectrum 0 had peaks (100:50, 100.03:30, 200:70); the two most
	// intense survive in their original order.
	if diff := cmp.Diff([]float64{100.0, 200.0}, got.Spectra[0].Mz); diff != "" {
		t.Errorf("capped m/z mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{50, 70}, got.Spectra[0].Intensity); diff != "" {
		t.Errorf("capped intensity mismatch (-want +got):\n%s", diff)
	}
}

func TestFromReaderBadInput(t *testing.T) {
	if _, err := FromReader(strings.NewReader("this is not XML at all <<<"), Limits{}); err == nil {
		t.Error("FromReader on garbage input did not fail")
	}

	// Valid XML without any mzML content is a parse failure too, so an
	// arbitrary XML upload never turns into an empty zero-spectra run.
	doc := `<?xml version="1.0" encoding="utf-8"?><html><body>hi</body></html>`
	if _, err := FromReader(strings.NewReader(doc), Limits{}); !errors.Is(err, mzml.ErrNoMzMLContent) {
		t.Errorf("FromReader on non-mzML XML error = %v, want mzml.ErrNoMzMLContent", err)
	}
}

func TestCapPeaks(t *testing.T) {
	peaks := []mzml.Peak{
		{Mz: 1, Intens: 10},
		{Mz: 2, Intens: 50},
		{Mz: 3, Intens: 5},
		{Mz: 4, Intens: 999},
		{Mz: 5, Intens: 20},
	}

	got := capPeaks(peaks, 3)
	want := []mzml.Peak{
		{Mz: 2, Intens: 50},
		{Mz: 4, Intens: 999},
		{Mz: 5, Intens: 20},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("capPeaks mismatch (-want +got):\n%s", diff)
	}

	// No-op when under the cap or when the cap is off.
	if got := capPeaks(peaks, 10); len(got) != 5 {
		t.Errorf("capPeaks(10) returned %d peaks, want 5", len(got))
	}
	if got := capPeaks(peaks, 0); len(got) != 5 {
		t.Errorf("capPeaks(0) returned %d peaks, want 5", len(got))
	}
}
