package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reisekosten/reisekosten/constants"
)

// fakeRunner answers per binary name; unmatched commands fail.
type fakeRunner struct {
	stdout map[string][]byte
	errs   map[string]error
	calls  []string
}

func (f *fakeRunner) Run(_ context.Context, name string, _ ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name)
	if err, ok := f.errs[name]; ok {
		return nil, []byte("stub failure"), err
	}
	return f.stdout[name], nil, nil
}

func TestExtractPDFWithTextLayer(t *testing.T) {
	runner := &fakeRunner{stdout: map[string][]byte{
		"pdftotext": []byte("HOTEL BERLIN\nGesamt: 101,51\n"),
	}}
	e := NewExtractorWithRunner(Config{}, runner, nil)

	res, err := e.Extract(context.Background(), "/tmp/r.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, constants.PDF, res.SourceType)
	assert.Contains(t, res.Text, "Gesamt: 101,51")
	assert.Equal(t, []string{"pdftotext"}, runner.calls)
}

func TestExtractPDFFallsBackToOCROnBlankTextLayer(t *testing.T) {
	// Scanned PDFs yield a whitespace-only text layer; pdftoppm must run,
	// and with no rendered pages the extractor reports the failure.
	runner := &fakeRunner{stdout: map[string][]byte{
		"pdftotext": []byte("   \n\n"),
	}}
	e := NewExtractorWithRunner(Config{}, runner, nil)

	_, err := e.Extract(context.Background(), "/tmp/scan.pdf", "application/pdf")
	require.Error(t, err)
	assert.Equal(t, []string{"pdftotext", "pdftoppm"}, runner.calls)
}

func TestExtractImage(t *testing.T) {
	runner := &fakeRunner{stdout: map[string][]byte{
		"tesseract": []byte("Taxi Quittung\r\n24,50\t EUR\n\n\n\nDanke"),
	}}
	e := NewExtractorWithRunner(Config{TesseractLang: "deu"}, runner, nil)

	res, err := e.Extract(context.Background(), "/tmp/r.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "image-ocr", res.Method)
	assert.Equal(t, constants.IMAGE, res.SourceType)
	assert.Equal(t, "deu", res.Language)
	assert.Equal(t, "Taxi Quittung\n24,50 EUR\n\nDanke", res.Text)
}

func TestExtractImageTesseractError(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"tesseract": errors.New("exit status 1")}}
	e := NewExtractorWithRunner(Config{}, runner, nil)

	_, err := e.Extract(context.Background(), "/tmp/r.png", "image/png")
	assert.Error(t, err)
}

func TestExtractUnsupportedType(t *testing.T) {
	e := NewExtractorWithRunner(Config{}, &fakeRunner{}, nil)
	_, err := e.Extract(context.Background(), "/tmp/r.docx", "application/msword")
	assert.Error(t, err)
}

func TestExtractFallsBackToExtensionWithoutMIME(t *testing.T) {
	runner := &fakeRunner{stdout: map[string][]byte{
		"pdftotext": []byte("Rechnung"),
	}}
	e := NewExtractorWithRunner(Config{}, runner, nil)

	res, err := e.Extract(context.Background(), "/tmp/r.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, "pdf-text", res.Method)
}

func TestNormalize(t *testing.T) {
	in := "A  B\r\nC\t\tD\n\n\n\nE   \nF"
	out := Normalize(in)
	assert.Equal(t, "A B\nC D\n\nE\nF", out)
}
