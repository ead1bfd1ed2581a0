package extract

import (
	"context"

	"github.com/reisekosten/reisekosten/internal/ocr"
)

// OCRAdapter plugs the exec-based OCR extractor in as the text acquisition
// stage of the parsing pipeline.
type OCRAdapter struct {
	e *ocr.Extractor
}

func NewOCRAdapter(e *ocr.Extractor) *OCRAdapter {
	return &OCRAdapter{e: e}
}

func (a *OCRAdapter) ExtractText(ctx context.Context, filePath, mimeType string) (string, error) {
	res, err := a.e.Extract(ctx, filePath, mimeType)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
