package extract

import "context"

// TextExtractor turns a stored receipt file into raw text. Implementations
// decide the acquisition strategy (embedded PDF text, OCR, ...) from the path
// and the declared MIME type.
//
// An empty string with a nil error is a valid outcome for an unreadable but
// well-formed file; callers must treat it as "nothing recovered", not as a
// failure.
type TextExtractor interface {
	ExtractText(ctx context.Context, filePath, mimeType string) (string, error)
}
