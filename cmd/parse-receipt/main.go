// parse-receipt runs the parsing pipeline on a single file and prints the
// result as JSON. Useful for tuning extraction patterns against real
// receipts without a running server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/reisekosten/reisekosten/internal/common"
	"github.com/reisekosten/reisekosten/internal/extract"
	"github.com/reisekosten/reisekosten/internal/ocr"
	"github.com/reisekosten/reisekosten/internal/parser"
)

func main() {
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-v] <receipt file>\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}
	path := flag.Arg(0)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)
	svc := parser.NewService(extract.NewOCRAdapter(extractor), logger)

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	result := svc.ParseReceiptFile(context.Background(), path, mimeType)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if result.Failed() {
		os.Exit(1)
	}
}
