package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/zombor/academic-ocr/internal/extraction"
)

var (
	// ErrNoFiles is returned when the upload directory has nothing to process
	ErrNoFiles = errors.New("no files to process")

	// ErrOCREmpty is recorded for files whose OCR text is blank
	ErrOCREmpty = errors.New("OCR failed to extract text")
)

// TextExtractor reads the raw text of a document on disk
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// ModelGateway sends a prompt to the language model and returns the decoded JSON answer
type ModelGateway interface {
	Complete(ctx context.Context, prompt string) (any, error)
}

// Processor drains the upload directory through OCR and the language model
type Processor struct {
	storage Storage
	ocr     TextExtractor
	gateway ModelGateway
}

// NewProcessor creates a new Processor
func NewProcessor(storage Storage, ocr TextExtractor, gateway ModelGateway) *Processor {
	return &Processor{
		storage: storage,
		ocr:     ocr,
		gateway: gateway,
	}
}

// Run processes every eligible file currently in the upload directory
func (p *Processor) Run(ctx context.Context) ([]Record, error) {
	paths, err := p.storage.List()
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return p.ProcessFiles(ctx, paths)
}

// ProcessFiles handles each path in order, one at a time. A failing file
// becomes an error record and never stops the batch. Every file is removed
// from storage once it has been handled, whatever the outcome.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string) ([]Record, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	slog.Info("Processing batch", "files", len(paths))

	records := make([]Record, 0, len(paths))
	for _, path := range paths {
		records = append(records, p.processFile(ctx, path))
	}
	return records, nil
}

func (p *Processor) processFile(ctx context.Context, path string) Record {
	filename := filepath.Base(path)
	defer func() {
		if err := p.storage.Remove(path); err != nil {
			slog.Warn("Failed to delete processed file", "filename", filename, "error", err)
		}
	}()

	result, err := p.extract(ctx, path)
	if err != nil {
		slog.Error("Failed to process document", "filename", filename, "error", err)
		return Record{Filename: filename, Error: err.Error()}
	}

	slog.Info("Processed document",
		"filename", filename,
		"document_type", result.DocumentType,
		"confidence", result.Confidence,
	)
	return Record{Filename: filename, Result: result}
}

// extract runs OCR, prompts the model and normalizes its answer.
// Blank OCR text is rejected before the model is called.
func (p *Processor) extract(ctx context.Context, path string) (*extraction.Result, error) {
	text, err := p.ocr.ExtractText(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrOCREmpty
	}

	parsed, err := p.gateway.Complete(ctx, extraction.BuildPrompt(text))
	if err != nil {
		return nil, err
	}

	result := extraction.Normalize(parsed)
	return &result, nil
}
