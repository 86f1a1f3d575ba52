package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Transcriber reads the text visible in a PNG image
type Transcriber interface {
	TranscribeImage(ctx context.Context, pngData []byte) (string, error)
}

// imageMimeTypes maps the image extensions the extractor accepts to their MIME type
var imageMimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".heic": "image/heic",
	".heif": "image/heif",
}

// Extractor pulls raw text out of scanned documents.
// PDFs with a text layer are read directly; scanned PDFs and images are
// transcribed page by page by a vision model.
type Extractor struct {
	transcriber Transcriber
}

// NewExtractor creates an Extractor that falls back to the given Transcriber
func NewExtractor(transcriber Transcriber) *Extractor {
	return &Extractor{transcriber: transcriber}
}

// ExtractText returns the text of the document at path. The text may be empty.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return e.extractPDF(ctx, path)
	}

	mimeType, ok := imageMimeTypes[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	pngData, err := toPNG(data, mimeType)
	if err != nil {
		return "", err
	}

	text, err := e.transcriber.TranscribeImage(ctx, pngData)
	if err != nil {
		return "", fmt.Errorf("transcribing image: %w", err)
	}
	return text, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages, err := pdfText(doc)
	if err != nil {
		return "", err
	}
	if text := joinPages(pages); strings.TrimSpace(text) != "" {
		return text, nil
	}

	slog.Info("PDF has no text layer, transcribing pages", "path", path, "pages", doc.NumPage())

	images, err := pdfToImages(doc)
	if err != nil {
		return "", err
	}

	pages = pages[:0]
	for i, img := range images {
		text, err := e.transcriber.TranscribeImage(ctx, img)
		if err != nil {
			return "", fmt.Errorf("transcribing page %d: %w", i+1, err)
		}
		pages = append(pages, text)
	}
	return joinPages(pages), nil
}

// joinPages separates pages by a blank line and drops blank pages
func joinPages(pages []string) string {
	kept := make([]string, 0, len(pages))
	for _, p := range pages {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
