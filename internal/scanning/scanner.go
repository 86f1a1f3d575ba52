package scanning

import "context"

// GenerationConfig holds the sampling parameters sent with every model call
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// DefaultGenerationConfig favors deterministic extraction
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.2,
		TopP:            1,
		TopK:            32,
		MaxOutputTokens: 4096,
	}
}

// Config is the process-wide model configuration. It is built once at startup.
type Config struct {
	Model      string
	APIKey     string
	BaseURL    string
	Generation GenerationConfig
}

// Provider is a language model that can both answer text prompts and read images
type Provider interface {
	// Generate returns the raw text answer for a prompt
	Generate(ctx context.Context, prompt string) (string, error)
	// TranscribeImage returns the text visible in a PNG image
	TranscribeImage(ctx context.Context, pngData []byte) (string, error)
	// Close releases the client
	Close() error
}

// transcribePrompt is shared by all providers when they are used for OCR
const transcribePrompt = `You are an OCR engine. Transcribe all text visible in this scanned document image exactly as written.

Important:
- Preserve the reading order and line breaks
- Include dates, numbers, names, and URLs exactly as printed
- Do not summarize, translate, or explain anything
- Do not use markdown formatting
- If there is no readable text, return an empty response`
