package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/academic-ocr/internal/document"
	"github.com/zombor/academic-ocr/internal/extraction"
	"github.com/zombor/academic-ocr/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	defaults := scanning.DefaultGenerationConfig()

	fs := ff.NewFlagSet("academic-ocr")
	var (
		port            = fs.IntLong("port", 8080, "HTTP server port")
		uploadPath      = fs.StringLong("uploads", "./uploads", "Upload directory drained by each batch")
		providerType    = fs.StringLong("provider", "gemini", "Model provider: 'gemini' or 'ollama'")
		geminiKey       = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel     = fs.StringLong("gemini-model", "gemini-1.5-pro", "Google Gemini model name")
		ollamaURL       = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel     = fs.StringLong("ollama-model", "llama3.2-vision", "Ollama model name; must accept images for OCR")
		temperature     = fs.Float64Long("temperature", float64(defaults.Temperature), "Sampling temperature")
		topP            = fs.Float64Long("top-p", float64(defaults.TopP), "Nucleus sampling probability")
		topK            = fs.IntLong("top-k", int(defaults.TopK), "Top-k sampling")
		maxOutputTokens = fs.IntLong("max-output-tokens", int(defaults.MaxOutputTokens), "Maximum tokens per model answer")
		authUser        = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass        = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion     = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("ACADEMIC_OCR"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	generation := scanning.GenerationConfig{
		Temperature:     float32(*temperature),
		TopP:            float32(*topP),
		TopK:            int32(*topK),
		MaxOutputTokens: int32(*maxOutputTokens),
	}

	// Initialize the model provider used for both OCR and extraction
	var (
		provider scanning.Provider
		err      error
	)
	switch *providerType {
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini provider...", "model", *geminiModel)
		provider, err = scanning.NewGemini(scanning.Config{
			Model:      *geminiModel,
			APIKey:     apiKey,
			Generation: generation,
		})
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama provider...", "url", *ollamaURL, "model", *ollamaModel)
		provider, err = scanning.NewOllama(scanning.Config{
			Model:      *ollamaModel,
			BaseURL:    *ollamaURL,
			Generation: generation,
		})
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid provider type", "type", *providerType, "valid", "gemini or ollama")
		os.Exit(1)
	}
	defer provider.Close()

	slog.Info("Initializing upload directory...", "path", *uploadPath)
	uploads, err := document.NewUploadDir(*uploadPath)
	if err != nil {
		slog.Error("Failed to initialize upload directory", "error", err)
		os.Exit(1)
	}

	processor := document.NewProcessor(
		uploads,
		scanning.NewExtractor(provider),
		extraction.NewGateway(provider),
	)

	basicAuth := document.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := document.NewServer(processor, uploads, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
