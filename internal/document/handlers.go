package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// maxUploadSize bounds a multipart upload, high-resolution phone scans included
const maxUploadSize = int64(50 << 20) // 50MB

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes an {"error": message} response
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleProcess drains the upload directory and returns one record per file
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	// A client disconnect must not abort a batch whose files are deleted as they go
	ctx := context.WithoutCancel(r.Context())

	records, err := s.processor.Run(ctx)
	if errors.Is(err, ErrNoFiles) {
		writeError(w, "No files to process", http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("Error processing documents", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// handleUpload stores one or more files in the upload directory
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, "File is too large. Maximum size is 50MB.", http.StatusBadRequest)
			return
		}
		writeError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		writeError(w, "No file provided", http.StatusBadRequest)
		return
	}

	for _, header := range headers {
		if !AllowedFile(header.Filename) {
			writeError(w, fmt.Sprintf("File type not allowed: %s", header.Filename), http.StatusBadRequest)
			return
		}
	}

	saved := make([]string, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			slog.Error("Error opening uploaded file", "filename", header.Filename, "error", err)
			writeError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			slog.Error("Error reading file data", "filename", header.Filename, "error", err)
			writeError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
			return
		}

		name, err := s.storage.Save(header.Filename, data)
		if err != nil {
			slog.Error("Error saving file", "filename", header.Filename, "error", err)
			writeError(w, "Error saving file", http.StatusInternalServerError)
			return
		}
		saved = append(saved, name)
	}

	writeJSON(w, http.StatusCreated, map[string][]string{"files": saved})
}
