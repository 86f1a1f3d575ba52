package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// allowedExtensions are the file types the batch picks up from the upload directory
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".heic": true,
	".heif": true,
}

// AllowedFile reports whether a filename has an extension the batch accepts
func AllowedFile(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Storage defines the upload directory operations used by the batch
type Storage interface {
	// List returns the paths of every eligible file, in directory listing order
	List() ([]string, error)

	// Save writes an uploaded file and returns its stored name
	Save(filename string, data []byte) (string, error)

	// Remove deletes a file if it still exists
	Remove(path string) error
}

// IDGenerator generates unique prefixes for uploaded files
type IDGenerator interface {
	Generate() string
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// UploadDir implements the Storage interface using a local directory
type UploadDir struct {
	basePath    string
	idGenerator IDGenerator
}

// NewUploadDir creates a new UploadDir, creating the directory if needed
func NewUploadDir(basePath string) (*UploadDir, error) {
	return NewUploadDirWithIDs(basePath, &uuidGenerator{})
}

// NewUploadDirWithIDs creates a new UploadDir with a custom ID generator for testing
func NewUploadDirWithIDs(basePath string, idGen IDGenerator) (*UploadDir, error) {
	basePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolving upload directory: %w", err)
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &UploadDir{
		basePath:    basePath,
		idGenerator: idGen,
	}, nil
}

// List returns the eligible files of the upload directory sorted by name
func (u *UploadDir) List() ([]string, error) {
	entries, err := os.ReadDir(u.basePath)
	if err != nil {
		return nil, fmt.Errorf("listing upload directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !AllowedFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(u.basePath, entry.Name()))
	}
	return paths, nil
}

// Save writes a file into the upload directory under a unique, sanitized name
func (u *UploadDir) Save(filename string, data []byte) (string, error) {
	name := fmt.Sprintf("%s_%s", u.idGenerator.Generate(), sanitizeFilename(filename))
	if err := os.WriteFile(filepath.Join(u.basePath, name), data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return name, nil
}

// Remove deletes a file from the upload directory; a missing file is not an error
func (u *UploadDir) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	// Truncate to reasonable length (50 chars for base, plus extension)
	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	if base == "" {
		base = "document"
	}

	return base + ext
}
