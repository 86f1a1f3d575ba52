package document

import (
	"encoding/json"

	"github.com/zombor/academic-ocr/internal/extraction"
)

// Record is the outcome of processing one uploaded file.
// Exactly one of Result or Error is set.
type Record struct {
	Filename string
	Result   *extraction.Result
	Error    string
}

// successRecord is the wire shape of a processed file
type successRecord struct {
	Filename      string                  `json:"filename"`
	DocumentType  extraction.DocumentType `json:"document_type"`
	ExtractedData map[string]any          `json:"extracted_data"`
	Confidence    float64                 `json:"confidence"`
}

// failureRecord is the wire shape of a file that could not be processed
type failureRecord struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// Failed reports whether the record carries an error
func (r Record) Failed() bool {
	return r.Result == nil
}

// MarshalJSON emits either the success or the failure shape.
// Callers tell them apart by the presence of the "error" key.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(failureRecord{
			Filename: r.Filename,
			Error:    r.Error,
		})
	}
	return json.Marshal(successRecord{
		Filename:      r.Filename,
		DocumentType:  r.Result.DocumentType,
		ExtractedData: r.Result.ExtractedData,
		Confidence:    r.Result.Confidence,
	})
}
