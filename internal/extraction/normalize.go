package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Normalize builds a Result from a decoded model response. It never fails:
// missing keys get defaults and the confidence is coerced, clamped to [0,1]
// and rounded to two decimals. document_type and extracted_data are not
// checked against the known schemas.
func Normalize(parsed any) Result {
	m, _ := parsed.(map[string]any)

	result := Result{
		DocumentType:  Unknown,
		ExtractedData: map[string]any{},
	}

	if v, ok := m["document_type"]; ok && v != nil {
		if s, isString := v.(string); isString {
			result.DocumentType = DocumentType(s)
		} else {
			result.DocumentType = DocumentType(fmt.Sprint(v))
		}
	}

	if data, ok := m["extracted_data"].(map[string]any); ok {
		result.ExtractedData = data
	}

	result.Confidence = roundConfidence(clampConfidence(coerceConfidence(m["confidence"])))

	return result
}

// coerceConfidence converts a JSON value to a number, returning 0 when it is not one
func coerceConfidence(v any) float64 {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = strconv.ParseFloat(t.String(), 64)
	case float64:
		f = t
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	case bool:
		if t {
			f = 1
		}
	default:
		return 0
	}
	// out-of-range values come back as ±Inf and are clamped by the caller
	if errors.Is(err, strconv.ErrRange) {
		err = nil
	}
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}

func clampConfidence(c float64) float64 {
	return math.Max(0, math.Min(1, c))
}

// roundConfidence rounds to two decimals on the exact binary value, so
// ties such as 0.125 go to the even digit
func roundConfidence(c float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(c, 'f', 2, 64), 64)
	return r
}
