package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedResponse is matched by every MalformedResponseError
var ErrMalformedResponse = errors.New("invalid JSON returned from model")

// MalformedResponseError reports a model response that is not JSON after fence stripping
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return ErrMalformedResponse.Error()
}

func (e *MalformedResponseError) Unwrap() []error {
	return []error{ErrMalformedResponse, e.Err}
}

// Generator turns a prompt into the raw text answer of a language model
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gateway sends prompts to a Generator and decodes the answer as JSON
type Gateway struct {
	generator Generator
}

// NewGateway creates a Gateway around the configured model
func NewGateway(generator Generator) *Gateway {
	return &Gateway{generator: generator}
}

// Complete makes one model call and returns the decoded JSON value.
// Numbers are kept as json.Number so extracted values round-trip unchanged.
func (g *Gateway) Complete(ctx context.Context, prompt string) (any, error) {
	text, err := g.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating completion: %w", err)
	}
	return ParseResponse(text)
}

// StripFences removes every "```json" and "```" marker wherever it appears.
// This is plain substring removal: a fence inside a JSON string is removed too.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return text
}

// ParseResponse decodes a raw model response after fence stripping
func ParseResponse(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(StripFences(text)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	// trailing content after the first value is not valid JSON
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected content after JSON value")
		}
		return nil, &MalformedResponseError{Err: err}
	}
	return v, nil
}

