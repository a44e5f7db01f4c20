package oracle

import (
	"context"
	"fmt"
)

// DefaultMaxSample bounds how many rows Classify ever sends to the model.
const DefaultMaxSample = 5

// ClassificationResult is what the oracle returns for one sample.
// DetectedType "unknown" with Confidence 0 is the designated failure
// fallback and must be read as "no usable classification".
type ClassificationResult struct {
	DetectedType   string           `json:"detectedType"`
	Confidence     float64          `json:"confidence"`
	NormalizedData []map[string]any `json:"normalizedData"`
	Suggestions    []string         `json:"suggestions"`
	Errors         []string         `json:"errors"`
}

// IsUsable reports whether the result carries a real classification.
func (r ClassificationResult) IsUsable() bool {
	return r.DetectedType != "" && r.DetectedType != "unknown"
}

// Client is the narrow boundary to the external classification service.
// Implementations are expected to be non-deterministic and fallible;
// callers must not assume identical output across runs on the same input.
type Client interface {
	// Classify sends headers plus at most maxSample rows and returns the
	// model's best guess. It never returns an error: any transport or
	// contract failure degrades to Fallback().
	Classify(ctx context.Context, headers []string, sampleRows []map[string]string, maxSample int) ClassificationResult

	// NormalizeAll transforms every row into the canonical shape for the
	// already-confirmed dataType. Unlike Classify, errors propagate so the
	// caller can apply its own fallback.
	NormalizeAll(ctx context.Context, headers []string, rows []map[string]string, dataType string) ([]map[string]any, error)
}

// Fallback is the result used whenever classification cannot proceed.
func Fallback(cause error) ClassificationResult {
	return ClassificationResult{
		DetectedType:   "unknown",
		Confidence:     0,
		NormalizedData: []map[string]any{},
		Suggestions:    []string{"Automatic classification failed. Select the data type manually and re-upload."},
		Errors:         []string{fmt.Sprintf("classification failed: %v", cause)},
	}
}
