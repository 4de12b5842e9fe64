// Package ocr extracts text from scanned page images using two engines: a
// low-cost local Tesseract baseline that always runs, and an optional
// higher-accuracy Google Cloud Vision engine whose output is trusted only
// above a confidence threshold and otherwise reconciled against the
// baseline by parsing both texts and comparing the extracted fields.
//
// Required Environment Variables (secondary engine only):
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//
// The secondary engine is initialized lazily, at most once per process; if
// initialization fails it is marked unavailable for the process lifetime
// and never retried.
package ocr

import "context"

// Engine names reported on Result. A secondary engine reports its own name
// when its result is used verbatim.
const (
	EngineBaseline = "baseline"
	EngineDual     = "dual"
)

// BaselineConfidence is the fixed confidence assigned to baseline results;
// Tesseract's own estimates are too erratic on check stock to be useful.
const BaselineConfidence = 0.7

// Result is the reconciled OCR output for one page image.
type Result struct {
	// Text is the extracted text. For dual results it contains both
	// engines' output under PRIMARY and SECONDARY labels.
	Text string `json:"text"`

	// Confidence is the reliability of Text (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Engine records which engine produced Text: "baseline", the secondary
	// engine's name, or "dual" for a composite.
	Engine string `json:"engine"`

	// NeedsVerification marks results a human should double-check.
	NeedsVerification bool `json:"needs_verification"`
}

// BaselineEngine is the always-available local OCR backend.
type BaselineEngine interface {
	Name() string

	// Extract returns the plain text recognized in the image file.
	Extract(ctx context.Context, imagePath string) (string, error)
}

// SecondaryResult is the raw output of the higher-accuracy engine.
type SecondaryResult struct {
	Text string

	// Confidence is the average per-word recognition confidence.
	Confidence float64
}

// SecondaryEngine is the optional higher-accuracy OCR backend.
type SecondaryEngine interface {
	Name() string

	Extract(ctx context.Context, imagePath string) (SecondaryResult, error)
}

// SecondaryFactory builds the secondary engine on first use. A nil factory
// means no secondary engine is configured.
type SecondaryFactory func(ctx context.Context) (SecondaryEngine, error)
