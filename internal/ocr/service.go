// Package ocr provides the optical character recognition capability used by
// the import pipeline.
//
// This package defines the engine contract (one encoded image in, recognized
// text out), a lifecycle manager that owns at most one live engine per batch,
// and two providers:
//
//   - Tesseract (default): local recognition via the gosseract client.
//     Requires a tesseract installation and trained language data.
//   - Google Vision: remote recognition via the Cloud Vision API's
//     DOCUMENT_TEXT_DETECTION feature.
//
// Required Environment Variables (Google Vision provider only):
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
package ocr

import "context"

// Engine is the OCR engine contract. An engine is a stateful exclusive
// resource: it is constructed once per batch, reused across heterogeneous
// inputs, and must be terminated when the batch finishes.
type Engine interface {
	// Recognize extracts text from a single encoded image (PNG or JPEG).
	Recognize(ctx context.Context, image []byte) (string, error)

	// Terminate releases the engine's resources. An engine must not be
	// used after Terminate returns.
	Terminate() error
}

// Config holds engine construction settings.
type Config struct {
	// Language is the trained-data language code (e.g. "eng", "deu").
	Language string

	// DataDir is the tessdata directory holding trained language models.
	// Empty means the provider's default location. Tesseract only.
	DataDir string

	// CredentialsFile is the service account JSON path. Google Vision only;
	// empty falls back to GOOGLE_CREDENTIALS or application default
	// credentials.
	CredentialsFile string
}

// Factory constructs an engine for the given configuration. Injected into
// the Manager so tests can substitute a fake engine.
type Factory func(ctx context.Context, cfg Config) (Engine, error)

// FactoryFor returns the engine factory registered under the given provider
// name ("tesseract" or "vision").
func FactoryFor(provider string) (Factory, error) {
	switch provider {
	case "", "tesseract":
		return NewTesseractEngine, nil
	case "vision", "google-vision":
		return NewGoogleVisionEngine, nil
	default:
		return nil, WrapError("FactoryFor", ErrUnknownProvider, provider)
	}
}
