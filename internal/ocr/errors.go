package ocr

import (
	"errors"
	"fmt"
)

// Common OCR processing errors
var (
	// ErrBadDataPath is returned when the configured trained-data location
	// does not exist or is not a directory. Kept distinct from other
	// construction failures so the caller can point the user at the asset
	// configuration instead of the engine itself.
	ErrBadDataPath = errors.New("trained data path does not exist or is not a directory")

	// ErrEngineConstruction is returned when the engine cannot be created
	// for any reason other than a bad asset path. Fatal to the whole batch.
	ErrEngineConstruction = errors.New("OCR engine construction failed")

	// ErrRecognitionFailed is returned when the engine fails to extract
	// text from an image. Fails the current file only.
	ErrRecognitionFailed = errors.New("OCR recognition failed")

	// ErrMissingCredentials is returned by the Google Vision provider when
	// no usable credentials are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrUnknownProvider is returned when the configured engine name does
	// not match a known provider.
	ErrUnknownProvider = errors.New("unknown OCR engine provider")
)

// OCRError wraps errors with additional context about the OCR failure.
type OCRError struct {
	// Op is the operation that failed (e.g., "Acquire", "Recognize").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *OCRError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapError wraps an error as an OCRError if it isn't already one.
func WrapError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err // Already wrapped
	}

	return &OCRError{Op: op, Err: err, Details: details}
}
