package ocr

import (
	"context"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements Engine using the gosseract client. One client
// instance is reused across all recognitions of a batch to amortize setup
// costs; Terminate closes it.
type TesseractEngine struct {
	client *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed engine for the given
// configuration. A configured DataDir that does not exist fails with
// ErrBadDataPath.
func NewTesseractEngine(ctx context.Context, cfg Config) (Engine, error) {
	const op = "NewTesseractEngine"

	if cfg.DataDir != "" {
		info, err := os.Stat(cfg.DataDir)
		if err != nil || !info.IsDir() {
			return nil, WrapError(op, ErrBadDataPath, cfg.DataDir)
		}
	}

	client := gosseract.NewClient()

	if cfg.DataDir != "" {
		if err := client.SetTessdataPrefix(cfg.DataDir); err != nil {
			client.Close()
			return nil, WrapError(op, ErrEngineConstruction, "set tessdata prefix: "+err.Error())
		}
	}
	if cfg.Language != "" {
		if err := client.SetLanguage(cfg.Language); err != nil {
			client.Close()
			return nil, WrapError(op, ErrEngineConstruction, "set language "+cfg.Language+": "+err.Error())
		}
	}

	return &TesseractEngine{client: client}, nil
}

// Recognize extracts text from a single encoded image.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	const op = "Recognize"

	select {
	case <-ctx.Done():
		return "", WrapError(op, ctx.Err(), "")
	default:
	}

	if err := e.client.SetImageFromBytes(image); err != nil {
		return "", WrapError(op, ErrRecognitionFailed, "set image: "+err.Error())
	}
	text, err := e.client.Text()
	if err != nil {
		return "", WrapError(op, ErrRecognitionFailed, err.Error())
	}
	return text, nil
}

// Terminate closes the underlying gosseract client.
func (e *TesseractEngine) Terminate() error {
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
