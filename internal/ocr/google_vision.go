package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// GoogleVisionEngine implements Engine using the Cloud Vision API's document
// text detection. The client is created once at acquisition and reused for
// every page of the batch.
type GoogleVisionEngine struct {
	client   *vision.ImageAnnotatorClient
	language string
}

// NewGoogleVisionEngine creates a Vision-backed engine with credentials from
// the configuration or the environment.
func NewGoogleVisionEngine(ctx context.Context, cfg Config) (Engine, error) {
	const op = "NewGoogleVisionEngine"

	var client *vision.ImageAnnotatorClient
	var err error

	switch {
	case cfg.CredentialsFile != "":
		if _, statErr := os.Stat(cfg.CredentialsFile); statErr != nil {
			return nil, WrapError(op, ErrBadDataPath, cfg.CredentialsFile)
		}
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(cfg.CredentialsFile))
	case os.Getenv("GOOGLE_CREDENTIALS") != "":
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(os.Getenv("GOOGLE_CREDENTIALS"))))
	case os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "":
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")))
	default:
		// Try application default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}
	if err != nil {
		return nil, WrapError(op, ErrEngineConstruction, err.Error())
	}

	return &GoogleVisionEngine{client: client, language: cfg.Language}, nil
}

// Recognize extracts text from a single encoded image.
func (e *GoogleVisionEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	const op = "Recognize"

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				ImageContext: e.imageContext(),
			},
		},
	}

	resp, err := e.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", WrapError(op, ErrRecognitionFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return "", WrapError(op, ErrRecognitionFailed, "no response from Vision API")
	}

	annotated := resp.Responses[0]
	if annotated.Error != nil {
		return "", WrapError(op, ErrRecognitionFailed, fmt.Sprintf("Vision API error: %s", annotated.Error.Message))
	}
	if annotated.FullTextAnnotation == nil {
		return "", nil
	}
	return annotated.FullTextAnnotation.Text, nil
}

func (e *GoogleVisionEngine) imageContext() *visionpb.ImageContext {
	lang := strings.TrimSpace(e.language)
	if lang == "" {
		return nil
	}
	return &visionpb.ImageContext{LanguageHints: []string{lang}}
}

// Terminate closes the underlying Vision client.
func (e *GoogleVisionEngine) Terminate() error {
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
