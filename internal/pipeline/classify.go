package pipeline

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"notekit/pkg/models"
)

// Kind is the media kind a document was classified as. Exactly three kinds
// are accepted into the batch queue; everything else is rejected at intake.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
	KindText  Kind = "text"
)

// ErrUnsupportedKind is returned when a document's media kind is neither
// PDF, image nor plain text.
var ErrUnsupportedKind = errors.New("unsupported file kind")

// Rejection records a file refused at intake, before the batch state machine
// starts. Rejected files never enter the queue.
type Rejection struct {
	Name   string
	Reason string
}

type queuedFile struct {
	doc  models.Document
	kind Kind
}

// Classify resolves a document's media kind from its declared MIME type,
// falling back to the filename extension and finally to content sniffing.
func Classify(doc models.Document) (Kind, error) {
	mt := resolveMIME(doc)
	switch {
	case mt == "application/pdf":
		return KindPDF, nil
	case strings.HasPrefix(mt, "image/"):
		return KindImage, nil
	case mt == "text/plain" || strings.HasPrefix(mt, "text/plain;"):
		return KindText, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKind, mt)
	}
}

func resolveMIME(doc models.Document) string {
	if doc.MIME != "" {
		return doc.MIME
	}
	if ext := filepath.Ext(doc.Name); ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return mt
		}
		// mime.TypeByExtension misses .txt on some platforms
		if strings.EqualFold(ext, ".txt") {
			return "text/plain"
		}
	}
	return http.DetectContentType(doc.Data)
}

// partition splits the batch input into the processing queue and the intake
// rejections, preserving input order.
func partition(docs []models.Document) ([]queuedFile, []Rejection) {
	queued := make([]queuedFile, 0, len(docs))
	var rejected []Rejection
	for _, doc := range docs {
		kind, err := Classify(doc)
		if err != nil {
			rejected = append(rejected, Rejection{
				Name:   doc.Name,
				Reason: err.Error(),
			})
			continue
		}
		queued = append(queued, queuedFile{doc: doc, kind: kind})
	}
	return queued, rejected
}

// source maps a queue kind to the persisted note source label.
func (k Kind) source() models.Source {
	switch k {
	case KindPDF:
		return models.SourcePDF
	case KindImage:
		return models.SourceImage
	default:
		return models.SourceText
	}
}
