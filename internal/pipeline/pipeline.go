// Package pipeline is the control plane of the document import batch: it
// classifies queued files, sequences per-file processing (type dispatch,
// text extraction, enrichment), isolates per-file failures and reports
// two-axis progress.
//
// A batch runs strictly sequentially: files in queue order, PDF pages in
// ascending order. The OCR engine is a singleton exclusive resource acquired
// once per batch through the lifecycle manager and released on every exit
// path. One bad file never aborts the batch; only engine construction
// failure does.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"notekit/internal/enrich"
	"notekit/internal/logger"
	"notekit/internal/ocr"
	"notekit/internal/pdf"
	"notekit/internal/store"
	"notekit/pkg/models"
)

// PDFDocument is the rasterizer surface the orchestrator drives: page count
// plus per-page rendering, as provided by internal/pdf.
type PDFDocument interface {
	PageCount() int
	RenderPage(page int) ([]byte, error)
	Close() error
}

// PDFOpener parses raw bytes into a PDFDocument. Injected so tests can
// substitute a fake rasterizer.
type PDFOpener func(data []byte) (PDFDocument, error)

func defaultPDFOpener(data []byte) (PDFDocument, error) {
	return pdf.Load(data)
}

// FileFailure records one file that failed during processing. The batch
// continues past it.
type FileFailure struct {
	Name    string
	Stage   Stage
	Message string
	Err     error
}

// Result is the outcome of one batch run.
type Result struct {
	// Imported holds the notes recorded for successfully processed files,
	// in queue order.
	Imported []models.Note

	// Failures holds per-file processing failures, in queue order.
	Failures []FileFailure

	// Rejected holds files refused at intake; they never entered the queue.
	Rejected []Rejection

	// Attempted is the number of files that entered the queue.
	Attempted int
}

// NothingImported reports whether a non-empty queue produced zero notes.
// This is distinct from a successful empty batch.
func (r *Result) NothingImported() bool {
	return r.Attempted > 0 && len(r.Imported) == 0
}

// Orchestrator runs import batches.
type Orchestrator struct {
	manager   *ocr.Manager
	engineCfg ocr.Config
	enricher  enrich.Enricher
	store     *store.Store
	openPDF   PDFOpener
	reporter  Reporter
	log       zerolog.Logger

	state State
}

// New creates an orchestrator with the production rasterizer and no progress
// reporting.
func New(manager *ocr.Manager, engineCfg ocr.Config, enricher enrich.Enricher, st *store.Store) *Orchestrator {
	return NewWithDeps(manager, engineCfg, enricher, st, defaultPDFOpener, NopReporter)
}

// NewWithDeps creates an orchestrator with explicit collaborators (for
// testing).
func NewWithDeps(manager *ocr.Manager, engineCfg ocr.Config, enricher enrich.Enricher, st *store.Store, openPDF PDFOpener, reporter Reporter) *Orchestrator {
	if reporter == nil {
		reporter = NopReporter
	}
	if openPDF == nil {
		openPDF = defaultPDFOpener
	}
	return &Orchestrator{
		manager:   manager,
		engineCfg: engineCfg,
		enricher:  enricher,
		store:     st,
		openPDF:   openPDF,
		reporter:  reporter,
		log:       logger.WithComponent("pipeline"),
		state:     StateIdle,
	}
}

// State returns the orchestrator's current batch state.
func (o *Orchestrator) State() State { return o.state }

// Run processes one batch of documents. Files are classified at intake;
// rejected files never enter the queue. The OCR engine is acquired once and
// released unconditionally when the batch finishes. Engine construction
// failure aborts the whole batch; any other failure is isolated to its file.
func (o *Orchestrator) Run(ctx context.Context, docs []models.Document) (*Result, error) {
	const op = "Run"

	queued, rejected := partition(docs)
	result := &Result{
		Rejected:  rejected,
		Attempted: len(queued),
	}
	for _, r := range rejected {
		o.log.Warn().Str("file", r.Name).Str("reason", r.Reason).Msg("File rejected at intake")
	}

	if len(queued) == 0 {
		o.state = StateCompleted
		o.log.Info().Int("rejected", len(rejected)).Msg("Batch completed with empty queue")
		return result, nil
	}

	o.state = StateEngineInitializing
	engine, err := o.manager.Acquire(ctx, o.engineCfg)
	if err != nil {
		o.state = StateFailed
		o.manager.Release()
		if errors.Is(err, ocr.ErrBadDataPath) {
			return nil, fmt.Errorf("%s: OCR assets not found, check the trained data configuration: %w", op, err)
		}
		return nil, fmt.Errorf("%s: OCR engine unavailable: %w", op, err)
	}
	defer o.manager.Release()

	for _, qf := range queued {
		o.state = StateProcessingFile
		note, err := o.processFile(ctx, engine, qf)
		if err != nil {
			failure := o.categorize(qf.doc.Name, err)
			result.Failures = append(result.Failures, failure)
			o.log.Warn().
				Err(err).
				Str("file", qf.doc.Name).
				Str("stage", string(failure.Stage)).
				Msg("File failed, continuing with next")
			continue
		}

		recorded, err := o.record(note)
		if err != nil {
			result.Failures = append(result.Failures, FileFailure{
				Name:    qf.doc.Name,
				Stage:   StageRecorded,
				Message: fmt.Sprintf("failed to save note for %q: %v", qf.doc.Name, err),
				Err:     err,
			})
			continue
		}

		o.report(qf.doc.Name, StageRecorded, fmt.Sprintf("Imported %s", qf.doc.Name), 100)
		result.Imported = append(result.Imported, recorded)
	}

	o.state = StateCompleted
	o.log.Info().
		Int("imported", len(result.Imported)).
		Int("failed", len(result.Failures)).
		Int("rejected", len(result.Rejected)).
		Msg("Batch completed")
	return result, nil
}

// processFile runs the per-file sub-stages Classifying -> Extracting ->
// Enriching and assembles the note. Errors out of Extracting or Enriching
// are the caller's to catch; they fail this file only.
func (o *Orchestrator) processFile(ctx context.Context, engine ocr.Engine, qf queuedFile) (models.Note, error) {
	name := qf.doc.Name

	o.report(name, StageClassifying, fmt.Sprintf("Classifying %s", name), 0)

	var text string
	var err error
	switch qf.kind {
	case KindPDF:
		text, err = o.extractPDF(ctx, engine, qf.doc)
	case KindImage:
		o.report(name, StageExtracting, fmt.Sprintf("Recognizing %s", name), 0)
		text, err = engine.Recognize(ctx, qf.doc.Data)
		if err == nil {
			o.report(name, StageExtracting, fmt.Sprintf("Recognized %s", name), 100)
		}
	default:
		o.report(name, StageExtracting, fmt.Sprintf("Reading %s", name), 0)
		text = string(qf.doc.Data)
		o.report(name, StageExtracting, fmt.Sprintf("Read %s", name), 100)
	}
	if err != nil {
		return models.Note{}, err
	}

	o.report(name, StageEnriching, fmt.Sprintf("Enriching %s", name), 100)
	enrichment := o.enricher.Enrich(ctx, text)

	return buildNote(qf, text, enrichment), nil
}

// extractPDF rasterizes and recognizes every page in ascending order,
// joining page texts with a blank line. Progress is 100*page/pageCount,
// recomputed on every page.
func (o *Orchestrator) extractPDF(ctx context.Context, engine ocr.Engine, doc models.Document) (string, error) {
	pdfDoc, err := o.openPDF(doc.Data)
	if err != nil {
		return "", err
	}
	defer pdfDoc.Close()

	pageCount := pdfDoc.PageCount()
	pages := make([]string, 0, pageCount)
	for page := 1; page <= pageCount; page++ {
		o.report(doc.Name, StageExtracting,
			fmt.Sprintf("Recognizing page %d/%d of %s", page, pageCount, doc.Name),
			100*(page-1)/pageCount)

		surface, err := pdfDoc.RenderPage(page)
		if err != nil {
			return "", err
		}
		text, err := engine.Recognize(ctx, surface)
		if err != nil {
			return "", err
		}
		pages = append(pages, strings.TrimSpace(text))

		o.report(doc.Name, StageExtracting,
			fmt.Sprintf("Recognized page %d/%d of %s", page, pageCount, doc.Name),
			100*page/pageCount)
	}
	return strings.Join(pages, "\n\n"), nil
}

// record hands a finished note and its flashcards to the persistence layer.
func (o *Orchestrator) record(note models.Note) (models.Note, error) {
	recorded, err := o.store.AddNote(note)
	if err != nil {
		return models.Note{}, err
	}
	for _, card := range note.Flashcards {
		if _, err := o.store.AddFlashcard(card); err != nil {
			return models.Note{}, err
		}
	}
	return recorded, nil
}

// categorize turns a per-file error into a failure record, distinguishing
// rendering/recognition failures from generic ones by sentinel matching.
func (o *Orchestrator) categorize(name string, err error) FileFailure {
	switch {
	case errors.Is(err, pdf.ErrInvalidPDF):
		return FileFailure{
			Name:    name,
			Stage:   StageExtracting,
			Message: fmt.Sprintf("could not render %q: %v", name, err),
			Err:     err,
		}
	case errors.Is(err, ocr.ErrRecognitionFailed):
		return FileFailure{
			Name:    name,
			Stage:   StageExtracting,
			Message: fmt.Sprintf("text recognition failed for %q: %v", name, err),
			Err:     err,
		}
	default:
		return FileFailure{
			Name:    name,
			Stage:   StageExtracting,
			Message: fmt.Sprintf("failed to import %q: %v", name, err),
			Err:     err,
		}
	}
}

func (o *Orchestrator) report(file string, stage Stage, message string, percent int) {
	o.reporter.Report(Progress{
		File:    file,
		Stage:   stage,
		Message: message,
		Percent: percent,
	})
}

// buildNote assembles the note record for a processed file, including the
// creation-time flashcard snapshot. The flashcard deck label defaults to the
// first enrichment tag, or to the source-kind label when there are no tags.
func buildNote(qf queuedFile, text string, e models.Enrichment) models.Note {
	source := qf.kind.source()
	deck := string(source)
	if len(e.Tags) > 0 {
		deck = e.Tags[0]
	}

	cards := make([]models.Flashcard, 0, len(e.Flashcards))
	for _, seed := range e.Flashcards {
		cards = append(cards, models.Flashcard{
			ID:    models.NewFlashcardID(),
			Front: seed.Front,
			Back:  seed.Back,
			Deck:  deck,
			Tags:  append([]string(nil), e.Tags...),
		})
	}

	title := strings.TrimSuffix(qf.doc.Name, filepath.Ext(qf.doc.Name))
	return models.Note{
		Title:      title,
		Content:    text,
		Source:     source,
		Summary:    e.Summary,
		Tags:       append([]string(nil), e.Tags...),
		Flashcards: cards,
		Recent:     true,
	}
}
