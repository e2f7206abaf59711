// Package enrich derives tags, a summary and flashcard seeds from extracted
// text by calling a remote enrichment service.
//
// Enrichment is strictly best-effort: a single outbound call per text, no
// retries, and no error ever propagates past this package. Any failure
// (network, non-2xx status, malformed response) resolves to a deterministic
// local fallback so the pipeline always produces a usable note even when the
// service is unreachable.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"notekit/internal/logger"
	"notekit/pkg/models"
)

// SummaryLimit is the fallback summary length in characters.
const SummaryLimit = 150

// Enricher produces derived data for a piece of extracted text. Enrich never
// fails; implementations degrade to Fallback on any error.
type Enricher interface {
	Enrich(ctx context.Context, text string) models.Enrichment
}

// Fallback is the deterministic local enrichment used when the remote
// service cannot be reached or returns garbage: no tags, no flashcards, and
// a summary truncated to the first SummaryLimit characters with a trailing
// ellipsis.
func Fallback(text string) models.Enrichment {
	summary := text
	if runes := []rune(text); len(runes) > SummaryLimit {
		summary = string(runes[:SummaryLimit]) + "..."
	}
	return models.Enrichment{
		Tags:       []string{},
		Summary:    summary,
		Flashcards: []models.CardSeed{},
	}
}

// HTTPEnricher calls a single HTTP endpoint accepting {"text": ...} and
// returning {"tags": [], "summary": "", "flashcards": [{"front","back"}]}.
// Absent response fields are treated as empty values, not errors.
type HTTPEnricher struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

type enrichRequest struct {
	Text string `json:"text"`
}

// NewHTTPEnricher creates an enricher posting to the given endpoint URL.
func NewHTTPEnricher(url string, timeout time.Duration) *HTTPEnricher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPEnricher{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    logger.WithComponent("enrich-http"),
	}
}

// Enrich performs one outbound call and returns the derived data, or the
// local fallback on any failure.
func (e *HTTPEnricher) Enrich(ctx context.Context, text string) models.Enrichment {
	body, err := json.Marshal(enrichRequest{Text: text})
	if err != nil {
		e.log.Warn().Err(err).Msg("Failed to encode enrichment request, using fallback")
		return Fallback(text)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		e.log.Warn().Err(err).Str("url", e.url).Msg("Failed to build enrichment request, using fallback")
		return Fallback(text)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		e.log.Warn().Err(err).Str("url", e.url).Msg("Enrichment call failed, using fallback")
		return Fallback(text)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.log.Warn().
			Int("status", resp.StatusCode).
			Str("url", e.url).
			Msg("Enrichment service returned non-2xx status, using fallback")
		return Fallback(text)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		e.log.Warn().Err(err).Msg("Failed to read enrichment response, using fallback")
		return Fallback(text)
	}

	var result models.Enrichment
	if err := json.Unmarshal(payload, &result); err != nil {
		e.log.Warn().Err(err).Msg("Malformed enrichment response, using fallback")
		return Fallback(text)
	}

	normalize(&result)
	e.log.Debug().
		Int("tags", len(result.Tags)).
		Int("flashcards", len(result.Flashcards)).
		Int("summary_length", len(result.Summary)).
		Msg("Enrichment completed")
	return result
}

// normalize replaces nil collections with empty ones so callers never have
// to distinguish "absent" from "empty".
func normalize(e *models.Enrichment) {
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if e.Flashcards == nil {
		e.Flashcards = []models.CardSeed{}
	}
}

// Disabled is an Enricher that skips the remote call entirely and always
// returns the local fallback. Used when no enrichment service is configured.
type Disabled struct{}

// Enrich returns the local fallback for the text.
func (Disabled) Enrich(ctx context.Context, text string) models.Enrichment {
	return Fallback(text)
}

var (
	_ Enricher = (*HTTPEnricher)(nil)
	_ Enricher = Disabled{}
)
