package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"notekit/pkg/models"
)

func TestHTTPEnricherSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{
			"tags": ["biology", "cells"],
			"summary": "About cells.",
			"flashcards": [{"front": "What is a cell?", "back": "The basic unit of life."}]
		}`))
	}))
	defer server.Close()

	e := NewHTTPEnricher(server.URL, time.Second)
	result := e.Enrich(context.Background(), "some extracted text")

	assert.Equal(t, []string{"biology", "cells"}, result.Tags)
	assert.Equal(t, "About cells.", result.Summary)
	require.Len(t, result.Flashcards, 1)
	assert.Equal(t, "What is a cell?", result.Flashcards[0].Front)
}

func TestHTTPEnricherMissingFieldsAreEmptyValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"summary": "only a summary"}`))
	}))
	defer server.Close()

	e := NewHTTPEnricher(server.URL, time.Second)
	result := e.Enrich(context.Background(), "text")

	assert.Equal(t, "only a summary", result.Summary)
	assert.NotNil(t, result.Tags)
	assert.Empty(t, result.Tags)
	assert.NotNil(t, result.Flashcards)
	assert.Empty(t, result.Flashcards)
}

func TestHTTPEnricherNetworkFailureReturnsFallback(t *testing.T) {
	// Closed server: every request fails at the transport level.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	e := NewHTTPEnricher(server.URL, time.Second)
	result := e.Enrich(context.Background(), "short text")

	assert.Equal(t, models.Enrichment{
		Tags:       []string{},
		Summary:    "short text",
		Flashcards: []models.CardSeed{},
	}, result)
}

func TestHTTPEnricherNon2xxReturnsFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	e := NewHTTPEnricher(server.URL, time.Second)
	result := e.Enrich(context.Background(), "text")
	assert.Empty(t, result.Tags)
	assert.Equal(t, "text", result.Summary)
}

func TestHTTPEnricherMalformedResponseReturnsFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	e := NewHTTPEnricher(server.URL, time.Second)
	result := e.Enrich(context.Background(), "text")
	assert.Equal(t, Fallback("text"), result)
}

func TestFallbackTruncatesSummary(t *testing.T) {
	long := strings.Repeat("a", 200)
	result := Fallback(long)
	assert.Equal(t, strings.Repeat("a", SummaryLimit)+"...", result.Summary)
	assert.Empty(t, result.Tags)
	assert.Empty(t, result.Flashcards)

	exact := strings.Repeat("b", SummaryLimit)
	assert.Equal(t, exact, Fallback(exact).Summary, "no ellipsis when nothing was cut")

	assert.Equal(t, "short", Fallback("short").Summary)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"tags":[]}`, stripCodeFences("```json\n{\"tags\":[]}\n```"))
	assert.Equal(t, `{"tags":[]}`, stripCodeFences("```\n{\"tags\":[]}\n```"))
	assert.Equal(t, `{"tags":[]}`, stripCodeFences(`{"tags":[]}`))
}
