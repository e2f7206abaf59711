package models

import "time"

// Source identifies the media kind a note was imported from.
type Source string

const (
	SourcePDF   Source = "pdf"
	SourceImage Source = "image"
	SourceText  Source = "text"
)

// Note is a persisted study note assembled from an imported document.
type Note struct {
	// Core identifiers
	ID    string `json:"id"`    // Stable identifier, assigned once at creation
	Title string `json:"title"` // Display title, defaults to the source filename

	// Extracted content
	Content string   `json:"content"` // Full extracted text
	Source  Source   `json:"type"`    // Media kind the note was imported from
	Summary string   `json:"summary"` // Short summary from enrichment (or local fallback)
	Tags    []string `json:"tags"`    // Unique tag values, insertion order irrelevant

	// Flashcards embedded at creation time. These are a snapshot taken at
	// import; they do not track later edits to Content.
	Flashcards []Flashcard `json:"flashcards,omitempty"`

	// Flags
	Recent   bool `json:"recent"`
	Favorite bool `json:"favorite"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTag reports whether the note carries the given tag.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
