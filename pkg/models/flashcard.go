package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Flashcard is a question/answer pair collected independently of notes.
//
// Two flashcards are duplicates of each other iff their Front and Back text
// are byte-identical. Duplicates may exist in the persisted collection (one
// per import event); deduplication is a read-side concern.
type Flashcard struct {
	ID    string   `json:"id"`   // Unique across the whole collection
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Deck  string   `json:"deck"` // First enrichment tag, or the source-kind label
	Tags  []string `json:"tags"`
}

// NewFlashcardID derives a collection-unique flashcard identifier from the
// current time plus a random component.
func NewFlashcardID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.NewString()[:8])
}

// DuplicateKey returns the identity under which flashcards are considered
// duplicates of each other.
func (f *Flashcard) DuplicateKey() string {
	return f.Front + "\x00" + f.Back
}
