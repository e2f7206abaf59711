// Package store is the persistence layer for notes, the derived tag index
// and the flashcard collection.
//
// Every mutating note operation performs a full read-modify-write cycle
// against the backing KV, recomputes and persists the tag index from the
// post-mutation collection, and notifies subscribers. Flashcard operations
// persist the flat flashcard collection independently and never touch the
// tag index. No optimistic-concurrency check is applied across processes;
// concurrent writers race with last-write-wins semantics.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"notekit/internal/logger"
	"notekit/pkg/models"
)

// Logical keys inside the backing KV.
const (
	keyNotes      = "notes"
	keyTags       = "tags"
	keyFlashcards = "flashcards"
)

// Store persists the note and flashcard collections over a KV substrate and
// broadcasts a change notification after every successful mutation.
type Store struct {
	kv  KV
	log zerolog.Logger

	mu      sync.Mutex
	subs    map[int]func()
	nextSub int
}

// New creates a store over the given backing KV.
func New(kv KV) *Store {
	return &Store{
		kv:   kv,
		log:  logger.WithComponent("store"),
		subs: make(map[int]func()),
	}
}

// Subscribe registers fn to be called after every successful mutation of
// notes, tags or flashcards. The returned function removes the subscription.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Notes returns the persisted note collection, most recently added first.
func (s *Store) Notes() ([]models.Note, error) {
	return s.loadNotes()
}

// AddNote persists a new note, assigning a time-derived identifier only when
// the caller did not supply one, and prepends it so the most recently added
// note is first. Returns the stored note.
func (s *Store) AddNote(note models.Note) (models.Note, error) {
	const op = "AddNote"

	if note.ID == "" {
		note.ID = strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	note.UpdatedAt = note.CreatedAt

	notes, err := s.loadNotes()
	if err != nil {
		return models.Note{}, fmt.Errorf("%s: %w", op, err)
	}
	notes = append([]models.Note{note}, notes...)

	if err := s.saveNotesAndIndex(notes); err != nil {
		return models.Note{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().
		Str("note_id", note.ID).
		Str("title", note.Title).
		Int("tags", len(note.Tags)).
		Msg("Note added")
	s.notify()
	return note, nil
}

// UpdateNote replaces the note with matching identifier. The identifier is
// never regenerated. Updating an unknown identifier is a no-op.
func (s *Store) UpdateNote(note models.Note) error {
	const op = "UpdateNote"

	notes, err := s.loadNotes()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	replaced := false
	for i := range notes {
		if notes[i].ID == note.ID {
			note.CreatedAt = notes[i].CreatedAt
			note.UpdatedAt = time.Now()
			notes[i] = note
			replaced = true
			break
		}
	}
	if !replaced {
		s.log.Debug().Str("note_id", note.ID).Msg("Update for unknown note ignored")
		return nil
	}

	if err := s.saveNotesAndIndex(notes); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().Str("note_id", note.ID).Msg("Note updated")
	s.notify()
	return nil
}

// DeleteNote removes the note with matching identifier and cascades deletion
// of any flashcard whose front/back pair matches one embedded in the deleted
// note. Deleting an unknown identifier is a no-op.
func (s *Store) DeleteNote(id string) error {
	const op = "DeleteNote"

	notes, err := s.loadNotes()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var deleted *models.Note
	kept := make([]models.Note, 0, len(notes))
	for i := range notes {
		if notes[i].ID == id && deleted == nil {
			n := notes[i]
			deleted = &n
			continue
		}
		kept = append(kept, notes[i])
	}
	if deleted == nil {
		s.log.Debug().Str("note_id", id).Msg("Delete for unknown note ignored")
		return nil
	}

	if err := s.saveNotesAndIndex(kept); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(deleted.Flashcards) > 0 {
		if err := s.cascadeDeleteFlashcards(deleted.Flashcards); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	s.log.Info().
		Str("note_id", id).
		Int("embedded_flashcards", len(deleted.Flashcards)).
		Msg("Note deleted")
	s.notify()
	return nil
}

// TagIndex returns the persisted derived tag index: the set of all tags
// across all notes, recomputed in full on every note mutation.
func (s *Store) TagIndex() ([]string, error) {
	raw, ok, err := s.kv.Get(keyTags)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("store: decode tag index: %w", err)
	}
	return tags, nil
}

// Flashcards returns the raw persisted flashcard collection, which may still
// contain duplicates from independent import events.
func (s *Store) Flashcards() ([]models.Flashcard, error) {
	return s.loadFlashcards()
}

// AddFlashcard appends a flashcard to the flat collection, assigning an
// identifier when absent.
func (s *Store) AddFlashcard(card models.Flashcard) (models.Flashcard, error) {
	const op = "AddFlashcard"

	if card.ID == "" {
		card.ID = models.NewFlashcardID()
	}

	cards, err := s.loadFlashcards()
	if err != nil {
		return models.Flashcard{}, fmt.Errorf("%s: %w", op, err)
	}
	cards = append(cards, card)

	if err := s.saveFlashcards(cards); err != nil {
		return models.Flashcard{}, fmt.Errorf("%s: %w", op, err)
	}

	s.notify()
	return card, nil
}

// UpdateFlashcard replaces the flashcard with matching identifier; no-op
// when the identifier is unknown.
func (s *Store) UpdateFlashcard(card models.Flashcard) error {
	const op = "UpdateFlashcard"

	cards, err := s.loadFlashcards()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	replaced := false
	for i := range cards {
		if cards[i].ID == card.ID {
			cards[i] = card
			replaced = true
			break
		}
	}
	if !replaced {
		return nil
	}

	if err := s.saveFlashcards(cards); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.notify()
	return nil
}

// DeleteFlashcard removes the flashcard with matching identifier; no-op when
// the identifier is unknown.
func (s *Store) DeleteFlashcard(id string) error {
	const op = "DeleteFlashcard"

	cards, err := s.loadFlashcards()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	kept := cards[:0]
	removed := false
	for i := range cards {
		if cards[i].ID == id {
			removed = true
			continue
		}
		kept = append(kept, cards[i])
	}
	if !removed {
		return nil
	}

	if err := s.saveFlashcards(kept); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.notify()
	return nil
}

// cascadeDeleteFlashcards removes every flashcard whose front/back pair
// matches one of the embedded cards.
func (s *Store) cascadeDeleteFlashcards(embedded []models.Flashcard) error {
	doomed := make(map[string]bool, len(embedded))
	for i := range embedded {
		doomed[embedded[i].DuplicateKey()] = true
	}

	cards, err := s.loadFlashcards()
	if err != nil {
		return err
	}

	kept := cards[:0]
	for i := range cards {
		if doomed[cards[i].DuplicateKey()] {
			continue
		}
		kept = append(kept, cards[i])
	}
	if len(kept) == len(cards) {
		return nil
	}
	return s.saveFlashcards(kept)
}

func (s *Store) loadNotes() ([]models.Note, error) {
	raw, ok, err := s.kv.Get(keyNotes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Note{}, nil
	}
	var notes []models.Note
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		return nil, fmt.Errorf("store: decode notes: %w", err)
	}
	return notes, nil
}

// saveNotesAndIndex persists the full note collection and the tag index
// recomputed from it.
func (s *Store) saveNotesAndIndex(notes []models.Note) error {
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("store: encode notes: %w", err)
	}
	if err := s.kv.Set(keyNotes, string(data)); err != nil {
		return err
	}

	index, err := json.Marshal(computeTagIndex(notes))
	if err != nil {
		return fmt.Errorf("store: encode tag index: %w", err)
	}
	return s.kv.Set(keyTags, string(index))
}

// computeTagIndex derives the tag index as a pure function of the note
// collection: the sorted set union of all notes' tags.
func computeTagIndex(notes []models.Note) []string {
	seen := make(map[string]bool)
	tags := []string{}
	for i := range notes {
		for _, t := range notes[i].Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

func (s *Store) loadFlashcards() ([]models.Flashcard, error) {
	raw, ok, err := s.kv.Get(keyFlashcards)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Flashcard{}, nil
	}
	var cards []models.Flashcard
	if err := json.Unmarshal([]byte(raw), &cards); err != nil {
		return nil, fmt.Errorf("store: decode flashcards: %w", err)
	}
	return cards, nil
}

func (s *Store) saveFlashcards(cards []models.Flashcard) error {
	data, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("store: encode flashcards: %w", err)
	}
	return s.kv.Set(keyFlashcards, string(data))
}
