package store

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"notekit/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(NewMemoryKV())
}

func TestAddNoteAssignsIDAndPrepends(t *testing.T) {
	s := newTestStore(t)

	first, err := s.AddNote(models.Note{Title: "first"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := s.AddNote(models.Note{ID: "custom", Title: "second"})
	require.NoError(t, err)
	assert.Equal(t, "custom", second.ID, "caller-supplied identifier must be kept")

	notes, err := s.Notes()
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].Title, "most recently added note must be first")
	assert.Equal(t, "first", notes[1].Title)
}

func TestUpdateNoteReplacesByIDAndIgnoresUnknown(t *testing.T) {
	s := newTestStore(t)

	note, err := s.AddNote(models.Note{Title: "before", Tags: []string{"a"}})
	require.NoError(t, err)

	note.Title = "after"
	note.Tags = []string{"b"}
	require.NoError(t, s.UpdateNote(note))

	notes, err := s.Notes()
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "after", notes[0].Title)
	assert.Equal(t, note.ID, notes[0].ID, "identifier is never regenerated on update")

	// Unknown identifier is a no-op.
	require.NoError(t, s.UpdateNote(models.Note{ID: "missing", Title: "ghost"}))
	notes, err = s.Notes()
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestDeleteNoteCascadesMatchingFlashcards(t *testing.T) {
	s := newTestStore(t)

	embedded := models.Flashcard{ID: "c1", Front: "Q1", Back: "A1", Deck: "bio"}
	note, err := s.AddNote(models.Note{
		Title:      "lecture",
		Flashcards: []models.Flashcard{embedded},
	})
	require.NoError(t, err)

	// The flat collection holds the embedded card plus an unrelated one and
	// a duplicate of the embedded pair from another import.
	_, err = s.AddFlashcard(embedded)
	require.NoError(t, err)
	_, err = s.AddFlashcard(models.Flashcard{ID: "c2", Front: "Q1", Back: "A1", Deck: "bio"})
	require.NoError(t, err)
	_, err = s.AddFlashcard(models.Flashcard{ID: "c3", Front: "Q2", Back: "A2", Deck: "chem"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteNote(note.ID))

	notes, err := s.Notes()
	require.NoError(t, err)
	assert.Empty(t, notes)

	cards, err := s.Flashcards()
	require.NoError(t, err)
	require.Len(t, cards, 1, "every card matching the embedded front/back pair must be gone")
	assert.Equal(t, "Q2", cards[0].Front)
}

func TestTagIndexIsUnionOfNoteTags(t *testing.T) {
	s := newTestStore(t)

	expectedIndex := func() []string {
		notes, err := s.Notes()
		require.NoError(t, err)
		seen := map[string]bool{}
		union := []string{}
		for _, n := range notes {
			for _, tag := range n.Tags {
				if !seen[tag] {
					seen[tag] = true
					union = append(union, tag)
				}
			}
		}
		sort.Strings(union)
		return union
	}

	check := func() {
		index, err := s.TagIndex()
		require.NoError(t, err)
		assert.Equal(t, expectedIndex(), index)
	}

	rng := rand.New(rand.NewSource(42))
	tagPool := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	var ids []string

	for i := 0; i < 100; i++ {
		tags := []string{}
		for _, tag := range tagPool {
			if rng.Intn(2) == 0 {
				tags = append(tags, tag)
			}
		}

		switch op := rng.Intn(3); {
		case op == 0 || len(ids) == 0:
			n, err := s.AddNote(models.Note{Title: "n", Tags: tags})
			require.NoError(t, err)
			ids = append(ids, n.ID)
		case op == 1:
			id := ids[rng.Intn(len(ids))]
			require.NoError(t, s.UpdateNote(models.Note{ID: id, Title: "n", Tags: tags}))
		default:
			idx := rng.Intn(len(ids))
			require.NoError(t, s.DeleteNote(ids[idx]))
			ids = append(ids[:idx], ids[idx+1:]...)
		}
		check()
	}
}

func TestSubscribeNotifiesOnEveryMutation(t *testing.T) {
	s := newTestStore(t)

	var calls int
	unsubscribe := s.Subscribe(func() { calls++ })

	note, err := s.AddNote(models.Note{Title: "n"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateNote(note))
	card, err := s.AddFlashcard(models.Flashcard{Front: "Q", Back: "A"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteFlashcard(card.ID))
	require.NoError(t, s.DeleteNote(note.ID))

	assert.Equal(t, 5, calls)

	unsubscribe()
	_, err = s.AddNote(models.Note{Title: "quiet"})
	require.NoError(t, err)
	assert.Equal(t, 5, calls, "unsubscribed observer must not be notified")
}

func TestFlashcardOpsDoNotTouchTagIndex(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddNote(models.Note{Title: "n", Tags: []string{"keep"}})
	require.NoError(t, err)

	_, err = s.AddFlashcard(models.Flashcard{Front: "Q", Back: "A", Tags: []string{"card-tag"}})
	require.NoError(t, err)

	index, err := s.TagIndex()
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, index, "flashcard tags are independent of the note tag index")
}

func TestFileKVRoundTrip(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	_, ok, err := kv.Get("notes")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set("notes", `[{"id":"1"}]`))
	value, ok, err := kv.Get("notes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, value)
}
