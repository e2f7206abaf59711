package store

import (
	"sort"

	"notekit/pkg/models"
)

// AllDeck is the name of the synthetic group containing every canonical
// flashcard. It is always first in DeckGroups output.
const AllDeck = "all"

// DeckGroup is a named grouping of canonical flashcards.
type DeckGroup struct {
	Name  string
	Cards []models.Flashcard
}

// Deduplicate collapses flashcards with identical front/back content into a
// single canonical record. Records are visited in persisted order; the first
// occurrence of a front/back pair is retained and every later occurrence has
// its tag set unioned into the canonical record. The operation is idempotent
// and the resulting tag set does not depend on which duplicate came first.
func Deduplicate(cards []models.Flashcard) []models.Flashcard {
	canonical := make(map[string]int, len(cards))
	out := make([]models.Flashcard, 0, len(cards))

	for i := range cards {
		key := cards[i].DuplicateKey()
		if idx, ok := canonical[key]; ok {
			out[idx].Tags = unionTags(out[idx].Tags, cards[i].Tags)
			continue
		}
		card := cards[i]
		card.Tags = unionTags(nil, card.Tags)
		canonical[key] = len(out)
		out = append(out, card)
	}
	return out
}

// DeckGroups materializes the deduplicated per-deck view: one group per
// distinct deck value among canonical records, plus the "all" group holding
// every canonical record. "all" is always first, the rest are alphabetical.
func DeckGroups(cards []models.Flashcard) []DeckGroup {
	canonical := Deduplicate(cards)

	byDeck := make(map[string][]models.Flashcard)
	for i := range canonical {
		byDeck[canonical[i].Deck] = append(byDeck[canonical[i].Deck], canonical[i])
	}

	names := make([]string, 0, len(byDeck))
	for name := range byDeck {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]DeckGroup, 0, len(names)+1)
	groups = append(groups, DeckGroup{Name: AllDeck, Cards: canonical})
	for _, name := range names {
		groups = append(groups, DeckGroup{Name: name, Cards: byDeck[name]})
	}
	return groups
}

// unionTags appends the tags missing from base, keeping values unique.
func unionTags(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, t := range base {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range extra {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
