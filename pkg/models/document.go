package models

// Document is a transient batch input: raw bytes plus the metadata needed to
// classify them. Documents exist only for the duration of one import batch
// and are never persisted.
type Document struct {
	Name string // Original filename
	MIME string // Declared media kind; may be empty, in which case content is sniffed
	Data []byte // Raw payload
}

// Size returns the payload size in bytes.
func (d *Document) Size() int64 { return int64(len(d.Data)) }

// Enrichment is the structured derived data produced for an extracted text:
// tags, a short summary and flashcard seeds. A zero Enrichment is valid and
// means "nothing derived".
type Enrichment struct {
	Tags       []string   `json:"tags"`
	Summary    string     `json:"summary"`
	Flashcards []CardSeed `json:"flashcards"`
}

// CardSeed is a front/back pair proposed by the enrichment service before it
// is materialized into a Flashcard.
type CardSeed struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}
