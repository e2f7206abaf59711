package pipeline

// State is the batch state machine position.
type State string

const (
	StateIdle               State = "idle"
	StateEngineInitializing State = "engine-initializing"
	StateProcessingFile     State = "processing-file"
	StateCompleted          State = "completed"
	StateFailed             State = "failed"
)

// Stage is the per-file sub-stage inside StateProcessingFile.
type Stage string

const (
	StageClassifying Stage = "classifying"
	StageExtracting  Stage = "extracting"
	StageEnriching   Stage = "enriching"
	StageRecorded    Stage = "recorded"
)

// Progress is a two-axis progress report: a human-readable status message
// for the file currently being processed plus a 0-100 number recomputed at
// stage granularity. For PDFs the number is 100*page/pageCount, recalculated
// on every page, so it is monotonically non-decreasing within one file and
// resets to 0 at the start of the next file.
type Progress struct {
	File    string
	Stage   Stage
	Message string
	Percent int
}

// Reporter observes batch progress. Implementations must not block; the
// pipeline calls them inline between stages.
type Reporter interface {
	Report(p Progress)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Progress)

// Report calls the wrapped function.
func (f ReporterFunc) Report(p Progress) { f(p) }

// NopReporter discards all progress reports.
var NopReporter Reporter = ReporterFunc(func(Progress) {})
