package processor

import (
	"time"

	"texnorm/internal/blp"
	"texnorm/internal/codec"
	"texnorm/internal/convert"
	"texnorm/internal/logging"
	"texnorm/internal/sizing"
	"texnorm/pkg/texutil"
)

type Options struct {
	// MaxDim is the largest allowed width or height, normally a power of two.
	MaxDim uint32
	Filter codec.Filter
	// Workers is the number of files converted concurrently; values below 1
	// mean 1.
	Workers int
	// OpenLibrary loads the native BLP library. It is called once per run.
	OpenLibrary func() (blp.Library, error)
	// Now stamps the output directory name; time.Now when nil.
	Now func() time.Time
	// TempDir holds BLP intermediates; the system temp dir when empty.
	TempDir string
}

type Job struct {
	Path    string
	RelPath string
	Dest    string
	Kind    texutil.Kind
}

type Result struct {
	Job
	Outcome convert.Outcome
	Err     error
}

type Summary struct {
	Total     int
	Changed   int
	Errors    int
	OutputDir string
	LogPath   string
}

// PlanEntry is one file's sizing decision as reported by Scan. Entries for
// unreadable paths carry only RelPath and Err.
type PlanEntry struct {
	RelPath  string
	Kind     texutil.Kind
	Original sizing.Dimensions
	Decision sizing.Decision
	Err      error
}

type PlanSummary struct {
	Total  int
	Resize int
	Errors int
	// Skipped counts unreadable paths left out of the walk.
	Skipped int
}

type ProgressUpdate struct {
	TotalDelta     int
	ProcessedDelta int
	ChangedDelta   int
	ErrorDelta     int
	// Line carries a log entry when non-empty.
	Line  string
	Level logging.Level
}
