package processor

import (
	"context"
	"errors"

	"texnorm/internal/codec"
	"texnorm/internal/sizing"
)

// Scan loads every eligible file under root and reports the sizing decision
// for each without writing anything.
func Scan(ctx context.Context, root string, opts Options) ([]PlanEntry, PlanSummary, error) {
	var summary PlanSummary

	if opts.MaxDim == 0 {
		return nil, summary, &PreconditionError{Reason: "maximum dimension must be positive"}
	}
	absRoot, err := checkInputDir(root)
	if err != nil {
		return nil, summary, err
	}
	lib, err := openLibrary(opts)
	if err != nil {
		return nil, summary, err
	}
	defer lib.Close()

	var skipped []PlanEntry
	jobs, err := Discover(absRoot, "", func(rel string, err error) {
		skipped = append(skipped, PlanEntry{RelPath: rel, Err: err})
	})
	if err != nil {
		return nil, summary, &PreconditionError{Reason: "cannot read input directory", Err: err}
	}

	codecs := codec.NewSet(lib)
	entries := make([]PlanEntry, 0, len(jobs)+len(skipped))
	entries = append(entries, skipped...)
	summary.Skipped = len(skipped)
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return entries, summary, err
		}
		entry := PlanEntry{RelPath: job.RelPath, Kind: job.Kind}
		summary.Total++

		buf, err := load(codecs, job)
		if err != nil {
			entry.Err = err
			summary.Errors++
			entries = append(entries, entry)
			continue
		}
		entry.Original = buf.Dimensions()
		entry.Decision = sizing.Decide(buf.Width, buf.Height, opts.MaxDim)
		if entry.Decision.Needed {
			summary.Resize++
		}
		entries = append(entries, entry)
	}
	return entries, summary, nil
}

func load(codecs codec.Set, job Job) (codec.PixelBuffer, error) {
	loader, err := codecs.Loader(job.Kind)
	if err != nil {
		return codec.PixelBuffer{}, err
	}
	buf, err := loader.Load(job.Path)
	if err != nil {
		var cerr *codec.Error
		if errors.As(err, &cerr) {
			return codec.PixelBuffer{}, cerr.Err
		}
		return codec.PixelBuffer{}, err
	}
	return buf, nil
}
