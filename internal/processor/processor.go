// Package processor runs a batch: it discovers textures under an input
// directory, converts each into a fresh timestamped output tree and keeps the
// run's counters and processing log.
package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"texnorm/internal/blp"
	"texnorm/internal/codec"
	"texnorm/internal/convert"
	"texnorm/internal/logging"
)

const reasonSeparator = ", "

// Run converts every eligible file under root. Per-file failures are logged
// and counted; only a *PreconditionError (or a cancelled ctx) is returned.
// updates may be nil.
func Run(ctx context.Context, root string, opts Options, updates chan<- ProgressUpdate) (Summary, error) {
	summary := Summary{}

	if opts.MaxDim == 0 {
		return summary, &PreconditionError{Reason: "maximum dimension must be positive"}
	}
	absRoot, err := checkInputDir(root)
	if err != nil {
		return summary, err
	}

	lib, err := openLibrary(opts)
	if err != nil {
		return summary, err
	}
	defer lib.Close()

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	outDir := OutputDirName(absRoot, now())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return summary, &PreconditionError{Reason: "cannot create output directory", Err: err}
	}
	summary.OutputDir = outDir

	log, err := logging.Open(filepath.Join(outDir, logging.FileName))
	if err != nil {
		return summary, &PreconditionError{Reason: "cannot create log file", Err: err}
	}
	defer log.Close()
	summary.LogPath = log.Path()
	if updates != nil {
		log.AddHook(func(e logging.Entry) {
			updates <- ProgressUpdate{Line: e.Text, Level: e.Level}
		})
	}

	log.Info("--- start ---")
	log.Info("input: %s", absRoot)
	log.Info("output: %s", outDir)
	log.Info("target size: %d", opts.MaxDim)

	jobs, err := Discover(absRoot, outDir, func(rel string, err error) {
		log.Warn("skipped unreadable path: %s | %v", rel, err)
	})
	if err != nil {
		log.Error("cannot read input directory: %v", err)
		return summary, &PreconditionError{Reason: "cannot read input directory", Err: err}
	}

	if updates != nil && len(jobs) > 0 {
		updates <- ProgressUpdate{TotalDelta: len(jobs)}
	}

	conv := convert.New(codec.NewSet(lib), log,
		convert.WithFilter(opts.Filter),
		convert.WithTempDir(opts.TempDir),
	)

	jobc := make(chan Job)
	results := make(chan Result)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			worker(jobc, results, conv, opts.MaxDim)
		}()
	}

	go func() {
		defer close(jobc)
		for _, job := range jobs {
			select {
			case jobc <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		summary.Total++
		update := ProgressUpdate{ProcessedDelta: 1}
		switch {
		case res.Err != nil:
			summary.Errors++
			update.ErrorDelta = 1
			log.Error("error: %s | %v", res.RelPath, describe(res.Err))
		case res.Outcome.Resized:
			summary.Changed++
			update.ChangedDelta = 1
			log.Info("resized: %s | %s -> %s | %s",
				res.RelPath, res.Outcome.Original, res.Outcome.Final, reasonText(res.Outcome.Reasons))
		}
		if updates != nil {
			updates <- update
		}
	}

	log.Info("--- end ---")
	log.Info("total: %d", summary.Total)
	log.Info("changed: %d", summary.Changed)
	log.Info("errors: %d", summary.Errors)

	if err := ctx.Err(); err != nil && summary.Total < len(jobs) {
		return summary, err
	}
	return summary, nil
}

func worker(jobs <-chan Job, results chan<- Result, conv *convert.Converter, maxDim uint32) {
	for job := range jobs {
		res := Result{Job: job}
		if err := os.MkdirAll(filepath.Dir(job.Dest), 0o755); err != nil {
			res.Err = err
			results <- res
			continue
		}
		res.Outcome, res.Err = conv.Convert(job.Path, job.Dest, maxDim)
		results <- res
	}
}

func checkInputDir(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", &PreconditionError{Reason: "no input directory given"}
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", &PreconditionError{Reason: "invalid input directory", Err: err}
	}
	if !info.IsDir() {
		return "", &PreconditionError{Reason: fmt.Sprintf("invalid input directory: %s is not a directory", root)}
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &PreconditionError{Reason: "invalid input directory", Err: err}
	}
	return absRoot, nil
}

func openLibrary(opts Options) (blp.Library, error) {
	if opts.OpenLibrary == nil {
		return nil, &PreconditionError{Reason: "no BLP library configured"}
	}
	lib, err := opts.OpenLibrary()
	if err != nil {
		return nil, &PreconditionError{Reason: "cannot load BLP library", Err: err}
	}
	return lib, nil
}

// describe drops the ConversionError prefix; the log line already names the
// file.
func describe(err error) error {
	var cerr *convert.ConversionError
	if errors.As(err, &cerr) {
		return cerr.Err
	}
	return err
}

func reasonText(reasons []string) string {
	if len(reasons) == 0 {
		return "resized"
	}
	return strings.Join(reasons, reasonSeparator)
}
