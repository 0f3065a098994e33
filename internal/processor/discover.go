package processor

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"texnorm/pkg/texutil"
)

// Discover walks root and returns the jobs for every .blp and .tga file
// (extension case-insensitive), in lexical order of their relative paths.
// Each job's Dest mirrors the relative path under outDir.
//
// Entries below root that cannot be read are skipped and reported to skip,
// which may be nil; only a failure to read root itself is returned.
func Discover(root, outDir string, skip func(rel string, err error)) ([]Job, error) {
	return discover(os.DirFS(root), root, outDir, skip)
}

func discover(fsys fs.FS, root, outDir string, skip func(rel string, err error)) ([]Job, error) {
	var jobs []Job
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == "." {
				return walkErr
			}
			if skip != nil {
				skip(filepath.FromSlash(path), walkErr)
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		kind := texutil.KindFromPath(path)
		if kind == texutil.KindUnknown {
			return nil
		}
		rel := filepath.FromSlash(path)
		jobs = append(jobs, Job{
			Path:    filepath.Join(root, rel),
			RelPath: rel,
			Dest:    filepath.Join(outDir, rel),
			Kind:    kind,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].RelPath < jobs[j].RelPath })
	return jobs, nil
}

// OutputDirName returns the sibling directory a run started at t writes to:
// "<input>_output_YYYYMMDD_HHMMSS".
func OutputDirName(inputDir string, t time.Time) string {
	return filepath.Clean(inputDir) + "_output_" + t.Format("20060102_150405")
}
