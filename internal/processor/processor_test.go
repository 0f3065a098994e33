package processor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texnorm/internal/blp"
	"texnorm/internal/blp/blptest"
	"texnorm/internal/logging"
	"texnorm/internal/sizing"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)

func testOptions(lib *blptest.Library) Options {
	return Options{
		MaxDim:      512,
		OpenLibrary: func() (blp.Library, error) { return lib, nil },
		Now:         func() time.Time { return fixedNow },
	}
}

func writeTGA(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, tga.Encode(f, img))
}

func writeBLP(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, blptest.WriteFile(path, img))
}

func writeRaw(t *testing.T, path string, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

// buildTree creates two conforming textures, one that needs resizing and a
// PNG that must be ignored.
func buildTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "textures")
	writeTGA(t, filepath.Join(root, "a.tga"), blptest.Gradient(64, 64))
	writeBLP(t, filepath.Join(root, "sub", "b.BLP"), blptest.Gradient(128, 128))
	writeTGA(t, filepath.Join(root, "sub", "deep", "c.tga"), blptest.Gradient(100, 50))
	writeRaw(t, filepath.Join(root, "sub", "ignored.png"), "not a texture")
	return root
}

func readLog(t *testing.T, summary Summary) string {
	t.Helper()
	b, err := os.ReadFile(summary.LogPath)
	require.NoError(t, err)
	return string(b)
}

func TestRunBatch(t *testing.T) {
	root := buildTree(t)
	lib := blptest.New()

	summary, err := Run(context.Background(), root, testOptions(lib), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Changed)
	assert.Equal(t, 0, summary.Errors)
	assert.Equal(t, root+"_output_20240506_070809", summary.OutputDir)
	assert.Equal(t, filepath.Join(summary.OutputDir, logging.FileName), summary.LogPath)
	assert.True(t, lib.Closed())

	for _, rel := range []string{"a.tga", filepath.Join("sub", "b.BLP"), filepath.Join("sub", "deep", "c.tga")} {
		assert.FileExists(t, filepath.Join(summary.OutputDir, rel))
	}
	assert.NoFileExists(t, filepath.Join(summary.OutputDir, "sub", "ignored.png"))

	want, _ := os.ReadFile(filepath.Join(root, "a.tga"))
	got, err := os.ReadFile(filepath.Join(summary.OutputDir, "a.tga"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	log := readLog(t, summary)
	assert.Contains(t, log, "[INFO] --- start ---")
	assert.Contains(t, log, "[INFO] target size: 512")
	assert.Contains(t, log, fmt.Sprintf("resized: %s | 100x50 -> 64x32 | width not power of two, height not power of two",
		filepath.Join("sub", "deep", "c.tga")))
	assert.Contains(t, log, "[INFO] total: 3")
	assert.Contains(t, log, "[INFO] changed: 1")
	assert.Contains(t, log, "[INFO] errors: 0")
	assert.NotContains(t, log, "a.tga")
	assert.True(t, strings.HasSuffix(log, "[INFO] errors: 0\n"))
}

func TestRunCorruptFileDoesNotStopBatch(t *testing.T) {
	root := buildTree(t)
	writeRaw(t, filepath.Join(root, "sub", "broken.blp"), "BLP2FAKE\x00\x00\x00")
	lib := blptest.New()

	summary, err := Run(context.Background(), root, testOptions(lib), nil)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Changed)
	assert.Equal(t, 1, summary.Errors)

	assert.NoFileExists(t, filepath.Join(summary.OutputDir, "sub", "broken.blp"))
	assert.FileExists(t, filepath.Join(summary.OutputDir, "a.tga"))
	assert.FileExists(t, filepath.Join(summary.OutputDir, "sub", "b.BLP"))
	assert.FileExists(t, filepath.Join(summary.OutputDir, "sub", "deep", "c.tga"))

	log := readLog(t, summary)
	assert.Contains(t, log, "[ERROR] error: "+filepath.Join("sub", "broken.blp")+" | ")
	assert.Contains(t, log, "[INFO] errors: 1")

	for _, line := range strings.Split(log, "\n") {
		if strings.Contains(line, "[ERROR]") {
			// once as the relative path, once inside the codec error
			assert.Equal(t, 2, strings.Count(line, "broken.blp"), line)
			assert.Contains(t, line, "native load returned error")
		}
	}
}

func TestRunResizesBLP(t *testing.T) {
	root := filepath.Join(t.TempDir(), "in")
	writeBLP(t, filepath.Join(root, "big.blp"), blptest.Gradient(300, 300))
	lib := blptest.New()
	opts := testOptions(lib)
	opts.MaxDim = 256
	opts.TempDir = t.TempDir()

	summary, err := Run(context.Background(), root, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Changed)

	calls := lib.Encodes()
	require.Len(t, calls, 1)
	assert.Equal(t, filepath.Join(summary.OutputDir, "big.blp"), calls[0].Dst)

	loaded, err := lib.Load(calls[0].Dst)
	require.NoError(t, err)
	assert.Equal(t, uint32(256), loaded.Width)
	assert.Equal(t, uint32(256), loaded.Height)

	entries, err := os.ReadDir(opts.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Contains(t, readLog(t, summary), "big.blp | 300x300 -> 256x256 | width exceeds target, height exceeds target")
}

func TestRunPreconditions(t *testing.T) {
	lib := blptest.New()

	t.Run("missing dir", func(t *testing.T) {
		_, err := Run(context.Background(), filepath.Join(t.TempDir(), "nope"), testOptions(lib), nil)
		var perr *PreconditionError
		require.True(t, errors.As(err, &perr))
	})

	t.Run("file instead of dir", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.tga")
		writeRaw(t, path, "x")
		_, err := Run(context.Background(), path, testOptions(lib), nil)
		var perr *PreconditionError
		require.True(t, errors.As(err, &perr))
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("library unavailable", func(t *testing.T) {
		root := buildTree(t)
		opts := testOptions(lib)
		opts.OpenLibrary = func() (blp.Library, error) {
			return nil, fmt.Errorf("%w: /opt/blp.dll", blp.ErrLibraryNotFound)
		}
		_, err := Run(context.Background(), root, opts, nil)
		var perr *PreconditionError
		require.True(t, errors.As(err, &perr))
		assert.True(t, errors.Is(err, blp.ErrLibraryNotFound))
		assert.NoDirExists(t, OutputDirName(root, fixedNow))
	})

	t.Run("zero max", func(t *testing.T) {
		opts := testOptions(lib)
		opts.MaxDim = 0
		_, err := Run(context.Background(), buildTree(t), opts, nil)
		var perr *PreconditionError
		require.True(t, errors.As(err, &perr))
	})
}

func TestRunParallelCountsAndUpdates(t *testing.T) {
	root := filepath.Join(t.TempDir(), "many")
	for i := 0; i < 12; i++ {
		w := 64
		if i%3 == 0 {
			w = 100
		}
		writeTGA(t, filepath.Join(root, fmt.Sprintf("d%d", i%4), fmt.Sprintf("t%02d.tga", i)), blptest.Gradient(w, 32))
	}
	writeRaw(t, filepath.Join(root, "bad.blp"), "garbage")

	opts := testOptions(blptest.New())
	opts.Workers = 4

	updates := make(chan ProgressUpdate, 16)
	var total ProgressUpdate
	var lines []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range updates {
			total.TotalDelta += u.TotalDelta
			total.ProcessedDelta += u.ProcessedDelta
			total.ChangedDelta += u.ChangedDelta
			total.ErrorDelta += u.ErrorDelta
			if u.Line != "" {
				lines = append(lines, u.Line)
			}
		}
	}()

	summary, err := Run(context.Background(), root, opts, updates)
	close(updates)
	<-done
	require.NoError(t, err)

	assert.Equal(t, Summary{
		Total:     13,
		Changed:   4,
		Errors:    1,
		OutputDir: summary.OutputDir,
		LogPath:   summary.LogPath,
	}, summary)
	assert.Equal(t, 13, total.TotalDelta)
	assert.Equal(t, 13, total.ProcessedDelta)
	assert.Equal(t, 4, total.ChangedDelta)
	assert.Equal(t, 1, total.ErrorDelta)

	log := readLog(t, summary)
	fileLines := strings.Split(strings.TrimSpace(log), "\n")
	require.Len(t, lines, len(fileLines))
	for i, line := range fileLines {
		assert.True(t, strings.HasSuffix(line, "] "+lines[i]), line)
	}
}

func TestRunCancelled(t *testing.T) {
	root := buildTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := Run(ctx, root, testOptions(blptest.New()), nil)
	if err != nil {
		assert.True(t, errors.Is(err, context.Canceled))
	}
	assert.LessOrEqual(t, summary.Total, 3)
}

func TestDiscover(t *testing.T) {
	root := buildTree(t)
	writeRaw(t, filepath.Join(root, "UPPER.TGA"), "x")

	jobs, err := Discover(root, "/out", nil)
	require.NoError(t, err)

	var rels []string
	for _, j := range jobs {
		rels = append(rels, j.RelPath)
		assert.Equal(t, filepath.Join("/out", j.RelPath), j.Dest)
		assert.Equal(t, filepath.Join(root, j.RelPath), j.Path)
	}
	assert.Equal(t, []string{
		"UPPER.TGA",
		"a.tga",
		filepath.Join("sub", "b.BLP"),
		filepath.Join("sub", "deep", "c.tga"),
	}, rels)
}

type unreadableDirFS struct {
	fstest.MapFS
	dir string
}

func (f unreadableDirFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == f.dir {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return f.MapFS.ReadDir(name)
}

func TestDiscoverSkipsUnreadableDirectory(t *testing.T) {
	fsys := unreadableDirFS{
		MapFS: fstest.MapFS{
			"a.tga":        {Data: []byte("a")},
			"locked/x.tga": {Data: []byte("x")},
			"z.tga":        {Data: []byte("z")},
		},
		dir: "locked",
	}

	var skipped []string
	jobs, err := discover(fsys, "/in", "/out", func(rel string, err error) {
		skipped = append(skipped, rel)
		assert.True(t, errors.Is(err, fs.ErrPermission))
	})
	require.NoError(t, err)

	var rels []string
	for _, j := range jobs {
		rels = append(rels, j.RelPath)
	}
	assert.Equal(t, []string{"a.tga", "z.tga"}, rels)
	assert.Equal(t, []string{"locked"}, skipped)
}

func TestDiscoverUnreadableRootFails(t *testing.T) {
	fsys := unreadableDirFS{MapFS: fstest.MapFS{"a.tga": {Data: []byte("a")}}, dir: "."}
	_, err := discover(fsys, "/in", "/out", nil)
	assert.True(t, errors.Is(err, fs.ErrPermission))
}

func TestRunSkipsUnreadableSubdirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("needs a platform and user that honour directory permissions")
	}
	root := filepath.Join(t.TempDir(), "in")
	writeTGA(t, filepath.Join(root, "a.tga"), blptest.Gradient(64, 64))
	writeTGA(t, filepath.Join(root, "z.tga"), blptest.Gradient(100, 50))
	locked := filepath.Join(root, "locked")
	writeTGA(t, filepath.Join(locked, "hidden.tga"), blptest.Gradient(8, 8))
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	summary, err := Run(context.Background(), root, testOptions(blptest.New()), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Changed)
	assert.Equal(t, 0, summary.Errors)

	log := readLog(t, summary)
	assert.Contains(t, log, "[WARN] skipped unreadable path: locked | ")
	assert.Contains(t, log, "[INFO] total: 2")
}

func TestOutputDirName(t *testing.T) {
	at := time.Date(2023, 12, 31, 23, 59, 58, 0, time.UTC)
	assert.Equal(t, filepath.Join("data", "tex")+"_output_20231231_235958", OutputDirName("data/tex/", at))
}

func TestScan(t *testing.T) {
	root := buildTree(t)
	writeRaw(t, filepath.Join(root, "zz.blp"), "junk")
	opts := testOptions(blptest.New())

	entries, summary, err := Scan(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, PlanSummary{Total: 4, Resize: 1, Errors: 1}, summary)
	require.Len(t, entries, 4)

	c := entries[2]
	assert.Equal(t, filepath.Join("sub", "deep", "c.tga"), c.RelPath)
	assert.Equal(t, sizing.Dimensions{Width: 100, Height: 50}, c.Original)
	assert.True(t, c.Decision.Needed)
	assert.Equal(t, sizing.Dimensions{Width: 64, Height: 32}, c.Decision.Target)

	assert.Error(t, entries[3].Err)
	assert.NoDirExists(t, OutputDirName(root, fixedNow))
}
