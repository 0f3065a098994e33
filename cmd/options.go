package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"texnorm/internal/blp"
	"texnorm/internal/codec"
	"texnorm/internal/processor"
	"texnorm/internal/sizing"
)

const libEnv = "TEXNORM_BLP_LIB"

// TargetSizes are the sizes offered in help text; any power of two is accepted.
var TargetSizes = []int{32, 64, 128, 256, 512}

type commonFlags struct {
	maxDim  int
	libPath string
	filter  string
	workers int
}

func (f *commonFlags) register(cmd *cobra.Command, withWorkers bool) {
	cmd.Flags().IntVarP(&f.maxDim, "max", "m", 512, fmt.Sprintf("largest allowed width/height, a power of two (e.g. %v)", TargetSizes))
	cmd.Flags().StringVar(&f.libPath, "lib", "", "path to the native BLP library (default: $"+libEnv+" or "+blp.DefaultLibraryName()+" next to the executable)")
	cmd.Flags().StringVar(&f.filter, "filter", "lanczos", "resampling filter: lanczos or catmullrom")
	if withWorkers {
		cmd.Flags().IntVarP(&f.workers, "workers", "w", 1, "number of files converted concurrently")
	}
}

func (f *commonFlags) options() (processor.Options, error) {
	if f.maxDim < 1 || f.maxDim > 1<<30 || !sizing.IsPow2(uint32(f.maxDim)) {
		return processor.Options{}, fmt.Errorf("--max must be a power of two, got %d", f.maxDim)
	}
	if f.workers < 0 {
		return processor.Options{}, fmt.Errorf("--workers must not be negative, got %d", f.workers)
	}
	filter, err := codec.ParseFilter(f.filter)
	if err != nil {
		return processor.Options{}, err
	}
	libPath, err := f.resolveLibPath()
	if err != nil {
		return processor.Options{}, err
	}

	return processor.Options{
		MaxDim:  uint32(f.maxDim),
		Filter:  filter,
		Workers: f.workers,
		OpenLibrary: func() (blp.Library, error) {
			return blp.Open(libPath)
		},
	}, nil
}

func (f *commonFlags) resolveLibPath() (string, error) {
	if f.libPath != "" {
		return f.libPath, nil
	}
	if env := os.Getenv(libEnv); env != "" {
		return env, nil
	}
	return blp.DefaultLibraryPath()
}
