//go:build !darwin && !freebsd && !linux && !windows

package blp

import (
	"fmt"
	"runtime"
)

func (n *Native) bind(path string) error {
	return fmt.Errorf("blp: load %s: native libraries are not supported on %s", path, runtime.GOOS)
}
