//go:build darwin || freebsd || linux

package blp

import (
	"fmt"

	"github.com/ebitengine/purego"
)

func (n *Native) bind(path string) error {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return fmt.Errorf("blp: load %s: %w", path, err)
	}

	syms := []struct {
		name string
		fn   any
	}{
		{"blp_load_from_file", &n.loadFn},
		{"blp_free_image", &n.freeFn},
		{"blp_encode_file_to_blp", &n.encodeFn},
	}
	for _, s := range syms {
		addr, err := purego.Dlsym(handle, s.name)
		if err != nil {
			_ = purego.Dlclose(handle)
			return fmt.Errorf("blp: resolve %s in %s: %w", s.name, path, err)
		}
		purego.RegisterFunc(s.fn, addr)
	}

	n.release = func() error { return purego.Dlclose(handle) }
	return nil
}
