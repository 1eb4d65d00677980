// Package kernels holds the device kernel sources, one file per entry point
// named <entry>.cl, together with host implementations of the same kernels
// used by the mock backend.
package kernels

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Radix8 is the entry point of the radix-8 Stockham pass. Its arguments are
// (input buffer, output buffer, int32 block size, int32 thread count).
const Radix8 = "fft_radix8"

//go:embed *.cl
var sources embed.FS

// Path returns the source path for entry inside dir.
func Path(dir, entry string) string {
	return filepath.Join(dir, entry+".cl")
}

// Load returns the source text of entry. An empty dir selects the copy
// compiled into the binary.
func Load(dir, entry string) (string, error) {
	if dir == "" {
		data, err := sources.ReadFile(entry + ".cl")
		if err != nil {
			return "", errors.Wrapf(err, "loading embedded kernel %q", entry)
		}
		return string(data), nil
	}
	path := Path(dir, entry)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read_file: reading %s", path)
	}
	return string(data), nil
}
