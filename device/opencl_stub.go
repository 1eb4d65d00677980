//go:build !opencl

package device

import "errors"

func init() {
	Register("opencl", func() (Backend, error) {
		return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
	})
}
