package system

import (
	"context"
	"regexp"
)

var nvccReleaseRe = regexp.MustCompile(`release (\d+)\.(\d+)`)

// CUDAVersion reports the CUDA toolkit major version from nvcc, if any.
// A missing or unparseable nvcc is a negative result.
func (d *Detector) CUDAVersion(ctx context.Context) (major string, installed bool) {
	if _, err := d.runner.LookPath("nvcc"); err != nil {
		return "", false
	}
	out, err := d.runner.Output(ctx, "nvcc", "--version")
	if err != nil {
		return "", false
	}
	m := nvccReleaseRe.FindStringSubmatch(out)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CUDASupported reports whether the detected CUDA major version is one the
// node installer accepts (11 or 12).
func (d *Detector) CUDASupported(ctx context.Context) (major string, ok bool) {
	major, installed := d.CUDAVersion(ctx)
	if !installed {
		return "", false
	}
	if major != "11" && major != "12" {
		return major, false
	}
	return major, true
}
