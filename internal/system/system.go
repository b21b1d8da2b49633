// Package system probes the host environment: WSL, GPU, CUDA toolkit, and
// the host class that drives node config selection.
//
// All probes are best-effort. A missing tool or file is a negative result,
// never an error.
package system

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gaianet-deploy/internal/execrun"
)

// HostClass categorizes the machine for node config selection.
type HostClass string

const (
	HostVPS     HostClass = "vps"
	HostLaptop  HostClass = "laptop"
	HostDesktop HostClass = "desktop"
)

// Hypervisor names reported by systemd-detect-virt that mark a VPS. WSL is
// deliberately absent; a WSL laptop is still a laptop.
var vpsVirtNames = map[string]bool{
	"kvm":       true,
	"qemu":      true,
	"vmware":    true,
	"microsoft": true,
	"xen":       true,
	"oracle":    true,
	"amazon":    true,
	"openvz":    true,
	"lxc":       true,
}

// Detector probes the host. The hook fields default to the real OS calls and
// are overridden in tests.
type Detector struct {
	runner execrun.Runner
	logger *slog.Logger

	getenv   func(string) string
	readFile func(string) ([]byte, error)
	glob     func(string) ([]string, error)
}

// NewDetector creates a Detector backed by the given runner.
func NewDetector(runner execrun.Runner, logger *slog.Logger) *Detector {
	return &Detector{
		runner:   runner,
		logger:   logger,
		getenv:   os.Getenv,
		readFile: os.ReadFile,
		glob:     filepath.Glob,
	}
}

// IsWSL reports whether the host is a WSL distribution.
func (d *Detector) IsWSL() bool {
	if d.getenv("WSL_DISTRO_NAME") != "" || d.getenv("WSL_INTEROP") != "" {
		return true
	}
	version, err := d.readFile("/proc/version")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(version)), "microsoft")
}

// HostClassify determines the host class. Virtualization beats battery
// presence, which beats the desktop default.
func (d *Detector) HostClassify(ctx context.Context) HostClass {
	if virt, err := d.runner.Output(ctx, "systemd-detect-virt"); err == nil {
		if vpsVirtNames[strings.TrimSpace(virt)] {
			d.logger.Info("host classified by virtualization", "virt", virt)
			return HostVPS
		}
	}
	if d.hasBattery() {
		d.logger.Info("host classified by battery presence")
		return HostLaptop
	}
	return HostDesktop
}

func (d *Detector) hasBattery() bool {
	matches, err := d.glob("/sys/class/power_supply/BAT*")
	if err != nil {
		return false
	}
	return len(matches) > 0
}

// Report is the full detection result, printed by the doctor command.
type Report struct {
	WSL       bool
	GPU       bool
	CUDAMajor string
	Class     HostClass
}

// Detect runs every probe once.
func (d *Detector) Detect(ctx context.Context) Report {
	major, _ := d.CUDAVersion(ctx)
	return Report{
		WSL:       d.IsWSL(),
		GPU:       d.HasGPU(ctx),
		CUDAMajor: major,
		Class:     d.HostClassify(ctx),
	}
}
