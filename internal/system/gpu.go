package system

import (
	"context"
	"strings"
)

// HasGPU detects an NVIDIA GPU on the host system. It tries the driver query
// tool first and falls back to a PCI bus scan.
func (d *Detector) HasGPU(ctx context.Context) bool {
	if d.hasNvidiaSMI() {
		d.logger.Info("gpu detected", "via", "nvidia-smi")
		return true
	}
	if d.hasNvidiaPCIDevice(ctx) {
		d.logger.Info("gpu detected", "via", "lspci")
		return true
	}
	d.logger.Info("no gpu detected")
	return false
}

// hasNvidiaSMI checks if nvidia-smi is available
func (d *Detector) hasNvidiaSMI() bool {
	_, err := d.runner.LookPath("nvidia-smi")
	return err == nil
}

// hasNvidiaPCIDevice scans the PCI bus for an NVIDIA VGA or 3D controller
func (d *Detector) hasNvidiaPCIDevice(ctx context.Context) bool {
	out, err := d.runner.Output(ctx, "lspci")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "nvidia") {
			continue
		}
		if strings.Contains(lower, "vga") || strings.Contains(lower, "3d controller") {
			return true
		}
	}
	return false
}
