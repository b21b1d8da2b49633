package system

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"gaianet-deploy/internal/execrun"
)

func testDetector(fake *execrun.Fake) *Detector {
	d := NewDetector(fake, slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.getenv = func(string) string { return "" }
	d.readFile = func(string) ([]byte, error) { return nil, errors.New("no file") }
	d.glob = func(string) ([]string, error) { return nil, nil }
	return d
}

func TestHostClassify(t *testing.T) {
	tests := []struct {
		name    string
		virt    string
		virtErr error
		battery []string
		want    HostClass
	}{
		{name: "kvm guest is vps", virt: "kvm", want: HostVPS},
		{name: "hyperv guest is vps", virt: "microsoft", want: HostVPS},
		{name: "virt beats battery", virt: "qemu", battery: []string{"/sys/class/power_supply/BAT0"}, want: HostVPS},
		{name: "battery without virt is laptop", virt: "none", battery: []string{"/sys/class/power_supply/BAT0"}, want: HostLaptop},
		{name: "bare metal is desktop", virt: "none", want: HostDesktop},
		{name: "no detect-virt tool is desktop", virtErr: errors.New("not found"), want: HostDesktop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &execrun.Fake{
				Outputs: map[string]string{"systemd-detect-virt": tt.virt},
			}
			if tt.virtErr != nil {
				fake.Errors = map[string]error{"systemd-detect-virt": tt.virtErr}
			}
			d := testDetector(fake)
			d.glob = func(string) ([]string, error) { return tt.battery, nil }

			assert.Equal(t, tt.want, d.HostClassify(context.Background()))
		})
	}
}

func TestIsWSL(t *testing.T) {
	t.Run("env marker", func(t *testing.T) {
		d := testDetector(&execrun.Fake{})
		d.getenv = func(key string) string {
			if key == "WSL_DISTRO_NAME" {
				return "Ubuntu-24.04"
			}
			return ""
		}
		assert.True(t, d.IsWSL())
	})

	t.Run("proc version marker", func(t *testing.T) {
		d := testDetector(&execrun.Fake{})
		d.readFile = func(string) ([]byte, error) {
			return []byte("Linux version 5.15.167.4-microsoft-standard-WSL2"), nil
		}
		assert.True(t, d.IsWSL())
	})

	t.Run("plain linux", func(t *testing.T) {
		d := testDetector(&execrun.Fake{})
		d.readFile = func(string) ([]byte, error) {
			return []byte("Linux version 6.8.0-45-generic (buildd@lcy02)"), nil
		}
		assert.False(t, d.IsWSL())
	})
}

func TestHasGPU(t *testing.T) {
	ctx := context.Background()

	t.Run("nvidia-smi present", func(t *testing.T) {
		d := testDetector(&execrun.Fake{})
		assert.True(t, d.HasGPU(ctx))
	})

	t.Run("lspci fallback", func(t *testing.T) {
		fake := &execrun.Fake{
			Missing: []string{"nvidia-smi"},
			Outputs: map[string]string{
				"lspci": "01:00.0 VGA compatible controller: NVIDIA Corporation GA104 [GeForce RTX 3070]",
			},
		}
		assert.True(t, testDetector(fake).HasGPU(ctx))
	})

	t.Run("non-nvidia vga only", func(t *testing.T) {
		fake := &execrun.Fake{
			Missing: []string{"nvidia-smi"},
			Outputs: map[string]string{
				"lspci": "00:02.0 VGA compatible controller: Intel Corporation UHD Graphics 630",
			},
		}
		assert.False(t, testDetector(fake).HasGPU(ctx))
	})

	t.Run("no tools at all", func(t *testing.T) {
		fake := &execrun.Fake{
			Missing: []string{"nvidia-smi"},
			Errors:  map[string]error{"lspci": errors.New("not found")},
		}
		assert.False(t, testDetector(fake).HasGPU(ctx))
	})
}

func TestCUDAVersion(t *testing.T) {
	ctx := context.Background()

	t.Run("parses release line", func(t *testing.T) {
		fake := &execrun.Fake{
			Outputs: map[string]string{
				"nvcc": "nvcc: NVIDIA (R) Cuda compiler driver\nCuda compilation tools, release 12.8, V12.8.89",
			},
		}
		major, installed := testDetector(fake).CUDAVersion(ctx)
		assert.True(t, installed)
		assert.Equal(t, "12", major)
	})

	t.Run("nvcc missing", func(t *testing.T) {
		fake := &execrun.Fake{Missing: []string{"nvcc"}}
		_, installed := testDetector(fake).CUDAVersion(ctx)
		assert.False(t, installed)
	})

	t.Run("unsupported major", func(t *testing.T) {
		fake := &execrun.Fake{
			Outputs: map[string]string{
				"nvcc": "Cuda compilation tools, release 10.2, V10.2.89",
			},
		}
		major, ok := testDetector(fake).CUDASupported(ctx)
		assert.False(t, ok)
		assert.Equal(t, "10", major)
	})

	t.Run("supported major", func(t *testing.T) {
		fake := &execrun.Fake{
			Outputs: map[string]string{
				"nvcc": "Cuda compilation tools, release 11.8, V11.8.89",
			},
		}
		major, ok := testDetector(fake).CUDASupported(ctx)
		assert.True(t, ok)
		assert.Equal(t, "11", major)
	})
}
