// Package node installs GaiaNet node instances and drives the installed
// binary through its lifecycle.
package node

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gaianet-deploy/internal/config"
	"gaianet-deploy/internal/download"
	"gaianet-deploy/internal/execrun"
	"gaianet-deploy/internal/system"
)

// BinaryName is the node binary the upstream installer drops under
// <base>/bin.
const BinaryName = "gaianet"

// Installer downloads and runs the upstream install script for one instance
// directory.
type Installer struct {
	runner   execrun.Runner
	client   *download.Client
	detector *system.Detector
	cfg      config.Installer
	logger   *slog.Logger
}

// NewInstaller creates an instance installer.
func NewInstaller(runner execrun.Runner, client *download.Client, detector *system.Detector, cfg config.Installer, logger *slog.Logger) *Installer {
	return &Installer{
		runner:   runner,
		client:   client,
		detector: detector,
		cfg:      cfg,
		logger:   logger,
	}
}

// plan is the resolved installer invocation for one instance.
type plan struct {
	tag       string
	ggmlMajor string // empty for the GPU-less path
}

func (i *Installer) resolve(ctx context.Context) plan {
	if major, ok := i.detector.CUDASupported(ctx); ok {
		return plan{tag: i.cfg.CUDAVersion, ggmlMajor: major}
	}
	return plan{tag: i.cfg.Version}
}

// ScriptURL returns the download URL for a release tag.
func (i *Installer) ScriptURL(tag string) string {
	return fmt.Sprintf("%s/%s/install.sh", i.cfg.BaseURL, tag)
}

// Install provisions one instance: downloads the release's install.sh into
// dir, marks it executable, and runs it scoped to dir with --base. When a
// supported CUDA toolchain is on PATH the CUDA release tag and --ggmlcuda
// are used instead of the plain ones. Returns the release tag that was used.
func (i *Installer) Install(ctx context.Context, dir string) (string, error) {
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("instance dir %s: %w", dir, err)
	}

	p := i.resolve(ctx)
	logger := i.logger.With("dir", dir, "tag", p.tag)

	scriptPath := filepath.Join(dir, "install.sh")
	logger.Info("downloading node installer", "url", i.ScriptURL(p.tag))
	if err := i.client.ToFile(ctx, i.ScriptURL(p.tag), scriptPath, 0o755); err != nil {
		return "", fmt.Errorf("download node installer: %w", err)
	}

	args := []string{"--base", dir}
	if p.ggmlMajor != "" {
		args = append(args, "--ggmlcuda", p.ggmlMajor)
		logger.Info("installing with cuda acceleration", "ggmlcuda", p.ggmlMajor)
	} else {
		logger.Info("installing without gpu acceleration")
	}

	if err := i.runner.Run(ctx, dir, scriptPath, args...); err != nil {
		return "", fmt.Errorf("run node installer: %w", err)
	}

	if _, err := os.Stat(BinaryPath(dir)); err != nil {
		return "", fmt.Errorf("installer did not produce %s: %w", BinaryPath(dir), err)
	}
	logger.Info("node installed")
	return p.tag, nil
}

// BinaryPath returns where the installer places the node binary.
func BinaryPath(dir string) string {
	return filepath.Join(dir, "bin", BinaryName)
}

// BinDir returns the instance's bin directory, the one appended to PATH.
func BinDir(dir string) string {
	return filepath.Join(dir, "bin")
}
