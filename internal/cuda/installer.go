// Package cuda installs the NVIDIA CUDA toolkit system-wide from the pinned
// NVIDIA apt repository.
package cuda

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gaianet-deploy/internal/aptget"
	"gaianet-deploy/internal/download"
	"gaianet-deploy/internal/execrun"
	"gaianet-deploy/internal/shellenv"
	"gaianet-deploy/internal/system"
)

const (
	pinDest     = "/etc/apt/preferences.d/cuda-repository-pin-600"
	keyringDest = "/usr/share/keyrings/"
	repoBase    = "https://developer.download.nvidia.com/compute/cuda"

	// Driver bundled with the 12.8.0 local installer for plain Ubuntu.
	// The WSL package carries no driver; Windows supplies it.
	driverComponent = "570.86.10"
)

// repoFiles is the (pin file, pin URL, package file, package URL) quadruple
// selected by the WSL flag.
type repoFiles struct {
	pinFile string
	pinURL  string
	debFile string
	debURL  string
}

func filesFor(wsl bool, toolkitVersion string) repoFiles {
	dashed := strings.ReplaceAll(toolkitVersion, ".", "-") // 12.8 -> 12-8
	patch := toolkitVersion + ".0"

	if wsl {
		deb := fmt.Sprintf("cuda-repo-wsl-ubuntu-%s-local_%s-1_amd64.deb", dashed, patch)
		return repoFiles{
			pinFile: "cuda-wsl-ubuntu.pin",
			pinURL:  repoBase + "/repos/wsl-ubuntu/x86_64/cuda-wsl-ubuntu.pin",
			debFile: deb,
			debURL:  fmt.Sprintf("%s/%s/local_installers/%s", repoBase, patch, deb),
		}
	}
	deb := fmt.Sprintf("cuda-repo-ubuntu2404-%s-local_%s-%s-1_amd64.deb", dashed, patch, driverComponent)
	return repoFiles{
		pinFile: "cuda-ubuntu2404.pin",
		pinURL:  repoBase + "/repos/ubuntu2404/x86_64/cuda-ubuntu2404.pin",
		debFile: deb,
		debURL:  fmt.Sprintf("%s/%s/local_installers/%s", repoBase, patch, deb),
	}
}

// Installer drives the system-wide toolkit installation.
type Installer struct {
	runner   execrun.Runner
	apt      *aptget.Manager
	client   *download.Client
	detector *system.Detector
	logger   *slog.Logger

	// ToolkitVersion is the major.minor toolkit to install, e.g. "12.8".
	ToolkitVersion string
	// WorkDir receives downloaded pin and package files.
	WorkDir string

	profilePath string
	euid        func() int
	glob        func(string) ([]string, error)
}

// NewInstaller creates a toolkit installer.
func NewInstaller(runner execrun.Runner, apt *aptget.Manager, client *download.Client, detector *system.Detector, logger *slog.Logger, toolkitVersion string) *Installer {
	return &Installer{
		runner:         runner,
		apt:            apt,
		client:         client,
		detector:       detector,
		logger:         logger,
		ToolkitVersion: toolkitVersion,
		WorkDir:        os.TempDir(),
		profilePath:    shellenv.CUDAProfilePath,
		euid:           os.Geteuid,
		glob:           filepath.Glob,
	}
}

// EnsureToolkit makes the CUDA toolkit available: if nvcc already reports
// the target major version nothing happens; if the profile fragment exists
// the environment is re-exported into this process; otherwise the toolkit is
// installed from the NVIDIA repository. Any install step failing is fatal to
// the caller.
func (i *Installer) EnsureToolkit(ctx context.Context, wsl bool) error {
	targetMajor := strings.SplitN(i.ToolkitVersion, ".", 2)[0]

	if major, ok := i.detector.CUDAVersion(ctx); ok && major == targetMajor {
		i.logger.Info("cuda toolkit already active", "major", major)
		return nil
	}

	if _, err := os.Stat(i.profilePath); err == nil {
		i.logger.Info("cuda profile present, re-exporting environment", "path", i.profilePath)
		if err := shellenv.ExportCUDAEnv(i.ToolkitVersion); err != nil {
			return fmt.Errorf("export cuda environment: %w", err)
		}
		if major, ok := i.detector.CUDAVersion(ctx); ok && major == targetMajor {
			return nil
		}
		// fragment exists but the toolkit does not answer; fall through
	}

	return i.install(ctx, wsl)
}

func (i *Installer) install(ctx context.Context, wsl bool) error {
	files := filesFor(wsl, i.ToolkitVersion)
	i.logger.Info("installing cuda toolkit", "version", i.ToolkitVersion, "wsl", wsl, "package", files.debFile)

	pinPath := filepath.Join(i.WorkDir, files.pinFile)
	if err := i.client.ToFile(ctx, files.pinURL, pinPath, 0o644); err != nil {
		return fmt.Errorf("download repository pin: %w", err)
	}
	name, args := execrun.MaybeSudo(i.euid(), "mv", pinPath, pinDest)
	if err := i.runner.Run(ctx, "", name, args...); err != nil {
		return fmt.Errorf("install repository pin: %w", err)
	}

	debPath := filepath.Join(i.WorkDir, files.debFile)
	if err := os.Remove(debPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale package %s: %w", debPath, err)
	}
	if err := i.client.ToFile(ctx, files.debURL, debPath, 0o644); err != nil {
		return fmt.Errorf("download cuda repository package: %w", err)
	}
	if err := i.apt.InstallDeb(ctx, debPath); err != nil {
		return fmt.Errorf("install cuda repository package: %w", err)
	}

	if err := i.installKeyring(ctx); err != nil {
		return err
	}

	if err := i.apt.Update(ctx); err != nil {
		return fmt.Errorf("refresh package indices: %w", err)
	}
	toolkitPkg := "cuda-toolkit-" + strings.ReplaceAll(i.ToolkitVersion, ".", "-")
	if err := i.apt.Install(ctx, toolkitPkg); err != nil {
		return fmt.Errorf("install %s: %w", toolkitPkg, err)
	}

	if err := i.writeProfile(ctx); err != nil {
		return err
	}
	i.logger.Info("cuda toolkit installed", "version", i.ToolkitVersion)
	return nil
}

// installKeyring copies the keyring the repository package drops under
// /var/cuda-repo-* into the apt keyring directory.
func (i *Installer) installKeyring(ctx context.Context) error {
	matches, err := i.glob("/var/cuda-repo-*/cuda-*-keyring.gpg")
	if err != nil || len(matches) == 0 {
		return fmt.Errorf("locate cuda keyring: no match under /var/cuda-repo-*")
	}
	for _, keyring := range matches {
		name, args := execrun.MaybeSudo(i.euid(), "cp", keyring, keyringDest)
		if err := i.runner.Run(ctx, "", name, args...); err != nil {
			return fmt.Errorf("install cuda keyring %s: %w", keyring, err)
		}
	}
	return nil
}

func (i *Installer) writeProfile(ctx context.Context) error {
	if i.euid() == 0 {
		if err := shellenv.WriteCUDAProfile(i.profilePath, i.ToolkitVersion); err != nil {
			return err
		}
		return nil
	}
	// Non-root: stage the fragment and move it into place with sudo, then
	// export into this process.
	staged := filepath.Join(i.WorkDir, "cuda.sh")
	if err := os.WriteFile(staged, []byte(shellenv.CUDAProfile(i.ToolkitVersion)), 0o644); err != nil {
		return fmt.Errorf("stage cuda profile: %w", err)
	}
	name, args := execrun.MaybeSudo(i.euid(), "mv", staged, i.profilePath)
	if err := i.runner.Run(ctx, "", name, args...); err != nil {
		return fmt.Errorf("install cuda profile: %w", err)
	}
	return shellenv.ExportCUDAEnv(i.ToolkitVersion)
}
