// Package aptget wraps the system package manager.
package aptget

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gaianet-deploy/internal/execrun"
)

// BasePackages is the fixed dependency list installed before any node work.
var BasePackages = []string{
	"build-essential",
	"ca-certificates",
	"curl",
	"jq",
	"libgomp1",
	"lsof",
	"wget",
}

// Manager issues apt-get and dpkg commands, via sudo when not running as
// root.
type Manager struct {
	runner execrun.Runner
	logger *slog.Logger
	euid   func() int
}

// NewManager creates a Manager backed by the given runner.
func NewManager(runner execrun.Runner, logger *slog.Logger) *Manager {
	return &Manager{runner: runner, logger: logger, euid: os.Geteuid}
}

func (m *Manager) sudoWrap(name string, args ...string) (string, []string) {
	return execrun.MaybeSudo(m.euid(), name, args...)
}

// Update refreshes the package indices.
func (m *Manager) Update(ctx context.Context) error {
	m.logger.Info("updating package indices")
	name, args := m.sudoWrap("apt-get", "update")
	if err := m.runner.Run(ctx, "", name, args...); err != nil {
		return fmt.Errorf("apt-get update: %w", err)
	}
	return nil
}

// Install installs the named packages non-interactively.
func (m *Manager) Install(ctx context.Context, pkgs ...string) error {
	m.logger.Info("installing packages", "packages", pkgs)
	name, args := m.sudoWrap("apt-get", append([]string{"install", "-y"}, pkgs...)...)
	if err := m.runner.Run(ctx, "", name, args...); err != nil {
		return fmt.Errorf("apt-get install: %w", err)
	}
	return nil
}

// InstallDeb installs a local .deb package via dpkg.
func (m *Manager) InstallDeb(ctx context.Context, path string) error {
	m.logger.Info("installing local package", "path", path)
	name, args := m.sudoWrap("dpkg", "-i", path)
	if err := m.runner.Run(ctx, "", name, args...); err != nil {
		return fmt.Errorf("dpkg -i %s: %w", path, err)
	}
	return nil
}
