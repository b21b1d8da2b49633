package node

import (
	"context"
	"fmt"
	"log/slog"

	"gaianet-deploy/internal/execrun"
)

// Lifecycle runs the installed binary's subcommands against one instance
// directory. Each call blocks until the subcommand exits.
type Lifecycle struct {
	runner execrun.Runner
	logger *slog.Logger
}

// NewLifecycle creates a lifecycle driver.
func NewLifecycle(runner execrun.Runner, logger *slog.Logger) *Lifecycle {
	return &Lifecycle{runner: runner, logger: logger}
}

// Init initializes the node from a remote config URL.
func (l *Lifecycle) Init(ctx context.Context, dir, configURL string) error {
	l.logger.Info("initializing node", "dir", dir, "config", configURL)
	if err := l.runner.Run(ctx, dir, BinaryPath(dir), "init", "--config", configURL, "--base", dir); err != nil {
		return fmt.Errorf("gaianet init: %w", err)
	}
	return nil
}

// Configure sets the node's port and domain. Failure here is reported to the
// caller but the original scripts never treated it as fatal; the provisioner
// preserves that.
func (l *Lifecycle) Configure(ctx context.Context, dir, port, domain string) error {
	l.logger.Info("configuring node", "dir", dir, "port", port, "domain", domain)
	if err := l.runner.Run(ctx, dir, BinaryPath(dir), "config", "--base", dir, "--port", port, "--domain", domain); err != nil {
		return fmt.Errorf("gaianet config: %w", err)
	}
	return nil
}

// Start launches the node.
func (l *Lifecycle) Start(ctx context.Context, dir string) error {
	l.logger.Info("starting node", "dir", dir)
	if err := l.runner.Run(ctx, dir, BinaryPath(dir), "start", "--base", dir); err != nil {
		return fmt.Errorf("gaianet start: %w", err)
	}
	return nil
}

// Info prints the node's identity and address.
func (l *Lifecycle) Info(ctx context.Context, dir string) error {
	if err := l.runner.Run(ctx, dir, BinaryPath(dir), "info", "--base", dir); err != nil {
		return fmt.Errorf("gaianet info: %w", err)
	}
	return nil
}
