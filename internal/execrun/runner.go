// Package execrun wraps external command execution so callers stay testable
// against stand-in binaries.
package execrun

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner abstracts subprocess execution. The default implementation shells
// out; tests substitute fakes.
type Runner interface {
	// Run executes a command with inherited stdout/stderr, optionally in dir.
	Run(ctx context.Context, dir string, name string, args ...string) error
	// Output executes a command and returns its combined trimmed output.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// LookPath reports where name resolves on PATH.
	LookPath(name string) (string, error)
}

// Exec is the exec.Command-backed Runner.
type Exec struct{}

func (Exec) Run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

func (Exec) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return strings.TrimSpace(buf.String()), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// MaybeSudo prefixes a command with sudo when the effective uid is not root.
func MaybeSudo(euid int, name string, args ...string) (string, []string) {
	if euid == 0 {
		return name, args
	}
	return "sudo", append([]string{name}, args...)
}
