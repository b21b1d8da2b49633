// Package provision runs the full deploy: system packages, optional CUDA
// toolkit, then 1-4 node instances, strictly in sequence.
package provision

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"gaianet-deploy/internal"
	"gaianet-deploy/internal/aptget"
	"gaianet-deploy/internal/config"
	"gaianet-deploy/internal/cuda"
	"gaianet-deploy/internal/node"
	"gaianet-deploy/internal/shellenv"
	"gaianet-deploy/internal/system"
	"gaianet-deploy/internal/ui"
)

const Prompt = "How many GaiaNet instances do you want to install? (1-4): "

var instanceCountRe = regexp.MustCompile(`^[1-4]$`)

// ParseInstanceCount validates raw user input for the instance count.
// Anything outside {1,2,3,4} is rejected.
func ParseInstanceCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if !instanceCountRe.MatchString(raw) {
		return 0, fmt.Errorf("invalid instance count %q: must be a number between 1 and 4", raw)
	}
	return strconv.Atoi(raw)
}

// PromptInstanceCount asks on out and reads one line from in.
func PromptInstanceCount(in io.Reader, out io.Writer) (int, error) {
	fmt.Fprint(out, Prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("read instance count: %w", err)
	}
	return ParseInstanceCount(line)
}

// Provisioner wires every step of a deploy run together.
type Provisioner struct {
	Config   config.Config
	Detector *system.Detector
	Apt      *aptget.Manager
	CUDA     *cuda.Installer
	Nodes    *node.Installer
	Life     *node.Lifecycle
	Logger   *slog.Logger
	Printer  ui.Printer

	// Home is the directory instance dirs are created under.
	Home string
	// SkipDeps and SkipCUDA bypass the system-wide steps.
	SkipDeps bool
	SkipCUDA bool
}

// Run provisions count instances. Completed instances are never rolled back
// when a later one fails; the error aborts the rest of the run, matching the
// original all-or-nothing-from-here behavior.
func (p *Provisioner) Run(ctx context.Context, count int) error {
	runID := uuid.NewString()
	logger := p.Logger.With("run_id", runID)
	logger.Info("starting deploy", "instances", count)

	if p.SkipDeps {
		p.Printer.Dim("skipping system package installation")
	} else {
		p.Printer.Step("Installing system packages")
		if err := p.Apt.Update(ctx); err != nil {
			return err
		}
		if err := p.Apt.Install(ctx, aptget.BasePackages...); err != nil {
			return err
		}
	}

	wsl := p.Detector.IsWSL()
	hasGPU := p.Detector.HasGPU(ctx)
	class := p.Detector.HostClassify(ctx)
	logger.Info("environment detected", "wsl", wsl, "gpu", hasGPU, "class", class)
	p.Printer.Step("Host: %s (wsl=%v, gpu=%v)", class, wsl, hasGPU)

	if hasGPU && !p.SkipCUDA {
		p.Printer.Step("Ensuring CUDA toolkit %s", p.CUDA.ToolkitVersion)
		if err := p.CUDA.EnsureToolkit(ctx, wsl); err != nil {
			return fmt.Errorf("cuda setup: %w", err)
		}
	}

	configURL := node.SelectConfigURL(p.Config.Configs, class, hasGPU)
	logger.Info("selected node config", "url", configURL)

	for i := 1; i <= count; i++ {
		if err := p.provisionInstance(ctx, logger, runID, i, configURL); err != nil {
			return fmt.Errorf("instance %d: %w", i, err)
		}
	}

	p.Printer.Success("%d instance(s) provisioned", count)
	return nil
}

func (p *Provisioner) provisionInstance(ctx context.Context, logger *slog.Logger, runID string, i int, configURL string) error {
	logger = logger.With("instance", i)
	dir := internal.InstanceDir(p.Home, i)
	port := node.Port(p.Config.Network.PortPrefix, i)

	p.Printer.Title("Instance %d: %s (port %s)", i, dir, port)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tag, err := p.Nodes.Install(ctx, dir)
	if err != nil {
		return err
	}

	added, err := shellenv.AppendPATHEntry(internal.ShellRCPath(p.Home), node.BinDir(dir))
	if err != nil {
		return fmt.Errorf("update shell startup file: %w", err)
	}
	if added {
		logger.Info("added PATH entry", "dir", node.BinDir(dir))
	}
	if err := os.Setenv("PATH", node.BinDir(dir)+":"+os.Getenv("PATH")); err != nil {
		return err
	}

	if err := p.Life.Init(ctx, dir, configURL); err != nil {
		return err
	}
	// The one step whose failure has never been fatal.
	if err := p.Life.Configure(ctx, dir, port, p.Config.Network.Domain); err != nil {
		logger.Warn("gaianet config failed, continuing", "error", err)
	}
	if err := p.Life.Start(ctx, dir); err != nil {
		return err
	}
	if err := p.Life.Info(ctx, dir); err != nil {
		return err
	}

	rec := &node.Record{
		RunID:         runID,
		Instance:      i,
		Port:          port,
		ConfigURL:     configURL,
		InstallerTag:  tag,
		ProvisionedAt: time.Now().UTC(),
	}
	if err := node.SaveRecord(dir, rec); err != nil {
		logger.Warn("could not write instance record", "error", err)
	}

	p.Printer.Success("instance %d running on port %s", i, port)
	return nil
}
