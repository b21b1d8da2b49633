package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gaianet-deploy/internal"
	"gaianet-deploy/internal/aptget"
	"gaianet-deploy/internal/config"
	"gaianet-deploy/internal/cuda"
	"gaianet-deploy/internal/download"
	"gaianet-deploy/internal/execrun"
	"gaianet-deploy/internal/logging"
	"gaianet-deploy/internal/node"
	"gaianet-deploy/internal/provision"
	"gaianet-deploy/internal/system"
	"gaianet-deploy/internal/ui"
)

var (
	// Version is set at build time via ldflags
	version = "0.0.0-dev"
)

var flags struct {
	count      int
	configPath string
	home       string
	skipDeps   bool
	skipCUDA   bool
	logFile    string
	logLevel   string
}

func main() {
	os.Exit(runMain(os.Args[1:], os.Stderr))
}

// runMain executes the CLI and reports failures on errOut. Every fatal path
// prints a diagnostic before the non-zero exit.
func runMain(args []string, errOut io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		ui.Printer{Out: errOut}.Error("%v", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gaianet-deploy",
		Short:         "Provision GaiaNet node instances on this host",
		Version:       version,
		RunE:          runInstall,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "deploy config file (default ~/.gaianet-deploy.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.home, "home", "", "directory instances are created under (default $HOME)")
	rootCmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "append JSON logs to this file")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install and start 1-4 node instances (the default command)",
		RunE:  runInstall,
	}
	for _, cmd := range []*cobra.Command{rootCmd, installCmd} {
		cmd.Flags().IntVar(&flags.count, "count", 0, "number of instances, 1-4 (prompts when omitted)")
		cmd.Flags().BoolVar(&flags.skipDeps, "skip-deps", false, "skip system package installation")
		cmd.Flags().BoolVar(&flags.skipCUDA, "skip-cuda", false, "skip CUDA toolkit installation")
	}

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(newDoctorCmd())
	return rootCmd
}

// deps is everything a command needs, built once per invocation.
type deps struct {
	cfg      config.Config
	home     string
	printer  ui.Printer
	detector *system.Detector
	prov     *provision.Provisioner
	close    func() error
}

func setup() (*deps, error) {
	home := flags.home
	if home == "" {
		home = internal.GetHomeDir()
	}

	configPath := flags.configPath
	if configPath == "" {
		configPath = internal.DefaultConfigPath(home)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, closeLogs, err := logging.New(logging.ParseLevel(flags.logLevel), flags.logFile)
	if err != nil {
		return nil, err
	}

	runner := execrun.Exec{}
	printer := ui.Printer{Out: os.Stdout}
	detector := system.NewDetector(runner, logger)
	apt := aptget.NewManager(runner, logger)
	client := download.NewClient()

	return &deps{
		cfg:      cfg,
		home:     home,
		printer:  printer,
		detector: detector,
		prov: &provision.Provisioner{
			Config:   cfg,
			Detector: detector,
			Apt:      apt,
			CUDA:     cuda.NewInstaller(runner, apt, client, detector, logger, cfg.CUDA.ToolkitVersion),
			Nodes:    node.NewInstaller(runner, client, detector, cfg.Installer, logger),
			Life:     node.NewLifecycle(runner, logger),
			Logger:   logger,
			Printer:  printer,
			Home:     home,
			SkipDeps: flags.skipDeps,
			SkipCUDA: flags.skipCUDA,
		},
		close: closeLogs,
	}, nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	d, err := setup()
	if err != nil {
		return err
	}
	defer d.close()

	count := flags.count
	if count == 0 {
		count, err = provision.PromptInstanceCount(os.Stdin, os.Stdout)
	} else if _, err = provision.ParseInstanceCount(fmt.Sprint(count)); err != nil {
		err = fmt.Errorf("--count: %w", err)
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d.printer.Title("GaiaNet deploy: %d instance(s)", count)
	return d.prov.Run(ctx, count)
}
