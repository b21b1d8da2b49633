package main

import (
	"context"

	"github.com/spf13/cobra"

	"gaianet-deploy/internal/node"
)

// newDoctorCmd reports what a deploy run would detect, without touching the
// host.
func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Print the environment report without installing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := setup()
			if err != nil {
				return err
			}
			defer d.close()

			report := d.detector.Detect(context.Background())

			d.printer.Title("Environment report")
			d.printer.Step("host class: %s", report.Class)
			d.printer.Step("wsl: %v", report.WSL)
			d.printer.Step("gpu: %v", report.GPU)
			if report.CUDAMajor != "" {
				d.printer.Step("cuda toolkit: major %s", report.CUDAMajor)
			} else {
				d.printer.Step("cuda toolkit: not installed")
			}

			url := node.SelectConfigURL(d.cfg.Configs, report.Class, report.GPU)
			d.printer.Dim("node config for this host: %s", url)
			return nil
		},
	}
}
