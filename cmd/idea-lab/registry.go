// cmd/idea-lab/registry.go
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"idea-lab/internal/workers/generation"
	"idea-lab/pkg/registry"
)

func newRegistryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Export or validate the activity registry of job worker task types",
	}

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the activity registry for the configured workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			reg := &registry.ActivityRegistry{
				Version:    cfg.App.Version,
				Activities: generation.Activities(cfg),
			}
			if err := registry.Validate(reg); err != nil {
				return err
			}
			if err := registry.SaveRegistry(out, reg, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d activities to %s\n", len(reg.Activities), out)
			return nil
		},
	}
	export.Flags().StringVar(&out, "out", "configs/activity-registry.json", "output path")

	var path string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check a registry file for duplicate or malformed activities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := registry.Validate(reg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d activities ok\n", path, len(reg.Activities))
			return nil
		},
	}
	validate.Flags().StringVar(&path, "path", "configs/activity-registry.json", "registry file")

	cmd.AddCommand(export, validate)
	return cmd
}
