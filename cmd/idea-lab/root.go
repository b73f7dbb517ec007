// cmd/idea-lab/root.go
package main

import (
	"github.com/spf13/cobra"

	"idea-lab/internal/common/config"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "idea-lab",
		Short:         "Business idea lab: HTTP API, job workers and one-shot generation",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"config file (default: configs/config.yaml merged with configs/config.<APP_ENVIRONMENT>.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newWorkerCmd(opts),
		newGenerateCmd(opts),
		newRegistryCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFromFile(o.configPath)
	}
	return config.Load()
}
