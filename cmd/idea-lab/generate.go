// cmd/idea-lab/generate.go
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var industry, lang string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate business ideas for an industry and print them as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if lang == "" {
				lang = cfg.App.DefaultLanguage
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ideas, err := a.ideas.GenerateIdeas(cmd.Context(), industry, lang)
			if err != nil {
				return err
			}
			if len(ideas) == 0 {
				return fmt.Errorf("no ideas generated for %q", industry)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ideas)
		},
	}
	cmd.Flags().StringVar(&industry, "industry", "", "industry to generate ideas for")
	cmd.Flags().StringVar(&lang, "lang", "", "output language tag (default: app.default_language)")
	_ = cmd.MarkFlagRequired("industry")
	return cmd
}
