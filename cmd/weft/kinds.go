package main

import (
	"fmt"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/aretw0/weft/pkg/writable"
	"github.com/spf13/cobra"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the built-in Writable kinds",
	RunE: func(cmd *cobra.Command, args []string) error {
		markdown, _ := cmd.Flags().GetBool("markdown")

		out := cmd.OutOrStdout()
		if markdown {
			_, err := fmt.Fprint(out, tui.KindsMarkdown(writable.Kinds()))
			return err
		}

		styled := cfg.Output.Color != "never" && (cfg.Output.Color == "always" || cli.IsTerminal(out))
		render, err := tui.NewRenderer(styled)
		if err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
		text, err := tui.RenderKinds(writable.Kinds(), render)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, text)
		return err
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
	kindsCmd.Flags().Bool("markdown", false, "Print the raw markdown table")
}
