package cmd

import (
	"github.com/spf13/cobra"

	"codescout/internal/tui"
)

var flagRepo string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func runTUI() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	return tui.Run(tui.Config{
		Assistant: a.asst,
		RepoURL:   flagRepo,
		TopK:      a.cfg.TopK,
	})
}

func init() {
	tuiCmd.Flags().StringVar(&flagRepo, "repo", "", "repository URL to pre-fill")
	rootCmd.AddCommand(tuiCmd)
}
