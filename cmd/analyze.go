package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <repo-url>",
	Short: "Clone a GitHub repository and index its code for questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		locator := args[0]
		if a.cache.IsCached(locator) {
			fmt.Printf("Loading %s from cache...\n", locator)
		} else {
			fmt.Printf("Analyzing %s...\n", locator)
		}
		start := time.Now()

		n, err := a.asst.Analyze(cmd.Context(), locator)
		if err != nil {
			return err
		}

		fmt.Printf("\nDone in %s\n", time.Since(start).Round(time.Millisecond))
		fmt.Printf("  Units indexed: %d\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
