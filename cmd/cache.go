package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage cached repository analyses",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache and index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		cs, err := a.cache.Stats()
		if err != nil {
			return err
		}
		is := a.index.Stats()

		fmt.Printf("Cache: %d repositories, %d bytes at %s\n", cs.Count, cs.TotalSize, cs.Location)
		fmt.Printf("Index: %d units, %d bytes at %s\n", is.TotalEntries, is.StorageSize, is.Location)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [repo-url]",
	Short: "Delete one cached analysis, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		locator := ""
		if len(args) > 0 {
			locator = args[0]
		}
		if err := a.cache.Clear(locator); err != nil {
			return err
		}
		if locator == "" {
			fmt.Println("Cache cleared.")
		} else {
			fmt.Printf("Cache cleared for %s.\n", locator)
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
