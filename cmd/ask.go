package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codescout/internal/assistant"
)

var flagK int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask questions about the analyzed repository",
	Long: `Ask answers one question when given as an argument, or starts an
interactive prompt when run without arguments. Run 'codescout analyze' first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if st := a.asst.Status(); st.State != assistant.StateReady {
			return errors.New("no repository analyzed yet\nRun 'codescout analyze <repo-url>' first")
		}

		if len(args) > 0 {
			return askOnce(cmd.Context(), a, strings.Join(args, " "))
		}
		return askLoop(cmd.Context(), a)
	},
}

func askOnce(ctx context.Context, a *app, question string) error {
	res, err := a.asst.Query(ctx, question, flagK)
	if err != nil {
		return err
	}
	printAnswer(res)
	return nil
}

func askLoop(ctx context.Context, a *app) error {
	scanner := bufio.NewScanner(os.Stdin)
	st := a.asst.Status()

	fmt.Printf("codescout ask: %s (%d units)\n", st.Locator, st.UnitCount)
	fmt.Println("Type /help for commands, /exit to quit.")
	fmt.Println()

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}

		switch question {
		case "/exit", "/quit":
			fmt.Println("Goodbye.")
			return nil
		case "/status":
			st := a.asst.Status()
			fmt.Printf("state: %s, repo: %s, units: %d\n", st.State, st.Locator, st.UnitCount)
			continue
		case "/help":
			fmt.Println("Commands:")
			fmt.Println("  /status - show the analyzed repository")
			fmt.Println("  /exit   - quit")
			fmt.Println("  /help   - show this help")
			continue
		}

		res, err := a.asst.Query(ctx, question, flagK)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		printAnswer(res)
	}

	return scanner.Err()
}

func printAnswer(res *assistant.QueryResult) {
	fmt.Println()
	fmt.Println(res.Answer)
	if len(res.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, src := range res.Sources {
			fmt.Printf("  %s  %s (lines %s, %.1f%% match)\n",
				src.File, src.Name, src.Lines, src.Similarity*100)
		}
	}
	fmt.Println()
}

func init() {
	askCmd.Flags().IntVar(&flagK, "k", assistant.DefaultTopK, "number of units to retrieve per question")
	rootCmd.AddCommand(askCmd)
}
