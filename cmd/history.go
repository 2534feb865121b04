package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/bytebuddy/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear remembered questions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remembered questions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		printHistory(cmd.OutOrStdout(), d.session.History(), limit)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every remembered question",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		n := len(d.session.History())
		if err := d.session.ResetMemory(cmd.Context()); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s.\n", n, plural(n, "entry", "entries"))
		return nil
	},
}

// printHistory writes entries newest first. limit <= 0 prints everything.
func printHistory(w io.Writer, entries []history.QA, limit int) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history yet.")
		return
	}

	sep := strings.Repeat("─", 60)
	shown := 0
	for i := len(entries) - 1; i >= 0; i-- {
		if limit > 0 && shown == limit {
			break
		}
		e := entries[i]
		fmt.Fprintf(w, "#%d\n", i+1)
		fmt.Fprintf(w, "Q: %s\n", e.Question)
		fmt.Fprintf(w, "A: %s\n", e.Answer)
		fmt.Fprintln(w, sep)
		shown++
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 0, "Number of entries to show (0 = all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
}
