package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/bytebuddy/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "bytebuddy",
	Short: "Study assistant for your notes",
	Long: `Byte Buddy answers questions from your study material, quizzes you on
the answers and remembers what you asked.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := setup(cmd)
		if err != nil {
			return err
		}
		defer deps.Close()
		return app.Run(cmd.Context(), deps.session, deps.cfg.LogFile)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML config file (default $XDG_CONFIG_HOME/bytebuddy/config.yaml)")
	flags.String("backend", "", "Backend mode: http or llm (overrides BYTEBUDDY_BACKEND_MODE)")
	flags.String("backend-url", "", "Knowledge service base URL (overrides BYTEBUDDY_BACKEND_URL)")
	flags.String("store", "", "History store: sqlite, postgres, redis or memory (overrides BYTEBUDDY_STORE)")
	flags.String("db", "", "Path to SQLite database file (overrides BYTEBUDDY_DB)")
	flags.Bool("no-memory", false, "Do not record answered questions in history")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
