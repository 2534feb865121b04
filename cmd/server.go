package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the knowledge service is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		c, err := d.httpClient()
		if err != nil {
			return err
		}
		msg, err := c.Ping(cmd.Context())
		if err != nil {
			return fmt.Errorf("ping %s: %w", c.BaseURL(), err)
		}
		if msg == "" {
			msg = "ok"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", c.BaseURL(), msg)
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Ask the knowledge service to drop its conversation memory",
	Long: `Reset the knowledge service's conversation memory. Local history is
untouched; use "bytebuddy history clear" for that.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		c, err := d.httpClient()
		if err != nil {
			return err
		}
		msg, err := c.Reset(cmd.Context())
		if err != nil {
			return fmt.Errorf("reset %s: %w", c.BaseURL(), err)
		}
		if msg == "" {
			msg = "memory cleared"
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}
