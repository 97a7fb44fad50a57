package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/respawn/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] -- <command> [args...]",
		Short: "Supervise a command and restart it when its sources change",
		Long: `Supervise a command and restart it when its sources change.

While running, type "rs" and press enter to force a full rebuild and restart.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return nil
			}
			pty, _ := cmd.Flags().GetBool("pty")
			noCommands, _ := cmd.Flags().GetBool("no-commands")
			esm, _ := cmd.Flags().GetBool("esm")

			return c.app.Run(cmd.Context(), app.RunOptions{
				Command:    args,
				PTY:        pty,
				NoCommands: noCommands,
				ESM:        esm,
			})
		},
	}
	// Everything after the command name belongs to the child.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().Bool("pty", false, "Run the command on a pseudo-terminal")
	cmd.Flags().Bool("no-commands", false, "Disable the rs command and pass stdin to the command")
	cmd.Flags().Bool("esm", false, "Intercept import-style module loading")
	return cmd
}
