package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/respawn/internal/app"
)

func (c *CLI) newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a file through the supervising respawn process",
		Long: `Compile a file through the supervising respawn process.

Prints the path of the compiled artifact, or its content with --content.
Prints nothing for files that should be loaded as-is.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, _ := cmd.Flags().GetBool("content")
			return c.app.Compile(cmd.Context(), args[0], app.CompileOptions{Content: content})
		},
	}
	cmd.Flags().BoolP("content", "c", false, "Print the compiled source instead of its path")
	return cmd
}
