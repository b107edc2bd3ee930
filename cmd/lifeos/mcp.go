package main

import (
	"fmt"

	"lifeos/internal/mcp"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve your data to AI assistants over MCP (stdio)",
	Long: `Start a Model Context Protocol server on stdin/stdout. Point an MCP
client at "lifeos mcp" to let it read your days and metrics and record
journal entries, moods, tasks, habits and goals.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol.
		fmt.Fprintf(cmd.ErrOrStderr(), "lifeos MCP server %s serving %s\n", version, sess.Location())
		return mcp.NewServer(sess, notifier, version).Start(ctxOf(cmd))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
