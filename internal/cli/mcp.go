package cli

import (
	"kgit/internal/mcp"
	"kgit/internal/repository"

	"github.com/spf13/cobra"
)

func newMCPCmd(root *rootOptions, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve read-only repository tools over the Model Context Protocol on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withHandle(func(h *repository.Handle) error {
				return mcp.NewServer(h, root.logger, version).Start()
			})
		},
	}
}
