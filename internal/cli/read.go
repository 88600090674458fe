package cli

import (
	"fmt"

	"kgit/internal/repository"

	"github.com/spf13/cobra"
)

type readOptions struct {
	branch      string
	out         string
	save        bool
	noOverwrite bool
}

func newReadCmd(root *rootOptions) *cobra.Command {
	opts := &readOptions{}

	cmd := &cobra.Command{
		Use:   "read PATH",
		Short: "Print or save a file as recorded on the tip of a branch",
		Long: `Read PATH from the tip commit of --branch. The branch is checked out for the
duration of the read and the previous branch is restored afterwards.

Without --out or --save the contents go to stdout. --save writes to PATH
inside the working copy, --out to the given file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withHandle(func(h *repository.Handle) error {
				if opts.out == "" && !opts.save {
					return h.ReadFileTo(args[0], opts.branch, cmd.OutOrStdout())
				}

				dest, err := h.ReadFile(args[0], opts.branch, !opts.noOverwrite, opts.out)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s saved %s\n", SuccessStyle.Render("✓"), dest)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.branch, "branch", "b", "", "branch to read from")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.save, "save", false, "write to PATH inside the working copy")
	cmd.Flags().BoolVar(&opts.noOverwrite, "no-overwrite", false, "fail when the destination exists")
	cmd.MarkFlagRequired("branch")
	cmd.MarkFlagsMutuallyExclusive("out", "save")

	return cmd
}
