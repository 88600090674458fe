package cli

import (
	"fmt"

	"kgit/internal/repository"

	"github.com/spf13/cobra"
)

type branchesOptions struct {
	remote    bool
	local     bool
	localOnly bool
}

func newBranchesCmd(root *rootOptions) *cobra.Command {
	opts := &branchesOptions{}

	cmd := &cobra.Command{
		Use:     "branches",
		Aliases: []string{"br"},
		Short:   "List local and remote-tracking branches",
		Long: `List the branches of the working copy. Without flags, every local branch and
every origin remote-tracking branch is listed. The checked-out branch is
marked with '*'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withHandle(func(h *repository.Handle) error {
				return runBranches(cmd, h, opts)
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.remote, "remote", "r", false, "only remote-tracking branches")
	cmd.Flags().BoolVarP(&opts.local, "local", "l", false, "only local branches")
	cmd.Flags().BoolVar(&opts.localOnly, "local-only", false, "only local branches without a remote-tracking counterpart")
	cmd.MarkFlagsMutuallyExclusive("remote", "local", "local-only")

	return cmd
}

func runBranches(cmd *cobra.Command, h *repository.Handle, opts *branchesOptions) error {
	var (
		refs []repository.BranchRef
		err  error
	)
	switch {
	case opts.remote:
		refs, err = h.ListRemoteTracking()
	case opts.local:
		refs, err = h.ListLocal()
	case opts.localOnly:
		refs, err = h.ListLocalOnly()
	default:
		refs, err = h.ListAll()
	}
	if err != nil {
		return err
	}

	current, err := h.CurrentBranch()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range refs {
		marker := " "
		style := LocalBranchStyle
		switch {
		case r.Name.String() == current:
			marker = "*"
			style = CurrentBranchStyle
		case r.IsRemoteTracking():
			style = RemoteBranchStyle
		}
		fmt.Fprintf(out, "%s %s %s\n", marker, HashStyle.Render(shortHash(r.Hash.String())), style.Render(r.Name.String()))
	}
	return nil
}
