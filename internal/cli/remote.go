package cli

import (
	"fmt"
	"sort"
	"strings"

	"kgit/internal/repository"

	"github.com/spf13/cobra"
)

func newFetchCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Update the origin remote-tracking branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withHandle(func(h *repository.Handle) error {
				return h.Fetch()
			})
		},
	}
}

func newPullCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Fetch the current branch and fast-forward the working copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withHandle(func(h *repository.Handle) error {
				return h.Pull()
			})
		},
	}
}

func newLsRemoteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls-remote",
		Short: "List the refs advertised by origin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withHandle(func(h *repository.Handle) error {
				refs, err := h.LsRemote()
				if err != nil {
					return err
				}

				names := make([]string, 0, len(refs))
				for name := range refs {
					names = append(names, name)
				}
				sort.Strings(names)

				out := cmd.OutOrStdout()
				for _, name := range names {
					fmt.Fprintf(out, "%s\t%s\n", refs[name].Hash, name)
				}
				return nil
			})
		},
	}
}

func newStatusCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current branch, last commit and short status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withHandle(func(h *repository.Handle) error {
				current, err := h.CurrentBranch()
				if err != nil {
					return err
				}
				head, err := h.HeadCommit()
				if err != nil {
					return err
				}
				desc, err := h.DescribeCommit(head.Hash)
				if err != nil {
					return err
				}
				status, err := h.ShortStatus()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "on %s\n", CurrentBranchStyle.Render(strings.TrimPrefix(current, "refs/heads/")))
				fmt.Fprintln(out, SubtleStyle.Render(desc))
				if strings.TrimSpace(status) == "" {
					fmt.Fprintln(out, "nothing to commit, working tree clean")
					return nil
				}
				fmt.Fprint(out, status)
				return nil
			})
		},
	}
}
