package cli

import (
	"fmt"

	"kgit/internal/repository"

	"github.com/spf13/cobra"
)

type checkoutOptions struct {
	create       bool
	noFetch      bool
	noAutoCreate bool
	noEmpty      bool
	base         string
}

func newCheckoutCmd(root *rootOptions) *cobra.Command {
	opts := &checkoutOptions{}

	cmd := &cobra.Command{
		Use:     "checkout BRANCH",
		Aliases: []string{"co"},
		Short:   "Switch to a branch, creating it from origin or from master when missing",
		Long: `Switch to BRANCH using the checkout policy:

  1. Fetch origin (unless --no-fetch or --offline).
  2. If origin has no such branch, push the base branch (default master) as
     the new remote branch and record an empty-branch commit on the current
     branch. The working copy stays on the current branch; run checkout again
     to switch. --no-auto-create makes a missing branch an error instead.
  3. Otherwise create the local branch at origin's tip when it does not exist
     (or always with --create, never with --create=false), switch to it
     discarding local modifications, and track origin/BRANCH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			co := repository.DefaultCheckoutOptions()
			co.Fetch = !opts.noFetch && !root.offline
			co.CreateIfRemoteMissing = !opts.noAutoCreate
			co.CreateEmpty = !opts.noEmpty
			co.BaseBranch = opts.base
			if cmd.Flags().Changed("create") {
				co.Create = repository.BoolPtr(opts.create)
			}

			return root.withHandle(func(h *repository.Handle) error {
				res, err := h.Checkout(args[0], co)
				if err != nil {
					return err
				}
				printCheckoutResult(cmd, res, co.BaseBranch)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&opts.create, "create", false, "force (true) or forbid (false) creating the local branch from origin")
	cmd.Flags().BoolVar(&opts.noFetch, "no-fetch", false, "do not fetch before switching")
	cmd.Flags().BoolVar(&opts.noAutoCreate, "no-auto-create", false, "fail when origin has no such branch")
	cmd.Flags().BoolVar(&opts.noEmpty, "no-empty", false, "skip the empty-branch commit after an auto-create")
	cmd.Flags().StringVar(&opts.base, "base", repository.DefaultBaseBranch, "branch that seeds auto-created branches")

	return cmd
}

func printCheckoutResult(cmd *cobra.Command, res repository.CheckoutResult, base string) {
	out := cmd.OutOrStdout()

	if res.Created {
		fmt.Fprintf(out, "%s created origin/%s from %s at %s\n",
			SuccessStyle.Render("✓"), res.Branch, base, HashStyle.Render(shortHash(res.Hash.String())))
		if len(res.Removed) > 0 {
			fmt.Fprintln(out, SubtleStyle.Render(fmt.Sprintf("  removed %d entries from the working tree", len(res.Removed))))
		}
		if !res.EmptyCommit.IsZero() {
			fmt.Fprintln(out, SubtleStyle.Render("  committed "+shortHash(res.EmptyCommit.String())+" create an empty branch "+res.Branch))
		}
		fmt.Fprintln(out, SubtleStyle.Render("  run checkout again to switch to it"))
		return
	}

	fmt.Fprintf(out, "%s switched to %s at %s\n",
		SuccessStyle.Render("✓"), CurrentBranchStyle.Render(res.Branch), HashStyle.Render(shortHash(res.Hash.String())))
}
