package cli

import (
	"fmt"

	"kgit/internal/publish"

	"github.com/spf13/cobra"
)

type publishOptions struct {
	buildDir string
	project  string
	group    string
	module   string
	version  string
	initOnly bool
}

func newPublishCmd(root *rootOptions) *cobra.Command {
	opts := &publishOptions{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Commit a Maven version directory to the repository branch and push it",
		Long: `Publish Maven build output kept in a Git working copy.

The working copy lives at <build-dir>/<project>-repository and is cloned from
--url (or git.url) when missing. The "repository" branch is checked out and
created on origin from master when it does not exist yet. Then
<group as path>/<module>/<version> is staged, committed as
"publish version <version>" and every branch is force-pushed.

Use --init-only before the build deploys into the working copy, and run
publish again afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			task, err := publish.NewMavenPublishTask(publish.Options{
				RemoteURL:   root.resolveRemoteURL(),
				BuildDir:    opts.buildDir,
				ProjectName: opts.project,
				Group:       opts.group,
				Module:      opts.module,
				Version:     opts.version,
				Credentials: root.provider.Credentials(),
				Committer:   root.provider.Committer(),
				Offline:     root.offline,
				Logger:      root.logger,
			})
			if err != nil {
				return err
			}
			defer task.Close()

			out := cmd.OutOrStdout()
			if err := task.InitRepo(); err != nil {
				return err
			}
			if opts.initOnly {
				fmt.Fprintf(out, "%s %s is on branch %s\n", SuccessStyle.Render("✓"), task.RepoPath(), publish.Branch)
				return nil
			}

			if err := task.Publish(); err != nil {
				return err
			}
			rel, _ := task.RelativeVersionPath()
			fmt.Fprintf(out, "%s published %s to %s\n", SuccessStyle.Render("✓"), rel, publish.Branch)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.buildDir, "build-dir", "build", "build output directory")
	cmd.Flags().StringVar(&opts.project, "project", "", "project name")
	cmd.Flags().StringVar(&opts.group, "group", "", "Maven group id, e.g. io.github.honey")
	cmd.Flags().StringVar(&opts.module, "module", "", "Maven artifact id (default: project name)")
	cmd.Flags().StringVar(&opts.version, "version", "", "version to publish")
	cmd.Flags().BoolVar(&opts.initOnly, "init-only", false, "only prepare the working copy and branch")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("group")
	cmd.MarkFlagRequired("version")

	return cmd
}
