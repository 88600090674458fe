// Package cli wires the kgit commands with cobra.
package cli

import (
	"fmt"
	"os"

	"kgit/internal/config"
	"kgit/internal/logging"
	"kgit/internal/repository"

	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command
type rootOptions struct {
	repoPath   string
	remoteURL  string
	configPath string
	debug      bool
	verbose    bool
	offline    bool

	logger   *logging.AppLogger
	provider *config.Provider
	store    *config.CredentialStore
}

// NewRootCmd creates the root cobra command
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "kgit",
		Short: "Work with a local Git working copy and publish Maven builds to a branch",
		Long: `kgit clones or opens a working copy of one remote, switches branches with
an auto-create policy, reads single files as recorded on any branch and
publishes Maven build output to the "repository" branch.

Credentials and the committer identity are read from kgit.properties,
auth.properties or kgit.yaml, then from the environment (GIT_USERNAME,
GIT_PASSWORD, GIT_COMMITTER, GIT_EMAIL), then from the OS keyring.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if opts.logger != nil {
				opts.logger.Close()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.repoPath, "repo", "C", "", "working copy path (default: current directory, or the data dir when --url is set)")
	flags.StringVar(&opts.remoteURL, "url", "", "remote URL to clone when the working copy does not exist")
	flags.StringVar(&opts.configPath, "config", "", "config file (.properties or .yaml)")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress at info level")
	flags.BoolVar(&opts.offline, "offline", false, "do not fetch before switching branches")

	rootCmd.AddCommand(
		newBranchesCmd(opts),
		newCheckoutCmd(opts),
		newReadCmd(opts),
		newFetchCmd(opts),
		newPullCmd(opts),
		newLsRemoteCmd(opts),
		newStatusCmd(opts),
		newPublishCmd(opts),
		newConfigCmd(opts),
		newMCPCmd(opts, version),
	)

	return rootCmd
}

// Execute runs the root command and reports a failure on stderr. It returns
// the process exit code.
func Execute(version string) int {
	rootCmd := NewRootCmd(version)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error:"), err)
		return 1
	}
	return 0
}

func (o *rootOptions) init() error {
	if o.debug || o.verbose {
		o.logger = logging.NewAppLoggerWithOptions(logging.Options{
			Debug:   o.debug,
			Verbose: o.verbose,
			LogFile: os.Getenv("KGIT_LOG_FILE"),
		})
	} else {
		o.logger = logging.NewAppLogger()
	}
	logging.SetDefault(o.logger)

	o.store = config.NewCredentialStore()
	provider, err := config.NewProvider(config.ProviderOptions{
		Path:  o.configPath,
		Store: o.store,
	})
	if err != nil {
		return err
	}
	o.provider = provider

	if o.provider.Source() != "" {
		o.logger.Debug("Using config file", "path", o.provider.Source())
	}
	return nil
}

// resolveRemoteURL prefers --url over the git.url config value
func (o *rootOptions) resolveRemoteURL() string {
	if o.remoteURL != "" {
		return o.remoteURL
	}
	return o.provider.Get(config.KeyRemoteURL)
}

// resolveRepoPath picks --repo, then the default clone location for --url,
// then the current directory.
func (o *rootOptions) resolveRepoPath(remoteURL string) (string, error) {
	if o.repoPath != "" {
		return o.repoPath, nil
	}
	if o.remoteURL != "" {
		return repository.DefaultWorkDir(remoteURL)
	}
	return ".", nil
}

func (o *rootOptions) open() (*repository.Handle, error) {
	remoteURL := o.resolveRemoteURL()
	path, err := o.resolveRepoPath(remoteURL)
	if err != nil {
		return nil, err
	}

	return repository.Open(repository.OpenOptions{
		Path:        path,
		RemoteURL:   remoteURL,
		Credentials: o.provider.Credentials(),
		Committer:   o.provider.Committer(),
		Offline:     o.offline,
		Logger:      o.logger,
	})
}

// withHandle opens the working copy, runs fn and closes it
func (o *rootOptions) withHandle(fn func(h *repository.Handle) error) error {
	h, err := o.open()
	if err != nil {
		return err
	}
	defer h.Close()
	return fn(h)
}
