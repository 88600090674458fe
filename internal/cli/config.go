package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"kgit/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write kgit configuration",
	}

	cmd.AddCommand(
		newConfigGetCmd(root),
		newConfigListCmd(root),
		newConfigSetCmd(root),
		newConfigPathCmd(root),
	)
	return cmd
}

func newConfigGetCmd(root *rootOptions) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print a resolved configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, ok := root.provider.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%s is not set", args[0])
			}
			if isSecret(args[0]) && !reveal {
				value = "********"
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "print secret values")
	return cmd
}

func newConfigListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the values defined in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := root.provider.Values()
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			out := cmd.OutOrStdout()
			for _, k := range keys {
				v := values[k]
				if isSecret(k) {
					v = "********"
				}
				fmt.Fprintf(out, "%s=%s\n", k, v)
			}
			return nil
		},
	}
}

func newConfigSetCmd(root *rootOptions) *cobra.Command {
	var useKeyring bool

	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store a configuration value in the config file or the OS keyring",
		Long: `Store KEY=VALUE. By default the value is written to the YAML config file in
use (or ` + filepath.Join("$XDG_CONFIG_HOME", "kgit", "config.yaml") + ` when none exists).
--keyring stores it in the OS keyring instead, which is recommended for
git.password.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			if useKeyring {
				if err := root.store.Store(key, value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s stored %s in the keyring\n", SuccessStyle.Render("✓"), key)
				return nil
			}

			path := root.provider.Source()
			if path == "" {
				path = filepath.Join(config.ConfigDir(), "config.yaml")
			}
			if !isYAML(path) {
				return fmt.Errorf("cannot write %s: only YAML config files are written, edit properties files by hand", path)
			}

			values := map[string]string{}
			if _, err := os.Stat(path); err == nil {
				loaded, err := config.LoadFrom(path)
				if err != nil {
					return err
				}
				values = loaded
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
			values[key] = value

			if err := config.SaveTo(path, values); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set %s in %s\n", SuccessStyle.Render("✓"), key, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useKeyring, "keyring", false, "store the value in the OS keyring")
	return cmd
}

func newConfigPathCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use and the locations searched",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if src := root.provider.Source(); src != "" {
				fmt.Fprintln(out, src)
			} else {
				fmt.Fprintln(out, SubtleStyle.Render("no config file found"))
			}
			for _, p := range config.CandidatePaths() {
				fmt.Fprintln(out, SubtleStyle.Render("  searched "+p))
			}
			return nil
		},
	}
}

func isSecret(key string) bool {
	return key == config.KeyPassword || strings.Contains(strings.ToLower(key), "password")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
