package keyctl

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	app           = "keyctl"
	defaultServer = "http://localhost:5000"
)

// Actual version can be specified in build command.
var version = "unknown"

// NewRootCommand builds the keyctl command tree.
func NewRootCommand() *cobra.Command {
	var server string

	root := &cobra.Command{
		Use:           app,
		Short:         "keyctl manages vendor API keys on a running interview backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defServer := defaultServer
	if v := os.Getenv("KEYCTL_SERVER"); v != "" {
		defServer = v
	}
	root.PersistentFlags().StringVarP(&server, "server", "s", defServer, "backend base URL (env KEYCTL_SERVER)")

	client := func() *Client { return NewClient(server, nil) }

	root.AddCommand(
		newSetKeyCommand("openai", "Set the OpenAI API key", "OPENAI_API_KEY", func(cmd *cobra.Command, key string) error {
			res, err := client().SetOpenAIKey(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			if res.Verified != nil && !*res.Verified {
				fmt.Fprintln(cmd.OutOrStdout(), "warning:", res.Warning)
			}
			return nil
		}),
		newSetKeyCommand("heygen", "Set the Heygen API key", "HEYGEN_API_KEY", func(cmd *cobra.Command, key string) error {
			res, err := client().SetHeygenKey(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		}),
		&cobra.Command{
			Use:   "status",
			Short: "Show which keys are configured",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				st, err := client().Status(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "backend:  %s (%s)\n", st.Status, st.Message)
				fmt.Fprintf(out, "database: %s\n", yesNo(st.DatabaseUp, "connected", "unreachable"))
				fmt.Fprintf(out, "openai:   %s\n", yesNo(st.APIKeyConfigured, "configured", "not configured"))
				fmt.Fprintf(out, "heygen:   %s\n", yesNo(st.AvatarConfigured, "configured", "not configured"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", app, version)
			},
		},
	)
	return root
}

// newSetKeyCommand reads the key from --key, then envVar, then an interactive
// prompt, and hands it to set.
func newSetKeyCommand(name, short, envVar string, set func(cmd *cobra.Command, key string) error) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if key == "" {
				key = os.Getenv(envVar)
			}
			if key == "" {
				secret, err := promptSecret(cmd.ErrOrStderr(), "Enter "+name+" API key: ")
				if err != nil {
					return fmt.Errorf("reading key: %w", err)
				}
				key = string(secret)
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return errors.New("empty API key")
			}
			return set(cmd, key)
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "API key (env "+envVar+"; prompted when unset)")
	return cmd
}

func yesNo(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
