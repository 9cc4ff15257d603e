package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jobboard-engine/internal/secrets"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage provider credentials in the OS keychain",
}

var secretsSetCmd = &cobra.Command{
	Use:   "set <account>",
	Short: "Store a credential; the value is read from stdin",
	Long: "Accounts: " + strings.Join(secrets.Accounts(), ", ") + `

The value is read from the first line of stdin so it does not end up in
shell history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("no value on stdin")
		}
		if err := secrets.Set(args[0], strings.TrimSpace(line)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", args[0])
		return nil
	},
}

var secretsDeleteCmd = &cobra.Command{
	Use:   "delete <account>",
	Short: "Remove a credential from the keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var secretsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show which credentials resolve, from the keychain or environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, acct := range secrets.Accounts() {
			state := "missing"
			if secrets.Lookup(acct, secrets.EnvKey(acct)) != "" {
				state = "set"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-22s %-22s %s\n", acct, secrets.EnvKey(acct), state)
		}
		return nil
	},
}

func init() {
	secretsCmd.AddCommand(secretsSetCmd, secretsDeleteCmd, secretsListCmd)
	rootCmd.AddCommand(secretsCmd)
}
