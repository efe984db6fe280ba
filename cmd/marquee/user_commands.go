package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/users"
)

func newUserCommand(ctx *commandContext) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts",
	}
	userCmd.AddCommand(newUserAddCommand(ctx))
	userCmd.AddCommand(newUserCheckCommand(ctx))
	userCmd.AddCommand(newUserListCommand(ctx))
	return userCmd
}

func withUserStore(ctx *commandContext, fn func(*users.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := users.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// readPassword returns flagValue when set, otherwise the first line of in.
func readPassword(in io.Reader, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newUserAddCommand(ctx *commandContext) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account (password from --password or the first line of stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd.InOrStdin(), password)
			if err != nil {
				return err
			}
			return withUserStore(ctx, func(store *users.Store) error {
				user, err := store.SignUp(cmd.Context(), args[0], pw)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created account %s\n", user.Username)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password for the new account")
	return cmd
}

func newUserCheckCommand(ctx *commandContext) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "check <username>",
		Short: "Verify an account's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd.InOrStdin(), password)
			if err != nil {
				return err
			}
			return withUserStore(ctx, func(store *users.Store) error {
				user, err := store.Authenticate(cmd.Context(), args[0], pw)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Username)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password to verify")
	return cmd
}

func newUserListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUserStore(ctx, func(store *users.Store) error {
				list, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, list)
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No accounts")
					return nil
				}
				rows := make([][]string, len(list))
				for i, u := range list {
					rows[i] = []string{u.Username, u.CreatedAt.Local().Format("2006-01-02 15:04")}
				}
				writeRows(cmd.OutOrStdout(), []string{"Username", "Created"}, rows, nil)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
