package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todosync/internal/auth"
	"github.com/idilsaglam/todosync/internal/ui"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth <login|logout|status>",
		Short: "Manage the bearer token sent to the API",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return usagef("usage: todo auth <login|logout|status>")
		},
	}

	login := &cobra.Command{
		Use:   "login",
		Short: "Store a token (read from stdin)",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), "Paste your token: ")
			token, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && strings.TrimSpace(token) == "" {
				return fmt.Errorf("read token: %w", err)
			}
			if err := auth.SetToken(token, nil); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			ui.OK("logged in")
			return nil
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, _ := auth.GetToken()
			if ti != nil && ti.Source == "env" {
				ui.OK("token is provided by " + auth.EnvToken + " env var (nothing to delete)")
				return nil
			}
			if err := auth.DeleteToken(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK("logged out")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show where the token comes from",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, err := auth.GetToken()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if ti == nil {
				fmt.Fprintln(w, "not logged in (requests are sent without a token)")
				return nil
			}
			fmt.Fprintln(w, "source:", ti.Source)
			if ti.ExpiresAt != nil {
				state := "valid"
				if ti.Expired(time.Now()) {
					state = "expired"
				}
				fmt.Fprintf(w, "expires: %s (%s)\n", ti.ExpiresAt.Format(time.RFC3339), state)
			}
			if payload, ok := auth.JWTPayload(ti.Token); ok {
				fmt.Fprintln(w, "JWT payload:")
				fmt.Fprintln(w, payload)
			} else {
				fmt.Fprintln(w, "Opaque token (cannot introspect locally).")
			}
			return nil
		},
	}

	cmd.AddCommand(login, logout, status)
	return cmd
}
