package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/client/diag"
	"github.com/dmitrijs2005/bankfront/internal/common"
	"github.com/spf13/cobra"
)

func diagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diag",
		Short: "Inspect and repair the stored session",
	}
	cmd.AddCommand(
		diagStatusCmd(),
		diagCheckCmd(),
		diagMigrateCmd(),
		diagClearCmd(),
		diagClaimsCmd(),
	)
	return cmd
}

// withDiagnostics opens the configured storage for one subcommand.
func withDiagnostics(fn func(cmd *cobra.Command, e *env, d *diag.Diagnostics) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, e, diag.New(e.backend.Store, e.logger))
	}
}

func diagStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what the session keys hold",
		RunE: withDiagnostics(func(cmd *cobra.Command, _ *env, d *diag.Diagnostics) error {
			st, err := d.CheckStatus(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Token: %t %s\n", st.HasToken, st.MaskedToken)
			fmt.Fprintf(out, "User:  %t\n", st.HasUser)
			if st.User != nil {
				fmt.Fprintf(out, "       %s <%s> %s\n", st.User.FullName(), st.User.Email, st.User.Role)
			}
			if st.UserErr != nil {
				fmt.Fprintf(out, "       %v\n", st.UserErr)
			}
			return nil
		}),
	}
}

func diagCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compare the current and legacy token keys",
		RunE: withDiagnostics(func(cmd *cobra.Command, _ *env, d *diag.Diagnostics) error {
			r, err := d.CheckTokenStorage(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %t %s\n", r.TokenKey, r.HasToken, r.MaskedToken)
			fmt.Fprintf(out, "%s: %t %s\n", common.LegacyTokenKey, r.HasLegacyToken, r.MaskedLegacyToken)
			if r.Mismatch {
				fmt.Fprintln(out, "Mismatch: run 'bankfront diag migrate' to copy the legacy session.")
			}
			return nil
		}),
	}
}

func diagMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Copy a session stored under the legacy keys",
		RunE: withDiagnostics(func(cmd *cobra.Command, _ *env, d *diag.Diagnostics) error {
			r, err := d.MigrateLegacy(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Message)
			return nil
		}),
	}
}

func diagClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the current and legacy session keys",
		RunE: withDiagnostics(func(cmd *cobra.Command, _ *env, d *diag.Diagnostics) error {
			if !yes {
				return errors.New("refusing to clear the session without --yes")
			}
			if err := d.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session storage cleared.")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removal")
	return cmd
}

func diagClaimsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claims",
		Short: "Decode the stored token without verifying it",
		RunE: withDiagnostics(func(cmd *cobra.Command, e *env, _ *diag.Diagnostics) error {
			token, err := e.backend.Store.Get(cmd.Context(), common.TokenKey)
			if err != nil {
				return err
			}
			if len(token) == 0 {
				return errors.New("no stored token")
			}

			c, err := diag.Inspect(string(token))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Subject: %s\n", c.Subject)
			fmt.Fprintf(out, "Roles:   %v\n", c.Roles)
			if c.ExpiresAt != nil {
				fmt.Fprintf(out, "Expires: %s (expired: %t)\n", c.ExpiresAt.Format(time.RFC3339), c.Expired(time.Now()))
			}
			return nil
		}),
	}
}
