package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/bankfront/internal/client/diag"
	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/client/nav"
)

const sessionExpiredNotice = "Your session has expired. Please log in again."

func (a *App) registerScreens() {
	routes := []nav.Route{
		{Path: a.config.LoginPath, Title: "Sign in", Access: nav.AnonymousOnly, Screen: a.loginScreen},
		{Path: a.config.RegisterPath, Title: "Open an account", Access: nav.AnonymousOnly, Screen: a.registerScreen},
		{Path: a.config.HomePath, Title: "Dashboard", Access: nav.AuthOnly, Screen: a.homeScreen},
		{Path: "/accounts", Title: "Accounts", Access: nav.AuthOnly, Screen: a.accountsScreen},
		{Path: "/accounts/open", Title: "Open a new account", Access: nav.AuthOnly, Screen: a.openAccountScreen},
		{Path: "/transactions", Title: "Transaction history", Access: nav.AuthOnly, Screen: a.historyScreen},
		{Path: "/transfer", Title: "Transfer money", Access: nav.AuthOnly, Screen: a.transferScreen},
		{Path: "/loans", Title: "Loans", Access: nav.AuthOnly, Screen: a.loansScreen},
		{Path: "/loans/apply", Title: "Apply for a loan", Access: nav.AuthOnly, Screen: a.applyLoanScreen},
		{Path: "/investments", Title: "Investments", Access: nav.AuthOnly, Screen: a.investmentsScreen},
		{Path: "/investments/fd", Title: "Open a fixed deposit", Access: nav.AuthOnly, Screen: a.openFDScreen},
		{Path: "/investments/rd", Title: "Open a recurring deposit", Access: nav.AuthOnly, Screen: a.openRDScreen},
		{Path: "/payments", Title: "Payments", Access: nav.AuthOnly, Screen: a.paymentsScreen},
		{Path: "/payments/bill", Title: "Pay a bill", Access: nav.AuthOnly, Screen: a.payBillScreen},
		{Path: "/payments/recharge", Title: "Mobile recharge", Access: nav.AuthOnly, Screen: a.rechargeScreen},
		{Path: "/calculators", Title: "Calculators", Access: nav.Public, Screen: a.calculatorsScreen},
		{Path: "/admin", Title: "Administration", Access: nav.AdminOnly, Screen: a.adminScreen},
	}
	for _, r := range routes {
		a.router.Handle(r)
	}
}

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n== %s ==\n", title)
}

func table(w io.Writer, header string, rows func(tw *tabwriter.Writer)) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	return tw.Flush()
}

func (a *App) loginScreen(_ context.Context, w io.Writer) error {
	heading(w, "Sign in")
	if a.nav.Query().Get("session_expired") == "true" {
		fmt.Fprintln(w, sessionExpiredNotice)
	}
	fmt.Fprintln(w, "Type 'login' to sign in, 'register' to open an account or 'calc' for calculators.")
	return nil
}

func (a *App) registerScreen(_ context.Context, w io.Writer) error {
	heading(w, "Open an account")
	fmt.Fprintln(w, "Type 'register' to start. Passwords need at least 8 characters.")
	return nil
}

func (a *App) homeScreen(ctx context.Context, w io.Writer) error {
	u := a.sessions.State().User
	accounts, err := a.bankingService.Accounts(ctx)
	if err != nil {
		return err
	}

	heading(w, "Dashboard")
	fmt.Fprintf(w, "Welcome, %s (%s)\n", u.FullName(), u.Role)
	fmt.Fprintf(w, "You have %d account(s).\n", len(accounts))
	for _, acc := range accounts {
		fmt.Fprintf(w, "  %s  %-8s  %s\n", acc.AccountNumber, acc.AccountType, acc.Balance.StringFixed(2))
	}
	fmt.Fprintln(w, "Type 'help' for what you can do next.")
	return nil
}

func (a *App) accountsScreen(ctx context.Context, w io.Writer) error {
	accounts, err := a.bankingService.Accounts(ctx)
	if err != nil {
		return err
	}

	heading(w, "Accounts")
	if len(accounts) == 0 {
		fmt.Fprintln(w, "No accounts yet. Type 'open-account' to open one.")
		return nil
	}
	return table(w, "NUMBER\tTYPE\tHOLDER\tBALANCE\tSTATUS", func(tw *tabwriter.Writer) {
		for _, acc := range accounts {
			status := "active"
			if !acc.Active {
				status = "inactive"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				acc.AccountNumber, acc.AccountType, acc.AccountHolderName, acc.Balance.StringFixed(2), status)
		}
	})
}

func (a *App) historyScreen(ctx context.Context, w io.Writer) error {
	heading(w, "Transaction history")
	f := form{reader: a.reader, w: w}
	number, err := f.first("Account number")
	if err != nil {
		return err
	}

	txs, err := a.bankingService.History(ctx, number)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions.")
		return nil
	}
	return table(w, "DATE\tREFERENCE\tTYPE\tAMOUNT\tFROM\tTO\tSTATUS\tDESCRIPTION", func(tw *tabwriter.Writer) {
		for _, t := range txs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				t.Timestamp.Format("2006-01-02 15:04"), t.TransactionNumber, t.Type,
				t.Amount.StringFixed(2), t.FromAccountNumber, t.ToAccountNumber, t.Status, t.Description)
		}
	})
}

func (a *App) loansScreen(ctx context.Context, w io.Writer) error {
	loans, err := a.bankingService.Loans(ctx)
	if err != nil {
		return err
	}

	heading(w, "Loans")
	if len(loans) == 0 {
		fmt.Fprintln(w, "No loans. Type 'apply-loan' to apply.")
		return nil
	}
	return table(w, "NUMBER\tTYPE\tAMOUNT\tRATE\tTENURE\tEMI\tOUTSTANDING\tSTATUS", func(tw *tabwriter.Writer) {
		for _, l := range loans {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s%%\t%dm\t%s\t%s\t%s\n",
				l.LoanNumber, l.LoanType, l.Amount.StringFixed(2), l.InterestRate.String(),
				l.TenureMonths, l.EMI.StringFixed(2), l.OutstandingAmount.StringFixed(2), l.Status)
		}
	})
}

func (a *App) investmentsScreen(ctx context.Context, w io.Writer) error {
	rates, err := a.bankingService.FDRates(ctx)
	if err != nil {
		return err
	}
	fds, err := a.bankingService.FixedDeposits(ctx)
	if err != nil {
		return err
	}
	rds, err := a.bankingService.RecurringDeposits(ctx)
	if err != nil {
		return err
	}

	heading(w, "Investments")
	fmt.Fprintln(w, "Fixed deposit rates:")
	if err := printRates(w, rates); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nFixed deposits (%d):\n", len(fds))
	for _, d := range fds {
		fmt.Fprintf(w, "  %s  %s at %s%% for %dm, matures %s on %s\n",
			d.DepositNumber, d.Amount.StringFixed(2), d.InterestRate.String(), d.TenureMonths,
			d.MaturityAmount.StringFixed(2), d.MaturityDate.Format("2006-01-02"))
	}

	fmt.Fprintf(w, "\nRecurring deposits (%d):\n", len(rds))
	for _, d := range rds {
		fmt.Fprintf(w, "  %s  %s/month at %s%% for %dm, matures %s\n",
			d.DepositNumber, d.MonthlyDepositAmount.StringFixed(2), d.InterestRate.String(),
			d.TenureMonths, d.MaturityAmount.StringFixed(2))
	}
	return nil
}

func printRates(w io.Writer, rates []models.FDRate) error {
	return table(w, "TENURE\tREGULAR\tSENIOR CITIZEN", func(tw *tabwriter.Writer) {
		for _, r := range rates {
			fmt.Fprintf(tw, "%dm\t%s%%\t%s%%\n", r.TenureMonths, r.RegularRate.StringFixed(2), r.SeniorCitizenRate.StringFixed(2))
		}
	})
}

func (a *App) paymentsScreen(ctx context.Context, w io.Writer) error {
	billers, err := a.bankingService.Billers(ctx)
	if err != nil {
		return err
	}

	heading(w, "Payments")
	fmt.Fprintln(w, "Type 'pay-bill' or 'recharge'. Billers:")
	return table(w, "ID\tNAME\tCATEGORY", func(tw *tabwriter.Writer) {
		for _, b := range billers {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", b.ID, b.Name, b.Category)
		}
	})
}

// adminScreen shows storage diagnostics for the running session.
func (a *App) adminScreen(ctx context.Context, w io.Writer) error {
	st, err := a.diagnostics.CheckStatus(ctx)
	if err != nil {
		return err
	}
	rep, err := a.diagnostics.CheckTokenStorage(ctx)
	if err != nil {
		return err
	}

	heading(w, "Administration")
	fmt.Fprintf(w, "Storage backend: %s\n", a.config.StorageBackend)
	fmt.Fprintf(w, "Token present:   %t %s\n", st.HasToken, st.MaskedToken)
	fmt.Fprintf(w, "User present:    %t\n", st.HasUser)
	if st.UserErr != nil {
		fmt.Fprintf(w, "User record:     %v\n", st.UserErr)
	}
	fmt.Fprintf(w, "Legacy token:    %t\n", rep.HasLegacyToken)
	if rep.Mismatch {
		fmt.Fprintln(w, "Warning: legacy and current tokens disagree. Run 'bankfront diag migrate'.")
	}

	if st.HasToken {
		token, err := a.backend.Store.Get(ctx, rep.TokenKey)
		if err == nil {
			if claims, err := diag.Inspect(string(token)); err == nil {
				fmt.Fprintf(w, "Token subject:   %s\n", claims.Subject)
				fmt.Fprintf(w, "Token roles:     %v\n", claims.Roles)
				if claims.ExpiresAt != nil {
					fmt.Fprintf(w, "Token expires:   %s\n", claims.ExpiresAt.Format("2006-01-02 15:04:05"))
				}
			}
		}
	}
	return nil
}
