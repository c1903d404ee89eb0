package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/bankfront/internal/calc"
	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/client/services"
	"github.com/shopspring/decimal"
)

func (a *App) openAccountScreen(ctx context.Context, w io.Writer) error {
	heading(w, "Open a new account")
	f := form{reader: a.reader, w: w}

	names := make([]string, len(models.OpenableAccountTypes))
	for i, t := range models.OpenableAccountTypes {
		names[i] = string(t)
	}
	fmt.Fprintf(w, "Account types: %s\n", strings.Join(names, ", "))

	var in models.AccountRequest
	kind, err := f.textOr("Account type", string(models.AccountSavings))
	if err != nil {
		return err
	}
	in.AccountType = models.AccountType(kind)
	holder := ""
	if u := a.sessions.State().User; u != nil {
		holder = u.FullName()
	}
	if in.AccountHolderName, err = f.textOr("Account holder", holder); err != nil {
		return err
	}
	if in.InitialBalance, err = f.decimalOr("Initial deposit", decimal.Zero); err != nil {
		return err
	}

	acc, err := a.bankingService.OpenAccount(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Account %s opened: %s for %s, balance %s\n",
		acc.AccountNumber, acc.AccountType, acc.AccountHolderName, acc.Balance.StringFixed(2))
	return nil
}

func (a *App) transferScreen(ctx context.Context, w io.Writer) error {
	heading(w, "Transfer money")
	f := form{reader: a.reader, w: w}

	var in models.TransferRequest
	var err error
	if in.FromAccountNumber, err = f.first("From account"); err != nil {
		return err
	}
	if in.ToAccountNumber, err = f.text("To account"); err != nil {
		return err
	}
	if in.Amount, err = f.decimal("Amount"); err != nil {
		return err
	}
	if in.Description, err = f.text("Description (optional)"); err != nil {
		return err
	}

	ok, err := f.confirm(fmt.Sprintf("Send %s from %s to %s?", in.Amount.StringFixed(2), in.FromAccountNumber, in.ToAccountNumber))
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	tx, err := a.bankingService.Transfer(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Transfer %s completed: %s %s\n", tx.TransactionNumber, tx.Amount.StringFixed(2), tx.Status)
	return nil
}

func (a *App) applyLoanScreen(ctx context.Context, w io.Writer) error {
	heading(w, "Apply for a loan")
	f := form{reader: a.reader, w: w}

	var in models.LoanRequest
	var err error
	if in.AccountNumber, err = f.first("Disbursement account"); err != nil {
		return err
	}
	kind, err := f.textOr("Loan type (PERSONAL, HOME, CAR, BUSINESS)", string(models.LoanPersonal))
	if err != nil {
		return err
	}
	in.Type = models.LoanType(strings.ToUpper(kind))
	if in.Amount, err = f.decimal("Amount"); err != nil {
		return err
	}
	if in.TermMonths, err = f.integer("Term in months"); err != nil {
		return err
	}
	if in.Purpose, err = f.text("Purpose (optional)"); err != nil {
		return err
	}

	loan, err := a.bankingService.ApplyLoan(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Loan %s submitted: %s at %s%% for %d months, EMI %s, status %s\n",
		loan.LoanNumber, loan.Amount.StringFixed(2), loan.InterestRate.String(),
		loan.TenureMonths, loan.EMI.StringFixed(2), loan.Status)
	return nil
}

func (a *App) openFDScreen(ctx context.Context, w io.Writer) error {
	heading(w, "Open a fixed deposit")
	f := form{reader: a.reader, w: w}

	var in models.FixedDepositRequest
	var err error
	if in.AccountNumber, err = f.first("Funding account"); err != nil {
		return err
	}
	if in.Amount, err = f.decimal("Amount"); err != nil {
		return err
	}
	if in.TenureMonths, err = f.integer("Tenure in months"); err != nil {
		return err
	}
	if in.NomineeName, err = f.text("Nominee (optional)"); err != nil {
		return err
	}
	if in.AutoRenew, err = f.confirm("Renew automatically on maturity?"); err != nil {
		return err
	}

	fd, err := a.bankingService.OpenFixedDeposit(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Fixed deposit %s opened at %s%%, maturity %s on %s\n",
		fd.DepositNumber, fd.InterestRate.String(), fd.MaturityAmount.StringFixed(2), fd.MaturityDate.Format("2006-01-02"))
	return nil
}

func (a *App) openRDScreen(ctx context.Context, w io.Writer) error {
	heading(w, "Open a recurring deposit")
	f := form{reader: a.reader, w: w}

	var in models.RecurringDepositRequest
	var err error
	if in.AccountNumber, err = f.first("Funding account"); err != nil {
		return err
	}
	if in.MonthlyDepositAmount, err = f.decimal("Monthly amount"); err != nil {
		return err
	}
	if in.TenureMonths, err = f.integer("Tenure in months"); err != nil {
		return err
	}
	if in.NomineeName, err = f.text("Nominee (optional)"); err != nil {
		return err
	}

	rd, err := a.bankingService.OpenRecurringDeposit(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Recurring deposit %s opened at %s%%, maturity %s\n",
		rd.DepositNumber, rd.InterestRate.String(), rd.MaturityAmount.StringFixed(2))
	return nil
}

func (a *App) payBillScreen(ctx context.Context, w io.Writer) error {
	heading(w, "Pay a bill")
	f := form{reader: a.reader, w: w}

	var in models.BillPaymentRequest
	var err error
	if in.AccountNumber, err = f.first("Paying account"); err != nil {
		return err
	}
	if in.BillerID, err = f.text("Biller ID"); err != nil {
		return err
	}
	if in.ConsumerIDNumber, err = f.text("Consumer number"); err != nil {
		return err
	}
	if in.Amount, err = f.decimal("Amount"); err != nil {
		return err
	}

	r, err := a.bankingService.PayBill(ctx, in)
	if err != nil {
		return err
	}
	printReceipt(w, r)
	return nil
}

func (a *App) rechargeScreen(ctx context.Context, w io.Writer) error {
	heading(w, "Mobile recharge")
	f := form{reader: a.reader, w: w}

	var in models.MobileRechargeRequest
	var err error
	if in.AccountNumber, err = f.first("Paying account"); err != nil {
		return err
	}
	if in.MobileNumber, err = f.text("Mobile number"); err != nil {
		return err
	}
	if in.Operator, err = f.text("Operator"); err != nil {
		return err
	}
	if in.Amount, err = f.decimal("Amount"); err != nil {
		return err
	}
	in.RechargeType = "PREPAID"

	r, err := a.bankingService.RechargeMobile(ctx, in)
	if err != nil {
		return err
	}
	printReceipt(w, r)
	return nil
}

func printReceipt(w io.Writer, r *models.PaymentReceipt) {
	fmt.Fprintf(w, "Payment %s: %s %s\n", r.ReferenceNumber, r.Amount.StringFixed(2), r.Status)
}

// calculatorsScreen runs one of the offline estimators. It needs no session.
func (a *App) calculatorsScreen(_ context.Context, w io.Writer) error {
	heading(w, "Calculators")
	f := form{reader: a.reader, w: w}

	kind, err := f.first("Calculator (emi, fd, rd)")
	if err != nil {
		return err
	}

	switch strings.ToLower(kind) {
	case "emi":
		return emiForm(f, w)
	case "fd":
		return fdForm(f, w)
	case "rd":
		return rdForm(f, w)
	default:
		return fmt.Errorf("%w: unknown calculator %q", services.ErrValidation, kind)
	}
}

func emiForm(f form, w io.Writer) error {
	principal, err := f.decimal("Loan amount")
	if err != nil {
		return err
	}
	rate, err := f.decimal("Annual interest rate (%)")
	if err != nil {
		return err
	}
	months, err := f.integer("Tenure in months")
	if err != nil {
		return err
	}

	r, err := calc.EMI(principal, rate, months)
	if err != nil {
		return fmt.Errorf("%w: %v", services.ErrValidation, err)
	}
	PrintEMI(w, r)
	return nil
}

func fdForm(f form, w io.Writer) error {
	principal, err := f.decimal("Deposit amount")
	if err != nil {
		return err
	}
	months, err := f.integer("Tenure in months")
	if err != nil {
		return err
	}
	senior, err := f.confirm("Senior citizen?")
	if err != nil {
		return err
	}

	r, err := calc.FD(principal, months, calc.DefaultFDRates(), senior)
	if err != nil {
		return fmt.Errorf("%w: %v", services.ErrValidation, err)
	}
	PrintFD(w, r)
	return nil
}

func rdForm(f form, w io.Writer) error {
	monthly, err := f.decimal("Monthly deposit")
	if err != nil {
		return err
	}
	months, err := f.integer("Tenure in months")
	if err != nil {
		return err
	}
	rate := calc.FDRateFor(calc.DefaultFDRates(), months, false)
	if rate, err = f.decimalOr("Annual interest rate (%)", rate); err != nil {
		return err
	}

	r, err := calc.RD(monthly, rate, months)
	if err != nil {
		return fmt.Errorf("%w: %v", services.ErrValidation, err)
	}
	PrintRD(w, r)
	return nil
}

// PrintEMI, PrintFD and PrintRD are shared with the calc subcommands.
func PrintEMI(w io.Writer, r calc.EMIResult) {
	fmt.Fprintf(w, "Monthly EMI:    %s\n", r.EMI.StringFixed(2))
	fmt.Fprintf(w, "Total payment:  %s\n", r.TotalPayment.StringFixed(2))
	fmt.Fprintf(w, "Total interest: %s\n", r.TotalInterest.StringFixed(2))
}

func PrintFD(w io.Writer, r calc.FDResult) {
	fmt.Fprintf(w, "Rate:     %s%%\n", r.Rate.StringFixed(2))
	fmt.Fprintf(w, "Interest: %s\n", r.Interest.StringFixed(2))
	fmt.Fprintf(w, "Maturity: %s\n", r.Maturity.StringFixed(2))
}

func PrintRD(w io.Writer, r calc.RDResult) {
	fmt.Fprintf(w, "Total deposited: %s\n", r.TotalDeposited.StringFixed(2))
	fmt.Fprintf(w, "Interest earned: %s\n", r.InterestEarned.StringFixed(2))
	fmt.Fprintf(w, "Maturity:        %s\n", r.Maturity.StringFixed(2))
}
