package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/bankfront/internal/calc"
	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/logging"
	"github.com/shopspring/decimal"
)

var mobilePattern = regexp.MustCompile(`^\d{10}$`)

type BankingClient interface {
	Accounts(ctx context.Context) ([]models.Account, error)
	OpenAccount(ctx context.Context, in models.AccountRequest) (*models.Account, error)
	Account(ctx context.Context, id int64) (*models.Account, error)
	Balance(ctx context.Context, id int64) (*models.Balance, error)
	Transfer(ctx context.Context, in models.TransferRequest) (*models.Transaction, error)
	History(ctx context.Context, accountNumber string) ([]models.Transaction, error)
	ApplyLoan(ctx context.Context, in models.LoanRequest) (*models.Loan, error)
	Loans(ctx context.Context) ([]models.Loan, error)
	FDRates(ctx context.Context) ([]models.FDRate, error)
	OpenFixedDeposit(ctx context.Context, in models.FixedDepositRequest) (*models.FixedDeposit, error)
	FixedDeposits(ctx context.Context) ([]models.FixedDeposit, error)
	OpenRecurringDeposit(ctx context.Context, in models.RecurringDepositRequest) (*models.RecurringDeposit, error)
	RecurringDeposits(ctx context.Context) ([]models.RecurringDeposit, error)
	PayBill(ctx context.Context, in models.BillPaymentRequest) (*models.PaymentReceipt, error)
	RechargeMobile(ctx context.Context, in models.MobileRechargeRequest) (*models.PaymentReceipt, error)
	Billers(ctx context.Context) ([]models.Biller, error)
}

// BankingService exposes the business operations of the shell screens.
type BankingService interface {
	BankingClient
}

type bankingService struct {
	client BankingClient
	logger logging.Logger
}

func NewBankingService(client BankingClient, logger logging.Logger) BankingService {
	return &bankingService{client: client, logger: logger}
}

func positive(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return invalid("%s must be greater than zero", field)
	}
	return nil
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalid("%s is required", field)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *bankingService) Accounts(ctx context.Context) ([]models.Account, error) {
	return s.client.Accounts(ctx)
}

func (s *bankingService) OpenAccount(ctx context.Context, in models.AccountRequest) (*models.Account, error) {
	t, ok := models.ParseAccountType(string(in.AccountType))
	if !ok {
		return nil, invalid("unknown account type %q", in.AccountType)
	}
	in.AccountType = t
	if err := required("account holder name", in.AccountHolderName); err != nil {
		return nil, err
	}
	if in.InitialBalance.IsNegative() {
		return nil, invalid("initial balance cannot be negative")
	}
	return s.client.OpenAccount(ctx, in)
}

func (s *bankingService) Account(ctx context.Context, id int64) (*models.Account, error) {
	if id <= 0 {
		return nil, invalid("account id must be positive")
	}
	return s.client.Account(ctx, id)
}

func (s *bankingService) Balance(ctx context.Context, id int64) (*models.Balance, error) {
	if id <= 0 {
		return nil, invalid("account id must be positive")
	}
	return s.client.Balance(ctx, id)
}

func (s *bankingService) Transfer(ctx context.Context, in models.TransferRequest) (*models.Transaction, error) {
	err := firstErr(
		required("source account", in.FromAccountNumber),
		required("destination account", in.ToAccountNumber),
		positive("amount", in.Amount),
	)
	if err != nil {
		return nil, err
	}
	if in.FromAccountNumber == in.ToAccountNumber {
		return nil, invalid("source and destination accounts must differ")
	}
	return s.client.Transfer(ctx, in)
}

func (s *bankingService) History(ctx context.Context, accountNumber string) ([]models.Transaction, error) {
	if err := required("account number", accountNumber); err != nil {
		return nil, err
	}
	return s.client.History(ctx, accountNumber)
}

func (s *bankingService) ApplyLoan(ctx context.Context, in models.LoanRequest) (*models.Loan, error) {
	err := firstErr(
		required("account number", in.AccountNumber),
		positive("amount", in.Amount),
	)
	if err != nil {
		return nil, err
	}
	if in.TermMonths <= 0 {
		return nil, invalid("term must be at least one month")
	}
	if in.Type == "" {
		in.Type = models.LoanPersonal
	}
	return s.client.ApplyLoan(ctx, in)
}

func (s *bankingService) Loans(ctx context.Context) ([]models.Loan, error) {
	return s.client.Loans(ctx)
}

// FDRates returns the backend rate card, or the built-in one when the
// backend has none or cannot be reached.
func (s *bankingService) FDRates(ctx context.Context) ([]models.FDRate, error) {
	rates, err := s.client.FDRates(ctx)
	if err != nil {
		s.logger.Warn(ctx, "using built-in FD rates", "error", err)
		return calc.DefaultFDRates(), nil
	}
	if len(rates) == 0 {
		return calc.DefaultFDRates(), nil
	}
	return rates, nil
}

func (s *bankingService) OpenFixedDeposit(ctx context.Context, in models.FixedDepositRequest) (*models.FixedDeposit, error) {
	err := firstErr(
		required("account number", in.AccountNumber),
		positive("amount", in.Amount),
	)
	if err != nil {
		return nil, err
	}
	if in.TenureMonths <= 0 {
		return nil, invalid("tenure must be at least one month")
	}
	return s.client.OpenFixedDeposit(ctx, in)
}

func (s *bankingService) FixedDeposits(ctx context.Context) ([]models.FixedDeposit, error) {
	return s.client.FixedDeposits(ctx)
}

func (s *bankingService) OpenRecurringDeposit(ctx context.Context, in models.RecurringDepositRequest) (*models.RecurringDeposit, error) {
	err := firstErr(
		required("account number", in.AccountNumber),
		positive("monthly deposit", in.MonthlyDepositAmount),
	)
	if err != nil {
		return nil, err
	}
	if in.TenureMonths <= 0 {
		return nil, invalid("tenure must be at least one month")
	}
	if in.PaymentDay < 0 || in.PaymentDay > 28 {
		return nil, invalid("payment day must be between 1 and 28")
	}
	return s.client.OpenRecurringDeposit(ctx, in)
}

func (s *bankingService) RecurringDeposits(ctx context.Context) ([]models.RecurringDeposit, error) {
	return s.client.RecurringDeposits(ctx)
}

func (s *bankingService) PayBill(ctx context.Context, in models.BillPaymentRequest) (*models.PaymentReceipt, error) {
	err := firstErr(
		required("account number", in.AccountNumber),
		required("biller", in.BillerID),
		required("consumer number", in.ConsumerIDNumber),
		positive("amount", in.Amount),
	)
	if err != nil {
		return nil, err
	}
	return s.client.PayBill(ctx, in)
}

func (s *bankingService) RechargeMobile(ctx context.Context, in models.MobileRechargeRequest) (*models.PaymentReceipt, error) {
	err := firstErr(
		required("account number", in.AccountNumber),
		required("operator", in.Operator),
		positive("amount", in.Amount),
	)
	if err != nil {
		return nil, err
	}
	if !mobilePattern.MatchString(in.MobileNumber) {
		return nil, invalid("mobile number must have 10 digits")
	}
	return s.client.RechargeMobile(ctx, in)
}

func (s *bankingService) Billers(ctx context.Context) ([]models.Biller, error) {
	return s.client.Billers(ctx)
}
