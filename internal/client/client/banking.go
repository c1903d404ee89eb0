package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
)

const (
	accountsRoute         = "/api/v1/accounts"
	accountRoute          = "/api/v1/accounts/{id}"
	accountBalanceRoute   = "/api/v1/accounts/{id}/balance"
	transferRoute         = "/api/v1/transactions/transfer"
	accountHistoryRoute   = "/api/v1/transactions/account/{accountId}"
	loansRoute            = "/api/v1/loans"
	loanApplyRoute        = "/api/v1/loans/apply"
	fdRatesRoute          = "/api/v1/investments/fd-rates"
	fixedDepositsRoute    = "/api/v1/investments/fixed-deposits"
	recurringDepositRoute = "/api/v1/investments/recurring-deposits"
	billPaymentRoute      = "/api/v1/payments/bill"
	mobileRechargeRoute   = "/api/v1/payments/mobile-recharge"
	billersRoute          = "/api/v1/payments/billers"
)

func (c *Client) get(ctx context.Context, route, path string, out any) error {
	return c.call(ctx, request{method: http.MethodGet, route: route, path: path}, out)
}

func (c *Client) post(ctx context.Context, route string, body, out any) error {
	return c.call(ctx, request{method: http.MethodPost, route: route, path: route, body: body}, out)
}

func (c *Client) Accounts(ctx context.Context) ([]models.Account, error) {
	var out []models.Account
	if err := c.get(ctx, accountsRoute, accountsRoute, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OpenAccount creates an account of the requested type.
func (c *Client) OpenAccount(ctx context.Context, in models.AccountRequest) (*models.Account, error) {
	var out models.Account
	if err := c.post(ctx, accountsRoute, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Account(ctx context.Context, id int64) (*models.Account, error) {
	var out models.Account
	if err := c.get(ctx, accountRoute, fmt.Sprintf("%s/%d", accountsRoute, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Balance(ctx context.Context, id int64) (*models.Balance, error) {
	var out models.Balance
	if err := c.get(ctx, accountBalanceRoute, fmt.Sprintf("%s/%d/balance", accountsRoute, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Transfer(ctx context.Context, in models.TransferRequest) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.post(ctx, transferRoute, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History lists transactions of one account, newest first.
func (c *Client) History(ctx context.Context, accountNumber string) ([]models.Transaction, error) {
	var out []models.Transaction
	path := "/api/v1/transactions/account/" + url.PathEscape(accountNumber)
	if err := c.get(ctx, accountHistoryRoute, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ApplyLoan(ctx context.Context, in models.LoanRequest) (*models.Loan, error) {
	var out models.Loan
	if err := c.post(ctx, loanApplyRoute, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Loans(ctx context.Context) ([]models.Loan, error) {
	var out []models.Loan
	if err := c.get(ctx, loansRoute, loansRoute, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FDRates(ctx context.Context) ([]models.FDRate, error) {
	var out []models.FDRate
	if err := c.get(ctx, fdRatesRoute, fdRatesRoute, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) OpenFixedDeposit(ctx context.Context, in models.FixedDepositRequest) (*models.FixedDeposit, error) {
	var out models.FixedDeposit
	if err := c.post(ctx, fixedDepositsRoute, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FixedDeposits(ctx context.Context) ([]models.FixedDeposit, error) {
	var out []models.FixedDeposit
	if err := c.get(ctx, fixedDepositsRoute, fixedDepositsRoute, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) OpenRecurringDeposit(ctx context.Context, in models.RecurringDepositRequest) (*models.RecurringDeposit, error) {
	var out models.RecurringDeposit
	if err := c.post(ctx, recurringDepositRoute, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecurringDeposits(ctx context.Context) ([]models.RecurringDeposit, error) {
	var out []models.RecurringDeposit
	if err := c.get(ctx, recurringDepositRoute, recurringDepositRoute, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PayBill(ctx context.Context, in models.BillPaymentRequest) (*models.PaymentReceipt, error) {
	var out models.PaymentReceipt
	if err := c.post(ctx, billPaymentRoute, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RechargeMobile(ctx context.Context, in models.MobileRechargeRequest) (*models.PaymentReceipt, error) {
	var out models.PaymentReceipt
	if err := c.post(ctx, mobileRechargeRoute, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Billers(ctx context.Context) ([]models.Biller, error) {
	var out []models.Biller
	if err := c.get(ctx, billersRoute, billersRoute, &out); err != nil {
		return nil, err
	}
	return out, nil
}
