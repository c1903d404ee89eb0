package models

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountSavings       AccountType = "SAVINGS"
	AccountCurrent       AccountType = "CURRENT"
	AccountSalary        AccountType = "SALARY"
	AccountJoint         AccountType = "JOINT"
	AccountZeroBalance   AccountType = "ZERO_BALANCE"
	AccountDigital       AccountType = "DIGITAL"
	AccountSeniorCitizen AccountType = "SENIOR_CITIZEN"
)

// OpenableAccountTypes lists the account types a customer can open.
var OpenableAccountTypes = []AccountType{
	AccountSavings, AccountCurrent, AccountSalary, AccountJoint,
	AccountZeroBalance, AccountDigital, AccountSeniorCitizen,
}

// ParseAccountType accepts "savings", "zero-balance", "SENIOR_CITIZEN" and
// similar spellings.
func ParseAccountType(s string) (AccountType, bool) {
	t := AccountType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	return t, slices.Contains(OpenableAccountTypes, t)
}

// AccountRequest opens a new account for the signed-in user.
type AccountRequest struct {
	AccountHolderName string          `json:"accountHolderName"`
	AccountType       AccountType     `json:"accountType"`
	InitialBalance    decimal.Decimal `json:"initialBalance"`
}

type Account struct {
	ID                int64           `json:"id"`
	AccountNumber     string          `json:"accountNumber"`
	AccountHolderName string          `json:"accountHolderName"`
	AccountType       AccountType     `json:"accountType"`
	Balance           decimal.Decimal `json:"balance"`
	Active            bool            `json:"active"`
	CreatedAt         Timestamp       `json:"createdAt"`
}

type Balance struct {
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency,omitempty"`
}

type TransferRequest struct {
	FromAccountNumber string          `json:"fromAccountNumber"`
	ToAccountNumber   string          `json:"toAccountNumber"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description,omitempty"`
}

type Transaction struct {
	ID                int64           `json:"id"`
	TransactionNumber string          `json:"transactionNumber"`
	Amount            decimal.Decimal `json:"amount"`
	Type              string          `json:"type"`
	Description       string          `json:"description,omitempty"`
	Timestamp         Timestamp       `json:"timestamp"`
	Status            string          `json:"status"`
	FromAccountNumber string          `json:"fromAccountNumber,omitempty"`
	ToAccountNumber   string          `json:"toAccountNumber,omitempty"`
}

type LoanType string

const (
	LoanPersonal LoanType = "PERSONAL"
	LoanHome     LoanType = "HOME"
	LoanCar      LoanType = "CAR"
	LoanBusiness LoanType = "BUSINESS"
)

type LoanRequest struct {
	AccountNumber string          `json:"accountNumber"`
	Amount        decimal.Decimal `json:"amount"`
	TermMonths    int             `json:"termMonths"`
	Type          LoanType        `json:"type"`
	Purpose       string          `json:"purpose,omitempty"`
}

type Loan struct {
	ID                int64           `json:"id"`
	LoanNumber        string          `json:"loanNumber"`
	AccountNumber     string          `json:"accountNumber"`
	LoanType          LoanType        `json:"loanType"`
	Amount            decimal.Decimal `json:"amount"`
	InterestRate      decimal.Decimal `json:"interestRate"`
	TenureMonths      int             `json:"tenureMonths"`
	EMI               decimal.Decimal `json:"emi"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	Status            string          `json:"status"`
}

// FDRate is one breakpoint of the fixed deposit rate card.
type FDRate struct {
	TenureMonths      int             `json:"tenureMonths"`
	RegularRate       decimal.Decimal `json:"regularRate"`
	SeniorCitizenRate decimal.Decimal `json:"seniorCitizenRate"`
}

type FixedDepositRequest struct {
	AccountNumber       string          `json:"accountNumber"`
	Amount              decimal.Decimal `json:"amount"`
	TenureMonths        int             `json:"tenureMonths"`
	NomineeName         string          `json:"nomineeName,omitempty"`
	AutoRenew           bool            `json:"autoRenew"`
	MaturityInstruction string          `json:"maturityInstruction,omitempty"`
}

type FixedDeposit struct {
	ID             int64           `json:"id"`
	DepositNumber  string          `json:"depositNumber"`
	AccountNumber  string          `json:"accountNumber"`
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	TenureMonths   int             `json:"tenureMonths"`
	MaturityAmount decimal.Decimal `json:"maturityAmount"`
	MaturityDate   Timestamp       `json:"maturityDate"`
	Status         string          `json:"status"`
}

type RecurringDepositRequest struct {
	AccountNumber        string          `json:"accountNumber"`
	MonthlyDepositAmount decimal.Decimal `json:"monthlyDepositAmount"`
	TenureMonths         int             `json:"tenureMonths"`
	PaymentDay           int             `json:"paymentDay,omitempty"`
	NomineeName          string          `json:"nomineeName,omitempty"`
}

type RecurringDeposit struct {
	ID                   int64           `json:"id"`
	DepositNumber        string          `json:"depositNumber"`
	AccountNumber        string          `json:"accountNumber"`
	MonthlyDepositAmount decimal.Decimal `json:"monthlyDepositAmount"`
	InterestRate         decimal.Decimal `json:"interestRate"`
	TenureMonths         int             `json:"tenureMonths"`
	MaturityAmount       decimal.Decimal `json:"maturityAmount"`
	Status               string          `json:"status"`
}

type Biller struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type BillPaymentRequest struct {
	AccountNumber    string          `json:"accountNumber"`
	BillerID         string          `json:"billerId"`
	ConsumerIDNumber string          `json:"consumerIdNumber"`
	Amount           decimal.Decimal `json:"amount"`
	Remarks          string          `json:"remarks,omitempty"`
}

type MobileRechargeRequest struct {
	AccountNumber string          `json:"accountNumber"`
	MobileNumber  string          `json:"mobileNumber"`
	Operator      string          `json:"operator"`
	Amount        decimal.Decimal `json:"amount"`
	RechargeType  string          `json:"rechargeType,omitempty"`
}

// PaymentReceipt is returned by bill payment and recharge endpoints.
type PaymentReceipt struct {
	ReferenceNumber string          `json:"referenceNumber"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	Timestamp       Timestamp       `json:"timestamp"`
}
