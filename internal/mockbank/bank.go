package mockbank

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/calc"
	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists        = errors.New("user already exists")
	ErrBadCredentials    = errors.New("invalid email or password")
	ErrBadOTP            = errors.New("invalid or expired OTP")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotOwner          = errors.New("account does not belong to the caller")
	ErrInvalidRequest    = errors.New("invalid request")
)

// hashCost is lowered by tests.
var hashCost = bcrypt.DefaultCost

// Annual loan rates by product.
var loanRates = map[models.LoanType]decimal.Decimal{
	models.LoanPersonal: decimal.RequireFromString("10.5"),
	models.LoanHome:     decimal.RequireFromString("8.5"),
	models.LoanCar:      decimal.RequireFromString("9"),
	models.LoanBusiness: decimal.RequireFromString("12"),
}

var billers = []models.Biller{
	{ID: "ELEC-01", Name: "City Power", Category: "ELECTRICITY"},
	{ID: "WATR-01", Name: "Metro Water", Category: "WATER"},
	{ID: "GAS-01", Name: "Piped Gas Co", Category: "GAS"},
	{ID: "BBND-01", Name: "FiberNet", Category: "BROADBAND"},
}

type userRecord struct {
	user models.User
	hash []byte
}

type owned[T any] struct {
	owner int64
	item  T
}

// NewUser describes an account holder to create.
type NewUser struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	PhoneNumber    string
	Role           models.Role
	OpeningBalance decimal.Decimal
}

// Bank is the in-memory state of the mock backend. All methods are safe for
// concurrent use.
type Bank struct {
	mu sync.Mutex

	seq      int64
	users    map[string]*userRecord
	byID     map[int64]*userRecord
	accounts map[string]*owned[models.Account]
	sessions map[string]int64
	otps     map[string]string

	txns  []models.Transaction
	loans []owned[models.Loan]
	fds   []owned[models.FixedDeposit]
	rds   []owned[models.RecurringDeposit]

	nowFn func() time.Time
}

func NewBank() *Bank {
	return &Bank{
		users:    make(map[string]*userRecord),
		byID:     make(map[int64]*userRecord),
		accounts: make(map[string]*owned[models.Account]),
		sessions: make(map[string]int64),
		otps:     make(map[string]string),
		nowFn:    time.Now,
	}
}

func (b *Bank) nextID() int64 {
	b.seq++
	return b.seq
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func reference(prefix string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// AddUser creates a user together with a savings account holding the
// opening balance.
func (b *Bank) AddUser(in NewUser) (*models.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, ErrInvalidRequest
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := in.Role
	if !role.Valid() {
		role = models.RoleCustomer
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := emailKey(in.Email)
	if _, ok := b.users[key]; ok {
		return nil, ErrUserExists
	}

	rec := &userRecord{
		user: models.User{
			ID:            b.nextID(),
			Email:         key,
			FirstName:     in.FirstName,
			LastName:      in.LastName,
			PhoneNumber:   in.PhoneNumber,
			Role:          role,
			EmailVerified: true,
		},
		hash: hash,
	}
	b.users[key] = rec
	b.byID[rec.user.ID] = rec
	b.addAccount(rec.user.ID, rec.user.FullName(), models.AccountSavings, in.OpeningBalance)

	u := rec.user
	return &u, nil
}

// addAccount must be called with mu held.
func (b *Bank) addAccount(owner int64, holder string, kind models.AccountType, balance decimal.Decimal) models.Account {
	id := b.nextID()
	acc := models.Account{
		ID:                id,
		AccountNumber:     fmt.Sprintf("AB%010d", id),
		AccountHolderName: holder,
		AccountType:       kind,
		Balance:           balance,
		Active:            true,
		CreatedAt:         models.Timestamp{Time: b.nowFn()},
	}
	b.accounts[acc.AccountNumber] = &owned[models.Account]{owner: owner, item: acc}
	return acc
}

// OpenAccount adds an account of the requested type for the user. The
// holder name defaults to the user's full name.
func (b *Bank) OpenAccount(userID int64, in models.AccountRequest) (*models.Account, error) {
	kind, ok := models.ParseAccountType(string(in.AccountType))
	if !ok || in.InitialBalance.IsNegative() {
		return nil, ErrInvalidRequest
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.byID[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	holder := strings.TrimSpace(in.AccountHolderName)
	if holder == "" {
		holder = rec.user.FullName()
	}
	acc := b.addAccount(userID, holder, kind, in.InitialBalance)
	return &acc, nil
}

// Authenticate checks email and password.
func (b *Bank) Authenticate(email, password string) (*models.User, error) {
	b.mu.Lock()
	rec, ok := b.users[emailKey(email)]
	b.mu.Unlock()

	if !ok {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	u := rec.user
	return &u, nil
}

// IssueOTP remembers code as the pending one-time password for email.
func (b *Bank) IssueOTP(email, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.otps[emailKey(email)] = code
}

// VerifyOTP consumes the pending code for email.
func (b *Bank) VerifyOTP(email, code string) (*models.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := emailKey(email)
	want, ok := b.otps[key]
	if !ok || want != code {
		return nil, ErrBadOTP
	}
	delete(b.otps, key)

	rec, ok := b.users[key]
	if !ok {
		return nil, ErrBadOTP
	}
	u := rec.user
	return &u, nil
}

func (b *Bank) User(id int64) (*models.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	u := rec.user
	return &u, nil
}

// Users lists every user ordered by id.
func (b *Bank) Users() []models.User {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.User, 0, len(b.byID))
	for _, rec := range b.byID {
		out = append(out, rec.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StartSession records an issued token id.
func (b *Bank) StartSession(jti string, userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[jti] = userID
}

func (b *Bank) EndSession(jti string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, jti)
}

// SessionActive reports whether jti was issued to userID and not revoked.
func (b *Bank) SessionActive(jti string, userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	owner, ok := b.sessions[jti]
	return ok && owner == userID
}

// RevokeSessions ends every session of the user and returns how many were
// active.
func (b *Bank) RevokeSessions(userID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for jti, owner := range b.sessions {
		if owner == userID {
			delete(b.sessions, jti)
			n++
		}
	}
	return n
}

// Accounts lists the user's accounts ordered by id.
func (b *Bank) Accounts(userID int64) []models.Account {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Account, 0)
	for _, a := range b.accounts {
		if a.owner == userID {
			out = append(out, a.item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Bank) Account(userID, id int64) (*models.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, a := range b.accounts {
		if a.item.ID != id {
			continue
		}
		if a.owner != userID {
			return nil, ErrNotOwner
		}
		acc := a.item
		return &acc, nil
	}
	return nil, common.ErrNotFound
}

// ownedAccount must be called with mu held.
func (b *Bank) ownedAccount(userID int64, number string) (*owned[models.Account], error) {
	a, ok := b.accounts[number]
	if !ok {
		return nil, common.ErrNotFound
	}
	if a.owner != userID {
		return nil, ErrNotOwner
	}
	return a, nil
}

// debit must be called with mu held.
func (b *Bank) debit(userID int64, number string, amount decimal.Decimal, kind, description string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidRequest
	}
	a, err := b.ownedAccount(userID, number)
	if err != nil {
		return nil, err
	}
	if a.item.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}
	a.item.Balance = a.item.Balance.Sub(amount)

	tx := models.Transaction{
		ID:                b.nextID(),
		TransactionNumber: reference("TXN"),
		Amount:            amount,
		Type:              kind,
		Description:       description,
		Timestamp:         models.Timestamp{Time: b.nowFn()},
		Status:            "COMPLETED",
		FromAccountNumber: number,
	}
	b.txns = append(b.txns, tx)
	return &tx, nil
}

// Transfer moves money from one of the caller's accounts to any account.
func (b *Bank) Transfer(userID int64, in models.TransferRequest) (*models.Transaction, error) {
	if in.FromAccountNumber == in.ToAccountNumber {
		return nil, ErrInvalidRequest
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	to, ok := b.accounts[in.ToAccountNumber]
	if !ok {
		return nil, common.ErrNotFound
	}

	tx, err := b.debit(userID, in.FromAccountNumber, in.Amount, "TRANSFER", in.Description)
	if err != nil {
		return nil, err
	}
	to.item.Balance = to.item.Balance.Add(in.Amount)

	b.txns[len(b.txns)-1].ToAccountNumber = in.ToAccountNumber
	tx.ToAccountNumber = in.ToAccountNumber
	return tx, nil
}

// History lists transactions touching the account, newest first.
func (b *Bank) History(userID int64, number string) ([]models.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.ownedAccount(userID, number); err != nil {
		return nil, err
	}

	out := make([]models.Transaction, 0)
	for i := len(b.txns) - 1; i >= 0; i-- {
		t := b.txns[i]
		if t.FromAccountNumber == number || t.ToAccountNumber == number {
			out = append(out, t)
		}
	}
	return out, nil
}

func (b *Bank) ApplyLoan(userID int64, in models.LoanRequest) (*models.Loan, error) {
	rate, ok := loanRates[in.Type]
	if !ok {
		return nil, ErrInvalidRequest
	}
	emi, err := calc.EMI(in.Amount, rate, in.TermMonths)
	if err != nil || !in.Amount.IsPositive() {
		return nil, ErrInvalidRequest
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.ownedAccount(userID, in.AccountNumber); err != nil {
		return nil, err
	}

	loan := models.Loan{
		ID:                b.nextID(),
		LoanNumber:        reference("LN"),
		AccountNumber:     in.AccountNumber,
		LoanType:          in.Type,
		Amount:            in.Amount,
		InterestRate:      rate,
		TenureMonths:      in.TermMonths,
		EMI:               emi.EMI,
		OutstandingAmount: emi.TotalPayment,
		Status:            "PENDING",
	}
	b.loans = append(b.loans, owned[models.Loan]{owner: userID, item: loan})
	return &loan, nil
}

func (b *Bank) Loans(userID int64) []models.Loan {
	b.mu.Lock()
	defer b.mu.Unlock()
	return filterOwned(b.loans, userID)
}

func filterOwned[T any](items []owned[T], userID int64) []T {
	out := make([]T, 0)
	for _, it := range items {
		if it.owner == userID {
			out = append(out, it.item)
		}
	}
	return out
}

func (b *Bank) FDRates() []models.FDRate {
	return calc.DefaultFDRates()
}

// OpenFixedDeposit debits the principal and books the deposit at the card
// rate for its tenure.
func (b *Bank) OpenFixedDeposit(userID int64, in models.FixedDepositRequest) (*models.FixedDeposit, error) {
	res, err := calc.FD(in.Amount, in.TenureMonths, b.FDRates(), false)
	if err != nil {
		return nil, ErrInvalidRequest
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.debit(userID, in.AccountNumber, in.Amount, "FIXED_DEPOSIT", "Fixed deposit booking"); err != nil {
		return nil, err
	}

	fd := models.FixedDeposit{
		ID:             b.nextID(),
		DepositNumber:  reference("FD"),
		AccountNumber:  in.AccountNumber,
		Amount:         in.Amount,
		InterestRate:   res.Rate,
		TenureMonths:   in.TenureMonths,
		MaturityAmount: res.Maturity,
		MaturityDate:   models.Timestamp{Time: b.nowFn().AddDate(0, in.TenureMonths, 0)},
		Status:         "ACTIVE",
	}
	b.fds = append(b.fds, owned[models.FixedDeposit]{owner: userID, item: fd})
	return &fd, nil
}

func (b *Bank) FixedDeposits(userID int64) []models.FixedDeposit {
	b.mu.Lock()
	defer b.mu.Unlock()
	return filterOwned(b.fds, userID)
}

// OpenRecurringDeposit debits the first installment.
func (b *Bank) OpenRecurringDeposit(userID int64, in models.RecurringDepositRequest) (*models.RecurringDeposit, error) {
	rate := calc.FDRateFor(b.FDRates(), in.TenureMonths, false)
	res, err := calc.RD(in.MonthlyDepositAmount, rate, in.TenureMonths)
	if err != nil {
		return nil, ErrInvalidRequest
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.debit(userID, in.AccountNumber, in.MonthlyDepositAmount, "RECURRING_DEPOSIT", "Recurring deposit installment"); err != nil {
		return nil, err
	}

	rd := models.RecurringDeposit{
		ID:                   b.nextID(),
		DepositNumber:        reference("RD"),
		AccountNumber:        in.AccountNumber,
		MonthlyDepositAmount: in.MonthlyDepositAmount,
		InterestRate:         rate,
		TenureMonths:         in.TenureMonths,
		MaturityAmount:       res.Maturity,
		Status:               "ACTIVE",
	}
	b.rds = append(b.rds, owned[models.RecurringDeposit]{owner: userID, item: rd})
	return &rd, nil
}

func (b *Bank) RecurringDeposits(userID int64) []models.RecurringDeposit {
	b.mu.Lock()
	defer b.mu.Unlock()
	return filterOwned(b.rds, userID)
}

func (b *Bank) Billers() []models.Biller {
	out := make([]models.Biller, len(billers))
	copy(out, billers)
	return out
}

func (b *Bank) PayBill(userID int64, in models.BillPaymentRequest) (*models.PaymentReceipt, error) {
	var biller *models.Biller
	for i := range billers {
		if billers[i].ID == in.BillerID {
			biller = &billers[i]
		}
	}
	if biller == nil || in.ConsumerIDNumber == "" {
		return nil, ErrInvalidRequest
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.debit(userID, in.AccountNumber, in.Amount, "BILL_PAYMENT", biller.Name+" "+in.ConsumerIDNumber)
	if err != nil {
		return nil, err
	}
	return receipt(tx), nil
}

func (b *Bank) RechargeMobile(userID int64, in models.MobileRechargeRequest) (*models.PaymentReceipt, error) {
	if len(in.MobileNumber) != 10 || in.Operator == "" {
		return nil, ErrInvalidRequest
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.debit(userID, in.AccountNumber, in.Amount, "MOBILE_RECHARGE", in.Operator+" "+in.MobileNumber)
	if err != nil {
		return nil, err
	}
	return receipt(tx), nil
}

func receipt(tx *models.Transaction) *models.PaymentReceipt {
	return &models.PaymentReceipt{
		ReferenceNumber: tx.TransactionNumber,
		Amount:          tx.Amount,
		Status:          tx.Status,
		Timestamp:       tx.Timestamp,
	}
}
