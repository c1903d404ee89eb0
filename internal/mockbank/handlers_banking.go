package mockbank

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/common"
	"github.com/dmitrijs2005/bankfront/internal/mockbank/response"
	"github.com/gin-gonic/gin"
)

// fail maps bank errors to statuses.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		response.NotFound(c, "Account not found")
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "Access denied", err)
	case errors.Is(err, ErrInsufficientFunds):
		response.Error(c, http.StatusBadRequest, "Insufficient balance", err)
	case errors.Is(err, ErrInvalidRequest):
		response.ValidationError(c, "Invalid request", err)
	default:
		response.Error(c, http.StatusInternalServerError, "Internal error", err)
	}
}

func userID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

func bind(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		response.ValidationError(c, "Invalid request body", err)
		return false
	}
	return true
}

func (s *Server) listAccounts(c *gin.Context) {
	response.Success(c, http.StatusOK, "Accounts", s.bank.Accounts(userID(c)))
}

func (s *Server) openAccount(c *gin.Context) {
	var req models.AccountRequest
	if !bind(c, &req) {
		return
	}
	acc, err := s.bank.OpenAccount(userID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Account created successfully", acc)
}

func (s *Server) account(c *gin.Context) (*models.Account, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid account id", err)
		return nil, false
	}
	acc, err := s.bank.Account(userID(c), id)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return acc, true
}

func (s *Server) getAccount(c *gin.Context) {
	if acc, ok := s.account(c); ok {
		response.Success(c, http.StatusOK, "Account", acc)
	}
}

func (s *Server) getBalance(c *gin.Context) {
	if acc, ok := s.account(c); ok {
		response.Success(c, http.StatusOK, "Balance", models.Balance{
			AccountNumber: acc.AccountNumber,
			Balance:       acc.Balance,
			Currency:      "INR",
		})
	}
}

func (s *Server) transfer(c *gin.Context) {
	var req models.TransferRequest
	if !bind(c, &req) {
		return
	}
	tx, err := s.bank.Transfer(userID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Transfer successful", tx)
}

func (s *Server) history(c *gin.Context) {
	txs, err := s.bank.History(userID(c), c.Param("accountId"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Transactions", txs)
}

func (s *Server) applyLoan(c *gin.Context) {
	var req models.LoanRequest
	if !bind(c, &req) {
		return
	}
	loan, err := s.bank.ApplyLoan(userID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Loan application submitted", loan)
}

func (s *Server) listLoans(c *gin.Context) {
	response.Success(c, http.StatusOK, "Loans", s.bank.Loans(userID(c)))
}

func (s *Server) fdRates(c *gin.Context) {
	response.Success(c, http.StatusOK, "FD rates", s.bank.FDRates())
}

func (s *Server) openFixedDeposit(c *gin.Context) {
	var req models.FixedDepositRequest
	if !bind(c, &req) {
		return
	}
	fd, err := s.bank.OpenFixedDeposit(userID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Fixed deposit created", fd)
}

func (s *Server) listFixedDeposits(c *gin.Context) {
	response.Success(c, http.StatusOK, "Fixed deposits", s.bank.FixedDeposits(userID(c)))
}

func (s *Server) openRecurringDeposit(c *gin.Context) {
	var req models.RecurringDepositRequest
	if !bind(c, &req) {
		return
	}
	rd, err := s.bank.OpenRecurringDeposit(userID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Recurring deposit created", rd)
}

func (s *Server) listRecurringDeposits(c *gin.Context) {
	response.Success(c, http.StatusOK, "Recurring deposits", s.bank.RecurringDeposits(userID(c)))
}

func (s *Server) payBill(c *gin.Context) {
	var req models.BillPaymentRequest
	if !bind(c, &req) {
		return
	}
	r, err := s.bank.PayBill(userID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Bill paid", r)
}

func (s *Server) rechargeMobile(c *gin.Context) {
	var req models.MobileRechargeRequest
	if !bind(c, &req) {
		return
	}
	r, err := s.bank.RechargeMobile(userID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Recharge successful", r)
}

func (s *Server) listBillers(c *gin.Context) {
	response.Success(c, http.StatusOK, "Billers", s.bank.Billers())
}
