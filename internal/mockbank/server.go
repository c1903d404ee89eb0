package mockbank

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/logging"
	"github.com/dmitrijs2005/bankfront/internal/mockbank/config"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const shutdownTimeout = 5 * time.Second

// Balance credited to every seeded user's savings account.
var seedBalance = decimal.NewFromInt(50000)

// Balance credited on self-registration.
var signupBalance = decimal.NewFromInt(10000)

type Server struct {
	config *config.Config
	logger logging.Logger
	bank   *Bank
	secret []byte
	engine *gin.Engine
}

// New builds the server and seeds the configured users.
func New(cfg *config.Config, logger logging.Logger) (*Server, error) {
	s := &Server{
		config: cfg,
		logger: logger,
		bank:   NewBank(),
		secret: []byte(cfg.SecretKey),
	}

	for _, u := range cfg.SeedUsers {
		_, err := s.bank.AddUser(NewUser{
			Email:          u.Email,
			Password:       u.Password,
			FirstName:      u.FirstName,
			LastName:       u.LastName,
			Role:           models.Role(u.Role),
			OpeningBalance: seedBalance,
		})
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLog())
	s.routes(s.engine)

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Bank() *Bank {
	return s.bank
}

func (s *Server) routes(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": "1.0.0"})
	})

	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", s.login)
		authPublic.POST("/verify-otp", s.verifyOTP)
		authPublic.POST("/register", s.register)
	}

	authProtected := api.Group("/auth")
	authProtected.Use(s.requireAuth())
	{
		authProtected.POST("/logout", s.logout)
		authProtected.GET("/validate-token", s.validateToken)
		authProtected.POST("/refresh-token", s.refreshToken)
	}

	protected := api.Group("")
	protected.Use(s.requireAuth())
	{
		protected.GET("/accounts", s.listAccounts)
		protected.POST("/accounts", s.openAccount)
		protected.GET("/accounts/:id", s.getAccount)
		protected.GET("/accounts/:id/balance", s.getBalance)

		protected.POST("/transactions/transfer", s.transfer)
		protected.GET("/transactions/account/:accountId", s.history)

		protected.POST("/loans/apply", s.applyLoan)
		protected.GET("/loans", s.listLoans)

		protected.GET("/investments/fd-rates", s.fdRates)
		protected.POST("/investments/fixed-deposits", s.openFixedDeposit)
		protected.GET("/investments/fixed-deposits", s.listFixedDeposits)
		protected.POST("/investments/recurring-deposits", s.openRecurringDeposit)
		protected.GET("/investments/recurring-deposits", s.listRecurringDeposits)

		protected.POST("/payments/bill", s.payBill)
		protected.POST("/payments/mobile-recharge", s.rechargeMobile)
		protected.GET("/payments/billers", s.listBillers)
	}

	admin := api.Group("/admin")
	admin.Use(s.requireAuth(), s.requireRole(string(models.RoleAdmin)))
	{
		admin.GET("/users", s.listUsers)
		admin.POST("/users/:id/revoke", s.revokeSessions)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "mock bank listening", "addr", s.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "shutting down mock bank")
	return srv.Shutdown(shutdownCtx)
}
