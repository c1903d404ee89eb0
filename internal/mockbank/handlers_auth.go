package mockbank

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/mockbank/auth"
	"github.com/dmitrijs2005/bankfront/internal/mockbank/response"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type registerRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber"`
}

// issue signs a token for u and registers its session.
func (s *Server) issue(c *gin.Context, status int, message string, u *models.User) {
	token, jti, err := auth.GenerateToken(auth.Subject{
		UserID: u.ID,
		Email:  u.Email,
		Roles:  []string{string(u.Role)},
	}, s.secret, s.config.AccessTokenValidityDuration)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "could not issue token", err)
		return
	}
	s.bank.StartSession(jti, u.ID)

	response.Success(c, status, message, models.AuthData{AccessToken: token, User: u})
}

func (s *Server) challenge(c *gin.Context, status int, email string) {
	s.bank.IssueOTP(email, s.config.OTPCode)
	s.logger.Info(c.Request.Context(), "otp issued", "email", email)
	response.Success(c, status, "OTP verification required", models.AuthData{MFARequired: true})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid login request", err)
		return
	}

	u, err := s.bank.Authenticate(req.Email, req.Password)
	if err != nil {
		response.Unauthorized(c, "Invalid email or password")
		return
	}

	if s.config.RequireOTP {
		s.challenge(c, http.StatusOK, u.Email)
		return
	}
	s.issue(c, http.StatusOK, "Login successful", u)
}

func (s *Server) verifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid OTP request", err)
		return
	}

	u, err := s.bank.VerifyOTP(req.Email, req.OTP)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid OTP", err)
		return
	}
	s.issue(c, http.StatusOK, "OTP verified", u)
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid registration request", err)
		return
	}

	u, err := s.bank.AddUser(NewUser{
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PhoneNumber:    req.PhoneNumber,
		Role:           models.RoleCustomer,
		OpeningBalance: signupBalance,
	})
	if errors.Is(err, ErrUserExists) {
		response.Error(c, http.StatusConflict, "Email is already registered", err)
		return
	}
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Registration failed", err)
		return
	}

	if s.config.RequireOTP {
		s.challenge(c, http.StatusCreated, u.Email)
		return
	}
	s.issue(c, http.StatusCreated, "Registration successful", u)
}

func (s *Server) logout(c *gin.Context) {
	s.bank.EndSession(c.GetString(ctxJTI))
	response.Success(c, http.StatusOK, "Logged out", nil)
}

func (s *Server) validateToken(c *gin.Context) {
	u, err := s.bank.User(c.GetInt64(ctxUserID))
	if err != nil {
		response.Unauthorized(c, "user no longer exists")
		return
	}
	valid := true
	response.Success(c, http.StatusOK, "Token is valid", models.TokenValidation{Valid: &valid, User: u})
}

// refreshToken rotates the caller's session: a new token is issued and the
// presented one stops working.
func (s *Server) refreshToken(c *gin.Context) {
	u, err := s.bank.User(c.GetInt64(ctxUserID))
	if err != nil {
		response.Unauthorized(c, "user no longer exists")
		return
	}
	s.bank.EndSession(c.GetString(ctxJTI))
	s.issue(c, http.StatusOK, "Token refreshed", u)
}

func (s *Server) listUsers(c *gin.Context) {
	response.Success(c, http.StatusOK, "Users", s.bank.Users())
}

func (s *Server) revokeSessions(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid user id", err)
		return
	}
	n := s.bank.RevokeSessions(id)
	response.Success(c, http.StatusOK, "Sessions revoked", gin.H{"revoked": n})
}
