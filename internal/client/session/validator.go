package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/bankfront/internal/client/client"
	"github.com/dmitrijs2005/bankfront/internal/client/metrics"
	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/dmitrijs2005/bankfront/internal/logging"
)

type Outcome int

const (
	// Indeterminate means no verdict was obtained, typically a network
	// failure. The caller keeps whatever state it had.
	Indeterminate Outcome = iota
	Valid
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case Rejected:
		return "rejected"
	default:
		return "indeterminate"
	}
}

// Verdict is the result of one validation. User is set only for Valid
// verdicts where the backend returned a fresh user record.
type Verdict struct {
	Outcome Outcome
	User    *models.User
}

type TokenChecker interface {
	ValidateToken(ctx context.Context, token string) (client.TokenCheck, error)
}

type Validator struct {
	api     TokenChecker
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewValidator(api TokenChecker, logger logging.Logger, m *metrics.Metrics) *Validator {
	return &Validator{api: api, logger: logger, metrics: m}
}

// Validate asks the backend about token. A missing reply is Indeterminate,
// an HTTP error or success:false is Rejected, anything else is Valid.
func (v *Validator) Validate(ctx context.Context, token string) Verdict {
	check, err := v.api.ValidateToken(ctx, token)

	var verdict Verdict
	switch {
	case err != nil:
		if !errors.Is(err, context.Canceled) {
			v.logger.Warn(ctx, "token validation unavailable, keeping session", "error", err)
		}
		verdict = Verdict{Outcome: Indeterminate}
	case check.Valid:
		verdict = Verdict{Outcome: Valid, User: check.User}
	default:
		v.logger.Info(ctx, "token rejected by backend", "status", check.Status)
		verdict = Verdict{Outcome: Rejected}
	}

	v.metrics.Validation(verdict.Outcome.String())
	return verdict
}
