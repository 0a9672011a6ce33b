package migrations

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/dodao/comet-market-updates/sdk"
)

const (
	defaultProposeAttempts = 3
	defaultProposeDelay    = 2 * time.Second
)

// Report records one run of a migration.
type Report struct {
	ID         string    `json:"id"`
	Migration  string    `json:"migration"`
	Network    Network   `json:"network"`
	Vars       Vars      `json:"vars"`
	ProposalID *big.Int  `json:"proposalId,omitempty"`
	Skipped    bool      `json:"skipped"`
	Verified   bool      `json:"verified"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Err        string    `json:"error,omitempty"`
}

type runOptions struct {
	attempts uint
	delay    time.Duration
	now      func() time.Time
}

// RunOption configures Run.
type RunOption func(*runOptions)

// WithProposeRetry sets how many times a failed proposal submission is attempted and the
// delay between attempts.
func WithProposeRetry(attempts uint, delay time.Duration) RunOption {
	return func(o *runOptions) {
		o.attempts = attempts
		o.delay = delay
	}
}

// WithClock sets the clock used to time the report.
func WithClock(now func() time.Time) RunOption {
	return func(o *runOptions) {
		o.now = now
	}
}

// Run enacts m unless it already took effect. When env has an executor the proposal is carried
// through governance and the result verified. The report is returned even when Run fails.
func Run(ctx context.Context, m *Migration, env Env, opts ...RunOption) (Report, error) {
	o := runOptions{attempts: defaultProposeAttempts, delay: defaultProposeDelay, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	lggr := sdk.LoggerFrom(ctx)
	report := Report{
		ID:        uuid.New().String(),
		Migration: m.Name(),
		Network:   m.Network(),
		StartedAt: o.now(),
	}
	finish := func(err error) (Report, error) {
		report.FinishedAt = o.now()
		if err != nil {
			report.Err = err.Error()
			lggr.Errorw("migration failed", "migration", m.String(), "runId", report.ID, "error", err)
		}

		return report, err
	}

	vars, err := m.Prepare(ctx, env)
	if err != nil {
		return finish(fmt.Errorf("prepare %s: %w", m, err))
	}
	report.Vars = vars

	enacted, err := m.Enacted(ctx, env)
	if err != nil {
		return finish(fmt.Errorf("check %s: %w", m, err))
	}
	if enacted {
		lggr.Infow("migration already enacted", "migration", m.String(), "runId", report.ID)
		report.Skipped = true

		return finish(nil)
	}

	report.ProposalID, err = retry.DoWithData(func() (*big.Int, error) {
		id, perr := m.Enact(ctx, env, vars)
		if perr != nil && !retryable(perr) {
			return nil, retry.Unrecoverable(perr)
		}

		return id, perr
	},
		retry.Context(ctx),
		retry.Attempts(o.attempts),
		retry.Delay(o.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			lggr.Warnw("proposal submission failed, retrying",
				"migration", m.String(), "attempt", attempt+1, "error", err)
		}),
	)
	if err != nil {
		return finish(fmt.Errorf("enact %s: %w", m, err))
	}

	if env.Executor == nil {
		return finish(nil)
	}
	if err := env.Executor.ExecuteProposal(ctx, report.ProposalID); err != nil {
		return finish(fmt.Errorf("execute proposal %s of %s: %w", report.ProposalID, m, err))
	}
	if err := m.Verify(ctx, env); err != nil {
		return finish(err)
	}
	report.Verified = true

	return finish(nil)
}

// retryable reports whether a submission may succeed when attempted again. Reverts and
// invalid inputs fail the same way every time. A sent transaction is never resent.
func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrInvalidEnv), errors.Is(err, ErrUnsupportedBridge):
		return false
	case errors.Is(err, ErrProposalSubmitted):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return !isRevert(err)
	}
}
