package migrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/deployment"
	"github.com/dodao/comet-market-updates/internal/utils/safecast"
	"github.com/dodao/comet-market-updates/sdk"
	"github.com/dodao/comet-market-updates/types"
)

// ErrUnconfigured is returned by Verify for a role whose expected address is not known yet.
var ErrUnconfigured = errors.New("expected address not configured")

// MismatchError is a verification check that read an unexpected value.
type MismatchError struct {
	Contract string
	Check    string
	Want     string
	Got      string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s.%s: want %s, got %s", e.Contract, e.Check, e.Want, e.Got)
}

func NewMismatchError(contract, check, want, got string) *MismatchError {
	return &MismatchError{Contract: contract, Check: check, Want: want, Got: got}
}

// check is one expected view value of a deployed contract.
type check struct {
	contract  string
	address   common.Address
	signature string
	want      common.Address
	wantDelay *types.Duration
}

func (m *Migration) checks() []check {
	c := m.cfg

	return []check{
		{contract: "Configurator", address: c.ConfiguratorProxy, signature: "governor()", want: c.LocalTimelock},
		{contract: "Configurator", address: c.ConfiguratorProxy, signature: "marketAdminPermissionChecker()", want: c.MarketAdminPermissionChecker},

		{contract: "CometProxyAdmin", address: c.NewCometProxyAdmin, signature: "marketAdminPermissionChecker()", want: c.MarketAdminPermissionChecker},
		{contract: "CometProxyAdmin", address: c.NewCometProxyAdmin, signature: "owner()", want: c.LocalTimelock},

		{contract: "MarketAdminPermissionChecker", address: c.MarketAdminPermissionChecker, signature: "marketAdmin()", want: c.MarketUpdateTimelock},
		{contract: "MarketAdminPermissionChecker", address: c.MarketAdminPermissionChecker, signature: "owner()", want: c.LocalTimelock},
		{contract: "MarketAdminPermissionChecker", address: c.MarketAdminPermissionChecker, signature: "marketAdminPauseGuardian()", want: c.CommunityMultiSig},

		{contract: "MarketUpdateTimelock", address: c.MarketUpdateTimelock, signature: "marketUpdateProposer()", want: c.MarketUpdateProposer},
		{contract: "MarketUpdateTimelock", address: c.MarketUpdateTimelock, signature: "governor()", want: c.LocalTimelock},
		{contract: "MarketUpdateTimelock", address: c.MarketUpdateTimelock, signature: "delay()", wantDelay: &c.MarketUpdateDelay},

		{contract: "MarketUpdateProposer", address: c.MarketUpdateProposer, signature: "governor()", want: c.LocalTimelock},
		{contract: "MarketUpdateProposer", address: c.MarketUpdateProposer, signature: "marketAdmin()", want: c.MarketAdmin},
		{contract: "MarketUpdateProposer", address: c.MarketUpdateProposer, signature: "timelock()", want: c.MarketUpdateTimelock},
		{contract: "MarketUpdateProposer", address: c.MarketUpdateProposer, signature: "proposalGuardian()", want: c.CommunityMultiSig},
	}
}

// Verify reads the roles of every market update contract and returns one error joining all
// the checks that failed.
func (m *Migration) Verify(ctx context.Context, env Env) error {
	lggr := sdk.LoggerFrom(ctx)

	var errs []error
	configurator, err := deployment.Find(env.Addresses, m.cfg.Chain, deployment.ConfiguratorProxy)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("resolve configurator: %w", err))
	case configurator != m.cfg.ConfiguratorProxy:
		errs = append(errs, NewMismatchError("Configurator", "address", m.cfg.ConfiguratorProxy.Hex(), configurator.Hex()))
	}

	for _, c := range m.checks() {
		if err := m.runCheck(ctx, env.Inspector, c); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		lggr.Warnw("verification failed", "migration", m.cfg.Name, "failures", len(errs))
		return fmt.Errorf("verify %s: %w", m.cfg.Name, err)
	}
	lggr.Infof("All checks passed.")

	return nil
}

func (m *Migration) runCheck(ctx context.Context, inspector sdk.Inspector, c check) error {
	if c.wantDelay != nil {
		got, err := readDelay(ctx, inspector, c)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", c.contract, c.signature, err)
		}
		if got != *c.wantDelay {
			return NewMismatchError(c.contract, c.signature, c.wantDelay.String(), got.String())
		}

		return nil
	}

	if c.want == (common.Address{}) {
		return fmt.Errorf("%s.%s: %w", c.contract, c.signature, ErrUnconfigured)
	}
	got, err := inspector.Address(ctx, c.address, c.signature)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", c.contract, c.signature, err)
	}
	if got != c.want {
		return NewMismatchError(c.contract, c.signature, c.want.Hex(), got.Hex())
	}

	return nil
}

func readDelay(ctx context.Context, inspector sdk.Inspector, c check) (types.Duration, error) {
	secs, err := inspector.Uint(ctx, c.address, c.signature)
	if err != nil {
		return types.Duration{}, err
	}
	u, err := safecast.BigToUint64(secs)
	if err != nil {
		return types.Duration{}, err
	}

	return types.DurationFromSeconds(u)
}
