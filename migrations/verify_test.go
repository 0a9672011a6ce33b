package migrations_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/internal/testutils/simtest"
	"github.com/dodao/comet-market-updates/migrations"
)

func joined(t *testing.T, err error) []error {
	t.Helper()

	j, ok := errors.Unwrap(err).(interface{ Unwrap() []error })
	require.True(t, ok, "not a joined error: %v", err)

	return j.Unwrap()
}

func TestMigration_Verify_BeforeMigration(t *testing.T) {
	t.Parallel()

	ctx := testContext(t)
	m := migrations.MustNew(migrations.MainnetUSDC())
	f := simtest.New(t, m.Config())

	err := m.Verify(ctx, f.Env())
	require.Error(t, err)
	require.ErrorIs(t, err, chain.ErrUnknownSelector)
	assert.NotErrorIs(t, err, migrations.ErrUnconfigured)

	// Only the configurator checker read fails: the market update contracts are deployed
	// ahead of the migration.
	errs := joined(t, err)
	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "Configurator.marketAdminPermissionChecker()")
}

func TestMigration_Verify_Mismatch(t *testing.T) {
	t.Parallel()

	ctx := testContext(t)
	m := migrations.MustNew(migrations.MainnetUSDC())
	cfg := m.Config()
	f := simtest.New(t, cfg)
	env := f.Env()

	_, err := migrations.Run(ctx, m, env)
	require.NoError(t, err)

	rogue := f.L2.NewAccount("rogue")
	_, err = f.L2.Send(ctx, f.LocalTimelock, cfg.MarketUpdateProposer, nil, "setMarketAdmin(address)", rogue)
	require.NoError(t, err)

	err = m.Verify(ctx, env)
	require.Error(t, err)

	var mismatch *migrations.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "MarketUpdateProposer", mismatch.Contract)
	assert.Equal(t, "marketAdmin()", mismatch.Check)
	assert.Equal(t, cfg.MarketAdmin.Hex(), mismatch.Want)
	assert.Equal(t, rogue.Hex(), mismatch.Got)
	assert.Len(t, joined(t, err), 1)
}

func TestMigration_Verify_Unconfigured(t *testing.T) {
	t.Parallel()

	ctx := testContext(t)
	m := migrations.MustNew(migrations.FujiUSDC())
	f := simtest.New(t, m.Config())

	_, err := migrations.Run(ctx, m, f.Env())
	require.ErrorIs(t, err, migrations.ErrUnconfigured)

	// The local timelock, community multisig and market admin of fuji are not known yet.
	errs := joined(t, err)
	require.Len(t, errs, 8)
	for _, e := range errs {
		require.ErrorIs(t, e, migrations.ErrUnconfigured)
	}
}
