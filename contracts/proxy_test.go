package contracts_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/contracts"
)

func TestTransparentUpgradeableProxy(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	c := newChain(t)
	admin := c.NewAccount("admin")
	user := c.NewAccount("user")
	v1 := c.Deploy(admin, contracts.NewComet(contracts.Configuration{SupplyKink: 1}))
	v2 := c.Deploy(admin, contracts.NewComet(contracts.Configuration{SupplyKink: 2}))
	notLogic := c.Deploy(admin, newRecorder())
	proxy := c.Deploy(admin, contracts.NewTransparentUpgradeableProxy(v1, admin, &contracts.CometStorage{}))

	assert.Equal(t, int64(1), queryUint(t, c, proxy, "supplyKink()").Int64())

	// The admin reaches the proxy functions only.
	_, err := c.Call(ctx, admin, proxy, "supplyKink()")
	require.ErrorIs(t, err, contracts.ErrAdminFallback)
	_, err = c.Send(ctx, user, proxy, nil, "upgradeTo(address)", v2)
	require.ErrorIs(t, err, chain.ErrUnknownSelector)

	_, err = c.Send(ctx, admin, proxy, nil, "upgradeTo(address)", user)
	require.ErrorIs(t, err, contracts.ErrNotContract)
	_, err = c.Send(ctx, admin, proxy, nil, "upgradeTo(address)", notLogic)
	require.ErrorIs(t, err, contracts.ErrNotLogic)

	receipt, err := c.Send(ctx, admin, proxy, nil, "upgradeTo(address)", v2)
	require.NoError(t, err)
	upgraded, ok := receipt.Event("Upgraded")
	require.True(t, ok)
	assert.Equal(t, v2, upgraded.Args["implementation"])
	assert.Equal(t, int64(2), queryUint(t, c, proxy, "supplyKink()").Int64())

	// Storage survives upgrades.
	_, err = c.Send(ctx, user, proxy, nil, "initializeStorage()")
	require.NoError(t, err)
	_, err = c.Send(ctx, user, proxy, nil, "initializeStorage()")
	require.ErrorIs(t, err, contracts.ErrAlreadyInitialized)

	_, err = c.Send(ctx, admin, proxy, nil, "changeAdmin(address)", common.Address{})
	require.ErrorContains(t, err, "new admin is the zero address")
	_, err = c.Send(ctx, admin, proxy, nil, "changeAdmin(address)", user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), queryUint(t, c, proxy, "supplyKink()").Int64())
	_, err = c.Call(ctx, admin, proxy, "supplyKink()")
	require.NoError(t, err, "the former admin is a regular caller")
}

type proxyAdminFixture struct {
	chain        *chain.Chain
	owner        common.Address
	marketAdmin  common.Address
	guardian     common.Address
	cpa          common.Address
	configurator common.Address
	comet        common.Address
	factory      *contracts.CometFactory
}

func newProxyAdminFixture(t *testing.T) proxyAdminFixture {
	t.Helper()

	c := newChain(t)
	f := proxyAdminFixture{
		chain:       c,
		owner:       c.NewAccount("owner"),
		marketAdmin: c.NewAccount("market admin"),
		guardian:    c.NewAccount("guardian"),
		factory:     contracts.NewCometFactory(),
	}
	f.cpa = c.Deploy(f.owner, contracts.NewCometProxyAdmin(f.owner))

	cfg := contracts.Configuration{SupplyKink: 100}
	impl := c.Deploy(f.owner, contracts.NewComet(cfg))
	f.comet = c.Deploy(f.owner, contracts.NewTransparentUpgradeableProxy(impl, f.cpa, &contracts.CometStorage{}))

	factory := c.Deploy(f.owner, f.factory)
	logic := c.Deploy(f.owner, contracts.NewConfigurator())
	storage := contracts.NewConfiguratorStorage()
	storage.Version = 1
	storage.Governor = f.owner
	storage.Factories[f.comet] = factory
	storage.Configs[f.comet] = contracts.Configuration{SupplyKink: 200}
	f.configurator = c.Deploy(f.owner, contracts.NewConfiguratorProxy(logic, f.cpa, storage))

	return f
}

func TestCometProxyAdmin_Views(t *testing.T) {
	t.Parallel()

	f := newProxyAdminFixture(t)
	c := f.chain

	assert.Equal(t, f.cpa, queryAddress(t, c, f.cpa, "getProxyAdmin(address)", f.comet))
	impl := queryAddress(t, c, f.cpa, "getProxyImplementation(address)", f.comet)
	assert.NotEqual(t, common.Address{}, impl)

	_, err := c.Query(t.Context(), f.cpa, "getProxyAdmin(address)", chain.Returns("address"), f.owner)
	require.ErrorIs(t, err, contracts.ErrUnknownProxyAdmin)
}

func TestCometProxyAdmin_DeployAndUpgradeTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T, f proxyAdminFixture)
		from    func(f proxyAdminFixture) common.Address
		wantErr error
	}{
		{
			name: "owner",
			from: func(f proxyAdminFixture) common.Address { return f.owner },
		},
		{
			name: "market admin",
			setup: func(t *testing.T, f proxyAdminFixture) {
				t.Helper()
				_, err := f.chain.Send(t.Context(), f.owner, f.cpa, nil, "setMarketAdmin(address)", f.marketAdmin)
				require.NoError(t, err)
			},
			from: func(f proxyAdminFixture) common.Address { return f.marketAdmin },
		},
		{
			name:    "failure: stranger",
			from:    func(f proxyAdminFixture) common.Address { return f.guardian },
			wantErr: contracts.ErrUnauthorized,
		},
		{
			name: "failure: market admin paused",
			setup: func(t *testing.T, f proxyAdminFixture) {
				t.Helper()
				ctx := t.Context()
				_, err := f.chain.Send(ctx, f.owner, f.cpa, nil, "setMarketAdmin(address)", f.marketAdmin)
				require.NoError(t, err)
				_, err = f.chain.Send(ctx, f.owner, f.cpa, nil, "setMarketAdminPauseGuardian(address)", f.guardian)
				require.NoError(t, err)
				_, err = f.chain.Send(ctx, f.guardian, f.cpa, nil, "pauseMarketAdmin()")
				require.NoError(t, err)
			},
			from:    func(f proxyAdminFixture) common.Address { return f.marketAdmin },
			wantErr: contracts.ErrMarketAdminIsPaused,
		},
		{
			name: "permission checker",
			setup: func(t *testing.T, f proxyAdminFixture) {
				t.Helper()
				checker := f.chain.Deploy(f.owner, contracts.NewMarketAdminPermissionChecker(f.owner, f.marketAdmin, f.guardian))
				_, err := f.chain.Send(t.Context(), f.owner, f.cpa, nil, "setMarketAdminPermissionChecker(address)", checker)
				require.NoError(t, err)
			},
			from: func(f proxyAdminFixture) common.Address { return f.marketAdmin },
		},
		{
			name: "failure: permission checker overrides market admin",
			setup: func(t *testing.T, f proxyAdminFixture) {
				t.Helper()
				ctx := t.Context()
				_, err := f.chain.Send(ctx, f.owner, f.cpa, nil, "setMarketAdmin(address)", f.marketAdmin)
				require.NoError(t, err)
				checker := f.chain.Deploy(f.owner, contracts.NewMarketAdminPermissionChecker(f.owner, f.guardian, f.guardian))
				_, err = f.chain.Send(ctx, f.owner, f.cpa, nil, "setMarketAdminPermissionChecker(address)", checker)
				require.NoError(t, err)
			},
			from:    func(f proxyAdminFixture) common.Address { return f.marketAdmin },
			wantErr: contracts.ErrUnauthorized,
		},
		{
			name: "failure: paused with permission checker",
			setup: func(t *testing.T, f proxyAdminFixture) {
				t.Helper()
				ctx := t.Context()
				checker := f.chain.Deploy(f.owner, contracts.NewMarketAdminPermissionChecker(f.owner, f.marketAdmin, f.guardian))
				_, err := f.chain.Send(ctx, f.owner, f.cpa, nil, "setMarketAdminPermissionChecker(address)", checker)
				require.NoError(t, err)
				_, err = f.chain.Send(ctx, f.owner, f.cpa, nil, "setMarketAdminPauseGuardian(address)", f.guardian)
				require.NoError(t, err)
				_, err = f.chain.Send(ctx, f.guardian, f.cpa, nil, "pauseMarketAdmin()")
				require.NoError(t, err)
			},
			from:    func(f proxyAdminFixture) common.Address { return f.marketAdmin },
			wantErr: contracts.ErrMarketAdminIsPaused,
		},
		{
			name: "owner while paused with permission checker",
			setup: func(t *testing.T, f proxyAdminFixture) {
				t.Helper()
				ctx := t.Context()
				checker := f.chain.Deploy(f.owner, contracts.NewMarketAdminPermissionChecker(f.owner, f.marketAdmin, f.guardian))
				_, err := f.chain.Send(ctx, f.owner, f.cpa, nil, "setMarketAdminPermissionChecker(address)", checker)
				require.NoError(t, err)
				_, err = f.chain.Send(ctx, f.owner, f.cpa, nil, "setMarketAdminPauseGuardian(address)", f.guardian)
				require.NoError(t, err)
				_, err = f.chain.Send(ctx, f.guardian, f.cpa, nil, "pauseMarketAdmin()")
				require.NoError(t, err)
			},
			from: func(f proxyAdminFixture) common.Address { return f.owner },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newProxyAdminFixture(t)
			if tt.setup != nil {
				tt.setup(t, f)
			}

			_, err := f.chain.Send(t.Context(), tt.from(f), f.cpa, nil, "deployAndUpgradeTo(address,address)", f.configurator, f.comet)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, int64(100), queryUint(t, f.chain, f.comet, "supplyKink()").Int64())
				assert.Empty(t, f.factory.Deployed())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(200), queryUint(t, f.chain, f.comet, "supplyKink()").Int64())
			require.Len(t, f.factory.Deployed(), 1)
			assert.Equal(t, f.factory.Deployed()[0], queryAddress(t, f.chain, f.cpa, "getProxyImplementation(address)", f.comet))
		})
	}
}

func TestCometProxyAdmin_OwnerOnly(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	f := newProxyAdminFixture(t)
	c := f.chain
	next := c.Deploy(f.owner, contracts.NewCometProxyAdmin(f.owner))
	impl := c.Deploy(f.owner, contracts.NewComet(contracts.Configuration{SupplyKink: 300}))

	for _, call := range []struct {
		signature string
		args      []any
	}{
		{"upgrade(address,address)", []any{f.comet, impl}},
		{"changeProxyAdmin(address,address)", []any{f.comet, next}},
		{"setMarketAdmin(address)", []any{f.marketAdmin}},
		{"unpauseMarketAdmin()", nil},
		{"transferOwnership(address)", []any{f.marketAdmin}},
		{"renounceOwnership()", nil},
	} {
		_, err := c.Send(ctx, f.marketAdmin, f.cpa, nil, call.signature, call.args...)
		require.ErrorIs(t, err, contracts.ErrNotOwner, call.signature)
	}

	_, err := c.Send(ctx, f.owner, f.cpa, nil, "upgrade(address,address)", f.comet, impl)
	require.NoError(t, err)
	assert.Equal(t, int64(300), queryUint(t, c, f.comet, "supplyKink()").Int64())

	_, err = c.Send(ctx, f.owner, f.cpa, nil, "changeProxyAdmin(address,address)", f.comet, next)
	require.NoError(t, err)
	assert.Equal(t, next, queryAddress(t, c, next, "getProxyAdmin(address)", f.comet))

	// The former admin is now a regular caller of the proxy.
	_, err = c.Send(ctx, f.owner, f.cpa, nil, "upgrade(address,address)", f.comet, impl)
	require.ErrorIs(t, err, chain.ErrUnknownSelector)

	_, err = c.Send(ctx, f.owner, f.cpa, nil, "renounceOwnership()")
	require.NoError(t, err)
	assert.Equal(t, common.Address{}, queryAddress(t, c, f.cpa, "owner()"))
}
