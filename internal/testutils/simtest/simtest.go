// Package simtest builds in-memory deployments of every market updates network, with the
// production addresses of the migrations, for end to end tests of the migrations.
package simtest

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dodao/comet-market-updates/bridge"
	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/contracts"
	"github.com/dodao/comet-market-updates/deployment"
	"github.com/dodao/comet-market-updates/migrations"
	"github.com/dodao/comet-market-updates/sdk/sim"
	"github.com/dodao/comet-market-updates/types"
)

const (
	// GovernorVotingDelay and GovernorVotingPeriod are the mainnet governor settings, in blocks.
	GovernorVotingDelay  = uint64(13_140)
	GovernorVotingPeriod = uint64(19_710)

	// DefaultSupplyKink is the supply kink every simulated market starts with.
	DefaultSupplyKink = uint64(800_000_000_000_000_000)
)

var (
	// TimelockDelay is the delay of the governance and local timelocks.
	TimelockDelay = types.NewDuration(2 * 24 * time.Hour)

	// GovernanceTimelock is the mainnet timelock that bridged proposals are sent from.
	GovernanceTimelock = migrations.MainnetUSDC().LocalTimelock

	ether       = big.NewInt(1e18)
	voterVotes  = new(big.Int).Mul(big.NewInt(1_000_000), ether)
	quorumVotes = new(big.Int).Mul(big.NewInt(400_000), ether)
	threshold   = new(big.Int).Mul(big.NewInt(25_000), ether)
)

// Fixture is the state a migration runs against: the governance chain, the migrated chain
// (the same chain for locally governed networks), the address book and the accounts driving
// governance.
type Fixture struct {
	Config    migrations.Config
	L1        *chain.Chain
	L2        *chain.Chain
	Addresses *deployment.AddressBookMap

	Voter         common.Address
	Executor      common.Address
	Governor      common.Address
	GovTimelock   common.Address
	LocalTimelock common.Address
	MarketAdmin   common.Address
	Guardian      common.Address
	CometAdmin    common.Address
	CometFactory  common.Address
	Asset         common.Address

	// Bridged networks only.
	Receiver   common.Address
	Endpoint   common.Address
	L2Endpoint common.Address
	Relayer    *bridge.Relayer
}

var _ migrations.ProposalExecutor = (*Fixture)(nil)

// New deploys every contract referenced by cfg at its production address, in the state it was
// in before the migration.
func New(t *testing.T, cfg migrations.Config) *Fixture {
	t.Helper()

	lggr := zaptest.NewLogger(t)
	f := &Fixture{
		Config:    cfg,
		L2:        chain.New(cfg.Chain, chain.WithLogger(lggr)),
		Addresses: deployment.NewMemoryAddressBook(),
	}
	f.L1 = f.L2
	if cfg.Bridged() {
		f.L1 = chain.New(cfg.GovernanceChain, chain.WithLogger(lggr))
	}

	f.Voter = f.L1.NewAccount("voter")
	f.Executor = f.L2.NewAccount("executor")
	deployer := f.L2.NewAccount("deployer")

	f.LocalTimelock = f.deployAt(t, f.L2, deployer, cfg.LocalTimelock, contracts.NewTimelock(common.Address{}, TimelockDelay))
	f.save(t, f.L2, f.LocalTimelock, deployment.Timelock, deployment.Version1_0_0)
	f.MarketAdmin = orAccount(f.L2, cfg.MarketAdmin, "market-admin")
	f.Guardian = orAccount(f.L2, cfg.CommunityMultiSig, "community-multisig")

	f.deployGovernance(t)
	f.deployMarkets(t, deployer)
	f.deployMarketUpdates(t)
	if cfg.Bridged() {
		f.deployBridge(t, deployer)
	}

	return f
}

func (f *Fixture) deployGovernance(t *testing.T) {
	t.Helper()

	l1Deployer := f.L1.NewAccount("governance-deployer")
	timelock := contracts.NewTimelock(common.Address{}, TimelockDelay)
	f.GovTimelock = f.LocalTimelock
	if f.Config.Bridged() {
		f.GovTimelock = f.deployAt(t, f.L1, l1Deployer, GovernanceTimelock, timelock)
		f.save(t, f.L1, f.GovTimelock, deployment.Timelock, deployment.Version1_0_0)
	}

	f.Governor = f.L1.Deploy(l1Deployer, contracts.NewGovernor(contracts.GovernorConfig{
		Admin:             f.GovTimelock,
		Timelock:          f.GovTimelock,
		VotingDelay:       GovernorVotingDelay,
		VotingPeriod:      GovernorVotingPeriod,
		ProposalThreshold: threshold,
		QuorumVotes:       quorumVotes,
		Votes:             map[common.Address]*big.Int{f.Voter: voterVotes},
	}))
	f.save(t, f.L1, f.Governor, deployment.Governor, deployment.Version1_0_0)

	if f.Config.Bridged() {
		timelock.SetAdmin(f.Governor)
	} else {
		f.localTimelock(t).SetAdmin(f.Governor)
	}
}

// MarketConfiguration is the configuration the simulated markets are deployed with.
func (f *Fixture) MarketConfiguration() contracts.Configuration {
	return contracts.Configuration{
		Governor:                           f.LocalTimelock,
		PauseGuardian:                      f.Guardian,
		BaseToken:                          common.HexToAddress("0x00000000000000000000000000000000000ba5e0"),
		SupplyKink:                         DefaultSupplyKink,
		SupplyPerYearInterestRateSlopeLow:  32_000_000_000_000_000,
		SupplyPerYearInterestRateSlopeHigh: 4_000_000_000_000_000_000,
		BorrowKink:                         DefaultSupplyKink,
		BorrowPerYearInterestRateSlopeLow:  35_000_000_000_000_000,
		BorrowPerYearInterestRateSlopeHigh: 4_000_000_000_000_000_000,
		BorrowPerYearInterestRateBase:      15_000_000_000_000_000,
		StoreFrontPriceFactor:              600_000_000_000_000_000,
		BaseMinForRewards:                  big.NewInt(1_000_000_000_000),
		BaseBorrowMin:                      big.NewInt(100_000_000),
		TargetReserves:                     big.NewInt(20_000_000_000_000),
		AssetConfigs: []contracts.AssetConfig{{
			Asset:                     f.Asset,
			Decimals:                  18,
			BorrowCollateralFactor:    820_000_000_000_000_000,
			LiquidateCollateralFactor: 870_000_000_000_000_000,
			LiquidationFactor:         920_000_000_000_000_000,
			SupplyCap:                 new(big.Int).Mul(big.NewInt(100_000), ether),
		}},
	}
}

func (f *Fixture) deployMarkets(t *testing.T, deployer common.Address) {
	t.Helper()

	cfg := f.Config
	f.Asset = common.HexToAddress("0x0000000000000000000000000000000000a55e70")

	f.CometAdmin = f.deployAt(t, f.L2, deployer, cfg.OldCometProxyAdmin, contracts.NewCometProxyAdmin(f.LocalTimelock))
	f.save(t, f.L2, f.CometAdmin, deployment.CometProxyAdmin, deployment.Version1_0_0, deployment.LabelLegacy)

	f.CometFactory = f.L2.Deploy(deployer, contracts.NewCometFactory())
	f.save(t, f.L2, f.CometFactory, deployment.CometFactory, deployment.Version1_0_0)

	configuratorImpl := f.L2.Deploy(deployer, contracts.NewConfiguratorV1())
	f.save(t, f.L2, configuratorImpl, deployment.Configurator, deployment.Version1_0_0, deployment.LabelLegacy)

	storage := contracts.NewConfiguratorStorage()
	storage.Version = 1
	storage.Governor = f.LocalTimelock
	marketCfg := f.MarketConfiguration()
	for i, comet := range cfg.CometProxies {
		impl := f.L2.Deploy(deployer, contracts.NewComet(marketCfg))
		proxy := contracts.NewTransparentUpgradeableProxy(impl, f.CometAdmin, &contracts.CometStorage{Initialized: true})
		require.NoError(t, f.L2.DeployAt(comet, proxy))
		f.save(t, f.L2, comet, deployment.CometProxy, deployment.Version1_0_0,
			deployment.MarketLabel(fmt.Sprintf("%s-%d", cfg.Deployment, i)))

		storage.Factories[comet] = f.CometFactory
		storage.Configs[comet] = marketCfg.Clone()
	}

	require.NoError(t, f.L2.DeployAt(cfg.ConfiguratorProxy, contracts.NewConfiguratorProxy(configuratorImpl, f.CometAdmin, storage)))
	f.save(t, f.L2, cfg.ConfiguratorProxy, deployment.ConfiguratorProxy, deployment.Version1_0_0)
}

// deployMarketUpdates deploys the contracts created ahead of the migration: the new
// configurator implementation, the new proxy admin and the market update contracts.
func (f *Fixture) deployMarketUpdates(t *testing.T) {
	t.Helper()

	ctx := t.Context()
	cfg := f.Config

	require.NoError(t, f.L2.DeployAt(cfg.NewConfiguratorImplementation, contracts.NewConfigurator()))
	f.save(t, f.L2, cfg.NewConfiguratorImplementation, deployment.Configurator, deployment.Version2_0_0, deployment.LabelMarketUpdates)

	mut, err := contracts.NewMarketUpdateTimelock(f.LocalTimelock, types.MarketUpdateDelay)
	require.NoError(t, err)
	require.NoError(t, f.L2.DeployAt(cfg.MarketUpdateTimelock, mut))
	f.save(t, f.L2, cfg.MarketUpdateTimelock, deployment.MarketUpdateTimelock, deployment.Version1_0_0)

	mup, err := contracts.NewMarketUpdateProposer(f.LocalTimelock, f.MarketAdmin, f.Guardian, cfg.MarketUpdateTimelock)
	require.NoError(t, err)
	require.NoError(t, f.L2.DeployAt(cfg.MarketUpdateProposer, mup))
	f.save(t, f.L2, cfg.MarketUpdateProposer, deployment.MarketUpdateProposer, deployment.Version1_0_0)

	checker := contracts.NewMarketAdminPermissionChecker(f.LocalTimelock, cfg.MarketUpdateTimelock, f.Guardian)
	require.NoError(t, f.L2.DeployAt(cfg.MarketAdminPermissionChecker, checker))
	f.save(t, f.L2, cfg.MarketAdminPermissionChecker, deployment.MarketAdminPermissionChecker, deployment.Version1_0_0)

	require.NoError(t, f.L2.DeployAt(cfg.NewCometProxyAdmin, contracts.NewCometProxyAdmin(f.LocalTimelock)))
	f.save(t, f.L2, cfg.NewCometProxyAdmin, deployment.CometProxyAdmin, deployment.Version2_0_0, deployment.LabelMarketUpdates)

	// The local timelock wires the contracts together right after deployment.
	_, err = f.L2.Send(ctx, f.LocalTimelock, cfg.MarketUpdateTimelock, nil,
		"setMarketUpdateProposer(address)", cfg.MarketUpdateProposer)
	require.NoError(t, err)
	_, err = f.L2.Send(ctx, f.LocalTimelock, cfg.NewCometProxyAdmin, nil,
		"setMarketAdminPermissionChecker(address)", cfg.MarketAdminPermissionChecker)
	require.NoError(t, err)
}

func (f *Fixture) deployBridge(t *testing.T, deployer common.Address) {
	t.Helper()

	l1Deployer := f.L1.NewAccount("bridge-deployer")
	var receiver *contracts.BridgeReceiver
	switch f.Config.Bridge {
	case bridge.KindArbitrum:
		f.Endpoint = f.L1.Deploy(l1Deployer, contracts.NewArbitrumInbox())
		f.save(t, f.L1, f.Endpoint, deployment.ArbitrumInbox, deployment.Version1_0_0)
		receiver = contracts.NewBridgeReceiver(bridge.KindArbitrum, f.GovTimelock, f.LocalTimelock, common.Address{})
	case bridge.KindPolygon:
		f.Endpoint = f.L1.Deploy(l1Deployer, contracts.NewFxRoot())
		f.save(t, f.L1, f.Endpoint, deployment.FxRoot, deployment.Version1_0_0)
		f.L2Endpoint = f.L2.Deploy(deployer, contracts.NewFxChild())
		f.save(t, f.L2, f.L2Endpoint, deployment.FxChild, deployment.Version1_0_0)
		receiver = contracts.NewBridgeReceiver(bridge.KindPolygon, f.GovTimelock, f.LocalTimelock, f.L2Endpoint)
	case bridge.KindScroll:
		f.Endpoint = f.L1.Deploy(l1Deployer, contracts.NewScrollMessenger())
		f.save(t, f.L1, f.Endpoint, deployment.ScrollMessenger, deployment.Version1_0_0)
		f.L2Endpoint = f.L2.Deploy(deployer, contracts.NewL2ScrollMessenger(f.Endpoint))
		f.save(t, f.L2, f.L2Endpoint, deployment.L2ScrollMessenger, deployment.Version1_0_0)
		receiver = contracts.NewBridgeReceiver(bridge.KindScroll, f.GovTimelock, f.LocalTimelock, f.L2Endpoint)
	default:
		t.Fatalf("unsupported bridge %s", f.Config.Bridge)
	}

	f.Receiver = f.L2.Deploy(deployer, receiver)
	f.save(t, f.L2, f.Receiver, deployment.BridgeReceiver, deployment.Version1_0_0)
	f.localTimelock(t).SetAdmin(f.Receiver)

	relayer, err := bridge.NewRelayer(bridge.RelayerConfig{
		L1:         f.L1,
		L2:         f.L2,
		Endpoint:   f.Endpoint,
		L2Endpoint: f.L2Endpoint,
		Logger:     zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	f.Relayer = relayer
}

// Env returns the migration environment of the fixture. Proposals are executed through the
// fixture itself.
func (f *Fixture) Env() migrations.Env {
	return migrations.Env{
		Addresses: f.Addresses,
		Governor:  sim.NewGovernorProposer(f.L1, f.Governor, f.Voter),
		Inspector: sim.NewInspector(f.L2),
		Executor:  f,
	}
}

// ExecuteProposal votes for, queues and executes governance proposal id. Bridged proposals
// are then relayed to the migrated chain and executed from the bridge receiver once the local
// timelock delay has passed.
func (f *Fixture) ExecuteProposal(ctx context.Context, id *big.Int) error {
	f.L1.Mine(GovernorVotingDelay)
	if _, err := f.L1.Send(ctx, f.Voter, f.Governor, nil, "castVote(uint256,uint8)", id, contracts.VoteFor); err != nil {
		return fmt.Errorf("vote on proposal %s: %w", id, err)
	}
	f.L1.Mine(GovernorVotingPeriod)
	if _, err := f.L1.Send(ctx, f.Voter, f.Governor, nil, "queue(uint256)", id); err != nil {
		return fmt.Errorf("queue proposal %s: %w", id, err)
	}
	f.L1.IncreaseTime(TimelockDelay.Duration)

	value, err := f.proposalValue(ctx, id)
	if err != nil {
		return err
	}
	if _, err := f.L1.Send(ctx, f.Voter, f.Governor, value, "execute(uint256)", id); err != nil {
		return fmt.Errorf("execute proposal %s: %w", id, err)
	}

	if f.Relayer == nil {
		return nil
	}

	return f.executeBridged(ctx)
}

func (f *Fixture) proposalValue(ctx context.Context, id *big.Int) (*big.Int, error) {
	res, err := f.L1.Query(ctx, f.Governor, "getActions(uint256)",
		chain.Returns("address[]", "uint256[]", "string[]", "bytes[]"), id)
	if err != nil {
		return nil, fmt.Errorf("read actions of proposal %s: %w", id, err)
	}

	total := new(big.Int)
	for _, v := range res[1].([]*big.Int) { //nolint:forcetypeassert // decoded as uint256[]
		total.Add(total, v)
	}

	return total, nil
}

func (f *Fixture) executeBridged(ctx context.Context) error {
	receipts, err := f.Relayer.Relay(ctx)
	if err != nil {
		return err
	}
	f.L2.IncreaseTime(TimelockDelay.Duration)

	for _, receipt := range receipts {
		for _, event := range receipt.EventsNamed("ProposalCreated") {
			if event.Address != f.Receiver {
				continue
			}
			id := event.Args["id"].(*big.Int) //nolint:forcetypeassert // emitted as *big.Int
			if _, err := f.L2.Send(ctx, f.Executor, f.Receiver, nil, "executeProposal(uint256)", id); err != nil {
				return fmt.Errorf("execute bridged proposal %s: %w", id, err)
			}
		}
	}

	return nil
}

func (f *Fixture) localTimelock(t *testing.T) *contracts.Timelock {
	t.Helper()

	code, ok := f.L2.Contract(f.LocalTimelock)
	require.True(t, ok, "local timelock not deployed")
	timelock, ok := code.(*contracts.Timelock)
	require.True(t, ok, "local timelock is a %T", code)

	return timelock
}

func (f *Fixture) deployAt(t *testing.T, c *chain.Chain, deployer, addr common.Address, contract chain.Contract) common.Address {
	t.Helper()

	if addr == (common.Address{}) {
		return c.Deploy(deployer, contract)
	}
	require.NoError(t, c.DeployAt(addr, contract))

	return addr
}

func (f *Fixture) save(t *testing.T, c *chain.Chain, addr common.Address, typ deployment.ContractType, version semver.Version, labels ...string) {
	t.Helper()

	require.NoError(t, f.Addresses.Save(c.Selector(), addr.Hex(), deployment.NewTypeAndVersion(typ, version, labels...)))
}

// orAccount returns addr, or a fresh account for roles not known yet.
func orAccount(c *chain.Chain, addr common.Address, label string) common.Address {
	if addr != (common.Address{}) {
		return addr
	}

	return c.NewAccount(label)
}
