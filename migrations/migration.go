// Package migrations holds the governance migrations that hand market parameter updates to the
// market update timelock on every network, and the runner that enacts them.
package migrations

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/dodao/comet-market-updates/bridge"
	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/deployment"
	"github.com/dodao/comet-market-updates/sdk"
	"github.com/dodao/comet-market-updates/types"
)

// Network is the deployment network of a migration.
type Network string

const (
	NetworkMainnet  Network = "mainnet"
	NetworkArbitrum Network = "arbitrum"
	NetworkPolygon  Network = "polygon"
	NetworkScroll   Network = "scroll"
	NetworkFuji     Network = "fuji"
)

var (
	// ErrInvalidConfig is returned when a migration config fails validation.
	ErrInvalidConfig = errors.New("invalid migration config")

	// ErrInvalidEnv is returned when the environment a migration runs in is incomplete.
	ErrInvalidEnv = errors.New("invalid migration env")

	// ErrUnsupportedBridge is returned for a bridge without a transport.
	ErrUnsupportedBridge = errors.New("unsupported bridge")

	// ErrProposalSubmitted is returned when proposing failed after the transaction was sent. The
	// proposal may exist on chain, so it is never submitted again.
	ErrProposalSubmitted = errors.New("proposal transaction already sent")
)

var validate = validator.New()

// Config holds the literal addresses a market updates migration references. Zero addresses
// are roles not known yet; Verify reports them as unconfigured.
type Config struct {
	Name       string              `validate:"required"`
	Network    Network             `validate:"required,oneof=mainnet arbitrum polygon scroll fuji"`
	Deployment string              `validate:"required"`
	Chain      types.ChainSelector `validate:"required"`

	// GovernanceChain is the chain of the governor voting on the migration. It equals Chain
	// for networks governed locally.
	GovernanceChain types.ChainSelector `validate:"required"`

	// Bridge carries the proposal from GovernanceChain to Chain. Zero for local governance.
	Bridge bridge.Kind

	MarketAdmin                   common.Address
	LocalTimelock                 common.Address
	MarketUpdateTimelock          common.Address `validate:"required"`
	MarketUpdateProposer          common.Address `validate:"required"`
	NewConfiguratorImplementation common.Address `validate:"required"`
	NewCometProxyAdmin            common.Address `validate:"required"`
	MarketAdminPermissionChecker  common.Address `validate:"required"`
	CommunityMultiSig             common.Address

	// OldCometProxyAdmin is the proxy admin being replaced. When zero it is read from the
	// address book as the legacy CometProxyAdmin of Chain.
	OldCometProxyAdmin common.Address
	ConfiguratorProxy  common.Address   `validate:"required"`
	CometProxies       []common.Address `validate:"min=1,dive,required"`

	// MarketUpdateDelay is the delay expected on MarketUpdateTimelock. Zero means
	// types.MarketUpdateDelay.
	MarketUpdateDelay types.Duration

	Description string `validate:"required"`
}

// Bridged reports whether the proposal is relayed to another chain.
func (c Config) Bridged() bool {
	return c.Bridge != 0
}

// Env is what a migration runs against.
type Env struct {
	// Addresses holds the contracts of both the governance chain and the migrated chain.
	Addresses deployment.AddressBook `validate:"required"`

	// Governor submits proposals on the governance chain.
	Governor sdk.GovernorClient `validate:"required"`

	// Inspector reads the migrated chain.
	Inspector sdk.Inspector `validate:"required"`

	// Estimator prices Arbitrum retryable tickets. bridge.DefaultArbitrumGasParams is used
	// when nil.
	Estimator bridge.RetryableEstimator

	// Executor, when set, carries an enacted proposal through governance so the runner can
	// verify it.
	Executor ProposalExecutor
}

// ProposalExecutor votes, queues and executes a governance proposal until its actions have
// run on the migrated chain.
type ProposalExecutor interface {
	ExecuteProposal(ctx context.Context, proposalID *big.Int) error
}

// Vars are the contracts a migration resolves from the address book before enacting.
type Vars struct {
	// CometAdmin is the proxy admin being replaced.
	CometAdmin common.Address `json:"cometAdmin"`

	// Configurator is the configurator proxy registered for the deployment.
	Configurator common.Address `json:"configurator"`

	// BridgeReceiver and L2Timelock are set for bridged networks.
	BridgeReceiver common.Address `json:"bridgeReceiver,omitempty"`
	L2Timelock     common.Address `json:"l2Timelock,omitempty"`

	// BridgeEndpoint is the governance chain contract the proposal is sent through.
	BridgeEndpoint common.Address `json:"bridgeEndpoint,omitempty"`

	// MarketUpdateDelay is the delay the migrated MarketUpdateTimelock is expected to carry.
	MarketUpdateDelay types.Duration `json:"marketUpdateDelay"`
}

// Migration is one governance migration.
type Migration struct {
	cfg Config
}

// New validates cfg and returns the migration it describes.
func New(cfg Config) (*Migration, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrInvalidConfig, cfg.Name, err)
	}
	if cfg.Bridged() == (cfg.Chain == cfg.GovernanceChain) {
		return nil, fmt.Errorf("%w %s: bridge %s does not match chains %s and %s",
			ErrInvalidConfig, cfg.Name, cfg.Bridge, cfg.GovernanceChain.Name(), cfg.Chain.Name())
	}

	if cfg.MarketUpdateDelay.Duration == 0 {
		cfg.MarketUpdateDelay = types.MarketUpdateDelay
	}

	return &Migration{cfg: cfg}, nil
}

// MustNew is New for configs known to be valid.
func MustNew(cfg Config) *Migration {
	m, err := New(cfg)
	if err != nil {
		panic(err)
	}

	return m
}

// Name returns the migration name, e.g. "1729696345_gov_market_updates".
func (m *Migration) Name() string { return m.cfg.Name }

// Network returns the network the migration belongs to.
func (m *Migration) Network() Network { return m.cfg.Network }

// Config returns the migration config.
func (m *Migration) Config() Config { return m.cfg }

// String returns network/deployment/name.
func (m *Migration) String() string {
	return fmt.Sprintf("%s/%s/%s", m.cfg.Network, m.cfg.Deployment, m.cfg.Name)
}

// Prepare resolves the contracts the migration needs from the address book.
func (m *Migration) Prepare(_ context.Context, env Env) (Vars, error) {
	if err := validate.Struct(env); err != nil {
		return Vars{}, fmt.Errorf("%w: %w", ErrInvalidEnv, err)
	}

	ab := env.Addresses
	vars := Vars{CometAdmin: m.cfg.OldCometProxyAdmin, MarketUpdateDelay: m.cfg.MarketUpdateDelay}

	var err error
	if vars.CometAdmin == (common.Address{}) {
		vars.CometAdmin, err = deployment.Find(ab, m.cfg.Chain, deployment.CometProxyAdmin, deployment.LabelLegacy)
		if err != nil {
			return Vars{}, fmt.Errorf("resolve comet admin: %w", err)
		}
	}
	vars.Configurator, err = deployment.Find(ab, m.cfg.Chain, deployment.ConfiguratorProxy)
	if err != nil {
		return Vars{}, fmt.Errorf("resolve configurator: %w", err)
	}

	if !m.cfg.Bridged() {
		return vars, nil
	}

	if vars.BridgeReceiver, err = deployment.Find(ab, m.cfg.Chain, deployment.BridgeReceiver); err != nil {
		return Vars{}, fmt.Errorf("resolve bridge receiver: %w", err)
	}
	if vars.L2Timelock, err = deployment.Find(ab, m.cfg.Chain, deployment.Timelock); err != nil {
		return Vars{}, fmt.Errorf("resolve l2 timelock: %w", err)
	}

	endpoint, err := endpointType(m.cfg.Bridge)
	if err != nil {
		return Vars{}, err
	}
	if vars.BridgeEndpoint, err = deployment.Find(ab, m.cfg.GovernanceChain, endpoint); err != nil {
		return Vars{}, fmt.Errorf("resolve %s endpoint: %w", m.cfg.Bridge, err)
	}

	return vars, nil
}

func endpointType(kind bridge.Kind) (deployment.ContractType, error) {
	switch kind {
	case bridge.KindArbitrum:
		return deployment.ArbitrumInbox, nil
	case bridge.KindPolygon:
		return deployment.FxRoot, nil
	case bridge.KindScroll:
		return deployment.ScrollMessenger, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedBridge, kind)
	}
}

// Enact builds the governance proposal and submits it. It returns the proposal id.
func (m *Migration) Enact(ctx context.Context, env Env, vars Vars) (*big.Int, error) {
	doc, err := m.Proposal(ctx, env, vars)
	if err != nil {
		return nil, err
	}
	hash, err := doc.CalldataHash()
	if err != nil {
		return nil, fmt.Errorf("hash proposal %s: %w", m.cfg.Name, err)
	}
	sdk.LoggerFrom(ctx).Infow("submitting proposal",
		"migration", m.cfg.Name, "actions", len(doc.Actions), "calldataHash", hash.Hex())

	id, result, err := env.Governor.Propose(ctx, doc.Actions, doc.Description)
	if err != nil && result.Hash != "" {
		return nil, fmt.Errorf("propose %s in tx %s: %w: %w", m.cfg.Name, result.Hash, ErrProposalSubmitted, err)
	}
	if err != nil {
		return nil, fmt.Errorf("propose %s: %w", m.cfg.Name, err)
	}
	sdk.LoggerFrom(ctx).Infof("Created proposal %s in tx %s.", id, result.Hash)

	return id, nil
}

// Enacted reports whether the migration already took effect: the configurator consults the
// new permission checker. A configurator that predates market updates reverts the call and
// has not been migrated.
func (m *Migration) Enacted(ctx context.Context, env Env) (bool, error) {
	checker, err := env.Inspector.Address(ctx, m.cfg.ConfiguratorProxy, "marketAdminPermissionChecker()")
	if isRevert(err) {
		sdk.LoggerFrom(ctx).Infow("configurator has no permission checker yet",
			"migration", m.cfg.Name, "configurator", m.cfg.ConfiguratorProxy.Hex())

		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read permission checker: %w", err)
	}

	return checker == m.cfg.MarketAdminPermissionChecker, nil
}

// isRevert matches reverts of the in-memory chain and the "execution reverted" errors of
// ethereum RPC nodes.
func isRevert(err error) bool {
	if err == nil {
		return false
	}

	return chain.IsRevert(err) || strings.Contains(err.Error(), "execution reverted")
}
