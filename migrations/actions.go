package migrations

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	marketupdates "github.com/dodao/comet-market-updates"
	"github.com/dodao/comet-market-updates/bridge"
	"github.com/dodao/comet-market-updates/types"
)

const (
	ChangeProxyAdminSignature                = "changeProxyAdmin(address,address)"
	UpgradeSignature                         = "upgrade(address,address)"
	SetMarketAdminPermissionCheckerSignature = "setMarketAdminPermissionChecker(address)"
)

// MarketUpdateActions are the calls that move a deployment to market updates:
//  1. the old proxy admin hands every Comet proxy and the configurator proxy to the new proxy
//     admin,
//  2. the new proxy admin upgrades the configurator,
//  3. the configurator starts consulting the permission checker.
//
// configurator is the target of the last call.
func (m *Migration) MarketUpdateActions(cometAdmin, configurator common.Address) (types.Actions, error) {
	actions := make(types.Actions, 0, len(m.cfg.CometProxies)+3)

	proxies := append(append([]common.Address{}, m.cfg.CometProxies...), m.cfg.ConfiguratorProxy)
	for _, proxy := range proxies {
		a, err := types.NewAction(cometAdmin, ChangeProxyAdminSignature, proxy, m.cfg.NewCometProxyAdmin)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}

	upgrade, err := types.NewAction(m.cfg.NewCometProxyAdmin, UpgradeSignature,
		m.cfg.ConfiguratorProxy, m.cfg.NewConfiguratorImplementation)
	if err != nil {
		return nil, err
	}
	setChecker, err := types.NewAction(configurator, SetMarketAdminPermissionCheckerSignature,
		m.cfg.MarketAdminPermissionChecker)
	if err != nil {
		return nil, err
	}

	return append(actions, upgrade, setChecker), nil
}

// Actions returns the actions proposed to the governor. Locally governed networks propose the
// market update actions directly. Bridged networks propose one call that sends them, encoded
// as an L2 proposal, to the bridge receiver.
func (m *Migration) Actions(ctx context.Context, env Env, vars Vars) (types.Actions, error) {
	if !m.cfg.Bridged() {
		return m.MarketUpdateActions(vars.CometAdmin, vars.Configurator)
	}

	// The L2 proposal names the configurator proxy by its literal address.
	l2Actions, err := m.MarketUpdateActions(vars.CometAdmin, m.cfg.ConfiguratorProxy)
	if err != nil {
		return nil, err
	}
	payload, err := bridge.EncodeProposal(l2Actions)
	if err != nil {
		return nil, fmt.Errorf("encode l2 proposal: %w", err)
	}

	transport, err := m.transport(env, vars)
	if err != nil {
		return nil, err
	}
	action, err := transport.Wrap(ctx, vars.BridgeReceiver, payload)
	if err != nil {
		return nil, err
	}

	return types.Actions{action}, nil
}

// Proposal builds the proposal document submitted to the governor. Bridged networks also
// record the L2 proposal the governance action carries.
func (m *Migration) Proposal(ctx context.Context, env Env, vars Vars) (*marketupdates.Proposal, error) {
	actions, err := m.Actions(ctx, env, vars)
	if err != nil {
		return nil, err
	}

	b := marketupdates.NewProposalBuilder().
		SetMigration(m.cfg.Name).
		SetNetwork(string(m.cfg.Network)).
		SetChainSelector(m.cfg.GovernanceChain).
		SetDescription(m.cfg.Description).
		SetActions(actions)
	if m.cfg.Bridged() {
		l2Actions, err := m.MarketUpdateActions(vars.CometAdmin, m.cfg.ConfiguratorProxy)
		if err != nil {
			return nil, err
		}
		b.SetBridged(m.cfg.Bridge, m.cfg.Chain, vars.BridgeReceiver, l2Actions)
	}

	doc, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w %s: proposal: %w", ErrInvalidConfig, m.cfg.Name, err)
	}

	return doc, nil
}

func (m *Migration) transport(env Env, vars Vars) (bridge.Transport, error) {
	switch m.cfg.Bridge {
	case bridge.KindArbitrum:
		estimator := env.Estimator
		if estimator == nil {
			estimator = bridge.StaticEstimator(bridge.DefaultArbitrumGasParams)
		}

		return bridge.ArbitrumTransport{
			Inbox:         vars.BridgeEndpoint,
			RefundAddress: vars.L2Timelock,
			Estimator:     estimator,
		}, nil
	case bridge.KindPolygon:
		return bridge.PolygonTransport{FxRoot: vars.BridgeEndpoint}, nil
	case bridge.KindScroll:
		return bridge.ScrollTransport{
			Messenger: vars.BridgeEndpoint,
			GasLimit:  bridge.DefaultScrollGasLimit,
			Fee:       bridge.DefaultScrollFee,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBridge, m.cfg.Bridge)
	}
}
