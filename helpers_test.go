package marketupdates_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	marketupdates "github.com/dodao/comet-market-updates"
	"github.com/dodao/comet-market-updates/bridge"
	"github.com/dodao/comet-market-updates/internal/testutils/chaintest"
	"github.com/dodao/comet-market-updates/types"
)

var (
	cometAdmin        = common.HexToAddress("0x1EC63B5883C3481134FD50D5DAebc83Ecd2E8779")
	newCometAdmin     = common.HexToAddress("0x24D86Da09C4Dd64e50dB7501b0f695d030f397aF")
	configuratorProxy = common.HexToAddress("0x316f9708bB98af7dA9c68C1C3b5e79039cD336E3")
	cometProxy        = common.HexToAddress("0xc3d688B66703497DAA19211EEdff47f25384cdc3")
	checker           = common.HexToAddress("0x62DD0452411113404cf9a7fE88A5E6E86f9B71a6")
	fxRoot            = common.HexToAddress("0xfe5e5D361b2ad62c541bAb87C45a0B9B018389a2")
	receiver          = common.HexToAddress("0x18281dfC4d00905DA1aaA6731414EABa843c468A")
)

func action(t *testing.T, target common.Address, sig string, args ...any) types.Action {
	t.Helper()

	a, err := types.NewAction(target, sig, args...)
	require.NoError(t, err)

	return a
}

func l2Actions(t *testing.T) types.Actions {
	t.Helper()

	return types.Actions{
		action(t, cometAdmin, "changeProxyAdmin(address,address)", cometProxy, newCometAdmin),
		action(t, configuratorProxy, "setMarketAdminPermissionChecker(address)", checker),
	}
}

func mainnetBuilder(t *testing.T) *marketupdates.ProposalBuilder {
	t.Helper()

	return marketupdates.NewProposalBuilder().
		SetMigration("1729696345_gov_market_updates").
		SetNetwork("mainnet").
		SetChainSelector(chaintest.MainnetSelector).
		SetDescription("# Proposal to add market updates").
		AddAction(action(t, cometAdmin, "changeProxyAdmin(address,address)", cometProxy, newCometAdmin)).
		AddAction(action(t, configuratorProxy, "setMarketAdminPermissionChecker(address)", checker).
			WithValue(big.NewInt(0)))
}

func polygonBuilder(t *testing.T) *marketupdates.ProposalBuilder {
	t.Helper()

	inner := l2Actions(t)
	payload, err := bridge.EncodeProposal(inner)
	require.NoError(t, err)
	send, err := bridge.PolygonTransport{FxRoot: fxRoot}.Wrap(t.Context(), receiver, payload)
	require.NoError(t, err)

	return marketupdates.NewProposalBuilder().
		SetMigration("1729698710_gov_market_updates").
		SetNetwork("polygon").
		SetChainSelector(chaintest.MainnetSelector).
		SetDescription("# Proposal to add market updates on polygon").
		AddAction(send).
		SetBridged(bridge.KindPolygon, chaintest.PolygonSelector, receiver, inner)
}
