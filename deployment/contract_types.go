package deployment

import "github.com/Masterminds/semver/v3"

// Contract types referenced by the market update migrations.
const (
	Governor                     ContractType = "Governor"
	Timelock                     ContractType = "Timelock"
	GovernorTimelock             ContractType = "GovernorTimelock"
	MarketUpdateTimelock         ContractType = "MarketUpdateTimelock"
	MarketUpdateProposer         ContractType = "MarketUpdateProposer"
	MarketAdminPermissionChecker ContractType = "MarketAdminPermissionChecker"
	Configurator                 ContractType = "Configurator"
	ConfiguratorProxy            ContractType = "ConfiguratorProxy"
	CometProxyAdmin              ContractType = "CometProxyAdmin"
	CometProxy                   ContractType = "CometProxy"
	CometFactory                 ContractType = "CometFactory"
	BridgeReceiver               ContractType = "BridgeReceiver"
	ArbitrumInbox                ContractType = "ArbitrumInbox"
	FxRoot                       ContractType = "FxRoot"
	FxChild                      ContractType = "FxChild"
	ScrollMessenger              ContractType = "ScrollMessenger"
	L2ScrollMessenger            ContractType = "L2ScrollMessenger"
)

// Labels used to tell apart entries of the same type.
const (
	// LabelLegacy marks a contract replaced by the market updates deployment, such as the
	// original proxy admin.
	LabelLegacy = "legacy"

	// LabelMarketUpdates marks a contract deployed for market updates.
	LabelMarketUpdates = "market-updates"
)

// Versions of the deployed contracts.
var (
	Version1_0_0 = *semver.MustParse("1.0.0")
	Version2_0_0 = *semver.MustParse("2.0.0")
)

// MarketLabel is the label of the Comet proxy of market, e.g. "market:usdc".
func MarketLabel(market string) string {
	return "market:" + market
}
