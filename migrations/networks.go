package migrations

import (
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	chainsel "github.com/smartcontractkit/chain-selectors"

	"github.com/dodao/comet-market-updates/bridge"
	"github.com/dodao/comet-market-updates/types"
)

var (
	mainnetSelector  = types.ChainSelector(chainsel.ETHEREUM_MAINNET.Selector)
	arbitrumSelector = types.ChainSelector(chainsel.ETHEREUM_MAINNET_ARBITRUM_1.Selector)
	polygonSelector  = types.ChainSelector(chainsel.POLYGON_MAINNET.Selector)
	scrollSelector   = types.ChainSelector(chainsel.ETHEREUM_MAINNET_SCROLL_1.Selector)
	fujiSelector     = types.ChainSelector(chainsel.AVALANCHE_TESTNET_FUJI.Selector)
)

// Contracts shared by the mainnet, arbitrum, polygon and fuji deployments.
var (
	sharedMarketUpdateTimelock          = common.HexToAddress("0x81Bc6016Fa365bfE929a51Eec9217B441B598eC6")
	sharedMarketUpdateProposer          = common.HexToAddress("0xB6Ef3AC71E9baCF1F4b9426C149d855Bfc4415F9")
	sharedNewConfiguratorImplementation = common.HexToAddress("0x371DB45c7ee248dAFf4Dc1FFB67A20faa0ecFE02")
	sharedNewCometProxyAdmin            = common.HexToAddress("0x24D86Da09C4Dd64e50dB7501b0f695d030f397aF")
	sharedMarketAdminPermissionChecker  = common.HexToAddress("0x62DD0452411113404cf9a7fE88A5E6E86f9B71a6")

	// l2MarketAdmin is the Safe holding the market admin role on the L2 deployments.
	l2MarketAdmin = common.HexToAddress("0x7e14050080306cd36b47DE61ce604b3a1EC70c4e")
)

// MainnetUSDC is the mainnet/usdc migration. It governs the four mainnet markets directly.
func MainnetUSDC() Config {
	return Config{
		Name:                          "1729696345_gov_market_updates",
		Network:                       NetworkMainnet,
		Deployment:                    "usdc",
		Chain:                         mainnetSelector,
		GovernanceChain:               mainnetSelector,
		MarketAdmin:                   common.HexToAddress("0xA1C7b6d8b4DeD5ee46330C865cC8aeCfB13c8b65"),
		LocalTimelock:                 common.HexToAddress("0x6d903f6003cca6255D85CcA4D3B5E5146dC33925"),
		MarketUpdateTimelock:          sharedMarketUpdateTimelock,
		MarketUpdateProposer:          sharedMarketUpdateProposer,
		NewConfiguratorImplementation: sharedNewConfiguratorImplementation,
		NewCometProxyAdmin:            sharedNewCometProxyAdmin,
		MarketAdminPermissionChecker:  sharedMarketAdminPermissionChecker,
		CommunityMultiSig:             common.HexToAddress("0xbbf3f1421D886E9b2c5D716B5192aC998af2012c"),
		ConfiguratorProxy:             common.HexToAddress("0x316f9708bB98af7dA9c68C1C3b5e79039cD336E3"),
		CometProxies: []common.Address{
			common.HexToAddress("0xc3d688B66703497DAA19211EEdff47f25384cdc3"), // usdc
			common.HexToAddress("0x3Afdc9BCA9213A35503b077a6072F3D0d5AB0840"), // usdt
			common.HexToAddress("0xA17581A9E3356d9A858b789D68B4d866e593aE94"), // weth
			common.HexToAddress("0x3D0bb1ccaB520A66e607822fC55BC921738fAFE3"), // wsteth
		},
		Description: MarketUpdatesDescription,
	}
}

// ArbitrumUSDC is the arbitrum/usdc migration, relayed as a retryable ticket.
func ArbitrumUSDC() Config {
	return Config{
		Name:                          "1729693349_gov_market_updates",
		Network:                       NetworkArbitrum,
		Deployment:                    "usdc",
		Chain:                         arbitrumSelector,
		GovernanceChain:               mainnetSelector,
		Bridge:                        bridge.KindArbitrum,
		MarketAdmin:                   l2MarketAdmin,
		LocalTimelock:                 common.HexToAddress("0x3fB4d38ea7EC20D91917c09591490Eeda38Cf88A"),
		MarketUpdateTimelock:          sharedMarketUpdateTimelock,
		MarketUpdateProposer:          sharedMarketUpdateProposer,
		NewConfiguratorImplementation: sharedNewConfiguratorImplementation,
		NewCometProxyAdmin:            sharedNewCometProxyAdmin,
		MarketAdminPermissionChecker:  sharedMarketAdminPermissionChecker,
		CommunityMultiSig:             common.HexToAddress("0x78E6317DD6D43DdbDa00Dce32C2CbaFc99361a9d"),
		OldCometProxyAdmin:            common.HexToAddress("0xD10b40fF1D92e2267D099Da3509253D9Da4D715e"),
		ConfiguratorProxy:             common.HexToAddress("0xb21b06D71c75973babdE35b49fFDAc3F82Ad3775"),
		CometProxies: []common.Address{
			common.HexToAddress("0x9c4ec768c28520B50860ea7a15bd7213a9fF58bf"), // usdc
			common.HexToAddress("0xd98Be00b5D27fc98112BdE293e487f8D4cA57d07"), // usdt
			common.HexToAddress("0x6f7D514bbD4aFf3BcD1140B7344b32f063dEe486"), // weth
			common.HexToAddress("0xA5EDBDD9646f8dFF606d7448e414884C7d905dCA"), // usdc.e
		},
		Description: MarketUpdatesDescription,
	}
}

// PolygonUSDC is the polygon/usdc migration, relayed through FxRoot.
func PolygonUSDC() Config {
	return Config{
		Name:                          "1729698710_gov_market_updates",
		Network:                       NetworkPolygon,
		Deployment:                    "usdc",
		Chain:                         polygonSelector,
		GovernanceChain:               mainnetSelector,
		Bridge:                        bridge.KindPolygon,
		MarketAdmin:                   l2MarketAdmin,
		LocalTimelock:                 common.HexToAddress("0xCC3E7c85Bb0EE4f09380e041fee95a0caeDD4a02"),
		MarketUpdateTimelock:          sharedMarketUpdateTimelock,
		MarketUpdateProposer:          sharedMarketUpdateProposer,
		NewConfiguratorImplementation: sharedNewConfiguratorImplementation,
		NewCometProxyAdmin:            sharedNewCometProxyAdmin,
		MarketAdminPermissionChecker:  sharedMarketAdminPermissionChecker,
		CommunityMultiSig:             common.HexToAddress("0x8Ab717CAC3CbC4934E63825B88442F5810aAF6e5"),
		OldCometProxyAdmin:            common.HexToAddress("0xd712ACe4ca490D4F3E92992Ecf3DE12251b975F9"),
		ConfiguratorProxy:             common.HexToAddress("0x83E0F742cAcBE66349E3701B171eE2487a26e738"),
		CometProxies: []common.Address{
			common.HexToAddress("0xF25212E676D1F7F89Cd72fFEe66158f541246445"), // usdc
			common.HexToAddress("0xaeB318360f27748Acb200CE616E389A6C9409a07"), // usdt
		},
		Description: MarketUpdatesDescription,
	}
}

// ScrollUSDC is the scroll/usdc migration, relayed through the Scroll messenger. Scroll has
// its own market update contracts.
func ScrollUSDC() Config {
	return Config{
		Name:                          "1728988057_gov_market_updates",
		Network:                       NetworkScroll,
		Deployment:                    "usdc",
		Chain:                         scrollSelector,
		GovernanceChain:               mainnetSelector,
		Bridge:                        bridge.KindScroll,
		MarketAdmin:                   l2MarketAdmin,
		LocalTimelock:                 common.HexToAddress("0xF6013e80E9e6AC211Cc031ad1CE98B3Aa20b73E4"),
		MarketUpdateTimelock:          common.HexToAddress("0xEF68eF5a7AE8d6ED49151024282414325C9907CB"),
		MarketUpdateProposer:          common.HexToAddress("0xCf69AD817b24BE69060966b430169a8785f14B84"),
		NewConfiguratorImplementation: common.HexToAddress("0xcD4969Ea1709172dE872CE0dDF84cAD7FD03D6ab"),
		NewCometProxyAdmin:            common.HexToAddress("0xdD731c8823D7b10B6583ff7De217741135568Cf2"),
		MarketAdminPermissionChecker:  common.HexToAddress("0x07B99b9F9e18aB8455961e487D2fd503a3C0d4c3"),
		CommunityMultiSig:             common.HexToAddress("0x0747a435b8a60070A7a111D015046d765098e4cc"),
		OldCometProxyAdmin:            common.HexToAddress("0x87A27b91f4130a25E9634d23A5B8E05e342bac50"),
		ConfiguratorProxy:             common.HexToAddress("0xECAB0bEEa3e5DEa0c35d3E69468EAC20098032D7"),
		CometProxies: []common.Address{
			common.HexToAddress("0xB2f97c1Bd3bf02f5e74d13f02E3e26F93D77CE44"), // usdc
		},
		Description: ScrollMarketUpdatesDescription,
	}
}

// FujiUSDC is the fuji/usdc migration. Fuji is governed locally, and its market admin, local
// timelock and community multisig are not known yet.
func FujiUSDC() Config {
	return Config{
		Name:                          "1729695741_gov_market_updates",
		Network:                       NetworkFuji,
		Deployment:                    "usdc",
		Chain:                         fujiSelector,
		GovernanceChain:               fujiSelector,
		MarketUpdateTimelock:          sharedMarketUpdateTimelock,
		MarketUpdateProposer:          sharedMarketUpdateProposer,
		NewConfiguratorImplementation: sharedNewConfiguratorImplementation,
		NewCometProxyAdmin:            sharedNewCometProxyAdmin,
		MarketAdminPermissionChecker:  sharedMarketAdminPermissionChecker,
		ConfiguratorProxy:             common.HexToAddress("0x8c083632099CBA949EA61A3044DB1B5A27818b20"),
		CometProxies: []common.Address{
			common.HexToAddress("0x59BF4753899C20EA152dEefc6f6A14B2a5CC3021"), // usdc
		},
		Description: MarketUpdatesDescription,
	}
}

// All returns every market updates migration, ordered by network.
func All() []*Migration {
	return []*Migration{
		MustNew(MainnetUSDC()),
		MustNew(ArbitrumUSDC()),
		MustNew(PolygonUSDC()),
		MustNew(ScrollUSDC()),
		MustNew(FujiUSDC()),
	}
}

// ForNetwork returns the migration of network.
func ForNetwork(network Network) (*Migration, error) {
	all := All()
	i := slices.IndexFunc(all, func(m *Migration) bool { return m.Network() == network })
	if i < 0 {
		return nil, fmt.Errorf("no market updates migration for network %q", network)
	}

	return all[i], nil
}
