package chaintest

import (
	cselectors "github.com/smartcontractkit/chain-selectors"

	"github.com/dodao/comet-market-updates/types"
)

var (
	MainnetRawSelector = cselectors.ETHEREUM_MAINNET.Selector       // 5009297550715157269
	MainnetSelector    = types.ChainSelector(MainnetRawSelector)    // 5009297550715157269
	MainnetEVMID       = cselectors.ETHEREUM_MAINNET.EvmChainID     // 1

	ArbitrumRawSelector = cselectors.ETHEREUM_MAINNET_ARBITRUM_1.Selector   // 4949039107694359620
	ArbitrumSelector    = types.ChainSelector(ArbitrumRawSelector)          // 4949039107694359620
	ArbitrumEVMID       = cselectors.ETHEREUM_MAINNET_ARBITRUM_1.EvmChainID // 42161

	PolygonRawSelector = cselectors.POLYGON_MAINNET.Selector       // 4051577828743386545
	PolygonSelector    = types.ChainSelector(PolygonRawSelector)   // 4051577828743386545
	PolygonEVMID       = cselectors.POLYGON_MAINNET.EvmChainID     // 137

	ScrollRawSelector = cselectors.ETHEREUM_MAINNET_SCROLL_1.Selector   // 13204309965629103672
	ScrollSelector    = types.ChainSelector(ScrollRawSelector)          // 13204309965629103672
	ScrollEVMID       = cselectors.ETHEREUM_MAINNET_SCROLL_1.EvmChainID // 534352

	FujiRawSelector = cselectors.AVALANCHE_TESTNET_FUJI.Selector   // 14767482510784806043
	FujiSelector    = types.ChainSelector(FujiRawSelector)         // 14767482510784806043
	FujiEVMID       = cselectors.AVALANCHE_TESTNET_FUJI.EvmChainID // 43113

	// TestInvalidChainSelector is a chain selector that doesn't exist.
	TestInvalidChainSelector = types.ChainSelector(0)
)
