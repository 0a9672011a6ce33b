package contracts

import "github.com/dodao/comet-market-updates/chain"

// Custom errors shared by the market update contracts.
var (
	ErrUnauthorized        = chain.NewCustomError("Unauthorized")
	ErrInvalidAddress      = chain.NewCustomError("InvalidAddress")
	ErrAlreadyInitialized  = chain.NewCustomError("AlreadyInitialized")
	ErrMarketAdminIsPaused = chain.NewCustomError("MarketAdminIsPaused")
)

// String reasons raised by the OpenZeppelin and Compound contracts.
var (
	ErrNotOwner          = chain.Revert("Ownable: caller is not the owner")
	ErrNewOwnerZero      = chain.Revert("Ownable: new owner is the zero address")
	ErrContractPaused    = chain.Revert("Contract is paused")
	ErrFailedToCall      = chain.Revert("failed to call")
	ErrAdminFallback     = chain.Revert("TransparentUpgradeableProxy: admin cannot fallback to proxy target")
	ErrNotContract       = chain.Revert("ERC1967: new implementation is not a contract")
	ErrNotLogic          = chain.Revert("TransparentUpgradeableProxy: implementation cannot run behind a proxy")
	ErrProxyNotAdmin     = chain.Revert("CometProxyAdmin: proxy is not administered by this contract")
	ErrUnknownProxyAdmin = chain.Revert("ProxyAdmin: proxy admin query failed")
)
