package contracts

import (
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// AssetConfig is the per collateral part of a market configuration.
type AssetConfig struct {
	Asset                     common.Address
	PriceFeed                 common.Address
	Decimals                  uint8
	BorrowCollateralFactor    uint64
	LiquidateCollateralFactor uint64
	LiquidationFactor         uint64
	SupplyCap                 *big.Int
}

// Configuration is the set of parameters a Comet implementation is deployed with.
type Configuration struct {
	Governor                           common.Address
	PauseGuardian                      common.Address
	BaseToken                          common.Address
	BaseTokenPriceFeed                 common.Address
	ExtensionDelegate                  common.Address
	SupplyKink                         uint64
	SupplyPerYearInterestRateSlopeLow  uint64
	SupplyPerYearInterestRateSlopeHigh uint64
	SupplyPerYearInterestRateBase      uint64
	BorrowKink                         uint64
	BorrowPerYearInterestRateSlopeLow  uint64
	BorrowPerYearInterestRateSlopeHigh uint64
	BorrowPerYearInterestRateBase      uint64
	StoreFrontPriceFactor              uint64
	BaseTrackingSupplySpeed            uint64
	BaseTrackingBorrowSpeed            uint64
	BaseMinForRewards                  *big.Int
	BaseBorrowMin                      *big.Int
	TargetReserves                     *big.Int
	AssetConfigs                       []AssetConfig
}

// Clone returns a deep copy of c.
func (c Configuration) Clone() Configuration {
	out := c
	out.BaseMinForRewards = cloneBig(c.BaseMinForRewards)
	out.BaseBorrowMin = cloneBig(c.BaseBorrowMin)
	out.TargetReserves = cloneBig(c.TargetReserves)
	out.AssetConfigs = slices.Clone(c.AssetConfigs)
	for i := range out.AssetConfigs {
		out.AssetConfigs[i].SupplyCap = cloneBig(c.AssetConfigs[i].SupplyCap)
	}

	return out
}

func (c *Configuration) assetIndex(asset common.Address) int {
	return slices.IndexFunc(c.AssetConfigs, func(a AssetConfig) bool { return a.Asset == asset })
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}

	return new(big.Int).Set(v)
}
