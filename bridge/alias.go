package bridge

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// aliasOffset is added to an L1 contract address to get the sender seen on Arbitrum.
var aliasOffset = new(big.Int).SetBytes(common.FromHex("0x1111000000000000000000000000000000001111"))

var addressSpace = new(big.Int).Lsh(big.NewInt(1), common.AddressLength*8)

// ApplyL1ToL2Alias returns the address an L1 contract appears as when its message executes on
// Arbitrum.
func ApplyL1ToL2Alias(l1 common.Address) common.Address {
	v := new(big.Int).Add(new(big.Int).SetBytes(l1.Bytes()), aliasOffset)
	return common.BigToAddress(v.Mod(v, addressSpace))
}

// UndoL1ToL2Alias reverses ApplyL1ToL2Alias.
func UndoL1ToL2Alias(l2 common.Address) common.Address {
	v := new(big.Int).Sub(new(big.Int).SetBytes(l2.Bytes()), aliasOffset)
	return common.BigToAddress(v.Mod(v, addressSpace))
}
