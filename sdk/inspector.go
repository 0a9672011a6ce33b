package sdk

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Inspector reads the view functions the migrations verify. signature is the Solidity
// signature of a view function returning a single value, e.g. "marketAdmin()".
type Inspector interface {
	Address(ctx context.Context, contract common.Address, signature string, args ...any) (common.Address, error)
	Uint(ctx context.Context, contract common.Address, signature string, args ...any) (*big.Int, error)
	Bool(ctx context.Context, contract common.Address, signature string, args ...any) (bool, error)
}
