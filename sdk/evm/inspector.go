package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/internal/utils/abi"
	"github.com/dodao/comet-market-updates/sdk"
)

var _ sdk.Inspector = (*Inspector)(nil)

// Inspector is an Inspector implementation for EVM chains. It reads single-value view
// functions with eth_call at the latest block.
type Inspector struct {
	client ContractDeployBackend
}

// NewInspector creates a new Inspector for evm chains.
func NewInspector(client ContractDeployBackend) *Inspector {
	return &Inspector{client: client}
}

func (i *Inspector) Address(ctx context.Context, contract common.Address, signature string, args ...any) (common.Address, error) {
	v, err := i.call(ctx, contract, signature, "address", args...)
	if err != nil {
		return common.Address{}, err
	}

	return v.(common.Address), nil //nolint:forcetypeassert // decoded as address
}

// Uint reads any unsigned integer output as a big.Int.
func (i *Inspector) Uint(ctx context.Context, contract common.Address, signature string, args ...any) (*big.Int, error) {
	v, err := i.call(ctx, contract, signature, "uint256", args...)
	if err != nil {
		return nil, err
	}

	return v.(*big.Int), nil //nolint:forcetypeassert // decoded as uint256
}

func (i *Inspector) Bool(ctx context.Context, contract common.Address, signature string, args ...any) (bool, error) {
	v, err := i.call(ctx, contract, signature, "bool", args...)
	if err != nil {
		return false, err
	}

	return v.(bool), nil //nolint:forcetypeassert // decoded as bool
}

func (i *Inspector) call(ctx context.Context, contract common.Address, signature, output string, args ...any) (any, error) {
	input, err := abi.EncodeCall(signature, args...)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", signature, err)
	}

	out, err := i.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", signature, contract.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s on %s", ErrEmptyResult, signature, contract.Hex())
	}

	values, err := abi.Decode([]string{output}, out)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", signature, err)
	}

	return values[0], nil
}
