// Package sim implements the sdk interfaces on top of an in-memory chain.Chain, so migrations
// can be enacted and verified without an RPC endpoint.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	chainsel "github.com/smartcontractkit/chain-selectors"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/internal/utils/abi"
	"github.com/dodao/comet-market-updates/sdk"
	"github.com/dodao/comet-market-updates/types"
)

// ErrProposalCreatedNotFound is returned when a propose receipt carries no ProposalCreated event.
var ErrProposalCreatedNotFound = errors.New("ProposalCreated event not found in receipt")

const proposeSignature = "propose(address[],uint256[],string[],bytes[],string)"

var (
	_ sdk.GovernorClient = (*GovernorProposer)(nil)
	_ sdk.Inspector      = (*Inspector)(nil)
)

// GovernorProposer submits proposals to a governor deployed on a chain.Chain from a fixed
// account.
type GovernorProposer struct {
	chain    *chain.Chain
	governor common.Address
	from     common.Address
}

// NewGovernorProposer returns a GovernorProposer sending from `from`.
func NewGovernorProposer(c *chain.Chain, governor, from common.Address) *GovernorProposer {
	return &GovernorProposer{chain: c, governor: governor, from: from}
}

func (g *GovernorProposer) Propose(
	ctx context.Context, actions types.Actions, description string,
) (*big.Int, types.TransactionResult, error) {
	if err := actions.ValidateShape(); err != nil {
		return nil, types.TransactionResult{}, err
	}

	targets, values, signatures, calldatas := actions.Split()
	receipt, err := g.chain.Send(ctx, g.from, g.governor, nil, proposeSignature,
		targets, values, signatures, calldatas, description)
	result := newResult(receipt)
	if err != nil {
		return nil, result, fmt.Errorf("submit proposal: %w", err)
	}

	event, ok := receipt.Event("ProposalCreated")
	if !ok {
		return nil, result, ErrProposalCreatedNotFound
	}
	id, ok := event.Args["id"].(*big.Int)
	if !ok {
		return nil, result, fmt.Errorf("%w: id is %T", ErrProposalCreatedNotFound, event.Args["id"])
	}

	return new(big.Int).Set(id), result, nil
}

func newResult(receipt *chain.Receipt) types.TransactionResult {
	if receipt == nil {
		return types.TransactionResult{}
	}

	return types.NewTransactionResult(receipt.TxHash.Hex(), receipt.BlockNumber, chainsel.FamilyEVM, receipt)
}

// Inspector reads view functions of contracts deployed on a chain.Chain.
type Inspector struct {
	chain *chain.Chain
}

// NewInspector returns an Inspector over c.
func NewInspector(c *chain.Chain) *Inspector {
	return &Inspector{chain: c}
}

func (i *Inspector) Address(ctx context.Context, contract common.Address, signature string, args ...any) (common.Address, error) {
	v, err := i.query(ctx, contract, signature, "address", args...)
	if err != nil {
		return common.Address{}, err
	}

	return v.(common.Address), nil //nolint:forcetypeassert // decoded as address
}

func (i *Inspector) Uint(ctx context.Context, contract common.Address, signature string, args ...any) (*big.Int, error) {
	v, err := i.query(ctx, contract, signature, "uint256", args...)
	if err != nil {
		return nil, err
	}

	return v.(*big.Int), nil //nolint:forcetypeassert // decoded as uint256
}

func (i *Inspector) Bool(ctx context.Context, contract common.Address, signature string, args ...any) (bool, error) {
	v, err := i.query(ctx, contract, signature, "bool", args...)
	if err != nil {
		return false, err
	}

	return v.(bool), nil //nolint:forcetypeassert // decoded as bool
}

func (i *Inspector) query(ctx context.Context, contract common.Address, signature, output string, args ...any) (any, error) {
	out, err := i.chain.Call(ctx, common.Address{}, contract, signature, args...)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", signature, contract.Hex(), err)
	}

	values, err := abi.Decode([]string{output}, out)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", signature, err)
	}

	return values[0], nil
}
