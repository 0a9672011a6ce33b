package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	evmTypes "github.com/ethereum/go-ethereum/core/types"
	chainsel "github.com/smartcontractkit/chain-selectors"

	"github.com/dodao/comet-market-updates/sdk"
	"github.com/dodao/comet-market-updates/types"
)

var _ sdk.GovernorClient = (*GovernorProposer)(nil)

// GovernorProposer submits proposals to a Governor Bravo contract over an RPC backend.
type GovernorProposer struct {
	address  common.Address
	client   ContractDeployBackend
	auth     *bind.TransactOpts
	contract *bind.BoundContract
}

// NewGovernorProposer creates a GovernorProposer for the governor at address. Transactions are
// signed with auth.
func NewGovernorProposer(address common.Address, client ContractDeployBackend, auth *bind.TransactOpts) *GovernorProposer {
	return &GovernorProposer{
		address:  address,
		client:   client,
		auth:     auth,
		contract: bind.NewBoundContract(address, governorABI, client, client, client),
	}
}

// Propose sends the propose transaction, waits until it is mined and returns the id read from
// the ProposalCreated log.
func (g *GovernorProposer) Propose(
	ctx context.Context, actions types.Actions, description string,
) (*big.Int, types.TransactionResult, error) {
	if err := actions.ValidateShape(); err != nil {
		return nil, types.TransactionResult{}, err
	}

	targets, values, signatures, calldatas := actions.Split()

	opts := *g.auth
	opts.Context = ctx

	tx, err := g.contract.Transact(&opts, "propose", targets, values, signatures, calldatas, description)
	if err != nil {
		return nil, types.TransactionResult{}, fmt.Errorf("submit proposal: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, g.client, tx)
	if err != nil {
		sent := types.NewTransactionResult(tx.Hash().Hex(), 0, chainsel.FamilyEVM, tx)

		return nil, sent, fmt.Errorf("wait for proposal %s: %w", tx.Hash().Hex(), err)
	}

	result := types.NewTransactionResult(tx.Hash().Hex(), receipt.BlockNumber.Uint64(), chainsel.FamilyEVM, receipt)
	if receipt.Status != evmTypes.ReceiptStatusSuccessful {
		return nil, result, fmt.Errorf("%w: %s", ErrTransactionFailed, tx.Hash().Hex())
	}

	id, err := g.proposalID(receipt)
	if err != nil {
		return nil, result, err
	}

	sdk.LoggerFrom(ctx).Infow("proposal submitted",
		"governor", g.address.Hex(), "proposalId", id.String(), "tx", result.Hash)

	return id, result, nil
}

func (g *GovernorProposer) proposalID(receipt *evmTypes.Receipt) (*big.Int, error) {
	event := governorABI.Events["ProposalCreated"]
	for _, log := range receipt.Logs {
		if log.Address != g.address || len(log.Topics) == 0 || log.Topics[0] != event.ID {
			continue
		}
		values, err := event.Inputs.Unpack(log.Data)
		if err != nil {
			return nil, fmt.Errorf("unpack ProposalCreated: %w", err)
		}

		return values[0].(*big.Int), nil //nolint:forcetypeassert // first input is uint256
	}

	return nil, ErrProposalCreatedNotFound
}
