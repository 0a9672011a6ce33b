package sdk

import (
	"context"
	"math/big"

	"github.com/dodao/comet-market-updates/types"
)

// GovernorClient submits proposals to the mainnet governor.
type GovernorClient interface {
	// Propose submits actions with description and returns the id of the created proposal.
	Propose(ctx context.Context, actions types.Actions, description string) (*big.Int, types.TransactionResult, error)
}
