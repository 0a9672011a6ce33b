package marketupdates

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/bridge"
	"github.com/dodao/comet-market-updates/types"
)

// ProposalBuilder builds a Proposal.
type ProposalBuilder struct {
	proposal Proposal
}

// NewProposalBuilder creates a new ProposalBuilder for the current document version.
func NewProposalBuilder() *ProposalBuilder {
	return &ProposalBuilder{
		proposal: Proposal{
			Version: CurrentVersion,
			Actions: types.Actions{},
		},
	}
}

// SetVersion sets the version of the document.
func (b *ProposalBuilder) SetVersion(version string) *ProposalBuilder {
	b.proposal.Version = version
	return b
}

// SetMigration sets the name of the migration the proposal belongs to.
func (b *ProposalBuilder) SetMigration(name string) *ProposalBuilder {
	b.proposal.Migration = name
	return b
}

// SetNetwork sets the network of the migration.
func (b *ProposalBuilder) SetNetwork(network string) *ProposalBuilder {
	b.proposal.Network = network
	return b
}

// SetChainSelector sets the chain of the voting governor.
func (b *ProposalBuilder) SetChainSelector(sel types.ChainSelector) *ProposalBuilder {
	b.proposal.ChainSelector = sel
	return b
}

// SetDescription sets the description submitted with the proposal.
func (b *ProposalBuilder) SetDescription(description string) *ProposalBuilder {
	b.proposal.Description = description
	return b
}

// AddAction appends an action.
func (b *ProposalBuilder) AddAction(action types.Action) *ProposalBuilder {
	b.proposal.Actions = append(b.proposal.Actions, action)
	return b
}

// SetActions replaces the actions.
func (b *ProposalBuilder) SetActions(actions types.Actions) *ProposalBuilder {
	b.proposal.Actions = actions
	return b
}

// SetBridged records the L2 proposal sent to receiver on sel over kind.
func (b *ProposalBuilder) SetBridged(
	kind bridge.Kind, sel types.ChainSelector, receiver common.Address, actions types.Actions,
) *ProposalBuilder {
	b.proposal.Bridged = &BridgedProposal{
		Bridge:        kind.String(),
		ChainSelector: sel,
		Receiver:      receiver,
		Actions:       actions,
	}

	return b
}

// Build validates and returns the constructed Proposal.
func (b *ProposalBuilder) Build() (*Proposal, error) {
	if err := b.proposal.Validate(); err != nil {
		return nil, err
	}
	p := b.proposal

	return &p, nil
}
