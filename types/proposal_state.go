package types

import "fmt"

// ProposalState is the lifecycle state of a market update proposal. The ordinals match the
// values returned by MarketUpdateProposer.state(uint256).
type ProposalState uint8

const (
	ProposalStateCanceled ProposalState = iota
	ProposalStateQueued
	ProposalStateExecuted
	ProposalStateExpired
)

func (s ProposalState) String() string {
	switch s {
	case ProposalStateCanceled:
		return "Canceled"
	case ProposalStateQueued:
		return "Queued"
	case ProposalStateExecuted:
		return "Executed"
	case ProposalStateExpired:
		return "Expired"
	default:
		return fmt.Sprintf("ProposalState(%d)", uint8(s))
	}
}

// GovernorProposalState is the lifecycle state of a governor proposal, in Governor Bravo order.
type GovernorProposalState uint8

const (
	GovernorProposalPending GovernorProposalState = iota
	GovernorProposalActive
	GovernorProposalCanceled
	GovernorProposalDefeated
	GovernorProposalSucceeded
	GovernorProposalQueued
	GovernorProposalExpired
	GovernorProposalExecuted
)

var governorProposalStateNames = [...]string{
	"Pending", "Active", "Canceled", "Defeated", "Succeeded", "Queued", "Expired", "Executed",
}

func (s GovernorProposalState) String() string {
	if int(s) < len(governorProposalStateNames) {
		return governorProposalStateNames[s]
	}

	return fmt.Sprintf("GovernorProposalState(%d)", uint8(s))
}

// BridgeProposalState is the lifecycle state of a proposal received by an L2 bridge receiver.
type BridgeProposalState uint8

const (
	BridgeProposalQueued BridgeProposalState = iota
	BridgeProposalExpired
	BridgeProposalExecuted
)

func (s BridgeProposalState) String() string {
	switch s {
	case BridgeProposalQueued:
		return "Queued"
	case BridgeProposalExpired:
		return "Expired"
	case BridgeProposalExecuted:
		return "Executed"
	default:
		return fmt.Sprintf("BridgeProposalState(%d)", uint8(s))
	}
}
