package contracts

import (
	"maps"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/types"
)

// GovernorMaxOperations is the largest number of actions a governance proposal may carry.
const GovernorMaxOperations = 10

// Vote support values of castVote.
const (
	VoteAgainst uint8 = iota
	VoteFor
	VoteAbstain
)

var (
	ErrGovernorBelowThreshold   = chain.Revert("GovernorBravo::propose: proposer votes below proposal threshold")
	ErrGovernorArityMismatch    = chain.Revert("GovernorBravo::propose: proposal function information arity mismatch")
	ErrGovernorNoActions        = chain.Revert("GovernorBravo::propose: must provide actions")
	ErrGovernorTooManyActions   = chain.Revert("GovernorBravo::propose: too many actions")
	ErrGovernorInvalidID        = chain.Revert("GovernorBravo::state: invalid proposal id")
	ErrGovernorVotingClosed     = chain.Revert("GovernorBravo::castVoteInternal: voting is closed")
	ErrGovernorInvalidVote      = chain.Revert("GovernorBravo::castVoteInternal: invalid vote type")
	ErrGovernorAlreadyVoted     = chain.Revert("GovernorBravo::castVoteInternal: voter already voted")
	ErrGovernorNotSucceeded     = chain.Revert("GovernorBravo::queue: proposal can only be queued if it is succeeded")
	ErrGovernorDuplicateAction  = chain.Revert("GovernorBravo::queueOrRevertInternal: identical proposal action already queued at eta")
	ErrGovernorNotQueued        = chain.Revert("GovernorBravo::execute: proposal can only be executed if it is queued")
	ErrGovernorCannotCancel     = chain.Revert("GovernorBravo::cancel: cannot cancel executed proposal")
	ErrGovernorCancelNotAllowed = chain.Revert("GovernorBravo::cancel: proposer above threshold")
)

// GovernorConfig holds the Governor constructor parameters. Votes are fixed at deployment.
type GovernorConfig struct {
	Admin             common.Address
	Timelock          common.Address
	VotingDelay       uint64
	VotingPeriod      uint64
	ProposalThreshold *big.Int
	QuorumVotes       *big.Int
	Votes             map[common.Address]*big.Int
}

// GovernorProposal is a governance proposal as stored by the Governor.
type GovernorProposal struct {
	ID           *big.Int
	Proposer     common.Address
	Actions      types.Actions
	Description  string
	StartBlock   uint64
	EndBlock     uint64
	Eta          *big.Int
	ForVotes     *big.Int
	AgainstVotes *big.Int
	AbstainVotes *big.Int
	Canceled     bool
	Executed     bool
	Voted        map[common.Address]bool
}

func (p *GovernorProposal) clone() *GovernorProposal {
	c := *p
	c.Actions = slices.Clone(p.Actions)
	c.Eta = cloneBig(p.Eta)
	c.ForVotes = cloneBig(p.ForVotes)
	c.AgainstVotes = cloneBig(p.AgainstVotes)
	c.AbstainVotes = cloneBig(p.AbstainVotes)
	c.Voted = maps.Clone(p.Voted)

	return &c
}

var _ chain.Snapshotter = (*Governor)(nil)

// Governor is the mainnet governor: proposals are voted on for VotingPeriod blocks, queued in
// the Timelock once they succeed, and executed by anyone after the timelock delay.
type Governor struct {
	cfg       GovernorConfig
	count     uint64
	proposals map[uint64]*GovernorProposal
	methods   *chain.MethodSet
}

// NewGovernor deploys a governor with cfg.
func NewGovernor(cfg GovernorConfig) *Governor {
	cfg.ProposalThreshold = orZero(cfg.ProposalThreshold)
	cfg.QuorumVotes = orZero(cfg.QuorumVotes)
	cfg.Votes = maps.Clone(cfg.Votes)
	if cfg.Votes == nil {
		cfg.Votes = make(map[common.Address]*big.Int)
	}

	g := &Governor{cfg: cfg, proposals: make(map[uint64]*GovernorProposal)}
	g.methods = g.buildMethods()

	return g
}

func (g *Governor) buildMethods() *chain.MethodSet {
	uintView := func(v func() *big.Int) chain.Handler {
		return func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(v())
		}
	}

	return chain.NewMethodSet().
		Handle("admin()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(g.cfg.Admin)
		}).
		Handle("timelock()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(g.cfg.Timelock)
		}).
		Handle("votingDelay()", chain.Returns("uint256"), uintView(func() *big.Int {
			return new(big.Int).SetUint64(g.cfg.VotingDelay)
		})).
		Handle("votingPeriod()", chain.Returns("uint256"), uintView(func() *big.Int {
			return new(big.Int).SetUint64(g.cfg.VotingPeriod)
		})).
		Handle("proposalThreshold()", chain.Returns("uint256"), uintView(func() *big.Int {
			return new(big.Int).Set(g.cfg.ProposalThreshold)
		})).
		Handle("quorumVotes()", chain.Returns("uint256"), uintView(func() *big.Int {
			return new(big.Int).Set(g.cfg.QuorumVotes)
		})).
		Handle("proposalCount()", chain.Returns("uint256"), uintView(func() *big.Int {
			return new(big.Int).SetUint64(g.count)
		})).
		Handle("getVotes(address)", chain.Returns("uint256"), func(_ *chain.Env, args []any) ([]any, error) {
			return chain.Result(new(big.Int).Set(g.votesOf(args[0].(common.Address))))
		}).
		Handle("propose(address[],uint256[],string[],bytes[],string)", chain.Returns("uint256"), g.propose).
		Handle("castVote(uint256,uint8)", nil, g.castVote).
		Handle("queue(uint256)", nil, g.queue).
		HandlePayable("execute(uint256)", nil, g.execute).
		Handle("cancel(uint256)", nil, g.cancel).
		Handle("state(uint256)", chain.Returns("uint8"), func(env *chain.Env, args []any) ([]any, error) {
			s, err := g.state(env, args[0].(*big.Int))
			if err != nil {
				return nil, err
			}

			return chain.Result(uint8(s))
		}).
		Handle("proposalEta(uint256)", chain.Returns("uint256"), func(env *chain.Env, args []any) ([]any, error) {
			p, err := g.proposal(env, args[0].(*big.Int))
			if err != nil {
				return nil, err
			}

			return chain.Result(orZero(cloneBig(p.Eta)))
		}).
		Handle("getActions(uint256)", chain.Returns("address[]", "uint256[]", "string[]", "bytes[]"),
			func(env *chain.Env, args []any) ([]any, error) {
				p, err := g.proposal(env, args[0].(*big.Int))
				if err != nil {
					return nil, err
				}
				targets, values, signatures, calldatas := p.Actions.Split()

				return chain.Result(targets, values, signatures, calldatas)
			})
}

func (g *Governor) votesOf(addr common.Address) *big.Int {
	return orZero(g.cfg.Votes[addr])
}

func (g *Governor) propose(env *chain.Env, args []any) ([]any, error) {
	if g.votesOf(env.Sender).Cmp(g.cfg.ProposalThreshold) < 0 {
		return nil, ErrGovernorBelowThreshold
	}

	actions, err := types.JoinActions(
		args[0].([]common.Address), args[1].([]*big.Int), args[2].([]string), args[3].([][]byte),
	)
	if err != nil {
		return nil, ErrGovernorArityMismatch
	}
	if len(actions) == 0 {
		return nil, ErrGovernorNoActions
	}
	if len(actions) > GovernorMaxOperations {
		return nil, ErrGovernorTooManyActions
	}

	g.count++
	start := env.BlockNumber() + g.cfg.VotingDelay
	p := &GovernorProposal{
		ID:           new(big.Int).SetUint64(g.count),
		Proposer:     env.Sender,
		Actions:      actions,
		Description:  args[4].(string),
		StartBlock:   start,
		EndBlock:     start + g.cfg.VotingPeriod,
		ForVotes:     new(big.Int),
		AgainstVotes: new(big.Int),
		AbstainVotes: new(big.Int),
		Voted:        make(map[common.Address]bool),
	}
	g.proposals[g.count] = p

	targets, values, signatures, calldatas := actions.Split()
	env.Emit("ProposalCreated", chain.Fields{
		"id":          new(big.Int).Set(p.ID),
		"proposer":    env.Sender,
		"targets":     targets,
		"values":      values,
		"signatures":  signatures,
		"calldatas":   calldatas,
		"startBlock":  new(big.Int).SetUint64(p.StartBlock),
		"endBlock":    new(big.Int).SetUint64(p.EndBlock),
		"description": p.Description,
	})

	return chain.Result(new(big.Int).Set(p.ID))
}

func (g *Governor) castVote(env *chain.Env, args []any) ([]any, error) {
	id, support := args[0].(*big.Int), args[1].(uint8)
	state, err := g.state(env, id)
	if err != nil {
		return nil, err
	}
	if state != types.GovernorProposalActive {
		return nil, ErrGovernorVotingClosed
	}

	p := g.proposals[id.Uint64()]
	if p.Voted[env.Sender] {
		return nil, ErrGovernorAlreadyVoted
	}

	votes := g.votesOf(env.Sender)
	switch support {
	case VoteAgainst:
		p.AgainstVotes.Add(p.AgainstVotes, votes)
	case VoteFor:
		p.ForVotes.Add(p.ForVotes, votes)
	case VoteAbstain:
		p.AbstainVotes.Add(p.AbstainVotes, votes)
	default:
		return nil, ErrGovernorInvalidVote
	}
	p.Voted[env.Sender] = true
	env.Emit("VoteCast", chain.Fields{
		"voter": env.Sender, "proposalId": new(big.Int).Set(id), "support": support, "votes": new(big.Int).Set(votes),
	})

	return nil, nil
}

func (g *Governor) queue(env *chain.Env, args []any) ([]any, error) {
	id := args[0].(*big.Int)
	state, err := g.state(env, id)
	if err != nil {
		return nil, err
	}
	if state != types.GovernorProposalSucceeded {
		return nil, ErrGovernorNotSucceeded
	}

	delay, err := env.QueryUint(g.cfg.Timelock, "delay()")
	if err != nil {
		return nil, err
	}
	eta := new(big.Int).Add(env.BigNow(), delay)

	p := g.proposals[id.Uint64()]
	for _, a := range p.Actions {
		hash, err := TxHash(a.Target, a.CallValue(), a.Signature, a.Calldata, eta)
		if err != nil {
			return nil, err
		}
		res, err := env.Query(g.cfg.Timelock, "queuedTransactions(bytes32)", chain.Returns("bool"), hash)
		if err != nil {
			return nil, err
		}
		if res[0].(bool) {
			return nil, ErrGovernorDuplicateAction
		}
		if _, err := env.Invoke(g.cfg.Timelock, "queueTransaction(address,uint256,string,bytes,uint256)",
			a.Target, a.CallValue(), a.Signature, []byte(a.Calldata), eta); err != nil {
			return nil, err
		}
	}
	p.Eta = eta
	env.Emit("ProposalQueued", chain.Fields{"id": new(big.Int).Set(id), "eta": new(big.Int).Set(eta)})

	return nil, nil
}

func (g *Governor) execute(env *chain.Env, args []any) ([]any, error) {
	id := args[0].(*big.Int)
	state, err := g.state(env, id)
	if err != nil {
		return nil, err
	}
	if state != types.GovernorProposalQueued {
		return nil, ErrGovernorNotQueued
	}

	p := g.proposals[id.Uint64()]
	p.Executed = true
	for _, a := range p.Actions {
		if _, err := env.InvokeWithValue(g.cfg.Timelock, a.CallValue(), "executeTransaction(address,uint256,string,bytes,uint256)",
			a.Target, a.CallValue(), a.Signature, []byte(a.Calldata), p.Eta); err != nil {
			return nil, err
		}
	}
	env.Emit("ProposalExecuted", chain.Fields{"id": new(big.Int).Set(id)})

	return nil, nil
}

func (g *Governor) cancel(env *chain.Env, args []any) ([]any, error) {
	id := args[0].(*big.Int)
	state, err := g.state(env, id)
	if err != nil {
		return nil, err
	}
	if state == types.GovernorProposalExecuted {
		return nil, ErrGovernorCannotCancel
	}

	p := g.proposals[id.Uint64()]
	if env.Sender != p.Proposer && env.Sender != g.cfg.Admin &&
		g.votesOf(p.Proposer).Cmp(g.cfg.ProposalThreshold) >= 0 {
		return nil, ErrGovernorCancelNotAllowed
	}

	p.Canceled = true
	if p.Eta != nil {
		for _, a := range p.Actions {
			if _, err := env.Invoke(g.cfg.Timelock, "cancelTransaction(address,uint256,string,bytes,uint256)",
				a.Target, a.CallValue(), a.Signature, []byte(a.Calldata), p.Eta); err != nil {
				return nil, err
			}
		}
	}
	env.Emit("ProposalCanceled", chain.Fields{"id": new(big.Int).Set(id)})

	return nil, nil
}

func (g *Governor) proposal(_ *chain.Env, id *big.Int) (*GovernorProposal, error) {
	if id.Sign() <= 0 || !id.IsUint64() || id.Uint64() > g.count {
		return nil, ErrGovernorInvalidID
	}

	return g.proposals[id.Uint64()], nil
}

func (g *Governor) state(env *chain.Env, id *big.Int) (types.GovernorProposalState, error) {
	p, err := g.proposal(env, id)
	if err != nil {
		return 0, err
	}

	switch {
	case p.Canceled:
		return types.GovernorProposalCanceled, nil
	case env.BlockNumber() <= p.StartBlock:
		return types.GovernorProposalPending, nil
	case env.BlockNumber() <= p.EndBlock:
		return types.GovernorProposalActive, nil
	case p.ForVotes.Cmp(p.AgainstVotes) <= 0 || p.ForVotes.Cmp(g.cfg.QuorumVotes) < 0:
		return types.GovernorProposalDefeated, nil
	case p.Eta == nil:
		return types.GovernorProposalSucceeded, nil
	case p.Executed:
		return types.GovernorProposalExecuted, nil
	case env.BigNow().Cmp(new(big.Int).Add(p.Eta, types.GracePeriod.BigSecs())) >= 0:
		return types.GovernorProposalExpired, nil
	default:
		return types.GovernorProposalQueued, nil
	}
}

// Proposal returns a copy of proposal id, for inspection outside of a transaction.
func (g *Governor) Proposal(id uint64) (*GovernorProposal, bool) {
	p, ok := g.proposals[id]
	if !ok {
		return nil, false
	}

	return p.clone(), true
}

// Invoke implements chain.Contract.
func (g *Governor) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return g.methods.Dispatch(env, input)
}

// Snapshot implements chain.Snapshotter.
func (g *Governor) Snapshot() func() {
	count := g.count
	proposals := make(map[uint64]*GovernorProposal, len(g.proposals))
	for id, p := range g.proposals {
		proposals[id] = p.clone()
	}

	return func() {
		g.count = count
		g.proposals = proposals
	}
}
