package contracts

import (
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/types"
)

var (
	ErrProposalArityMismatch  = chain.Revert("MarketUpdateProposer::propose: proposal function information arity mismatch")
	ErrProposalNoActions      = chain.Revert("MarketUpdateProposer::propose: must provide actions")
	ErrProposalTooManyActions = chain.Revert("MarketUpdateProposer::propose: too many actions")
	ErrProposalDuplicate      = chain.Revert("MarketUpdateProposer::propose: identical proposal action already queued at eta")
	ErrProposalInvalidID      = chain.Revert("MarketUpdateProposer::state: invalid proposal id")
	ErrProposalNotQueued      = chain.Revert("MarketUpdateProposer::execute: proposal can only be executed if it is queued")
	ErrProposalExecuted       = chain.Revert("MarketUpdateProposer::cancel: cannot cancel executed proposal")
)

// MarketProposal is a market update proposal as stored by the proposer.
type MarketProposal struct {
	ID          *big.Int
	Proposer    common.Address
	Actions     types.Actions
	Description string
	Eta         *big.Int
	Canceled    bool
	Executed    bool
}

func (p *MarketProposal) clone() *MarketProposal {
	c := *p
	c.Actions = slices.Clone(p.Actions)

	return &c
}

var _ chain.Snapshotter = (*MarketUpdateProposer)(nil)

// MarketUpdateProposer lets the market admin propose market parameter changes that go through
// the MarketUpdateTimelock instead of a full governance vote. The governor may replace any role
// and, with the proposal guardian, may cancel proposals.
type MarketUpdateProposer struct {
	governor         common.Address
	marketAdmin      common.Address
	proposalGuardian common.Address
	timelock         common.Address
	proposalCount    uint64
	proposals        map[uint64]*MarketProposal
	methods          *chain.MethodSet
}

// NewMarketUpdateProposer is the constructor(governor, marketAdmin, proposalGuardian, timelock).
func NewMarketUpdateProposer(governor, marketAdmin, proposalGuardian, timelock common.Address) (*MarketUpdateProposer, error) {
	for _, a := range []common.Address{governor, marketAdmin, proposalGuardian, timelock} {
		if a == (common.Address{}) {
			return nil, ErrInvalidAddress
		}
	}

	p := &MarketUpdateProposer{
		governor:         governor,
		marketAdmin:      marketAdmin,
		proposalGuardian: proposalGuardian,
		timelock:         timelock,
		proposals:        make(map[uint64]*MarketProposal),
	}
	p.methods = p.buildMethods()

	return p, nil
}

func (p *MarketUpdateProposer) buildMethods() *chain.MethodSet {
	ms := chain.NewMethodSet().
		Handle("propose(address[],uint256[],string[],bytes[],string)", chain.Returns("uint256"), p.propose).
		Handle("execute(uint256)", nil, p.execute).
		Handle("cancel(uint256)", nil, p.cancel).
		Handle("state(uint256)", chain.Returns("uint8"), func(env *chain.Env, args []any) ([]any, error) {
			s, err := p.state(env, args[0].(*big.Int))
			if err != nil {
				return nil, err
			}

			return chain.Result(uint8(s))
		}).
		Handle("getProposal(uint256)",
			chain.Returns("uint256", "address", "address[]", "uint256[]", "string[]", "bytes[]", "string", "uint256", "bool", "bool"),
			p.getProposal).
		Handle("proposalCount()", chain.Returns("uint256"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(new(big.Int).SetUint64(p.proposalCount))
		}).
		Handle("PROPOSAL_MAX_OPERATIONS()", chain.Returns("uint256"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(big.NewInt(types.MaxProposalActions))
		})

	views := map[string]*common.Address{
		"governor()":         &p.governor,
		"marketAdmin()":      &p.marketAdmin,
		"proposalGuardian()": &p.proposalGuardian,
		"pauseGuardian()":    &p.proposalGuardian,
		"timelock()":         &p.timelock,
	}
	for sig, field := range views {
		ms.Handle(sig, chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(*field)
		})
	}

	ms.Handle("setGovernor(address)", nil, p.governorSetter(&p.governor, "SetGovernor", "oldGovernor", "newGovernor"))
	ms.Handle("setMarketAdmin(address)", nil, p.governorSetter(&p.marketAdmin, "SetMarketAdmin", "oldMarketAdmin", "newMarketAdmin"))
	setGuardian := p.governorSetter(&p.proposalGuardian, "SetProposalGuardian", "oldProposalGuardian", "newProposalGuardian")
	ms.Handle("setProposalGuardian(address)", nil, setGuardian)
	ms.Handle("setPauseGuardian(address)", nil, setGuardian)

	return ms
}

func (p *MarketUpdateProposer) governorSetter(field *common.Address, event, oldKey, newKey string) chain.Handler {
	return func(env *chain.Env, args []any) ([]any, error) {
		if env.Sender != p.governor {
			return nil, ErrUnauthorized
		}
		next := args[0].(common.Address)
		if next == (common.Address{}) {
			return nil, ErrInvalidAddress
		}
		old := *field
		*field = next
		env.Emit(event, chain.Fields{oldKey: old, newKey: next})

		return nil, nil
	}
}

func (p *MarketUpdateProposer) propose(env *chain.Env, args []any) ([]any, error) {
	if env.Sender != p.marketAdmin {
		return nil, ErrUnauthorized
	}

	actions, err := types.JoinActions(
		args[0].([]common.Address), args[1].([]*big.Int), args[2].([]string), args[3].([][]byte),
	)
	if err != nil {
		return nil, ErrProposalArityMismatch
	}
	if len(actions) == 0 {
		return nil, ErrProposalNoActions
	}
	if len(actions) > types.MaxProposalActions {
		return nil, ErrProposalTooManyActions
	}

	delay, err := env.QueryUint(p.timelock, "delay()")
	if err != nil {
		return nil, err
	}
	eta := new(big.Int).Add(env.BigNow(), delay)

	for _, a := range actions {
		hash, err := TxHash(a.Target, a.CallValue(), a.Signature, a.Calldata, eta)
		if err != nil {
			return nil, err
		}
		res, err := env.Query(p.timelock, "queuedTransactions(bytes32)", chain.Returns("bool"), hash)
		if err != nil {
			return nil, err
		}
		if res[0].(bool) {
			return nil, ErrProposalDuplicate
		}
		if _, err := env.Invoke(p.timelock, "queueTransaction(address,uint256,string,bytes,uint256)",
			a.Target, a.CallValue(), a.Signature, []byte(a.Calldata), eta); err != nil {
			return nil, err
		}
	}

	p.proposalCount++
	id := new(big.Int).SetUint64(p.proposalCount)
	description := args[4].(string)
	p.proposals[p.proposalCount] = &MarketProposal{
		ID:          id,
		Proposer:    env.Sender,
		Actions:     actions,
		Description: description,
		Eta:         eta,
	}

	targets, values, signatures, calldatas := actions.Split()
	env.Emit("MarketUpdateProposalCreated", chain.Fields{
		"id":          id,
		"proposer":    env.Sender,
		"targets":     targets,
		"values":      values,
		"signatures":  signatures,
		"calldatas":   calldatas,
		"description": description,
		"eta":         eta,
	})

	return chain.Result(id)
}

func (p *MarketUpdateProposer) execute(env *chain.Env, args []any) ([]any, error) {
	if env.Sender != p.marketAdmin {
		return nil, ErrUnauthorized
	}

	id := args[0].(*big.Int)
	state, err := p.state(env, id)
	if err != nil {
		return nil, err
	}
	if state != types.ProposalStateQueued {
		return nil, ErrProposalNotQueued
	}

	proposal := p.proposals[id.Uint64()]
	proposal.Executed = true
	for _, a := range proposal.Actions {
		if _, err := env.InvokeWithValue(p.timelock, a.CallValue(), "executeTransaction(address,uint256,string,bytes,uint256)",
			a.Target, a.CallValue(), a.Signature, []byte(a.Calldata), proposal.Eta); err != nil {
			return nil, err
		}
	}
	env.Emit("MarketUpdateProposalExecuted", chain.Fields{"id": new(big.Int).Set(id)})

	return nil, nil
}

func (p *MarketUpdateProposer) cancel(env *chain.Env, args []any) ([]any, error) {
	if env.Sender != p.marketAdmin && env.Sender != p.governor && env.Sender != p.proposalGuardian {
		return nil, ErrUnauthorized
	}

	id := args[0].(*big.Int)
	state, err := p.state(env, id)
	if err != nil {
		return nil, err
	}
	if state == types.ProposalStateExecuted {
		return nil, ErrProposalExecuted
	}

	proposal := p.proposals[id.Uint64()]
	proposal.Canceled = true
	for _, a := range proposal.Actions {
		if _, err := env.Invoke(p.timelock, "cancelTransaction(address,uint256,string,bytes,uint256)",
			a.Target, a.CallValue(), a.Signature, []byte(a.Calldata), proposal.Eta); err != nil {
			return nil, err
		}
	}
	env.Emit("MarketUpdateProposalCancelled", chain.Fields{"id": new(big.Int).Set(id)})

	return nil, nil
}

func (p *MarketUpdateProposer) state(env *chain.Env, id *big.Int) (types.ProposalState, error) {
	if id.Sign() <= 0 || !id.IsUint64() || id.Uint64() > p.proposalCount {
		return 0, ErrProposalInvalidID
	}

	proposal := p.proposals[id.Uint64()]
	switch {
	case proposal.Canceled:
		return types.ProposalStateCanceled, nil
	case proposal.Executed:
		return types.ProposalStateExecuted, nil
	case env.BigNow().Cmp(new(big.Int).Add(proposal.Eta, types.GracePeriod.BigSecs())) > 0:
		return types.ProposalStateExpired, nil
	default:
		return types.ProposalStateQueued, nil
	}
}

func (p *MarketUpdateProposer) getProposal(env *chain.Env, args []any) ([]any, error) {
	id := args[0].(*big.Int)
	if _, err := p.state(env, id); err != nil {
		return nil, err
	}

	proposal := p.proposals[id.Uint64()]
	targets, values, signatures, calldatas := proposal.Actions.Split()

	return chain.Result(
		proposal.ID, proposal.Proposer, targets, values, signatures, calldatas,
		proposal.Description, proposal.Eta, proposal.Canceled, proposal.Executed,
	)
}

// Invoke implements chain.Contract.
func (p *MarketUpdateProposer) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return p.methods.Dispatch(env, input)
}

// Snapshot implements chain.Snapshotter.
func (p *MarketUpdateProposer) Snapshot() func() {
	saved := *p
	proposals := make(map[uint64]*MarketProposal, len(p.proposals))
	for id, proposal := range p.proposals {
		proposals[id] = proposal.clone()
	}

	return func() {
		p.governor = saved.governor
		p.marketAdmin = saved.marketAdmin
		p.proposalGuardian = saved.proposalGuardian
		p.timelock = saved.timelock
		p.proposalCount = saved.proposalCount
		p.proposals = proposals
	}
}
