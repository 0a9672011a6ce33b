package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/bridge"
	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/types"
)

// Custom errors of the bridge receiver.
var (
	ErrBadData               = chain.NewCustomError("BadData")
	ErrInvalidProposalID     = chain.NewCustomError("InvalidProposalId")
	ErrProposalNotExecutable = chain.NewCustomError("ProposalNotExecutable")
)

// BridgeProposal is a proposal received from mainnet governance.
type BridgeProposal struct {
	ID       *big.Int
	Actions  types.Actions
	Eta      *big.Int
	Executed bool
}

var _ chain.Snapshotter = (*BridgeReceiver)(nil)

// BridgeReceiver accepts governance proposals sent by the mainnet timelock over a bridge and
// queues them into the local timelock, whose admin it is.
//
// The way messages arrive depends on the bridge:
//   - Arbitrum: the retryable ticket calls the receiver with the raw payload, from the aliased
//     mainnet timelock.
//   - Polygon: FxChild calls processMessageFromRoot with the mainnet sender.
//   - Scroll: the L2 messenger calls the receiver with the raw payload and exposes the mainnet
//     sender as xDomainMessageSender.
type BridgeReceiver struct {
	kind          bridge.Kind
	govTimelock   common.Address
	localTimelock common.Address
	endpoint      common.Address
	count         uint64
	proposals     map[uint64]*BridgeProposal
	methods       *chain.MethodSet
}

// NewBridgeReceiver returns a receiver for messages from govTimelock. endpoint is FxChild on
// Polygon and the L2 messenger on Scroll. It is unused on Arbitrum.
func NewBridgeReceiver(kind bridge.Kind, govTimelock, localTimelock, endpoint common.Address) *BridgeReceiver {
	r := &BridgeReceiver{
		kind:          kind,
		govTimelock:   govTimelock,
		localTimelock: localTimelock,
		endpoint:      endpoint,
		proposals:     make(map[uint64]*BridgeProposal),
	}
	r.methods = chain.NewMethodSet().
		Handle("govTimelock()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(r.govTimelock)
		}).
		Handle("localTimelock()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(r.localTimelock)
		}).
		Handle("proposalCount()", chain.Returns("uint256"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(new(big.Int).SetUint64(r.count))
		}).
		Handle("state(uint256)", chain.Returns("uint8"), func(env *chain.Env, args []any) ([]any, error) {
			s, err := r.state(env, args[0].(*big.Int))
			if err != nil {
				return nil, err
			}

			return chain.Result(uint8(s))
		}).
		Handle("executeProposal(uint256)", nil, r.executeProposal).
		Handle("processMessageFromRoot(uint256,address,bytes)", nil, func(env *chain.Env, args []any) ([]any, error) {
			if r.kind != bridge.KindPolygon || env.Sender != r.endpoint {
				return nil, ErrUnauthorized
			}

			return nil, r.processMessage(env, args[1].(common.Address), args[2].([]byte))
		})

	return r
}

func (r *BridgeReceiver) fallback(env *chain.Env, data []byte) error {
	switch r.kind {
	case bridge.KindArbitrum:
		return r.processMessage(env, bridge.UndoL1ToL2Alias(env.Sender), data)
	case bridge.KindScroll:
		if env.Sender != r.endpoint {
			return ErrUnauthorized
		}
		sender, err := env.QueryAddress(r.endpoint, "xDomainMessageSender()")
		if err != nil {
			return err
		}

		return r.processMessage(env, sender, data)
	default:
		return chain.ErrUnknownSelector
	}
}

func (r *BridgeReceiver) processMessage(env *chain.Env, messageSender common.Address, data []byte) error {
	if messageSender != r.govTimelock {
		return ErrUnauthorized
	}

	actions, err := bridge.DecodeProposal(data)
	if err != nil || len(actions) == 0 {
		return ErrBadData
	}

	delay, err := env.QueryUint(r.localTimelock, "delay()")
	if err != nil {
		return err
	}
	eta := new(big.Int).Add(env.BigNow(), delay)

	for _, a := range actions {
		if _, err := env.Invoke(r.localTimelock, "queueTransaction(address,uint256,string,bytes,uint256)",
			a.Target, a.CallValue(), a.Signature, []byte(a.Calldata), eta); err != nil {
			return err
		}
	}

	r.count++
	id := new(big.Int).SetUint64(r.count)
	r.proposals[r.count] = &BridgeProposal{ID: id, Actions: actions, Eta: eta}

	targets, values, signatures, calldatas := actions.Split()
	env.Emit("ProposalCreated", chain.Fields{
		"rootMessageSender": messageSender,
		"id":                new(big.Int).Set(id),
		"targets":           targets,
		"values":            values,
		"signatures":        signatures,
		"calldatas":         calldatas,
		"eta":               new(big.Int).Set(eta),
	})

	return nil
}

func (r *BridgeReceiver) executeProposal(env *chain.Env, args []any) ([]any, error) {
	id := args[0].(*big.Int)
	state, err := r.state(env, id)
	if err != nil {
		return nil, err
	}
	if state != types.BridgeProposalQueued {
		return nil, ErrProposalNotExecutable
	}

	p := r.proposals[id.Uint64()]
	p.Executed = true
	for _, a := range p.Actions {
		if _, err := env.Invoke(r.localTimelock, "executeTransaction(address,uint256,string,bytes,uint256)",
			a.Target, a.CallValue(), a.Signature, []byte(a.Calldata), p.Eta); err != nil {
			return nil, err
		}
	}
	env.Emit("ProposalExecuted", chain.Fields{"id": new(big.Int).Set(id)})

	return nil, nil
}

func (r *BridgeReceiver) state(env *chain.Env, id *big.Int) (types.BridgeProposalState, error) {
	if id.Sign() <= 0 || !id.IsUint64() || id.Uint64() > r.count {
		return 0, ErrInvalidProposalID
	}

	p := r.proposals[id.Uint64()]
	switch {
	case p.Executed:
		return types.BridgeProposalExecuted, nil
	case env.BigNow().Cmp(new(big.Int).Add(p.Eta, types.GracePeriod.BigSecs())) > 0:
		return types.BridgeProposalExpired, nil
	default:
		return types.BridgeProposalQueued, nil
	}
}

// Proposal returns a copy of the received proposal id.
func (r *BridgeReceiver) Proposal(id uint64) (BridgeProposal, bool) {
	p, ok := r.proposals[id]
	if !ok {
		return BridgeProposal{}, false
	}

	return *p.clone(), true
}

func (p *BridgeProposal) clone() *BridgeProposal {
	c := *p
	c.Actions = append(types.Actions(nil), p.Actions...)

	return &c
}

// Invoke implements chain.Contract.
func (r *BridgeReceiver) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	out, err := r.methods.Dispatch(env, input)
	if err == chain.ErrUnknownSelector { //nolint:errorlint // sentinel returned unwrapped by Dispatch
		return nil, r.fallback(env, input)
	}

	return out, err
}

// Snapshot implements chain.Snapshotter.
func (r *BridgeReceiver) Snapshot() func() {
	count := r.count
	proposals := make(map[uint64]*BridgeProposal, len(r.proposals))
	for id, p := range r.proposals {
		proposals[id] = p.clone()
	}

	return func() {
		r.count = count
		r.proposals = proposals
	}
}
