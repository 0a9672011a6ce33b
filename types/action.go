package types

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/dodao/comet-market-updates/internal/utils/abi"
)

// MaxProposalActions is the largest number of actions a single market update proposal may carry.
const MaxProposalActions = 20

var (
	// ErrActionsArityMismatch is returned when the parallel action lists have different lengths.
	ErrActionsArityMismatch = errors.New("proposal function information arity mismatch")

	// ErrNoActions is returned when a proposal carries no actions.
	ErrNoActions = errors.New("must provide actions")

	// ErrTooManyActions is returned when a proposal carries more than MaxProposalActions actions.
	ErrTooManyActions = errors.New("too many actions")
)

// Action is a single call inside a governance proposal. Calldata holds the ABI encoded
// arguments without the selector, the way Compound governance carries them.
type Action struct {
	Target    common.Address `json:"target" validate:"required"`
	Value     *big.Int       `json:"value,omitempty"`
	Signature string         `json:"signature"`
	Calldata  hexutil.Bytes  `json:"calldata"`
}

// NewAction ABI encodes args against signature and returns the resulting action with zero value.
func NewAction(target common.Address, signature string, args ...any) (Action, error) {
	data, err := abi.EncodeArgs(signature, args...)
	if err != nil {
		return Action{}, fmt.Errorf("encode %s: %w", signature, err)
	}

	return Action{Target: target, Value: new(big.Int), Signature: signature, Calldata: data}, nil
}

// WithValue returns a copy of the action that forwards value wei.
func (a Action) WithValue(value *big.Int) Action {
	a.Value = new(big.Int).Set(value)
	return a
}

// Input returns the full calldata sent to Target: selector(Signature) ++ Calldata, or Calldata
// alone when Signature is empty.
func (a Action) Input() []byte {
	return abi.Calldata(a.Signature, a.Calldata)
}

// CallValue returns Value, treating nil as zero.
func (a Action) CallValue() *big.Int {
	if a.Value == nil {
		return new(big.Int)
	}

	return a.Value
}

// Actions is an ordered list of proposal actions.
type Actions []Action

// Split returns the parallel target, value, signature and calldata lists expected by the
// governor and market update proposer entry points.
func (as Actions) Split() ([]common.Address, []*big.Int, []string, [][]byte) {
	targets := make([]common.Address, 0, len(as))
	values := make([]*big.Int, 0, len(as))
	signatures := make([]string, 0, len(as))
	calldatas := make([][]byte, 0, len(as))
	for _, a := range as {
		targets = append(targets, a.Target)
		values = append(values, a.CallValue())
		signatures = append(signatures, a.Signature)
		calldatas = append(calldatas, a.Calldata)
	}

	return targets, values, signatures, calldatas
}

// JoinActions zips parallel lists into actions, failing when their lengths differ.
func JoinActions(targets []common.Address, values []*big.Int, signatures []string, calldatas [][]byte) (Actions, error) {
	if len(targets) != len(values) || len(targets) != len(signatures) || len(targets) != len(calldatas) {
		return nil, ErrActionsArityMismatch
	}

	out := make(Actions, 0, len(targets))
	for i := range targets {
		out = append(out, Action{
			Target:    targets[i],
			Value:     values[i],
			Signature: signatures[i],
			Calldata:  calldatas[i],
		})
	}

	return out, nil
}

// ValidateShape checks the action count bounds shared by every proposal path.
func (as Actions) ValidateShape() error {
	if len(as) == 0 {
		return ErrNoActions
	}
	if len(as) > MaxProposalActions {
		return ErrTooManyActions
	}

	return nil
}
