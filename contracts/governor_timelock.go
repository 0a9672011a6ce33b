package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/internal/utils/abi"
)

var _ chain.Snapshotter = (*GovernorTimelock)(nil)

// GovernorTimelock is the simple governor timelock used as the protocol governor in isolated
// deployments: its admin executes batches of calls immediately, with no delay.
type GovernorTimelock struct {
	admin   common.Address
	methods *chain.MethodSet
}

// NewGovernorTimelock is the constructor(admin).
func NewGovernorTimelock(admin common.Address) *GovernorTimelock {
	t := &GovernorTimelock{admin: admin}
	t.methods = chain.NewMethodSet().
		Handle("admin()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(t.admin)
		}).
		Handle("setAdmin(address)", nil, func(env *chain.Env, args []any) ([]any, error) {
			if env.Sender != t.admin {
				return nil, ErrUnauthorized
			}
			old := t.admin
			t.admin = args[0].(common.Address)
			env.Emit("NewAdmin", chain.Fields{"oldAdmin": old, "newAdmin": t.admin})

			return nil, nil
		}).
		HandlePayable("executeTransaction(address,uint256,string,bytes)", chain.Returns("bytes"), t.executeTransaction).
		HandlePayable("executeTransactions(address[],uint256[],string[],bytes[])", nil, t.executeTransactions)

	return t
}

func (t *GovernorTimelock) executeTransaction(env *chain.Env, args []any) ([]any, error) {
	if env.Sender != t.admin {
		return nil, ErrUnauthorized
	}
	out, err := t.call(env, args[0].(common.Address), args[1].(*big.Int), args[2].(string), args[3].([]byte))
	if err != nil {
		return nil, err
	}

	return chain.Result(out)
}

func (t *GovernorTimelock) executeTransactions(env *chain.Env, args []any) ([]any, error) {
	if env.Sender != t.admin {
		return nil, ErrUnauthorized
	}

	targets := args[0].([]common.Address)
	values := args[1].([]*big.Int)
	signatures := args[2].([]string)
	calldatas := args[3].([][]byte)
	if len(targets) != len(values) || len(targets) != len(signatures) || len(targets) != len(calldatas) {
		return nil, chain.Revert("SimpleTimelock::executeTransactions: arity mismatch")
	}

	for i := range targets {
		if _, err := t.call(env, targets[i], values[i], signatures[i], calldatas[i]); err != nil {
			return nil, err
		}
	}

	return nil, nil
}

func (t *GovernorTimelock) call(env *chain.Env, target common.Address, value *big.Int, signature string, data []byte) ([]byte, error) {
	out, err := env.Call(target, value, abi.Calldata(signature, data))
	if err != nil {
		return nil, chain.RevertWith(ErrFailedToCall.Reason, err)
	}

	return out, nil
}

// Invoke implements chain.Contract.
func (t *GovernorTimelock) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return t.methods.Dispatch(env, input)
}

// Snapshot implements chain.Snapshotter.
func (t *GovernorTimelock) Snapshot() func() {
	admin := t.admin
	return func() { t.admin = admin }
}
