package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/types"
)

var _ chain.Snapshotter = (*Timelock)(nil)

// Timelock is the Compound Timelock. On mainnet its admin is the Governor; on an L2 it is the
// local timelock whose admin is the bridge receiver. It is the governor of every market
// contract on its chain.
type Timelock struct {
	core         timelockCore
	admin        common.Address
	pendingAdmin common.Address
	methods      *chain.MethodSet
}

// NewTimelock is the constructor(admin, delay).
func NewTimelock(admin common.Address, delay types.Duration) *Timelock {
	t := &Timelock{core: newTimelockCore(delay), admin: admin}
	t.methods = t.buildMethods()

	return t
}

// SetAdmin initialises the admin before first use. Deployment scripts create the timelock
// before the contract that will administer it exists.
func (t *Timelock) SetAdmin(admin common.Address) {
	t.admin = admin
}

func (t *Timelock) buildMethods() *chain.MethodSet {
	ms := chain.NewMethodSet()
	t.core.register(ms, func(env *chain.Env, op string) error {
		if env.Sender != t.admin {
			return chain.Revert("Timelock::" + op + ": Call must come from admin.")
		}

		return nil
	})

	ms.Handle("admin()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
		return chain.Result(t.admin)
	})
	ms.Handle("pendingAdmin()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
		return chain.Result(t.pendingAdmin)
	})
	ms.Handle("setDelay(uint256)", nil, func(env *chain.Env, args []any) ([]any, error) {
		if env.Sender != env.Self {
			return nil, chain.Revert("Timelock::setDelay: Call must come from Timelock.")
		}

		return nil, t.core.setDelay(env, args[0].(*big.Int))
	})
	ms.Handle("setPendingAdmin(address)", nil, func(env *chain.Env, args []any) ([]any, error) {
		if env.Sender != env.Self {
			return nil, chain.Revert("Timelock::setPendingAdmin: Call must come from Timelock.")
		}
		t.pendingAdmin = args[0].(common.Address)
		env.Emit("NewPendingAdmin", chain.Fields{"newPendingAdmin": t.pendingAdmin})

		return nil, nil
	})
	ms.Handle("acceptAdmin()", nil, func(env *chain.Env, _ []any) ([]any, error) {
		if env.Sender != t.pendingAdmin {
			return nil, chain.Revert("Timelock::acceptAdmin: Call must come from pendingAdmin.")
		}
		t.admin = env.Sender
		t.pendingAdmin = common.Address{}
		env.Emit("NewAdmin", chain.Fields{"newAdmin": t.admin})

		return nil, nil
	})

	return ms
}

// Invoke implements chain.Contract.
func (t *Timelock) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return t.methods.Dispatch(env, input)
}

// Snapshot implements chain.Snapshotter.
func (t *Timelock) Snapshot() func() {
	restoreCore := t.core.snapshot()
	admin, pending := t.admin, t.pendingAdmin

	return func() {
		restoreCore()
		t.admin, t.pendingAdmin = admin, pending
	}
}
