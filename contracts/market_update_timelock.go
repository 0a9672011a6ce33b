package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/types"
)

var (
	ErrTimelockUnauthorized = chain.Revert("Unauthorized: call must come from admin or marketAdmin")
	ErrTimelockNotAdmin     = chain.Revert("Timelock::setAdmin: Call must come from admin.")
)

var _ chain.Snapshotter = (*MarketUpdateTimelock)(nil)

// MarketUpdateTimelock delays market update transactions. Its admin is the protocol governor
// (the local governor timelock); transactions may be queued, canceled and executed by the
// admin or by the market update proposer.
type MarketUpdateTimelock struct {
	core     timelockCore
	admin    common.Address
	proposer common.Address
	methods  *chain.MethodSet
}

// NewMarketUpdateTimelock is the constructor(governor, delay).
func NewMarketUpdateTimelock(governor common.Address, delay types.Duration) (*MarketUpdateTimelock, error) {
	if governor == (common.Address{}) {
		return nil, ErrInvalidAddress
	}
	if delay.Duration > types.MaximumDelay.Duration {
		return nil, ErrDelayTooLarge
	}

	t := &MarketUpdateTimelock{
		core:  newTimelockCore(delay),
		admin: governor,
	}
	t.methods = t.buildMethods()

	return t, nil
}

func (t *MarketUpdateTimelock) buildMethods() *chain.MethodSet {
	ms := chain.NewMethodSet()
	t.core.register(ms, t.authorizeQueue)

	ms.Handle("admin()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
		return chain.Result(t.admin)
	})
	ms.Handle("governor()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
		return chain.Result(t.admin)
	})
	ms.Handle("marketUpdateProposer()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
		return chain.Result(t.proposer)
	})
	ms.Handle("setAdmin(address)", nil, func(env *chain.Env, args []any) ([]any, error) {
		if env.Sender != t.admin {
			return nil, ErrTimelockNotAdmin
		}
		old := t.admin
		t.admin = args[0].(common.Address)
		env.Emit("NewAdmin", chain.Fields{"oldAdmin": old, "newAdmin": t.admin})

		return nil, nil
	})

	setProposer := func(env *chain.Env, args []any) ([]any, error) {
		if env.Sender != t.admin {
			return nil, chain.Revert("MarketUpdateTimelock::setMarketUpdateProposer: Call must come from admin.")
		}
		old := t.proposer
		t.proposer = args[0].(common.Address)
		env.Emit("SetMarketUpdateProposer", chain.Fields{"oldMarketAdmin": old, "newMarketAdmin": t.proposer})

		return nil, nil
	}
	ms.Handle("setMarketUpdateProposer(address)", nil, setProposer)
	// The first deployments exposed the same setter as setMarketAdmin.
	ms.Handle("setMarketAdmin(address)", nil, setProposer)

	ms.Handle("setDelay(uint256)", nil, func(env *chain.Env, args []any) ([]any, error) {
		if env.Sender != t.admin {
			return nil, chain.Revert("MarketUpdateTimelock::setDelay: Call must come from admin.")
		}

		return nil, t.core.setDelay(env, args[0].(*big.Int))
	})

	return ms
}

func (t *MarketUpdateTimelock) authorizeQueue(env *chain.Env, _ string) error {
	if env.Sender != t.admin && env.Sender != t.proposer {
		return ErrTimelockUnauthorized
	}

	return nil
}

// Invoke implements chain.Contract.
func (t *MarketUpdateTimelock) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return t.methods.Dispatch(env, input)
}

// Snapshot implements chain.Snapshotter.
func (t *MarketUpdateTimelock) Snapshot() func() {
	restoreCore := t.core.snapshot()
	admin, proposer := t.admin, t.proposer

	return func() {
		restoreCore()
		t.admin, t.proposer = admin, proposer
	}
}
