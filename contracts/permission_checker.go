package contracts

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/chain"
)

var _ chain.Snapshotter = (*MarketAdminPermissionChecker)(nil)

// MarketAdminPermissionChecker decides whether an address may act as the market admin. The
// configurator and the proxy admin delegate their market admin checks to it once it is set.
type MarketAdminPermissionChecker struct {
	owner         common.Address
	marketAdmin   common.Address
	pauseGuardian common.Address
	paused        bool
	methods       *chain.MethodSet
}

// NewMarketAdminPermissionChecker is the constructor(owner, marketAdmin, marketAdminPauseGuardian).
func NewMarketAdminPermissionChecker(owner, marketAdmin, pauseGuardian common.Address) *MarketAdminPermissionChecker {
	p := &MarketAdminPermissionChecker{owner: owner, marketAdmin: marketAdmin, pauseGuardian: pauseGuardian}
	p.methods = chain.NewMethodSet().
		Handle("owner()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(p.owner)
		}).
		Handle("marketAdmin()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(p.marketAdmin)
		}).
		Handle("marketAdminPauseGuardian()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(p.pauseGuardian)
		}).
		Handle("marketAdminPaused()", chain.Returns("bool"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(p.paused)
		}).
		Handle("transferOwnership(address)", nil, p.onlyOwner(func(env *chain.Env, args []any) ([]any, error) {
			next := args[0].(common.Address)
			if next == (common.Address{}) {
				return nil, ErrNewOwnerZero
			}
			old := p.owner
			p.owner = next
			env.Emit("OwnershipTransferred", chain.Fields{"previousOwner": old, "newOwner": next})

			return nil, nil
		})).
		Handle("setMarketAdmin(address)", nil, p.onlyOwner(func(env *chain.Env, args []any) ([]any, error) {
			old := p.marketAdmin
			p.marketAdmin = args[0].(common.Address)
			env.Emit("SetMarketAdmin", chain.Fields{"oldAdmin": old, "newAdmin": p.marketAdmin})

			return nil, nil
		})).
		Handle("setMarketAdminPauseGuardian(address)", nil, p.onlyOwner(func(env *chain.Env, args []any) ([]any, error) {
			old := p.pauseGuardian
			p.pauseGuardian = args[0].(common.Address)
			env.Emit("SetMarketAdminPauseGuardian", chain.Fields{"oldPauseGuardian": old, "newPauseGuardian": p.pauseGuardian})

			return nil, nil
		})).
		Handle("pauseMarketAdmin()", nil, func(env *chain.Env, _ []any) ([]any, error) {
			if env.Sender != p.owner && env.Sender != p.pauseGuardian {
				return nil, ErrUnauthorized
			}
			p.paused = true
			env.Emit("MarketAdminPaused", chain.Fields{"caller": env.Sender, "isMarketAdminPaused": true})

			return nil, nil
		}).
		Handle("unpauseMarketAdmin()", nil, p.onlyOwner(func(env *chain.Env, _ []any) ([]any, error) {
			p.paused = false
			env.Emit("MarketAdminPaused", chain.Fields{"caller": env.Sender, "isMarketAdminPaused": false})

			return nil, nil
		})).
		Handle("checkUpdatePermission(address)", nil, func(_ *chain.Env, args []any) ([]any, error) {
			return nil, p.checkUpdatePermission(args[0].(common.Address))
		})

	return p
}

func (p *MarketAdminPermissionChecker) onlyOwner(h chain.Handler) chain.Handler {
	return func(env *chain.Env, args []any) ([]any, error) {
		if env.Sender != p.owner {
			return nil, ErrNotOwner
		}

		return h(env, args)
	}
}

func (p *MarketAdminPermissionChecker) checkUpdatePermission(caller common.Address) error {
	if caller != p.marketAdmin {
		return ErrUnauthorized
	}
	if p.paused {
		return ErrMarketAdminIsPaused
	}

	return nil
}

// Invoke implements chain.Contract.
func (p *MarketAdminPermissionChecker) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return p.methods.Dispatch(env, input)
}

// Snapshot implements chain.Snapshotter.
func (p *MarketAdminPermissionChecker) Snapshot() func() {
	owner, admin, guardian, paused := p.owner, p.marketAdmin, p.pauseGuardian, p.paused

	return func() {
		p.owner, p.marketAdmin, p.pauseGuardian, p.paused = owner, admin, guardian, paused
	}
}
