package contracts

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/chain"
)

var _ chain.Snapshotter = (*CometProxyAdmin)(nil)

// CometProxyAdmin is the admin of the Comet and configurator proxies. Its owner may upgrade
// any proxy it administers. The market admin may only deploy and upgrade a market from the
// configurator, which is how a market update reaches the market itself.
type CometProxyAdmin struct {
	owner                        common.Address
	marketAdmin                  common.Address
	marketAdminPauseGuardian     common.Address
	marketAdminPaused            bool
	marketAdminPermissionChecker common.Address
	methods                      *chain.MethodSet
}

// NewCometProxyAdmin is the constructor(owner).
func NewCometProxyAdmin(owner common.Address) *CometProxyAdmin {
	a := &CometProxyAdmin{owner: owner}
	a.methods = a.buildMethods()

	return a
}

func (a *CometProxyAdmin) buildMethods() *chain.MethodSet {
	ms := chain.NewMethodSet()

	views := map[string]*common.Address{
		"owner()":                        &a.owner,
		"marketAdmin()":                  &a.marketAdmin,
		"marketAdminPauseGuardian()":     &a.marketAdminPauseGuardian,
		"marketAdminPermissionChecker()": &a.marketAdminPermissionChecker,
	}
	for sig, field := range views {
		ms.Handle(sig, chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(*field)
		})
	}
	ms.Handle("marketAdminPaused()", chain.Returns("bool"), func(_ *chain.Env, _ []any) ([]any, error) {
		return chain.Result(a.marketAdminPaused)
	})

	ms.Handle("transferOwnership(address)", nil, a.onlyOwner(func(env *chain.Env, args []any) ([]any, error) {
		next := args[0].(common.Address)
		if next == (common.Address{}) {
			return nil, ErrNewOwnerZero
		}
		old := a.owner
		a.owner = next
		env.Emit("OwnershipTransferred", chain.Fields{"previousOwner": old, "newOwner": next})

		return nil, nil
	}))
	ms.Handle("renounceOwnership()", nil, a.onlyOwner(func(env *chain.Env, _ []any) ([]any, error) {
		old := a.owner
		a.owner = common.Address{}
		env.Emit("OwnershipTransferred", chain.Fields{"previousOwner": old, "newOwner": a.owner})

		return nil, nil
	}))

	ms.Handle("setMarketAdmin(address)", nil, a.onlyOwner(a.setAddress(&a.marketAdmin, "SetMarketAdmin", "oldAdmin", "newAdmin")))
	ms.Handle("setMarketAdminPauseGuardian(address)", nil, a.onlyOwner(
		a.setAddress(&a.marketAdminPauseGuardian, "SetMarketAdminPauseGuardian", "oldPauseGuardian", "newPauseGuardian")))
	ms.Handle("setMarketAdminPermissionChecker(address)", nil, a.onlyOwner(
		a.setAddress(&a.marketAdminPermissionChecker, "SetMarketAdminPermissionChecker",
			"oldMarketAdminPermissionChecker", "newMarketAdminPermissionChecker")))
	ms.Handle("pauseMarketAdmin()", nil, func(env *chain.Env, _ []any) ([]any, error) {
		if env.Sender != a.owner && env.Sender != a.marketAdminPauseGuardian {
			return nil, ErrUnauthorized
		}
		a.marketAdminPaused = true
		env.Emit("MarketAdminPaused", chain.Fields{"isMarketAdminPaused": true})

		return nil, nil
	})
	ms.Handle("unpauseMarketAdmin()", nil, a.onlyOwner(func(env *chain.Env, _ []any) ([]any, error) {
		a.marketAdminPaused = false
		env.Emit("MarketAdminPaused", chain.Fields{"isMarketAdminPaused": false})

		return nil, nil
	}))

	ms.Handle("getProxyAdmin(address)", chain.Returns("address"), func(env *chain.Env, args []any) ([]any, error) {
		admin, err := env.QueryAddress(args[0].(common.Address), "admin()")
		if err != nil {
			return nil, ErrUnknownProxyAdmin
		}

		return chain.Result(admin)
	})
	ms.Handle("getProxyImplementation(address)", chain.Returns("address"), func(env *chain.Env, args []any) ([]any, error) {
		impl, err := env.QueryAddress(args[0].(common.Address), "implementation()")
		if err != nil {
			return nil, ErrProxyNotAdmin
		}

		return chain.Result(impl)
	})
	ms.Handle("changeProxyAdmin(address,address)", nil, a.onlyOwner(func(env *chain.Env, args []any) ([]any, error) {
		_, err := env.Invoke(args[0].(common.Address), "changeAdmin(address)", args[1].(common.Address))
		return nil, err
	}))
	ms.Handle("upgrade(address,address)", nil, a.onlyOwner(func(env *chain.Env, args []any) ([]any, error) {
		_, err := env.Invoke(args[0].(common.Address), "upgradeTo(address)", args[1].(common.Address))
		return nil, err
	}))
	ms.Handle("deployAndUpgradeTo(address,address)", nil, a.deployAndUpgradeTo)

	return ms
}

func (a *CometProxyAdmin) onlyOwner(h chain.Handler) chain.Handler {
	return func(env *chain.Env, args []any) ([]any, error) {
		if env.Sender != a.owner {
			return nil, ErrNotOwner
		}

		return h(env, args)
	}
}

func (a *CometProxyAdmin) setAddress(field *common.Address, event, oldKey, newKey string) chain.Handler {
	return func(env *chain.Env, args []any) ([]any, error) {
		old := *field
		*field = args[0].(common.Address)
		env.Emit(event, chain.Fields{oldKey: old, newKey: *field})

		return nil, nil
	}
}

// authorizeMarketAdmin lets the owner through. Everyone else is rejected while the market
// admin is paused, then judged by the permission checker when one is set, or must be the
// market admin otherwise.
func (a *CometProxyAdmin) authorizeMarketAdmin(env *chain.Env) error {
	switch {
	case env.Sender == a.owner:
		return nil
	case a.marketAdminPaused:
		return ErrMarketAdminIsPaused
	case a.marketAdminPermissionChecker != (common.Address{}):
		_, err := env.Invoke(a.marketAdminPermissionChecker, "checkUpdatePermission(address)", env.Sender)
		return err
	case env.Sender != a.marketAdmin:
		return ErrUnauthorized
	default:
		return nil
	}
}

func (a *CometProxyAdmin) deployAndUpgradeTo(env *chain.Env, args []any) ([]any, error) {
	if err := a.authorizeMarketAdmin(env); err != nil {
		return nil, err
	}

	configurator, cometProxy := args[0].(common.Address), args[1].(common.Address)
	res, err := env.Query(configurator, "deploy(address)", chain.Returns("address"), cometProxy)
	if err != nil {
		return nil, err
	}
	if _, err := env.Invoke(cometProxy, "upgradeTo(address)", res[0].(common.Address)); err != nil {
		return nil, err
	}

	return nil, nil
}

// Invoke implements chain.Contract.
func (a *CometProxyAdmin) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return a.methods.Dispatch(env, input)
}

// Snapshot implements chain.Snapshotter.
func (a *CometProxyAdmin) Snapshot() func() {
	saved := *a

	return func() {
		a.owner = saved.owner
		a.marketAdmin = saved.marketAdmin
		a.marketAdminPauseGuardian = saved.marketAdminPauseGuardian
		a.marketAdminPaused = saved.marketAdminPaused
		a.marketAdminPermissionChecker = saved.marketAdminPermissionChecker
	}
}
