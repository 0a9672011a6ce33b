package contracts

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/chain"
)

// Storage is the state a proxy keeps on behalf of its implementation.
type Storage interface {
	Clone() Storage
}

// Logic is an implementation contract. It runs against the storage of the proxy delegating to
// it, with env still describing the proxy frame (msg.sender is the proxy's caller).
type Logic interface {
	chain.Contract
	Delegate(env *chain.Env, storage Storage, input []byte) ([]byte, error)
}

var _ chain.Snapshotter = (*TransparentUpgradeableProxy)(nil)

// TransparentUpgradeableProxy keeps the storage of an upgradeable contract and delegates every
// call made by anyone but its admin to the current implementation.
type TransparentUpgradeableProxy struct {
	adminFallback  bool
	admin          common.Address
	implementation common.Address
	storage        Storage
	methods        *chain.MethodSet
}

// NewTransparentUpgradeableProxy is the constructor(logic, admin). storage is the initial
// implementation state and may be nil for stateless implementations.
func NewTransparentUpgradeableProxy(logic, admin common.Address, storage Storage) *TransparentUpgradeableProxy {
	p := &TransparentUpgradeableProxy{admin: admin, implementation: logic, storage: storage}
	p.methods = chain.NewMethodSet().
		Handle("admin()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(p.admin)
		}).
		Handle("implementation()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(p.implementation)
		}).
		Handle("changeAdmin(address)", nil, func(env *chain.Env, args []any) ([]any, error) {
			next := args[0].(common.Address)
			if next == (common.Address{}) {
				return nil, chain.Revert("ERC1967: new admin is the zero address")
			}
			env.Emit("AdminChanged", chain.Fields{"previousAdmin": p.admin, "newAdmin": next})
			p.admin = next

			return nil, nil
		}).
		Handle("upgradeTo(address)", nil, func(env *chain.Env, args []any) ([]any, error) {
			return nil, p.upgradeTo(env, args[0].(common.Address))
		})

	return p
}

// NewConfiguratorProxy is a TransparentUpgradeableProxy whose admin may also call the
// implementation. The proxy admin has to call configurator deploy when it deploys and
// upgrades a market in one transaction.
func NewConfiguratorProxy(logic, admin common.Address, storage *ConfiguratorStorage) *TransparentUpgradeableProxy {
	p := NewTransparentUpgradeableProxy(logic, admin, storage)
	p.adminFallback = true

	return p
}

// Admin returns the proxy admin.
func (p *TransparentUpgradeableProxy) Admin() common.Address {
	return p.admin
}

// Implementation returns the current implementation address.
func (p *TransparentUpgradeableProxy) Implementation() common.Address {
	return p.implementation
}

// Storage returns the live implementation state.
func (p *TransparentUpgradeableProxy) Storage() Storage {
	return p.storage
}

func (p *TransparentUpgradeableProxy) upgradeTo(env *chain.Env, impl common.Address) error {
	code, ok := env.Contract(impl)
	if !ok {
		return ErrNotContract
	}
	if _, ok := code.(Logic); !ok {
		return ErrNotLogic
	}
	p.implementation = impl
	env.Emit("Upgraded", chain.Fields{"implementation": impl})

	return nil
}

// Invoke implements chain.Contract.
func (p *TransparentUpgradeableProxy) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	if env.Sender == p.admin {
		out, err := p.methods.Dispatch(env, input)
		if err != chain.ErrUnknownSelector { //nolint:errorlint // sentinel returned unwrapped by Dispatch
			return out, err
		}
		if !p.adminFallback {
			return nil, ErrAdminFallback
		}
	}

	return p.delegate(env, input)
}

func (p *TransparentUpgradeableProxy) delegate(env *chain.Env, input []byte) ([]byte, error) {
	code, ok := env.Contract(p.implementation)
	if !ok {
		return nil, nil
	}
	logic, ok := code.(Logic)
	if !ok {
		return nil, ErrNotLogic
	}

	return logic.Delegate(env, p.storage, input)
}

// Snapshot implements chain.Snapshotter.
func (p *TransparentUpgradeableProxy) Snapshot() func() {
	admin, impl := p.admin, p.implementation
	var storage Storage
	if p.storage != nil {
		storage = p.storage.Clone()
	}

	return func() {
		p.admin, p.implementation = admin, impl
		p.storage = storage
	}
}
