package contracts

import (
	"maps"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/chain"
)

var ErrAssetDoesNotExist = chain.NewCustomError("AssetDoesNotExist")

// ConfiguratorStorage is the state kept by the configurator proxy.
type ConfiguratorStorage struct {
	Version                      uint64
	Governor                     common.Address
	Factories                    map[common.Address]common.Address
	Configs                      map[common.Address]Configuration
	MarketAdmin                  common.Address
	MarketAdminPauseGuardian     common.Address
	MarketAdminPaused            bool
	MarketAdminPermissionChecker common.Address
}

// NewConfiguratorStorage returns empty, uninitialised storage.
func NewConfiguratorStorage() *ConfiguratorStorage {
	return &ConfiguratorStorage{
		Factories: make(map[common.Address]common.Address),
		Configs:   make(map[common.Address]Configuration),
	}
}

// Clone implements Storage.
func (s *ConfiguratorStorage) Clone() Storage {
	c := *s
	c.Factories = maps.Clone(s.Factories)
	c.Configs = make(map[common.Address]Configuration, len(s.Configs))
	for k, v := range s.Configs {
		c.Configs[k] = v.Clone()
	}

	return &c
}

// Configuration returns the configuration stored for cometProxy.
func (s *ConfiguratorStorage) Configuration(cometProxy common.Address) (Configuration, bool) {
	cfg, ok := s.Configs[cometProxy]
	if !ok {
		return Configuration{}, false
	}

	return cfg.Clone(), true
}

var _ Logic = (*Configurator)(nil)

// Configurator is the configurator implementation. The legacy implementation (NewConfiguratorV1)
// only lets the governor change market parameters. The market updates implementation
// (NewConfigurator) adds the market admin, its pause guardian and an optional permission
// checker, and lets the market admin call the market update functions.
type Configurator struct {
	marketUpdates bool
	own           *ConfiguratorStorage
	storage       *ConfiguratorStorage
	methods       *chain.MethodSet
}

// NewConfiguratorV1 returns the configurator implementation predating market updates.
func NewConfiguratorV1() *Configurator {
	return newConfigurator(false)
}

// NewConfigurator returns the configurator implementation with market admin support.
func NewConfigurator() *Configurator {
	return newConfigurator(true)
}

func newConfigurator(marketUpdates bool) *Configurator {
	c := &Configurator{marketUpdates: marketUpdates, own: NewConfiguratorStorage()}
	c.methods = c.buildMethods()

	return c
}

// MarketUpdates reports whether the implementation supports the market admin.
func (c *Configurator) MarketUpdates() bool {
	return c.marketUpdates
}

func (c *Configurator) buildMethods() *chain.MethodSet {
	ms := chain.NewMethodSet().
		Handle("initialize(address)", nil, func(env *chain.Env, args []any) ([]any, error) {
			if c.storage.Version > 0 {
				return nil, ErrAlreadyInitialized
			}
			c.storage.Governor = args[0].(common.Address)
			c.storage.Version = 1

			return nil, nil
		}).
		Handle("version()", chain.Returns("uint256"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(new(big.Int).SetUint64(c.storage.Version))
		}).
		Handle("governor()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(c.storage.Governor)
		}).
		Handle("factory(address)", chain.Returns("address"), func(_ *chain.Env, args []any) ([]any, error) {
			return chain.Result(c.storage.Factories[args[0].(common.Address)])
		}).
		Handle("setFactory(address,address)", nil, c.onlyGovernor(func(env *chain.Env, args []any) ([]any, error) {
			proxy, next := args[0].(common.Address), args[1].(common.Address)
			old := c.storage.Factories[proxy]
			c.storage.Factories[proxy] = next
			env.Emit("SetFactory", chain.Fields{"cometProxy": proxy, "oldFactory": old, "newFactory": next})

			return nil, nil
		})).
		Handle("transferGovernor(address)", nil, c.onlyGovernor(func(env *chain.Env, args []any) ([]any, error) {
			old := c.storage.Governor
			c.storage.Governor = args[0].(common.Address)
			env.Emit("GovernorTransferred", chain.Fields{"oldGovernor": old, "newGovernor": c.storage.Governor})

			return nil, nil
		})).
		Handle("setGovernor(address,address)", nil, c.onlyGovernor(c.addressParam("SetGovernor", "Governor",
			func(cfg *Configuration) *common.Address { return &cfg.Governor }))).
		Handle("setPauseGuardian(address,address)", nil, c.onlyGovernor(c.addressParam("SetPauseGuardian", "PauseGuardian",
			func(cfg *Configuration) *common.Address { return &cfg.PauseGuardian }))).
		Handle("setExtensionDelegate(address,address)", nil, c.onlyGovernor(c.addressParam("SetExtensionDelegate", "ExtensionDelegate",
			func(cfg *Configuration) *common.Address { return &cfg.ExtensionDelegate }))).
		Handle("deploy(address)", chain.Returns("address"), c.deploy)

	marketUpdate := []struct {
		signature string
		event     string
		param     string
		field     func(cfg *Configuration) *uint64
	}{
		{"setSupplyKink(address,uint64)", "SetSupplyKink", "Kink",
			func(cfg *Configuration) *uint64 { return &cfg.SupplyKink }},
		{"setSupplyPerYearInterestRateSlopeLow(address,uint64)", "SetSupplyPerYearInterestRateSlopeLow", "SlopeLow",
			func(cfg *Configuration) *uint64 { return &cfg.SupplyPerYearInterestRateSlopeLow }},
		{"setSupplyPerYearInterestRateSlopeHigh(address,uint64)", "SetSupplyPerYearInterestRateSlopeHigh", "SlopeHigh",
			func(cfg *Configuration) *uint64 { return &cfg.SupplyPerYearInterestRateSlopeHigh }},
		{"setSupplyPerYearInterestRateBase(address,uint64)", "SetSupplyPerYearInterestRateBase", "Base",
			func(cfg *Configuration) *uint64 { return &cfg.SupplyPerYearInterestRateBase }},
		{"setBorrowKink(address,uint64)", "SetBorrowKink", "Kink",
			func(cfg *Configuration) *uint64 { return &cfg.BorrowKink }},
		{"setBorrowPerYearInterestRateSlopeLow(address,uint64)", "SetBorrowPerYearInterestRateSlopeLow", "SlopeLow",
			func(cfg *Configuration) *uint64 { return &cfg.BorrowPerYearInterestRateSlopeLow }},
		{"setBorrowPerYearInterestRateSlopeHigh(address,uint64)", "SetBorrowPerYearInterestRateSlopeHigh", "SlopeHigh",
			func(cfg *Configuration) *uint64 { return &cfg.BorrowPerYearInterestRateSlopeHigh }},
		{"setBorrowPerYearInterestRateBase(address,uint64)", "SetBorrowPerYearInterestRateBase", "Base",
			func(cfg *Configuration) *uint64 { return &cfg.BorrowPerYearInterestRateBase }},
		{"setStoreFrontPriceFactor(address,uint64)", "SetStoreFrontPriceFactor", "StoreFrontPriceFactor",
			func(cfg *Configuration) *uint64 { return &cfg.StoreFrontPriceFactor }},
		{"setBaseTrackingSupplySpeed(address,uint64)", "SetBaseTrackingSupplySpeed", "BaseTrackingSupplySpeed",
			func(cfg *Configuration) *uint64 { return &cfg.BaseTrackingSupplySpeed }},
		{"setBaseTrackingBorrowSpeed(address,uint64)", "SetBaseTrackingBorrowSpeed", "BaseTrackingBorrowSpeed",
			func(cfg *Configuration) *uint64 { return &cfg.BaseTrackingBorrowSpeed }},
	}
	for _, m := range marketUpdate {
		ms.Handle(m.signature, nil, c.onlyMarketUpdate(c.uintParam(m.event, m.param, m.field)))
	}
	ms.Handle("setBaseBorrowMin(address,uint104)", nil, c.onlyMarketUpdate(c.bigParam("SetBaseBorrowMin", "BaseBorrowMin",
		func(cfg *Configuration) **big.Int { return &cfg.BaseBorrowMin })))
	ms.Handle("setBaseMinForRewards(address,uint104)", nil, c.onlyMarketUpdate(c.bigParam("SetBaseMinForRewards", "BaseMinForRewards",
		func(cfg *Configuration) **big.Int { return &cfg.BaseMinForRewards })))
	ms.Handle("setTargetReserves(address,uint104)", nil, c.onlyMarketUpdate(c.bigParam("SetTargetReserves", "TargetReserves",
		func(cfg *Configuration) **big.Int { return &cfg.TargetReserves })))
	ms.Handle("updateAssetSupplyCap(address,address,uint128)", nil, c.onlyMarketUpdate(c.updateAssetSupplyCap))
	ms.Handle("updateAssetBorrowCollateralFactor(address,address,uint64)", nil, c.onlyMarketUpdate(c.updateAssetBorrowCollateralFactor))

	if c.marketUpdates {
		c.registerMarketAdmin(ms)
	}

	return ms
}

func (c *Configurator) registerMarketAdmin(ms *chain.MethodSet) {
	views := map[string]func(st *ConfiguratorStorage) common.Address{
		"marketAdmin()":                  func(st *ConfiguratorStorage) common.Address { return st.MarketAdmin },
		"marketAdminPauseGuardian()":     func(st *ConfiguratorStorage) common.Address { return st.MarketAdminPauseGuardian },
		"marketAdminPermissionChecker()": func(st *ConfiguratorStorage) common.Address { return st.MarketAdminPermissionChecker },
	}
	for sig, get := range views {
		ms.Handle(sig, chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(get(c.storage))
		})
	}
	ms.Handle("marketAdminPaused()", chain.Returns("bool"), func(_ *chain.Env, _ []any) ([]any, error) {
		return chain.Result(c.storage.MarketAdminPaused)
	})

	setMarketAdmin := c.onlyGovernor(func(env *chain.Env, args []any) ([]any, error) {
		old := c.storage.MarketAdmin
		c.storage.MarketAdmin = args[0].(common.Address)
		env.Emit("SetMarketAdmin", chain.Fields{"oldAdmin": old, "newAdmin": c.storage.MarketAdmin})

		return nil, nil
	})
	ms.Handle("setMarketAdmin(address)", nil, setMarketAdmin)
	ms.Handle("setMarketUpdateAdmin(address)", nil, setMarketAdmin)

	ms.Handle("setMarketAdminPauseGuardian(address)", nil, c.onlyGovernor(func(env *chain.Env, args []any) ([]any, error) {
		old := c.storage.MarketAdminPauseGuardian
		c.storage.MarketAdminPauseGuardian = args[0].(common.Address)
		env.Emit("SetMarketAdminPauseGuardian", chain.Fields{
			"oldPauseGuardian": old, "newPauseGuardian": c.storage.MarketAdminPauseGuardian,
		})

		return nil, nil
	}))
	ms.Handle("setMarketAdminPermissionChecker(address)", nil, c.onlyGovernor(func(env *chain.Env, args []any) ([]any, error) {
		old := c.storage.MarketAdminPermissionChecker
		c.storage.MarketAdminPermissionChecker = args[0].(common.Address)
		env.Emit("SetMarketAdminPermissionChecker", chain.Fields{
			"oldMarketAdminPermissionChecker": old, "newMarketAdminPermissionChecker": c.storage.MarketAdminPermissionChecker,
		})

		return nil, nil
	}))
	ms.Handle("pauseMarketAdmin()", nil, func(env *chain.Env, _ []any) ([]any, error) {
		if env.Sender != c.storage.Governor && env.Sender != c.storage.MarketAdminPauseGuardian {
			return nil, ErrUnauthorized
		}
		c.storage.MarketAdminPaused = true
		env.Emit("MarketAdminPaused", chain.Fields{"isMarketAdminPaused": true})

		return nil, nil
	})
	ms.Handle("unpauseMarketAdmin()", nil, c.onlyGovernor(func(env *chain.Env, _ []any) ([]any, error) {
		c.storage.MarketAdminPaused = false
		env.Emit("MarketAdminPaused", chain.Fields{"isMarketAdminPaused": false})

		return nil, nil
	}))
}

func (c *Configurator) onlyGovernor(h chain.Handler) chain.Handler {
	return func(env *chain.Env, args []any) ([]any, error) {
		if env.Sender != c.storage.Governor {
			return nil, ErrUnauthorized
		}

		return h(env, args)
	}
}

// onlyMarketUpdate gates the market update functions. The governor may always call them.
// Everyone else is rejected while the market admin is paused, then judged by the permission
// checker when one is set, or must be the market admin otherwise.
func (c *Configurator) onlyMarketUpdate(h chain.Handler) chain.Handler {
	if !c.marketUpdates {
		return c.onlyGovernor(h)
	}

	return func(env *chain.Env, args []any) ([]any, error) {
		if err := c.authorizeMarketUpdate(env); err != nil {
			return nil, err
		}

		return h(env, args)
	}
}

func (c *Configurator) authorizeMarketUpdate(env *chain.Env) error {
	st := c.storage
	switch {
	case env.Sender == st.Governor:
		return nil
	case st.MarketAdminPaused:
		return ErrContractPaused
	case st.MarketAdminPermissionChecker != (common.Address{}):
		_, err := env.Invoke(st.MarketAdminPermissionChecker, "checkUpdatePermission(address)", env.Sender)
		return err
	case env.Sender != st.MarketAdmin:
		return ErrUnauthorized
	default:
		return nil
	}
}

func (c *Configurator) uintParam(event, param string, field func(cfg *Configuration) *uint64) chain.Handler {
	return func(env *chain.Env, args []any) ([]any, error) {
		proxy := args[0].(common.Address)
		cfg := c.storage.Configs[proxy]
		ptr := field(&cfg)
		old := *ptr
		*ptr = args[1].(uint64)
		c.storage.Configs[proxy] = cfg
		env.Emit(event, chain.Fields{"cometProxy": proxy, "old" + param: old, "new" + param: *ptr})

		return nil, nil
	}
}

func (c *Configurator) bigParam(event, param string, field func(cfg *Configuration) **big.Int) chain.Handler {
	return func(env *chain.Env, args []any) ([]any, error) {
		proxy := args[0].(common.Address)
		cfg := c.storage.Configs[proxy].Clone()
		ptr := field(&cfg)
		old := orZero(*ptr)
		*ptr = new(big.Int).Set(args[1].(*big.Int))
		c.storage.Configs[proxy] = cfg
		env.Emit(event, chain.Fields{"cometProxy": proxy, "old" + param: old, "new" + param: *ptr})

		return nil, nil
	}
}

func (c *Configurator) addressParam(event, param string, field func(cfg *Configuration) *common.Address) chain.Handler {
	return func(env *chain.Env, args []any) ([]any, error) {
		proxy := args[0].(common.Address)
		cfg := c.storage.Configs[proxy]
		ptr := field(&cfg)
		old := *ptr
		*ptr = args[1].(common.Address)
		c.storage.Configs[proxy] = cfg
		env.Emit(event, chain.Fields{"cometProxy": proxy, "old" + param: old, "new" + param: *ptr})

		return nil, nil
	}
}

func (c *Configurator) updateAsset(env *chain.Env, proxy, asset common.Address, update func(a *AssetConfig) chain.Fields, event string) error {
	cfg := c.storage.Configs[proxy].Clone()
	i := cfg.assetIndex(asset)
	if i < 0 {
		return ErrAssetDoesNotExist
	}
	fields := update(&cfg.AssetConfigs[i])
	fields["cometProxy"] = proxy
	fields["asset"] = asset
	c.storage.Configs[proxy] = cfg
	env.Emit(event, fields)

	return nil
}

func (c *Configurator) updateAssetSupplyCap(env *chain.Env, args []any) ([]any, error) {
	next := new(big.Int).Set(args[2].(*big.Int))

	return nil, c.updateAsset(env, args[0].(common.Address), args[1].(common.Address), func(a *AssetConfig) chain.Fields {
		old := orZero(a.SupplyCap)
		a.SupplyCap = next

		return chain.Fields{"oldSupplyCap": old, "newSupplyCap": next}
	}, "UpdateAssetSupplyCap")
}

func (c *Configurator) updateAssetBorrowCollateralFactor(env *chain.Env, args []any) ([]any, error) {
	next := args[2].(uint64)

	return nil, c.updateAsset(env, args[0].(common.Address), args[1].(common.Address), func(a *AssetConfig) chain.Fields {
		old := a.BorrowCollateralFactor
		a.BorrowCollateralFactor = next

		return chain.Fields{"oldBorrowCF": old, "newBorrowCF": next}
	}, "UpdateAssetBorrowCollateralFactor")
}

// deploy runs the factory of cometProxy with its current configuration and returns the new
// implementation.
func (c *Configurator) deploy(env *chain.Env, args []any) ([]any, error) {
	proxy := args[0].(common.Address)
	factoryAddr := c.storage.Factories[proxy]
	cfg := c.storage.Configs[proxy].Clone()

	code, ok := env.Contract(factoryAddr)
	if !ok {
		return nil, chain.ErrNoCode
	}
	factory, ok := code.(Factory)
	if !ok {
		return nil, chain.ErrUnknownSelector
	}

	var impl common.Address
	if err := env.Enter(factoryAddr, func(fenv *chain.Env) error {
		var err error
		impl, err = factory.Clone(fenv, cfg)

		return err
	}); err != nil {
		return nil, err
	}
	env.Emit("CometDeployed", chain.Fields{"cometProxy": proxy, "newComet": impl})

	return chain.Result(impl)
}

// Delegate implements Logic.
func (c *Configurator) Delegate(env *chain.Env, storage Storage, input []byte) ([]byte, error) {
	st, ok := storage.(*ConfiguratorStorage)
	if !ok {
		return nil, ErrNotLogic
	}

	prev := c.storage
	c.storage = st
	defer func() { c.storage = prev }()

	return c.methods.Dispatch(env, input)
}

// Invoke implements chain.Contract. Calling the implementation directly uses its own storage.
func (c *Configurator) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return c.Delegate(env, c.own, input)
}

// Snapshot implements chain.Snapshotter.
func (c *Configurator) Snapshot() func() {
	own := c.own.Clone().(*ConfiguratorStorage) //nolint:forcetypeassert // Clone keeps the type

	return func() { c.own = own }
}

// SetConfiguration is setConfiguration(cometProxy, config) sent from the current frame to the
// configurator behind configuratorProxy. Only the configurator governor may call it.
func SetConfiguration(env *chain.Env, configuratorProxy, cometProxy common.Address, config Configuration) error {
	return env.Enter(configuratorProxy, func(penv *chain.Env) error {
		st, err := configuratorStorageAt(penv, configuratorProxy)
		if err != nil {
			return err
		}
		if penv.Sender != st.Governor {
			return ErrUnauthorized
		}
		old := st.Configs[cometProxy]
		st.Configs[cometProxy] = config.Clone()
		penv.Emit("SetConfiguration", chain.Fields{"cometProxy": cometProxy, "oldConfiguration": old, "newConfiguration": config.Clone()})

		return nil
	})
}

func configuratorStorageAt(env *chain.Env, configuratorProxy common.Address) (*ConfiguratorStorage, error) {
	code, ok := env.Contract(configuratorProxy)
	if !ok {
		return nil, chain.ErrNoCode
	}
	proxy, ok := code.(*TransparentUpgradeableProxy)
	if !ok {
		return nil, ErrNotLogic
	}
	st, ok := proxy.Storage().(*ConfiguratorStorage)
	if !ok {
		return nil, ErrNotLogic
	}

	return st, nil
}
