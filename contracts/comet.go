package contracts

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/internal/utils/abi"
)

// CometStorage is the state a Comet proxy keeps across implementation upgrades.
type CometStorage struct {
	Initialized bool
}

// Clone implements Storage.
func (s *CometStorage) Clone() Storage {
	c := *s
	return &c
}

var _ Logic = (*Comet)(nil)

// Comet is a market implementation. Its parameters are immutable: changing a market parameter
// means deploying a new implementation from the configurator and upgrading the market proxy.
type Comet struct {
	config  Configuration
	methods *chain.MethodSet
}

// NewComet creates an implementation from config.
func NewComet(config Configuration) *Comet {
	c := &Comet{config: config.Clone()}

	uints := map[string]uint64{
		"supplyKink()":                      c.config.SupplyKink,
		"borrowKink()":                      c.config.BorrowKink,
		"supplyPerSecondInterestRateBase()": c.config.SupplyPerYearInterestRateBase / secondsPerYear,
		"borrowPerSecondInterestRateBase()": c.config.BorrowPerYearInterestRateBase / secondsPerYear,
		"storeFrontPriceFactor()":           c.config.StoreFrontPriceFactor,
	}
	addresses := map[string]common.Address{
		"governor()":          c.config.Governor,
		"pauseGuardian()":     c.config.PauseGuardian,
		"baseToken()":         c.config.BaseToken,
		"extensionDelegate()": c.config.ExtensionDelegate,
	}

	c.methods = chain.NewMethodSet()
	for sig, v := range uints {
		c.methods.Handle(sig, chain.Returns("uint64"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(v)
		})
	}
	for sig, v := range addresses {
		c.methods.Handle(sig, chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(v)
		})
	}
	c.methods.
		Handle("baseBorrowMin()", chain.Returns("uint104"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(orZero(cloneBig(c.config.BaseBorrowMin)))
		}).
		Handle("numAssets()", chain.Returns("uint8"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(uint8(len(c.config.AssetConfigs))) //nolint:gosec // at most 15 assets
		})

	return c
}

// secondsPerYear converts the per year rates of a configuration to the per second rates Comet
// stores.
const secondsPerYear = 31_536_000

// Configuration returns the parameters the implementation was deployed with.
func (c *Comet) Configuration() Configuration {
	return c.config.Clone()
}

// Invoke implements chain.Contract. Called directly, the implementation only serves its views.
func (c *Comet) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return c.methods.Dispatch(env, input)
}

// Delegate implements Logic.
func (c *Comet) Delegate(env *chain.Env, storage Storage, input []byte) ([]byte, error) {
	st, _ := storage.(*CometStorage)
	if st != nil && len(input) >= abi.SelectorLength && bytes.Equal(input[:abi.SelectorLength], initializeStorageSelector) {
		if st.Initialized {
			return nil, ErrAlreadyInitialized
		}
		st.Initialized = true

		return nil, nil
	}

	return c.methods.Dispatch(env, input)
}

var initializeStorageSelector = abi.Selector("initializeStorage()")

// Factory deploys Comet implementations.
type Factory interface {
	Clone(env *chain.Env, config Configuration) (common.Address, error)
}

var _ Factory = (*CometFactory)(nil)

// CometFactory deploys a new Comet for every configurator deploy.
type CometFactory struct {
	deployed []common.Address
}

// NewCometFactory returns a factory.
func NewCometFactory() *CometFactory {
	return &CometFactory{}
}

// Clone deploys a Comet from the factory's frame.
func (f *CometFactory) Clone(env *chain.Env, config Configuration) (common.Address, error) {
	addr := env.Deploy(NewComet(config))
	f.deployed = append(f.deployed, addr)

	return addr, nil
}

// Deployed lists the implementations created so far.
func (f *CometFactory) Deployed() []common.Address {
	return append([]common.Address(nil), f.deployed...)
}

// Invoke implements chain.Contract. The factory has no ABI entry points.
func (f *CometFactory) Invoke(_ *chain.Env, _ []byte) ([]byte, error) {
	return nil, chain.ErrUnknownSelector
}

// Snapshot implements chain.Snapshotter.
func (f *CometFactory) Snapshot() func() {
	n := len(f.deployed)
	return func() { f.deployed = f.deployed[:n] }
}
