package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/internal/utils/abi"
	"github.com/dodao/comet-market-updates/types"
)

// Env is the execution context of one call frame: msg.sender, address(this) and msg.value.
type Env struct {
	chain *Chain
	depth int

	Sender common.Address
	Self   common.Address
	Value  *big.Int
}

// Now returns block.timestamp.
func (e *Env) Now() uint64 {
	return e.chain.timestamp
}

// BigNow returns block.timestamp as a uint256 value.
func (e *Env) BigNow() *big.Int {
	return new(big.Int).SetUint64(e.chain.timestamp)
}

// BlockNumber returns block.number.
func (e *Env) BlockNumber() uint64 {
	return e.chain.block
}

// ChainSelector returns the selector of the chain being executed.
func (e *Env) ChainSelector() types.ChainSelector {
	return e.chain.selector
}

// Balance returns the balance of addr.
func (e *Env) Balance(addr common.Address) *big.Int {
	return new(big.Int).Set(e.chain.balanceOf(addr))
}

// Contract returns the code deployed at addr.
func (e *Env) Contract(addr common.Address) (Contract, bool) {
	contract, ok := e.chain.contracts[addr]
	return contract, ok
}

// Deploy creates contract from the current contract, the way CREATE does.
func (e *Env) Deploy(contract Contract) common.Address {
	return e.chain.deploy(e.Self, contract)
}

// Emit records an event from the current contract.
func (e *Env) Emit(name string, args Fields) {
	e.chain.events = append(e.chain.events, Event{Address: e.Self, Name: name, Args: args})
}

// Call is a low level call from the current contract to `to`, forwarding value. Calling an
// address without code succeeds and returns no data. A failed call leaves no state behind.
func (e *Env) Call(to common.Address, value *big.Int, input []byte) ([]byte, error) {
	if e.depth+1 >= MaxCallDepth {
		return nil, ErrCallDepth
	}
	if value == nil {
		value = new(big.Int)
	}

	restore := e.chain.snapshot()
	out, err := e.call(to, value, input)
	if err != nil {
		restore()
		return nil, err
	}

	return out, nil
}

func (e *Env) call(to common.Address, value *big.Int, input []byte) ([]byte, error) {
	if err := e.chain.transfer(e.Self, to, value); err != nil {
		return nil, err
	}

	contract, ok := e.chain.contracts[to]
	if !ok {
		return nil, nil
	}

	frame := &Env{chain: e.chain, depth: e.depth + 1, Sender: e.Self, Self: to, Value: value}

	return contract.Invoke(frame, input)
}

// Enter runs fn as a call frame of the contract at `to`, with the current contract as
// msg.sender. It serves Go level entry points whose arguments have no ABI form, such as a
// factory taking a whole configuration. A failed frame leaves no state behind.
func (e *Env) Enter(to common.Address, fn func(env *Env) error) error {
	if e.depth+1 >= MaxCallDepth {
		return ErrCallDepth
	}
	if _, ok := e.chain.contracts[to]; !ok {
		return ErrNoCode
	}

	restore := e.chain.snapshot()
	frame := &Env{chain: e.chain, depth: e.depth + 1, Sender: e.Self, Self: to, Value: new(big.Int)}
	if err := fn(frame); err != nil {
		restore()
		return err
	}

	return nil
}

// Invoke is a high level call: it encodes signature and args, requires code at `to` and
// returns the raw return data.
func (e *Env) Invoke(to common.Address, signature string, args ...any) ([]byte, error) {
	return e.InvokeWithValue(to, nil, signature, args...)
}

// InvokeWithValue is Invoke forwarding value.
func (e *Env) InvokeWithValue(to common.Address, value *big.Int, signature string, args ...any) ([]byte, error) {
	if _, ok := e.chain.contracts[to]; !ok {
		return nil, ErrNoCode
	}

	input, err := abi.EncodeCall(signature, args...)
	if err != nil {
		return nil, err
	}

	return e.Call(to, value, input)
}

// Query invokes a function on `to` and decodes the return data against outputs.
func (e *Env) Query(to common.Address, signature string, outputs []string, args ...any) ([]any, error) {
	out, err := e.Invoke(to, signature, args...)
	if err != nil {
		return nil, err
	}

	return abi.Decode(outputs, out)
}

// QueryAddress invokes a view returning a single address.
func (e *Env) QueryAddress(to common.Address, signature string, args ...any) (common.Address, error) {
	res, err := e.Query(to, signature, Returns("address"), args...)
	if err != nil {
		return common.Address{}, err
	}

	return res[0].(common.Address), nil //nolint:forcetypeassert // decoded as address
}

// QueryUint invokes a view returning a single uint256.
func (e *Env) QueryUint(to common.Address, signature string, args ...any) (*big.Int, error) {
	res, err := e.Query(to, signature, Returns("uint256"), args...)
	if err != nil {
		return nil, err
	}

	return res[0].(*big.Int), nil //nolint:forcetypeassert // decoded as uint256
}
