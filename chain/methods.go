package chain

import (
	"fmt"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/dodao/comet-market-updates/internal/utils/abi"
)

// Handler executes a decoded call. args are the ABI decoded inputs in declaration order, using
// go-ethereum's Go types (common.Address, *big.Int, uint64, []byte, ...). The returned values
// are ABI encoded against the declared outputs.
type Handler func(env *Env, args []any) ([]any, error)

type method struct {
	signature string
	inputs    gethabi.Arguments
	outputs   gethabi.Arguments
	payable   bool
	handler   Handler
}

// MethodSet dispatches calldata to handlers by 4-byte selector.
type MethodSet struct {
	methods map[[abi.SelectorLength]byte]*method
}

// NewMethodSet returns an empty MethodSet.
func NewMethodSet() *MethodSet {
	return &MethodSet{methods: make(map[[abi.SelectorLength]byte]*method)}
}

// Handle registers a non payable function. outputs lists the canonical return types.
// It panics when the signature or output types are malformed, as those are fixed at build time.
func (m *MethodSet) Handle(signature string, outputs []string, h Handler) *MethodSet {
	m.add(signature, outputs, false, h)
	return m
}

// HandlePayable registers a function that accepts value.
func (m *MethodSet) HandlePayable(signature string, outputs []string, h Handler) *MethodSet {
	m.add(signature, outputs, true, h)
	return m
}

func (m *MethodSet) add(signature string, outputs []string, payable bool, h Handler) {
	_, params, err := abi.ParseSignature(signature)
	if err != nil {
		panic(err)
	}
	inputs, err := abi.Arguments(params)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", signature, err))
	}
	outs, err := abi.Arguments(outputs)
	if err != nil {
		panic(fmt.Sprintf("%s returns: %v", signature, err))
	}

	var sel [abi.SelectorLength]byte
	copy(sel[:], abi.Selector(signature))
	if existing, ok := m.methods[sel]; ok {
		panic(fmt.Sprintf("selector clash between %s and %s", existing.signature, signature))
	}

	m.methods[sel] = &method{
		signature: signature,
		inputs:    inputs,
		outputs:   outs,
		payable:   payable,
		handler:   h,
	}
}

// Has reports whether signature is registered.
func (m *MethodSet) Has(signature string) bool {
	var sel [abi.SelectorLength]byte
	copy(sel[:], abi.Selector(signature))
	_, ok := m.methods[sel]

	return ok
}

// Dispatch decodes input, runs the matching handler and encodes its results.
func (m *MethodSet) Dispatch(env *Env, input []byte) ([]byte, error) {
	if len(input) < abi.SelectorLength {
		return nil, ErrUnknownSelector
	}

	var sel [abi.SelectorLength]byte
	copy(sel[:], input[:abi.SelectorLength])
	meth, ok := m.methods[sel]
	if !ok {
		return nil, ErrUnknownSelector
	}

	if !meth.payable && env.Value.Sign() > 0 {
		return nil, ErrNotPayable
	}

	args, err := meth.inputs.Unpack(input[abi.SelectorLength:])
	if err != nil {
		return nil, RevertWith(ErrInvalidCalldata.Reason, err)
	}

	results, err := meth.handler(env, args)
	if err != nil {
		return nil, err
	}
	if len(meth.outputs) == 0 {
		return nil, nil
	}

	out, err := meth.outputs.Pack(results...)
	if err != nil {
		return nil, fmt.Errorf("%s: encode results: %w", meth.signature, err)
	}

	return out, nil
}

// Returns is a small helper for the outputs argument of Handle.
func Returns(types ...string) []string {
	return types
}

// Result wraps handler results.
func Result(values ...any) ([]any, error) {
	return values, nil
}
