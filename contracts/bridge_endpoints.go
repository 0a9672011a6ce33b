package contracts

import (
	"maps"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/dodao/comet-market-updates/bridge"
	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/internal/utils/abi"
	"github.com/dodao/comet-market-updates/internal/utils/safecast"
)

// DefaultXDomainMessageSender is reported by the Scroll L2 messenger outside of a relayed call.
var DefaultXDomainMessageSender = common.HexToAddress("0x000000000000000000000000000000000000dEaD")

// ErrGasLimitTooLarge is returned by the L1 endpoints for a gas limit beyond 64 bits.
var ErrGasLimitTooLarge = chain.Revert("gas limit exceeds uint64")

// outbox records outbound messages of an L1 bridge endpoint.
type outbox struct {
	kind     bridge.Kind
	messages []bridge.Message
}

func (o *outbox) Kind() bridge.Kind {
	return o.kind
}

func (o *outbox) Messages() []bridge.Message {
	return slices.Clone(o.messages)
}

func (o *outbox) record(msg bridge.Message) uint64 {
	msg.Nonce = uint64(len(o.messages))
	o.messages = append(o.messages, msg)

	return msg.Nonce
}

func (o *outbox) snapshot() func() {
	n := len(o.messages)
	return func() { o.messages = o.messages[:n] }
}

var (
	_ bridge.Outbox     = (*ArbitrumInbox)(nil)
	_ chain.Snapshotter = (*ArbitrumInbox)(nil)
)

// ArbitrumInbox is the L1 delayed inbox accepting retryable tickets for Arbitrum.
type ArbitrumInbox struct {
	outbox
	methods *chain.MethodSet
}

// NewArbitrumInbox returns an inbox.
func NewArbitrumInbox() *ArbitrumInbox {
	in := &ArbitrumInbox{outbox: outbox{kind: bridge.KindArbitrum}}
	in.methods = chain.NewMethodSet().
		HandlePayable(bridge.ArbitrumCreateRetryableTicket, chain.Returns("uint256"), in.createRetryableTicket)

	return in
}

func (in *ArbitrumInbox) createRetryableTicket(env *chain.Env, args []any) ([]any, error) {
	to := args[0].(common.Address)
	l2CallValue := args[1].(*big.Int)
	maxSubmissionCost := args[2].(*big.Int)
	gasLimit := args[5].(*big.Int)
	maxFeePerGas := args[6].(*big.Int)
	data := args[7].([]byte)

	expected := new(big.Int).Mul(gasLimit, maxFeePerGas)
	expected.Add(expected, maxSubmissionCost).Add(expected, l2CallValue)
	if env.Value.Cmp(expected) < 0 {
		return nil, chain.NewCustomError("InsufficientValue", expected, new(big.Int).Set(env.Value))
	}
	gas, err := safecast.BigToUint64(gasLimit)
	if err != nil {
		return nil, ErrGasLimitTooLarge
	}

	nonce := in.record(bridge.Message{
		Sender:   env.Sender,
		Target:   to,
		Value:    new(big.Int).Set(l2CallValue),
		Data:     slices.Clone(data),
		GasLimit: gas,
	})
	id := new(big.Int).SetUint64(nonce)
	env.Emit("InboxMessageDelivered", chain.Fields{"messageNum": id, "data": slices.Clone(data)})

	return chain.Result(id)
}

// Invoke implements chain.Contract.
func (in *ArbitrumInbox) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return in.methods.Dispatch(env, input)
}

// Snapshot implements chain.Snapshotter.
func (in *ArbitrumInbox) Snapshot() func() {
	return in.snapshot()
}

var (
	_ bridge.Outbox     = (*FxRoot)(nil)
	_ chain.Snapshotter = (*FxRoot)(nil)
)

// FxRoot is the L1 end of the Polygon fx tunnel.
type FxRoot struct {
	outbox
	methods *chain.MethodSet
}

// NewFxRoot returns an FxRoot.
func NewFxRoot() *FxRoot {
	r := &FxRoot{outbox: outbox{kind: bridge.KindPolygon}}
	r.methods = chain.NewMethodSet().
		Handle(bridge.PolygonSendMessageToChild, nil, func(env *chain.Env, args []any) ([]any, error) {
			receiver, data := args[0].(common.Address), args[1].([]byte)
			nonce := r.record(bridge.Message{Sender: env.Sender, Target: receiver, Value: new(big.Int), Data: slices.Clone(data)})
			env.Emit("StateSynced", chain.Fields{"id": new(big.Int).SetUint64(nonce), "receiver": receiver, "data": slices.Clone(data)})

			return nil, nil
		})

	return r
}

// Invoke implements chain.Contract.
func (r *FxRoot) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return r.methods.Dispatch(env, input)
}

// Snapshot implements chain.Snapshotter.
func (r *FxRoot) Snapshot() func() {
	return r.snapshot()
}

var (
	_ bridge.Outbox     = (*ScrollMessenger)(nil)
	_ chain.Snapshotter = (*ScrollMessenger)(nil)
)

// ScrollMessenger is the Scroll L1 messenger.
type ScrollMessenger struct {
	outbox
	methods *chain.MethodSet
}

// NewScrollMessenger returns an L1 messenger.
func NewScrollMessenger() *ScrollMessenger {
	m := &ScrollMessenger{outbox: outbox{kind: bridge.KindScroll}}
	m.methods = chain.NewMethodSet().
		HandlePayable(bridge.ScrollSendMessage, nil, func(env *chain.Env, args []any) ([]any, error) {
			to, value, message, gasLimit := args[0].(common.Address), args[1].(*big.Int), args[2].([]byte), args[3].(*big.Int)
			if env.Value.Cmp(value) < 0 {
				return nil, chain.Revert("Insufficient msg.value")
			}
			gas, err := safecast.BigToUint64(gasLimit)
			if err != nil {
				return nil, ErrGasLimitTooLarge
			}
			nonce := m.record(bridge.Message{
				Sender:   env.Sender,
				Target:   to,
				Value:    new(big.Int).Set(value),
				Data:     slices.Clone(message),
				GasLimit: gas,
			})
			env.Emit("SentMessage", chain.Fields{
				"sender":       env.Sender,
				"target":       to,
				"value":        new(big.Int).Set(value),
				"messageNonce": new(big.Int).SetUint64(nonce),
				"gasLimit":     new(big.Int).Set(gasLimit),
				"message":      slices.Clone(message),
			})

			return nil, nil
		})

	return m
}

// Invoke implements chain.Contract.
func (m *ScrollMessenger) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return m.methods.Dispatch(env, input)
}

// Snapshot implements chain.Snapshotter.
func (m *ScrollMessenger) Snapshot() func() {
	return m.snapshot()
}

// FxChild is the Polygon end of the fx tunnel. State sync delivers messages to it, and it
// forwards them to their receiver with the L1 sender attached.
type FxChild struct {
	methods *chain.MethodSet
}

// NewFxChild returns an FxChild.
func NewFxChild() *FxChild {
	c := &FxChild{}
	c.methods = chain.NewMethodSet().
		Handle("onStateReceive(uint256,bytes)", nil, func(env *chain.Env, args []any) ([]any, error) {
			if env.Sender != bridge.PolygonStateSyncer {
				return nil, chain.Revert("Invalid sender")
			}
			stateID, data := args[0].(*big.Int), args[1].([]byte)
			decoded, err := abi.Decode(bridge.FxStateTypes, data)
			if err != nil {
				return nil, chain.RevertWith(chain.ErrInvalidCalldata.Reason, err)
			}
			rootSender, receiver, payload := decoded[0].(common.Address), decoded[1].(common.Address), decoded[2].([]byte)
			env.Emit("NewFxMessage", chain.Fields{"rootMessageSender": rootSender, "receiver": receiver, "data": payload})

			_, err = env.Invoke(receiver, "processMessageFromRoot(uint256,address,bytes)", stateID, rootSender, payload)

			return nil, err
		})

	return c
}

// Invoke implements chain.Contract.
func (c *FxChild) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return c.methods.Dispatch(env, input)
}

var _ chain.Snapshotter = (*L2ScrollMessenger)(nil)

// L2ScrollMessenger relays Scroll messages on L2. Only the aliased L1 messenger may relay, and
// the L1 sender is exposed through xDomainMessageSender for the duration of the call. A
// failing message does not revert the relay.
type L2ScrollMessenger struct {
	counterpart   common.Address
	xDomainSender common.Address
	relayed       map[common.Hash]bool
	methods       *chain.MethodSet
}

// NewL2ScrollMessenger is the constructor(l1Messenger).
func NewL2ScrollMessenger(l1Messenger common.Address) *L2ScrollMessenger {
	m := &L2ScrollMessenger{
		counterpart:   l1Messenger,
		xDomainSender: DefaultXDomainMessageSender,
		relayed:       make(map[common.Hash]bool),
	}
	m.methods = chain.NewMethodSet().
		Handle("xDomainMessageSender()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(m.xDomainSender)
		}).
		Handle("counterpart()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(m.counterpart)
		}).
		Handle("relayMessage(address,address,uint256,uint256,bytes)", nil, m.relayMessage)

	return m
}

func (m *L2ScrollMessenger) relayMessage(env *chain.Env, args []any) ([]any, error) {
	if env.Sender != bridge.ApplyL1ToL2Alias(m.counterpart) {
		return nil, chain.Revert("Caller is not L1ScrollMessenger")
	}

	from, to, value, nonce, message := args[0].(common.Address), args[1].(common.Address),
		args[2].(*big.Int), args[3].(*big.Int), args[4].([]byte)
	encoded, err := abi.EncodeCall("relayMessage(address,address,uint256,uint256,bytes)", from, to, value, nonce, message)
	if err != nil {
		return nil, err
	}
	hash := crypto.Keccak256Hash(encoded)
	if m.relayed[hash] {
		return nil, chain.Revert("Message was already successfully executed")
	}

	m.xDomainSender = from
	_, callErr := env.Call(to, value, message)
	m.xDomainSender = DefaultXDomainMessageSender

	if callErr != nil {
		env.Emit("FailedRelayedMessage", chain.Fields{"messageHash": hash, "error": callErr.Error()})
		return nil, nil
	}
	m.relayed[hash] = true
	env.Emit("RelayedMessage", chain.Fields{"messageHash": hash})

	return nil, nil
}

// Invoke implements chain.Contract.
func (m *L2ScrollMessenger) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return m.methods.Dispatch(env, input)
}

// Snapshot implements chain.Snapshotter.
func (m *L2ScrollMessenger) Snapshot() func() {
	relayed := maps.Clone(m.relayed)
	sender := m.xDomainSender

	return func() {
		m.relayed = relayed
		m.xDomainSender = sender
	}
}
