// Package chain is a deterministic in-memory ledger for running the market update contracts.
//
// Every top level transaction is executed synchronously and atomically: if any call inside it
// fails, every contract, balance and event touched by the transaction is restored. Each
// transaction is mined in its own block, and time only moves when a block is mined or when the
// caller advances the clock.
package chain

import (
	"context"
	"encoding/binary"
	"fmt"
	"maps"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/dodao/comet-market-updates/internal/utils/abi"
	"github.com/dodao/comet-market-updates/types"
)

// MaxCallDepth is the EVM call depth limit.
const MaxCallDepth = 1024

// Contract is code deployed at an address.
type Contract interface {
	Invoke(env *Env, input []byte) ([]byte, error)
}

// Snapshotter is implemented by contracts holding mutable state. Snapshot returns a function
// that restores the state as it was when Snapshot was called.
type Snapshotter interface {
	Snapshot() func()
}

// Chain is a single in-memory EVM-like chain. It is safe for concurrent use; transactions are
// serialized.
type Chain struct {
	mu sync.Mutex

	selector  types.ChainSelector
	contracts map[common.Address]Contract
	balances  map[common.Address]*big.Int
	nonces    map[common.Address]uint64
	block     uint64
	timestamp uint64
	blockTime uint64
	receipts  []*Receipt
	lg        *zap.SugaredLogger

	// events collects the logs of the transaction being executed.
	events []Event
}

// Option configures a Chain.
type Option func(*Chain)

// WithLogger sets the logger used to trace transactions.
func WithLogger(lg *zap.Logger) Option {
	return func(c *Chain) {
		c.lg = lg.Sugar()
	}
}

// WithStartTime sets the timestamp of the genesis block.
func WithStartTime(t time.Time) Option {
	return func(c *Chain) {
		c.timestamp = uint64(t.Unix()) //nolint:gosec // timestamps are positive
	}
}

// WithBlockTime sets how many seconds pass between consecutive blocks.
func WithBlockTime(d time.Duration) Option {
	return func(c *Chain) {
		c.blockTime = types.NewDuration(d).Secs()
	}
}

// New creates an empty chain identified by selector.
func New(selector types.ChainSelector, opts ...Option) *Chain {
	c := &Chain{
		selector:  selector,
		contracts: make(map[common.Address]Contract),
		balances:  make(map[common.Address]*big.Int),
		nonces:    make(map[common.Address]uint64),
		timestamp: 1_700_000_000,
		blockTime: 1,
		lg:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Selector returns the chain selector of the chain.
func (c *Chain) Selector() types.ChainSelector {
	return c.selector
}

// BlockNumber returns the number of the latest mined block.
func (c *Chain) BlockNumber() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.block
}

// Now returns the timestamp of the latest mined block.
func (c *Chain) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.timestamp
}

// IncreaseTime moves the clock forward by d without mining a block.
func (c *Chain) IncreaseTime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timestamp += types.NewDuration(d).Secs()
}

// Mine mines n empty blocks.
func (c *Chain) Mine(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for range n {
		c.mineBlock()
	}
}

func (c *Chain) mineBlock() {
	c.block++
	c.timestamp += c.blockTime
}

// NewAccount returns a deterministic externally owned account derived from label, funded with
// 10000 ether.
func (c *Chain) NewAccount(label string) common.Address {
	addr := common.BytesToAddress(crypto.Keccak256([]byte("account:" + label)))
	c.Fund(addr, new(big.Int).Mul(big.NewInt(10_000), big.NewInt(1e18)))

	return addr
}

// Fund sets the balance of addr.
func (c *Chain) Fund(addr common.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.balances[addr] = new(big.Int).Set(amount)
}

// Balance returns the balance of addr.
func (c *Chain) Balance(addr common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return new(big.Int).Set(c.balanceOf(addr))
}

func (c *Chain) balanceOf(addr common.Address) *big.Int {
	if b, ok := c.balances[addr]; ok {
		return b
	}

	return new(big.Int)
}

func (c *Chain) transfer(from, to common.Address, value *big.Int) error {
	if value == nil || value.Sign() == 0 {
		return nil
	}

	fromBal := c.balanceOf(from)
	if fromBal.Cmp(value) < 0 {
		return ErrInsufficientBalance
	}

	c.balances[from] = new(big.Int).Sub(fromBal, value)
	c.balances[to] = new(big.Int).Add(c.balanceOf(to), value)

	return nil
}

// Deploy registers contract at the next CREATE address of deployer.
func (c *Chain) Deploy(deployer common.Address, contract Contract) common.Address {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.deploy(deployer, contract)
}

func (c *Chain) deploy(deployer common.Address, contract Contract) common.Address {
	for {
		addr := crypto.CreateAddress(deployer, c.nonces[deployer])
		c.nonces[deployer]++
		if _, taken := c.contracts[addr]; !taken {
			c.contracts[addr] = contract

			return addr
		}
	}
}

// DeployAt registers contract at a fixed address, the way a fork test sets code at a known
// production address.
func (c *Chain) DeployAt(addr common.Address, contract Contract) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, taken := c.contracts[addr]; taken {
		return fmt.Errorf("%w: %s", ErrAddressInUse, addr.Hex())
	}
	c.contracts[addr] = contract

	return nil
}

// Contract returns the contract deployed at addr.
func (c *Chain) Contract(addr common.Address) (Contract, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	contract, ok := c.contracts[addr]

	return contract, ok
}

// Receipts returns every mined transaction receipt in order.
func (c *Chain) Receipts() []*Receipt {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*Receipt(nil), c.receipts...)
}

// Send ABI encodes args against signature and sends the call from `from` to `to` as one
// transaction.
func (c *Chain) Send(
	ctx context.Context, from, to common.Address, value *big.Int, signature string, args ...any,
) (*Receipt, error) {
	input, err := abi.EncodeCall(signature, args...)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", signature, err)
	}

	return c.SendRaw(ctx, from, to, value, input)
}

// SendRaw sends pre-encoded calldata as one transaction. A reverted transaction is still mined;
// the returned receipt has a failed status and the revert is returned as the error.
func (c *Chain) SendRaw(ctx context.Context, from, to common.Address, value *big.Int, input []byte) (*Receipt, error) {
	return c.transact(ctx, from, to, input, func(env *Env) ([]byte, error) {
		if err := c.transfer(from, to, env.Value); err != nil {
			return nil, err
		}
		contract, ok := c.contracts[to]
		if !ok {
			return nil, nil
		}

		return contract.Invoke(env, input)
	}, value)
}

// Do runs fn as one transaction sent by from. fn drives the transaction through env, e.g. with
// env.Call, and the whole of it is atomic.
func (c *Chain) Do(ctx context.Context, from common.Address, fn func(env *Env) error) (*Receipt, error) {
	return c.transact(ctx, from, from, nil, func(env *Env) ([]byte, error) {
		return nil, fn(env)
	}, nil)
}

// Call executes a read only call and returns the ABI encoded result. No block is mined and all
// state changes are discarded.
func (c *Chain) Call(ctx context.Context, from, to common.Address, signature string, args ...any) ([]byte, error) {
	input, err := abi.EncodeCall(signature, args...)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", signature, err)
	}

	return c.CallRaw(ctx, from, to, input)
}

// CallRaw executes a read only call with pre-encoded calldata.
func (c *Chain) CallRaw(ctx context.Context, from, to common.Address, input []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	restore := c.snapshot()
	defer restore()

	contract, ok := c.contracts[to]
	if !ok {
		return nil, ErrNoCode
	}

	env := c.newEnv(from, to, nil)

	return contract.Invoke(env, input)
}

// Query executes a read only call and decodes the result against outputs.
func (c *Chain) Query(
	ctx context.Context, to common.Address, signature string, outputs []string, args ...any,
) ([]any, error) {
	out, err := c.Call(ctx, common.Address{}, to, signature, args...)
	if err != nil {
		return nil, err
	}

	return abi.Decode(outputs, out)
}

func (c *Chain) transact(
	ctx context.Context, from, to common.Address, input []byte, run func(env *Env) ([]byte, error), value *big.Int,
) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	nonce := c.nonces[from]
	c.nonces[from]++
	c.mineBlock()

	receipt := &Receipt{
		TxHash:      c.txHash(from, nonce, input),
		From:        from,
		To:          to,
		Nonce:       nonce,
		BlockNumber: c.block,
		Timestamp:   c.timestamp,
	}

	c.events = nil
	restore := c.snapshot()
	out, err := run(c.newEnv(from, to, value))
	if err != nil {
		restore()
		c.events = nil
		receipt.Status = ReceiptStatusFailed
		receipt.Err = err
		c.receipts = append(c.receipts, receipt)
		c.lg.Debugw("transaction reverted",
			"chain", c.selector.Name(), "block", c.block, "from", from.Hex(), "to", to.Hex(), "error", err)

		return receipt, err
	}

	receipt.Status = ReceiptStatusSuccessful
	receipt.Return = out
	receipt.Events = c.events
	c.events = nil
	c.receipts = append(c.receipts, receipt)
	c.lg.Debugw("transaction mined",
		"chain", c.selector.Name(), "block", c.block, "from", from.Hex(), "to", to.Hex(),
		"events", receipt.EventNames())

	return receipt, nil
}

func (c *Chain) txHash(from common.Address, nonce uint64, input []byte) common.Hash {
	buf := make([]byte, 0, 8+common.AddressLength+8+len(input))
	buf = binary.BigEndian.AppendUint64(buf, uint64(c.selector))
	buf = append(buf, from.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, nonce)
	buf = append(buf, input...)

	return crypto.Keccak256Hash(buf)
}

func (c *Chain) newEnv(sender, self common.Address, value *big.Int) *Env {
	if value == nil {
		value = new(big.Int)
	}

	return &Env{chain: c, Sender: sender, Self: self, Value: value}
}

// snapshot captures every contract, balance, nonce and pending event. Callers must hold mu.
func (c *Chain) snapshot() func() {
	contracts := maps.Clone(c.contracts)
	balances := maps.Clone(c.balances)
	nonces := maps.Clone(c.nonces)
	events := len(c.events)

	restorers := make([]func(), 0, len(c.contracts))
	for _, contract := range c.contracts {
		if s, ok := contract.(Snapshotter); ok {
			restorers = append(restorers, s.Snapshot())
		}
	}

	return func() {
		for _, r := range restorers {
			r()
		}
		c.contracts = contracts
		c.balances = balances
		c.nonces = nonces
		c.events = c.events[:events]
	}
}
