package contracts

import (
	"maps"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/internal/utils/abi"
	"github.com/dodao/comet-market-updates/types"
)

const timelockTxSignature = "(address,uint256,string,bytes,uint256)"

var timelockTxTypes = []string{"address", "uint256", "string", "bytes", "uint256"}

var (
	ErrEtaBelowDelay     = chain.Revert("Timelock::queueTransaction: Estimated execution block must satisfy delay.")
	ErrTxNotQueued       = chain.Revert("Timelock::executeTransaction: Transaction hasn't been queued.")
	ErrTxTimelocked      = chain.Revert("Timelock::executeTransaction: Transaction hasn't surpassed time lock.")
	ErrTxStale           = chain.Revert("Timelock::executeTransaction: Transaction is stale.")
	ErrTxExecutionFailed = chain.Revert("Timelock::executeTransaction: Transaction execution reverted.")
	ErrDelayTooLarge     = chain.Revert("Timelock::setDelay: Delay must not exceed maximum delay.")
)

// TxHash is keccak256(abi.encode(target, value, signature, data, eta)), the key of a queued
// timelock transaction.
func TxHash(target common.Address, value *big.Int, signature string, data []byte, eta *big.Int) (common.Hash, error) {
	encoded, err := abi.Encode(timelockTxTypes, target, orZero(value), signature, data, eta)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

// authorizer decides whether env.Sender may operate the timelock queue.
type authorizer func(env *chain.Env, op string) error

// timelockCore is the Compound Timelock queue shared by the market update timelock and the
// local timelocks: transactions are queued under their hash, become executable at eta and go
// stale GRACE_PERIOD later.
type timelockCore struct {
	delay  uint64
	queued map[common.Hash]bool
}

func newTimelockCore(delay types.Duration) timelockCore {
	return timelockCore{delay: delay.Secs(), queued: make(map[common.Hash]bool)}
}

func (t *timelockCore) snapshot() func() {
	delay := t.delay
	queued := maps.Clone(t.queued)

	return func() {
		t.delay = delay
		t.queued = queued
	}
}

// register adds the queue entry points and views to ms. authorize gates queue, cancel and
// execute.
func (t *timelockCore) register(ms *chain.MethodSet, authorize authorizer) {
	ms.Handle("queueTransaction"+timelockTxSignature, chain.Returns("bytes32"), func(env *chain.Env, args []any) ([]any, error) {
		if err := authorize(env, "queueTransaction"); err != nil {
			return nil, err
		}
		hash, err := t.queue(env, unpackTimelockTx(args))
		if err != nil {
			return nil, err
		}

		return chain.Result(hash)
	})
	ms.Handle("cancelTransaction"+timelockTxSignature, nil, func(env *chain.Env, args []any) ([]any, error) {
		if err := authorize(env, "cancelTransaction"); err != nil {
			return nil, err
		}

		return nil, t.cancel(env, unpackTimelockTx(args))
	})
	ms.HandlePayable("executeTransaction"+timelockTxSignature, chain.Returns("bytes"), func(env *chain.Env, args []any) ([]any, error) {
		if err := authorize(env, "executeTransaction"); err != nil {
			return nil, err
		}
		out, err := t.execute(env, unpackTimelockTx(args))
		if err != nil {
			return nil, err
		}

		return chain.Result(out)
	})
	ms.Handle("delay()", chain.Returns("uint256"), func(_ *chain.Env, _ []any) ([]any, error) {
		return chain.Result(new(big.Int).SetUint64(t.delay))
	})
	ms.Handle("GRACE_PERIOD()", chain.Returns("uint256"), func(_ *chain.Env, _ []any) ([]any, error) {
		return chain.Result(types.GracePeriod.BigSecs())
	})
	ms.Handle("MAXIMUM_DELAY()", chain.Returns("uint256"), func(_ *chain.Env, _ []any) ([]any, error) {
		return chain.Result(types.MaximumDelay.BigSecs())
	})
	ms.Handle("queuedTransactions(bytes32)", chain.Returns("bool"), func(_ *chain.Env, args []any) ([]any, error) {
		return chain.Result(t.queued[common.Hash(args[0].([32]byte))])
	})
}

// timelockTx is one queued call.
type timelockTx struct {
	Target    common.Address
	Value     *big.Int
	Signature string
	Data      []byte
	Eta       *big.Int
}

func unpackTimelockTx(args []any) timelockTx {
	return timelockTx{
		Target:    args[0].(common.Address),
		Value:     args[1].(*big.Int),
		Signature: args[2].(string),
		Data:      args[3].([]byte),
		Eta:       args[4].(*big.Int),
	}
}

func (tx timelockTx) hash() (common.Hash, error) {
	return TxHash(tx.Target, tx.Value, tx.Signature, tx.Data, tx.Eta)
}

func (tx timelockTx) fields(hash common.Hash) chain.Fields {
	return chain.Fields{
		"txHash":    hash,
		"target":    tx.Target,
		"value":     tx.Value,
		"signature": tx.Signature,
		"data":      tx.Data,
		"eta":       tx.Eta,
	}
}

func (t *timelockCore) queue(env *chain.Env, tx timelockTx) (common.Hash, error) {
	minEta := new(big.Int).Add(env.BigNow(), new(big.Int).SetUint64(t.delay))
	if tx.Eta.Cmp(minEta) < 0 {
		return common.Hash{}, ErrEtaBelowDelay
	}

	hash, err := tx.hash()
	if err != nil {
		return common.Hash{}, err
	}
	t.queued[hash] = true
	env.Emit("QueueTransaction", tx.fields(hash))

	return hash, nil
}

func (t *timelockCore) cancel(env *chain.Env, tx timelockTx) error {
	hash, err := tx.hash()
	if err != nil {
		return err
	}
	delete(t.queued, hash)
	env.Emit("CancelTransaction", tx.fields(hash))

	return nil
}

func (t *timelockCore) execute(env *chain.Env, tx timelockTx) ([]byte, error) {
	hash, err := tx.hash()
	if err != nil {
		return nil, err
	}
	if !t.queued[hash] {
		return nil, ErrTxNotQueued
	}
	if env.BigNow().Cmp(tx.Eta) < 0 {
		return nil, ErrTxTimelocked
	}
	if env.BigNow().Cmp(new(big.Int).Add(tx.Eta, types.GracePeriod.BigSecs())) > 0 {
		return nil, ErrTxStale
	}

	delete(t.queued, hash)

	out, err := env.Call(tx.Target, tx.Value, abi.Calldata(tx.Signature, tx.Data))
	if err != nil {
		return nil, chain.RevertWith(ErrTxExecutionFailed.Reason, err)
	}
	env.Emit("ExecuteTransaction", tx.fields(hash))

	return out, nil
}

func (t *timelockCore) setDelay(env *chain.Env, delay *big.Int) error {
	if delay.Cmp(types.MaximumDelay.BigSecs()) > 0 {
		return ErrDelayTooLarge
	}
	t.delay = delay.Uint64()
	env.Emit("NewDelay", chain.Fields{"newDelay": new(big.Int).Set(delay)})

	return nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}
