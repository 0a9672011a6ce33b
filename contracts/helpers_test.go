package contracts_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/internal/testutils/chaintest"
	"github.com/dodao/comet-market-updates/internal/utils/abi"
)

const (
	queueTx   = "queueTransaction(address,uint256,string,bytes,uint256)"
	cancelTx  = "cancelTransaction(address,uint256,string,bytes,uint256)"
	executeTx = "executeTransaction(address,uint256,string,bytes,uint256)"
	propose   = "propose(address[],uint256[],string[],bytes[],string)"
)

var twoDays = 48 * time.Hour

func newChain(t *testing.T) *chain.Chain {
	t.Helper()

	return chain.New(chaintest.MainnetSelector, chain.WithLogger(zaptest.NewLogger(t)))
}

// recorder is a contract that stores the last value it was given and who gave it.
type recorder struct {
	value   *big.Int
	caller  common.Address
	methods *chain.MethodSet
}

func newRecorder() *recorder {
	r := &recorder{value: new(big.Int)}
	r.methods = chain.NewMethodSet().
		HandlePayable("record(uint256)", nil, func(env *chain.Env, args []any) ([]any, error) {
			r.value = args[0].(*big.Int)
			r.caller = env.Sender

			return nil, nil
		}).
		Handle("fail()", nil, func(_ *chain.Env, _ []any) ([]any, error) {
			return nil, chain.Revert("recorder: fail")
		}).
		Handle("value()", chain.Returns("uint256"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(r.value)
		}).
		Handle("caller()", chain.Returns("address"), func(_ *chain.Env, _ []any) ([]any, error) {
			return chain.Result(r.caller)
		})

	return r
}

func (r *recorder) Invoke(env *chain.Env, input []byte) ([]byte, error) {
	return r.methods.Dispatch(env, input)
}

func (r *recorder) Snapshot() func() {
	value, caller := r.value, r.caller
	return func() { r.value, r.caller = value, caller }
}

func queryUint(t *testing.T, c *chain.Chain, to common.Address, signature string, args ...any) *big.Int {
	t.Helper()

	res, err := c.Query(t.Context(), to, signature, chain.Returns("uint256"), args...)
	require.NoError(t, err)

	return res[0].(*big.Int) //nolint:forcetypeassert // decoded as uint256
}

func queryAddress(t *testing.T, c *chain.Chain, to common.Address, signature string, args ...any) common.Address {
	t.Helper()

	res, err := c.Query(t.Context(), to, signature, chain.Returns("address"), args...)
	require.NoError(t, err)

	return res[0].(common.Address) //nolint:forcetypeassert // decoded as address
}

func queryBool(t *testing.T, c *chain.Chain, to common.Address, signature string, args ...any) bool {
	t.Helper()

	res, err := c.Query(t.Context(), to, signature, chain.Returns("bool"), args...)
	require.NoError(t, err)

	return res[0].(bool) //nolint:forcetypeassert // decoded as bool
}

func calldata(t *testing.T, signature string, args ...any) []byte {
	t.Helper()

	data, err := abi.EncodeArgs(signature, args...)
	require.NoError(t, err)

	return data
}

// etaAfter returns an eta d plus a few blocks from now, so it still satisfies a delay of d
// when the queueing transaction is mined.
func etaAfter(c *chain.Chain, d time.Duration) *big.Int {
	return new(big.Int).SetUint64(c.Now() + uint64(d/time.Second) + 10) //nolint:gosec // positive duration
}
