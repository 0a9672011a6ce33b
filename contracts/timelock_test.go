package contracts_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/contracts"
	"github.com/dodao/comet-market-updates/types"
)

func TestTimelock_QueueAndExecute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		wait    time.Duration
		queue   bool
		cancel  bool
		wantErr error
	}{
		{name: "success", wait: twoDays + time.Minute, queue: true},
		{name: "failure: not queued", wait: twoDays + time.Minute, wantErr: contracts.ErrTxNotQueued},
		{name: "failure: before eta", wait: time.Hour, queue: true, wantErr: contracts.ErrTxTimelocked},
		{name: "failure: stale", wait: twoDays + types.GracePeriod.Duration + time.Hour, queue: true, wantErr: contracts.ErrTxStale},
		{name: "failure: canceled", wait: twoDays + time.Minute, queue: true, cancel: true, wantErr: contracts.ErrTxNotQueued},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			c := newChain(t)
			admin := c.NewAccount("admin")
			timelock := c.Deploy(admin, contracts.NewTimelock(admin, types.NewDuration(twoDays)))
			target := newRecorder()
			targetAddr := c.Deploy(admin, target)

			data := calldata(t, "record(uint256)", big.NewInt(42))
			eta := etaAfter(c, twoDays)
			if tt.queue {
				receipt, err := c.Send(ctx, admin, timelock, nil, queueTx, targetAddr, new(big.Int), "record(uint256)", data, eta)
				require.NoError(t, err)
				queued, ok := receipt.Event("QueueTransaction")
				require.True(t, ok)

				hash, err := contracts.TxHash(targetAddr, nil, "record(uint256)", data, eta)
				require.NoError(t, err)
				assert.Equal(t, hash, queued.Args["txHash"])
				assert.True(t, queryBool(t, c, timelock, "queuedTransactions(bytes32)", hash))
			}
			if tt.cancel {
				_, err := c.Send(ctx, admin, timelock, nil, cancelTx, targetAddr, new(big.Int), "record(uint256)", data, eta)
				require.NoError(t, err)
			}

			c.IncreaseTime(tt.wait)
			_, err := c.Send(ctx, admin, timelock, nil, executeTx, targetAddr, new(big.Int), "record(uint256)", data, eta)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, queryUint(t, c, targetAddr, "value()").Sign())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, big.NewInt(42), queryUint(t, c, targetAddr, "value()"))
			assert.Equal(t, timelock, queryAddress(t, c, targetAddr, "caller()"))

			// A transaction executes once.
			_, err = c.Send(ctx, admin, timelock, nil, executeTx, targetAddr, new(big.Int), "record(uint256)", data, eta)
			require.ErrorIs(t, err, contracts.ErrTxNotQueued)
		})
	}
}

func TestTimelock_Errors(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	c := newChain(t)
	admin := c.NewAccount("admin")
	stranger := c.NewAccount("stranger")
	timelock := c.Deploy(admin, contracts.NewTimelock(admin, types.NewDuration(twoDays)))
	target := c.Deploy(admin, newRecorder())

	_, err := c.Send(ctx, stranger, timelock, nil, queueTx, target, new(big.Int), "fail()", []byte{}, etaAfter(c, twoDays))
	require.ErrorContains(t, err, "Timelock::queueTransaction: Call must come from admin.")

	_, err = c.Send(ctx, admin, timelock, nil, queueTx, target, new(big.Int), "fail()", []byte{}, etaAfter(c, time.Hour))
	require.ErrorIs(t, err, contracts.ErrEtaBelowDelay)

	// The call failure is kept as the cause.
	eta := etaAfter(c, twoDays)
	_, err = c.Send(ctx, admin, timelock, nil, queueTx, target, new(big.Int), "fail()", []byte{}, eta)
	require.NoError(t, err)
	c.IncreaseTime(twoDays + time.Minute)
	_, err = c.Send(ctx, admin, timelock, nil, executeTx, target, new(big.Int), "fail()", []byte{}, eta)
	require.ErrorIs(t, err, contracts.ErrTxExecutionFailed)
	require.ErrorIs(t, err, chain.Revert("recorder: fail"))

	// Admin only functions must come from the timelock itself.
	_, err = c.Send(ctx, admin, timelock, nil, "setDelay(uint256)", big.NewInt(1))
	require.ErrorContains(t, err, "Call must come from Timelock.")
	_, err = c.Send(ctx, admin, timelock, nil, "setPendingAdmin(address)", stranger)
	require.ErrorContains(t, err, "Call must come from Timelock.")
	_, err = c.Send(ctx, stranger, timelock, nil, "acceptAdmin()")
	require.ErrorContains(t, err, "Call must come from pendingAdmin.")

	assert.Equal(t, types.GracePeriod.BigSecs(), queryUint(t, c, timelock, "GRACE_PERIOD()"))
	assert.Equal(t, types.MaximumDelay.BigSecs(), queryUint(t, c, timelock, "MAXIMUM_DELAY()"))
}

func TestTimelock_TransferAdmin(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	c := newChain(t)
	admin := c.NewAccount("admin")
	next := c.NewAccount("next")
	timelock := c.Deploy(admin, contracts.NewTimelock(admin, types.NewDuration(twoDays)))

	data := calldata(t, "setPendingAdmin(address)", next)
	eta := etaAfter(c, twoDays)
	_, err := c.Send(ctx, admin, timelock, nil, queueTx, timelock, new(big.Int), "setPendingAdmin(address)", data, eta)
	require.NoError(t, err)
	c.IncreaseTime(twoDays + time.Minute)
	_, err = c.Send(ctx, admin, timelock, nil, executeTx, timelock, new(big.Int), "setPendingAdmin(address)", data, eta)
	require.NoError(t, err)
	assert.Equal(t, next, queryAddress(t, c, timelock, "pendingAdmin()"))

	_, err = c.Send(ctx, next, timelock, nil, "acceptAdmin()")
	require.NoError(t, err)
	assert.Equal(t, next, queryAddress(t, c, timelock, "admin()"))
	assert.Equal(t, common.Address{}, queryAddress(t, c, timelock, "pendingAdmin()"))
}

func TestNewMarketUpdateTimelock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		governor common.Address
		delay    types.Duration
		wantErr  error
	}{
		{name: "success", governor: common.HexToAddress("0x1"), delay: types.MarketUpdateDelay},
		{name: "failure: zero governor", delay: types.MarketUpdateDelay, wantErr: contracts.ErrInvalidAddress},
		{
			name:     "failure: delay above maximum",
			governor: common.HexToAddress("0x1"),
			delay:    types.NewDuration(types.MaximumDelay.Duration + time.Second),
			wantErr:  contracts.ErrDelayTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := contracts.NewMarketUpdateTimelock(tt.governor, tt.delay)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}
			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestMarketUpdateTimelock_Roles(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	c := newChain(t)
	governor := c.NewAccount("governor")
	proposer := c.NewAccount("proposer")
	stranger := c.NewAccount("stranger")
	mut, err := contracts.NewMarketUpdateTimelock(governor, types.MarketUpdateDelay)
	require.NoError(t, err)
	timelock := c.Deploy(governor, mut)
	target := c.Deploy(governor, newRecorder())

	assert.Equal(t, governor, queryAddress(t, c, timelock, "governor()"))
	assert.Equal(t, types.MarketUpdateDelay.BigSecs(), queryUint(t, c, timelock, "delay()"))

	_, err = c.Send(ctx, stranger, timelock, nil, "setMarketUpdateProposer(address)", proposer)
	require.ErrorContains(t, err, "setMarketUpdateProposer: Call must come from admin.")
	_, err = c.Send(ctx, governor, timelock, nil, "setMarketUpdateProposer(address)", proposer)
	require.NoError(t, err)
	assert.Equal(t, proposer, queryAddress(t, c, timelock, "marketUpdateProposer()"))

	data := calldata(t, "record(uint256)", big.NewInt(7))
	eta := etaAfter(c, types.MarketUpdateDelay.Duration)
	_, err = c.Send(ctx, stranger, timelock, nil, queueTx, target, new(big.Int), "record(uint256)", data, eta)
	require.ErrorIs(t, err, contracts.ErrTimelockUnauthorized)

	for _, from := range []common.Address{proposer, governor} {
		_, err = c.Send(ctx, from, timelock, nil, queueTx, target, new(big.Int), "record(uint256)", data, eta)
		require.NoError(t, err)
	}

	c.IncreaseTime(types.MarketUpdateDelay.Duration + time.Minute)
	_, err = c.Send(ctx, stranger, timelock, nil, executeTx, target, new(big.Int), "record(uint256)", data, eta)
	require.ErrorIs(t, err, contracts.ErrTimelockUnauthorized)
	_, err = c.Send(ctx, proposer, timelock, nil, executeTx, target, new(big.Int), "record(uint256)", data, eta)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), queryUint(t, c, target, "value()"))

	// The legacy setter name is kept.
	_, err = c.Send(ctx, governor, timelock, nil, "setMarketAdmin(address)", stranger)
	require.NoError(t, err)
	assert.Equal(t, stranger, queryAddress(t, c, timelock, "marketUpdateProposer()"))

	_, err = c.Send(ctx, stranger, timelock, nil, "setAdmin(address)", stranger)
	require.ErrorIs(t, err, contracts.ErrTimelockNotAdmin)
	_, err = c.Send(ctx, governor, timelock, nil, "setDelay(uint256)", new(big.Int).Add(types.MaximumDelay.BigSecs(), big.NewInt(1)))
	require.ErrorIs(t, err, contracts.ErrDelayTooLarge)
	_, err = c.Send(ctx, governor, timelock, nil, "setDelay(uint256)", big.NewInt(3600))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3600), queryUint(t, c, timelock, "delay()"))
}
