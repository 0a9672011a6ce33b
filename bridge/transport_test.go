package bridge_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodao/comet-market-updates/bridge"
	"github.com/dodao/comet-market-updates/internal/utils/abi"
)

var (
	inbox     = common.HexToAddress("0x4Dbd4fc535Ac27206064B68FfCf827b0A60BAB3f")
	fxRoot    = common.HexToAddress("0xfe5e5D361b2ad62c541bAb87C45a0B9B018389a2")
	messenger = common.HexToAddress("0x6774Bcbd5ceCeF1336b5300fb5186a12DDD8b367")
	receiver  = common.HexToAddress("0x42480C37B249e33aABaf4c22B20235656bd38068")
	l2Admin   = common.HexToAddress("0x3fB4d38ea7EC20D91917c09591490Eeda38Cf88A")
)

type failingEstimator struct{}

func (failingEstimator) EstimateRetryable(context.Context, common.Address, []byte) (bridge.GasParams, error) {
	return bridge.GasParams{}, errors.New("node unavailable")
}

type incompleteEstimator struct{}

func (incompleteEstimator) EstimateRetryable(context.Context, common.Address, []byte) (bridge.GasParams, error) {
	return bridge.GasParams{GasLimit: big.NewInt(1)}, nil
}

func TestArbitrumTransport_Wrap(t *testing.T) {
	t.Parallel()

	payload := []byte{0x01, 0x02}
	tr := bridge.ArbitrumTransport{
		Inbox:         inbox,
		RefundAddress: l2Admin,
		Estimator:     bridge.StaticEstimator(bridge.DefaultArbitrumGasParams),
	}
	assert.Equal(t, bridge.KindArbitrum, tr.Kind())

	action, err := tr.Wrap(context.Background(), receiver, payload)
	require.NoError(t, err)
	assert.Equal(t, inbox, action.Target)
	assert.Equal(t, bridge.ArbitrumCreateRetryableTicket, action.Signature)
	assert.Zero(t, big.NewInt(1_200_000_000_000_000).Cmp(action.CallValue()))

	args, err := abi.DecodeArgs(action.Signature, action.Calldata)
	require.NoError(t, err)
	require.Len(t, args, 8)
	assert.Equal(t, receiver, args[0])
	assert.Zero(t, args[1].(*big.Int).Sign())
	assert.Equal(t, l2Admin, args[3])
	assert.Equal(t, l2Admin, args[4])
	assert.Equal(t, payload, args[7])
}

func TestArbitrumTransport_Wrap_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tr      bridge.ArbitrumTransport
		wantErr string
	}{
		{
			name:    "missing inbox",
			tr:      bridge.ArbitrumTransport{RefundAddress: l2Admin, Estimator: bridge.StaticEstimator(bridge.DefaultArbitrumGasParams)},
			wantErr: "arbitrum transport",
		},
		{
			name:    "missing estimator",
			tr:      bridge.ArbitrumTransport{Inbox: inbox, RefundAddress: l2Admin},
			wantErr: "arbitrum transport",
		},
		{
			name:    "estimator failure",
			tr:      bridge.ArbitrumTransport{Inbox: inbox, RefundAddress: l2Admin, Estimator: failingEstimator{}},
			wantErr: "estimate retryable ticket: node unavailable",
		},
		{
			name:    "incomplete gas params",
			tr:      bridge.ArbitrumTransport{Inbox: inbox, RefundAddress: l2Admin, Estimator: incompleteEstimator{}},
			wantErr: "retryable ticket gas params",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.tr.Wrap(context.Background(), receiver, []byte{0x01})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPolygonTransport_Wrap(t *testing.T) {
	t.Parallel()

	action, err := bridge.PolygonTransport{FxRoot: fxRoot}.Wrap(context.Background(), receiver, []byte{0xaa})
	require.NoError(t, err)
	assert.Equal(t, fxRoot, action.Target)
	assert.Zero(t, action.CallValue().Sign())

	args, err := abi.DecodeArgs(bridge.PolygonSendMessageToChild, action.Calldata)
	require.NoError(t, err)
	assert.Equal(t, receiver, args[0])
	assert.Equal(t, []byte{0xaa}, args[1])

	_, err = bridge.PolygonTransport{}.Wrap(context.Background(), receiver, nil)
	assert.ErrorContains(t, err, "polygon transport")
}

func TestScrollTransport_Wrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		tr           bridge.ScrollTransport
		wantGasLimit uint64
		wantFee      *big.Int
	}{
		{
			name:         "defaults",
			tr:           bridge.ScrollTransport{Messenger: messenger},
			wantGasLimit: bridge.DefaultScrollGasLimit,
			wantFee:      bridge.DefaultScrollFee,
		},
		{
			name:         "overrides",
			tr:           bridge.ScrollTransport{Messenger: messenger, GasLimit: 1_000_000, Fee: big.NewInt(5)},
			wantGasLimit: 1_000_000,
			wantFee:      big.NewInt(5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			action, err := tt.tr.Wrap(context.Background(), receiver, []byte{0xbb})
			require.NoError(t, err)
			assert.Equal(t, messenger, action.Target)
			assert.Zero(t, tt.wantFee.Cmp(action.CallValue()))

			args, err := abi.DecodeArgs(bridge.ScrollSendMessage, action.Calldata)
			require.NoError(t, err)
			assert.Equal(t, receiver, args[0])
			assert.Equal(t, []byte{0xbb}, args[2])
			assert.Equal(t, tt.wantGasLimit, args[3].(*big.Int).Uint64())
		})
	}

	_, err := bridge.ScrollTransport{}.Wrap(context.Background(), receiver, nil)
	assert.ErrorContains(t, err, "scroll transport")
}
