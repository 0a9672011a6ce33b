package bridge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dodao/comet-market-updates/bridge"
	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/contracts"
	"github.com/dodao/comet-market-updates/internal/testutils/chaintest"
)

func TestNewRelayer_Validation(t *testing.T) {
	t.Parallel()

	l1 := chain.New(chaintest.MainnetSelector)
	l2 := chain.New(chaintest.PolygonSelector)

	tests := []struct {
		name string
		cfg  bridge.RelayerConfig
	}{
		{name: "missing l1", cfg: bridge.RelayerConfig{L2: l2, Endpoint: fxRoot}},
		{name: "missing l2", cfg: bridge.RelayerConfig{L1: l1, Endpoint: fxRoot}},
		{name: "missing endpoint", cfg: bridge.RelayerConfig{L1: l1, L2: l2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := bridge.NewRelayer(tt.cfg)
			assert.ErrorContains(t, err, "relayer config")
		})
	}
}

func TestRelayer_NotOutbox(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l1 := chain.New(chaintest.MainnetSelector, chain.WithLogger(zaptest.NewLogger(t)))
	l2 := chain.New(chaintest.PolygonSelector)
	owner := l1.NewAccount("owner")
	notOutbox := l1.Deploy(owner, contracts.NewCometProxyAdmin(owner))

	tests := []struct {
		name     string
		endpoint func() bridge.RelayerConfig
	}{
		{name: "no code", endpoint: func() bridge.RelayerConfig { return bridge.RelayerConfig{L1: l1, L2: l2, Endpoint: fxRoot} }},
		{name: "not an outbox", endpoint: func() bridge.RelayerConfig { return bridge.RelayerConfig{L1: l1, L2: l2, Endpoint: notOutbox} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := bridge.NewRelayer(tt.endpoint())
			require.NoError(t, err)

			_, err = r.Pending()
			require.ErrorIs(t, err, bridge.ErrNotOutbox)
			_, err = r.Relay(ctx)
			require.ErrorIs(t, err, bridge.ErrNotOutbox)
		})
	}
}

func TestRelayer_Pending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l1 := chain.New(chaintest.MainnetSelector)
	l2 := chain.New(chaintest.PolygonSelector)
	sender := l1.NewAccount("sender")
	root := l1.Deploy(sender, contracts.NewFxRoot())

	r, err := bridge.NewRelayer(bridge.RelayerConfig{L1: l1, L2: l2, Endpoint: root, L2Endpoint: fxRoot})
	require.NoError(t, err)

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = l1.Send(ctx, sender, root, nil, bridge.PolygonSendMessageToChild, receiver, []byte{0x01})
	require.NoError(t, err)

	pending, err = r.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, sender, pending[0].Sender)
	assert.Equal(t, receiver, pending[0].Target)
	assert.Equal(t, []byte{0x01}, pending[0].Data)
}
