package migrations_test

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodao/comet-market-updates/bridge"
	"github.com/dodao/comet-market-updates/internal/testutils/chaintest"
	"github.com/dodao/comet-market-updates/migrations"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(cfg *migrations.Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*migrations.Config) {},
		},
		{
			name:    "missing name",
			mutate:  func(cfg *migrations.Config) { cfg.Name = "" },
			wantErr: "Config.Name",
		},
		{
			name:    "unknown network",
			mutate:  func(cfg *migrations.Config) { cfg.Network = "optimism" },
			wantErr: "Config.Network",
		},
		{
			name:    "no comet proxies",
			mutate:  func(cfg *migrations.Config) { cfg.CometProxies = nil },
			wantErr: "Config.CometProxies",
		},
		{
			name:    "zero comet proxy",
			mutate:  func(cfg *migrations.Config) { cfg.CometProxies = []common.Address{{}} },
			wantErr: "Config.CometProxies[0]",
		},
		{
			name:    "missing checker",
			mutate:  func(cfg *migrations.Config) { cfg.MarketAdminPermissionChecker = common.Address{} },
			wantErr: "Config.MarketAdminPermissionChecker",
		},
		{
			name:    "missing description",
			mutate:  func(cfg *migrations.Config) { cfg.Description = "" },
			wantErr: "Config.Description",
		},
		{
			name:    "bridge without a remote chain",
			mutate:  func(cfg *migrations.Config) { cfg.Bridge = bridge.KindArbitrum },
			wantErr: "does not match chains",
		},
		{
			name:    "remote chain without a bridge",
			mutate:  func(cfg *migrations.Config) { cfg.Chain = chaintest.ArbitrumSelector },
			wantErr: "does not match chains",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := migrations.MainnetUSDC()
			tt.mutate(&cfg)

			m, err := migrations.New(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, cfg.Name, m.Name())

				return
			}
			require.ErrorIs(t, err, migrations.ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Nil(t, m)
		})
	}
}

func TestAll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		network         migrations.Network
		name            string
		chain           uint64
		bridged         bool
		comets          int
		wantDescription string
	}{
		{migrations.NetworkMainnet, "1729696345_gov_market_updates", chaintest.MainnetRawSelector, false, 4, migrations.MarketUpdatesDescription},
		{migrations.NetworkArbitrum, "1729693349_gov_market_updates", chaintest.ArbitrumRawSelector, true, 4, migrations.MarketUpdatesDescription},
		{migrations.NetworkPolygon, "1729698710_gov_market_updates", chaintest.PolygonRawSelector, true, 2, migrations.MarketUpdatesDescription},
		{migrations.NetworkScroll, "1728988057_gov_market_updates", chaintest.ScrollRawSelector, true, 1, migrations.ScrollMarketUpdatesDescription},
		{migrations.NetworkFuji, "1729695741_gov_market_updates", chaintest.FujiRawSelector, false, 1, migrations.MarketUpdatesDescription},
	}

	all := migrations.All()
	require.Len(t, all, len(tests))

	for i, tt := range tests {
		t.Run(string(tt.network), func(t *testing.T) {
			t.Parallel()

			m, err := migrations.ForNetwork(tt.network)
			require.NoError(t, err)
			assert.Equal(t, all[i].Name(), m.Name())

			cfg := m.Config()
			assert.Equal(t, tt.name, m.Name())
			assert.Equal(t, tt.chain, uint64(cfg.Chain))
			assert.Equal(t, tt.bridged, cfg.Bridged())
			assert.Len(t, cfg.CometProxies, tt.comets)
			assert.Equal(t, tt.wantDescription, cfg.Description)
			assert.Equal(t, string(tt.network)+"/usdc/"+tt.name, m.String())
			if !tt.bridged {
				assert.Equal(t, cfg.Chain, cfg.GovernanceChain)
			} else {
				assert.Equal(t, chaintest.MainnetSelector, cfg.GovernanceChain)
			}
		})
	}

	_, err := migrations.ForNetwork("base")
	require.Error(t, err)
}

func TestMarketUpdatesDescription(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasPrefix(migrations.MarketUpdatesDescription, "DoDAO has been examining"))
	assert.True(t, strings.HasSuffix(migrations.MarketUpdatesDescription, "\n"))
	assert.NotEqual(t, migrations.MarketUpdatesDescription, migrations.ScrollMarketUpdatesDescription)
}
