package types //nolint:revive,nolintlint // allow pkg name 'types'

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chainsel "github.com/smartcontractkit/chain-selectors"
)

func TestGetChainSelectorFamily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    ChainSelector
		want    string
		wantErr error
	}{
		{
			name: "success: mainnet",
			give: ChainSelector(chainsel.ETHEREUM_MAINNET.Selector),
			want: chainsel.FamilyEVM,
		},
		{
			name: "success: arbitrum",
			give: ChainSelector(chainsel.ETHEREUM_MAINNET_ARBITRUM_1.Selector),
			want: chainsel.FamilyEVM,
		},
		{
			name:    "failure: solana is not supported",
			give:    ChainSelector(chainsel.SOLANA_DEVNET.Selector),
			wantErr: ErrUnsupportedChainFamily,
		},
		{
			name:    "failure: unknown selector",
			give:    0,
			wantErr: ErrChainFamilyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := GetChainSelectorFamily(tt.give)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChainSelector_EVMChainID(t *testing.T) {
	t.Parallel()

	id, err := ChainSelector(chainsel.POLYGON_MAINNET.Selector).EVMChainID()
	require.NoError(t, err)
	assert.Equal(t, uint64(137), id)

	_, err = ChainSelector(0).EVMChainID()
	require.ErrorIs(t, err, ErrChainFamilyNotFound)
}

func TestChainSelector_Name(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ethereum-mainnet", ChainSelector(chainsel.ETHEREUM_MAINNET.Selector).Name())
	assert.Equal(t, "0", ChainSelector(0).Name())
}
