package safecast

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Uint64ToInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    uint64
		want    int64
		wantErr bool
	}{
		{name: "Valid uint64 within range", give: 172800, want: 172800},
		{name: "Uint64 exceeds int64 max value", give: uint64(math.MaxInt64) + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Uint64ToInt64(tt.give)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func Test_BigToUint64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    *big.Int
		want    uint64
		wantErr bool
	}{
		{name: "nil is zero", give: nil, want: 0},
		{name: "Valid big within range", give: big.NewInt(1_000_000), want: 1_000_000},
		{name: "Negative big", give: big.NewInt(-5), wantErr: true},
		{name: "Big exceeds uint64", give: new(big.Int).Lsh(big.NewInt(1), 64), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := BigToUint64(tt.give)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
