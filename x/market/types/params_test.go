package types_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/paw-chain/leasepay/x/market/types"
)

func TestSplitPrice(t *testing.T) {
	tests := []struct {
		name         string
		bps          uint32
		price        string
		wantProvider int64
		wantTake     int64
	}{
		{"default take", 200, "100", 98, 2},
		{"fraction dropped", 200, "101.7", 99, 2},
		{"take rounds down", 200, "49", 49, 0},
		{"no take", 0, "40", 40, 0},
		{"all take", 10000, "40", 0, 40},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := types.DefaultParams()
			p.TakeRateBps = tc.bps
			price := sdk.NewDecCoinFromDec("upaw", sdkmath.LegacyMustNewDecFromStr(tc.price))

			provider, take := p.SplitPrice(price)
			require.Equal(t, "upaw", provider.Denom)
			require.Equal(t, tc.wantProvider, provider.Amount.Int64())
			require.Equal(t, tc.wantTake, take.Amount.Int64())
		})
	}
}

func TestSplitPriceProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := types.DefaultParams()
		p.TakeRateBps = rapid.Uint32Range(0, 10000).Draw(t, "bps")
		whole := rapid.Int64Range(1, 1_000_000_000).Draw(t, "price")

		provider, take := p.SplitPrice(sdk.NewInt64DecCoin("upaw", whole))
		if provider.Amount.Add(take.Amount).Int64() != whole {
			t.Fatalf("split %s + %s does not add up to %d", provider, take, whole)
		}
		if take.Amount.IsNegative() || provider.Amount.IsNegative() {
			t.Fatalf("negative share: %s %s", provider, take)
		}
	})
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, types.DefaultParams().Validate())

	p := types.DefaultParams()
	p.TakeRateBps = 10001
	require.Error(t, p.Validate())

	p = types.DefaultParams()
	p.FeeReceiver = "nobody"
	require.Error(t, p.Validate())

	p = types.DefaultParams()
	p.OrderMaxBids = 0
	require.Error(t, p.Validate())
}
