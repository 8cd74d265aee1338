package types_test

import (
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

func TestDepositValidateBasic(t *testing.T) {
	coin := sdk.NewInt64Coin(types.DefaultDenom, 10)

	tests := []struct {
		name    string
		deposit types.Deposit
		err     error
	}{
		{"balance only", types.NewDeposit(coin, types.SourceBalance), nil},
		{"grant then balance", types.NewDeposit(coin, types.SourceGrant, types.SourceBalance), nil},
		{"no sources", types.NewDeposit(coin), types.ErrInvalidSourceSet},
		{"duplicate", types.NewDeposit(coin, types.SourceGrant, types.SourceGrant), types.ErrInvalidSourceSet},
		{"unknown", types.NewDeposit(coin, types.SourceInvalid), types.ErrInvalidSourceSet},
		{"zero amount", types.NewDeposit(sdk.NewInt64Coin(types.DefaultDenom, 0), types.SourceBalance), types.ErrInvalidDeposit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.deposit.ValidateBasic()
			if tc.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestParseSources(t *testing.T) {
	sources, err := types.ParseSources("grant, balance")
	require.NoError(t, err)
	require.Equal(t, []types.Source{types.SourceGrant, types.SourceBalance}, sources)

	_, err = types.ParseSources("grant,wallet")
	require.Error(t, err)
}

func TestResolvedFundingFunds(t *testing.T) {
	funding := types.ResolvedFunding{Draws: []types.Draw{
		{Source: types.SourceGrant, Payer: "payer", Granter: "granter", Amount: sdk.NewInt64Coin(types.DefaultDenom, 3)},
		{Source: types.SourceBalance, Payer: "payer", Amount: sdk.NewInt64Coin(types.DefaultDenom, 7)},
	}}

	require.Equal(t, int64(3), funding.AmountFrom(types.SourceGrant).Int64())
	require.Equal(t, int64(7), funding.AmountFrom(types.SourceBalance).Int64())
	require.Equal(t, []types.Fund{
		{Source: types.SourceGrant, Depositor: "granter", Amount: sdk.NewInt64Coin(types.DefaultDenom, 3)},
		{Source: types.SourceBalance, Depositor: "payer", Amount: sdk.NewInt64Coin(types.DefaultDenom, 7)},
	}, funding.Funds())
}
