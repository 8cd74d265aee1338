package keeper

import (
	"testing"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/leasepay/app"
)

// SetupTestApp opens a full ledger over an in-memory database with genesis
// committed as block 1.
func SetupTestApp(t testing.TB) *app.App {
	t.Helper()
	testApp, err := app.New(log.NewNopLogger(), dbm.NewMemDB(), app.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = testApp.Close() })
	return testApp
}

// FundApp mints amount of the bond denom to addr on the block being built.
func FundApp(t testing.TB, a *app.App, addr sdk.AccAddress, amount int64) {
	t.Helper()
	require.NoError(t, a.Faucet(addr, sdk.NewCoins(sdk.NewInt64Coin(app.BondDenom, amount))))
}
