package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/codec/address"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	banktestutil "github.com/cosmos/cosmos-sdk/x/bank/testutil"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
	minttypes "github.com/cosmos/cosmos-sdk/x/mint/types"
	"github.com/stretchr/testify/require"

	escrowkeeper "github.com/paw-chain/leasepay/x/escrow/keeper"
	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	marketkeeper "github.com/paw-chain/leasepay/x/market/keeper"
	markettypes "github.com/paw-chain/leasepay/x/market/types"
)

// Denom is the escrow denomination used by the test keepers.
const Denom = escrowtypes.DefaultDenom

// GenesisTime is the header time of the first test block.
var GenesisTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Fixture bundles the keepers and context of one test chain.
type Fixture struct {
	Ctx          sdk.Context
	EscrowKeeper *escrowkeeper.Keeper
	MarketKeeper *marketkeeper.Keeper
	BankKeeper   bankkeeper.BaseKeeper
}

// EscrowKeeper creates escrow and market keepers over a real bank keeper. The
// market keeper is registered as the escrow hooks.
func EscrowKeeper(t testing.TB) *Fixture {
	escrowStoreKey := storetypes.NewKVStoreKey(escrowtypes.StoreKey)
	marketStoreKey := storetypes.NewKVStoreKey(markettypes.StoreKey)
	authStoreKey := storetypes.NewKVStoreKey(authtypes.StoreKey)
	bankStoreKey := storetypes.NewKVStoreKey(banktypes.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(escrowStoreKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(marketStoreKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(authStoreKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(bankStoreKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	registry := codectypes.NewInterfaceRegistry()
	authtypes.RegisterInterfaces(registry)
	banktypes.RegisterInterfaces(registry)
	cdc := codec.NewProtoCodec(registry)
	authority := authtypes.NewModuleAddress(govtypes.ModuleName)

	maccPerms := map[string][]string{
		authtypes.FeeCollectorName: nil,
		minttypes.ModuleName:       {authtypes.Minter},
		escrowtypes.ModuleName:     nil,
	}

	accountKeeper := authkeeper.NewAccountKeeper(
		cdc,
		runtime.NewKVStoreService(authStoreKey),
		authtypes.ProtoBaseAccount,
		maccPerms,
		address.NewBech32Codec(sdk.GetConfig().GetBech32AccountAddrPrefix()),
		sdk.GetConfig().GetBech32AccountAddrPrefix(),
		authority.String(),
	)

	bankKeeper := bankkeeper.NewBaseKeeper(
		cdc,
		runtime.NewKVStoreService(bankStoreKey),
		accountKeeper,
		map[string]bool{},
		authority.String(),
		log.NewNopLogger(),
	)

	escrowKeeper := escrowkeeper.NewKeeper(escrowStoreKey, bankKeeper)
	marketKeeper := marketkeeper.NewKeeper(marketStoreKey, escrowKeeper)
	escrowKeeper.SetHooks(marketKeeper.Hooks())

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Height: 1, Time: GenesisTime}, false, log.NewNopLogger())

	marketParams := markettypes.DefaultParams()
	marketParams.BidMinDeposit = sdk.NewCoin(Denom, sdkmath.NewInt(1000))
	require.NoError(t, escrowKeeper.SetParams(ctx, escrowtypes.DefaultParams()))
	require.NoError(t, marketKeeper.SetParams(ctx, marketParams))

	return &Fixture{
		Ctx:          ctx,
		EscrowKeeper: escrowKeeper,
		MarketKeeper: marketKeeper,
		BankKeeper:   bankKeeper,
	}
}

// Fund mints amount of the escrow denom into addr.
func (f *Fixture) Fund(t testing.TB, addr sdk.AccAddress, amount int64) {
	require.NoError(t, banktestutil.FundAccount(f.Ctx, f.BankKeeper, addr, sdk.NewCoins(sdk.NewInt64Coin(Denom, amount))))
}

// Balance returns addr's balance of the escrow denom.
func (f *Fixture) Balance(addr sdk.AccAddress) sdkmath.Int {
	return f.BankKeeper.GetBalance(f.Ctx, addr, Denom).Amount
}

// NextBlock advances the context one block, six seconds later.
func (f *Fixture) NextBlock() {
	f.Ctx = f.Ctx.
		WithBlockHeight(f.Ctx.BlockHeight() + 1).
		WithBlockTime(f.Ctx.BlockTime().Add(escrowtypes.DefaultAvgBlockTime))
}

// EndBlock runs escrow settlement for the current block and advances to the next.
func (f *Fixture) EndBlock(t testing.TB) {
	require.NoError(t, f.EscrowKeeper.EndBlocker(f.Ctx))
	f.NextBlock()
}

// Coin is a shorthand for an escrow denom coin.
func Coin(amount int64) sdk.Coin {
	return sdk.NewInt64Coin(Denom, amount)
}

// Addr derives a deterministic test address from a label.
func Addr(label string) sdk.AccAddress {
	return authtypes.NewModuleAddress("leasepay-test/" + label)
}
