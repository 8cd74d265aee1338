package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

// Keeper of the escrow store
type Keeper struct {
	storeKey   storetypes.StoreKey
	bankKeeper types.BankKeeper
	hooks      types.EscrowHooks

	metrics *EscrowMetrics
}

type kvStoreProvider interface {
	KVStore(key storetypes.StoreKey) storetypes.KVStore
}

// NewKeeper creates a new escrow Keeper instance
func NewKeeper(key storetypes.StoreKey, bankKeeper types.BankKeeper) *Keeper {
	return &Keeper{
		storeKey:   key,
		bankKeeper: bankKeeper,
		metrics:    NewEscrowMetrics(),
	}
}

// SetHooks registers the escrow hooks. It may only be called once.
func (k *Keeper) SetHooks(hooks ...types.EscrowHooks) *Keeper {
	if k.hooks != nil {
		panic("cannot set escrow hooks twice")
	}
	k.hooks = types.NewMultiEscrowHooks(hooks...)
	return k
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// ModuleAddress is the account holding every escrowed coin.
func (k Keeper) ModuleAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(types.ModuleName)
}

// getStore returns the KVStore for the escrow module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	if provider, ok := ctx.(kvStoreProvider); ok {
		return provider.KVStore(k.storeKey)
	}

	unwrapped := sdk.UnwrapSDKContext(ctx)
	return unwrapped.KVStore(k.storeKey)
}

func (k Keeper) afterAccountClosed(ctx context.Context, account types.Account) error {
	if k.hooks == nil {
		return nil
	}
	return k.hooks.OnAccountClosed(ctx, account)
}

func (k Keeper) afterPaymentClosed(ctx context.Context, payment types.Payment) error {
	if k.hooks == nil {
		return nil
	}
	return k.hooks.OnPaymentClosed(ctx, payment)
}
