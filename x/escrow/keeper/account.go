package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	storeprefix "cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

// GetAccount returns the account with the given id in any state.
func (k Keeper) GetAccount(ctx context.Context, id types.AccountID) (types.Account, error) {
	bz := k.getStore(ctx).Get(AccountKey(id))
	if bz == nil {
		return types.Account{}, types.ErrAccountNotFound.Wrapf("account %s", id)
	}

	var acc types.Account
	if err := json.Unmarshal(bz, &acc); err != nil {
		return types.Account{}, fmt.Errorf("failed to unmarshal account %s: %w", id, err)
	}
	return acc, nil
}

// HasAccount reports whether an account with the id exists in any state.
func (k Keeper) HasAccount(ctx context.Context, id types.AccountID) bool {
	return k.getStore(ctx).Has(AccountKey(id))
}

// setAccount stores the account and keeps the state index in step. prev is the
// state the index currently holds, or StateInvalid for a new account.
func (k Keeper) setAccount(ctx context.Context, acc types.Account, prev types.State) error {
	bz, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("failed to marshal account %s: %w", acc.ID, err)
	}

	store := k.getStore(ctx)
	store.Set(AccountKey(acc.ID), bz)
	if prev != acc.State {
		if prev != types.StateInvalid {
			store.Delete(AccountStateKey(prev, acc.ID))
		}
		store.Set(AccountStateKey(acc.State, acc.ID), []byte{})
	}
	return nil
}

// AccountOpen creates an open account funded by the deposit. The deposit is
// resolved against the depositor's balance and grants held by the depositor.
func (k Keeper) AccountOpen(
	ctx context.Context,
	id types.AccountID,
	depositor sdk.AccAddress,
	msgKind string,
	deposit types.Deposit,
) (types.Account, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := id.Validate(); err != nil {
		return types.Account{}, err
	}
	if k.HasAccount(ctx, id) {
		return types.Account{}, types.ErrAccountExists.Wrapf("account %s", id)
	}

	funds, err := k.Deposit(ctx, depositor, id.Scope, msgKind, deposit)
	if err != nil {
		return types.Account{}, err
	}

	acc := types.NewAccount(id, deposit.Amount.Denom, funds, sdkCtx.BlockHeight())
	if err := k.setAccount(ctx, acc, types.StateInvalid); err != nil {
		return types.Account{}, err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeAccountOpened,
			sdk.NewAttribute(types.AttributeKeyAccount, id.String()),
			sdk.NewAttribute(types.AttributeKeyScope, id.Scope.String()),
			sdk.NewAttribute(types.AttributeKeyOwner, id.Owner),
			sdk.NewAttribute(types.AttributeKeyBalance, acc.Balance.String()),
		),
	)

	k.Logger(ctx).Debug("escrow account opened", "account", id.String(), "balance", acc.Balance.String())
	return acc, nil
}

// AccountDeposit credits an open account. Closed and overdrawn accounts reject credits.
func (k Keeper) AccountDeposit(
	ctx context.Context,
	id types.AccountID,
	depositor sdk.AccAddress,
	msgKind string,
	deposit types.Deposit,
) ([]types.Fund, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	acc, err := k.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc.State != types.StateOpen {
		return nil, types.ErrAccountClosed.Wrapf("account %s is %s", id, acc.State)
	}

	funds, err := k.Deposit(ctx, depositor, id.Scope, msgKind, deposit)
	if err != nil {
		return nil, err
	}

	acc.AddFunds(funds)
	if err := k.setAccount(ctx, acc, acc.State); err != nil {
		return nil, err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeAccountDeposit,
			sdk.NewAttribute(types.AttributeKeyAccount, id.String()),
			sdk.NewAttribute(types.AttributeKeyDepositor, depositor.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, deposit.Amount.String()),
			sdk.NewAttribute(types.AttributeKeyBalance, acc.Balance.String()),
		),
	)

	return funds, nil
}

// AccountClose closes an open account, closes its open payments and refunds the
// remaining balance to its depositors. Closing an account that is already closed
// or overdrawn is a no-op.
func (k Keeper) AccountClose(ctx context.Context, id types.AccountID) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	acc, err := k.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if acc.State != types.StateOpen {
		return nil
	}

	// Refund first so a failed transfer leaves the account untouched.
	cacheCtx, writeFn := sdkCtx.CacheContext()
	for _, refund := range acc.RefundPlan() {
		to, err := sdk.AccAddressFromBech32(refund.Depositor)
		if err != nil {
			return fmt.Errorf("invalid depositor %q on account %s: %w", refund.Depositor, id, err)
		}
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(cacheCtx, types.ModuleName, to, sdk.NewCoins(refund.Amount)); err != nil {
			return fmt.Errorf("failed to refund %s to %s: %w", refund.Amount, refund.Depositor, err)
		}
		acc.Balance = acc.Balance.Sub(refund.Amount)
		acc.Refunded = acc.Refunded.Add(refund.Amount)

		cacheCtx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeAccountRefund,
				sdk.NewAttribute(types.AttributeKeyAccount, id.String()),
				sdk.NewAttribute(types.AttributeKeyDepositor, refund.Depositor),
				sdk.NewAttribute(types.AttributeKeyAmount, refund.Amount.String()),
			),
		)
	}
	if !acc.Balance.IsZero() {
		return types.ErrInvalidState.Wrapf("account %s has %s left after refunds", id, acc.Balance)
	}

	acc.State = types.StateClosed
	if err := k.setAccount(cacheCtx, acc, types.StateOpen); err != nil {
		return err
	}

	closed, err := k.closeAccountPayments(cacheCtx, id, types.StateClosed)
	if err != nil {
		return err
	}
	writeFn()

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeAccountClosed,
			sdk.NewAttribute(types.AttributeKeyAccount, id.String()),
			sdk.NewAttribute(types.AttributeKeyRefunded, acc.Refunded.String()),
		),
	)
	k.metrics.AccountsClosed.WithLabelValues(id.Scope.String(), types.StateClosed.String()).Inc()

	return k.notifyClosed(ctx, acc, closed)
}

// markOverdrawn moves an open account to overdrawn and closes its payments with
// the same state. Only settlement calls it, once the balance is exhausted.
func (k Keeper) markOverdrawn(ctx context.Context, acc types.Account) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if acc.State != types.StateOpen {
		return types.ErrInvalidState.Wrapf("account %s is %s", acc.ID, acc.State)
	}

	acc.State = types.StateOverdrawn
	if err := k.setAccount(ctx, acc, types.StateOpen); err != nil {
		return err
	}

	closed, err := k.closeAccountPayments(ctx, acc.ID, types.StateOverdrawn)
	if err != nil {
		return err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeAccountOverdrawn,
			sdk.NewAttribute(types.AttributeKeyAccount, acc.ID.String()),
			sdk.NewAttribute(types.AttributeKeyHeight, fmt.Sprintf("%d", sdkCtx.BlockHeight())),
		),
	)
	k.metrics.AccountsClosed.WithLabelValues(acc.ID.Scope.String(), types.StateOverdrawn.String()).Inc()
	emitOverdrawnTelemetry(acc.ID.Scope)

	k.Logger(ctx).Info("escrow account overdrawn", "account", acc.ID.String(), "payments", len(closed))
	return k.notifyClosed(ctx, acc, closed)
}

// notifyClosed runs the hooks for closed payments first, then for the account.
func (k Keeper) notifyClosed(ctx context.Context, acc types.Account, payments []types.Payment) error {
	for _, p := range payments {
		if err := k.afterPaymentClosed(ctx, p); err != nil {
			return fmt.Errorf("payment %s close hook: %w", p.ID, err)
		}
	}
	if err := k.afterAccountClosed(ctx, acc); err != nil {
		return fmt.Errorf("account %s close hook: %w", acc.ID, err)
	}
	return nil
}

// IterateAccountsByState walks accounts in the given state in identity order
// until cb returns true.
func (k Keeper) IterateAccountsByState(ctx context.Context, state types.State, cb func(types.Account) (stop bool, err error)) error {
	store := storeprefix.NewStore(k.getStore(ctx), AccountStatePrefix(state))
	iterator := store.Iterator(nil, nil)
	defer iterator.Close()

	accounts := k.getStore(ctx)
	for ; iterator.Valid(); iterator.Next() {
		bz := accounts.Get(concat(AccountKeyPrefix, iterator.Key()))
		if bz == nil {
			return types.ErrInvalidState.Wrapf("state index points at missing account %X", iterator.Key())
		}
		var acc types.Account
		if err := json.Unmarshal(bz, &acc); err != nil {
			return fmt.Errorf("failed to unmarshal account: %w", err)
		}
		stop, err := cb(acc)
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return nil
}

// IterateAccounts walks every account in identity order.
func (k Keeper) IterateAccounts(ctx context.Context, cb func(types.Account) (stop bool, err error)) error {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), AccountKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var acc types.Account
		if err := json.Unmarshal(iterator.Value(), &acc); err != nil {
			return fmt.Errorf("failed to unmarshal account: %w", err)
		}
		stop, err := cb(acc)
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return nil
}
