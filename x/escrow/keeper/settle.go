package keeper

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

// Allocate splits balance between payment rates first-come-first-served in the
// order given. Each rate receives min(rate, what is left); once the balance runs
// out the remaining rates receive zero. unmet reports whether any rate was not
// paid in full. The sum of debits never exceeds balance.
//
// SettleAccount passes rates in store key order. Payment xids are length
// prefixed in the key, so a shorter xid sorts first and equal lengths compare
// bytewise: "b" is paid before "aa".
func Allocate(balance sdkmath.Int, rates []sdkmath.Int) (debits []sdkmath.Int, remaining sdkmath.Int, unmet bool) {
	remaining = balance
	if remaining.IsNegative() {
		remaining = sdkmath.ZeroInt()
	}
	debits = make([]sdkmath.Int, len(rates))
	for i, rate := range rates {
		if rate.IsNegative() {
			rate = sdkmath.ZeroInt()
		}
		debit := sdkmath.MinInt(rate, remaining)
		if debit.LT(rate) {
			unmet = true
		}
		debits[i] = debit
		remaining = remaining.Sub(debit)
	}
	return debits, remaining, unmet
}

// SettlementResult summarises one account's settlement for a block.
type SettlementResult struct {
	Account   types.AccountID
	Paid      sdkmath.Int
	Payments  int
	Overdrawn bool
}

// SettleAccount pays one block's worth of every open payment on an open account,
// at most once per height. Payments are paid in identity order. Transfers and
// ledger updates commit together or not at all. If the balance is exhausted while
// some payment went short, the account is marked overdrawn.
func (k Keeper) SettleAccount(ctx context.Context, id types.AccountID) (SettlementResult, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	result := SettlementResult{Account: id, Paid: sdkmath.ZeroInt()}

	acc, err := k.GetAccount(ctx, id)
	if err != nil {
		return result, err
	}
	if acc.State != types.StateOpen || acc.SettledAt >= sdkCtx.BlockHeight() {
		return result, nil
	}
	payments, err := k.AccountPayments(ctx, id, types.StateOpen)
	if err != nil {
		return result, err
	}
	if len(payments) == 0 {
		return result, nil
	}

	rates := make([]sdkmath.Int, len(payments))
	for i, p := range payments {
		rates[i] = p.Rate.Amount
	}
	debits, remaining, unmet := Allocate(acc.Balance.Amount, rates)

	cacheCtx, writeFn := sdkCtx.CacheContext()
	for i, debit := range debits {
		if !debit.IsPositive() {
			continue
		}
		p := payments[i]
		coin := sdk.NewCoin(acc.Balance.Denom, debit)

		recipient, err := sdk.AccAddressFromBech32(p.Recipient)
		if err != nil {
			return result, fmt.Errorf("invalid recipient on payment %s: %w", p.ID, err)
		}
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(cacheCtx, types.ModuleName, recipient, sdk.NewCoins(coin)); err != nil {
			return result, fmt.Errorf("failed to pay %s on payment %s: %w", coin, p.ID, err)
		}

		p.Withdrawn = p.Withdrawn.Add(coin)
		if err := k.setPayment(cacheCtx, p, p.State); err != nil {
			return result, err
		}
		acc.Transferred = acc.Transferred.Add(coin)
		result.Paid = result.Paid.Add(debit)
		result.Payments++

		cacheCtx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePaymentWithdrawn,
				sdk.NewAttribute(types.AttributeKeyPayment, p.ID.String()),
				sdk.NewAttribute(types.AttributeKeyRecipient, p.Recipient),
				sdk.NewAttribute(types.AttributeKeyDebit, coin.String()),
				sdk.NewAttribute(types.AttributeKeyWithdrawn, p.Withdrawn.String()),
			),
		)
	}

	acc.Balance = sdk.NewCoin(acc.Balance.Denom, remaining)
	acc.SettledAt = sdkCtx.BlockHeight()
	if err := k.setAccount(cacheCtx, acc, acc.State); err != nil {
		return result, err
	}

	if remaining.IsZero() && unmet {
		if err := k.markOverdrawn(cacheCtx, acc); err != nil {
			return result, err
		}
		result.Overdrawn = true
	}
	writeFn()

	if result.Paid.IsPositive() && result.Paid.IsInt64() {
		k.metrics.Withdrawn.WithLabelValues(id.Scope.String()).Add(float64(result.Paid.Int64()))
	}
	return result, nil
}

// SettleBlock settles every open account in identity order. An account whose
// settlement fails keeps its previous state and the block carries on.
func (k Keeper) SettleBlock(ctx context.Context) error {
	var ids []types.AccountID
	err := k.IterateAccountsByState(ctx, types.StateOpen, func(acc types.Account) (bool, error) {
		ids = append(ids, acc.ID)
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("failed to collect open accounts: %w", err)
	}

	var settled, overdrawn int
	for _, id := range ids {
		res, err := k.SettleAccount(ctx, id)
		if k.handleBlockerError(sdk.UnwrapSDKContext(ctx), "settle_account", SeverityHigh, err, "account", id.String()) {
			k.metrics.SettlementFailures.Inc()
			continue
		}
		if res.Payments > 0 {
			settled++
		}
		if res.Overdrawn {
			overdrawn++
		}
	}

	k.metrics.Settlements.Add(float64(settled))
	if overdrawn > 0 {
		k.Logger(ctx).Info("settlement overdrew escrow accounts", "count", overdrawn, "height", sdk.UnwrapSDKContext(ctx).BlockHeight())
	}
	return nil
}
