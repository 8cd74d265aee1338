package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

// GetPayment returns the payment with the given id in any state.
func (k Keeper) GetPayment(ctx context.Context, id types.PaymentID) (types.Payment, error) {
	bz := k.getStore(ctx).Get(PaymentKey(id))
	if bz == nil {
		return types.Payment{}, types.ErrPaymentNotFound.Wrapf("payment %s", id)
	}

	var p types.Payment
	if err := json.Unmarshal(bz, &p); err != nil {
		return types.Payment{}, fmt.Errorf("failed to unmarshal payment %s: %w", id, err)
	}
	return p, nil
}

func (k Keeper) setPayment(ctx context.Context, p types.Payment, prev types.State) error {
	bz, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payment %s: %w", p.ID, err)
	}

	store := k.getStore(ctx)
	store.Set(PaymentKey(p.ID), bz)
	if prev != p.State {
		if prev != types.StateInvalid {
			store.Delete(PaymentStateKey(prev, p.ID))
		}
		store.Set(PaymentStateKey(p.State, p.ID), []byte{})
	}
	return nil
}

// PaymentCreate opens a payment stream of rate per block from an open account to recipient.
func (k Keeper) PaymentCreate(
	ctx context.Context,
	accountID types.AccountID,
	xid string,
	recipient sdk.AccAddress,
	rate sdk.Coin,
) (types.Payment, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	id := types.PaymentID{AccountID: accountID, XID: xid}
	if err := id.Validate(); err != nil {
		return types.Payment{}, err
	}
	if recipient.Empty() {
		return types.Payment{}, types.ErrInvalidPaymentID.Wrap("empty recipient")
	}

	acc, err := k.GetAccount(ctx, accountID)
	if err != nil {
		return types.Payment{}, err
	}
	if acc.State != types.StateOpen {
		return types.Payment{}, types.ErrAccountClosed.Wrapf("account %s is %s", accountID, acc.State)
	}
	if !rate.IsValid() || rate.Denom != acc.Balance.Denom {
		return types.Payment{}, types.ErrInvalidRate.Wrapf("rate %s does not match account denom %s", rate, acc.Balance.Denom)
	}
	if k.getStore(ctx).Has(PaymentKey(id)) {
		return types.Payment{}, types.ErrPaymentExists.Wrapf("payment %s", id)
	}

	p := types.NewPayment(id, recipient.String(), rate)
	if err := k.setPayment(ctx, p, types.StateInvalid); err != nil {
		return types.Payment{}, err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePaymentCreated,
			sdk.NewAttribute(types.AttributeKeyPayment, id.String()),
			sdk.NewAttribute(types.AttributeKeyRecipient, p.Recipient),
			sdk.NewAttribute(types.AttributeKeyRate, rate.String()),
		),
	)
	return p, nil
}

// PaymentClose closes an open payment. Closing a payment that is no longer open is a no-op.
func (k Keeper) PaymentClose(ctx context.Context, id types.PaymentID) error {
	p, err := k.GetPayment(ctx, id)
	if err != nil {
		return err
	}
	if p.State != types.StateOpen {
		return nil
	}

	prev := p.State
	p.State = types.StateClosed
	if err := k.setPayment(ctx, p, prev); err != nil {
		return err
	}
	k.emitPaymentClosed(ctx, p)

	return k.afterPaymentClosed(ctx, p)
}

// closeAccountPayments closes every open payment of the account with the given
// state and returns them. Hooks are left to the caller.
func (k Keeper) closeAccountPayments(ctx context.Context, id types.AccountID, state types.State) ([]types.Payment, error) {
	open, err := k.AccountPayments(ctx, id, types.StateOpen)
	if err != nil {
		return nil, err
	}
	for i := range open {
		open[i].State = state
		if err := k.setPayment(ctx, open[i], types.StateOpen); err != nil {
			return nil, err
		}
		k.emitPaymentClosed(ctx, open[i])
	}
	return open, nil
}

func (k Keeper) emitPaymentClosed(ctx context.Context, p types.Payment) {
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePaymentClosed,
			sdk.NewAttribute(types.AttributeKeyPayment, p.ID.String()),
			sdk.NewAttribute(types.AttributeKeyState, p.State.String()),
			sdk.NewAttribute(types.AttributeKeyWithdrawn, p.Withdrawn.String()),
		),
	)
}

// AccountPayments returns the payments of an account in identity order: shorter
// xids first, then bytewise. A state of StateInvalid returns payments in every state.
func (k Keeper) AccountPayments(ctx context.Context, id types.AccountID, state types.State) ([]types.Payment, error) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), AccountPaymentsPrefix(id))
	defer iterator.Close()

	var payments []types.Payment
	for ; iterator.Valid(); iterator.Next() {
		var p types.Payment
		if err := json.Unmarshal(iterator.Value(), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
		}
		if state != types.StateInvalid && p.State != state {
			continue
		}
		payments = append(payments, p)
	}
	return payments, nil
}

// IteratePayments walks every payment in identity order.
func (k Keeper) IteratePayments(ctx context.Context, cb func(types.Payment) (stop bool, err error)) error {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), PaymentKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var p types.Payment
		if err := json.Unmarshal(iterator.Value(), &p); err != nil {
			return fmt.Errorf("failed to unmarshal payment: %w", err)
		}
		stop, err := cb(p)
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return nil
}
