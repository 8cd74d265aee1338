package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	"github.com/paw-chain/leasepay/x/market/types"
)

// BidEscrowID returns the escrow account holding a bid's deposit.
func BidEscrowID(id types.BidID) escrowtypes.AccountID {
	return escrowtypes.BidAccountID(id.Provider, id.Owner, id.DSeq, id.GSeq, id.OSeq)
}

// GetBid returns a bid in any state.
func (k Keeper) GetBid(ctx context.Context, id types.BidID) (types.Bid, error) {
	var b types.Bid
	found, err := k.getRecord(ctx, BidKey(id), &b)
	if err != nil {
		return types.Bid{}, err
	}
	if !found {
		return types.Bid{}, types.ErrBidNotFound.Wrapf("bid %s", id)
	}
	return b, nil
}

func (k Keeper) setBid(ctx context.Context, b types.Bid) error {
	return k.setRecord(ctx, BidKey(b.ID), b)
}

// CreateBid places provider's bid on an open order, escrowing the bid deposit.
func (k Keeper) CreateBid(
	ctx context.Context,
	orderID types.OrderID,
	provider sdk.AccAddress,
	price sdk.DecCoin,
	offers []types.ResourceOffer,
	deposit escrowtypes.Deposit,
) (types.Bid, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	id := types.MakeBidID(orderID, provider.String())
	if err := id.Validate(); err != nil {
		return types.Bid{}, err
	}
	if !price.IsValid() || !price.Amount.TruncateInt().IsPositive() {
		return types.Bid{}, types.ErrInvalidPrice.Wrapf("price must be at least one unit per block, got %s", price)
	}
	if price.Denom != deposit.Amount.Denom {
		return types.Bid{}, types.ErrInvalidPrice.Wrapf("price denom %s differs from deposit denom %s", price.Denom, deposit.Amount.Denom)
	}

	order, err := k.GetOrder(ctx, orderID)
	if err != nil {
		return types.Bid{}, err
	}
	if order.State != types.OrderOpen {
		return types.Bid{}, types.ErrOrderNotOpen.Wrapf("order %s is %s", orderID, order.State)
	}
	if k.getStore(ctx).Has(BidKey(id)) {
		return types.Bid{}, types.ErrBidExists.Wrapf("bid %s", id)
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return types.Bid{}, err
	}
	if deposit.Amount.Denom != params.BidMinDeposit.Denom || deposit.Amount.IsLT(params.BidMinDeposit) {
		return types.Bid{}, types.ErrInsufficientBidDeposit.Wrapf("deposit %s, minimum %s", deposit.Amount, params.BidMinDeposit)
	}
	existing, err := k.OrderBids(ctx, orderID)
	if err != nil {
		return types.Bid{}, err
	}
	if uint32(len(existing)) >= params.OrderMaxBids {
		return types.Bid{}, types.ErrTooManyBids.Wrapf("order %s has %d bids", orderID, len(existing))
	}

	if _, err := k.escrowKeeper.AccountOpen(ctx, BidEscrowID(id), provider, escrowtypes.MsgTypeCreateBid, deposit); err != nil {
		return types.Bid{}, fmt.Errorf("failed to fund bid %s: %w", id, err)
	}

	bid := types.Bid{
		ID:             id,
		State:          types.BidOpen,
		Price:          price,
		ResourcesOffer: offers,
		CreatedAt:      sdkCtx.BlockHeight(),
	}
	if err := k.setBid(ctx, bid); err != nil {
		return types.Bid{}, err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeBidCreated,
			sdk.NewAttribute(types.AttributeKeyBid, id.String()),
			sdk.NewAttribute(types.AttributeKeyPrice, price.String()),
		),
	)
	k.metrics.BidsCreated.Inc()
	return bid, nil
}

// CloseBid withdraws a bid. An open bid is closed and its deposit refunded; an
// active bid takes its lease down with it.
func (k Keeper) CloseBid(ctx context.Context, id types.BidID) error {
	bid, err := k.GetBid(ctx, id)
	if err != nil {
		return err
	}

	switch bid.State {
	case types.BidOpen:
		return k.closeBid(ctx, bid, types.BidClosed)
	case types.BidActive:
		lease, err := k.GetLease(ctx, id.LeaseID())
		if err != nil {
			return err
		}
		if lease.State != types.LeaseActive {
			return k.closeBid(ctx, bid, types.BidClosed)
		}
		return k.closeLease(ctx, lease, types.LeaseClosedReasonBidClosed)
	default:
		return types.ErrBidNotOpen.Wrapf("bid %s is %s", id, bid.State)
	}
}

// closeBid moves a bid to a final state and refunds its deposit.
func (k Keeper) closeBid(ctx context.Context, bid types.Bid, state types.BidState) error {
	bid.State = state
	if err := k.setBid(ctx, bid); err != nil {
		return err
	}

	eventType := types.EventTypeBidClosed
	if state == types.BidLost {
		eventType = types.EventTypeBidLost
		k.metrics.BidsLost.Inc()
	}
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(eventType, sdk.NewAttribute(types.AttributeKeyBid, bid.ID.String())),
	)

	return k.escrowKeeper.AccountClose(ctx, BidEscrowID(bid.ID))
}

// IterateBids walks every bid in key order.
func (k Keeper) IterateBids(ctx context.Context, cb func(types.Bid) (stop bool, err error)) error {
	return iterateRecords(k, ctx, BidKeyPrefix, cb)
}
