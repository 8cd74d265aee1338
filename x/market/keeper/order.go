package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/leasepay/x/market/types"
)

// GetOrder returns an order in any state.
func (k Keeper) GetOrder(ctx context.Context, id types.OrderID) (types.Order, error) {
	var o types.Order
	found, err := k.getRecord(ctx, OrderKey(id), &o)
	if err != nil {
		return types.Order{}, err
	}
	if !found {
		return types.Order{}, types.ErrOrderNotFound.Wrapf("order %s", id)
	}
	return o, nil
}

func (k Keeper) setOrder(ctx context.Context, o types.Order) error {
	return k.setRecord(ctx, OrderKey(o.ID), o)
}

func (k Keeper) createOrder(ctx context.Context, id types.OrderID) (types.Order, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	o := types.Order{ID: id, State: types.OrderOpen, CreatedAt: sdkCtx.BlockHeight()}
	if err := k.setOrder(ctx, o); err != nil {
		return types.Order{}, err
	}
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(types.EventTypeOrderCreated, sdk.NewAttribute(types.AttributeKeyOrder, id.String())),
	)
	return o, nil
}

func (k Keeper) closeOrder(ctx context.Context, o types.Order) error {
	o.State = types.OrderClosed
	if err := k.setOrder(ctx, o); err != nil {
		return err
	}
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(types.EventTypeOrderClosed, sdk.NewAttribute(types.AttributeKeyOrder, o.ID.String())),
	)
	return nil
}

// OrderBids returns every bid on an order in provider key order.
func (k Keeper) OrderBids(ctx context.Context, id types.OrderID) ([]types.Bid, error) {
	return collect[types.Bid](k, ctx, OrderBidsPrefix(id))
}

// DeploymentOrders returns every order of a deployment.
func (k Keeper) DeploymentOrders(ctx context.Context, id types.DeploymentID) ([]types.Order, error) {
	return collect[types.Order](k, ctx, DeploymentOrdersPrefix(id))
}

// closeOrderBids closes the active lease and every open bid on an order.
func (k Keeper) closeOrderBids(ctx context.Context, id types.OrderID, reason string) error {
	bids, err := k.OrderBids(ctx, id)
	if err != nil {
		return err
	}
	for _, bid := range bids {
		switch bid.State {
		case types.BidActive:
			lease, err := k.GetLease(ctx, bid.ID.LeaseID())
			if err != nil {
				return err
			}
			if lease.State == types.LeaseActive {
				if err := k.closeLease(ctx, lease, reason); err != nil {
					return err
				}
			}
		case types.BidOpen:
			if err := k.closeBid(ctx, bid, types.BidClosed); err != nil {
				return err
			}
		}
	}
	return nil
}
