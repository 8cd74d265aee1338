package keeper

import (
	"context"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	"github.com/paw-chain/leasepay/x/market/types"
)

// GetLease returns a lease in any state.
func (k Keeper) GetLease(ctx context.Context, id types.LeaseID) (types.Lease, error) {
	var l types.Lease
	found, err := k.getRecord(ctx, LeaseKey(id), &l)
	if err != nil {
		return types.Lease{}, err
	}
	if !found {
		return types.Lease{}, types.ErrLeaseNotFound.Wrapf("lease %s", id)
	}
	return l, nil
}

func (k Keeper) setLease(ctx context.Context, l types.Lease) error {
	return k.setRecord(ctx, LeaseKey(l.ID), l)
}

// leasePayments returns the ids of the escrow payments that fund a lease.
func leasePayments(id types.LeaseID) []escrowtypes.PaymentID {
	account := escrowtypes.DeploymentAccountID(id.Owner, id.DSeq)
	return []escrowtypes.PaymentID{
		{AccountID: account, XID: id.PaymentXID()},
		{AccountID: account, XID: id.FeePaymentXID()},
	}
}

// CreateLease records bid as the winner of its order. Every other open bid on the
// order loses and is refunded, and the deployment account starts paying the
// provider and the protocol fee receiver each block.
func (k Keeper) CreateLease(ctx context.Context, bidID types.BidID) (types.Lease, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	bid, err := k.GetBid(ctx, bidID)
	if err != nil {
		return types.Lease{}, err
	}
	if bid.State != types.BidOpen {
		return types.Lease{}, types.ErrBidNotOpen.Wrapf("bid %s is %s", bidID, bid.State)
	}
	order, err := k.GetOrder(ctx, bidID.OrderID())
	if err != nil {
		return types.Lease{}, err
	}
	if order.State != types.OrderOpen {
		return types.Lease{}, types.ErrOrderNotOpen.Wrapf("order %s is %s", order.ID, order.State)
	}
	deployment, err := k.GetDeployment(ctx, bidID.DeploymentID())
	if err != nil {
		return types.Lease{}, err
	}
	if deployment.State != types.DeploymentActive {
		return types.Lease{}, types.ErrDeploymentClosed.Wrapf("deployment %s", deployment.ID)
	}

	bid.State = types.BidActive
	if err := k.setBid(ctx, bid); err != nil {
		return types.Lease{}, err
	}

	others, err := k.OrderBids(ctx, order.ID)
	if err != nil {
		return types.Lease{}, err
	}
	for _, other := range others {
		if other.ID == bidID || other.State != types.BidOpen {
			continue
		}
		if err := k.closeBid(ctx, other, types.BidLost); err != nil {
			return types.Lease{}, err
		}
	}

	order.State = types.OrderActive
	if err := k.setOrder(ctx, order); err != nil {
		return types.Lease{}, err
	}

	lease := types.Lease{
		ID:        bidID.LeaseID(),
		State:     types.LeaseActive,
		Price:     bid.Price,
		CreatedAt: sdkCtx.BlockHeight(),
	}
	if err := k.setLease(ctx, lease); err != nil {
		return types.Lease{}, err
	}

	if err := k.openLeasePayments(ctx, lease); err != nil {
		return types.Lease{}, err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLeaseCreated,
			sdk.NewAttribute(types.AttributeKeyLease, lease.ID.String()),
			sdk.NewAttribute(types.AttributeKeyProvider, lease.ID.Provider),
			sdk.NewAttribute(types.AttributeKeyPrice, lease.Price.String()),
		),
	)
	k.metrics.LeasesCreated.Inc()
	return lease, nil
}

func (k Keeper) openLeasePayments(ctx context.Context, lease types.Lease) error {
	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}
	providerRate, take := params.SplitPrice(lease.Price)

	provider, err := sdk.AccAddressFromBech32(lease.ID.Provider)
	if err != nil {
		return types.ErrInvalidID.Wrapf("invalid provider: %v", err)
	}
	feeReceiver, err := sdk.AccAddressFromBech32(params.FeeReceiver)
	if err != nil {
		return fmt.Errorf("invalid fee receiver param: %w", err)
	}

	ids := leasePayments(lease.ID)
	streams := []struct {
		id        escrowtypes.PaymentID
		recipient sdk.AccAddress
		rate      sdk.Coin
	}{
		{ids[0], provider, providerRate},
		{ids[1], feeReceiver, take},
	}
	for _, s := range streams {
		if !s.rate.IsPositive() {
			continue
		}
		if _, err := k.escrowKeeper.PaymentCreate(ctx, s.id.AccountID, s.id.XID, s.recipient, s.rate); err != nil {
			return fmt.Errorf("failed to open payment %s: %w", s.id, err)
		}
	}
	return nil
}

// CloseLease closes an active lease for the given reason.
func (k Keeper) CloseLease(ctx context.Context, id types.LeaseID, reason string) error {
	lease, err := k.GetLease(ctx, id)
	if err != nil {
		return err
	}
	if lease.State != types.LeaseActive {
		return types.ErrLeaseNotActive.Wrapf("lease %s is %s", id, lease.State)
	}
	return k.closeLease(ctx, lease, reason)
}

// closeLease stops a lease's payments, closes its bid with a refund and closes the
// order. The lease is marked closed first so payment hooks fired on the way ignore it.
func (k Keeper) closeLease(ctx context.Context, lease types.Lease, reason string) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	lease.State = types.LeaseClosed
	lease.ClosedOn = sdkCtx.BlockHeight()
	lease.Reason = reason
	if err := k.setLease(ctx, lease); err != nil {
		return err
	}

	for _, pid := range leasePayments(lease.ID) {
		err := k.escrowKeeper.PaymentClose(ctx, pid)
		if err != nil && !errorsmod.IsOf(err, escrowtypes.ErrPaymentNotFound) {
			return fmt.Errorf("failed to close payment %s: %w", pid, err)
		}
	}

	bid, err := k.GetBid(ctx, lease.ID.BidID())
	if err != nil {
		return err
	}
	if bid.State == types.BidActive {
		if err := k.closeBid(ctx, bid, types.BidClosed); err != nil {
			return err
		}
	}

	order, err := k.GetOrder(ctx, lease.ID.OrderID())
	if err != nil {
		return err
	}
	if order.State == types.OrderActive {
		if err := k.closeOrder(ctx, order); err != nil {
			return err
		}
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLeaseClosed,
			sdk.NewAttribute(types.AttributeKeyLease, lease.ID.String()),
			sdk.NewAttribute(types.AttributeKeyReason, reason),
		),
	)
	k.metrics.LeasesClosed.WithLabelValues(reason).Inc()
	k.Logger(ctx).Info("lease closed", "lease", lease.ID.String(), "reason", reason)
	return nil
}

// IterateLeases walks every lease in key order.
func (k Keeper) IterateLeases(ctx context.Context, cb func(types.Lease) (stop bool, err error)) error {
	return iterateRecords(k, ctx, LeaseKeyPrefix, cb)
}
