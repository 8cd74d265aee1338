package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	"github.com/paw-chain/leasepay/x/market/types"
)

// GetDeployment returns a deployment in any state.
func (k Keeper) GetDeployment(ctx context.Context, id types.DeploymentID) (types.Deployment, error) {
	var d types.Deployment
	found, err := k.getRecord(ctx, DeploymentKey(id), &d)
	if err != nil {
		return types.Deployment{}, err
	}
	if !found {
		return types.Deployment{}, types.ErrDeploymentNotFound.Wrapf("deployment %s", id)
	}
	return d, nil
}

func (k Keeper) setDeployment(ctx context.Context, d types.Deployment) error {
	return k.setRecord(ctx, DeploymentKey(d.ID), d)
}

// CreateDeployment opens the deployment's escrow account with the owner's deposit
// and places one open order per group.
func (k Keeper) CreateDeployment(ctx context.Context, id types.DeploymentID, groups uint32, deposit escrowtypes.Deposit) (types.Deployment, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := id.Validate(); err != nil {
		return types.Deployment{}, err
	}
	if groups == 0 {
		return types.Deployment{}, types.ErrInvalidID.Wrap("a deployment needs at least one group")
	}
	if k.getStore(ctx).Has(DeploymentKey(id)) {
		return types.Deployment{}, types.ErrDeploymentExists.Wrapf("deployment %s", id)
	}

	owner, err := sdk.AccAddressFromBech32(id.Owner)
	if err != nil {
		return types.Deployment{}, types.ErrInvalidID.Wrapf("invalid owner: %v", err)
	}
	if _, err := k.escrowKeeper.AccountOpen(ctx, escrowtypes.DeploymentAccountID(id.Owner, id.DSeq), owner, escrowtypes.MsgTypeCreateDeployment, deposit); err != nil {
		return types.Deployment{}, fmt.Errorf("failed to fund deployment %s: %w", id, err)
	}

	d := types.Deployment{ID: id, State: types.DeploymentActive, Groups: groups, CreatedAt: sdkCtx.BlockHeight()}
	if err := k.setDeployment(ctx, d); err != nil {
		return types.Deployment{}, err
	}
	for gseq := uint32(1); gseq <= groups; gseq++ {
		gid := types.GroupID{Owner: id.Owner, DSeq: id.DSeq, GSeq: gseq}
		if _, err := k.createOrder(ctx, types.MakeOrderID(gid, 1)); err != nil {
			return types.Deployment{}, err
		}
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeDeploymentCreated,
			sdk.NewAttribute(types.AttributeKeyDeployment, id.String()),
			sdk.NewAttribute(types.AttributeKeyGroups, fmt.Sprintf("%d", groups)),
		),
	)
	k.metrics.DeploymentsCreated.Inc()
	return d, nil
}

// CloseDeployment closes every lease, bid and order of the deployment, then closes
// its escrow account, refunding what is left to the depositors.
func (k Keeper) CloseDeployment(ctx context.Context, id types.DeploymentID) error {
	d, err := k.GetDeployment(ctx, id)
	if err != nil {
		return err
	}
	if d.State != types.DeploymentActive {
		return types.ErrDeploymentClosed.Wrapf("deployment %s", id)
	}
	if err := k.closeDeployment(ctx, d, types.LeaseClosedReasonDeploymentClosed); err != nil {
		return err
	}
	return k.escrowKeeper.AccountClose(ctx, escrowtypes.DeploymentAccountID(id.Owner, id.DSeq))
}

// closeDeployment tears down everything hanging off a deployment. The escrow
// account is left to the caller.
func (k Keeper) closeDeployment(ctx context.Context, d types.Deployment, reason string) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	d.State = types.DeploymentClosed
	if err := k.setDeployment(ctx, d); err != nil {
		return err
	}

	orders, err := collect[types.Order](k, ctx, DeploymentOrdersPrefix(d.ID))
	if err != nil {
		return err
	}
	for _, order := range orders {
		if err := k.closeOrderBids(ctx, order.ID, reason); err != nil {
			return err
		}
		// closing a lease also closes its order
		if order, err = k.GetOrder(ctx, order.ID); err != nil {
			return err
		}
		if order.State != types.OrderClosed {
			if err := k.closeOrder(ctx, order); err != nil {
				return err
			}
		}
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeDeploymentClosed,
			sdk.NewAttribute(types.AttributeKeyDeployment, d.ID.String()),
			sdk.NewAttribute(types.AttributeKeyReason, reason),
		),
	)
	k.Logger(ctx).Info("deployment closed", "deployment", d.ID.String(), "reason", reason)
	return nil
}

// IterateDeployments walks every deployment in key order.
func (k Keeper) IterateDeployments(ctx context.Context, cb func(types.Deployment) (stop bool, err error)) error {
	return iterateRecords(k, ctx, DeploymentKeyPrefix, cb)
}
