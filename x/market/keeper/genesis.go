package keeper

import (
	"context"
	"fmt"

	"github.com/paw-chain/leasepay/x/market/types"
)

// InitGenesis initializes the market module's state from a genesis state
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return fmt.Errorf("invalid market genesis: %w", err)
	}
	if err := k.SetParams(ctx, genState.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	for _, d := range genState.Deployments {
		if err := k.setDeployment(ctx, d); err != nil {
			return fmt.Errorf("failed to set deployment %s: %w", d.ID, err)
		}
	}
	for _, o := range genState.Orders {
		if err := k.setOrder(ctx, o); err != nil {
			return fmt.Errorf("failed to set order %s: %w", o.ID, err)
		}
	}
	for _, b := range genState.Bids {
		if err := k.setBid(ctx, b); err != nil {
			return fmt.Errorf("failed to set bid %s: %w", b.ID, err)
		}
	}
	for _, l := range genState.Leases {
		if err := k.setLease(ctx, l); err != nil {
			return fmt.Errorf("failed to set lease %s: %w", l.ID, err)
		}
	}
	return nil
}

// ExportGenesis returns the market module's exported genesis
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}

	genesis := types.DefaultGenesis()
	genesis.Params = params

	if genesis.Deployments, err = collect[types.Deployment](k, ctx, DeploymentKeyPrefix); err != nil {
		return nil, err
	}
	if genesis.Orders, err = collect[types.Order](k, ctx, OrderKeyPrefix); err != nil {
		return nil, err
	}
	if genesis.Bids, err = collect[types.Bid](k, ctx, BidKeyPrefix); err != nil {
		return nil, err
	}
	if genesis.Leases, err = collect[types.Lease](k, ctx, LeaseKeyPrefix); err != nil {
		return nil, err
	}
	return genesis, nil
}
