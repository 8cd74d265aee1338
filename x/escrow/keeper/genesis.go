package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

// InitGenesis initializes the escrow module's state from a genesis state.
// Genesis precedes every settlement, so imported accounts are due from the
// first block after it.
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return fmt.Errorf("invalid escrow genesis: %w", err)
	}

	if err := k.SetParams(ctx, genState.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	for _, acc := range genState.Accounts {
		acc.SettledAt = 0
		if err := k.setAccount(ctx, acc, types.StateInvalid); err != nil {
			return fmt.Errorf("failed to set account %s: %w", acc.ID, err)
		}
	}
	for _, p := range genState.Payments {
		if err := k.setPayment(ctx, p, types.StateInvalid); err != nil {
			return fmt.Errorf("failed to set payment %s: %w", p.ID, err)
		}
	}
	for _, g := range genState.Grants {
		if err := k.setGrant(ctx, g); err != nil {
			return fmt.Errorf("failed to set grant %d: %w", g.Sequence, err)
		}
	}

	next := genState.NextGrantSequence
	if next == 0 {
		next = 1
	}
	k.getStore(ctx).Set(NextGrantSequenceKey, sdk.Uint64ToBigEndian(next))
	return nil
}

// ExportGenesis returns the escrow module's exported genesis. Heights are
// rebased so the exported header becomes the genesis block of the importing
// ledger: settlement marks are dropped and height-bound grants keep the number
// of blocks they had left.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	height, now := sdkCtx.BlockHeight(), sdkCtx.BlockTime()

	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}

	genesis := types.DefaultGenesis()
	genesis.Params = params
	genesis.NextGrantSequence = k.GetNextGrantSequence(ctx)

	if err := k.IterateAccounts(ctx, func(acc types.Account) (bool, error) {
		acc.SettledAt = 0
		genesis.Accounts = append(genesis.Accounts, acc)
		return false, nil
	}); err != nil {
		return nil, err
	}
	if err := k.IteratePayments(ctx, func(p types.Payment) (bool, error) {
		genesis.Payments = append(genesis.Payments, p)
		return false, nil
	}); err != nil {
		return nil, err
	}
	// Exhausted and expired grants are waiting for the next prune and are not
	// carried over.
	if err := k.IterateGrants(ctx, func(g types.DepositGrant) (bool, error) {
		if !g.Authorization.SpendLimit.IsPositive() || g.Expiration.Expired(height, now) {
			return false, nil
		}
		if g.Expiration.Height > 0 {
			g.Expiration.Height = g.Expiration.Height - height + 1
		}
		genesis.Grants = append(genesis.Grants, g)
		return false, nil
	}); err != nil {
		return nil, err
	}

	return genesis, nil
}
