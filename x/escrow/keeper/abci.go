package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// EndBlocker settles every open account for the block, then drops grants that can
// no longer fund anything. Failures are logged so block production never halts.
func (k Keeper) EndBlocker(ctx context.Context) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	k.handleBlockerError(sdkCtx, "settle", SeverityCritical, k.SettleBlock(ctx))

	pruned, err := k.PruneExpiredGrants(ctx)
	if !k.handleBlockerError(sdkCtx, "prune_grants", SeverityLow, err) && pruned > 0 {
		k.metrics.GrantsPruned.Add(float64(pruned))
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"escrow_end_block",
			sdk.NewAttribute("height", fmt.Sprintf("%d", sdkCtx.BlockHeight())),
		),
	)
	return nil
}
