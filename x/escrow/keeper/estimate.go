package keeper

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

// EstimateBlocksRemaining projects how many more blocks the account can pay its
// open payments at their current rates. An account that is no longer open has no
// runway; an open account with no outflow runs forever.
func (k Keeper) EstimateBlocksRemaining(ctx context.Context, id types.AccountID) (types.BlocksRemaining, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	acc, err := k.GetAccount(ctx, id)
	if err != nil {
		return types.BlocksRemaining{}, err
	}
	out := types.BlocksRemaining{
		Balance:     acc.Balance,
		OutflowRate: sdk.NewCoin(acc.Balance.Denom, sdkmath.ZeroInt()),
	}
	if acc.State != types.StateOpen {
		return out, nil
	}

	payments, err := k.AccountPayments(ctx, id, types.StateOpen)
	if err != nil {
		return types.BlocksRemaining{}, err
	}
	for _, p := range payments {
		out.OutflowRate = out.OutflowRate.Add(p.Rate)
	}
	if out.OutflowRate.IsZero() {
		out.Unbounded = true
		return out, nil
	}

	blocks := acc.Balance.Amount.Quo(out.OutflowRate.Amount)
	if !blocks.IsInt64() {
		out.Unbounded = true
		return out, nil
	}
	out.BlocksRemaining = blocks.Int64()

	params, err := k.GetParams(ctx)
	if err != nil {
		return types.BlocksRemaining{}, err
	}
	out.EstimatedTime = sdkCtx.BlockTime().Add(time.Duration(out.BlocksRemaining) * params.AvgBlockTime)
	return out, nil
}
