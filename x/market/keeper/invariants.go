package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/leasepay/x/market/types"
)

// RegisterInvariants registers all market invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "single-active-bid", SingleActiveBidInvariant(k))
	ir.RegisterRoute(types.ModuleName, "lease-bid-state", LeaseBidStateInvariant(k))
}

// AllInvariants runs all invariants of the market module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := SingleActiveBidInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		return LeaseBidStateInvariant(k)(ctx)
	}
}

// SingleActiveBidInvariant checks that no order has more than one active bid.
func SingleActiveBidInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		active := make(map[types.OrderID]int)
		err := k.IterateBids(ctx, func(b types.Bid) (bool, error) {
			if b.State == types.BidActive {
				active[b.ID.OrderID()]++
				if active[b.ID.OrderID()] == 2 {
					count++
					msg += fmt.Sprintf("order %s has more than one active bid\n", b.ID.OrderID())
				}
			}
			return false, nil
		})
		if err != nil {
			count++
			msg += fmt.Sprintf("iterate bids: %v\n", err)
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "single-active-bid",
			fmt.Sprintf("found %d orders with competing active bids\n%s", count, msg),
		), broken
	}
}

// LeaseBidStateInvariant checks that a lease is active exactly when its bid is.
func LeaseBidStateInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		err := k.IterateLeases(ctx, func(l types.Lease) (bool, error) {
			bid, err := k.GetBid(ctx, l.ID.BidID())
			if err != nil {
				count++
				msg += fmt.Sprintf("lease %s: %v\n", l.ID, err)
				return false, nil
			}
			if (l.State == types.LeaseActive) != (bid.State == types.BidActive) {
				count++
				msg += fmt.Sprintf("lease %s is %s but its bid is %s\n", l.ID, l.State, bid.State)
			}
			return false, nil
		})
		if err != nil {
			count++
			msg += fmt.Sprintf("iterate leases: %v\n", err)
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "lease-bid-state",
			fmt.Sprintf("found %d lease and bid mismatches\n%s", count, msg),
		), broken
	}
}
