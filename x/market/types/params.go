package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
)

const (
	DefaultTakeRateBps  = 200
	DefaultOrderMaxBids = 20
	maxBps              = 10000

	// FeeCollectorName is the module account protocol fees stream to by default.
	FeeCollectorName = "fee_collector"
)

// Params defines the market module parameters.
type Params struct {
	// BidMinDeposit is the least a provider must escrow with a bid.
	BidMinDeposit sdk.Coin `json:"bid_min_deposit"`
	// TakeRateBps is the protocol's share of every lease price, in basis points.
	TakeRateBps uint32 `json:"take_rate_bps"`
	// FeeReceiver receives the protocol fee stream.
	FeeReceiver string `json:"fee_receiver"`
	// OrderMaxBids caps the bids an order accepts.
	OrderMaxBids uint32 `json:"order_max_bids"`
}

// DefaultParams returns default market parameters
func DefaultParams() Params {
	return Params{
		BidMinDeposit: sdk.NewCoin("upaw", sdkmath.NewInt(500000)),
		TakeRateBps:   DefaultTakeRateBps,
		FeeReceiver:   authtypes.NewModuleAddress(FeeCollectorName).String(),
		OrderMaxBids:  DefaultOrderMaxBids,
	}
}

// Validate validates the set of params
func (p Params) Validate() error {
	if !p.BidMinDeposit.IsValid() {
		return fmt.Errorf("invalid bid min deposit: %s", p.BidMinDeposit)
	}
	if p.TakeRateBps > maxBps {
		return fmt.Errorf("take rate %d bps exceeds %d", p.TakeRateBps, maxBps)
	}
	if _, err := sdk.AccAddressFromBech32(p.FeeReceiver); err != nil {
		return fmt.Errorf("invalid fee receiver: %w", err)
	}
	if p.OrderMaxBids == 0 {
		return fmt.Errorf("order max bids must be positive")
	}
	return nil
}

// SplitPrice divides a per-block lease price into the provider's share and the
// protocol's take. Fractions of the smallest unit are dropped from the price.
func (p Params) SplitPrice(price sdk.DecCoin) (provider, take sdk.Coin) {
	total := price.Amount.TruncateInt()
	fee := total.MulRaw(int64(p.TakeRateBps)).QuoRaw(maxBps)
	return sdk.NewCoin(price.Denom, total.Sub(fee)), sdk.NewCoin(price.Denom, fee)
}
