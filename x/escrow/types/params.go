package types

import (
	"fmt"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	DefaultDenom               = "upaw"
	DefaultAvgBlockTime        = 6 * time.Second
	DefaultMaxGrantsPerGrantee = 64
)

// Params defines the escrow module parameters.
type Params struct {
	// Denom is the only denomination escrow accounts hold.
	Denom string `json:"denom"`
	// AvgBlockTime projects block counts onto time for runway estimates and
	// height-bound grant ordering.
	AvgBlockTime time.Duration `json:"avg_block_time"`
	// MaxGrantsPerGrantee caps how many grants one grantee may hold.
	MaxGrantsPerGrantee uint32 `json:"max_grants_per_grantee"`
}

// DefaultParams returns default escrow parameters
func DefaultParams() Params {
	return Params{
		Denom:               DefaultDenom,
		AvgBlockTime:        DefaultAvgBlockTime,
		MaxGrantsPerGrantee: DefaultMaxGrantsPerGrantee,
	}
}

// Validate validates the set of params
func (p Params) Validate() error {
	if err := sdk.ValidateDenom(p.Denom); err != nil {
		return fmt.Errorf("invalid denom: %w", err)
	}
	if p.AvgBlockTime <= 0 {
		return fmt.Errorf("avg block time must be positive: %s", p.AvgBlockTime)
	}
	if p.MaxGrantsPerGrantee == 0 {
		return fmt.Errorf("max grants per grantee must be positive")
	}
	return nil
}
