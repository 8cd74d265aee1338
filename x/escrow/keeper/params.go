package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

// GetParams returns the current escrow parameters, falling back to defaults
// before genesis has stored any.
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	bz := k.getStore(ctx).Get(ParamsKey)
	if bz == nil {
		return types.DefaultParams(), nil
	}

	var params types.Params
	if err := json.Unmarshal(bz, &params); err != nil {
		return types.Params{}, fmt.Errorf("failed to unmarshal params: %w", err)
	}
	return params, nil
}

// SetParams validates and stores the escrow parameters.
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	k.getStore(ctx).Set(ParamsKey, bz)
	return nil
}
