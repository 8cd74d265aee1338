package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	storetypes "cosmossdk.io/store/types"
)

func (k Keeper) getRecord(ctx context.Context, key []byte, v any) (bool, error) {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
		return false, nil
	}
	if err := json.Unmarshal(bz, v); err != nil {
		return true, fmt.Errorf("failed to unmarshal %T: %w", v, err)
	}
	return true, nil
}

func (k Keeper) setRecord(ctx context.Context, key []byte, v any) error {
	bz, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	k.getStore(ctx).Set(key, bz)
	return nil
}

// iterateRecords decodes every record under prefix in key order into a fresh T.
func iterateRecords[T any](k Keeper, ctx context.Context, prefix []byte, cb func(T) (stop bool, err error)) error {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var v T
		if err := json.Unmarshal(iterator.Value(), &v); err != nil {
			return fmt.Errorf("failed to unmarshal %T: %w", v, err)
		}
		stop, err := cb(v)
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return nil
}

// collect loads every record under prefix. Callers that write while walking use
// it so no iterator is open during the writes.
func collect[T any](k Keeper, ctx context.Context, prefix []byte) ([]T, error) {
	var out []T
	err := iterateRecords(k, ctx, prefix, func(v T) (bool, error) {
		out = append(out, v)
		return false, nil
	})
	return out, err
}
