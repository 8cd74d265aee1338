package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

// The authorization subsystem owns grant creation and revocation; the escrow
// module only reads grants and decrements their spend limits.

func (k Keeper) nextGrantSequence(ctx context.Context) uint64 {
	store := k.getStore(ctx)
	seq := uint64(1)
	if bz := store.Get(NextGrantSequenceKey); bz != nil {
		seq = binary.BigEndian.Uint64(bz)
	}
	store.Set(NextGrantSequenceKey, sdk.Uint64ToBigEndian(seq+1))
	return seq
}

// GetNextGrantSequence returns the sequence the next saved grant will receive.
func (k Keeper) GetNextGrantSequence(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(NextGrantSequenceKey)
	if bz == nil {
		return 1
	}
	return binary.BigEndian.Uint64(bz)
}

func (k Keeper) setGrant(ctx context.Context, g types.DepositGrant) error {
	bz, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal deposit grant: %w", err)
	}
	k.getStore(ctx).Set(GrantKey(g.Grantee, g.Granter, g.MsgTypeURL), bz)
	return nil
}

// SaveDepositGrant stores a grant, replacing any grant for the same granter,
// grantee and message kind. The grant is stamped with a fresh creation sequence.
func (k Keeper) SaveDepositGrant(ctx context.Context, g types.DepositGrant) (types.DepositGrant, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := g.ValidateBasic(); err != nil {
		return types.DepositGrant{}, err
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return types.DepositGrant{}, err
	}
	if g.Authorization.SpendLimit.Denom != params.Denom {
		return types.DepositGrant{}, types.ErrInvalidDenom.Wrapf("spend limit denom %s, expected %s", g.Authorization.SpendLimit.Denom, params.Denom)
	}
	if g.Expiration.Expired(sdkCtx.BlockHeight(), sdkCtx.BlockTime()) {
		return types.DepositGrant{}, types.ErrInvalidGrant.Wrap("expiration is in the past")
	}

	existing, err := k.GranteeGrants(ctx, g.Grantee)
	if err != nil {
		return types.DepositGrant{}, err
	}
	replacing := false
	for _, e := range existing {
		if e.Granter == g.Granter && e.MsgTypeURL == g.MsgTypeURL {
			replacing = true
			break
		}
	}
	if !replacing && uint32(len(existing)) >= params.MaxGrantsPerGrantee {
		return types.DepositGrant{}, types.ErrInvalidGrant.Wrapf("grantee already holds %d grants", len(existing))
	}

	g.Sequence = k.nextGrantSequence(ctx)
	if err := k.setGrant(ctx, g); err != nil {
		return types.DepositGrant{}, err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeGrantSaved,
			sdk.NewAttribute(types.AttributeKeyGranter, g.Granter),
			sdk.NewAttribute(types.AttributeKeyGrantee, g.Grantee),
			sdk.NewAttribute(types.AttributeKeyMsgType, g.MsgTypeURL),
			sdk.NewAttribute(types.AttributeKeyAmount, g.Authorization.SpendLimit.String()),
		),
	)
	return g, nil
}

// RevokeDepositGrant deletes a grant.
func (k Keeper) RevokeDepositGrant(ctx context.Context, granter, grantee, msgType string) error {
	key := GrantKey(grantee, granter, msgType)
	store := k.getStore(ctx)
	if !store.Has(key) {
		return types.ErrGrantNotFound.Wrapf("granter %s grantee %s msg %s", granter, grantee, msgType)
	}
	store.Delete(key)

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeGrantRevoked,
			sdk.NewAttribute(types.AttributeKeyGranter, granter),
			sdk.NewAttribute(types.AttributeKeyGrantee, grantee),
			sdk.NewAttribute(types.AttributeKeyMsgType, msgType),
		),
	)
	return nil
}

// GetDepositGrant returns a single grant.
func (k Keeper) GetDepositGrant(ctx context.Context, granter, grantee, msgType string) (types.DepositGrant, error) {
	bz := k.getStore(ctx).Get(GrantKey(grantee, granter, msgType))
	if bz == nil {
		return types.DepositGrant{}, types.ErrGrantNotFound.Wrapf("granter %s grantee %s msg %s", granter, grantee, msgType)
	}
	var g types.DepositGrant
	if err := json.Unmarshal(bz, &g); err != nil {
		return types.DepositGrant{}, fmt.Errorf("failed to unmarshal deposit grant: %w", err)
	}
	return g, nil
}

// GranteeGrants returns every grant held by grantee in key order.
func (k Keeper) GranteeGrants(ctx context.Context, grantee string) ([]types.DepositGrant, error) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), GranteeGrantsPrefix(grantee))
	defer iterator.Close()

	var grants []types.DepositGrant
	for ; iterator.Valid(); iterator.Next() {
		var g types.DepositGrant
		if err := json.Unmarshal(iterator.Value(), &g); err != nil {
			return nil, fmt.Errorf("failed to unmarshal deposit grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, nil
}

// EligibleGrants returns the grants that authorize grantee to fund a deposit of
// the given scope and message kind, earliest expiration first. Grants without an
// expiration come last. Equal deadlines fall back to creation sequence, which is
// unique, so the order is total.
func (k Keeper) EligibleGrants(ctx context.Context, grantee string, scope types.Scope, msgKind string) ([]types.DepositGrant, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	height, now := sdkCtx.BlockHeight(), sdkCtx.BlockTime()

	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	all, err := k.GranteeGrants(ctx, grantee)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		grant    types.DepositGrant
		deadline time.Time
		bounded  bool
	}
	var candidates []candidate
	for _, g := range all {
		if !types.Authorize(g, scope, msgKind, height, now) {
			continue
		}
		deadline, bounded := g.Expiration.Deadline(height, now, params.AvgBlockTime)
		candidates = append(candidates, candidate{grant: g, deadline: deadline, bounded: bounded})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.bounded != b.bounded {
			return a.bounded
		}
		if a.bounded && !a.deadline.Equal(b.deadline) {
			return a.deadline.Before(b.deadline)
		}
		return a.grant.Sequence < b.grant.Sequence
	})

	grants := make([]types.DepositGrant, len(candidates))
	for i, c := range candidates {
		grants[i] = c.grant
	}
	return grants, nil
}

// spendGrant decrements a grant's spend limit. An exhausted grant stays stored,
// unusable, until pruned. The grant must still authorize the deposit at the
// current header.
func (k Keeper) spendGrant(ctx context.Context, granter, grantee string, scope types.Scope, msgKind string, amount sdk.Coin) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	g, err := k.GetDepositGrant(ctx, granter, grantee, msgKind)
	if err != nil {
		return err
	}
	if !types.Authorize(g, scope, msgKind, sdkCtx.BlockHeight(), sdkCtx.BlockTime()) {
		return types.ErrNoEligibleGrant.Wrapf("grant from %s no longer authorizes %s deposits", granter, scope)
	}
	if g.Authorization.SpendLimit.IsLT(amount) {
		return types.ErrInsufficientFunds.Wrapf("grant from %s has %s left, need %s", granter, g.Authorization.SpendLimit, amount)
	}

	g.Authorization.SpendLimit = g.Authorization.SpendLimit.Sub(amount)
	if err := k.setGrant(ctx, g); err != nil {
		return err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeGrantUsed,
			sdk.NewAttribute(types.AttributeKeyGranter, granter),
			sdk.NewAttribute(types.AttributeKeyGrantee, grantee),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			sdk.NewAttribute(types.AttributeKeyRemaining, g.Authorization.SpendLimit.String()),
		),
	)
	return nil
}

// PruneExpiredGrants deletes every grant that has expired or has no spend limit left.
func (k Keeper) PruneExpiredGrants(ctx context.Context) (int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	store := k.getStore(ctx)

	iterator := storetypes.KVStorePrefixIterator(store, GrantKeyPrefix)
	var expired [][]byte
	for ; iterator.Valid(); iterator.Next() {
		var g types.DepositGrant
		if err := json.Unmarshal(iterator.Value(), &g); err != nil {
			iterator.Close()
			return 0, fmt.Errorf("failed to unmarshal deposit grant: %w", err)
		}
		if g.Expiration.Expired(sdkCtx.BlockHeight(), sdkCtx.BlockTime()) || !g.Authorization.SpendLimit.IsPositive() {
			expired = append(expired, append([]byte(nil), iterator.Key()...))
		}
	}
	iterator.Close()

	for _, key := range expired {
		store.Delete(key)
	}
	return len(expired), nil
}

// IterateGrants walks every stored grant in key order.
func (k Keeper) IterateGrants(ctx context.Context, cb func(types.DepositGrant) (stop bool, err error)) error {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), GrantKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var g types.DepositGrant
		if err := json.Unmarshal(iterator.Value(), &g); err != nil {
			return fmt.Errorf("failed to unmarshal deposit grant: %w", err)
		}
		stop, err := cb(g)
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return nil
}
