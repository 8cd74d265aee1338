package keeper

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

// fundingPlan tracks a deposit being resolved across its sources.
type fundingPlan struct {
	payer     sdk.AccAddress
	scope     types.Scope
	msgKind   string
	denom     string
	remaining sdkmath.Int
	draws     []types.Draw
	// planned is what earlier draws already take from each address, so a later
	// source never counts the same spendable coins twice.
	planned map[string]sdkmath.Int
}

func (p *fundingPlan) add(d types.Draw) {
	p.draws = append(p.draws, d)
	p.remaining = p.remaining.Sub(d.Amount.Amount)
	from := d.From()
	if prev, ok := p.planned[from]; ok {
		p.planned[from] = prev.Add(d.Amount.Amount)
	} else {
		p.planned[from] = d.Amount.Amount
	}
}

func (p *fundingPlan) plannedFrom(addr string) sdkmath.Int {
	if amt, ok := p.planned[addr]; ok {
		return amt
	}
	return sdkmath.ZeroInt()
}

// ResolveDeposit plans how a deposit is covered without moving any coins. Sources
// are walked in the order given and each contributes as much as it can until the
// amount is met. A deposit that cannot be covered in full fails with
// ErrInsufficientFunds and nothing is drawn. Requesting grants when payer holds no
// eligible grant fails with ErrNoEligibleGrant.
func (k Keeper) ResolveDeposit(
	ctx context.Context,
	payer sdk.AccAddress,
	scope types.Scope,
	msgKind string,
	dep types.Deposit,
) (types.ResolvedFunding, error) {
	if err := dep.ValidateBasic(); err != nil {
		return types.ResolvedFunding{}, err
	}
	if payer.Empty() {
		return types.ResolvedFunding{}, types.ErrUnauthorized.Wrap("empty payer")
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return types.ResolvedFunding{}, err
	}
	if dep.Amount.Denom != params.Denom {
		return types.ResolvedFunding{}, types.ErrInvalidDenom.Wrapf("deposit denom %s, expected %s", dep.Amount.Denom, params.Denom)
	}

	plan := &fundingPlan{
		payer:     payer,
		scope:     scope,
		msgKind:   msgKind,
		denom:     dep.Amount.Denom,
		remaining: dep.Amount.Amount,
		planned:   make(map[string]sdkmath.Int),
	}

	for _, src := range dep.Sources {
		if !plan.remaining.IsPositive() {
			break
		}
		switch src {
		case types.SourceGrant:
			err = k.drawFromGrants(ctx, plan)
		case types.SourceBalance:
			err = k.drawFromBalance(ctx, plan)
		default:
			err = types.ErrInvalidSourceSet.Wrapf("unknown source %d", src)
		}
		if err != nil {
			return types.ResolvedFunding{}, err
		}
	}

	if plan.remaining.IsPositive() {
		return types.ResolvedFunding{}, types.ErrInsufficientFunds.Wrapf(
			"sources %v cover %s of %s", dep.Sources, dep.Amount.Amount.Sub(plan.remaining), dep.Amount,
		)
	}
	return types.ResolvedFunding{Draws: plan.draws, Total: dep.Amount}, nil
}

// drawFromGrants takes from every eligible grant in priority order, each capped by
// its spend limit and by what its granter can actually spend.
func (k Keeper) drawFromGrants(ctx context.Context, plan *fundingPlan) error {
	grants, err := k.EligibleGrants(ctx, plan.payer.String(), plan.scope, plan.msgKind)
	if err != nil {
		return err
	}
	if len(grants) == 0 {
		return types.ErrNoEligibleGrant.Wrapf("grantee %s holds no grant for %s deposits via %s", plan.payer, plan.scope, plan.msgKind)
	}

	for _, g := range grants {
		if !plan.remaining.IsPositive() {
			return nil
		}
		granter, err := sdk.AccAddressFromBech32(g.Granter)
		if err != nil {
			return fmt.Errorf("invalid granter on stored grant: %w", err)
		}
		spendable := k.bankKeeper.SpendableCoins(ctx, granter).AmountOf(plan.denom).Sub(plan.plannedFrom(g.Granter))
		amt := sdkmath.MinInt(plan.remaining, g.Authorization.SpendLimit.Amount)
		amt = sdkmath.MinInt(amt, spendable)
		if !amt.IsPositive() {
			continue
		}
		plan.add(types.Draw{
			Source:  types.SourceGrant,
			Payer:   plan.payer.String(),
			Granter: g.Granter,
			Amount:  sdk.NewCoin(plan.denom, amt),
		})
	}
	return nil
}

func (k Keeper) drawFromBalance(ctx context.Context, plan *fundingPlan) error {
	spendable := k.bankKeeper.SpendableCoins(ctx, plan.payer).AmountOf(plan.denom).Sub(plan.plannedFrom(plan.payer.String()))
	amt := sdkmath.MinInt(plan.remaining, spendable)
	if !amt.IsPositive() {
		return nil
	}
	plan.add(types.Draw{
		Source: types.SourceBalance,
		Payer:  plan.payer.String(),
		Amount: sdk.NewCoin(plan.denom, amt),
	})
	return nil
}

// ApplyFunding moves a resolved plan into the escrow module account and charges
// the grants it draws on. Either every draw lands or none do.
func (k Keeper) ApplyFunding(
	ctx context.Context,
	payer sdk.AccAddress,
	scope types.Scope,
	msgKind string,
	funding types.ResolvedFunding,
) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	cacheCtx, writeFn := sdkCtx.CacheContext()

	for _, d := range funding.Draws {
		if d.Source == types.SourceGrant {
			if err := k.spendGrant(cacheCtx, d.Granter, payer.String(), scope, msgKind, d.Amount); err != nil {
				return err
			}
		}
		from, err := sdk.AccAddressFromBech32(d.From())
		if err != nil {
			return fmt.Errorf("invalid draw address %q: %w", d.From(), err)
		}
		if err := k.bankKeeper.SendCoinsFromAccountToModule(cacheCtx, from, types.ModuleName, sdk.NewCoins(d.Amount)); err != nil {
			return types.ErrInsufficientFunds.Wrapf("draw %s from %s: %v", d.Amount, d.From(), err)
		}
	}
	writeFn()

	for _, d := range funding.Draws {
		if d.Amount.Amount.IsInt64() {
			k.metrics.Deposited.WithLabelValues(scope.String(), d.Source.String()).Add(float64(d.Amount.Amount.Int64()))
		}
	}
	return nil
}

// Deposit resolves and applies a deposit in one step, returning the provenance
// entries to credit the account with.
func (k Keeper) Deposit(
	ctx context.Context,
	payer sdk.AccAddress,
	scope types.Scope,
	msgKind string,
	dep types.Deposit,
) ([]types.Fund, error) {
	funding, err := k.ResolveDeposit(ctx, payer, scope, msgKind, dep)
	if err != nil {
		k.metrics.DepositFailures.WithLabelValues(scope.String()).Inc()
		return nil, err
	}
	if err := k.ApplyFunding(ctx, payer, scope, msgKind, funding); err != nil {
		k.metrics.DepositFailures.WithLabelValues(scope.String()).Inc()
		return nil, err
	}
	return funding.Funds(), nil
}
