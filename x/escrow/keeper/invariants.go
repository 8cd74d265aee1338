package keeper

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

// RegisterInvariants registers all escrow invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "account-conservation", AccountConservationInvariant(k))
	ir.RegisterRoute(types.ModuleName, "payment-withdrawn", PaymentWithdrawnInvariant(k))
	ir.RegisterRoute(types.ModuleName, "module-account-balance", ModuleAccountBalanceInvariant(k))
}

// AllInvariants runs all invariants of the escrow module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := AccountConservationInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		res, stop = PaymentWithdrawnInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		return ModuleAccountBalanceInvariant(k)(ctx)
	}
}

// AccountConservationInvariant checks that no balance is negative and that every
// account's balance, transfers and refunds add up to what was credited.
func AccountConservationInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		err := k.IterateAccounts(ctx, func(acc types.Account) (bool, error) {
			if acc.Balance.IsNegative() {
				count++
				msg += fmt.Sprintf("account %s: negative balance %s\n", acc.ID, acc.Balance)
			}
			if !acc.Conserved() {
				count++
				msg += fmt.Sprintf("account %s: balance %s + transferred %s + refunded %s != funded %s\n",
					acc.ID, acc.Balance.Amount, acc.Transferred.Amount, acc.Refunded.Amount, acc.TotalFunded())
			}
			return false, nil
		})
		if err != nil {
			count++
			msg += fmt.Sprintf("iterate accounts: %v\n", err)
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "account-conservation",
			fmt.Sprintf("found %d conservation violations\n%s", count, msg),
		), broken
	}
}

// PaymentWithdrawnInvariant checks that the payments of an account never withdrew
// more in total than the account transferred out.
func PaymentWithdrawnInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		err := k.IterateAccounts(ctx, func(acc types.Account) (bool, error) {
			payments, err := k.AccountPayments(ctx, acc.ID, types.StateInvalid)
			if err != nil {
				return true, err
			}
			withdrawn := sdkmath.ZeroInt()
			for _, p := range payments {
				withdrawn = withdrawn.Add(p.Withdrawn.Amount)
			}
			if !withdrawn.Equal(acc.Transferred.Amount) {
				count++
				msg += fmt.Sprintf("account %s: payments withdrew %s, account transferred %s\n",
					acc.ID, withdrawn, acc.Transferred.Amount)
			}
			if withdrawn.GT(acc.TotalFunded()) {
				count++
				msg += fmt.Sprintf("account %s: payments withdrew %s of %s funded\n",
					acc.ID, withdrawn, acc.TotalFunded())
			}
			return false, nil
		})
		if err != nil {
			count++
			msg += fmt.Sprintf("iterate payments: %v\n", err)
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "payment-withdrawn",
			fmt.Sprintf("found %d withdrawal violations\n%s", count, msg),
		), broken
	}
}

// ModuleAccountBalanceInvariant checks that the escrow module account holds at
// least the sum of all open balances.
func ModuleAccountBalanceInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		params, err := k.GetParams(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "module-account-balance", err.Error()), true
		}

		required := sdkmath.ZeroInt()
		err = k.IterateAccountsByState(ctx, types.StateOpen, func(acc types.Account) (bool, error) {
			required = required.Add(acc.Balance.Amount)
			return false, nil
		})
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "module-account-balance", err.Error()), true
		}

		balance := k.bankKeeper.GetBalance(ctx, k.ModuleAddress(), params.Denom)
		broken := balance.Amount.LT(required)
		return sdk.FormatInvariant(
			types.ModuleName, "module-account-balance",
			fmt.Sprintf("module balance %s, open escrow balances %s%s\n", balance.Amount, required, params.Denom),
		), broken
	}
}
