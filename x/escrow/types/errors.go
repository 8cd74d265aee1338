package types

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
)

var (
	// Funding errors
	ErrInsufficientFunds = errorsmod.Register(ModuleName, 2, "insufficient funds")
	ErrNoEligibleGrant   = errorsmod.Register(ModuleName, 3, "no eligible deposit grant")
	ErrInvalidSourceSet  = errorsmod.Register(ModuleName, 4, "invalid deposit source set")
	ErrInvalidDeposit    = errorsmod.Register(ModuleName, 5, "invalid deposit")
	ErrInvalidDenom      = errorsmod.Register(ModuleName, 6, "invalid denomination")

	// Account errors
	ErrAccountNotFound  = errorsmod.Register(ModuleName, 10, "escrow account not found")
	ErrAccountClosed    = errorsmod.Register(ModuleName, 11, "escrow account closed")
	ErrAccountExists    = errorsmod.Register(ModuleName, 12, "escrow account already exists")
	ErrInvalidAccountID = errorsmod.Register(ModuleName, 13, "invalid escrow account id")

	// Payment errors
	ErrPaymentNotFound  = errorsmod.Register(ModuleName, 20, "payment not found")
	ErrPaymentExists    = errorsmod.Register(ModuleName, 21, "payment already exists")
	ErrInvalidPaymentID = errorsmod.Register(ModuleName, 22, "invalid payment id")
	ErrInvalidRate      = errorsmod.Register(ModuleName, 23, "invalid payment rate")

	// Grant errors
	ErrGrantNotFound = errorsmod.Register(ModuleName, 30, "deposit grant not found")
	ErrInvalidGrant  = errorsmod.Register(ModuleName, 31, "invalid deposit grant")

	ErrUnauthorized = errorsmod.Register(ModuleName, 40, "unauthorized")
	ErrInvalidState = errorsmod.Register(ModuleName, 41, "invalid escrow state")
)

// RecoverySuggestions provides actionable recovery steps for each error type
var RecoverySuggestions = map[error]string{
	ErrInsufficientFunds: "Top up the payer balance or add a grant source. The deposit is resolved all-or-nothing; nothing was drawn.",
	ErrNoEligibleGrant:   "Ask the granter for a deposit grant covering this scope and message kind, or drop the grant source. Expired and exhausted grants are never used.",
	ErrInvalidSourceSet:  "List each source at most once, in priority order, e.g. grant,balance.",
	ErrInvalidDeposit:    "Deposit amount must be a positive coin in the escrow denomination.",
	ErrInvalidDenom:      "Query params for the escrow denomination and resubmit in that denom.",
	ErrAccountNotFound:   "Verify scope, owner and xid. Query accounts to list known escrow accounts.",
	ErrAccountClosed:     "Closed and overdrawn accounts cannot be credited. Open a new deployment or bid.",
	ErrAccountExists:     "An escrow account with this id already exists. Use a new sequence number.",
	ErrPaymentNotFound:   "Verify the payment xid. Query payments for the account.",
	ErrGrantNotFound:     "No grant exists for this granter, grantee and message kind.",
}

// GetRecoverySuggestion returns the recovery suggestion for an error
func GetRecoverySuggestion(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if suggestion, ok := RecoverySuggestions[e]; ok {
			return suggestion
		}
	}
	return "No recovery suggestion available. Check error message for details."
}
