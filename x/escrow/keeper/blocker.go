package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

// EventTypeBlockerError is emitted for every failure the end blocker swallows.
const EventTypeBlockerError = "escrow_blocker_error"

// Severity ranks an end blocker failure for operators.
type Severity int

const (
	// SeverityLow covers housekeeping such as grant pruning.
	SeverityLow Severity = iota
	// SeverityHigh covers a failed payment to a provider.
	SeverityHigh
	// SeverityCritical covers failures that stop a whole settlement pass.
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// handleBlockerError logs err at a level matching severity and emits an event
// so monitors can alert on it. The block continues either way. Returns true if
// err was non-nil.
func (k Keeper) handleBlockerError(ctx sdk.Context, operation string, severity Severity, err error, kv ...any) bool {
	if err == nil {
		return false
	}
	fields := append([]any{"operation", operation, "severity", severity.String(), "error", err.Error()}, kv...)
	logger := k.Logger(ctx)
	switch severity {
	case SeverityCritical, SeverityHigh:
		logger.Error("escrow end block failure", fields...)
	default:
		logger.Warn("escrow end block failure", fields...)
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			EventTypeBlockerError,
			sdk.NewAttribute("module", types.ModuleName),
			sdk.NewAttribute("operation", operation),
			sdk.NewAttribute("severity", severity.String()),
			sdk.NewAttribute("error", err.Error()),
			sdk.NewAttribute("height", fmt.Sprintf("%d", ctx.BlockHeight())),
		),
	)
	return true
}
