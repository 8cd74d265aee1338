package types

import "context"

// EscrowHooks is notified when accounts and payments leave the open state.
type EscrowHooks interface {
	// OnAccountClosed is called after an account is closed or overdrawn.
	OnAccountClosed(ctx context.Context, account Account) error

	// OnPaymentClosed is called after a payment is closed, either explicitly or
	// because its account was closed or overdrawn.
	OnPaymentClosed(ctx context.Context, payment Payment) error
}

// MultiEscrowHooks combines multiple escrow hooks into a single hook that calls all of them.
type MultiEscrowHooks []EscrowHooks

// NewMultiEscrowHooks creates a new MultiEscrowHooks from a list of hooks.
func NewMultiEscrowHooks(hooks ...EscrowHooks) MultiEscrowHooks {
	return hooks
}

// OnAccountClosed calls OnAccountClosed on all registered hooks.
func (h MultiEscrowHooks) OnAccountClosed(ctx context.Context, account Account) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.OnAccountClosed(ctx, account); err != nil {
			return err
		}
	}
	return nil
}

// OnPaymentClosed calls OnPaymentClosed on all registered hooks.
func (h MultiEscrowHooks) OnPaymentClosed(ctx context.Context, payment Payment) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.OnPaymentClosed(ctx, payment); err != nil {
			return err
		}
	}
	return nil
}
