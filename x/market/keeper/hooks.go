package keeper

import (
	"context"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"

	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	"github.com/paw-chain/leasepay/x/market/types"
)

// Hooks wrapper struct for the market keeper
type Hooks struct {
	k Keeper
}

var _ escrowtypes.EscrowHooks = Hooks{}

// Hooks returns the escrow hooks that keep leases in step with their funding.
func (k Keeper) Hooks() Hooks {
	return Hooks{k}
}

// leaseFromPayment maps a deployment payment back to the lease it funds.
func leaseFromPayment(id escrowtypes.PaymentID) (types.LeaseID, bool) {
	if id.AccountID.Scope != escrowtypes.ScopeDeployment {
		return types.LeaseID{}, false
	}
	dseq, err := strconv.ParseUint(id.AccountID.XID, 10, 64)
	if err != nil {
		return types.LeaseID{}, false
	}
	parts := strings.Split(id.XID, "/")
	if len(parts) != 3 && !(len(parts) == 4 && parts[3] == "fee") {
		return types.LeaseID{}, false
	}
	gseq, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return types.LeaseID{}, false
	}
	oseq, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return types.LeaseID{}, false
	}
	return types.LeaseID{
		Owner:    id.AccountID.Owner,
		DSeq:     dseq,
		GSeq:     uint32(gseq),
		OSeq:     uint32(oseq),
		Provider: parts[2],
	}, true
}

// OnPaymentClosed closes the lease a payment funds. A payment closed because its
// account ran dry closes the lease for insufficient funds. Leases that are already
// closed are ignored, which also covers payments closed by the lease itself.
func (h Hooks) OnPaymentClosed(ctx context.Context, payment escrowtypes.Payment) error {
	id, ok := leaseFromPayment(payment.ID)
	if !ok {
		return nil
	}
	lease, err := h.k.GetLease(ctx, id)
	if err != nil {
		if errorsmod.IsOf(err, types.ErrLeaseNotFound) {
			return nil
		}
		return err
	}
	if lease.State != types.LeaseActive {
		return nil
	}

	reason := types.LeaseClosedReasonEscrowClosed
	if payment.State == escrowtypes.StateOverdrawn {
		reason = types.LeaseClosedReasonInsufficientFunds
	}
	return h.k.closeLease(ctx, lease, reason)
}

// OnAccountClosed shuts down what an escrow account was backing when the account
// closes underneath it: the deployment for a deployment account, the bid for a
// bid account.
func (h Hooks) OnAccountClosed(ctx context.Context, account escrowtypes.Account) error {
	switch account.ID.Scope {
	case escrowtypes.ScopeDeployment:
		dseq, err := strconv.ParseUint(account.ID.XID, 10, 64)
		if err != nil {
			return nil
		}
		d, err := h.k.GetDeployment(ctx, types.DeploymentID{Owner: account.ID.Owner, DSeq: dseq})
		if err != nil || d.State != types.DeploymentActive {
			return nil
		}
		reason := types.LeaseClosedReasonEscrowClosed
		if account.State == escrowtypes.StateOverdrawn {
			reason = types.LeaseClosedReasonInsufficientFunds
		}
		return h.k.closeDeployment(ctx, d, reason)

	case escrowtypes.ScopeBid:
		id, ok := bidFromAccount(account.ID)
		if !ok {
			return nil
		}
		bid, err := h.k.GetBid(ctx, id)
		if err != nil {
			return nil
		}
		if bid.State != types.BidOpen && bid.State != types.BidActive {
			return nil
		}
		return h.k.CloseBid(ctx, id)
	}
	return nil
}

func bidFromAccount(id escrowtypes.AccountID) (types.BidID, bool) {
	parts := strings.Split(id.XID, "/")
	if len(parts) != 4 {
		return types.BidID{}, false
	}
	dseq, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return types.BidID{}, false
	}
	gseq, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return types.BidID{}, false
	}
	oseq, err := strconv.ParseUint(parts[3], 10, 32)
	if err != nil {
		return types.BidID{}, false
	}
	return types.BidID{Owner: parts[0], DSeq: dseq, GSeq: uint32(gseq), OSeq: uint32(oseq), Provider: id.Owner}, true
}
