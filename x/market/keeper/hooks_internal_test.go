package keeper

import (
	"testing"

	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/stretchr/testify/require"

	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	"github.com/paw-chain/leasepay/x/market/types"
)

func TestLeaseFromPayment(t *testing.T) {
	owner := authtypes.NewModuleAddress("tenant").String()
	provider := authtypes.NewModuleAddress("provider").String()
	lease := types.LeaseID{Owner: owner, DSeq: 7, GSeq: 2, OSeq: 1, Provider: provider}

	for _, pid := range leasePayments(lease) {
		got, ok := leaseFromPayment(pid)
		require.True(t, ok, pid.String())
		require.Equal(t, lease, got)
	}

	account := escrowtypes.DeploymentAccountID(owner, 7)
	for _, xid := range []string{"a", "1/2", "x/1/" + provider, "1/1/" + provider + "/tip"} {
		_, ok := leaseFromPayment(escrowtypes.PaymentID{AccountID: account, XID: xid})
		require.False(t, ok, xid)
	}

	bidAccount := BidEscrowID(lease.BidID())
	_, ok := leaseFromPayment(escrowtypes.PaymentID{AccountID: bidAccount, XID: lease.PaymentXID()})
	require.False(t, ok)
}

func TestBidFromAccount(t *testing.T) {
	owner := authtypes.NewModuleAddress("tenant").String()
	provider := authtypes.NewModuleAddress("provider").String()
	bid := types.BidID{Owner: owner, DSeq: 3, GSeq: 1, OSeq: 4, Provider: provider}

	got, ok := bidFromAccount(BidEscrowID(bid))
	require.True(t, ok)
	require.Equal(t, bid, got)

	_, ok = bidFromAccount(escrowtypes.AccountID{Scope: escrowtypes.ScopeBid, Owner: provider, XID: "3/1/4"})
	require.False(t, ok)
}
