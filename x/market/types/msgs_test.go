package types_test

import (
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/stretchr/testify/require"

	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	"github.com/paw-chain/leasepay/x/market/types"
)

var (
	owner    = authtypes.NewModuleAddress("tenant").String()
	provider = authtypes.NewModuleAddress("provider").String()
)

func testBidID() types.BidID {
	return types.BidID{Owner: owner, DSeq: 1, GSeq: 1, OSeq: 1, Provider: provider}
}

func TestMsgValidateBasic(t *testing.T) {
	deposit := escrowtypes.NewDeposit(sdk.NewInt64Coin("upaw", 1000), escrowtypes.SourceBalance)
	id := testBidID()

	tests := []struct {
		name    string
		msg     interface{ ValidateBasic() error }
		wantErr error
	}{
		{"create deployment", types.MsgCreateDeployment{ID: id.DeploymentID(), Groups: 1, Deposit: deposit}, nil},
		{"deployment without groups", types.MsgCreateDeployment{ID: id.DeploymentID(), Deposit: deposit}, types.ErrInvalidID},
		{"deployment zero dseq", types.MsgCreateDeployment{ID: types.DeploymentID{Owner: owner}, Groups: 1, Deposit: deposit}, types.ErrInvalidID},
		{"deployment bad deposit", types.MsgCreateDeployment{ID: id.DeploymentID(), Groups: 1}, escrowtypes.ErrInvalidDeposit},
		{"create bid", types.MsgCreateBid{Order: id.OrderID(), Provider: provider, Price: sdk.NewInt64DecCoin("upaw", 5), Deposit: deposit}, nil},
		{"bid zero price", types.MsgCreateBid{Order: id.OrderID(), Provider: provider, Price: sdk.NewInt64DecCoin("upaw", 0), Deposit: deposit}, types.ErrInvalidPrice},
		{"bid zero gseq", types.MsgCreateBid{Order: types.OrderID{Owner: owner, DSeq: 1, OSeq: 1}, Provider: provider, Price: sdk.NewInt64DecCoin("upaw", 5), Deposit: deposit}, types.ErrInvalidID},
		{"close bid", types.MsgCloseBid{ID: id}, nil},
		{"create lease", types.MsgCreateLease{BidID: id}, nil},
		{"close lease by owner", types.MsgCloseLease{Signer: owner, LeaseID: id.LeaseID()}, nil},
		{"close lease by provider", types.MsgCloseLease{Signer: provider, LeaseID: id.LeaseID()}, nil},
		{"close lease by stranger", types.MsgCloseLease{Signer: authtypes.NewModuleAddress("x").String(), LeaseID: id.LeaseID()}, types.ErrUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.ValidateBasic()
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestMsgSigners(t *testing.T) {
	id := testBidID()
	require.Equal(t, owner, types.MsgCreateLease{BidID: id}.GetSigners()[0].String())
	require.Equal(t, provider, types.MsgCloseBid{ID: id}.GetSigners()[0].String())
	require.Equal(t, escrowtypes.MsgTypeCreateBid, types.MsgCreateBid{}.Type())
}

func TestBidFilterMatch(t *testing.T) {
	id := testBidID()
	require.True(t, types.BidFilter{}.Match(id))
	require.True(t, types.BidFilter{Owner: owner, DSeq: 1, Provider: provider}.Match(id))
	require.False(t, types.BidFilter{DSeq: 2}.Match(id))
	require.False(t, types.BidFilter{GSeq: 2}.Match(id))
	require.False(t, types.BidFilter{Provider: owner}.Match(id))
}

func TestParseStates(t *testing.T) {
	s, err := types.ParseBidState("LOST")
	require.NoError(t, err)
	require.Equal(t, types.BidLost, s)

	_, err = types.ParseBidState("won")
	require.Error(t, err)

	l, err := types.ParseLeaseState("active")
	require.NoError(t, err)
	require.Equal(t, types.LeaseActive, l)
}
