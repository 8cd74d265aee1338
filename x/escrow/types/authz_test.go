package types_test

import (
	"math"
	"testing"
	"time"

	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

func testGrant() types.DepositGrant {
	return types.DepositGrant{
		Granter:    authtypes.NewModuleAddress("granter").String(),
		Grantee:    authtypes.NewModuleAddress("grantee").String(),
		MsgTypeURL: types.MsgTypeCreateDeployment,
		Authorization: types.DepositAuthorization{
			SpendLimit: coin(100),
			Scopes:     []types.Scope{types.ScopeDeployment},
		},
	}
}

func TestAuthorize(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	tests := []struct {
		name    string
		mutate  func(*types.DepositGrant)
		scope   types.Scope
		msgKind string
		height  int64
		at      time.Time
		want    bool
	}{
		{"matching", func(*types.DepositGrant) {}, types.ScopeDeployment, types.MsgTypeCreateDeployment, 1, now, true},
		{"wrong scope", func(*types.DepositGrant) {}, types.ScopeBid, types.MsgTypeCreateDeployment, 1, now, false},
		{"wrong kind", func(*types.DepositGrant) {}, types.ScopeDeployment, types.MsgTypeAccountDeposit, 1, now, false},
		{
			"height reached",
			func(g *types.DepositGrant) { g.Expiration.Height = 5 },
			types.ScopeDeployment, types.MsgTypeCreateDeployment, 5, now, false,
		},
		{
			"height not reached",
			func(g *types.DepositGrant) { g.Expiration.Height = 5 },
			types.ScopeDeployment, types.MsgTypeCreateDeployment, 4, now, true,
		},
		{
			"time reached",
			func(g *types.DepositGrant) { g.Expiration.Time = &later },
			types.ScopeDeployment, types.MsgTypeCreateDeployment, 1, later, false,
		},
		{
			"exhausted",
			func(g *types.DepositGrant) { g.Authorization.SpendLimit = coin(0) },
			types.ScopeDeployment, types.MsgTypeCreateDeployment, 1, now, false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := testGrant()
			tc.mutate(&g)
			require.Equal(t, tc.want, types.Authorize(g, tc.scope, tc.msgKind, tc.height, tc.at))
		})
	}
}

func TestExpirationDeadline(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, bounded := types.Expiration{}.Deadline(1, now, 6*time.Second)
	require.False(t, bounded)

	deadline, bounded := types.Expiration{Height: 11}.Deadline(1, now, 6*time.Second)
	require.True(t, bounded)
	require.True(t, deadline.Equal(now.Add(60*time.Second)))

	sooner := now.Add(10 * time.Second)
	deadline, _ = types.Expiration{Height: 11, Time: &sooner}.Deadline(1, now, 6*time.Second)
	require.True(t, deadline.Equal(sooner))

	// A height bound too far out to convert still sorts after any realistic time.
	distant, bounded := types.Expiration{Height: math.MaxInt64}.Deadline(1, now, 6*time.Second)
	require.True(t, bounded)
	require.True(t, distant.After(now.AddDate(1000, 0, 0)))

	deadline, _ = types.Expiration{Height: math.MaxInt64, Time: &sooner}.Deadline(1, now, 6*time.Second)
	require.True(t, deadline.Equal(sooner))
}

func TestDepositGrantValidateBasic(t *testing.T) {
	require.NoError(t, testGrant().ValidateBasic())

	g := testGrant()
	g.Grantee = g.Granter
	require.ErrorIs(t, g.ValidateBasic(), types.ErrInvalidGrant)

	g = testGrant()
	g.Authorization.Scopes = nil
	require.ErrorIs(t, g.ValidateBasic(), types.ErrInvalidGrant)

	g = testGrant()
	g.MsgTypeURL = "/cosmos.bank.v1beta1.MsgSend"
	require.ErrorIs(t, g.ValidateBasic(), types.ErrInvalidGrant)

	g = testGrant()
	g.Authorization.SpendLimit = coin(0)
	require.ErrorIs(t, g.ValidateBasic(), types.ErrInvalidGrant)
}
