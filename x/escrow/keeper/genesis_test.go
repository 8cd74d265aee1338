package keeper_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/leasepay/testutil/keeper"
	"github.com/paw-chain/leasepay/x/escrow/types"
)

func (suite *KeeperTestSuite) TestGenesisRoundTrip() {
	f := suite.f
	suite.seedAccounts()
	f.Fund(suite.T(), suite.granter, 1_000)
	suite.grant(500, types.Expiration{Height: 100})
	f.EndBlock(suite.T())

	exported, err := suite.keeper().ExportGenesis(f.Ctx)
	suite.Require().NoError(err)
	suite.Require().NoError(exported.Validate())
	suite.Require().Len(exported.Accounts, 4)
	suite.Require().Len(exported.Payments, 3)
	suite.Require().Len(exported.Grants, 1)

	fresh := keepertest.EscrowKeeper(suite.T())
	suite.Require().NoError(fresh.EscrowKeeper.InitGenesis(fresh.Ctx, *exported))

	again, err := fresh.EscrowKeeper.ExportGenesis(fresh.Ctx)
	suite.Require().NoError(err)

	want, err := json.Marshal(exported)
	suite.Require().NoError(err)
	got, err := json.Marshal(again)
	suite.Require().NoError(err)
	suite.Require().JSONEq(string(want), string(got))

	// The grant sequence carries over so new grants sort after imported ones.
	g, err := fresh.EscrowKeeper.SaveDepositGrant(fresh.Ctx, types.DepositGrant{
		Granter:    keepertest.Addr("late-granter").String(),
		Grantee:    suite.owner.String(),
		MsgTypeURL: types.MsgTypeCreateDeployment,
		Authorization: types.DepositAuthorization{
			SpendLimit: keepertest.Coin(1),
			Scopes:     []types.Scope{types.ScopeDeployment},
		},
	})
	suite.Require().NoError(err)
	suite.Require().Greater(g.Sequence, exported.Grants[0].Sequence)
}

func (suite *KeeperTestSuite) TestExportRebasesHeights() {
	f := suite.f
	suite.seedAccounts()
	f.Fund(suite.T(), suite.granter, 1_000)
	f.EndBlock(suite.T())
	f.EndBlock(suite.T())

	height := f.Ctx.BlockHeight()
	suite.grant(500, types.Expiration{Height: height + 10})
	suite.grantFrom(keepertest.Addr("short-granter"), 500, types.Expiration{Height: height + 1})
	f.NextBlock()

	exported, err := suite.keeper().ExportGenesis(f.Ctx)
	suite.Require().NoError(err)
	for _, acc := range exported.Accounts {
		suite.Require().Zero(acc.SettledAt, acc.ID.String())
	}
	// The short grant expired with the last block; the other has nine blocks left.
	suite.Require().Len(exported.Grants, 1)
	suite.Require().Equal(int64(10), exported.Grants[0].Expiration.Height)

	fresh := keepertest.EscrowKeeper(suite.T())
	suite.Require().NoError(fresh.EscrowKeeper.InitGenesis(fresh.Ctx, *exported))
	for i := 0; i < 8; i++ {
		fresh.NextBlock()
	}
	eligible, err := fresh.EscrowKeeper.EligibleGrants(fresh.Ctx, suite.owner.String(), types.ScopeDeployment, types.MsgTypeCreateDeployment)
	suite.Require().NoError(err)
	suite.Require().Len(eligible, 1)

	fresh.NextBlock()
	eligible, err = fresh.EscrowKeeper.EligibleGrants(fresh.Ctx, suite.owner.String(), types.ScopeDeployment, types.MsgTypeCreateDeployment)
	suite.Require().NoError(err)
	suite.Require().Empty(eligible)
}

func (suite *KeeperTestSuite) TestExportSkipsExhaustedGrants() {
	f := suite.f
	f.Fund(suite.T(), suite.granter, 1_000)
	suite.grant(100, types.Expiration{})

	_, err := suite.keeper().Deposit(f.Ctx, suite.owner, types.ScopeDeployment, types.MsgTypeCreateDeployment,
		types.NewDeposit(keepertest.Coin(100), types.SourceGrant))
	suite.Require().NoError(err)

	exported, err := suite.keeper().ExportGenesis(f.Ctx)
	suite.Require().NoError(err)
	suite.Require().Empty(exported.Grants)
	suite.Require().NoError(exported.Validate())
}

func TestGenesisValidate(t *testing.T) {
	owner := keepertest.Addr("owner").String()
	id := types.DeploymentAccountID(owner, 1)
	funded := types.NewAccount(id, types.DefaultDenom, []types.Fund{{
		Source:    types.SourceBalance,
		Depositor: owner,
		Amount:    keepertest.Coin(100),
	}}, 1)

	tests := []struct {
		name    string
		mutate  func(*types.GenesisState)
		wantErr bool
	}{
		{
			name:   "default",
			mutate: func(*types.GenesisState) {},
		},
		{
			name: "valid account and payment",
			mutate: func(gs *types.GenesisState) {
				gs.Accounts = []types.Account{funded}
				gs.Payments = []types.Payment{types.NewPayment(types.PaymentID{AccountID: id, XID: "a"}, owner, keepertest.Coin(1))}
			},
		},
		{
			name: "duplicate account",
			mutate: func(gs *types.GenesisState) {
				gs.Accounts = []types.Account{funded, funded}
			},
			wantErr: true,
		},
		{
			name: "unbalanced account",
			mutate: func(gs *types.GenesisState) {
				acc := funded
				acc.Balance = keepertest.Coin(90)
				gs.Accounts = []types.Account{acc}
			},
			wantErr: true,
		},
		{
			name: "payment without account",
			mutate: func(gs *types.GenesisState) {
				gs.Payments = []types.Payment{types.NewPayment(types.PaymentID{AccountID: id, XID: "a"}, owner, keepertest.Coin(1))}
			},
			wantErr: true,
		},
		{
			name: "open payment on closed account",
			mutate: func(gs *types.GenesisState) {
				acc := funded
				acc.State = types.StateClosed
				acc.Balance = keepertest.Coin(0)
				acc.Refunded = keepertest.Coin(100)
				gs.Accounts = []types.Account{acc}
				gs.Payments = []types.Payment{types.NewPayment(types.PaymentID{AccountID: id, XID: "a"}, owner, keepertest.Coin(1))}
			},
			wantErr: true,
		},
		{
			name: "grant sequence ahead of counter",
			mutate: func(gs *types.GenesisState) {
				gs.Grants = []types.DepositGrant{{
					Granter:    keepertest.Addr("granter").String(),
					Grantee:    owner,
					MsgTypeURL: types.MsgTypeCreateDeployment,
					Authorization: types.DepositAuthorization{
						SpendLimit: keepertest.Coin(1),
						Scopes:     []types.Scope{types.ScopeDeployment},
					},
					Sequence: 5,
				}}
				gs.NextGrantSequence = 5
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gs := types.DefaultGenesis()
			tc.mutate(gs)
			err := gs.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
