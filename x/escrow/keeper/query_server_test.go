package keeper_test

import (
	"context"

	"github.com/cosmos/cosmos-sdk/types/query"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	keepertest "github.com/paw-chain/leasepay/testutil/keeper"
	"github.com/paw-chain/leasepay/x/escrow/keeper"
	"github.com/paw-chain/leasepay/x/escrow/types"
)

// seedAccounts opens deployments 1..3 for owner, closes deployment 2 and opens
// one bid account for provider.
func (suite *KeeperTestSuite) seedAccounts() types.AccountID {
	f := suite.f
	for dseq := uint64(1); dseq <= 3; dseq++ {
		suite.openAccount(dseq, 100)
		suite.createPayment(suite.deploymentAccount(dseq), "p", 1)
	}
	suite.Require().NoError(suite.keeper().AccountClose(f.Ctx, suite.deploymentAccount(2)))

	bid := types.BidAccountID(suite.provider.String(), suite.owner.String(), 1, 1, 1)
	f.Fund(suite.T(), suite.provider, 50)
	_, err := suite.keeper().AccountOpen(f.Ctx, bid, suite.provider, types.MsgTypeCreateBid,
		types.NewDeposit(keepertest.Coin(50), types.SourceBalance))
	suite.Require().NoError(err)
	return bid
}

func (suite *KeeperTestSuite) TestQueryAccountsFilters() {
	f := suite.f
	qs := keeper.NewQueryServerImpl(*suite.keeper())
	bid := suite.seedAccounts()

	tests := []struct {
		name   string
		filter types.AccountFilter
		want   int
	}{
		{"all", types.AccountFilter{}, 4},
		{"open", types.AccountFilter{State: types.StateOpen}, 3},
		{"closed", types.AccountFilter{State: types.StateClosed}, 1},
		{"deployment scope", types.AccountFilter{Scope: types.ScopeDeployment}, 3},
		{"open deployments", types.AccountFilter{Scope: types.ScopeDeployment, State: types.StateOpen}, 2},
		{"bid scope", types.AccountFilter{Scope: types.ScopeBid}, 1},
		{"by owner", types.AccountFilter{Owner: suite.owner.String()}, 3},
		{"by xid", types.AccountFilter{Scope: types.ScopeDeployment, XID: "3"}, 1},
		{"no match", types.AccountFilter{State: types.StateOverdrawn}, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			res, err := qs.Accounts(f.Ctx, &types.QueryAccountsRequest{Filter: tc.filter})
			suite.Require().NoError(err)
			suite.Require().Len(res.Accounts, tc.want)
			for _, acc := range res.Accounts {
				suite.Require().True(tc.filter.MatchAccount(acc.ID, acc.State))
			}
		})
	}

	res, err := qs.Accounts(f.Ctx, &types.QueryAccountsRequest{Filter: types.AccountFilter{Scope: types.ScopeBid}})
	suite.Require().NoError(err)
	suite.Require().Equal(bid, res.Accounts[0].ID)
}

func (suite *KeeperTestSuite) TestQueryAccountsPagination() {
	f := suite.f
	qs := keeper.NewQueryServerImpl(*suite.keeper())
	suite.seedAccounts()

	var (
		seen    = map[string]bool{}
		nextKey []byte
	)
	for page := 0; page < 10; page++ {
		res, err := qs.Accounts(f.Ctx, &types.QueryAccountsRequest{
			Filter:     types.AccountFilter{Scope: types.ScopeDeployment},
			Pagination: &query.PageRequest{Key: nextKey, Limit: 2},
		})
		suite.Require().NoError(err)
		suite.Require().LessOrEqual(len(res.Accounts), 2)
		for _, acc := range res.Accounts {
			suite.Require().False(seen[acc.ID.String()], "account %s returned twice", acc.ID)
			seen[acc.ID.String()] = true
		}
		nextKey = res.Pagination.NextKey
		if nextKey == nil {
			break
		}
	}
	suite.Require().Len(seen, 3)
}

func (suite *KeeperTestSuite) TestQueryPayments() {
	f := suite.f
	qs := keeper.NewQueryServerImpl(*suite.keeper())
	suite.seedAccounts()

	res, err := qs.Payments(f.Ctx, &types.QueryPaymentsRequest{})
	suite.Require().NoError(err)
	suite.Require().Len(res.Payments, 3)

	res, err = qs.Payments(f.Ctx, &types.QueryPaymentsRequest{Filter: types.AccountFilter{State: types.StateClosed}})
	suite.Require().NoError(err)
	suite.Require().Len(res.Payments, 1)
	suite.Require().Equal("2", res.Payments[0].ID.AccountID.XID)

	res, err = qs.Payments(f.Ctx, &types.QueryPaymentsRequest{Filter: types.AccountFilter{Scope: types.ScopeBid}})
	suite.Require().NoError(err)
	suite.Require().Empty(res.Payments)
}

func (suite *KeeperTestSuite) TestQueryCancelledContext() {
	f := suite.f
	qs := keeper.NewQueryServerImpl(*suite.keeper())
	suite.seedAccounts()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := qs.Accounts(f.Ctx.WithContext(ctx), &types.QueryAccountsRequest{})
	suite.Require().Error(err)
	suite.Require().Equal(codes.Canceled, status.Code(err))

	_, err = qs.Payments(f.Ctx.WithContext(ctx), &types.QueryPaymentsRequest{})
	suite.Require().Equal(codes.Canceled, status.Code(err))
}

func (suite *KeeperTestSuite) TestQueryBlocksRemaining() {
	f := suite.f
	qs := keeper.NewQueryServerImpl(*suite.keeper())
	suite.seedAccounts()

	res, err := qs.BlocksRemaining(f.Ctx, &types.QueryBlocksRemainingRequest{Owner: suite.owner.String(), DSeq: 1})
	suite.Require().NoError(err)
	suite.Require().Equal(int64(100), res.BlocksRemaining.BlocksRemaining)

	_, err = qs.BlocksRemaining(f.Ctx, &types.QueryBlocksRemainingRequest{Owner: suite.owner.String(), DSeq: 99})
	suite.Require().Equal(codes.NotFound, status.Code(err))

	_, err = qs.BlocksRemaining(f.Ctx, &types.QueryBlocksRemainingRequest{Owner: "bogus", DSeq: 1})
	suite.Require().Equal(codes.InvalidArgument, status.Code(err))
}

func (suite *KeeperTestSuite) TestQueryGrantsAndParams() {
	f := suite.f
	qs := keeper.NewQueryServerImpl(*suite.keeper())
	suite.grant(100, types.Expiration{})

	res, err := qs.Grants(f.Ctx, &types.QueryGrantsRequest{Grantee: suite.owner.String()})
	suite.Require().NoError(err)
	suite.Require().Len(res.Grants, 1)
	suite.Require().Equal(suite.granter.String(), res.Grants[0].Granter)

	params, err := qs.Params(f.Ctx, &types.QueryParamsRequest{})
	suite.Require().NoError(err)
	suite.Require().Equal(types.DefaultParams(), params.Params)

	_, err = qs.Params(f.Ctx, nil)
	suite.Require().Equal(codes.InvalidArgument, status.Code(err))
}
