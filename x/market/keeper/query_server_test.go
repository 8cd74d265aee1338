package keeper_test

import (
	"context"

	"github.com/cosmos/cosmos-sdk/types/query"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/paw-chain/leasepay/x/market/keeper"
	"github.com/paw-chain/leasepay/x/market/types"
)

// seedMarket creates two deployments; the first has three bids on its only order
// and a lease for the first provider.
func (suite *KeeperTestSuite) seedMarket() {
	suite.createDeployment(1, 1, 1_000_000)
	suite.createDeployment(2, 2, 1_000_000)
	var first types.Bid
	for i, p := range suite.providers {
		b := suite.createBid(suite.orderID(1, 1), p, 100)
		if i == 0 {
			first = b
		}
	}
	_, err := suite.keeper().CreateLease(suite.f.Ctx, first.ID)
	suite.Require().NoError(err)
}

func (suite *KeeperTestSuite) TestQueryBids() {
	f := suite.f
	qs := keeper.NewQueryServerImpl(*suite.keeper())
	suite.seedMarket()

	tests := []struct {
		name   string
		filter types.BidFilter
		want   int
	}{
		{"all", types.BidFilter{}, 3},
		{"by owner", types.BidFilter{Owner: suite.owner.String()}, 3},
		{"by deployment", types.BidFilter{Owner: suite.owner.String(), DSeq: 2}, 0},
		{"lost", types.BidFilter{State: "lost"}, 2},
		{"active", types.BidFilter{State: "active"}, 1},
		{"by provider", types.BidFilter{Provider: suite.providers[2].String()}, 1},
	}
	for _, tc := range tests {
		suite.Run(tc.name, func() {
			res, err := qs.Bids(f.Ctx, &types.QueryBidsRequest{Filter: tc.filter})
			suite.Require().NoError(err)
			suite.Require().Len(res.Bids, tc.want)
		})
	}

	_, err := qs.Bids(f.Ctx, &types.QueryBidsRequest{Filter: types.BidFilter{State: "won"}})
	suite.Require().Equal(codes.InvalidArgument, status.Code(err))
}

func (suite *KeeperTestSuite) TestQueryLeasesAndOrders() {
	f := suite.f
	qs := keeper.NewQueryServerImpl(*suite.keeper())
	suite.seedMarket()

	leases, err := qs.Leases(f.Ctx, &types.QueryLeasesRequest{Filter: types.BidFilter{Provider: suite.providers[0].String()}})
	suite.Require().NoError(err)
	suite.Require().Len(leases.Leases, 1)
	suite.Require().Equal(types.LeaseActive, leases.Leases[0].State)

	leases, err = qs.Leases(f.Ctx, &types.QueryLeasesRequest{Filter: types.BidFilter{State: "closed"}})
	suite.Require().NoError(err)
	suite.Require().Empty(leases.Leases)

	orders, err := qs.Orders(f.Ctx, &types.QueryOrdersRequest{Filter: types.BidFilter{State: "open"}})
	suite.Require().NoError(err)
	suite.Require().Len(orders.Orders, 2)

	orders, err = qs.Orders(f.Ctx, &types.QueryOrdersRequest{
		Filter:     types.BidFilter{Owner: suite.owner.String()},
		Pagination: &query.PageRequest{Limit: 2, CountTotal: true},
	})
	suite.Require().NoError(err)
	suite.Require().Len(orders.Orders, 2)
	suite.Require().NotNil(orders.Pagination.NextKey)

	dep, err := qs.Deployment(f.Ctx, &types.QueryDeploymentRequest{ID: suite.deploymentID(2)})
	suite.Require().NoError(err)
	suite.Require().Len(dep.Orders, 2)

	_, err = qs.Deployment(f.Ctx, &types.QueryDeploymentRequest{ID: suite.deploymentID(5)})
	suite.Require().Equal(codes.NotFound, status.Code(err))
}

func (suite *KeeperTestSuite) TestQueryCancelledContext() {
	f := suite.f
	qs := keeper.NewQueryServerImpl(*suite.keeper())
	suite.seedMarket()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := qs.Bids(f.Ctx.WithContext(ctx), &types.QueryBidsRequest{})
	suite.Require().Equal(codes.Canceled, status.Code(err))
}
