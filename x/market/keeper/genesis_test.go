package keeper_test

import (
	"encoding/json"

	keepertest "github.com/paw-chain/leasepay/testutil/keeper"
	"github.com/paw-chain/leasepay/x/market/types"
)

func (suite *KeeperTestSuite) TestGenesisRoundTrip() {
	f := suite.f
	suite.seedMarket()
	f.EndBlock(suite.T())

	exported, err := suite.keeper().ExportGenesis(f.Ctx)
	suite.Require().NoError(err)
	suite.Require().NoError(exported.Validate())
	suite.Require().Len(exported.Deployments, 2)
	suite.Require().Len(exported.Orders, 3)
	suite.Require().Len(exported.Bids, 3)
	suite.Require().Len(exported.Leases, 1)

	fresh := keepertest.EscrowKeeper(suite.T())
	suite.Require().NoError(fresh.MarketKeeper.InitGenesis(fresh.Ctx, *exported))

	again, err := fresh.MarketKeeper.ExportGenesis(fresh.Ctx)
	suite.Require().NoError(err)

	want, err := json.Marshal(exported)
	suite.Require().NoError(err)
	got, err := json.Marshal(again)
	suite.Require().NoError(err)
	suite.Require().JSONEq(string(want), string(got))
}

func (suite *KeeperTestSuite) TestInitGenesisRejectsInvalidState() {
	f := suite.f
	gs := types.DefaultGenesis()
	gs.Orders = append(gs.Orders, types.Order{ID: suite.orderID(1, 1), State: types.OrderOpen})
	suite.Require().Error(suite.keeper().InitGenesis(f.Ctx, *gs))
}
