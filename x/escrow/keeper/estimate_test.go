package keeper_test

import (
	"time"

	keepertest "github.com/paw-chain/leasepay/testutil/keeper"
	"github.com/paw-chain/leasepay/x/escrow/types"
)

func (suite *KeeperTestSuite) TestEstimateBlocksRemaining() {
	f := suite.f
	id := suite.deploymentAccount(1)
	suite.openAccount(1, 1_000_000)
	suite.createPayment(id, "a", 60)
	suite.createPayment(id, "b", 40)

	est, err := suite.keeper().EstimateBlocksRemaining(f.Ctx, id)
	suite.Require().NoError(err)
	suite.Require().False(est.Unbounded)
	suite.Require().Equal(int64(10_000), est.BlocksRemaining)
	suite.Require().Equal(keepertest.Coin(100), est.OutflowRate)
	suite.Require().Equal(keepertest.Coin(1_000_000), est.Balance)
	suite.Require().True(est.EstimatedTime.Equal(keepertest.GenesisTime.Add(10_000*6*time.Second)))
}

func (suite *KeeperTestSuite) TestEstimateWithoutOutflowIsUnbounded() {
	f := suite.f
	id := suite.deploymentAccount(1)
	suite.openAccount(1, 500)

	est, err := suite.keeper().EstimateBlocksRemaining(f.Ctx, id)
	suite.Require().NoError(err)
	suite.Require().True(est.Unbounded)
	suite.Require().Zero(est.BlocksRemaining)
	suite.Require().True(est.OutflowRate.IsZero())
}

func (suite *KeeperTestSuite) TestEstimateClosedAccount() {
	f := suite.f
	id := suite.deploymentAccount(1)
	suite.openAccount(1, 500)
	suite.createPayment(id, "a", 10)
	suite.Require().NoError(suite.keeper().AccountClose(f.Ctx, id))

	est, err := suite.keeper().EstimateBlocksRemaining(f.Ctx, id)
	suite.Require().NoError(err)
	suite.Require().False(est.Unbounded)
	suite.Require().Zero(est.BlocksRemaining)
	suite.Require().True(est.Balance.IsZero())
}

func (suite *KeeperTestSuite) TestEstimateTracksSettlement() {
	f := suite.f
	id := suite.deploymentAccount(1)
	suite.openAccount(1, 100)
	suite.createPayment(id, "a", 30)

	est, err := suite.keeper().EstimateBlocksRemaining(f.Ctx, id)
	suite.Require().NoError(err)
	suite.Require().Equal(int64(3), est.BlocksRemaining)

	f.EndBlock(suite.T())
	est, err = suite.keeper().EstimateBlocksRemaining(f.Ctx, id)
	suite.Require().NoError(err)
	suite.Require().Equal(int64(2), est.BlocksRemaining)
	suite.Require().Equal(keepertest.Coin(70), est.Balance)
}

func (suite *KeeperTestSuite) TestEstimateUnknownAccount() {
	_, err := suite.keeper().EstimateBlocksRemaining(suite.f.Ctx, suite.deploymentAccount(9))
	suite.Require().ErrorIs(err, types.ErrAccountNotFound)
}
