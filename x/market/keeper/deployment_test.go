package keeper_test

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	keepertest "github.com/paw-chain/leasepay/testutil/keeper"
	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	"github.com/paw-chain/leasepay/x/market/types"
)

func (suite *KeeperTestSuite) TestCreateDeploymentOpensOrders() {
	f := suite.f
	d := suite.createDeployment(1, 3, 10_000)
	suite.Require().Equal(types.DeploymentActive, d.State)

	orders, err := suite.keeper().DeploymentOrders(f.Ctx, d.ID)
	suite.Require().NoError(err)
	suite.Require().Len(orders, 3)
	for i, o := range orders {
		suite.Require().Equal(uint32(i+1), o.ID.GSeq)
		suite.Require().Equal(uint32(1), o.ID.OSeq)
		suite.Require().Equal(types.OrderOpen, o.State)
	}

	acc, err := f.EscrowKeeper.GetAccount(f.Ctx, escrowtypes.DeploymentAccountID(suite.owner.String(), 1))
	suite.Require().NoError(err)
	suite.Require().Equal(keepertest.Coin(10_000), acc.Balance)

	f.Fund(suite.T(), suite.owner, 10_000)
	_, err = suite.keeper().CreateDeployment(f.Ctx, d.ID, 1,
		escrowtypes.NewDeposit(keepertest.Coin(10_000), escrowtypes.SourceBalance))
	suite.Require().ErrorIs(err, types.ErrDeploymentExists)
}

func (suite *KeeperTestSuite) TestCreateDeploymentFromGrant() {
	f := suite.f
	granter := keepertest.Addr("sponsor")
	f.Fund(suite.T(), granter, 5_000)
	_, err := f.EscrowKeeper.SaveDepositGrant(f.Ctx, escrowtypes.DepositGrant{
		Granter:    granter.String(),
		Grantee:    suite.owner.String(),
		MsgTypeURL: escrowtypes.MsgTypeCreateDeployment,
		Authorization: escrowtypes.DepositAuthorization{
			SpendLimit: keepertest.Coin(5_000),
			Scopes:     []escrowtypes.Scope{escrowtypes.ScopeDeployment},
		},
	})
	suite.Require().NoError(err)

	_, err = suite.keeper().CreateDeployment(f.Ctx, suite.deploymentID(1), 1,
		escrowtypes.NewDeposit(keepertest.Coin(5_000), escrowtypes.SourceGrant, escrowtypes.SourceBalance))
	suite.Require().NoError(err)
	suite.requireBalance(granter, 0)

	// Closing refunds the sponsor, not the tenant.
	suite.Require().NoError(suite.keeper().CloseDeployment(f.Ctx, suite.deploymentID(1)))
	suite.requireBalance(granter, 5_000)
	suite.requireBalance(suite.owner, 0)
}

func (suite *KeeperTestSuite) TestCreateDeploymentUnfundedLeavesNothing() {
	f := suite.f
	_, err := suite.keeper().CreateDeployment(f.Ctx, suite.deploymentID(1), 1,
		escrowtypes.NewDeposit(keepertest.Coin(5_000), escrowtypes.SourceBalance))
	suite.Require().ErrorIs(err, escrowtypes.ErrInsufficientFunds)

	_, err = suite.keeper().GetDeployment(f.Ctx, suite.deploymentID(1))
	suite.Require().ErrorIs(err, types.ErrDeploymentNotFound)
}

func (suite *KeeperTestSuite) TestCloseDeploymentTearsDownLease() {
	f := suite.f
	suite.createDeployment(1, 2, 1_000_000)
	winner := suite.createBid(suite.orderID(1, 1), suite.providers[0], 100)
	pending := suite.createBid(suite.orderID(1, 2), suite.providers[1], 100)
	_, err := suite.keeper().CreateLease(f.Ctx, winner.ID)
	suite.Require().NoError(err)
	f.EndBlock(suite.T())

	suite.Require().NoError(suite.keeper().CloseDeployment(f.Ctx, suite.deploymentID(1)))

	lease, err := suite.keeper().GetLease(f.Ctx, winner.ID.LeaseID())
	suite.Require().NoError(err)
	suite.Require().Equal(types.LeaseClosed, lease.State)
	suite.Require().Equal(types.LeaseClosedReasonDeploymentClosed, lease.Reason)

	for _, id := range []types.BidID{winner.ID, pending.ID} {
		bid, err := suite.keeper().GetBid(f.Ctx, id)
		suite.Require().NoError(err)
		suite.Require().Equal(types.BidClosed, bid.State)
	}
	orders, err := suite.keeper().DeploymentOrders(f.Ctx, suite.deploymentID(1))
	suite.Require().NoError(err)
	for _, o := range orders {
		suite.Require().Equal(types.OrderClosed, o.State)
	}

	// One block paid 100 out of the deposit; the tenant gets the rest back.
	suite.requireBalance(suite.owner, 999_900)
	suite.requireBalance(suite.providers[0], 1_098)
	suite.requireBalance(suite.providers[1], 1_000)

	err = suite.keeper().CloseDeployment(f.Ctx, suite.deploymentID(1))
	suite.Require().ErrorIs(err, types.ErrDeploymentClosed)

	f.EndBlock(suite.T())
	suite.requireBalance(suite.providers[0], 1_098)
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestCloseActiveBidClosesLease() {
	f := suite.f
	suite.createDeployment(1, 1, 1_000_000)
	bid := suite.createBid(suite.orderID(1, 1), suite.providers[0], 100)
	_, err := suite.keeper().CreateLease(f.Ctx, bid.ID)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.keeper().CloseBid(f.Ctx, bid.ID))

	lease, err := suite.keeper().GetLease(f.Ctx, bid.ID.LeaseID())
	suite.Require().NoError(err)
	suite.Require().Equal(types.LeaseClosedReasonBidClosed, lease.Reason)
	suite.requireBalance(suite.providers[0], 1_000)

	err = suite.keeper().CloseBid(f.Ctx, bid.ID)
	suite.Require().ErrorIs(err, types.ErrBidNotOpen)
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestCreateBidChecks() {
	f := suite.f
	suite.createDeployment(1, 1, 1_000_000)
	order := suite.orderID(1, 1)
	provider := suite.providers[0]
	f.Fund(suite.T(), provider, 10_000)

	bid := func(price sdk.DecCoin, deposit int64) error {
		_, err := suite.keeper().CreateBid(f.Ctx, order, provider, price, nil,
			escrowtypes.NewDeposit(keepertest.Coin(deposit), escrowtypes.SourceBalance))
		return err
	}

	suite.Require().ErrorIs(bid(sdk.NewDecCoinFromDec(keepertest.Denom, sdkmath.LegacyMustNewDecFromStr("0.5")), 1_000), types.ErrInvalidPrice)
	suite.Require().ErrorIs(bid(sdk.NewInt64DecCoin("uatom", 10), 1_000), types.ErrInvalidPrice)
	suite.Require().ErrorIs(bid(sdk.NewInt64DecCoin(keepertest.Denom, 10), 999), types.ErrInsufficientBidDeposit)
	suite.requireBalance(provider, 10_000)

	suite.Require().NoError(bid(sdk.NewInt64DecCoin(keepertest.Denom, 10), 1_000))
	suite.Require().ErrorIs(bid(sdk.NewInt64DecCoin(keepertest.Denom, 10), 1_000), types.ErrBidExists)

	_, err := suite.keeper().CreateBid(f.Ctx, suite.orderID(9, 1), provider, sdk.NewInt64DecCoin(keepertest.Denom, 10), nil,
		escrowtypes.NewDeposit(keepertest.Coin(1_000), escrowtypes.SourceBalance))
	suite.Require().ErrorIs(err, types.ErrOrderNotFound)
}

func (suite *KeeperTestSuite) TestCreateBidLimits() {
	f := suite.f
	params, err := suite.keeper().GetParams(f.Ctx)
	suite.Require().NoError(err)
	params.OrderMaxBids = 1
	suite.Require().NoError(suite.keeper().SetParams(f.Ctx, params))

	suite.createDeployment(1, 1, 1_000_000)
	order := suite.orderID(1, 1)
	first := suite.createBid(order, suite.providers[0], 10)

	f.Fund(suite.T(), suite.providers[1], 1_000)
	_, err = suite.keeper().CreateBid(f.Ctx, order, suite.providers[1], sdk.NewInt64DecCoin(keepertest.Denom, 10), nil,
		escrowtypes.NewDeposit(keepertest.Coin(1_000), escrowtypes.SourceBalance))
	suite.Require().ErrorIs(err, types.ErrTooManyBids)

	_, err = suite.keeper().CreateLease(f.Ctx, first.ID)
	suite.Require().NoError(err)

	_, err = suite.keeper().CreateBid(f.Ctx, order, suite.providers[2], sdk.NewInt64DecCoin(keepertest.Denom, 10), nil,
		escrowtypes.NewDeposit(keepertest.Coin(1_000), escrowtypes.SourceBalance))
	suite.Require().ErrorIs(err, types.ErrOrderNotOpen)
}
