package keeper_test

import (
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	keepertest "github.com/paw-chain/leasepay/testutil/keeper"
	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	"github.com/paw-chain/leasepay/x/market/types"
)

func (suite *KeeperTestSuite) TestCreateLeaseSettlesCompetingBids() {
	f := suite.f
	suite.createDeployment(1, 1, 1_000_000)
	order := suite.orderID(1, 1)

	var bids []types.Bid
	for _, p := range suite.providers {
		bids = append(bids, suite.createBid(order, p, 100))
		suite.requireBalance(p, 0)
	}

	lease, err := suite.keeper().CreateLease(f.Ctx, bids[0].ID)
	suite.Require().NoError(err)
	suite.Require().Equal(types.LeaseActive, lease.State)

	winner, err := suite.keeper().GetBid(f.Ctx, bids[0].ID)
	suite.Require().NoError(err)
	suite.Require().Equal(types.BidActive, winner.State)
	for i, b := range bids[1:] {
		lost, err := suite.keeper().GetBid(f.Ctx, b.ID)
		suite.Require().NoError(err)
		suite.Require().Equal(types.BidLost, lost.State)
		suite.requireBalance(suite.providers[i+1], 1_000)
	}
	suite.requireBalance(suite.providers[0], 0)

	o, err := suite.keeper().GetOrder(f.Ctx, order)
	suite.Require().NoError(err)
	suite.Require().Equal(types.OrderActive, o.State)

	_, err = suite.keeper().CreateLease(f.Ctx, bids[1].ID)
	suite.Require().ErrorIs(err, types.ErrBidNotOpen)

	// A 2% take splits the 100 per block price into 98 and 2.
	f.EndBlock(suite.T())
	suite.requireBalance(suite.providers[0], 98)
	suite.requireBalance(authtypes.NewModuleAddress(authtypes.FeeCollectorName), 2)
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestOverdrawnDeploymentClosesLeases() {
	f := suite.f
	suite.setTakeRate(0)
	suite.createDeployment(1, 2, 50)

	b1 := suite.createBid(suite.orderID(1, 1), suite.providers[0], 40)
	b2 := suite.createBid(suite.orderID(1, 2), suite.providers[1], 40)
	_, err := suite.keeper().CreateLease(f.Ctx, b1.ID)
	suite.Require().NoError(err)
	_, err = suite.keeper().CreateLease(f.Ctx, b2.ID)
	suite.Require().NoError(err)

	f.EndBlock(suite.T())

	for _, id := range []types.BidID{b1.ID, b2.ID} {
		lease, err := suite.keeper().GetLease(f.Ctx, id.LeaseID())
		suite.Require().NoError(err)
		suite.Require().Equal(types.LeaseClosed, lease.State)
		suite.Require().Equal(types.LeaseClosedReasonInsufficientFunds, lease.Reason)

		bid, err := suite.keeper().GetBid(f.Ctx, id)
		suite.Require().NoError(err)
		suite.Require().Equal(types.BidClosed, bid.State)

		o, err := suite.keeper().GetOrder(f.Ctx, id.OrderID())
		suite.Require().NoError(err)
		suite.Require().Equal(types.OrderClosed, o.State)
	}

	d, err := suite.keeper().GetDeployment(f.Ctx, suite.deploymentID(1))
	suite.Require().NoError(err)
	suite.Require().Equal(types.DeploymentClosed, d.State)

	acc, err := f.EscrowKeeper.GetAccount(f.Ctx, escrowtypes.DeploymentAccountID(suite.owner.String(), 1))
	suite.Require().NoError(err)
	suite.Require().Equal(escrowtypes.StateOverdrawn, acc.State)

	// First lease in payment order is paid in full, the second gets the rest.
	suite.requireBalance(suite.providers[0], 1_040)
	suite.requireBalance(suite.providers[1], 1_010)
	suite.requireInvariants()

	// Later blocks change nothing.
	f.EndBlock(suite.T())
	suite.requireBalance(suite.providers[0], 1_040)
	suite.requireBalance(suite.providers[1], 1_010)
}

func (suite *KeeperTestSuite) TestCloseLeaseStopsPayments() {
	f := suite.f
	suite.createDeployment(1, 1, 1_000_000)
	bid := suite.createBid(suite.orderID(1, 1), suite.providers[0], 100)
	_, err := suite.keeper().CreateLease(f.Ctx, bid.ID)
	suite.Require().NoError(err)
	f.EndBlock(suite.T())

	suite.Require().NoError(suite.keeper().CloseLease(f.Ctx, bid.ID.LeaseID(), types.LeaseClosedReasonOwner))

	lease, err := suite.keeper().GetLease(f.Ctx, bid.ID.LeaseID())
	suite.Require().NoError(err)
	suite.Require().Equal(types.LeaseClosed, lease.State)
	suite.Require().Equal(f.Ctx.BlockHeight(), lease.ClosedOn)

	// Bid deposit refunded on top of one block of earnings.
	suite.requireBalance(suite.providers[0], 1_098)

	f.EndBlock(suite.T())
	suite.requireBalance(suite.providers[0], 1_098)

	err = suite.keeper().CloseLease(f.Ctx, bid.ID.LeaseID(), types.LeaseClosedReasonOwner)
	suite.Require().ErrorIs(err, types.ErrLeaseNotActive)

	// The deployment stays up and its funds stay escrowed.
	d, err := suite.keeper().GetDeployment(f.Ctx, suite.deploymentID(1))
	suite.Require().NoError(err)
	suite.Require().Equal(types.DeploymentActive, d.State)
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestCreateLeaseRequiresOpenOrderAndDeployment() {
	f := suite.f
	suite.createDeployment(1, 1, 1_000_000)
	bid := suite.createBid(suite.orderID(1, 1), suite.providers[0], 100)

	suite.Require().NoError(suite.keeper().CloseDeployment(f.Ctx, suite.deploymentID(1)))

	_, err := suite.keeper().CreateLease(f.Ctx, bid.ID)
	suite.Require().ErrorIs(err, types.ErrBidNotOpen)

	_, err = suite.keeper().CreateLease(f.Ctx, types.MakeBidID(suite.orderID(1, 1), keepertest.Addr("stranger").String()))
	suite.Require().ErrorIs(err, types.ErrBidNotFound)
}
