package keeper_test

import (
	keepertest "github.com/paw-chain/leasepay/testutil/keeper"
	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	"github.com/paw-chain/leasepay/x/market/keeper"
	"github.com/paw-chain/leasepay/x/market/types"
)

func (suite *KeeperTestSuite) TestMsgCloseLeaseByProvider() {
	f := suite.f
	ms := keeper.NewMsgServerImpl(*suite.keeper())
	suite.createDeployment(1, 1, 1_000_000)
	bid := suite.createBid(suite.orderID(1, 1), suite.providers[0], 100)
	_, err := ms.CreateLease(f.Ctx, &types.MsgCreateLease{BidID: bid.ID})
	suite.Require().NoError(err)

	_, err = ms.CloseLease(f.Ctx, &types.MsgCloseLease{
		Signer:  keepertest.Addr("stranger").String(),
		LeaseID: bid.ID.LeaseID(),
	})
	suite.Require().ErrorIs(err, types.ErrUnauthorized)

	_, err = ms.CloseLease(f.Ctx, &types.MsgCloseLease{
		Signer:  suite.providers[0].String(),
		LeaseID: bid.ID.LeaseID(),
	})
	suite.Require().NoError(err)

	lease, err := suite.keeper().GetLease(f.Ctx, bid.ID.LeaseID())
	suite.Require().NoError(err)
	suite.Require().Equal(types.LeaseClosedReasonProvider, lease.Reason)
}

func (suite *KeeperTestSuite) TestMsgCloseLeaseByOwner() {
	f := suite.f
	ms := keeper.NewMsgServerImpl(*suite.keeper())
	suite.createDeployment(1, 1, 1_000_000)
	bid := suite.createBid(suite.orderID(1, 1), suite.providers[0], 100)
	_, err := ms.CreateLease(f.Ctx, &types.MsgCreateLease{BidID: bid.ID})
	suite.Require().NoError(err)

	_, err = ms.CloseLease(f.Ctx, &types.MsgCloseLease{Signer: suite.owner.String(), LeaseID: bid.ID.LeaseID()})
	suite.Require().NoError(err)

	lease, err := suite.keeper().GetLease(f.Ctx, bid.ID.LeaseID())
	suite.Require().NoError(err)
	suite.Require().Equal(types.LeaseClosedReasonOwner, lease.Reason)
}

func (suite *KeeperTestSuite) TestMsgCreateDeploymentFailureLeavesNoTrace() {
	f := suite.f
	ms := keeper.NewMsgServerImpl(*suite.keeper())
	f.Fund(suite.T(), suite.owner, 400)

	// The grant covers part of the deposit and the balance cannot cover the rest.
	granter := keepertest.Addr("sponsor")
	f.Fund(suite.T(), granter, 500)
	_, err := f.EscrowKeeper.SaveDepositGrant(f.Ctx, escrowtypes.DepositGrant{
		Granter:    granter.String(),
		Grantee:    suite.owner.String(),
		MsgTypeURL: escrowtypes.MsgTypeCreateDeployment,
		Authorization: escrowtypes.DepositAuthorization{
			SpendLimit: keepertest.Coin(500),
			Scopes:     []escrowtypes.Scope{escrowtypes.ScopeDeployment},
		},
	})
	suite.Require().NoError(err)

	_, err = ms.CreateDeployment(f.Ctx, &types.MsgCreateDeployment{
		ID:      suite.deploymentID(1),
		Groups:  2,
		Deposit: escrowtypes.NewDeposit(keepertest.Coin(1_000), escrowtypes.SourceGrant, escrowtypes.SourceBalance),
	})
	suite.Require().ErrorIs(err, escrowtypes.ErrInsufficientFunds)

	_, err = suite.keeper().GetDeployment(f.Ctx, suite.deploymentID(1))
	suite.Require().ErrorIs(err, types.ErrDeploymentNotFound)
	suite.Require().False(f.EscrowKeeper.HasAccount(f.Ctx, escrowtypes.DeploymentAccountID(suite.owner.String(), 1)))
	suite.requireBalance(suite.owner, 400)
	suite.requireBalance(granter, 500)

	g, err := f.EscrowKeeper.GetDepositGrant(f.Ctx, granter.String(), suite.owner.String(), escrowtypes.MsgTypeCreateDeployment)
	suite.Require().NoError(err)
	suite.Require().Equal(int64(500), g.Authorization.SpendLimit.Amount.Int64())
}

func (suite *KeeperTestSuite) TestMsgValidateBasicRejectsBeforeState() {
	f := suite.f
	ms := keeper.NewMsgServerImpl(*suite.keeper())

	_, err := ms.CreateDeployment(f.Ctx, &types.MsgCreateDeployment{
		ID:      suite.deploymentID(1),
		Groups:  0,
		Deposit: escrowtypes.NewDeposit(keepertest.Coin(1_000), escrowtypes.SourceBalance),
	})
	suite.Require().ErrorIs(err, types.ErrInvalidID)

	_, err = ms.CreateBid(f.Ctx, &types.MsgCreateBid{
		Order:    suite.orderID(1, 1),
		Provider: "not-an-address",
		Deposit:  escrowtypes.NewDeposit(keepertest.Coin(1_000), escrowtypes.SourceBalance),
	})
	suite.Require().ErrorIs(err, types.ErrInvalidID)
}
