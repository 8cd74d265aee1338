package keeper_test

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	keepertest "github.com/paw-chain/leasepay/testutil/keeper"
	"github.com/paw-chain/leasepay/x/escrow/types"
)

func (suite *KeeperTestSuite) TestAccountOpenTwiceFails() {
	f := suite.f
	suite.openAccount(1, 100)

	f.Fund(suite.T(), suite.owner, 100)
	_, err := suite.keeper().AccountOpen(f.Ctx, suite.deploymentAccount(1), suite.owner,
		types.MsgTypeCreateDeployment, types.NewDeposit(keepertest.Coin(100), types.SourceBalance))
	suite.Require().ErrorIs(err, types.ErrAccountExists)
	suite.Require().Equal(sdkmath.NewInt(100), f.Balance(suite.owner))
}

func (suite *KeeperTestSuite) TestAccountOpenInvalidID() {
	f := suite.f
	_, err := suite.keeper().AccountOpen(f.Ctx,
		types.AccountID{Scope: types.ScopeDeployment, Owner: "not-an-address", XID: "1"},
		suite.owner, types.MsgTypeCreateDeployment,
		types.NewDeposit(keepertest.Coin(100), types.SourceBalance))
	suite.Require().ErrorIs(err, types.ErrInvalidAccountID)
}

func (suite *KeeperTestSuite) TestAccountGetNotFound() {
	_, err := suite.keeper().GetAccount(suite.f.Ctx, suite.deploymentAccount(42))
	suite.Require().ErrorIs(err, types.ErrAccountNotFound)

	err = suite.keeper().AccountClose(suite.f.Ctx, suite.deploymentAccount(42))
	suite.Require().ErrorIs(err, types.ErrAccountNotFound)
}

func (suite *KeeperTestSuite) TestAccountDepositAddsFunds() {
	f := suite.f
	id := suite.deploymentAccount(1)
	suite.openAccount(1, 100)

	f.Fund(suite.T(), suite.granter, 1_000)
	_, err := suite.keeper().SaveDepositGrant(f.Ctx, types.DepositGrant{
		Granter:    suite.granter.String(),
		Grantee:    suite.owner.String(),
		MsgTypeURL: types.MsgTypeAccountDeposit,
		Authorization: types.DepositAuthorization{
			SpendLimit: keepertest.Coin(50),
			Scopes:     []types.Scope{types.ScopeDeployment},
		},
	})
	suite.Require().NoError(err)

	funds, err := suite.keeper().AccountDeposit(f.Ctx, id, suite.owner, types.MsgTypeAccountDeposit,
		types.NewDeposit(keepertest.Coin(50), types.SourceGrant))
	suite.Require().NoError(err)
	suite.Require().Equal([]types.Fund{{Source: types.SourceGrant, Depositor: suite.granter.String(), Amount: keepertest.Coin(50)}}, funds)

	acc, err := suite.keeper().GetAccount(f.Ctx, id)
	suite.Require().NoError(err)
	suite.Require().Equal(keepertest.Coin(150), acc.Balance)
	suite.Require().Len(acc.Funds, 2)
	suite.Require().Equal(int64(150), acc.TotalFunded().Int64())
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestAccountCloseRefundsLatestFirst() {
	f := suite.f
	id := suite.deploymentAccount(1)
	suite.openAccount(1, 100)

	other := keepertest.Addr("topper")
	f.Fund(suite.T(), other, 30)
	_, err := suite.keeper().AccountDeposit(f.Ctx, id, other, types.MsgTypeAccountDeposit,
		types.NewDeposit(keepertest.Coin(30), types.SourceBalance))
	suite.Require().NoError(err)

	suite.createPayment(id, "a", 100)
	f.EndBlock(suite.T())

	// 30 left: all of it belongs to the latest depositor.
	suite.Require().NoError(suite.keeper().AccountClose(f.Ctx, id))
	suite.Require().Equal(sdkmath.NewInt(30), f.Balance(other))
	suite.Require().True(f.Balance(suite.owner).IsZero())

	acc, err := suite.keeper().GetAccount(f.Ctx, id)
	suite.Require().NoError(err)
	suite.Require().Equal(types.StateClosed, acc.State)
	suite.Require().True(acc.Balance.IsZero())
	suite.Require().Equal(keepertest.Coin(30), acc.Refunded)

	p, err := suite.keeper().GetPayment(f.Ctx, types.PaymentID{AccountID: id, XID: "a"})
	suite.Require().NoError(err)
	suite.Require().Equal(types.StateClosed, p.State)
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestAccountCloseIsIdempotent() {
	f := suite.f
	id := suite.deploymentAccount(1)
	suite.openAccount(1, 100)

	suite.Require().NoError(suite.keeper().AccountClose(f.Ctx, id))
	suite.Require().NoError(suite.keeper().AccountClose(f.Ctx, id))
	suite.Require().Equal(sdkmath.NewInt(100), f.Balance(suite.owner))

	f.Fund(suite.T(), suite.owner, 10)
	_, err := suite.keeper().AccountDeposit(f.Ctx, id, suite.owner, types.MsgTypeAccountDeposit,
		types.NewDeposit(keepertest.Coin(10), types.SourceBalance))
	suite.Require().ErrorIs(err, types.ErrAccountClosed)

	_, err = suite.keeper().PaymentCreate(f.Ctx, id, "late", suite.provider, keepertest.Coin(1))
	suite.Require().ErrorIs(err, types.ErrAccountClosed)
}

func (suite *KeeperTestSuite) TestPaymentCreateValidation() {
	f := suite.f
	id := suite.deploymentAccount(1)
	suite.openAccount(1, 100)
	suite.createPayment(id, "a", 10)

	_, err := suite.keeper().PaymentCreate(f.Ctx, id, "a", suite.provider, keepertest.Coin(10))
	suite.Require().ErrorIs(err, types.ErrPaymentExists)

	_, err = suite.keeper().PaymentCreate(f.Ctx, id, "", suite.provider, keepertest.Coin(10))
	suite.Require().ErrorIs(err, types.ErrInvalidPaymentID)

	_, err = suite.keeper().PaymentCreate(f.Ctx, id, "b", suite.provider, sdk.NewInt64Coin("uatom", 10))
	suite.Require().ErrorIs(err, types.ErrInvalidRate)

	_, err = suite.keeper().PaymentCreate(f.Ctx, suite.deploymentAccount(2), "a", suite.provider, keepertest.Coin(10))
	suite.Require().ErrorIs(err, types.ErrAccountNotFound)

	err = suite.keeper().PaymentClose(f.Ctx, types.PaymentID{AccountID: id, XID: "missing"})
	suite.Require().ErrorIs(err, types.ErrPaymentNotFound)
}

func (suite *KeeperTestSuite) TestGrantPrunedAfterExhaustion() {
	f := suite.f
	f.Fund(suite.T(), suite.granter, 1_000)
	suite.grant(100, types.Expiration{})

	_, err := suite.keeper().Deposit(f.Ctx, suite.owner, types.ScopeDeployment, types.MsgTypeCreateDeployment,
		types.NewDeposit(keepertest.Coin(100), types.SourceGrant))
	suite.Require().NoError(err)

	g, err := suite.keeper().GetDepositGrant(f.Ctx, suite.granter.String(), suite.owner.String(), types.MsgTypeCreateDeployment)
	suite.Require().NoError(err)
	suite.Require().True(g.Authorization.SpendLimit.IsZero())

	pruned, err := suite.keeper().PruneExpiredGrants(f.Ctx)
	suite.Require().NoError(err)
	suite.Require().Equal(1, pruned)

	_, err = suite.keeper().GetDepositGrant(f.Ctx, suite.granter.String(), suite.owner.String(), types.MsgTypeCreateDeployment)
	suite.Require().ErrorIs(err, types.ErrGrantNotFound)
}

func (suite *KeeperTestSuite) TestGrantRevoke() {
	f := suite.f
	suite.grant(100, types.Expiration{})

	suite.Require().NoError(suite.keeper().RevokeDepositGrant(f.Ctx, suite.granter.String(), suite.owner.String(), types.MsgTypeCreateDeployment))
	err := suite.keeper().RevokeDepositGrant(f.Ctx, suite.granter.String(), suite.owner.String(), types.MsgTypeCreateDeployment)
	suite.Require().ErrorIs(err, types.ErrGrantNotFound)
}
