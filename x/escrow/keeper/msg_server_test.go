package keeper_test

import (
	sdkmath "cosmossdk.io/math"

	keepertest "github.com/paw-chain/leasepay/testutil/keeper"
	"github.com/paw-chain/leasepay/x/escrow/keeper"
	"github.com/paw-chain/leasepay/x/escrow/types"
)

func (suite *KeeperTestSuite) TestMsgAccountDeposit() {
	f := suite.f
	ms := keeper.NewMsgServerImpl(*suite.keeper())
	id := suite.deploymentAccount(1)
	suite.openAccount(1, 100)

	topper := keepertest.Addr("topper")
	f.Fund(suite.T(), topper, 40)

	res, err := ms.AccountDeposit(f.Ctx, &types.MsgAccountDeposit{
		Signer:  topper.String(),
		ID:      id,
		Deposit: types.NewDeposit(keepertest.Coin(40), types.SourceBalance),
	})
	suite.Require().NoError(err)
	suite.Require().Len(res.Funds, 1)
	suite.Require().Equal(topper.String(), res.Funds[0].Depositor)

	acc, err := suite.keeper().GetAccount(f.Ctx, id)
	suite.Require().NoError(err)
	suite.Require().Equal(keepertest.Coin(140), acc.Balance)
	suite.Require().True(f.Balance(topper).IsZero())
}

func (suite *KeeperTestSuite) TestMsgAccountDepositFailureLeavesNoTrace() {
	f := suite.f
	ms := keeper.NewMsgServerImpl(*suite.keeper())
	id := suite.deploymentAccount(1)
	suite.openAccount(1, 100)

	f.Fund(suite.T(), suite.owner, 10)
	_, err := ms.AccountDeposit(f.Ctx, &types.MsgAccountDeposit{
		Signer:  suite.owner.String(),
		ID:      id,
		Deposit: types.NewDeposit(keepertest.Coin(40), types.SourceBalance),
	})
	suite.Require().ErrorIs(err, types.ErrInsufficientFunds)
	suite.Require().Equal(sdkmath.NewInt(10), f.Balance(suite.owner))

	_, err = ms.AccountDeposit(f.Ctx, &types.MsgAccountDeposit{
		Signer:  "nobody",
		ID:      id,
		Deposit: types.NewDeposit(keepertest.Coin(1), types.SourceBalance),
	})
	suite.Require().ErrorIs(err, types.ErrUnauthorized)
}

func (suite *KeeperTestSuite) TestEndBlockerPrunesExpiredGrants() {
	f := suite.f
	suite.grant(100, types.Expiration{Height: 2})

	f.EndBlock(suite.T())
	f.EndBlock(suite.T())

	grants, err := suite.keeper().GranteeGrants(f.Ctx, suite.owner.String())
	suite.Require().NoError(err)
	suite.Require().Empty(grants)
}
