package keeper_test

import (
	keepertest "github.com/paw-chain/leasepay/testutil/keeper"
	"github.com/paw-chain/leasepay/x/escrow/keeper"
	"github.com/paw-chain/leasepay/x/escrow/types"
)

func (suite *KeeperTestSuite) TestInvariantsHoldThroughLifecycle() {
	f := suite.f
	suite.seedAccounts()
	suite.requireInvariants()

	for i := 0; i < 5; i++ {
		f.EndBlock(suite.T())
		suite.requireInvariants()
	}

	suite.Require().NoError(suite.keeper().AccountClose(f.Ctx, suite.deploymentAccount(1)))
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestModuleBalanceInvariantDetectsShortfall() {
	owner := suite.owner.String()
	id := types.DeploymentAccountID(owner, 1)

	gs := types.DefaultGenesis()
	gs.Accounts = []types.Account{types.NewAccount(id, types.DefaultDenom, []types.Fund{{
		Source:    types.SourceBalance,
		Depositor: owner,
		Amount:    keepertest.Coin(100),
	}}, 1)}

	// Genesis accounts without backing coins in the module account.
	fresh := keepertest.EscrowKeeper(suite.T())
	suite.Require().NoError(fresh.EscrowKeeper.InitGenesis(fresh.Ctx, *gs))

	_, broken := keeper.AccountConservationInvariant(*fresh.EscrowKeeper)(fresh.Ctx)
	suite.Require().False(broken)
	msg, broken := keeper.ModuleAccountBalanceInvariant(*fresh.EscrowKeeper)(fresh.Ctx)
	suite.Require().True(broken, msg)

	fresh.Fund(suite.T(), fresh.EscrowKeeper.ModuleAddress(), 100)
	_, broken = keeper.AllInvariants(*fresh.EscrowKeeper)(fresh.Ctx)
	suite.Require().False(broken)
}
