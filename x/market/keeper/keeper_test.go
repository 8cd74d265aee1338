package keeper_test

import (
	"fmt"
	"testing"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/paw-chain/leasepay/testutil/keeper"
	escrowkeeper "github.com/paw-chain/leasepay/x/escrow/keeper"
	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	"github.com/paw-chain/leasepay/x/market/keeper"
	"github.com/paw-chain/leasepay/x/market/types"
)

type KeeperTestSuite struct {
	suite.Suite
	f *keepertest.Fixture

	owner     sdk.AccAddress
	providers []sdk.AccAddress
}

func (suite *KeeperTestSuite) SetupTest() {
	suite.f = keepertest.EscrowKeeper(suite.T())
	suite.owner = keepertest.Addr("tenant")
	suite.providers = nil
	for i := 0; i < 3; i++ {
		suite.providers = append(suite.providers, keepertest.Addr(fmt.Sprintf("provider-%d", i)))
	}
}

func TestKeeperTestSuite(t *testing.T) {
	suite.Run(t, new(KeeperTestSuite))
}

func (suite *KeeperTestSuite) keeper() *keeper.Keeper {
	return suite.f.MarketKeeper
}

func (suite *KeeperTestSuite) deploymentID(dseq uint64) types.DeploymentID {
	return types.DeploymentID{Owner: suite.owner.String(), DSeq: dseq}
}

func (suite *KeeperTestSuite) orderID(dseq uint64, gseq uint32) types.OrderID {
	return types.MakeOrderID(types.GroupID{Owner: suite.owner.String(), DSeq: dseq, GSeq: gseq}, 1)
}

func (suite *KeeperTestSuite) setTakeRate(bps uint32) {
	params, err := suite.keeper().GetParams(suite.f.Ctx)
	suite.Require().NoError(err)
	params.TakeRateBps = bps
	suite.Require().NoError(suite.keeper().SetParams(suite.f.Ctx, params))
}

// createDeployment funds the tenant and creates a deployment paid from its balance.
func (suite *KeeperTestSuite) createDeployment(dseq uint64, groups uint32, deposit int64) types.Deployment {
	suite.f.Fund(suite.T(), suite.owner, deposit)
	d, err := suite.keeper().CreateDeployment(suite.f.Ctx, suite.deploymentID(dseq), groups,
		escrowtypes.NewDeposit(keepertest.Coin(deposit), escrowtypes.SourceBalance))
	suite.Require().NoError(err)
	return d
}

// createBid funds provider with the minimum bid deposit and bids price per block.
func (suite *KeeperTestSuite) createBid(order types.OrderID, provider sdk.AccAddress, price int64) types.Bid {
	suite.f.Fund(suite.T(), provider, 1_000)
	bid, err := suite.keeper().CreateBid(suite.f.Ctx, order, provider,
		sdk.NewInt64DecCoin(keepertest.Denom, price), nil,
		escrowtypes.NewDeposit(keepertest.Coin(1_000), escrowtypes.SourceBalance))
	suite.Require().NoError(err)
	return bid
}

func (suite *KeeperTestSuite) requireInvariants() {
	msg, broken := keeper.AllInvariants(*suite.keeper())(suite.f.Ctx)
	suite.Require().False(broken, msg)
	msg, broken = escrowkeeper.AllInvariants(*suite.f.EscrowKeeper)(suite.f.Ctx)
	suite.Require().False(broken, msg)
}

func (suite *KeeperTestSuite) requireBalance(addr sdk.AccAddress, want int64) {
	suite.Require().Equal(sdkmath.NewInt(want).String(), suite.f.Balance(addr).String())
}
