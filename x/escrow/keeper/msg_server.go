package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

type msgServer struct {
	Keeper
}

// NewMsgServerImpl returns an implementation of the escrow MsgServer interface
func NewMsgServerImpl(keeper Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

var _ types.MsgServer = msgServer{}

// AccountDeposit credits an open escrow account. The signer pays, drawing on grants
// it holds as grantee when the deposit lists the grant source.
func (ms msgServer) AccountDeposit(goCtx context.Context, msg *types.MsgAccountDeposit) (*types.MsgAccountDepositResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("AccountDeposit: validate: %w", err)
	}

	signer, err := sdk.AccAddressFromBech32(msg.Signer)
	if err != nil {
		return nil, fmt.Errorf("AccountDeposit: invalid signer address: %w", err)
	}

	cacheCtx, writeFn := sdk.UnwrapSDKContext(goCtx).CacheContext()
	funds, err := ms.Keeper.AccountDeposit(cacheCtx, msg.ID, signer, msg.Type(), msg.Deposit)
	if err != nil {
		return nil, fmt.Errorf("AccountDeposit: %w", err)
	}
	writeFn()

	return &types.MsgAccountDepositResponse{Funds: funds}, nil
}
