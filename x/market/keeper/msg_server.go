package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/leasepay/x/market/types"
)

type msgServer struct {
	Keeper
}

// NewMsgServerImpl returns an implementation of the market MsgServer interface
func NewMsgServerImpl(keeper Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

var _ types.MsgServer = msgServer{}

// atomically runs fn on a cached context and commits only if it succeeds.
func atomically(goCtx context.Context, fn func(ctx sdk.Context) error) error {
	cacheCtx, writeFn := sdk.UnwrapSDKContext(goCtx).CacheContext()
	if err := fn(cacheCtx); err != nil {
		return err
	}
	writeFn()
	return nil
}

// CreateDeployment handles deployment creation
func (ms msgServer) CreateDeployment(goCtx context.Context, msg *types.MsgCreateDeployment) (*types.MsgCreateDeploymentResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("CreateDeployment: validate: %w", err)
	}

	err := atomically(goCtx, func(ctx sdk.Context) error {
		_, err := ms.Keeper.CreateDeployment(ctx, msg.ID, msg.Groups, msg.Deposit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("CreateDeployment: %w", err)
	}
	return &types.MsgCreateDeploymentResponse{}, nil
}

// CloseDeployment handles deployment closure
func (ms msgServer) CloseDeployment(goCtx context.Context, msg *types.MsgCloseDeployment) (*types.MsgCloseDeploymentResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("CloseDeployment: validate: %w", err)
	}

	err := atomically(goCtx, func(ctx sdk.Context) error {
		return ms.Keeper.CloseDeployment(ctx, msg.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("CloseDeployment: %w", err)
	}
	return &types.MsgCloseDeploymentResponse{}, nil
}

// CreateBid handles bid placement
func (ms msgServer) CreateBid(goCtx context.Context, msg *types.MsgCreateBid) (*types.MsgCreateBidResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("CreateBid: validate: %w", err)
	}

	provider, err := sdk.AccAddressFromBech32(msg.Provider)
	if err != nil {
		return nil, fmt.Errorf("CreateBid: invalid provider address: %w", err)
	}

	err = atomically(goCtx, func(ctx sdk.Context) error {
		_, err := ms.Keeper.CreateBid(ctx, msg.Order, provider, msg.Price, msg.ResourcesOffer, msg.Deposit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("CreateBid: %w", err)
	}
	return &types.MsgCreateBidResponse{}, nil
}

// CloseBid handles bid withdrawal
func (ms msgServer) CloseBid(goCtx context.Context, msg *types.MsgCloseBid) (*types.MsgCloseBidResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("CloseBid: validate: %w", err)
	}

	err := atomically(goCtx, func(ctx sdk.Context) error {
		return ms.Keeper.CloseBid(ctx, msg.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("CloseBid: %w", err)
	}
	return &types.MsgCloseBidResponse{}, nil
}

// CreateLease handles recording the winning bid of an order
func (ms msgServer) CreateLease(goCtx context.Context, msg *types.MsgCreateLease) (*types.MsgCreateLeaseResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("CreateLease: validate: %w", err)
	}

	err := atomically(goCtx, func(ctx sdk.Context) error {
		_, err := ms.Keeper.CreateLease(ctx, msg.BidID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("CreateLease: %w", err)
	}
	return &types.MsgCreateLeaseResponse{}, nil
}

// CloseLease handles lease closure by the tenant or the provider
func (ms msgServer) CloseLease(goCtx context.Context, msg *types.MsgCloseLease) (*types.MsgCloseLeaseResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("CloseLease: validate: %w", err)
	}

	reason := types.LeaseClosedReasonOwner
	if msg.Signer == msg.LeaseID.Provider {
		reason = types.LeaseClosedReasonProvider
	}
	err := atomically(goCtx, func(ctx sdk.Context) error {
		return ms.Keeper.CloseLease(ctx, msg.LeaseID, reason)
	})
	if err != nil {
		return nil, fmt.Errorf("CloseLease: %w", err)
	}
	return &types.MsgCloseLeaseResponse{}, nil
}
