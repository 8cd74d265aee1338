package types

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
)

// MsgCreateDeployment creates a deployment with one order per group, funded by Deposit.
type MsgCreateDeployment struct {
	ID      DeploymentID        `json:"id"`
	Groups  uint32              `json:"groups"`
	Deposit escrowtypes.Deposit `json:"deposit"`
}

type MsgCreateDeploymentResponse struct{}

// Type returns the message kind grants are issued for.
func (msg MsgCreateDeployment) Type() string { return escrowtypes.MsgTypeCreateDeployment }

// GetSigners returns the expected signers for MsgCreateDeployment
func (msg MsgCreateDeployment) GetSigners() []sdk.AccAddress {
	owner, _ := sdk.AccAddressFromBech32(msg.ID.Owner)
	return []sdk.AccAddress{owner}
}

// ValidateBasic performs stateless checks.
func (msg MsgCreateDeployment) ValidateBasic() error {
	if err := msg.ID.Validate(); err != nil {
		return err
	}
	if msg.Groups == 0 {
		return ErrInvalidID.Wrap("a deployment needs at least one group")
	}
	return msg.Deposit.ValidateBasic()
}

// MsgCloseDeployment closes a deployment, its leases and its escrow account.
type MsgCloseDeployment struct {
	ID DeploymentID `json:"id"`
}

type MsgCloseDeploymentResponse struct{}

// GetSigners returns the expected signers for MsgCloseDeployment
func (msg MsgCloseDeployment) GetSigners() []sdk.AccAddress {
	owner, _ := sdk.AccAddressFromBech32(msg.ID.Owner)
	return []sdk.AccAddress{owner}
}

// ValidateBasic performs stateless checks.
func (msg MsgCloseDeployment) ValidateBasic() error {
	return msg.ID.Validate()
}

// MsgCreateBid places a provider's bid on an open order.
type MsgCreateBid struct {
	Order          OrderID             `json:"order"`
	Provider       string              `json:"provider"`
	Price          sdk.DecCoin         `json:"price"`
	ResourcesOffer []ResourceOffer     `json:"resources_offer,omitempty"`
	Deposit        escrowtypes.Deposit `json:"deposit"`
}

type MsgCreateBidResponse struct{}

// Type returns the message kind grants are issued for.
func (msg MsgCreateBid) Type() string { return escrowtypes.MsgTypeCreateBid }

// GetSigners returns the expected signers for MsgCreateBid
func (msg MsgCreateBid) GetSigners() []sdk.AccAddress {
	provider, _ := sdk.AccAddressFromBech32(msg.Provider)
	return []sdk.AccAddress{provider}
}

// ValidateBasic performs stateless checks.
func (msg MsgCreateBid) ValidateBasic() error {
	if err := MakeBidID(msg.Order, msg.Provider).Validate(); err != nil {
		return err
	}
	if !msg.Price.IsValid() || !msg.Price.Amount.TruncateInt().IsPositive() {
		return ErrInvalidPrice.Wrapf("price must be at least one unit per block, got %s", msg.Price)
	}
	return msg.Deposit.ValidateBasic()
}

// MsgCloseBid withdraws a provider's bid, closing its lease if it won.
type MsgCloseBid struct {
	ID BidID `json:"id"`
}

type MsgCloseBidResponse struct{}

// GetSigners returns the expected signers for MsgCloseBid
func (msg MsgCloseBid) GetSigners() []sdk.AccAddress {
	provider, _ := sdk.AccAddressFromBech32(msg.ID.Provider)
	return []sdk.AccAddress{provider}
}

// ValidateBasic performs stateless checks.
func (msg MsgCloseBid) ValidateBasic() error {
	return msg.ID.Validate()
}

// MsgCreateLease records the winning bid of an order and starts paying for it.
type MsgCreateLease struct {
	BidID BidID `json:"bid_id"`
}

type MsgCreateLeaseResponse struct{}

// GetSigners returns the expected signers for MsgCreateLease
func (msg MsgCreateLease) GetSigners() []sdk.AccAddress {
	owner, _ := sdk.AccAddressFromBech32(msg.BidID.Owner)
	return []sdk.AccAddress{owner}
}

// ValidateBasic performs stateless checks.
func (msg MsgCreateLease) ValidateBasic() error {
	return msg.BidID.Validate()
}

// MsgCloseLease closes an active lease. Either the tenant or the provider may sign.
type MsgCloseLease struct {
	Signer  string  `json:"signer"`
	LeaseID LeaseID `json:"lease_id"`
}

type MsgCloseLeaseResponse struct{}

// GetSigners returns the expected signers for MsgCloseLease
func (msg MsgCloseLease) GetSigners() []sdk.AccAddress {
	signer, _ := sdk.AccAddressFromBech32(msg.Signer)
	return []sdk.AccAddress{signer}
}

// ValidateBasic performs stateless checks.
func (msg MsgCloseLease) ValidateBasic() error {
	if err := msg.LeaseID.Validate(); err != nil {
		return err
	}
	if msg.Signer != msg.LeaseID.Owner && msg.Signer != msg.LeaseID.Provider {
		return ErrUnauthorized.Wrap("only the tenant or the provider may close a lease")
	}
	return nil
}

// MsgServer is the market write API.
type MsgServer interface {
	CreateDeployment(context.Context, *MsgCreateDeployment) (*MsgCreateDeploymentResponse, error)
	CloseDeployment(context.Context, *MsgCloseDeployment) (*MsgCloseDeploymentResponse, error)
	CreateBid(context.Context, *MsgCreateBid) (*MsgCreateBidResponse, error)
	CloseBid(context.Context, *MsgCloseBid) (*MsgCloseBidResponse, error)
	CreateLease(context.Context, *MsgCreateLease) (*MsgCreateLeaseResponse, error)
	CloseLease(context.Context, *MsgCloseLease) (*MsgCloseLeaseResponse, error)
}
