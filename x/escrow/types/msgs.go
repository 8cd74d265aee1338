package types

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MsgAccountDeposit deposits into an existing escrow account on behalf of Signer.
// Grant sources are looked up with Signer as the grantee.
type MsgAccountDeposit struct {
	Signer  string    `json:"signer"`
	ID      AccountID `json:"id"`
	Deposit Deposit   `json:"deposit"`
}

// MsgAccountDepositResponse reports where the deposited value came from.
type MsgAccountDepositResponse struct {
	Funds []Fund `json:"funds"`
}

// Type returns the message kind grants are issued for.
func (msg MsgAccountDeposit) Type() string { return MsgTypeAccountDeposit }

// GetSigners returns the expected signers for MsgAccountDeposit
func (msg MsgAccountDeposit) GetSigners() []sdk.AccAddress {
	signer, _ := sdk.AccAddressFromBech32(msg.Signer)
	return []sdk.AccAddress{signer}
}

// ValidateBasic performs stateless checks.
func (msg MsgAccountDeposit) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Signer); err != nil {
		return ErrUnauthorized.Wrapf("invalid signer: %v", err)
	}
	if err := msg.ID.Validate(); err != nil {
		return err
	}
	return msg.Deposit.ValidateBasic()
}

// MsgServer is the escrow write API.
type MsgServer interface {
	AccountDeposit(context.Context, *MsgAccountDeposit) (*MsgAccountDepositResponse, error)
}
