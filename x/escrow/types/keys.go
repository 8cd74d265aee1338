package types

const (
	// ModuleName defines the module name
	ModuleName = "escrow"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// Message kinds a deposit grant can be issued for.
	MsgTypeAccountDeposit   = "/leasepay.escrow.v1.MsgAccountDeposit"
	MsgTypeCreateDeployment = "/leasepay.market.v1.MsgCreateDeployment"
	MsgTypeCreateBid        = "/leasepay.market.v1.MsgCreateBid"
)
