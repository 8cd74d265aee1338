package types

import (
	errorsmod "cosmossdk.io/errors"
)

var (
	ErrInvalidID    = errorsmod.Register(ModuleName, 2, "invalid market id")
	ErrInvalidPrice = errorsmod.Register(ModuleName, 3, "invalid bid price")

	// Deployment errors
	ErrDeploymentExists   = errorsmod.Register(ModuleName, 10, "deployment already exists")
	ErrDeploymentNotFound = errorsmod.Register(ModuleName, 11, "deployment not found")
	ErrDeploymentClosed   = errorsmod.Register(ModuleName, 12, "deployment closed")

	// Order errors
	ErrOrderNotFound = errorsmod.Register(ModuleName, 20, "order not found")
	ErrOrderNotOpen  = errorsmod.Register(ModuleName, 21, "order not open")
	ErrTooManyBids   = errorsmod.Register(ModuleName, 22, "order bid limit reached")

	// Bid errors
	ErrBidNotFound            = errorsmod.Register(ModuleName, 30, "bid not found")
	ErrBidNotOpen             = errorsmod.Register(ModuleName, 31, "bid not open")
	ErrBidExists              = errorsmod.Register(ModuleName, 32, "bid already exists")
	ErrInsufficientBidDeposit = errorsmod.Register(ModuleName, 33, "bid deposit below minimum")

	// Lease errors
	ErrLeaseNotFound  = errorsmod.Register(ModuleName, 40, "lease not found")
	ErrLeaseNotActive = errorsmod.Register(ModuleName, 41, "lease not active")

	ErrUnauthorized = errorsmod.Register(ModuleName, 50, "unauthorized")
)
