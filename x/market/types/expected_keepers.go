package types

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
)

// EscrowKeeper defines the escrow functionality the market module drives.
type EscrowKeeper interface {
	GetAccount(ctx context.Context, id escrowtypes.AccountID) (escrowtypes.Account, error)
	AccountOpen(ctx context.Context, id escrowtypes.AccountID, depositor sdk.AccAddress, msgKind string, deposit escrowtypes.Deposit) (escrowtypes.Account, error)
	AccountClose(ctx context.Context, id escrowtypes.AccountID) error
	PaymentCreate(ctx context.Context, accountID escrowtypes.AccountID, xid string, recipient sdk.AccAddress, rate sdk.Coin) (escrowtypes.Payment, error)
	PaymentClose(ctx context.Context, id escrowtypes.PaymentID) error
	GetPayment(ctx context.Context, id escrowtypes.PaymentID) (escrowtypes.Payment, error)
}
