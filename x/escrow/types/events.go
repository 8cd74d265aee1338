package types

// Event types for the escrow module
const (
	EventTypeAccountOpened    = "escrow_account_opened"
	EventTypeAccountDeposit   = "escrow_account_deposit"
	EventTypeAccountClosed    = "escrow_account_closed"
	EventTypeAccountOverdrawn = "escrow_account_overdrawn"
	EventTypeAccountRefund    = "escrow_account_refund"

	EventTypePaymentCreated   = "escrow_payment_created"
	EventTypePaymentWithdrawn = "escrow_payment_withdrawn"
	EventTypePaymentClosed    = "escrow_payment_closed"

	EventTypeGrantSaved   = "escrow_deposit_grant_saved"
	EventTypeGrantRevoked = "escrow_deposit_grant_revoked"
	EventTypeGrantUsed    = "escrow_deposit_grant_used"
)

// Event attribute keys for the escrow module
const (
	AttributeKeyAccount   = "account"
	AttributeKeyPayment   = "payment"
	AttributeKeyScope     = "scope"
	AttributeKeyOwner     = "owner"
	AttributeKeyState     = "state"
	AttributeKeyAmount    = "amount"
	AttributeKeyBalance   = "balance"
	AttributeKeySource    = "source"
	AttributeKeyDepositor = "depositor"
	AttributeKeyRecipient = "recipient"
	AttributeKeyRate      = "rate"
	AttributeKeyGranter   = "granter"
	AttributeKeyGrantee   = "grantee"
	AttributeKeyMsgType   = "msg_type"
	AttributeKeyRemaining = "remaining"
	AttributeKeyHeight    = "height"
	AttributeKeyRefunded  = "refunded"
	AttributeKeyDebit     = "debit"
	AttributeKeyWithdrawn = "withdrawn"
)
