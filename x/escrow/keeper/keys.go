package keeper

import (
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

var (
	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x01}

	// AccountKeyPrefix is the prefix for account storage
	AccountKeyPrefix = []byte{0x02}

	// AccountStateKeyPrefix indexes accounts by state.
	// Key: prefix + state + account key -> empty
	AccountStateKeyPrefix = []byte{0x03}

	// PaymentKeyPrefix is the prefix for payment storage.
	// Key: prefix + account key + payment xid, so an account's payments are contiguous
	PaymentKeyPrefix = []byte{0x04}

	// PaymentStateKeyPrefix indexes payments by state.
	PaymentStateKeyPrefix = []byte{0x05}

	// GrantKeyPrefix is the prefix for deposit grants.
	// Key: prefix + grantee + granter + msg type, so a grantee's grants are contiguous
	GrantKeyPrefix = []byte{0x06}

	// NextGrantSequenceKey holds the creation counter for grants
	NextGrantSequenceKey = []byte{0x07}
)

// accountKey is the identity-ordered key body shared by every account keyed index.
// Each component is length prefixed, so identity order compares length before bytes.
func accountKey(id types.AccountID) []byte {
	key := []byte{byte(id.Scope)}
	key = append(key, address.MustLengthPrefix([]byte(id.Owner))...)
	return append(key, address.MustLengthPrefix([]byte(id.XID))...)
}

func paymentKey(id types.PaymentID) []byte {
	return append(accountKey(id.AccountID), address.MustLengthPrefix([]byte(id.XID))...)
}

func concat(parts ...[]byte) []byte {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// AccountKey returns the store key of an account.
func AccountKey(id types.AccountID) []byte {
	return concat(AccountKeyPrefix, accountKey(id))
}

// AccountScopePrefix returns the prefix of every account in a scope.
func AccountScopePrefix(scope types.Scope) []byte {
	return concat(AccountKeyPrefix, []byte{byte(scope)})
}

// AccountStateKey returns the state index key of an account.
func AccountStateKey(state types.State, id types.AccountID) []byte {
	return concat(AccountStateKeyPrefix, []byte{byte(state)}, accountKey(id))
}

// AccountStatePrefix returns the prefix of the state index for one state.
func AccountStatePrefix(state types.State) []byte {
	return concat(AccountStateKeyPrefix, []byte{byte(state)})
}

// PaymentKey returns the store key of a payment.
func PaymentKey(id types.PaymentID) []byte {
	return concat(PaymentKeyPrefix, paymentKey(id))
}

// AccountPaymentsPrefix returns the prefix of every payment of an account.
func AccountPaymentsPrefix(id types.AccountID) []byte {
	return concat(PaymentKeyPrefix, accountKey(id))
}

// PaymentScopePrefix returns the prefix of every payment on accounts of a scope.
func PaymentScopePrefix(scope types.Scope) []byte {
	return concat(PaymentKeyPrefix, []byte{byte(scope)})
}

// PaymentStateKey returns the state index key of a payment.
func PaymentStateKey(state types.State, id types.PaymentID) []byte {
	return concat(PaymentStateKeyPrefix, []byte{byte(state)}, paymentKey(id))
}

// GrantKey returns the store key of a deposit grant.
func GrantKey(grantee, granter, msgType string) []byte {
	return concat(
		GrantKeyPrefix,
		address.MustLengthPrefix([]byte(grantee)),
		address.MustLengthPrefix([]byte(granter)),
		address.MustLengthPrefix([]byte(msgType)),
	)
}

// GranteeGrantsPrefix returns the prefix of every grant held by grantee.
func GranteeGrantsPrefix(grantee string) []byte {
	return concat(GrantKeyPrefix, address.MustLengthPrefix([]byte(grantee)))
}
