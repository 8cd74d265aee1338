package types

import (
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Scope is the domain an escrow account backs.
type Scope uint8

const (
	ScopeInvalid    Scope = 0
	ScopeDeployment Scope = 1
	ScopeBid        Scope = 2
)

var scopeNames = map[Scope]string{
	ScopeDeployment: "deployment",
	ScopeBid:        "bid",
}

func (s Scope) String() string {
	if name, ok := scopeNames[s]; ok {
		return name
	}
	return "invalid"
}

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	_, ok := scopeNames[s]
	return ok
}

// ParseScope parses the string form of a scope.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(s) {
	case "deployment":
		return ScopeDeployment, nil
	case "bid":
		return ScopeBid, nil
	default:
		return ScopeInvalid, fmt.Errorf("unknown scope %q", s)
	}
}

func (s Scope) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Scope) UnmarshalJSON(bz []byte) error {
	var str string
	if err := json.Unmarshal(bz, &str); err != nil {
		return err
	}
	parsed, err := ParseScope(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MaxXIDLength bounds xids so they fit a length-prefixed store key.
const MaxXIDLength = 255

// AccountID identifies an escrow account. It never changes once the account exists.
type AccountID struct {
	Scope Scope  `json:"scope"`
	Owner string `json:"owner"`
	XID   string `json:"xid"`
}

// DeploymentAccountID returns the id of the account funding a deployment.
func DeploymentAccountID(owner string, dseq uint64) AccountID {
	return AccountID{Scope: ScopeDeployment, Owner: owner, XID: fmt.Sprintf("%d", dseq)}
}

// BidAccountID returns the id of the account holding a provider's bid deposit.
// The bid deposit is owned by the provider; the order owner is part of the xid.
func BidAccountID(provider, orderOwner string, dseq uint64, gseq, oseq uint32) AccountID {
	return AccountID{
		Scope: ScopeBid,
		Owner: provider,
		XID:   fmt.Sprintf("%s/%d/%d/%d", orderOwner, dseq, gseq, oseq),
	}
}

func (id AccountID) String() string {
	return fmt.Sprintf("%s/%s/%s", id.Scope, id.Owner, id.XID)
}

// Validate checks that the id is well formed.
func (id AccountID) Validate() error {
	if !id.Scope.Valid() {
		return ErrInvalidAccountID.Wrapf("invalid scope %d", id.Scope)
	}
	if _, err := sdk.AccAddressFromBech32(id.Owner); err != nil {
		return ErrInvalidAccountID.Wrapf("invalid owner: %v", err)
	}
	if id.XID == "" || len(id.XID) > MaxXIDLength {
		return ErrInvalidAccountID.Wrapf("xid length must be 1..%d", MaxXIDLength)
	}
	return nil
}

// PaymentID identifies a payment stream within its account.
type PaymentID struct {
	AccountID AccountID `json:"account_id"`
	XID       string    `json:"xid"`
}

func (id PaymentID) String() string {
	return fmt.Sprintf("%s/%s", id.AccountID, id.XID)
}

// Validate checks that the id is well formed.
func (id PaymentID) Validate() error {
	if err := id.AccountID.Validate(); err != nil {
		return err
	}
	if id.XID == "" || len(id.XID) > MaxXIDLength {
		return ErrInvalidPaymentID.Wrapf("xid length must be 1..%d", MaxXIDLength)
	}
	return nil
}
