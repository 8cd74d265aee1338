package types

import (
	"math"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// DepositAuthorization lets a grantee fund deposits from the granter's balance.
type DepositAuthorization struct {
	SpendLimit sdk.Coin `json:"spend_limit"`
	Scopes     []Scope  `json:"scopes"`
}

// HasScope reports whether the authorization covers scope.
func (a DepositAuthorization) HasScope(scope Scope) bool {
	for _, s := range a.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ValidateBasic performs stateless checks.
func (a DepositAuthorization) ValidateBasic() error {
	if !a.SpendLimit.IsValid() || !a.SpendLimit.IsPositive() {
		return ErrInvalidGrant.Wrapf("spend limit must be positive, got %s", a.SpendLimit)
	}
	if len(a.Scopes) == 0 {
		return ErrInvalidGrant.Wrap("no scopes")
	}
	seen := make(map[Scope]bool, len(a.Scopes))
	for _, s := range a.Scopes {
		if !s.Valid() {
			return ErrInvalidGrant.Wrapf("invalid scope %d", s)
		}
		if seen[s] {
			return ErrInvalidGrant.Wrapf("duplicate scope %s", s)
		}
		seen[s] = true
	}
	return nil
}

// Expiration bounds a grant by block height, block time, or neither.
type Expiration struct {
	Height int64      `json:"height,omitempty"`
	Time   *time.Time `json:"time,omitempty"`
}

// Expired reports whether the bound has been reached at the given header.
func (e Expiration) Expired(height int64, blockTime time.Time) bool {
	if e.Height > 0 && height >= e.Height {
		return true
	}
	if e.Time != nil && !blockTime.Before(*e.Time) {
		return true
	}
	return false
}

// Never reports whether the grant has no expiration bound at all.
func (e Expiration) Never() bool {
	return e.Height == 0 && e.Time == nil
}

// farDeadline stands in for a height bound too distant to express as a time.
// It sorts after every time bound a grant can carry.
var farDeadline = time.Unix(1<<62, 0).UTC()

// Deadline projects the bound onto block time. Height bounds are converted with the
// average block time relative to the current header; a conversion that would
// overflow yields farDeadline. The earlier bound wins when both are set.
func (e Expiration) Deadline(height int64, blockTime time.Time, avgBlockTime time.Duration) (time.Time, bool) {
	if e.Never() {
		return time.Time{}, false
	}
	var deadline time.Time
	if e.Height > 0 {
		blocks := e.Height - height
		if avgBlockTime > 0 && blocks > int64(math.MaxInt64/avgBlockTime) {
			deadline = farDeadline
		} else {
			deadline = blockTime.Add(time.Duration(blocks) * avgBlockTime)
		}
	}
	if e.Time != nil && (deadline.IsZero() || e.Time.Before(deadline)) {
		deadline = *e.Time
	}
	return deadline, true
}

// DepositGrant is a granter's deposit authorization for one grantee and message kind.
// Sequence is assigned on save and records creation order.
type DepositGrant struct {
	Granter       string               `json:"granter"`
	Grantee       string               `json:"grantee"`
	MsgTypeURL    string               `json:"msg_type_url"`
	Authorization DepositAuthorization `json:"authorization"`
	Expiration    Expiration           `json:"expiration"`
	Sequence      uint64               `json:"sequence"`
}

// ValidateBasic performs stateless checks.
func (g DepositGrant) ValidateBasic() error {
	granter, err := sdk.AccAddressFromBech32(g.Granter)
	if err != nil {
		return ErrInvalidGrant.Wrapf("invalid granter: %v", err)
	}
	grantee, err := sdk.AccAddressFromBech32(g.Grantee)
	if err != nil {
		return ErrInvalidGrant.Wrapf("invalid grantee: %v", err)
	}
	if granter.Equals(grantee) {
		return ErrInvalidGrant.Wrap("granter and grantee must differ")
	}
	switch g.MsgTypeURL {
	case MsgTypeAccountDeposit, MsgTypeCreateDeployment, MsgTypeCreateBid:
	default:
		return ErrInvalidGrant.Wrapf("unsupported message kind %q", g.MsgTypeURL)
	}
	return g.Authorization.ValidateBasic()
}

// Authorize reports whether the grant may fund a deposit of the given scope and
// message kind at the given header. A false result is not an error; callers move
// on to the next grant or source.
func Authorize(g DepositGrant, scope Scope, msgKind string, height int64, blockTime time.Time) bool {
	if g.MsgTypeURL != msgKind {
		return false
	}
	if !g.Authorization.HasScope(scope) {
		return false
	}
	if g.Expiration.Expired(height, blockTime) {
		return false
	}
	return g.Authorization.SpendLimit.IsPositive()
}
