package types

import (
	"context"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"
)

// AccountFilter narrows account and payment scans. Zero values match everything.
type AccountFilter struct {
	Scope Scope  `json:"scope,omitempty"`
	State State  `json:"state,omitempty"`
	Owner string `json:"owner,omitempty"`
	XID   string `json:"xid,omitempty"`
}

// MatchAccount reports whether the account id and state pass the filter.
func (f AccountFilter) MatchAccount(id AccountID, state State) bool {
	if f.Scope != ScopeInvalid && id.Scope != f.Scope {
		return false
	}
	if f.State != StateInvalid && state != f.State {
		return false
	}
	if f.Owner != "" && id.Owner != f.Owner {
		return false
	}
	if f.XID != "" && id.XID != f.XID {
		return false
	}
	return true
}

// BlocksRemaining is the projected runway of an account at its current outflow.
type BlocksRemaining struct {
	Balance         sdk.Coin  `json:"balance"`
	OutflowRate     sdk.Coin  `json:"outflow_rate"`
	BlocksRemaining int64     `json:"blocks_remaining"`
	Unbounded       bool      `json:"unbounded"`
	EstimatedTime   time.Time `json:"estimated_time"`
}

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `json:"params"`
}

type QueryAccountsRequest struct {
	Filter     AccountFilter      `json:"filter"`
	Pagination *query.PageRequest `json:"pagination,omitempty"`
}

type QueryAccountsResponse struct {
	Accounts   []Account           `json:"accounts"`
	Pagination *query.PageResponse `json:"pagination,omitempty"`
}

type QueryPaymentsRequest struct {
	Filter     AccountFilter      `json:"filter"`
	Pagination *query.PageRequest `json:"pagination,omitempty"`
}

type QueryPaymentsResponse struct {
	Payments   []Payment           `json:"payments"`
	Pagination *query.PageResponse `json:"pagination,omitempty"`
}

type QueryBlocksRemainingRequest struct {
	Owner string `json:"owner"`
	DSeq  uint64 `json:"dseq"`
}

type QueryBlocksRemainingResponse struct {
	BlocksRemaining
}

type QueryGrantsRequest struct {
	Grantee string `json:"grantee"`
}

type QueryGrantsResponse struct {
	Grants []DepositGrant `json:"grants"`
}

// QueryServer is the escrow read API.
type QueryServer interface {
	Params(context.Context, *QueryParamsRequest) (*QueryParamsResponse, error)
	Accounts(context.Context, *QueryAccountsRequest) (*QueryAccountsResponse, error)
	Payments(context.Context, *QueryPaymentsRequest) (*QueryPaymentsResponse, error)
	BlocksRemaining(context.Context, *QueryBlocksRemainingRequest) (*QueryBlocksRemainingResponse, error)
	Grants(context.Context, *QueryGrantsRequest) (*QueryGrantsResponse, error)
}
