package types

import (
	"context"

	"github.com/cosmos/cosmos-sdk/types/query"
)

// BidFilter narrows bid and lease scans. Zero values match everything.
type BidFilter struct {
	Owner    string `json:"owner,omitempty"`
	DSeq     uint64 `json:"dseq,omitempty"`
	GSeq     uint32 `json:"gseq,omitempty"`
	OSeq     uint32 `json:"oseq,omitempty"`
	Provider string `json:"provider,omitempty"`
	State    string `json:"state,omitempty"`
}

// Match reports whether the id passes the id fields of the filter.
func (f BidFilter) Match(id BidID) bool {
	if f.Owner != "" && id.Owner != f.Owner {
		return false
	}
	if f.DSeq != 0 && id.DSeq != f.DSeq {
		return false
	}
	if f.GSeq != 0 && id.GSeq != f.GSeq {
		return false
	}
	if f.OSeq != 0 && id.OSeq != f.OSeq {
		return false
	}
	if f.Provider != "" && id.Provider != f.Provider {
		return false
	}
	return true
}

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `json:"params"`
}

type QueryDeploymentRequest struct {
	ID DeploymentID `json:"id"`
}

type QueryDeploymentResponse struct {
	Deployment Deployment `json:"deployment"`
	Orders     []Order    `json:"orders"`
}

type QueryOrdersRequest struct {
	Filter     BidFilter          `json:"filter"`
	Pagination *query.PageRequest `json:"pagination,omitempty"`
}

type QueryOrdersResponse struct {
	Orders     []Order             `json:"orders"`
	Pagination *query.PageResponse `json:"pagination,omitempty"`
}

type QueryBidsRequest struct {
	Filter     BidFilter          `json:"filter"`
	Pagination *query.PageRequest `json:"pagination,omitempty"`
}

type QueryBidsResponse struct {
	Bids       []Bid               `json:"bids"`
	Pagination *query.PageResponse `json:"pagination,omitempty"`
}

type QueryLeasesRequest struct {
	Filter     BidFilter          `json:"filter"`
	Pagination *query.PageRequest `json:"pagination,omitempty"`
}

type QueryLeasesResponse struct {
	Leases     []Lease             `json:"leases"`
	Pagination *query.PageResponse `json:"pagination,omitempty"`
}

// QueryServer is the market read API.
type QueryServer interface {
	Params(context.Context, *QueryParamsRequest) (*QueryParamsResponse, error)
	Deployment(context.Context, *QueryDeploymentRequest) (*QueryDeploymentResponse, error)
	Orders(context.Context, *QueryOrdersRequest) (*QueryOrdersResponse, error)
	Bids(context.Context, *QueryBidsRequest) (*QueryBidsResponse, error)
	Leases(context.Context, *QueryLeasesRequest) (*QueryLeasesResponse, error)
}
