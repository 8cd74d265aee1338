package api

import (
	"github.com/cosmos/cosmos-sdk/types/query"

	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	markettypes "github.com/paw-chain/leasepay/x/market/types"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// HealthResponse reports liveness and the last committed height.
type HealthResponse struct {
	Status string `json:"status"`
	Height int64  `json:"height"`
}

// PageResponse is the REST form of a query page. NextKey is base64 and goes back
// in the key query parameter.
type PageResponse struct {
	NextKey string `json:"next_key,omitempty"`
	Total   uint64 `json:"total,omitempty"`
}

type AccountsResponse struct {
	Accounts   []escrowtypes.Account `json:"accounts"`
	Pagination *PageResponse         `json:"pagination,omitempty"`
}

type PaymentsResponse struct {
	Payments   []escrowtypes.Payment `json:"payments"`
	Pagination *PageResponse         `json:"pagination,omitempty"`
}

type OrdersResponse struct {
	Orders     []markettypes.Order `json:"orders"`
	Pagination *PageResponse       `json:"pagination,omitempty"`
}

type BidsResponse struct {
	Bids       []markettypes.Bid `json:"bids"`
	Pagination *PageResponse     `json:"pagination,omitempty"`
}

type LeasesResponse struct {
	Leases     []markettypes.Lease `json:"leases"`
	Pagination *PageResponse       `json:"pagination,omitempty"`
}

// LeaseStatusesResponse lists reported lease statuses.
type LeaseStatusesResponse struct {
	Statuses []markettypes.LeaseStatus `json:"statuses"`
}

func newPageResponse(p *query.PageResponse) *PageResponse {
	if p == nil {
		return nil
	}
	return &PageResponse{NextKey: encodeKey(p.NextKey), Total: p.Total}
}
