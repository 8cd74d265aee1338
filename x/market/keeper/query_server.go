package keeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	storeprefix "cosmossdk.io/store/prefix"
	"github.com/cosmos/cosmos-sdk/types/query"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/paw-chain/leasepay/x/market/types"
)

var _ types.QueryServer = queryServer{}

const (
	defaultPaginationLimit = 100
	maxPaginationLimit     = 1000
)

type queryServer struct {
	Keeper
}

// NewQueryServerImpl returns an implementation of the QueryServer interface
func NewQueryServerImpl(keeper Keeper) types.QueryServer {
	return &queryServer{Keeper: keeper}
}

// sanitizePagination enforces default and max limits to prevent unbounded queries.
func sanitizePagination(p *query.PageRequest) *query.PageRequest {
	if p == nil {
		return &query.PageRequest{Limit: defaultPaginationLimit}
	}
	if p.Limit == 0 {
		p.Limit = defaultPaginationLimit
	}
	if p.Limit > maxPaginationLimit {
		p.Limit = maxPaginationLimit
	}
	return p
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.Canceled, err.Error())
	case errorsmod.IsOf(err, types.ErrDeploymentNotFound, types.ErrOrderNotFound, types.ErrBidNotFound, types.ErrLeaseNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errorsmod.IsOf(err, types.ErrInvalidID):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// paginateFiltered scans records under prefix, keeping those keep accepts.
func paginateFiltered[T any](
	ctx context.Context,
	k Keeper,
	prefix []byte,
	page *query.PageRequest,
	keep func(T) bool,
) ([]T, *query.PageResponse, error) {
	store := storeprefix.NewStore(k.getStore(ctx), prefix)
	sanitized := sanitizePagination(page)
	out := make([]T, 0, sanitized.Limit)
	pageRes, err := query.FilteredPaginate(store, sanitized, func(key, value []byte, accumulate bool) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		var v T
		if err := json.Unmarshal(value, &v); err != nil {
			return false, fmt.Errorf("unmarshal %T: %w", v, err)
		}
		if !keep(v) {
			return false, nil
		}
		if accumulate {
			out = append(out, v)
		}
		return true, nil
	})
	return out, pageRes, err
}

// Params returns the module parameters
func (qs queryServer) Params(goCtx context.Context, req *types.QueryParamsRequest) (*types.QueryParamsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	params, err := qs.Keeper.GetParams(goCtx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &types.QueryParamsResponse{Params: params}, nil
}

// Deployment returns a deployment with its orders
func (qs queryServer) Deployment(goCtx context.Context, req *types.QueryDeploymentRequest) (*types.QueryDeploymentResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	if err := req.ID.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	d, err := qs.Keeper.GetDeployment(goCtx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	orders, err := qs.Keeper.DeploymentOrders(goCtx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &types.QueryDeploymentResponse{Deployment: d, Orders: orders}, nil
}

// Orders returns orders matching the filter
func (qs queryServer) Orders(goCtx context.Context, req *types.QueryOrdersRequest) (*types.QueryOrdersResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}

	f := req.Filter
	orders, pageRes, err := paginateFiltered(goCtx, qs.Keeper, filterPrefix(OrderKeyPrefix, f.Owner, f.DSeq), req.Pagination, func(o types.Order) bool {
		if !f.Match(types.MakeBidID(o.ID, f.Provider)) {
			return false
		}
		return f.State == "" || o.State.String() == f.State
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &types.QueryOrdersResponse{Orders: orders, Pagination: pageRes}, nil
}

// Bids returns bids matching the filter
func (qs queryServer) Bids(goCtx context.Context, req *types.QueryBidsRequest) (*types.QueryBidsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	if req.Filter.State != "" {
		if _, err := types.ParseBidState(req.Filter.State); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}

	f := req.Filter
	bids, pageRes, err := paginateFiltered(goCtx, qs.Keeper, filterPrefix(BidKeyPrefix, f.Owner, f.DSeq), req.Pagination, func(b types.Bid) bool {
		return f.Match(b.ID) && (f.State == "" || b.State.String() == f.State)
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &types.QueryBidsResponse{Bids: bids, Pagination: pageRes}, nil
}

// Leases returns leases matching the filter
func (qs queryServer) Leases(goCtx context.Context, req *types.QueryLeasesRequest) (*types.QueryLeasesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	if req.Filter.State != "" {
		if _, err := types.ParseLeaseState(req.Filter.State); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}

	f := req.Filter
	leases, pageRes, err := paginateFiltered(goCtx, qs.Keeper, filterPrefix(LeaseKeyPrefix, f.Owner, f.DSeq), req.Pagination, func(l types.Lease) bool {
		return f.Match(l.ID.BidID()) && (f.State == "" || l.State.String() == f.State)
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &types.QueryLeasesResponse{Leases: leases, Pagination: pageRes}, nil
}
