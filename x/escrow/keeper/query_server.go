package keeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	storeprefix "cosmossdk.io/store/prefix"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/paw-chain/leasepay/x/escrow/types"
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

// toStatus maps keeper errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.Canceled, err.Error())
	case errorsmod.IsOf(err, types.ErrAccountNotFound, types.ErrPaymentNotFound, types.ErrGrantNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errorsmod.IsOf(err, types.ErrInvalidAccountID, types.ErrInvalidPaymentID):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
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

// indexPrefix picks the narrowest index a filter can scan. The state index is keyed
// by scope first, so a state and scope filter share one contiguous range.
func indexPrefix(filter types.AccountFilter, recordPrefix, statePrefix []byte) (prefix []byte, viaState bool) {
	switch {
	case filter.State != types.StateInvalid && filter.Scope != types.ScopeInvalid:
		return concat(statePrefix, []byte{byte(filter.State), byte(filter.Scope)}), true
	case filter.State != types.StateInvalid:
		return concat(statePrefix, []byte{byte(filter.State)}), true
	case filter.Scope != types.ScopeInvalid:
		return concat(recordPrefix, []byte{byte(filter.Scope)}), false
	default:
		return recordPrefix, false
	}
}

// Accounts returns escrow accounts matching the filter in identity order.
func (qs queryServer) Accounts(goCtx context.Context, req *types.QueryAccountsRequest) (*types.QueryAccountsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	if req.Filter.Owner != "" {
		if _, err := sdk.AccAddressFromBech32(req.Filter.Owner); err != nil {
			return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("invalid owner: %s", err))
		}
	}

	store := qs.Keeper.getStore(goCtx)
	prefix, viaState := indexPrefix(req.Filter, AccountKeyPrefix, AccountStateKeyPrefix)
	scanStore := storeprefix.NewStore(store, prefix)

	sanitized := sanitizePagination(req.Pagination)
	accounts := make([]types.Account, 0, sanitized.Limit)
	pageRes, err := query.FilteredPaginate(scanStore, sanitized, func(key, value []byte, accumulate bool) (bool, error) {
		if err := goCtx.Err(); err != nil {
			return false, err
		}
		if viaState {
			value = store.Get(concat(AccountKeyPrefix, prefix[len(AccountStateKeyPrefix)+1:], key))
			if value == nil {
				return false, types.ErrInvalidState.Wrap("state index points at missing account")
			}
		}
		var acc types.Account
		if err := json.Unmarshal(value, &acc); err != nil {
			return false, fmt.Errorf("unmarshal account: %w", err)
		}
		if !req.Filter.MatchAccount(acc.ID, acc.State) {
			return false, nil
		}
		if accumulate {
			accounts = append(accounts, acc)
		}
		return true, nil
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &types.QueryAccountsResponse{Accounts: accounts, Pagination: pageRes}, nil
}

// Payments returns payments whose account matches the filter. A state filter
// applies to the payment's own state.
func (qs queryServer) Payments(goCtx context.Context, req *types.QueryPaymentsRequest) (*types.QueryPaymentsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	if req.Filter.Owner != "" {
		if _, err := sdk.AccAddressFromBech32(req.Filter.Owner); err != nil {
			return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("invalid owner: %s", err))
		}
	}

	store := qs.Keeper.getStore(goCtx)
	prefix, viaState := indexPrefix(req.Filter, PaymentKeyPrefix, PaymentStateKeyPrefix)
	scanStore := storeprefix.NewStore(store, prefix)

	sanitized := sanitizePagination(req.Pagination)
	payments := make([]types.Payment, 0, sanitized.Limit)
	pageRes, err := query.FilteredPaginate(scanStore, sanitized, func(key, value []byte, accumulate bool) (bool, error) {
		if err := goCtx.Err(); err != nil {
			return false, err
		}
		if viaState {
			value = store.Get(concat(PaymentKeyPrefix, prefix[len(PaymentStateKeyPrefix)+1:], key))
			if value == nil {
				return false, types.ErrInvalidState.Wrap("state index points at missing payment")
			}
		}
		var p types.Payment
		if err := json.Unmarshal(value, &p); err != nil {
			return false, fmt.Errorf("unmarshal payment: %w", err)
		}
		if !req.Filter.MatchAccount(p.ID.AccountID, p.State) {
			return false, nil
		}
		if accumulate {
			payments = append(payments, p)
		}
		return true, nil
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &types.QueryPaymentsResponse{Payments: payments, Pagination: pageRes}, nil
}

// BlocksRemaining projects the runway of a deployment's escrow account.
func (qs queryServer) BlocksRemaining(goCtx context.Context, req *types.QueryBlocksRemainingRequest) (*types.QueryBlocksRemainingResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	if _, err := sdk.AccAddressFromBech32(req.Owner); err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("invalid owner: %s", err))
	}

	est, err := qs.Keeper.EstimateBlocksRemaining(goCtx, types.DeploymentAccountID(req.Owner, req.DSeq))
	if err != nil {
		return nil, toStatus(err)
	}
	return &types.QueryBlocksRemainingResponse{BlocksRemaining: est}, nil
}

// Grants lists the deposit grants a grantee holds.
func (qs queryServer) Grants(goCtx context.Context, req *types.QueryGrantsRequest) (*types.QueryGrantsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	if _, err := sdk.AccAddressFromBech32(req.Grantee); err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("invalid grantee: %s", err))
	}

	grants, err := qs.Keeper.GranteeGrants(goCtx, req.Grantee)
	if err != nil {
		return nil, toStatus(err)
	}
	return &types.QueryGrantsResponse{Grants: grants}, nil
}
