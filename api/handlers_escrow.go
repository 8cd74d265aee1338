package api

import (
	"errors"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"

	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
)

func (s *Server) handleEscrowParams(c *gin.Context) {
	s.runQuery(c, escrowtypes.ModuleName, "params", func(ctx sdk.Context) (any, error) {
		return s.backend.EscrowQueryServer().Params(ctx, &escrowtypes.QueryParamsRequest{})
	})
}

// accountFilter reads scope, state, owner and xid from the query string.
func accountFilter(c *gin.Context) (escrowtypes.AccountFilter, error) {
	f := escrowtypes.AccountFilter{Owner: c.Query("owner"), XID: c.Query("xid")}
	if v := c.Query("scope"); v != "" {
		scope, err := escrowtypes.ParseScope(v)
		if err != nil {
			return f, err
		}
		f.Scope = scope
	}
	if v := c.Query("state"); v != "" {
		state, err := escrowtypes.ParseState(v)
		if err != nil {
			return f, err
		}
		f.State = state
	}
	return f, nil
}

func (s *Server) handleGetAccounts(c *gin.Context) {
	filter, err := accountFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	page, err := pageRequest(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	s.runQuery(c, escrowtypes.ModuleName, "accounts", func(ctx sdk.Context) (any, error) {
		res, err := s.backend.EscrowQueryServer().Accounts(ctx, &escrowtypes.QueryAccountsRequest{Filter: filter, Pagination: page})
		if err != nil {
			return nil, err
		}
		return AccountsResponse{Accounts: res.Accounts, Pagination: newPageResponse(res.Pagination)}, nil
	})
}

func (s *Server) handleGetPayments(c *gin.Context) {
	filter, err := accountFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	page, err := pageRequest(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	s.runQuery(c, escrowtypes.ModuleName, "payments", func(ctx sdk.Context) (any, error) {
		res, err := s.backend.EscrowQueryServer().Payments(ctx, &escrowtypes.QueryPaymentsRequest{Filter: filter, Pagination: page})
		if err != nil {
			return nil, err
		}
		return PaymentsResponse{Payments: res.Payments, Pagination: newPageResponse(res.Pagination)}, nil
	})
}

func (s *Server) handleGetBlocksRemaining(c *gin.Context) {
	dseq, err := uintParam("dseq", c.Param("dseq"))
	if err != nil {
		badRequest(c, err)
		return
	}
	if dseq == 0 {
		badRequest(c, errors.New("dseq must be positive"))
		return
	}

	req := &escrowtypes.QueryBlocksRemainingRequest{Owner: c.Param("owner"), DSeq: dseq}
	s.runQuery(c, escrowtypes.ModuleName, "blocks_remaining", func(ctx sdk.Context) (any, error) {
		return s.backend.EscrowQueryServer().BlocksRemaining(ctx, req)
	})
}

func (s *Server) handleGetGrants(c *gin.Context) {
	req := &escrowtypes.QueryGrantsRequest{Grantee: c.Param("grantee")}
	s.runQuery(c, escrowtypes.ModuleName, "grants", func(ctx sdk.Context) (any, error) {
		return s.backend.EscrowQueryServer().Grants(ctx, req)
	})
}
