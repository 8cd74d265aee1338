package api

import (
	"errors"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"
	"github.com/gin-gonic/gin"

	markettypes "github.com/paw-chain/leasepay/x/market/types"
)

func (s *Server) handleMarketParams(c *gin.Context) {
	s.runQuery(c, markettypes.ModuleName, "params", func(ctx sdk.Context) (any, error) {
		return s.backend.MarketQueryServer().Params(ctx, &markettypes.QueryParamsRequest{})
	})
}

// bidFilter reads owner, dseq, gseq, oseq, provider and state from the query string.
func bidFilter(c *gin.Context) (markettypes.BidFilter, error) {
	f := markettypes.BidFilter{
		Owner:    c.Query("owner"),
		Provider: c.Query("provider"),
		State:    c.Query("state"),
	}
	dseq, err := uintParam("dseq", c.Query("dseq"))
	if err != nil {
		return f, err
	}
	gseq, err := uintParam("gseq", c.Query("gseq"))
	if err != nil {
		return f, err
	}
	oseq, err := uintParam("oseq", c.Query("oseq"))
	if err != nil {
		return f, err
	}
	if gseq > 1<<32-1 || oseq > 1<<32-1 {
		return f, errors.New("gseq and oseq must fit in 32 bits")
	}
	f.DSeq, f.GSeq, f.OSeq = dseq, uint32(gseq), uint32(oseq)
	return f, nil
}

func (s *Server) handleGetDeployment(c *gin.Context) {
	dseq, err := uintParam("dseq", c.Param("dseq"))
	if err != nil {
		badRequest(c, err)
		return
	}

	req := &markettypes.QueryDeploymentRequest{ID: markettypes.DeploymentID{Owner: c.Param("owner"), DSeq: dseq}}
	s.runQuery(c, markettypes.ModuleName, "deployment", func(ctx sdk.Context) (any, error) {
		return s.backend.MarketQueryServer().Deployment(ctx, req)
	})
}

func (s *Server) handleGetOrders(c *gin.Context) {
	filter, page, ok := s.listParams(c)
	if !ok {
		return
	}
	s.runQuery(c, markettypes.ModuleName, "orders", func(ctx sdk.Context) (any, error) {
		res, err := s.backend.MarketQueryServer().Orders(ctx, &markettypes.QueryOrdersRequest{Filter: filter, Pagination: page})
		if err != nil {
			return nil, err
		}
		return OrdersResponse{Orders: res.Orders, Pagination: newPageResponse(res.Pagination)}, nil
	})
}

func (s *Server) handleGetBids(c *gin.Context) {
	filter, page, ok := s.listParams(c)
	if !ok {
		return
	}
	s.runQuery(c, markettypes.ModuleName, "bids", func(ctx sdk.Context) (any, error) {
		res, err := s.backend.MarketQueryServer().Bids(ctx, &markettypes.QueryBidsRequest{Filter: filter, Pagination: page})
		if err != nil {
			return nil, err
		}
		return BidsResponse{Bids: res.Bids, Pagination: newPageResponse(res.Pagination)}, nil
	})
}

func (s *Server) handleGetLeases(c *gin.Context) {
	filter, page, ok := s.listParams(c)
	if !ok {
		return
	}
	s.runQuery(c, markettypes.ModuleName, "leases", func(ctx sdk.Context) (any, error) {
		res, err := s.backend.MarketQueryServer().Leases(ctx, &markettypes.QueryLeasesRequest{Filter: filter, Pagination: page})
		if err != nil {
			return nil, err
		}
		return LeasesResponse{Leases: res.Leases, Pagination: newPageResponse(res.Pagination)}, nil
	})
}

func (s *Server) listParams(c *gin.Context) (markettypes.BidFilter, *query.PageRequest, bool) {
	filter, err := bidFilter(c)
	if err != nil {
		badRequest(c, err)
		return filter, nil, false
	}
	page, err := pageRequest(c)
	if err != nil {
		badRequest(c, err)
		return filter, nil, false
	}
	return filter, page, true
}
