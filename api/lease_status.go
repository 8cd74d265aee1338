package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	markettypes "github.com/paw-chain/leasepay/x/market/types"
)

// LeaseStatusStore keeps the latest status the cluster reported for each lease.
// It lives only in the API process; the ledger never sees it.
type LeaseStatusStore struct {
	mu       sync.RWMutex
	statuses map[markettypes.LeaseID]markettypes.LeaseStatus
}

func NewLeaseStatusStore() *LeaseStatusStore {
	return &LeaseStatusStore{statuses: make(map[markettypes.LeaseID]markettypes.LeaseStatus)}
}

// Set records st, replacing an older report. Reports with a lower observed
// generation than the stored one are ignored.
func (s *LeaseStatusStore) Set(st markettypes.LeaseStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.statuses[st.LeaseID]; ok && prev.ObservedGeneration > st.ObservedGeneration {
		return false
	}
	s.statuses[st.LeaseID] = st
	return true
}

// Delete drops the status of a lease.
func (s *LeaseStatusStore) Delete(id markettypes.LeaseID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.statuses, id)
}

// List returns the statuses whose lease matches filter, ordered by lease id.
func (s *LeaseStatusStore) List(filter markettypes.BidFilter) []markettypes.LeaseStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]markettypes.LeaseStatus, 0, len(s.statuses))
	for id, st := range s.statuses {
		if filter.Match(id.BidID()) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LeaseID.String() < out[j].LeaseID.String()
	})
	return out
}

func validateLeaseStatus(st markettypes.LeaseStatus) error {
	if err := st.LeaseID.Validate(); err != nil {
		return err
	}
	if st.AvailableReplicas > st.TotalReplicas {
		return fmt.Errorf("available replicas %d exceed total %d", st.AvailableReplicas, st.TotalReplicas)
	}
	if st.ObservedGeneration < 0 {
		return errors.New("observed generation must not be negative")
	}
	return nil
}

func (s *Server) handleGetLeaseStatuses(c *gin.Context) {
	filter, err := bidFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if filter.State != "" {
		badRequest(c, errors.New("state is not a lease status filter"))
		return
	}
	c.JSON(http.StatusOK, LeaseStatusesResponse{Statuses: s.statuses.List(filter)})
}

// handlePostLeaseStatus accepts a report for an active lease. Reports for closed
// or unknown leases are rejected and drop any stale entry.
func (s *Server) handlePostLeaseStatus(c *gin.Context) {
	var st markettypes.LeaseStatus
	if err := c.ShouldBindJSON(&st); err != nil {
		badRequest(c, err)
		return
	}
	if err := validateLeaseStatus(st); err != nil {
		badRequest(c, err)
		return
	}

	id := st.LeaseID
	filter := markettypes.BidFilter{
		Owner:    id.Owner,
		DSeq:     id.DSeq,
		GSeq:     id.GSeq,
		OSeq:     id.OSeq,
		Provider: id.Provider,
		State:    markettypes.LeaseActive.String(),
	}
	s.runQuery(c, markettypes.ModuleName, "lease_status", func(ctx sdk.Context) (any, error) {
		res, err := s.backend.MarketQueryServer().Leases(ctx, &markettypes.QueryLeasesRequest{Filter: filter})
		if err != nil {
			return nil, err
		}
		if len(res.Leases) == 0 {
			s.statuses.Delete(id)
			return nil, status.Errorf(codes.NotFound, "no active lease %s", id)
		}
		if !s.statuses.Set(st) {
			return nil, status.Errorf(codes.InvalidArgument, "stale observed generation %d", st.ObservedGeneration)
		}
		return st, nil
	})
}
