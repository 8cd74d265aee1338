package api

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	escrow := s.router.Group("/escrow")
	{
		escrow.GET("/params", s.handleEscrowParams)
		escrow.GET("/accounts", s.handleGetAccounts)
		escrow.GET("/payments", s.handleGetPayments)
		escrow.GET("/blocks-remaining/:owner/:dseq", s.handleGetBlocksRemaining)
		escrow.GET("/grants/:grantee", s.handleGetGrants)
	}

	market := s.router.Group("/market")
	{
		market.GET("/params", s.handleMarketParams)
		market.GET("/deployments/:owner/:dseq", s.handleGetDeployment)
		market.GET("/orders", s.handleGetOrders)
		market.GET("/bids", s.handleGetBids)
		market.GET("/leases", s.handleGetLeases)
		market.GET("/leases/status", s.handleGetLeaseStatuses)
		market.POST("/leases/status", s.handlePostLeaseStatus)
	}
}
