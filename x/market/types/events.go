package types

// Event types for the market module
const (
	EventTypeDeploymentCreated = "market_deployment_created"
	EventTypeDeploymentClosed  = "market_deployment_closed"
	EventTypeOrderCreated      = "market_order_created"
	EventTypeOrderClosed       = "market_order_closed"
	EventTypeBidCreated        = "market_bid_created"
	EventTypeBidClosed         = "market_bid_closed"
	EventTypeBidLost           = "market_bid_lost"
	EventTypeLeaseCreated      = "market_lease_created"
	EventTypeLeaseClosed       = "market_lease_closed"
)

// Event attribute keys for the market module
const (
	AttributeKeyDeployment = "deployment"
	AttributeKeyOrder      = "order"
	AttributeKeyBid        = "bid"
	AttributeKeyLease      = "lease"
	AttributeKeyProvider   = "provider"
	AttributeKeyPrice      = "price"
	AttributeKeyReason     = "reason"
	AttributeKeyGroups     = "groups"
)
