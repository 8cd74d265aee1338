package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Deployment is a tenant's request for compute, funded by its escrow account.
type Deployment struct {
	ID        DeploymentID    `json:"id"`
	State     DeploymentState `json:"state"`
	Groups    uint32          `json:"groups"`
	CreatedAt int64           `json:"created_at"`
}

// Order is the open call for bids placed by one deployment group.
type Order struct {
	ID        OrderID    `json:"id"`
	State     OrderState `json:"state"`
	CreatedAt int64      `json:"created_at"`
}

// Resources is the capacity one unit of an offer provides.
type Resources struct {
	CPUMillis uint32 `json:"cpu_millis"`
	GPUs      uint32 `json:"gpus,omitempty"`
	MemoryMB  uint64 `json:"memory_mb"`
	StorageGB uint64 `json:"storage_gb"`
}

// ResourceOffer is one resource group a provider offers, Count units of Resources.
type ResourceOffer struct {
	Resources Resources `json:"resources"`
	Count     uint32    `json:"count"`
}

// Bid is a provider's priced offer to fulfil an order.
type Bid struct {
	ID             BidID           `json:"id"`
	State          BidState        `json:"state"`
	Price          sdk.DecCoin     `json:"price"`
	ResourcesOffer []ResourceOffer `json:"resources_offer,omitempty"`
	CreatedAt      int64           `json:"created_at"`
}

// Lease reasons recorded when a lease closes.
const (
	LeaseClosedReasonOwner             = "owner_closed"
	LeaseClosedReasonProvider          = "provider_closed"
	LeaseClosedReasonInsufficientFunds = "insufficient_funds"
	LeaseClosedReasonDeploymentClosed  = "deployment_closed"
	LeaseClosedReasonBidClosed         = "bid_closed"
	LeaseClosedReasonEscrowClosed      = "escrow_closed"
)

// Lease is the fulfilment relationship created from a winning bid.
type Lease struct {
	ID        LeaseID     `json:"id"`
	State     LeaseState  `json:"state"`
	Price     sdk.DecCoin `json:"price"`
	CreatedAt int64       `json:"created_at"`
	ClosedOn  int64       `json:"closed_on,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// LeaseStatus is what the cluster reports about a running lease. It is a read-only
// projection from outside the ledger and is never stored by the keeper.
type LeaseStatus struct {
	LeaseID            LeaseID  `json:"lease_id"`
	AvailableReplicas  uint32   `json:"available_replicas"`
	TotalReplicas      uint32   `json:"total_replicas"`
	ObservedGeneration int64    `json:"observed_generation"`
	URIs               []string `json:"uris,omitempty"`
}
