package types

import "fmt"

// GenesisState is the market module's exported state.
type GenesisState struct {
	Params      Params       `json:"params"`
	Deployments []Deployment `json:"deployments"`
	Orders      []Order      `json:"orders"`
	Bids        []Bid        `json:"bids"`
	Leases      []Lease      `json:"leases"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:      DefaultParams(),
		Deployments: []Deployment{},
		Orders:      []Order{},
		Bids:        []Bid{},
		Leases:      []Lease{},
	}
}

// Validate performs basic genesis state validation returning an error upon any
// failure.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}

	deployments := make(map[DeploymentID]bool, len(gs.Deployments))
	for _, d := range gs.Deployments {
		if err := d.ID.Validate(); err != nil {
			return fmt.Errorf("deployment %s: %w", d.ID, err)
		}
		if deployments[d.ID] {
			return fmt.Errorf("duplicate deployment %s", d.ID)
		}
		deployments[d.ID] = true
	}

	orders := make(map[OrderID]bool, len(gs.Orders))
	for _, o := range gs.Orders {
		if err := o.ID.Validate(); err != nil {
			return fmt.Errorf("order %s: %w", o.ID, err)
		}
		if !deployments[o.ID.DeploymentID()] {
			return fmt.Errorf("order %s: deployment does not exist", o.ID)
		}
		if orders[o.ID] {
			return fmt.Errorf("duplicate order %s", o.ID)
		}
		orders[o.ID] = true
	}

	active := make(map[OrderID]bool)
	bids := make(map[BidID]bool, len(gs.Bids))
	for _, b := range gs.Bids {
		if err := b.ID.Validate(); err != nil {
			return fmt.Errorf("bid %s: %w", b.ID, err)
		}
		if !orders[b.ID.OrderID()] {
			return fmt.Errorf("bid %s: order does not exist", b.ID)
		}
		if bids[b.ID] {
			return fmt.Errorf("duplicate bid %s", b.ID)
		}
		bids[b.ID] = true
		if b.State == BidActive {
			if active[b.ID.OrderID()] {
				return fmt.Errorf("order %s has more than one active bid", b.ID.OrderID())
			}
			active[b.ID.OrderID()] = true
		}
	}

	for _, l := range gs.Leases {
		if !bids[l.ID.BidID()] {
			return fmt.Errorf("lease %s: bid does not exist", l.ID)
		}
	}
	return nil
}
