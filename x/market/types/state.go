package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DeploymentState is the lifecycle state of a deployment.
type DeploymentState uint8

const (
	DeploymentStateInvalid DeploymentState = 0
	DeploymentActive       DeploymentState = 1
	DeploymentClosed       DeploymentState = 2
)

func (s DeploymentState) String() string {
	switch s {
	case DeploymentActive:
		return "active"
	case DeploymentClosed:
		return "closed"
	default:
		return "invalid"
	}
}

func (s DeploymentState) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *DeploymentState) UnmarshalJSON(bz []byte) error {
	return unmarshalState(bz, func(str string) bool {
		switch str {
		case "active":
			*s = DeploymentActive
		case "closed":
			*s = DeploymentClosed
		default:
			return false
		}
		return true
	})
}

// OrderState is the lifecycle state of an order.
type OrderState uint8

const (
	OrderStateInvalid OrderState = 0
	OrderOpen         OrderState = 1
	OrderActive       OrderState = 2
	OrderClosed       OrderState = 3
)

func (s OrderState) String() string {
	switch s {
	case OrderOpen:
		return "open"
	case OrderActive:
		return "active"
	case OrderClosed:
		return "closed"
	default:
		return "invalid"
	}
}

func (s OrderState) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *OrderState) UnmarshalJSON(bz []byte) error {
	return unmarshalState(bz, func(str string) bool {
		switch str {
		case "open":
			*s = OrderOpen
		case "active":
			*s = OrderActive
		case "closed":
			*s = OrderClosed
		default:
			return false
		}
		return true
	})
}

// BidState is the lifecycle state of a bid.
type BidState uint8

const (
	BidStateInvalid BidState = 0
	BidOpen         BidState = 1
	BidActive       BidState = 2
	BidLost         BidState = 3
	BidClosed       BidState = 4
)

func (s BidState) String() string {
	switch s {
	case BidOpen:
		return "open"
	case BidActive:
		return "active"
	case BidLost:
		return "lost"
	case BidClosed:
		return "closed"
	default:
		return "invalid"
	}
}

// ParseBidState parses the string form of a bid state.
func ParseBidState(str string) (BidState, error) {
	var s BidState
	bz, _ := json.Marshal(str)
	if err := s.UnmarshalJSON(bz); err != nil {
		return BidStateInvalid, err
	}
	return s, nil
}

func (s BidState) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *BidState) UnmarshalJSON(bz []byte) error {
	return unmarshalState(bz, func(str string) bool {
		switch str {
		case "open":
			*s = BidOpen
		case "active":
			*s = BidActive
		case "lost":
			*s = BidLost
		case "closed":
			*s = BidClosed
		default:
			return false
		}
		return true
	})
}

// LeaseState is the lifecycle state of a lease.
type LeaseState uint8

const (
	LeaseStateInvalid LeaseState = 0
	LeaseActive       LeaseState = 1
	LeaseClosed       LeaseState = 2
)

func (s LeaseState) String() string {
	switch s {
	case LeaseActive:
		return "active"
	case LeaseClosed:
		return "closed"
	default:
		return "invalid"
	}
}

// ParseLeaseState parses the string form of a lease state.
func ParseLeaseState(str string) (LeaseState, error) {
	var s LeaseState
	bz, _ := json.Marshal(str)
	if err := s.UnmarshalJSON(bz); err != nil {
		return LeaseStateInvalid, err
	}
	return s, nil
}

func (s LeaseState) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *LeaseState) UnmarshalJSON(bz []byte) error {
	return unmarshalState(bz, func(str string) bool {
		switch str {
		case "active":
			*s = LeaseActive
		case "closed":
			*s = LeaseClosed
		default:
			return false
		}
		return true
	})
}

func unmarshalState(bz []byte, set func(string) bool) error {
	var str string
	if err := json.Unmarshal(bz, &str); err != nil {
		return err
	}
	if !set(strings.ToLower(str)) {
		return fmt.Errorf("unknown state %q", str)
	}
	return nil
}
