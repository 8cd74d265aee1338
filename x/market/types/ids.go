package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// DeploymentID identifies a tenant's deployment.
type DeploymentID struct {
	Owner string `json:"owner"`
	DSeq  uint64 `json:"dseq"`
}

func (id DeploymentID) String() string {
	return fmt.Sprintf("%s/%d", id.Owner, id.DSeq)
}

// Validate checks that the id is well formed.
func (id DeploymentID) Validate() error {
	if _, err := sdk.AccAddressFromBech32(id.Owner); err != nil {
		return ErrInvalidID.Wrapf("invalid owner: %v", err)
	}
	if id.DSeq == 0 {
		return ErrInvalidID.Wrap("dseq must be positive")
	}
	return nil
}

// GroupID identifies one resource group of a deployment.
type GroupID struct {
	Owner string `json:"owner"`
	DSeq  uint64 `json:"dseq"`
	GSeq  uint32 `json:"gseq"`
}

// DeploymentID returns the deployment the group belongs to.
func (id GroupID) DeploymentID() DeploymentID {
	return DeploymentID{Owner: id.Owner, DSeq: id.DSeq}
}

func (id GroupID) String() string {
	return fmt.Sprintf("%s/%d/%d", id.Owner, id.DSeq, id.GSeq)
}

// OrderID identifies the order a group places for providers to bid on.
type OrderID struct {
	Owner string `json:"owner"`
	DSeq  uint64 `json:"dseq"`
	GSeq  uint32 `json:"gseq"`
	OSeq  uint32 `json:"oseq"`
}

// MakeOrderID returns the id of an order of a group.
func MakeOrderID(gid GroupID, oseq uint32) OrderID {
	return OrderID{Owner: gid.Owner, DSeq: gid.DSeq, GSeq: gid.GSeq, OSeq: oseq}
}

// GroupID returns the group the order belongs to.
func (id OrderID) GroupID() GroupID {
	return GroupID{Owner: id.Owner, DSeq: id.DSeq, GSeq: id.GSeq}
}

// DeploymentID returns the deployment the order belongs to.
func (id OrderID) DeploymentID() DeploymentID {
	return DeploymentID{Owner: id.Owner, DSeq: id.DSeq}
}

func (id OrderID) String() string {
	return fmt.Sprintf("%s/%d/%d/%d", id.Owner, id.DSeq, id.GSeq, id.OSeq)
}

// Validate checks that the id is well formed.
func (id OrderID) Validate() error {
	if err := id.DeploymentID().Validate(); err != nil {
		return err
	}
	if id.GSeq == 0 || id.OSeq == 0 {
		return ErrInvalidID.Wrap("gseq and oseq must be positive")
	}
	return nil
}

// BidID identifies a provider's bid on an order.
type BidID struct {
	Owner    string `json:"owner"`
	DSeq     uint64 `json:"dseq"`
	GSeq     uint32 `json:"gseq"`
	OSeq     uint32 `json:"oseq"`
	Provider string `json:"provider"`
}

// MakeBidID returns the id of provider's bid on an order.
func MakeBidID(oid OrderID, provider string) BidID {
	return BidID{Owner: oid.Owner, DSeq: oid.DSeq, GSeq: oid.GSeq, OSeq: oid.OSeq, Provider: provider}
}

// OrderID returns the order the bid is placed on.
func (id BidID) OrderID() OrderID {
	return OrderID{Owner: id.Owner, DSeq: id.DSeq, GSeq: id.GSeq, OSeq: id.OSeq}
}

// DeploymentID returns the deployment the bid is placed on.
func (id BidID) DeploymentID() DeploymentID {
	return DeploymentID{Owner: id.Owner, DSeq: id.DSeq}
}

// LeaseID returns the lease a winning bid turns into.
func (id BidID) LeaseID() LeaseID {
	return LeaseID(id)
}

func (id BidID) String() string {
	return fmt.Sprintf("%s/%d/%d/%d/%s", id.Owner, id.DSeq, id.GSeq, id.OSeq, id.Provider)
}

// Validate checks that the id is well formed.
func (id BidID) Validate() error {
	if err := id.OrderID().Validate(); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(id.Provider); err != nil {
		return ErrInvalidID.Wrapf("invalid provider: %v", err)
	}
	return nil
}

// LeaseID identifies a lease; it shares the identity of the bid it came from.
type LeaseID BidID

// BidID returns the bid the lease came from.
func (id LeaseID) BidID() BidID {
	return BidID(id)
}

// OrderID returns the order the lease fulfils.
func (id LeaseID) OrderID() OrderID {
	return BidID(id).OrderID()
}

// DeploymentID returns the deployment the lease serves.
func (id LeaseID) DeploymentID() DeploymentID {
	return BidID(id).DeploymentID()
}

func (id LeaseID) String() string {
	return BidID(id).String()
}

// Validate checks that the id is well formed.
func (id LeaseID) Validate() error {
	return BidID(id).Validate()
}

// PaymentXID is the escrow payment xid of the lease's provider stream.
func (id LeaseID) PaymentXID() string {
	return fmt.Sprintf("%d/%d/%s", id.GSeq, id.OSeq, id.Provider)
}

// FeePaymentXID is the escrow payment xid of the lease's protocol fee stream.
func (id LeaseID) FeePaymentXID() string {
	return id.PaymentXID() + "/fee"
}
