package keeper

import (
	"encoding/binary"

	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/paw-chain/leasepay/x/market/types"
)

var (
	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x01}

	// DeploymentKeyPrefix is the prefix for deployments.
	// Key: prefix + lp(owner) + dseq
	DeploymentKeyPrefix = []byte{0x11}

	// OrderKeyPrefix is the prefix for orders.
	// Key: prefix + deployment key + gseq + oseq
	OrderKeyPrefix = []byte{0x12}

	// BidKeyPrefix is the prefix for bids, so an order's bids are contiguous.
	// Key: prefix + order key + lp(provider)
	BidKeyPrefix = []byte{0x13}

	// LeaseKeyPrefix is the prefix for leases, keyed like bids.
	LeaseKeyPrefix = []byte{0x14}
)

func ownerKey(owner string) []byte {
	return address.MustLengthPrefix([]byte(owner))
}

func deploymentKey(id types.DeploymentID) []byte {
	key := ownerKey(id.Owner)
	return binary.BigEndian.AppendUint64(key, id.DSeq)
}

func orderKey(id types.OrderID) []byte {
	key := deploymentKey(id.DeploymentID())
	key = binary.BigEndian.AppendUint32(key, id.GSeq)
	return binary.BigEndian.AppendUint32(key, id.OSeq)
}

func bidKey(id types.BidID) []byte {
	return append(orderKey(id.OrderID()), address.MustLengthPrefix([]byte(id.Provider))...)
}

func withPrefix(prefix, key []byte) []byte {
	out := make([]byte, 0, len(prefix)+len(key))
	return append(append(out, prefix...), key...)
}

// DeploymentKey returns the store key of a deployment.
func DeploymentKey(id types.DeploymentID) []byte {
	return withPrefix(DeploymentKeyPrefix, deploymentKey(id))
}

// OrderKey returns the store key of an order.
func OrderKey(id types.OrderID) []byte {
	return withPrefix(OrderKeyPrefix, orderKey(id))
}

// DeploymentOrdersPrefix returns the prefix of every order of a deployment.
func DeploymentOrdersPrefix(id types.DeploymentID) []byte {
	return withPrefix(OrderKeyPrefix, deploymentKey(id))
}

// BidKey returns the store key of a bid.
func BidKey(id types.BidID) []byte {
	return withPrefix(BidKeyPrefix, bidKey(id))
}

// OrderBidsPrefix returns the prefix of every bid on an order.
func OrderBidsPrefix(id types.OrderID) []byte {
	return withPrefix(BidKeyPrefix, orderKey(id))
}

// LeaseKey returns the store key of a lease.
func LeaseKey(id types.LeaseID) []byte {
	return withPrefix(LeaseKeyPrefix, bidKey(id.BidID()))
}

// filterPrefix narrows a scan under recordPrefix to an owner, and to one of the
// owner's deployments when dseq is set.
func filterPrefix(recordPrefix []byte, owner string, dseq uint64) []byte {
	if owner == "" {
		return recordPrefix
	}
	if dseq == 0 {
		return withPrefix(recordPrefix, ownerKey(owner))
	}
	return withPrefix(recordPrefix, deploymentKey(types.DeploymentID{Owner: owner, DSeq: dseq}))
}
