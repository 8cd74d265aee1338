package app

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"

	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
)

const (
	// Bech32PrefixAccAddr defines the Bech32 prefix of an account's address
	Bech32PrefixAccAddr = "lease"
	// Bech32PrefixAccPub defines the Bech32 prefix of an account's public key
	Bech32PrefixAccPub = "leasepub"

	// CoinType is the coin type as defined in SLIP44 (https://github.com/satoshilabs/slips/blob/master/slip-0044.md)
	CoinType = 118

	// BondDenom is the escrow denomination.
	BondDenom = escrowtypes.DefaultDenom

	// DefaultBlockTime is the simulated block interval.
	DefaultBlockTime = escrowtypes.DefaultAvgBlockTime
)

// DefaultGenesisTime is the header time of block 1 unless configured otherwise.
var DefaultGenesisTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultNodeHome is where leasepayd keeps its config and data.
var DefaultNodeHome = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + Name
	}
	return filepath.Join(home, "."+Name)
}()

var setConfigOnce sync.Once

// SetConfig sets the address prefixes for the process. It is safe to call more
// than once.
func SetConfig() {
	setConfigOnce.Do(func() {
		config := sdk.GetConfig()
		config.SetBech32PrefixForAccount(Bech32PrefixAccAddr, Bech32PrefixAccPub)
		config.SetCoinType(CoinType)
		config.Seal()
	})
}
