package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	markettypes "github.com/paw-chain/leasepay/x/market/types"
)

const (
	flagOwner    = "owner"
	flagDSeq     = "dseq"
	flagGSeq     = "gseq"
	flagOSeq     = "oseq"
	flagProvider = "provider"
	flagSigner   = "signer"
	flagDeposit  = "deposit"
	flagSources  = "sources"
	flagState    = "state"
	flagLimit    = "limit"
	flagPageKey  = "page-key"

	// labelPrefix marks a local label instead of a bech32 address.
	labelPrefix = "@"
)

// labelAddress derives the local simulation address of a label.
func labelAddress(label string) sdk.AccAddress {
	return authtypes.NewModuleAddress("leasepay/" + label)
}

// resolveAddress accepts a bech32 address or @label.
func resolveAddress(s string) (sdk.AccAddress, error) {
	if label, ok := strings.CutPrefix(s, labelPrefix); ok {
		if label == "" {
			return nil, fmt.Errorf("empty label")
		}
		return labelAddress(label), nil
	}
	addr, err := sdk.AccAddressFromBech32(s)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return addr, nil
}

func addressFlag(fs *pflag.FlagSet, name string) (string, error) {
	v, err := fs.GetString(name)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("--%s is required", name)
	}
	addr, err := resolveAddress(v)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}

// optionalAddressFlag resolves name when it is set and returns "" otherwise.
func optionalAddressFlag(fs *pflag.FlagSet, name string) (string, error) {
	if v, _ := fs.GetString(name); v == "" {
		return "", nil
	}
	return addressFlag(fs, name)
}

func addDeploymentFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagOwner, "", "deployment owner (address or @label)")
	cmd.Flags().Uint64(flagDSeq, 0, "deployment sequence")
}

func addOrderFlags(cmd *cobra.Command) {
	addDeploymentFlags(cmd)
	cmd.Flags().Uint32(flagGSeq, 1, "group sequence")
	cmd.Flags().Uint32(flagOSeq, 1, "order sequence")
}

func addBidFlags(cmd *cobra.Command) {
	addOrderFlags(cmd)
	cmd.Flags().String(flagProvider, "", "provider (address or @label)")
}

func addDepositFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagDeposit, "", "deposit amount, e.g. 1000000upaw")
	cmd.Flags().String(flagSources, "balance", "ordered deposit sources (balance,grant)")
}

func deploymentIDFromFlags(fs *pflag.FlagSet) (markettypes.DeploymentID, error) {
	owner, err := addressFlag(fs, flagOwner)
	if err != nil {
		return markettypes.DeploymentID{}, err
	}
	dseq, err := fs.GetUint64(flagDSeq)
	if err != nil {
		return markettypes.DeploymentID{}, err
	}
	return markettypes.DeploymentID{Owner: owner, DSeq: dseq}, nil
}

func orderIDFromFlags(fs *pflag.FlagSet) (markettypes.OrderID, error) {
	did, err := deploymentIDFromFlags(fs)
	if err != nil {
		return markettypes.OrderID{}, err
	}
	gseq, err := fs.GetUint32(flagGSeq)
	if err != nil {
		return markettypes.OrderID{}, err
	}
	oseq, err := fs.GetUint32(flagOSeq)
	if err != nil {
		return markettypes.OrderID{}, err
	}
	return markettypes.MakeOrderID(markettypes.GroupID{Owner: did.Owner, DSeq: did.DSeq, GSeq: gseq}, oseq), nil
}

func bidIDFromFlags(fs *pflag.FlagSet) (markettypes.BidID, error) {
	oid, err := orderIDFromFlags(fs)
	if err != nil {
		return markettypes.BidID{}, err
	}
	provider, err := addressFlag(fs, flagProvider)
	if err != nil {
		return markettypes.BidID{}, err
	}
	return markettypes.MakeBidID(oid, provider), nil
}

func depositFromFlags(fs *pflag.FlagSet) (escrowtypes.Deposit, error) {
	amount, err := fs.GetString(flagDeposit)
	if err != nil {
		return escrowtypes.Deposit{}, err
	}
	coin, err := sdk.ParseCoinNormalized(amount)
	if err != nil {
		return escrowtypes.Deposit{}, fmt.Errorf("invalid --%s %q: %w", flagDeposit, amount, err)
	}
	raw, err := fs.GetString(flagSources)
	if err != nil {
		return escrowtypes.Deposit{}, err
	}
	sources, err := escrowtypes.ParseSources(raw)
	if err != nil {
		return escrowtypes.Deposit{}, err
	}
	return escrowtypes.NewDeposit(coin, sources...), nil
}

// printJSON writes v as indented JSON to the command output.
func printJSON(cmd *cobra.Command, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}
