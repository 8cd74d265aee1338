package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/paw-chain/leasepay/app"
	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	markettypes "github.com/paw-chain/leasepay/x/market/types"
)

const (
	flagGroups      = "groups"
	flagPrice       = "price"
	flagCPU         = "cpu"
	flagGPUs        = "gpus"
	flagMemory      = "memory"
	flagStorage     = "storage"
	flagCount       = "count"
	flagGranter     = "granter"
	flagGrantee     = "grantee"
	flagMsgType     = "msg-type"
	flagSpendLimit  = "spend-limit"
	flagScopes      = "scopes"
	flagExpireAfter = "expire-height"
	flagExpireAt    = "expire-time"
)

// TxResult is printed after a transaction has been applied and its block sealed.
type TxResult struct {
	Height   int64      `json:"height"`
	Events   sdk.Events `json:"events,omitempty"`
	Response any        `json:"response,omitempty"`
}

// GetTxCmd returns the transaction commands.
func GetTxCmd() *cobra.Command {
	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Apply a transaction and seal a block",
		Long: `Apply a single transaction to the ledger. A failing transaction leaves no
trace. Whether it succeeds or not, the block is sealed: every open escrow account
settles and the height advances by one.`,
		RunE: func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	txCmd.AddCommand(
		GetCmdFaucet(),
		GetCmdDeposit(),
		GetCmdCreateDeployment(),
		GetCmdCloseDeployment(),
		GetCmdCreateBid(),
		GetCmdCloseBid(),
		GetCmdCreateLease(),
		GetCmdCloseLease(),
		GetCmdGrant(),
		GetCmdRevoke(),
	)
	return txCmd
}

// deliver applies fn in its own transaction, seals the block and prints the result.
func deliver(cmd *cobra.Command, fn func(a *app.App, ctx sdk.Context) (any, error)) error {
	return withApp(cmd, func(a *app.App) error {
		var res any
		events, txErr := a.DeliverTx(func(ctx sdk.Context) error {
			var err error
			res, err = fn(a, ctx)
			return err
		})
		height, err := a.EndBlock()
		if err != nil {
			return err
		}
		if txErr != nil {
			return fmt.Errorf("transaction failed at height %d: %w", height, txErr)
		}
		return printJSON(cmd, TxResult{Height: height, Events: events, Response: res})
	})
}

// GetCmdFaucet mints coins to an account.
func GetCmdFaucet() *cobra.Command {
	return &cobra.Command{
		Use:   "faucet [address] [coins]",
		Short: "Mint coins to an account",
		Example: `  leasepayd tx faucet @tenant 5000000upaw
  leasepayd tx faucet lease1... 1000upaw`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := resolveAddress(args[0])
			if err != nil {
				return err
			}
			coins, err := sdk.ParseCoinsNormalized(args[1])
			if err != nil {
				return fmt.Errorf("invalid coins %q: %w", args[1], err)
			}
			if coins.Empty() {
				return errors.New("coins must not be empty")
			}
			return withApp(cmd, func(a *app.App) error {
				if err := a.Faucet(addr, coins); err != nil {
					return err
				}
				height, err := a.EndBlock()
				if err != nil {
					return err
				}
				return printJSON(cmd, TxResult{Height: height, Response: map[string]string{"address": addr.String(), "coins": coins.String()}})
			})
		},
	}
}

// GetCmdDeposit tops up a deployment account, or a bid account when --provider is set.
func GetCmdDeposit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit [amount]",
		Short: "Deposit into an existing escrow account",
		Long: `Deposit into an escrow account. Without --provider the deployment account of
--owner/--dseq is funded; with --provider the bid account of that order is.
Sources are drawn in order; grant sources use grants issued to --signer.`,
		Example: `  leasepayd tx deposit 500000upaw --owner @tenant --dseq 1 --signer @tenant
  leasepayd tx deposit 500000upaw --owner @tenant --dseq 1 --sources grant,balance --signer @tenant`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			coin, err := sdk.ParseCoinNormalized(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			rawSources, _ := fs.GetString(flagSources)
			sources, err := escrowtypes.ParseSources(rawSources)
			if err != nil {
				return err
			}
			signer, err := addressFlag(fs, flagSigner)
			if err != nil {
				return err
			}

			var id escrowtypes.AccountID
			provider, err := optionalAddressFlag(fs, flagProvider)
			if err != nil {
				return err
			}
			if provider == "" {
				did, err := deploymentIDFromFlags(fs)
				if err != nil {
					return err
				}
				id = escrowtypes.DeploymentAccountID(did.Owner, did.DSeq)
			} else {
				oid, err := orderIDFromFlags(fs)
				if err != nil {
					return err
				}
				id = escrowtypes.BidAccountID(provider, oid.Owner, oid.DSeq, oid.GSeq, oid.OSeq)
			}

			msg := &escrowtypes.MsgAccountDeposit{Signer: signer, ID: id, Deposit: escrowtypes.NewDeposit(coin, sources...)}
			return deliver(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.EscrowMsgServer().AccountDeposit(ctx, msg)
			})
		},
	}
	addBidFlags(cmd)
	cmd.Flags().String(flagSigner, "", "depositor (address or @label)")
	cmd.Flags().String(flagSources, "balance", "ordered deposit sources (balance,grant)")
	return cmd
}

// GetCmdCreateDeployment creates a deployment with one open order per group.
func GetCmdCreateDeployment() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create-deployment",
		Short:   "Create a deployment and fund its escrow account",
		Example: `  leasepayd tx create-deployment --owner @tenant --dseq 1 --groups 2 --deposit 1000000upaw`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			did, err := deploymentIDFromFlags(fs)
			if err != nil {
				return err
			}
			groups, err := fs.GetUint32(flagGroups)
			if err != nil {
				return err
			}
			deposit, err := depositFromFlags(fs)
			if err != nil {
				return err
			}
			msg := &markettypes.MsgCreateDeployment{ID: did, Groups: groups, Deposit: deposit}
			return deliver(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.MarketMsgServer().CreateDeployment(ctx, msg)
			})
		},
	}
	addDeploymentFlags(cmd)
	addDepositFlags(cmd)
	cmd.Flags().Uint32(flagGroups, 1, "number of groups")
	return cmd
}

// GetCmdCloseDeployment closes a deployment and everything under it.
func GetCmdCloseDeployment() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close-deployment",
		Short: "Close a deployment, its leases and its escrow account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			did, err := deploymentIDFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return deliver(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.MarketMsgServer().CloseDeployment(ctx, &markettypes.MsgCloseDeployment{ID: did})
			})
		},
	}
	addDeploymentFlags(cmd)
	return cmd
}

// GetCmdCreateBid places a bid on an open order.
func GetCmdCreateBid() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-bid",
		Short: "Bid on an open order and post the provider deposit",
		Example: `  leasepayd tx create-bid --owner @tenant --dseq 1 --provider @provider \
    --price 100upaw --deposit 500000upaw --cpu 1000 --memory 2048 --storage 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			bid, err := bidIDFromFlags(fs)
			if err != nil {
				return err
			}
			rawPrice, _ := fs.GetString(flagPrice)
			price, err := sdk.ParseDecCoin(rawPrice)
			if err != nil {
				return fmt.Errorf("invalid --%s %q: %w", flagPrice, rawPrice, err)
			}
			deposit, err := depositFromFlags(fs)
			if err != nil {
				return err
			}

			var offers []markettypes.ResourceOffer
			if count, _ := fs.GetUint32(flagCount); count > 0 {
				cpu, _ := fs.GetUint32(flagCPU)
				gpus, _ := fs.GetUint32(flagGPUs)
				memory, _ := fs.GetUint64(flagMemory)
				storage, _ := fs.GetUint64(flagStorage)
				offers = append(offers, markettypes.ResourceOffer{
					Resources: markettypes.Resources{CPUMillis: cpu, GPUs: gpus, MemoryMB: memory, StorageGB: storage},
					Count:     count,
				})
			}

			msg := &markettypes.MsgCreateBid{
				Order:          bid.OrderID(),
				Provider:       bid.Provider,
				Price:          price,
				ResourcesOffer: offers,
				Deposit:        deposit,
			}
			return deliver(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.MarketMsgServer().CreateBid(ctx, msg)
			})
		},
	}
	addBidFlags(cmd)
	addDepositFlags(cmd)
	cmd.Flags().String(flagPrice, "", "price per block, e.g. 100upaw")
	cmd.Flags().Uint32(flagCPU, 0, "offered CPU in millicores")
	cmd.Flags().Uint32(flagGPUs, 0, "offered GPUs")
	cmd.Flags().Uint64(flagMemory, 0, "offered memory in MB")
	cmd.Flags().Uint64(flagStorage, 0, "offered storage in GB")
	cmd.Flags().Uint32(flagCount, 1, "units of the offered resources; 0 omits the offer")
	return cmd
}

// GetCmdCloseBid withdraws an open bid.
func GetCmdCloseBid() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close-bid",
		Short: "Close a bid and refund its deposit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bid, err := bidIDFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return deliver(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.MarketMsgServer().CloseBid(ctx, &markettypes.MsgCloseBid{ID: bid})
			})
		},
	}
	addBidFlags(cmd)
	return cmd
}

// GetCmdCreateLease accepts a bid.
func GetCmdCreateLease() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create-lease",
		Short:   "Accept a bid and start paying the provider every block",
		Example: `  leasepayd tx create-lease --owner @tenant --dseq 1 --provider @provider`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bid, err := bidIDFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return deliver(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.MarketMsgServer().CreateLease(ctx, &markettypes.MsgCreateLease{BidID: bid})
			})
		},
	}
	addBidFlags(cmd)
	return cmd
}

// GetCmdCloseLease ends a lease on behalf of its owner or provider.
func GetCmdCloseLease() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close-lease",
		Short: "Close a lease as its owner or provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			bid, err := bidIDFromFlags(fs)
			if err != nil {
				return err
			}
			signer, err := addressFlag(fs, flagSigner)
			if err != nil {
				return err
			}
			msg := &markettypes.MsgCloseLease{Signer: signer, LeaseID: bid.LeaseID()}
			return deliver(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.MarketMsgServer().CloseLease(ctx, msg)
			})
		},
	}
	addBidFlags(cmd)
	cmd.Flags().String(flagSigner, "", "owner or provider closing the lease (address or @label)")
	return cmd
}

// msgTypeURL maps a short message kind to the type url grants are keyed by.
func msgTypeURL(kind string) (string, error) {
	switch strings.ToLower(kind) {
	case "deposit":
		return escrowtypes.MsgTypeAccountDeposit, nil
	case "deployment", "create-deployment":
		return escrowtypes.MsgTypeCreateDeployment, nil
	case "bid", "create-bid":
		return escrowtypes.MsgTypeCreateBid, nil
	default:
		if strings.HasPrefix(kind, "/") {
			return kind, nil
		}
		return "", fmt.Errorf("unknown message kind %q", kind)
	}
}

func parseScopes(raw string) ([]escrowtypes.Scope, error) {
	var scopes []escrowtypes.Scope
	for _, part := range strings.Split(raw, ",") {
		scope, err := escrowtypes.ParseScope(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}
	return scopes, nil
}

// GetCmdGrant records a deposit authorization.
func GetCmdGrant() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Authorize a grantee to draw deposits from the granter's balance",
		Example: `  leasepayd tx grant --granter @sponsor --grantee @tenant --msg-type deployment \
    --spend-limit 2000000upaw --scopes deployment`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			granter, err := addressFlag(fs, flagGranter)
			if err != nil {
				return err
			}
			grantee, err := addressFlag(fs, flagGrantee)
			if err != nil {
				return err
			}
			kind, _ := fs.GetString(flagMsgType)
			typeURL, err := msgTypeURL(kind)
			if err != nil {
				return err
			}
			rawLimit, _ := fs.GetString(flagSpendLimit)
			limit, err := sdk.ParseCoinNormalized(rawLimit)
			if err != nil {
				return fmt.Errorf("invalid --%s %q: %w", flagSpendLimit, rawLimit, err)
			}
			rawScopes, _ := fs.GetString(flagScopes)
			scopes, err := parseScopes(rawScopes)
			if err != nil {
				return err
			}

			grant := escrowtypes.DepositGrant{
				Granter:       granter,
				Grantee:       grantee,
				MsgTypeURL:    typeURL,
				Authorization: escrowtypes.DepositAuthorization{SpendLimit: limit, Scopes: scopes},
			}
			grant.Expiration.Height, _ = fs.GetInt64(flagExpireAfter)
			if rawTime, _ := fs.GetString(flagExpireAt); rawTime != "" {
				t, err := time.Parse(time.RFC3339, rawTime)
				if err != nil {
					return fmt.Errorf("invalid --%s %q: %w", flagExpireAt, rawTime, err)
				}
				t = t.UTC()
				grant.Expiration.Time = &t
			}

			return withApp(cmd, func(a *app.App) error {
				saved, txErr := a.GrantDeposit(grant)
				height, err := a.EndBlock()
				if err != nil {
					return err
				}
				if txErr != nil {
					return fmt.Errorf("transaction failed at height %d: %w", height, txErr)
				}
				return printJSON(cmd, TxResult{Height: height, Response: saved})
			})
		},
	}
	cmd.Flags().String(flagGranter, "", "granter (address or @label)")
	cmd.Flags().String(flagGrantee, "", "grantee (address or @label)")
	cmd.Flags().String(flagMsgType, "deployment", "message kind (deposit|deployment|bid) or type url")
	cmd.Flags().String(flagSpendLimit, "", "total amount the grantee may draw")
	cmd.Flags().String(flagScopes, "deployment", "escrow scopes the grant covers (deployment,bid)")
	cmd.Flags().Int64(flagExpireAfter, 0, "block height at which the grant expires")
	cmd.Flags().String(flagExpireAt, "", "RFC3339 time at which the grant expires")
	return cmd
}

// GetCmdRevoke removes a deposit authorization.
func GetCmdRevoke() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke a deposit authorization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			granter, err := addressFlag(fs, flagGranter)
			if err != nil {
				return err
			}
			grantee, err := addressFlag(fs, flagGrantee)
			if err != nil {
				return err
			}
			kind, _ := fs.GetString(flagMsgType)
			typeURL, err := msgTypeURL(kind)
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) error {
				txErr := a.RevokeDeposit(granter, grantee, typeURL)
				height, err := a.EndBlock()
				if err != nil {
					return err
				}
				if txErr != nil {
					return fmt.Errorf("transaction failed at height %d: %w", height, txErr)
				}
				return printJSON(cmd, TxResult{Height: height})
			})
		},
	}
	cmd.Flags().String(flagGranter, "", "granter (address or @label)")
	cmd.Flags().String(flagGrantee, "", "grantee (address or @label)")
	cmd.Flags().String(flagMsgType, "deployment", "message kind (deposit|deployment|bid) or type url")
	return cmd
}
