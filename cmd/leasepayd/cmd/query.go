package cmd

import (
	"encoding/base64"
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/paw-chain/leasepay/app"
	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	markettypes "github.com/paw-chain/leasepay/x/market/types"
)

// GetQueryCmd returns the query commands. Queries read the last sealed block.
func GetQueryCmd() *cobra.Command {
	queryCmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"q"},
		Short:   "Query the last sealed block",
		RunE:    func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	queryCmd.AddCommand(
		GetCmdQueryAccounts(),
		GetCmdQueryPayments(),
		GetCmdQueryBlocksRemaining(),
		GetCmdQueryDeployment(),
		GetCmdQueryOrders(),
		GetCmdQueryBids(),
		GetCmdQueryLeases(),
		GetCmdQueryGrants(),
		GetCmdQueryParams(),
		GetCmdQueryBalance(),
		GetCmdQueryInvariants(),
		GetCmdExportGenesis(),
	)
	return queryCmd
}

// withQuery runs fn on a read context over the last sealed block.
func withQuery(cmd *cobra.Command, fn func(a *app.App, ctx sdk.Context) (any, error)) error {
	return withApp(cmd, func(a *app.App) error {
		ctx, err := a.QueryContext(cmd.Context())
		if err != nil {
			return err
		}
		res, err := fn(a, ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	})
}

func addPaginationFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64(flagLimit, 0, "maximum number of results")
	cmd.Flags().String(flagPageKey, "", "base64 next key from a previous page")
}

func pageRequestFromFlags(fs *pflag.FlagSet) (*query.PageRequest, error) {
	limit, err := fs.GetUint64(flagLimit)
	if err != nil {
		return nil, err
	}
	rawKey, err := fs.GetString(flagPageKey)
	if err != nil {
		return nil, err
	}
	if limit == 0 && rawKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(rawKey)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flagPageKey, err)
	}
	return &query.PageRequest{Key: key, Limit: limit}, nil
}

// accountFilterFromArgs parses [state] [scope/owner/xid]. Either part may be
// omitted or given as "all".
func accountFilterFromArgs(args []string) (escrowtypes.AccountFilter, error) {
	var f escrowtypes.AccountFilter
	if len(args) > 0 && args[0] != "all" && args[0] != "" {
		state, err := escrowtypes.ParseState(args[0])
		if err != nil {
			return f, err
		}
		f.State = state
	}
	if len(args) > 1 && args[1] != "all" && args[1] != "" {
		parts := strings.SplitN(args[1], "/", 3)
		scope, err := escrowtypes.ParseScope(parts[0])
		if err != nil {
			return f, err
		}
		f.Scope = scope
		if len(parts) > 1 {
			owner, err := resolveAddress(parts[1])
			if err != nil {
				return f, err
			}
			f.Owner = owner.String()
		}
		if len(parts) > 2 {
			f.XID = parts[2]
		}
	}
	return f, nil
}

// GetCmdQueryAccounts lists escrow accounts.
func GetCmdQueryAccounts() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts [state] [scope/owner/xid]",
		Short: "List escrow accounts",
		Example: `  leasepayd query accounts
  leasepayd query accounts open deployment/@tenant
  leasepayd query accounts overdrawn deployment/@tenant/1`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := accountFilterFromArgs(args)
			if err != nil {
				return err
			}
			page, err := pageRequestFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return withQuery(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.EscrowQueryServer().Accounts(ctx, &escrowtypes.QueryAccountsRequest{Filter: filter, Pagination: page})
			})
		},
	}
	addPaginationFlags(cmd)
	return cmd
}

// GetCmdQueryPayments lists payments of matching accounts.
func GetCmdQueryPayments() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments [state] [scope/owner/xid]",
		Short: "List escrow payments",
		Example: `  leasepayd query payments open
  leasepayd query payments all deployment/@tenant/1`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := accountFilterFromArgs(args)
			if err != nil {
				return err
			}
			page, err := pageRequestFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return withQuery(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.EscrowQueryServer().Payments(ctx, &escrowtypes.QueryPaymentsRequest{Filter: filter, Pagination: page})
			})
		},
	}
	addPaginationFlags(cmd)
	return cmd
}

// GetCmdQueryBlocksRemaining projects the runway of a deployment account.
func GetCmdQueryBlocksRemaining() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "blocks-remaining",
		Short:   "Estimate how many blocks a deployment account can still pay for",
		Example: `  leasepayd query blocks-remaining --owner @tenant --dseq 1`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			did, err := deploymentIDFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return withQuery(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.EscrowQueryServer().BlocksRemaining(ctx, &escrowtypes.QueryBlocksRemainingRequest{Owner: did.Owner, DSeq: did.DSeq})
			})
		},
	}
	addDeploymentFlags(cmd)
	return cmd
}

// GetCmdQueryDeployment shows a deployment and its orders.
func GetCmdQueryDeployment() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deployment",
		Short: "Show a deployment and its orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			did, err := deploymentIDFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return withQuery(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.MarketQueryServer().Deployment(ctx, &markettypes.QueryDeploymentRequest{ID: did})
			})
		},
	}
	addDeploymentFlags(cmd)
	return cmd
}

func addBidFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagOwner, "", "deployment owner (address or @label)")
	cmd.Flags().Uint64(flagDSeq, 0, "deployment sequence")
	cmd.Flags().Uint32(flagGSeq, 0, "group sequence")
	cmd.Flags().Uint32(flagOSeq, 0, "order sequence")
	cmd.Flags().String(flagProvider, "", "provider (address or @label)")
	cmd.Flags().String(flagState, "", "state to match")
	addPaginationFlags(cmd)
}

func bidFilterFromFlags(fs *pflag.FlagSet) (markettypes.BidFilter, error) {
	var f markettypes.BidFilter
	var err error
	if f.Owner, err = optionalAddressFlag(fs, flagOwner); err != nil {
		return f, err
	}
	if f.Provider, err = optionalAddressFlag(fs, flagProvider); err != nil {
		return f, err
	}
	if f.DSeq, err = fs.GetUint64(flagDSeq); err != nil {
		return f, err
	}
	if f.GSeq, err = fs.GetUint32(flagGSeq); err != nil {
		return f, err
	}
	if f.OSeq, err = fs.GetUint32(flagOSeq); err != nil {
		return f, err
	}
	f.State, err = fs.GetString(flagState)
	return f, err
}

// GetCmdQueryOrders lists orders.
func GetCmdQueryOrders() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Short:   "List orders",
		Example: `  leasepayd query orders --owner @tenant --state open`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := bidFilterFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			page, err := pageRequestFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return withQuery(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.MarketQueryServer().Orders(ctx, &markettypes.QueryOrdersRequest{Filter: filter, Pagination: page})
			})
		},
	}
	addBidFilterFlags(cmd)
	return cmd
}

// GetCmdQueryBids lists bids.
func GetCmdQueryBids() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bids",
		Short:   "List bids",
		Example: `  leasepayd query bids --provider @provider --state active`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := bidFilterFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			page, err := pageRequestFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return withQuery(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.MarketQueryServer().Bids(ctx, &markettypes.QueryBidsRequest{Filter: filter, Pagination: page})
			})
		},
	}
	addBidFilterFlags(cmd)
	return cmd
}

// GetCmdQueryLeases lists leases.
func GetCmdQueryLeases() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "leases",
		Short:   "List leases",
		Example: `  leasepayd query leases --owner @tenant --state active`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := bidFilterFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			page, err := pageRequestFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return withQuery(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.MarketQueryServer().Leases(ctx, &markettypes.QueryLeasesRequest{Filter: filter, Pagination: page})
			})
		},
	}
	addBidFilterFlags(cmd)
	return cmd
}

// GetCmdQueryGrants lists the deposit grants a grantee holds.
func GetCmdQueryGrants() *cobra.Command {
	return &cobra.Command{
		Use:   "grants [grantee]",
		Short: "List deposit grants held by a grantee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grantee, err := resolveAddress(args[0])
			if err != nil {
				return err
			}
			return withQuery(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.EscrowQueryServer().Grants(ctx, &escrowtypes.QueryGrantsRequest{Grantee: grantee.String()})
			})
		},
	}
}

// ParamsResponse bundles the parameters of both modules.
type ParamsResponse struct {
	Escrow escrowtypes.Params `json:"escrow"`
	Market markettypes.Params `json:"market"`
}

// GetCmdQueryParams shows module parameters.
func GetCmdQueryParams() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Show escrow and market parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withQuery(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				escrowRes, err := a.EscrowQueryServer().Params(ctx, &escrowtypes.QueryParamsRequest{})
				if err != nil {
					return nil, err
				}
				marketRes, err := a.MarketQueryServer().Params(ctx, &markettypes.QueryParamsRequest{})
				if err != nil {
					return nil, err
				}
				return ParamsResponse{Escrow: escrowRes.Params, Market: marketRes.Params}, nil
			})
		},
	}
}

// GetCmdQueryBalance shows the bank balance of an account.
func GetCmdQueryBalance() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Show the spendable balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := resolveAddress(args[0])
			if err != nil {
				return err
			}
			return withQuery(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return map[string]any{
					"address": addr.String(),
					"balance": a.BankKeeper.GetAllBalances(ctx, addr),
				}, nil
			})
		},
	}
}

// InvariantsResponse reports the result of the ledger invariants.
type InvariantsResponse struct {
	Height  int64  `json:"height"`
	Broken  bool   `json:"broken"`
	Message string `json:"message,omitempty"`
}

// GetCmdQueryInvariants checks the ledger invariants.
func GetCmdQueryInvariants() *cobra.Command {
	return &cobra.Command{
		Use:   "invariants",
		Short: "Check the escrow and market invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app.App) error {
				msg, broken, err := a.CheckInvariants(cmd.Context())
				if err != nil {
					return err
				}
				res := InvariantsResponse{Height: a.Height() - 1, Broken: broken}
				if broken {
					res.Message = msg
				}
				if err := printJSON(cmd, res); err != nil {
					return err
				}
				if broken {
					return fmt.Errorf("invariant broken: %s", msg)
				}
				return nil
			})
		},
	}
}

// GetCmdExportGenesis prints the state of the last sealed block as genesis.
func GetCmdExportGenesis() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the last sealed block as a genesis document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withQuery(cmd, func(a *app.App, ctx sdk.Context) (any, error) {
				return a.ExportGenesis(ctx)
			})
		},
	}
}
