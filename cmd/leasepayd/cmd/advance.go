package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/paw-chain/leasepay/app"
)

// AdvanceResult reports the chain position after empty blocks were sealed.
type AdvanceResult struct {
	Height int64  `json:"height"`
	Time   string `json:"time"`
}

// AdvanceCmd seals empty blocks so open accounts settle.
func AdvanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance [blocks]",
		Short: "Seal empty blocks, settling every open escrow account each time",
		Example: `  leasepayd advance
  leasepayd advance 100`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 1
			if len(args) == 1 {
				var err error
				if n, err = cast.ToIntE(args[0]); err != nil || n <= 0 {
					return fmt.Errorf("blocks must be a positive integer, got %q", args[0])
				}
			}
			return withApp(cmd, func(a *app.App) error {
				height, err := a.Advance(n)
				if err != nil {
					return err
				}
				return printJSON(cmd, AdvanceResult{Height: height, Time: a.LastBlockTime().Format(time.RFC3339)})
			})
		},
	}
}
