package cmd

import (
	"github.com/spf13/cobra"
)

// AddrCmd prints the local address of a label.
func AddrCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addr [label]",
		Short: "Print the address a @label stands for",
		Long: `Print the address a label resolves to. Any address flag or argument also
accepts @label, so local simulations need no keyring.`,
		Example: `  leasepayd addr tenant`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := resolveAddress(labelPrefix + args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{"label": args[0], "address": addr.String()})
		},
	}
}
