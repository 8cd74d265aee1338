package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/paw-chain/leasepay/app"
)

const (
	flagOverwrite = "overwrite"
	flagGenesis   = "genesis"
)

// InitResult reports a freshly initialized home.
type InitResult struct {
	Home        string `json:"home"`
	ChainID     string `json:"chain_id"`
	Height      int64  `json:"height"`
	GenesisTime string `json:"genesis_time"`
}

// InitCmd writes the node config and commits genesis.
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize config and genesis in the home directory",
		Long: `Write <home>/config/app.toml with the effective settings and commit the genesis
block under <home>/data. Without --genesis the default genesis is used; an
exported document from "query export" restores a previous ledger.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFromCmd(cmd)
			if err != nil {
				return err
			}
			overwrite, _ := cmd.Flags().GetBool(flagOverwrite)
			if _, err := os.Stat(dataDir(cfg.Home)); err == nil && !overwrite {
				return fmt.Errorf("%s already holds a ledger; use --%s to replace it", cfg.Home, flagOverwrite)
			}
			if overwrite {
				if err := os.RemoveAll(dataDir(cfg.Home)); err != nil {
					return fmt.Errorf("failed to remove old data: %w", err)
				}
			}

			var genesis app.GenesisState
			if path, _ := cmd.Flags().GetString(flagGenesis); path != "" {
				bz, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read genesis: %w", err)
				}
				if err := json.Unmarshal(bz, &genesis); err != nil {
					return fmt.Errorf("failed to decode genesis: %w", err)
				}
				if len(genesis) == 0 {
					return errors.New("genesis document is empty")
				}
			}

			// Reload so an existing file and the environment carry over into the written one.
			v := newViper(cfg.Home)
			if _, err := loadConfig(v, cfg.Home); err != nil {
				return err
			}
			v.Set(keyLogLevel, cfg.LogLevel)
			v.Set(keyLogFormat, cfg.LogFormat)
			if err := writeConfig(v, cfg.Home); err != nil {
				return err
			}

			a, err := openApp(cfg, genesis)
			if err != nil {
				return err
			}
			defer a.Close()

			return printJSON(cmd, InitResult{
				Home:        cfg.Home,
				ChainID:     app.ChainID,
				Height:      a.Height() - 1,
				GenesisTime: cfg.GenesisTime.Format(time.RFC3339),
			})
		},
	}
	cmd.Flags().Bool(flagOverwrite, false, "replace an existing ledger")
	cmd.Flags().String(flagGenesis, "", "genesis document to start from")
	return cmd
}
