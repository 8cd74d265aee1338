package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/paw-chain/leasepay/app"
)

const (
	flagHome      = "home"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
)

type configKey struct{}

// NewRootCmd creates the leasepayd root command. It is called once in main.
func NewRootCmd() *cobra.Command {
	// Bech32 prefixes must be set before any address is parsed.
	app.SetConfig()

	defaultHome := app.DefaultNodeHome
	if env := os.Getenv(envPrefix + "_HOME"); env != "" {
		defaultHome = env
	}

	rootCmd := &cobra.Command{
		Use:   "leasepayd",
		Short: "Escrow settlement ledger for compute leases",
		Long: `leasepayd runs the escrow and settlement ledger of a compute-lease marketplace.

Tenants fund deployments, providers bid on orders and post deposits, and every
block the ledger streams payment from each tenant's escrow to the providers it
leases from. Each tx command applies one transaction and seals a block.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			home, err := cmd.Flags().GetString(flagHome)
			if err != nil {
				return err
			}
			v := newViper(home)
			if err := v.BindPFlag(keyLogLevel, cmd.Flags().Lookup(flagLogLevel)); err != nil {
				return err
			}
			if err := v.BindPFlag(keyLogFormat, cmd.Flags().Lookup(flagLogFormat)); err != nil {
				return err
			}
			cfg, err := loadConfig(v, home)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, configKey{}, cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().String(flagHome, defaultHome, "directory for config and data")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String(flagLogFormat, "plain", "log format (plain|json)")

	rootCmd.AddCommand(
		InitCmd(),
		GetTxCmd(),
		GetQueryCmd(),
		AdvanceCmd(),
		ServeCmd(),
		AddrCmd(),
	)
	return rootCmd
}

func configFromCmd(cmd *cobra.Command) (Config, error) {
	cfg, ok := cmd.Context().Value(configKey{}).(Config)
	if !ok {
		return Config{}, errors.New("config not loaded")
	}
	return cfg, nil
}

// newLogger builds the process logger from the configured level and format.
func newLogger(cfg Config) (log.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	opts := []log.Option{log.LevelOption(level)}
	switch cfg.LogFormat {
	case "", "plain":
	case "json":
		opts = append(opts, log.OutputJSONOption())
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	return log.NewLogger(os.Stderr, opts...), nil
}

// openApp opens the ledger under the configured home. The caller must Close it.
func openApp(cfg Config, genesis app.GenesisState) (*app.App, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir(cfg.Home), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := dbm.NewDB("application", dbm.GoLevelDBBackend, dataDir(cfg.Home))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	appCfg := cfg.appConfig()
	appCfg.Genesis = genesis
	a, err := app.New(logger, db, appCfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// withApp runs fn against the ledger of the command's home.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	cfg, err := configFromCmd(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
