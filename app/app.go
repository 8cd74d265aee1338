// Package app composes the leasepay ledger: a commit multistore over cosmos-db,
// the auth and bank keepers, and the escrow and market keepers.
//
// The App drives the state machine one block at a time without a consensus
// engine. Transactions run through DeliverTx, each on its own cached context so
// a failing transition leaves no trace. EndBlock settles every open escrow
// account, commits, and moves to the next height. Readers use QueryContext,
// which always sees the last committed block.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec/address"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
	minttypes "github.com/cosmos/cosmos-sdk/x/mint/types"

	"github.com/paw-chain/leasepay/app/telemetry"
	escrowkeeper "github.com/paw-chain/leasepay/x/escrow/keeper"
	escrowtypes "github.com/paw-chain/leasepay/x/escrow/types"
	marketkeeper "github.com/paw-chain/leasepay/x/market/keeper"
	markettypes "github.com/paw-chain/leasepay/x/market/types"
)

const (
	// Name is the application name.
	Name = "leasepay"
	// ChainID is the chain id stamped on every block header.
	ChainID = "leasepay-local"
)

// Config controls how blocks are stamped and what a new store starts from.
type Config struct {
	// GenesisTime is the header time of the genesis block.
	GenesisTime time.Time
	// BlockTime is the header time distance between blocks.
	BlockTime time.Duration
	// Genesis is applied when the store holds no committed block. Nil means
	// the default genesis.
	Genesis GenesisState
}

// DefaultConfig returns the config used when none is given.
func DefaultConfig() Config {
	return Config{GenesisTime: DefaultGenesisTime, BlockTime: DefaultBlockTime}
}

// App is the leasepay ledger.
type App struct {
	logger log.Logger
	db     dbm.DB
	cms    storetypes.CommitMultiStore
	keys   map[string]*storetypes.KVStoreKey
	enc    EncodingConfig
	config Config

	// mu serializes writers; readers only hold it while opening a version.
	mu sync.RWMutex

	AccountKeeper authkeeper.AccountKeeper
	BankKeeper    bankkeeper.BaseKeeper
	EscrowKeeper  *escrowkeeper.Keeper
	MarketKeeper  *marketkeeper.Keeper
}

// New opens the ledger stored in db. An empty db is initialized from
// cfg.Genesis and committed as block 1.
func New(logger log.Logger, db dbm.DB, cfg Config) (*App, error) {
	if cfg.GenesisTime.IsZero() {
		cfg.GenesisTime = DefaultGenesisTime
	}
	if cfg.BlockTime <= 0 {
		cfg.BlockTime = DefaultBlockTime
	}

	enc := MakeEncodingConfig()
	keys := storetypes.NewKVStoreKeys(
		authtypes.StoreKey, banktypes.StoreKey,
		escrowtypes.StoreKey, markettypes.StoreKey,
	)

	cms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	for _, key := range keys {
		cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load latest version: %w", err)
	}

	authority := authtypes.NewModuleAddress(govtypes.ModuleName).String()
	bech32Prefix := sdk.GetConfig().GetBech32AccountAddrPrefix()

	app := &App{
		logger: logger.With("module", "app"),
		db:     db,
		cms:    cms,
		keys:   keys,
		enc:    enc,
		config: cfg,
	}
	app.AccountKeeper = authkeeper.NewAccountKeeper(
		enc.Codec,
		runtime.NewKVStoreService(keys[authtypes.StoreKey]),
		authtypes.ProtoBaseAccount,
		GetMaccPerms(),
		address.NewBech32Codec(bech32Prefix),
		bech32Prefix,
		authority,
	)
	app.BankKeeper = bankkeeper.NewBaseKeeper(
		enc.Codec,
		runtime.NewKVStoreService(keys[banktypes.StoreKey]),
		app.AccountKeeper,
		BlockedModuleAccountAddrs(),
		authority,
		logger,
	)
	app.EscrowKeeper = escrowkeeper.NewKeeper(keys[escrowtypes.StoreKey], app.BankKeeper)
	app.MarketKeeper = marketkeeper.NewKeeper(keys[markettypes.StoreKey], app.EscrowKeeper)
	app.EscrowKeeper.SetHooks(app.MarketKeeper.Hooks())

	if cms.LastCommitID().Version == 0 {
		genesis := cfg.Genesis
		if genesis == nil {
			genesis = NewDefaultGenesisState(enc.Codec)
		}
		if err := app.initChain(genesis); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// initChain writes the genesis state and commits it as block 1.
func (app *App) initChain(genesis GenesisState) error {
	ctx := app.newContext(1)
	if err := app.InitGenesis(ctx, genesis); err != nil {
		return fmt.Errorf("init genesis: %w", err)
	}
	commit := app.cms.Commit()
	app.logger.Info("initialized chain", "height", commit.Version, "time", app.blockTime(commit.Version))
	return nil
}

// GetMaccPerms returns a copy of the module account permissions
func GetMaccPerms() map[string][]string {
	perms := make(map[string][]string, len(maccPerms))
	for name, p := range maccPerms {
		perms[name] = append([]string(nil), p...)
	}
	return perms
}

// BlockedModuleAccountAddrs returns the module addresses users may not send to.
// The fee collector stays open so lease fee streams can pay into it.
func BlockedModuleAccountAddrs() map[string]bool {
	return map[string]bool{
		authtypes.NewModuleAddress(minttypes.ModuleName).String():   true,
		authtypes.NewModuleAddress(escrowtypes.ModuleName).String(): true,
	}
}

// module account permissions
var maccPerms = map[string][]string{
	authtypes.FeeCollectorName: nil,
	minttypes.ModuleName:       {authtypes.Minter},
	escrowtypes.ModuleName:     nil,
}

// Height returns the height of the block being built.
func (app *App) Height() int64 {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.cms.LastCommitID().Version + 1
}

// LastBlockTime returns the header time of the last committed block.
func (app *App) LastBlockTime() time.Time {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.blockTime(app.cms.LastCommitID().Version)
}

// blockTime is the header time of height. Block times follow the configured
// interval and never the wall clock, so replays are deterministic.
func (app *App) blockTime(height int64) time.Time {
	return app.config.GenesisTime.Add(time.Duration(height-1) * app.config.BlockTime)
}

func (app *App) header(height int64) cmtproto.Header {
	return cmtproto.Header{ChainID: ChainID, Height: height, Time: app.blockTime(height)}
}

func (app *App) newContext(height int64) sdk.Context {
	return sdk.NewContext(app.cms, app.header(height), false, app.logger)
}

// DeliverTx runs one state transition on the block being built. fn sees a
// cached context and its writes land only when it returns nil. The events fn
// emitted are returned either way.
func (app *App) DeliverTx(fn func(ctx sdk.Context) error) (sdk.Events, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	start := time.Now()
	ctx := app.newContext(app.cms.LastCommitID().Version + 1)
	cacheCtx, writeCache := ctx.CacheContext()
	if err := fn(cacheCtx); err != nil {
		telemetry.RecordTransaction(context.Background(), time.Since(start), false)
		return cacheCtx.EventManager().Events(), err
	}
	writeCache()
	telemetry.RecordTransaction(context.Background(), time.Since(start), true)
	return cacheCtx.EventManager().Events(), nil
}

// EndBlock settles the block being built, commits it and returns its height.
func (app *App) EndBlock() (int64, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	start := time.Now()
	height := app.cms.LastCommitID().Version + 1
	spanCtx, span := telemetry.StartBlockSpan(context.Background(), height)
	defer span.End()

	ctx := app.newContext(height)
	if err := app.EscrowKeeper.EndBlocker(ctx); err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("end block %d: %w", height, err)
	}

	commit := app.cms.Commit()
	telemetry.RecordBlock(spanCtx, commit.Version, time.Since(start))
	app.logger.Debug("committed block", "height", commit.Version, "hash", fmt.Sprintf("%X", commit.Hash))
	return commit.Version, nil
}

// Advance ends n blocks in a row and returns the last committed height.
func (app *App) Advance(n int) (int64, error) {
	var height int64
	for i := 0; i < n; i++ {
		h, err := app.EndBlock()
		if err != nil {
			return height, err
		}
		height = h
	}
	if n == 0 {
		height = app.Height() - 1
	}
	return height, nil
}

// QueryContext returns a read-only context over the last committed block. It
// never observes a half-applied transition and may be used concurrently with
// writers. Cancelling parent cancels long scans.
func (app *App) QueryContext(parent context.Context) (sdk.Context, error) {
	app.mu.RLock()
	version := app.cms.LastCommitID().Version
	cms, err := app.cms.CacheMultiStoreWithVersion(version)
	app.mu.RUnlock()
	if err != nil {
		return sdk.Context{}, fmt.Errorf("failed to load version %d: %w", version, err)
	}
	return sdk.NewContext(cms, app.header(version), true, app.logger).WithContext(parent), nil
}

// Faucet mints coins to addr. It stands in for whatever funds accounts on a
// real network.
func (app *App) Faucet(addr sdk.AccAddress, coins sdk.Coins) error {
	_, err := app.DeliverTx(func(ctx sdk.Context) error {
		if err := app.BankKeeper.MintCoins(ctx, minttypes.ModuleName, coins); err != nil {
			return err
		}
		return app.BankKeeper.SendCoinsFromModuleToAccount(ctx, minttypes.ModuleName, addr, coins)
	})
	return err
}

// GrantDeposit records a deposit authorization from granter to grantee.
func (app *App) GrantDeposit(g escrowtypes.DepositGrant) (escrowtypes.DepositGrant, error) {
	var saved escrowtypes.DepositGrant
	_, err := app.DeliverTx(func(ctx sdk.Context) error {
		var err error
		saved, err = app.EscrowKeeper.SaveDepositGrant(ctx, g)
		return err
	})
	return saved, err
}

// RevokeDeposit removes a deposit authorization.
func (app *App) RevokeDeposit(granter, grantee, msgType string) error {
	_, err := app.DeliverTx(func(ctx sdk.Context) error {
		return app.EscrowKeeper.RevokeDepositGrant(ctx, granter, grantee, msgType)
	})
	return err
}

// EscrowMsgServer returns the escrow write API.
func (app *App) EscrowMsgServer() escrowtypes.MsgServer {
	return escrowkeeper.NewMsgServerImpl(*app.EscrowKeeper)
}

// MarketMsgServer returns the market write API.
func (app *App) MarketMsgServer() markettypes.MsgServer {
	return marketkeeper.NewMsgServerImpl(*app.MarketKeeper)
}

// EscrowQueryServer returns the escrow read API.
func (app *App) EscrowQueryServer() escrowtypes.QueryServer {
	return escrowkeeper.NewQueryServerImpl(*app.EscrowKeeper)
}

// MarketQueryServer returns the market read API.
func (app *App) MarketQueryServer() markettypes.QueryServer {
	return marketkeeper.NewQueryServerImpl(*app.MarketKeeper)
}

// CheckInvariants runs the escrow and market invariants against the last
// committed block.
func (app *App) CheckInvariants(ctx context.Context) (string, bool, error) {
	qctx, err := app.QueryContext(ctx)
	if err != nil {
		return "", false, err
	}
	if msg, broken := escrowkeeper.AllInvariants(*app.EscrowKeeper)(qctx); broken {
		return msg, true, nil
	}
	msg, broken := marketkeeper.AllInvariants(*app.MarketKeeper)(qctx)
	return msg, broken, nil
}

// Close releases the database.
func (app *App) Close() error {
	return app.db.Close()
}
