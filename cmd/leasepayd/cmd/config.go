package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/paw-chain/leasepay/app"
	"github.com/paw-chain/leasepay/app/telemetry"
)

const (
	envPrefix = "LEASEPAY"

	keyLogLevel        = "log_level"
	keyLogFormat       = "log_format"
	keyAPIAddress      = "api.address"
	keyAPICORSOrigins  = "api.cors_origins"
	keyAPIRateLimit    = "api.rate_limit_rps"
	keyMetricsAddress  = "metrics.address"
	keyBlockTime       = "chain.block_time"
	keyGenesisTime     = "chain.genesis_time"
	keyTracingEnabled  = "tracing.enabled"
	keyTracingEndpoint = "tracing.endpoint"
	keyTracingSample   = "tracing.sample_rate"
	keyTracingEnv      = "tracing.environment"
)

// Config is the node configuration read from <home>/config/app.toml and
// LEASEPAY_* environment variables.
type Config struct {
	Home           string
	LogLevel       string
	LogFormat      string
	APIAddress     string
	CORSOrigins    []string
	RateLimitRPS   int
	MetricsAddress string
	BlockTime      time.Duration
	GenesisTime    time.Time
	Tracing        telemetry.Config
}

func configPath(home string) string {
	return filepath.Join(home, "config", "app.toml")
}

func dataDir(home string) string {
	return filepath.Join(home, "data")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "plain")
	v.SetDefault(keyAPIAddress, "127.0.0.1:1317")
	v.SetDefault(keyAPICORSOrigins, []string{"http://localhost:3000"})
	v.SetDefault(keyAPIRateLimit, 100)
	v.SetDefault(keyMetricsAddress, "127.0.0.1:26660")
	v.SetDefault(keyBlockTime, app.DefaultBlockTime.String())
	v.SetDefault(keyGenesisTime, app.DefaultGenesisTime.Format(time.RFC3339))
	v.SetDefault(keyTracingEnabled, false)
	v.SetDefault(keyTracingEndpoint, "localhost:4318")
	v.SetDefault(keyTracingSample, 1.0)
	v.SetDefault(keyTracingEnv, "local")
}

// newViper returns a viper bound to the home config file and the environment.
func newViper(home string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(configPath(home))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// loadConfig reads the config file if present. A missing file is not an error;
// defaults and environment overrides still apply.
func loadConfig(v *viper.Viper, home string) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read %s: %w", configPath(home), err)
		}
	}

	blockTime, err := cast.ToDurationE(v.Get(keyBlockTime))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", keyBlockTime, err)
	}
	if blockTime <= 0 {
		return Config{}, fmt.Errorf("%s must be positive", keyBlockTime)
	}
	genesisTime, err := cast.ToTimeE(v.Get(keyGenesisTime))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", keyGenesisTime, err)
	}
	rateLimit, err := cast.ToIntE(v.Get(keyAPIRateLimit))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", keyAPIRateLimit, err)
	}
	sampleRate, err := cast.ToFloat64E(v.Get(keyTracingSample))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", keyTracingSample, err)
	}

	return Config{
		Home:           home,
		LogLevel:       v.GetString(keyLogLevel),
		LogFormat:      v.GetString(keyLogFormat),
		APIAddress:     v.GetString(keyAPIAddress),
		CORSOrigins:    cast.ToStringSlice(v.Get(keyAPICORSOrigins)),
		RateLimitRPS:   rateLimit,
		MetricsAddress: v.GetString(keyMetricsAddress),
		BlockTime:      blockTime,
		GenesisTime:    genesisTime.UTC(),
		Tracing: telemetry.Config{
			Enabled:     cast.ToBool(v.Get(keyTracingEnabled)),
			Endpoint:    v.GetString(keyTracingEndpoint),
			SampleRate:  sampleRate,
			Environment: v.GetString(keyTracingEnv),
		},
	}, nil
}

// writeConfig writes the effective settings of v, defaults included, to the
// home config file.
func writeConfig(v *viper.Viper, home string) error {
	if err := os.MkdirAll(filepath.Dir(configPath(home)), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	return v.WriteConfigAs(configPath(home))
}

// appConfig turns the node config into the ledger config.
func (c Config) appConfig() app.Config {
	return app.Config{GenesisTime: c.GenesisTime, BlockTime: c.BlockTime}
}
