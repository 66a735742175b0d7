package main

import (
	"crypto/ed25519"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
)

const envPrefix = "ESCROW"

// Config is the configuration shared by every escrowctl command.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	JSONLogs bool   `mapstructure:"json_logs"`

	RPCEndpoint string `mapstructure:"rpc_endpoint"`
	ProgramID   string `mapstructure:"program_id"`
	Commitment  string `mapstructure:"commitment"`

	// RPCRateLimit is the number of RPC calls per second, per method. Zero
	// disables limiting.
	RPCRateLimit float64 `mapstructure:"rpc_rate_limit"`
	SyncWorkers  uint    `mapstructure:"sync_workers"`

	DatabaseURL string `mapstructure:"database_url"`
}

var defaultConfig = Config{
	LogLevel: "info",

	RPCEndpoint: "http://localhost:8899",
	ProgramID:   base58.Encode(escrow_program.PROGRAM_ID),
	Commitment:  "finalized",

	SyncWorkers: 8,
}

var configKeys = []string{
	"log_level",
	"json_logs",
	"rpc_endpoint",
	"program_id",
	"commitment",
	"rpc_rate_limit",
	"sync_workers",
	"database_url",
}

// loadConfig resolves the configuration from, in increasing priority, the
// defaults, the config file, the environment and the command line flags. A
// .env file in the working directory is loaded into the environment first.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet, configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "error loading .env file")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "error binding %s", key)
		}

		if flag := flags.Lookup(strings.ReplaceAll(key, "_", "-")); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, errors.Wrapf(err, "error binding flag for %s", key)
			}
		}
	}

	// viper only reports a missing config file when searching for one, so an
	// explicitly configured path is checked here.
	if len(configPath) > 0 {
		if _, err := os.Stat(configPath); err != nil {
			return nil, errors.Wrap(err, "error reading config file")
		}

		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "error reading config file")
		}
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling config")
	}
	return &config, nil
}

func (c *Config) programID() (ed25519.PublicKey, error) {
	return parseKey("program id", c.ProgramID)
}

func (c *Config) commitment() (solana.Commitment, error) {
	return solana.CommitmentFromString(c.Commitment)
}

func configureLogger(config *Config, out io.Writer) {
	if config.JSONLogs {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(out)
}
