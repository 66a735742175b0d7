package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/code-payments/hashlock-escrow/pkg/data/escrow"
	escrow_pg "github.com/code-payments/hashlock-escrow/pkg/data/escrow/postgres"
	pg "github.com/code-payments/hashlock-escrow/pkg/database/postgres"
	rate_util "github.com/code-payments/hashlock-escrow/pkg/rate"
	"github.com/code-payments/hashlock-escrow/pkg/solana"
	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
)

// env carries the process level dependencies of the commands, so they can be
// replaced in tests.
type env struct {
	out    io.Writer
	logOut io.Writer

	v      *viper.Viper
	config *Config

	newClient func(config *Config) solana.Client
	newStore  func(ctx context.Context, config *Config, createSchema bool) (escrow.Store, func(), error)
}

func newEnv(out, logOut io.Writer) *env {
	return &env{
		out:    out,
		logOut: logOut,
		v:      viper.New(),
		newClient: func(config *Config) solana.Client {
			return solana.New(config.RPCEndpoint)
		},
		newStore: newPostgresStore,
	}
}

func newPostgresStore(ctx context.Context, config *Config, createSchema bool) (escrow.Store, func(), error) {
	if len(config.DatabaseURL) == 0 {
		return nil, nil, errors.New("database url is required")
	}

	db, err := pg.NewWithDSN(ctx, config.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if createSchema {
		if err := escrow_pg.CreateSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	return escrow_pg.New(db), func() { db.Close() }, nil
}

func (e *env) printf(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format, args...)
}

func (e *env) limiter() rate_util.Limiter {
	if e.config.RPCRateLimit <= 0 {
		return &rate_util.NoLimiter{}
	}
	return rate_util.NewLocalRateLimiter(rate.Limit(e.config.RPCRateLimit), 0)
}

func newRootCommand(e *env) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "escrowctl",
		Short:         "Tooling for the hash-locked token escrow program",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			config, err := loadConfig(e.v, cmd.Flags(), configPath)
			if err != nil {
				return err
			}
			e.config = config

			configureLogger(config, e.logOut)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "configuration file path")
	flags.String("log-level", defaultConfig.LogLevel, "log level")
	flags.Bool("json-logs", defaultConfig.JSONLogs, "emit logs as json")
	flags.String("rpc-endpoint", defaultConfig.RPCEndpoint, "solana json rpc endpoint")
	flags.String("program-id", defaultConfig.ProgramID, "escrow program id")
	flags.String("commitment", defaultConfig.Commitment, "commitment level for rpc reads")
	flags.Float64("rpc-rate-limit", defaultConfig.RPCRateLimit, "rpc calls per second per method, 0 to disable")
	flags.Uint("sync-workers", defaultConfig.SyncWorkers, "escrows synced concurrently")
	flags.String("database-url", defaultConfig.DatabaseURL, "postgres connection url")

	cmd.AddCommand(
		newDeriveCommand(e),
		newEncodeCommand(e),
		newDecodeCommand(e),
		newInspectCommand(e),
		newSyncCommand(e),
		newDBCommand(e),
	)

	cmd.SetOut(e.out)
	cmd.SetErr(e.logOut)
	return cmd
}

// describeError renders a command failure, naming the escrow program error
// behind it when there is one.
func describeError(err error) string {
	if code, ok := escrow_program.GetErrorCode(err); ok {
		return fmt.Sprintf("error: %v (program error %d: %s)", err, uint32(code), code.String())
	}
	return fmt.Sprintf("error: %v", err)
}
