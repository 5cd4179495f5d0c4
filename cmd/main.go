// Package main provides the CLI entrypoint of the Radio Mirchi backend.
// It wires subcommands (serve, migrate, jwt, compose), loads configuration, and initializes logging.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"radiomirchi/internal/config"
	"radiomirchi/pkg/logger"
	"radiomirchi/pkg/storage/mongodb"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// getMongo creates a MongoDB client using configuration values and returns it
// along with a cleanup function to disconnect it.
func getMongo(ctx context.Context, cfg *config.Config) (*mongodb.Mongo, func()) {
	mongo, err := mongodb.New(ctx, mongodb.Options{
		URI:            cfg.MongoDB.URI,
		Database:       cfg.MongoDB.Database,
		ConnectTimeout: cfg.MongoDB.ConnectTimeout,
		MaxPoolSize:    cfg.MongoDB.MaxPoolSize,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create mongodb storage", zap.Error(err))
	}

	return mongo, func() {
		logger.Info(ctx, "closing mongodb client...")
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.GracefulShutdownTimeout)
		defer cancel()
		if err := mongo.Close(closeCtx); err != nil {
			logger.Warn(ctx, "could not close mongodb connection", zap.Error(err))
		}
	}
}

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use:   "radiomirchi",
		Short: "Radio Mirchi backend",
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following lines are just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")
	rootCmd.PersistentFlags().StringP("env-file", "e", ".env", "Env File Path")

	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	configPath := flags.String("c", "config.yml", "The config file path")
	envFile := flags.String("e", ".env", "The env file path")
	// unknown subcommand flags end parsing early, cobra reports them
	_ = flags.Parse(os.Args[1:])

	log.Println("loading config ...")
	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatal("could not load config file: ", err)
	}

	logger.Setup(cfg.Environment)

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			logger.Sync(ctx)

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		serveCommand(cfg),
		migrateCommand(cfg),
		JWTCommand(cfg),
		composeCommand(),
	)

	err = rootCmd.Execute()
	logger.Sync(ctx)
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
