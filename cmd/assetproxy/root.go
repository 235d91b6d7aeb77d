package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/echotools/assetproxy/pkg/config"
	"github.com/echotools/assetproxy/pkg/supervisor"
)

var cfgFile string
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:               "assetproxy",
	Short:             "Serves a local mirror of game assets, falling back to an origin server",
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		if viper.IsSet("port") {
			cfg.Port = viper.GetInt("port")
		}
		if viper.IsSet("client-folder") {
			cfg.ClientFolder = viper.GetString("client-folder")
		}
		if viper.IsSet("origin-url") {
			cfg.OriginURL = viper.GetString("origin-url")
		}
		if viper.IsSet("log-level") {
			cfg.LogLevel = viper.GetString("log-level")
		}
		if viper.IsSet("index-concurrency") {
			cfg.IndexConcurrency = viper.GetInt("index-concurrency")
		}

		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		logrus.SetLevel(level)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

		return cfg.Validate()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	origin, err := cfg.Origin()
	if err != nil {
		return err
	}

	sup, err := supervisor.New(ctx, supervisor.Options{
		Port:             cfg.Port,
		ClientFolder:     cfg.ClientFolder,
		Origin:           origin,
		IndexConcurrency: cfg.IndexConcurrency,
	})
	if err != nil {
		return fmt.Errorf("start supervisor: %w", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() { serveErr <- sup.Serve() }()

	select {
	case err := <-serveErr:
		return err
	case <-sig:
		logrus.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), supervisor.ShutdownTimeout)
		defer cancel()
		if err := sup.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-serveErr
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "assetproxy.yaml", "path to the config file")
	flags.Int("port", 0, "port to listen on (overrides config file)")
	flags.String("client-folder", "", "root of the mirrored client installation (overrides config file)")
	flags.String("origin-url", "", "upstream origin server (overrides config file)")
	flags.String("log-level", "", "log level: debug, info, warn, error (overrides config file)")
	flags.Int("index-concurrency", 0, "bound on concurrent index build work (overrides config file)")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
}
