// Command autumndbd runs one autumndb node: the operation engine, the three
// Active Anti-Entropy workers, and the client-facing TCP endpoint.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/autumndb/autumndb/internal/config"
	"github.com/autumndb/autumndb/internal/node"
	"github.com/autumndb/autumndb/internal/obslog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, errOut *os.File) int {
	flags := flag.NewFlagSet("autumndbd", flag.ContinueOnError)
	flags.SetOutput(errOut)

	flagConfig := flags.StringP("config", "c", "", "Path to the node's JSON config file (overrides AUTUMNDB_CONFIG)")
	flagHolder := flags.String("holder", "", "Override the on-disk data directory from the config file")
	flagJSONLog := flags.Bool("json-log", false, "Emit logs as JSON instead of console-formatted text")
	flagLogLevel := flags.String("log-level", "info", "Log level: debug, info, warn, error")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	obslog.Init(obslog.Config{
		Level:      obslog.Level(*flagLogLevel),
		JSONOutput: *flagJSONLog,
	})

	logger := obslog.WithComponent("main")

	cfg, err := loadConfig(*flagConfig, *flagHolder)
	if err != nil {
		logger.Error().Err(err).Msg("load config")
		return 1
	}

	n, err := node.New(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("start node")
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() { done <- n.Run() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error().Err(err).Msg("node exited")
			return 1
		}

		return 0
	case <-sigCh:
		logger.Info().Msg("shutting down")
		n.Stop()
		<-done

		return 0
	}
}

func loadConfig(path, holderOverride string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)

	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}

	if err != nil {
		return config.Config{}, fmt.Errorf("autumndbd: %w", err)
	}

	if holderOverride != "" {
		cfg.DataDir = holderOverride
	}

	return cfg, nil
}
