// Command sixelbridged runs the Slack bot: it listens for messages over
// Socket Mode, matches them against configured commands, runs those commands,
// and relays their text and sixel-image output back to Slack.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"

	"github.com/hnw/sixelbridge/cmd"
	"github.com/hnw/sixelbridge/internal/config"
	"github.com/hnw/sixelbridge/internal/sixel"
	"github.com/hnw/sixelbridge/pubsub"
)

func main() {
	var (
		configPath = flag.String("config", "config.toml", "path to config.toml")
		verbose    = flag.Bool("v", false, "verbose (debug) logging")
	)
	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()

	if err := run(*configPath, *verbose, logger); err != nil {
		logger.Fatal("sixelbridged exiting", zap.Error(err))
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		// zap.Build failing means stderr is broken; there's nothing better
		// to log to, so fall back to a no-op logger rather than panic.
		return zap.NewNop()
	}
	return logger
}

func run(configPath string, verbose bool, logger *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", configPath, err)
	}

	// config.DecodeLimits carries independent width/height caps, but
	// internal/sixel bounds both axes with a single MaxDimension; use the
	// tighter of the two so neither operator-set limit is silently ignored.
	sixel.MaxDimension = min(cfg.Decode.MaxWidth, cfg.Decode.MaxHeight)

	cmdCfgs, err := buildCommandConfigs(cfg)
	if err != nil {
		return fmt.Errorf("building command configs: %w", err)
	}

	stdLog, err := zap.NewStdLogAt(logger.Named("slack"), zap.DebugLevel)
	if err != nil {
		return fmt.Errorf("building slack logger: %w", err)
	}
	api := slack.New(
		cfg.SlackBotToken,
		slack.OptionAppLevelToken(cfg.SlackAppToken),
		slack.OptionLog(stdLog),
		slack.OptionDebug(verbose),
	)
	smc := socketmode.New(
		api,
		socketmode.OptionLog(stdLog),
		socketmode.OptionDebug(verbose),
	)

	commandQueue := make(chan *cmd.CommandInput, cfg.NumWorkers)
	outputQueue := make(chan *cmd.CommandOutput, cfg.NumWorkers)

	execLogger := logger.Named("exec")
	for i := 0; i < cfg.NumWorkers; i++ {
		go cmd.Executor(commandQueue, outputQueue, cmdCfgs, execLogger)
	}
	go pubsub.SlackWriter(smc, outputQueue)
	go pubsub.SlackListener(smc, commandQueue, cfg.Config)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("sixelbridged starting", zap.Int("num_workers", cfg.NumWorkers), zap.Int("commands", len(cmdCfgs)))
	return smc.RunContext(ctx)
}

// buildCommandConfigs translates the TOML-decoded [[commands]] entries into
// the cmd package's runtime shape.
func buildCommandConfigs(cfg *config.Config) ([]*cmd.CommandConfig, error) {
	cmdCfgs := make([]*cmd.CommandConfig, 0, len(cfg.Commands))
	for _, c := range cfg.Commands {
		def := &cmd.Definition{
			Timeout:       c.Timeout,
			Keyword:       c.Keyword,
			Command:       c.Command,
			Aliases:       c.Aliases,
			LegacyDecoder: c.LegacyDecoder,
		}
		replyCfg := c.ReplyConfig
		cmdCfgs = append(cmdCfgs, cmd.NewCommandConfig(def, &replyCfg))
	}
	return cmdCfgs, nil
}
