// Command turniti runs the document-processing relay as a daemon. A
// front end (Telegram bot, HTTP surface) feeds it documents through
// the library API; this binary wires the configured store, processor,
// and delivery channel together and handles graceful shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/djoldoshevv/Turniti"
	audithook "github.com/djoldoshevv/Turniti/audit_hook"
	"github.com/djoldoshevv/Turniti/middleware"
	"github.com/djoldoshevv/Turniti/notify"
	"github.com/djoldoshevv/Turniti/notify/telegram"
	"github.com/djoldoshevv/Turniti/observability"
	"github.com/djoldoshevv/Turniti/processor/remote"
	"github.com/djoldoshevv/Turniti/store"
	"github.com/djoldoshevv/Turniti/store/memory"
	"github.com/djoldoshevv/Turniti/store/postgres"
	redisstore "github.com/djoldoshevv/Turniti/store/redis"
)

func main() {
	configPath := flag.String("config", "turniti.yaml", "path to the YAML config file")
	logJSON := flag.Bool("log-json", false, "emit logs as JSON")
	flag.Parse()

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if *logJSON {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	logger := slog.New(handler)

	if err := run(*configPath, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := turniti.LoadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	if err := s.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	procOpts := []remote.Option{remote.WithLogger(logger)}
	if cfg.Processor.UploadPath != "" {
		procOpts = append(procOpts, remote.WithUploadPath(cfg.Processor.UploadPath))
	}
	if cfg.Processor.Attempts > 0 {
		procOpts = append(procOpts, remote.WithAttempts(cfg.Processor.Attempts))
	}
	if cfg.Processor.Timeout > 0 {
		procOpts = append(procOpts, remote.WithHTTPClient(&http.Client{Timeout: cfg.Processor.Timeout}))
	}
	proc := remote.New(cfg.Processor.BaseURL, cfg.WorkDir, procOpts...)

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if cfg.Telegram.Token != "" {
		notifier = telegram.New(cfg.Telegram.Token)
	}

	relay, err := turniti.New(
		turniti.WithConfig(cfg),
		turniti.WithStore(s),
		turniti.WithProcessor(proc),
		turniti.WithNotifier(notifier),
		turniti.WithLogger(logger),
		turniti.WithMiddleware(middleware.Logging(logger), middleware.Metrics()),
		turniti.WithExtension(audithook.New(audithook.NewLogRecorder(logger))),
		turniti.WithExtension(observability.NewMetricsExtension()),
	)
	if err != nil {
		return err
	}

	if err := relay.Start(ctx); err != nil {
		return err
	}
	logger.Info("relay running",
		"store", cfg.Store.Driver,
		"processor", cfg.Processor.BaseURL,
		"ceiling", cfg.Ceiling,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	return relay.Stop(context.Background())
}

func openStore(cfg turniti.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		return memory.New(), nil
	case "postgres":
		return postgres.Open(cfg.Store.DSN, postgres.WithLogger(logger))
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.Store.Addr})
		return redisstore.New(client, redisstore.WithLogger(logger)), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
