// Command marti-dashboard runs a read-only monitoring dashboard for the trading
// bot backend. It periodically (or once) fetches trades and the portfolio
// snapshot and renders them as a web page or in the terminal.
//
// Usage:
//
//	marti-dashboard --config dashboard.yaml
//	marti-dashboard --api-url http://localhost:8000 --poll-interval 30s
//	marti-dashboard --mode terminal
//	marti-dashboard --setup
//
// Environment variables:
//
//	DASHBOARD_API_URL  backend base URL used when --api-url is not given
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/marti-dashboard/config"
	"github.com/vadiminshakov/marti-dashboard/internal/clients"
	"github.com/vadiminshakov/marti-dashboard/internal/dashboard"
	"github.com/vadiminshakov/marti-dashboard/internal/domain"
	"github.com/vadiminshakov/marti-dashboard/internal/setup"
	"github.com/vadiminshakov/marti-dashboard/internal/ui/termview"
	"github.com/vadiminshakov/marti-dashboard/internal/web"
	"github.com/vadiminshakov/marti-dashboard/pkg/retrier"
)

func main() {
	conf, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if conf.Setup {
		conf, err = setup.RunTUI(conf.Path, conf)
		if err != nil {
			log.Fatal(err)
		}
	}

	logger, err := newLogger(conf.LogLevel, conf.Mode)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, logger); err != nil {
		logger.Fatal("dashboard stopped", zap.Error(err))
	}
	logger.Info("dashboard stopped")
}

// terminal mode redraws the screen, so logs go to a file there
const terminalLogFile = "marti-dashboard.log"

func newLogger(level, mode string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "invalid log level")
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if mode == config.ModeTerminal {
		cfg.OutputPaths = []string{terminalLogFile}
	}
	return cfg.Build()
}

func run(ctx context.Context, conf config.Config, logger *zap.Logger) error {
	r := retrier.New(
		retrier.WithMaxRetries(conf.MaxRetries),
		retrier.WithRetryIf(clients.Retryable),
		retrier.WithOnRetry(func(attempt int, wait time.Duration, err error) {
			logger.Warn("retry backend request",
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
		}),
	)

	client, err := clients.NewBackendClient(conf.APIURL,
		clients.WithTimeout(conf.RequestTimeout),
		clients.WithRetrier(r),
		clients.WithLogger(logger.Named("backend")),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create backend client")
	}

	orch := dashboard.New(client, logger.Named("orchestrator"),
		dashboard.WithPollInterval(conf.PollInterval))
	defer orch.Stop()

	logger.Info("starting dashboard",
		zap.String("api_url", client.BaseURL()),
		zap.String("mode", conf.Mode),
		zap.Duration("poll_interval", conf.PollInterval))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return orch.Run(ctx)
	})

	switch conf.Mode {
	case config.ModeTerminal:
		g.Go(func() error {
			return renderTerminal(ctx, orch, client.BaseURL(), conf)
		})
	default:
		srv := web.NewServer(conf.Listen, orch, web.Options{
			BackendURL: client.BaseURL(),
			Currency:   conf.Currency,
			Location:   conf.Location(),
		}, logger.Named("web"))
		g.Go(func() error {
			if len(conf.TLSDomains) > 0 {
				return srv.StartWithAutoTLS(ctx, conf.TLSDomains, conf.CertCacheDir)
			}
			return srv.Start(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// renderTerminal redraws the terminal view on every state transition.
func renderTerminal(ctx context.Context, orch *dashboard.Orchestrator, backendURL string, conf config.Config) error {
	states, unsubscribe := orch.Subscribe()
	defer unsubscribe()

	opts := termview.Options{Currency: conf.Currency, Location: conf.Location()}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st := <-states:
			draw(st, backendURL, opts, conf.Location())
		}
	}
}

func draw(st domain.ViewState, backendURL string, opts termview.Options, loc *time.Location) {
	fmt.Print("\033[H\033[2J") // clear screen
	fmt.Print(termview.Page(dashboard.NewView(st, backendURL, loc), opts))
}
