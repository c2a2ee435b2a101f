package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"StandupBot/api"
	"StandupBot/config"
	"StandupBot/db"
	"StandupBot/logger"
	"StandupBot/scheduler"
	"StandupBot/sheets"
	"StandupBot/standup"
	"StandupBot/utils"

	"github.com/inconshreveable/log15"
	"github.com/slack-go/slack"
	"golang.ngrok.com/ngrok"
	ngrokconfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type app struct {
	cfg       *config.Config
	log       log15.Logger
	slackAPI  *slack.Client
	handler   *api.Handler
	scheduler *scheduler.Scheduler
	closers   []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, log: logger.New("app")}
	loc := cfg.Location()

	httpClient, err := sheets.NewHTTPClient(ctx, cfg.Sheets.CredentialsFile)
	if err != nil {
		return nil, err
	}
	store, err := sheets.New(ctx, httpClient, cfg.Sheets.SpreadsheetID, cfg.Sheets.Range)
	if err != nil {
		return nil, err
	}
	if wrote, err := sheets.EnsureHeader(ctx, store); err != nil {
		a.log.Warn("could not check sheet header", "err", err)
	} else if wrote {
		a.log.Info("wrote header row to empty sheet", "range", cfg.Sheets.Range)
	}

	tracker := standup.NewTracker(store, loc)

	var conn *gorm.DB
	if cfg.Database.URL != "" {
		conn, err = db.Open(ctx, cfg.Database.URL, logger.New("db"))
		if err != nil {
			return nil, err
		}
		if sqlDB, err := conn.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
	}
	claims, err := a.claimStore(ctx, conn, tracker)
	if err != nil {
		return nil, err
	}
	recorder := standup.NewRecorder(store, claims)

	var opts []slack.Option
	if cfg.Slack.AppToken != "" {
		opts = append(opts, slack.OptionAppLevelToken(cfg.Slack.AppToken))
	}
	a.slackAPI = slack.New(cfg.Slack.BotToken, opts...)
	notifier := api.NewNotifier(a.slackAPI, cfg.Standup.Deadline)
	a.handler = api.NewHandler(notifier, tracker, recorder, logger.New("standup"))

	a.scheduler = scheduler.New(loc, logger.New("scheduler"))
	var sink scheduler.DeliverySink
	if conn != nil {
		sink = db.NewDeliveryLog(conn)
	}
	broadcaster := scheduler.NewBroadcaster(notifier, cfg.Standup.Concurrency, logger.New("broadcast"))
	if err := a.scheduler.Add("standup", cfg.Standup.Schedule,
		scheduler.BroadcastJob(broadcaster, cfg.Standup.Members, sink, a.log)); err != nil {
		return nil, err
	}

	if cfg.Standup.SummarySchedule != "" {
		summarizer := scheduler.NewSummarizer(tracker, notifier, cfg.Standup.Members, cfg.Standup.SummaryChannel, logger.New("summary"))
		err := a.scheduler.Add("summary", cfg.Standup.SummarySchedule, func(ctx context.Context) {
			if err := summarizer.Run(ctx); err != nil {
				a.log.Error("failed to post standup summary", "err", err)
			}
		})
		if err != nil {
			return nil, err
		}
	}

	return a, nil
}

// claimStore picks the shared guard against duplicate submissions: SQL,
// then Redis, then a scan of the sheet itself.
func (a *app) claimStore(ctx context.Context, conn *gorm.DB, tracker *standup.Tracker) (standup.ClaimStore, error) {
	switch {
	case conn != nil:
		a.log.Info("using database submission claims")
		return db.NewClaimStore(conn), nil
	case a.cfg.Redis.URL != "":
		client, err := utils.NewRedisClient(ctx, a.cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.log.Info("using redis submission claims")
		return utils.NewRedisClaims(client), nil
	default:
		a.log.Info("using sheet scan submission claims")
		return standup.NewScanClaims(tracker), nil
	}
}

// run serves until ctx is cancelled or a component fails.
func (a *app) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	var interactions *api.InteractionServer
	if a.cfg.Slack.SigningSecret != "" {
		interactions = api.NewInteractionServer(a.handler, a.cfg.Slack.SigningSecret, logger.New("http"))
	}
	srv := &http.Server{Handler: SetupRouter(interactions), ReadHeaderTimeout: 10 * time.Second}

	ln, err := a.listen(ctx)
	if err != nil {
		return err
	}
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if a.cfg.Slack.AppToken != "" {
		listener := api.NewSocketListener(a.slackAPI, a.handler, logger.New("socket"))
		g.Go(func() error {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("socket mode: %w", err)
			}
			return nil
		})
	}

	a.scheduler.Start()
	defer a.scheduler.Stop()

	return g.Wait()
}

func (a *app) listen(ctx context.Context) (net.Listener, error) {
	if !a.cfg.Server.Tunnel {
		ln, err := net.Listen("tcp", a.cfg.Addr())
		if err != nil {
			return nil, fmt.Errorf("listen: %w", err)
		}
		a.log.Info("Server running", "addr", a.cfg.Addr())
		return ln, nil
	}

	tun, err := ngrok.Listen(ctx, ngrokconfig.HTTPEndpoint(), ngrok.WithAuthtokenFromEnv())
	if err != nil {
		return nil, fmt.Errorf("listen: failed to open ngrok tunnel: %w", err)
	}
	a.log.Info("Server running behind ngrok", "url", tun.URL(), "interactions", tun.URL()+"/slack/interactions")
	return tun, nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn("close failed", "err", err)
		}
	}
}
