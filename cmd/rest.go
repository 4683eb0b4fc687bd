package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AzielCF/telebridge/core/config"
	"github.com/AzielCF/telebridge/infrastructure/telegram"
	"github.com/AzielCF/telebridge/pkg/botmonitor"
	"github.com/AzielCF/telebridge/pkg/mediastore"
	"github.com/AzielCF/telebridge/pkg/msgworker"
	"github.com/AzielCF/telebridge/ui/rest"
	"github.com/AzielCF/telebridge/ui/rest/middleware"
	"github.com/AzielCF/telebridge/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Run the relay with its HTTP control surface",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	cfg := config.Global
	if missing := cfg.Validate(); len(missing) > 0 {
		logrus.Fatalf("[REST] missing required settings: %s", strings.Join(missing, ", "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := mediastore.New(cfg.Paths.Temp)
	if err != nil {
		logrus.Fatalf("[REST] %v", err)
	}
	maxAge := time.Duration(cfg.Relay.ArtifactMaxAgeMin) * time.Minute
	if _, err := store.Sweep(maxAge); err != nil {
		logrus.WithError(err).Warn("[MEDIASTORE] startup sweep failed")
	}
	go sweepPeriodically(ctx, store, maxAge)

	source, err := telegram.NewSourceSession(ctx, telegram.SessionConfig{
		APIID:      cfg.Telegram.APIID,
		APIHash:    cfg.Telegram.APIHash,
		StorageDir: cfg.Paths.Storages,
		Name:       cfg.Telegram.SessionName,
	})
	if err != nil {
		logrus.Fatalf("[TELEGRAM] source session: %v", err)
	}
	relay, err := telegram.NewRelaySession(ctx, telegram.SessionConfig{
		APIID:      cfg.Telegram.APIID,
		APIHash:    cfg.Telegram.APIHash,
		StorageDir: cfg.Paths.Storages,
		Name:       cfg.Telegram.BotSessionName,
	}, cfg.Telegram.BotToken, cfg.Relay.Target)
	if err != nil {
		_ = source.Close()
		logrus.Fatalf("[TELEGRAM] relay session: %v", err)
	}

	loginFlow := usecase.NewLoginFlow(source)
	if restored, err := loginFlow.Restore(ctx); err != nil {
		logrus.WithError(err).Warn("[AUTH] could not check stored session")
	} else if !restored {
		logrus.Info("[AUTH] no authorized user session, log in through POST /login")
	}

	worker := msgworker.NewSequentialWorker()
	worker.Start(ctx)

	forwardUsecase := usecase.NewForwardService(source, relay, store, cfg.Relay.MaxFileSize)
	queueUsecase := usecase.NewQueueService(loginFlow, forwardUsecase, worker, botmonitor.New(200))

	app := fiber.New(fiber.Config{
		AppName:               "telebridge",
		Network:               "tcp",
		ServerHeader:          "Hidden",
		DisableStartupMessage: !cfg.App.Debug,
	})

	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(middleware.Recovery())
	app.Use(helmet.New())
	if cfg.App.Debug {
		app.Use(logger.New())
	}

	router := app.Group(cfg.App.BasePath)
	if len(cfg.App.BasicAuth) > 0 {
		router.Use(basicauth.New(basicauth.Config{Users: basicAuthUsers(cfg.App.BasicAuth)}))
	}
	rest.Register(router, loginFlow, queueUsecase, store)

	go func() {
		<-ctx.Done()
		logrus.Info("[REST] termination signal received, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] error during fiber shutdown: %v", err)
		}
	}()

	logrus.Infof("[REST] listening on :%s%s", cfg.App.Port, cfg.App.BasePath)
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Errorf("[REST] failed to start: %v", err)
	}

	stopApp(worker, source, relay)
}

func basicAuthUsers(credentials []string) map[string]string {
	users := make(map[string]string, len(credentials))
	for _, credential := range credentials {
		user, pass, ok := strings.Cut(strings.TrimSpace(credential), ":")
		if !ok || user == "" {
			logrus.Fatalln("Basic auth is not valid, please use the format <user>:<secret>")
		}
		users[user] = pass
	}
	return users
}

func sweepPeriodically(ctx context.Context, store *mediastore.Store, maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}
	ticker := time.NewTicker(maxAge)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := store.Sweep(maxAge); err != nil {
				logrus.WithError(err).Warn("[MEDIASTORE] periodic sweep failed")
			}
		}
	}
}

// stopApp stops the queue before the clients it depends on.
func stopApp(worker *msgworker.SequentialWorker, source *telegram.SourceSession, relay *telegram.RelaySession) {
	logrus.Info("[APP] stopping application...")
	worker.Stop()
	_ = relay.Close()
	_ = source.Close()
	logrus.Info("[APP] application stopped cleanly.")
}
