package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	discordtransport "github.com/spec-kit/ticket-bot/internal/api/discord"
	discordhandlers "github.com/spec-kit/ticket-bot/internal/api/discord/handlers"
	httptransport "github.com/spec-kit/ticket-bot/internal/api/http"
	"github.com/spec-kit/ticket-bot/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/persistence"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal("failed to create discord session", zap.Error(err))
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	gateway := platform.NewDiscordGateway(session)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	sessions := repository.NewTranscriptRepository()

	ticketService := service.NewTicketService(service.TicketDependencies{
		Gateway:     gateway,
		SessionRepo: sessions,
		Locker:      persistence.NewLocker(redis, cfg.Lock),
		Dispatcher:  dispatcher,
		Config:      cfg.Discord,
		Logger:      logger,
	})

	logService := service.NewTicketLogService(dispatcher, gateway, logger, cfg.Discord)
	var archiveService *service.ArchiveService
	if pg.Enabled() {
		archiveService = service.NewArchiveService(dispatcher, repository.NewTranscriptArchiveRepository(pg.PoolHandle()), logger)
	}
	worker.StartTicketSubscribers(logService, archiveService)

	router := discordtransport.NewRouter(discordtransport.RouteConfig{
		Tickets:  discordhandlers.NewTicketHandler(ticketService),
		Messages: discordhandlers.NewMessageHandler(ticketService, logger),
		Panels:   discordhandlers.NewPanelHandler(gateway, cfg.Panel, cfg.Discord.CommandPrefix),
		Gateway:  gateway,
		Prefix:   cfg.Discord.CommandPrefix,
		Logger:   logger,
		Metrics:  metrics,
		Timeout:  cfg.App.RequestTimeout(),
	})
	router.Register(session)

	if err := session.Open(); err != nil {
		logger.Fatal("failed to open discord gateway", zap.Error(err))
	}
	defer session.Close() //nolint:errcheck

	var app *fiber.App
	if cfg.App.HTTPEnabled {
		app = fiber.New(fiber.Config{DisableStartupMessage: true})
		httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
		httptransport.RegisterRoutes(app, httptransport.RouteConfig{
			Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, gateway, map[string]handlers.Dependency{
				"postgres": pg,
				"redis":    redis,
			}),
			Metrics: handlers.NewMetricsHandler(metrics, sessions),
		})

		go func() {
			if err := app.Listen(cfg.App.Addr()); err != nil {
				logger.Fatal("fiber listen", zap.Error(err))
			}
		}()
	}

	logger.Info("bot started", zap.String("prefix", cfg.Discord.CommandPrefix), zap.Bool("http", cfg.App.HTTPEnabled))
	waitForShutdown(logger)

	if app != nil {
		_ = app.Shutdown()
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
