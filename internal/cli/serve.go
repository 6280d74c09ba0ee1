package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"imagestudio/internal/adapters/handler"
	"imagestudio/internal/adapters/identity"
	"imagestudio/internal/adapters/sender"
	"imagestudio/internal/adapters/store"
	"imagestudio/internal/config"
	"imagestudio/internal/core/domain/command"
	"imagestudio/internal/core/service"
	"imagestudio/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when configured, the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), a.cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log.Info().Msg("starting imagestudio...")

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  tracing.DefaultServiceName,
		OTLPEndpoint: cfg.Tracing.Endpoint,
		OTLPInsecure: cfg.Tracing.Insecure,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("error flushing traces")
		}
	}()

	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	history, closeStore, err := newRedisStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	if history == nil {
		log.Warn().Msg("redis not configured, history is kept in memory")
		history = store.NewMemory()
	}

	orchestrator := service.NewOrchestrator(gen, history, identity.ContextProvider{}, time.Now)
	historyService := service.NewHistoryService(history)

	var validator handler.TokenValidator
	if cfg.Auth.JWTSecret != "" {
		validator, err = identity.NewValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.Leeway)
		if err != nil {
			return err
		}
	} else {
		log.Warn().Msg("auth.jwt_secret not set, all requests are anonymous")
	}

	if cfg.LogLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := handler.NewEngine(handler.NewHTTP(orchestrator, historyService, cfg.Server.RequestTimeout), validator)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var b *bot.Bot
	if cfg.Telegram.BotToken != "" {
		b, err = newTelegramBot(cfg, orchestrator, historyService)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if b != nil {
		g.Go(func() error {
			log.Info().Msg("telegram bot listening")
			b.Start(gctx)
			return nil
		})
	}

	return g.Wait()
}

func newTelegramBot(cfg *config.Config, submitter service.Submitter, history *service.HistoryService) (*bot.Bot, error) {
	b, err := bot.New(cfg.Telegram.BotToken, bot.WithDefaultHandler(noOpHandler))
	if err != nil {
		return nil, err
	}

	s := sender.NewTelegram(b)

	auth, err := service.NewAuthorizer(s)
	if err != nil {
		return nil, err
	}

	registry := &command.Registry{}
	registry.Register(command.NewImage(service.NewSessions(submitter), s, s, auth, identity.NewContext, "/image"))
	registry.Register(command.NewModels(s, "/models"))
	registry.Register(command.NewHistory(history, s, auth, cfg.Telegram.HistoryLimit, "/history"))

	commandHandler := handler.NewCommand(registry, cfg.Server.RequestTimeout)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix, commandHandler.Handle)

	return b, nil
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}
