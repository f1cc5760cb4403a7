package botapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/config"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/directory"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/infra/httpclient"
	s3infra "github.com/sourcery-ai-bot/vkinder-bot/internal/infra/s3"
	tginfra "github.com/sourcery-ai-bot/vkinder-bot/internal/infra/telegram"
	pgrepo "github.com/sourcery-ai-bot/vkinder-bot/internal/repo/postgres"
	redrepo "github.com/sourcery-ai-bot/vkinder-bot/internal/repo/redis"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/services/dialog"
	mediasvc "github.com/sourcery-ai-bot/vkinder-bot/internal/services/media"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/services/roster"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/services/sessions"
)

type App struct {
	cfg    config.Config
	logger *zap.Logger

	postgres *pgxpool.Pool
	redis    *goredis.Client
	bot      *tginfra.Client
	registry *sessions.Registry

	opsServer *http.Server
}

func New(ctx context.Context, cfg config.Config, cfgPath string, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if cfg.Storage.Rebuild {
		logger.Warn("storage rebuild requested, dropping all tables")
		if err := pgrepo.ResetSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("rebuild storage: %w", err)
		}
		if err := config.PersistRebuildFlag(cfgPath, false); err != nil {
			logger.Warn("persist rebuild flag failed", zap.Error(err))
		}
	} else if err := pgrepo.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	geoCache := redrepo.NewGeoCacheRepo(redisClient, cfg.Redis.CountryTTL, logger)

	gateway, err := directory.NewClient(directory.Config{
		BaseURL:         cfg.Directory.BaseURL,
		Token:           cfg.Directory.Token,
		Version:         cfg.Directory.Version,
		RequestInterval: cfg.Directory.RequestInterval,
	}, httpclient.New(cfg.Directory.HTTPTimeout), geoCache, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init directory gateway: %w", err)
	}

	store := roster.NewService(roster.Dependencies{
		Operators:  pgrepo.NewOperatorRepo(pool),
		Searches:   pgrepo.NewSearchRepo(pool),
		Candidates: pgrepo.NewCandidateRepo(pool),
		Ratings:    pgrepo.NewRatingRepo(pool),
		Photos:     pgrepo.NewPhotoRepo(pool),
		Logger:     logger,
	})

	var archiver dialog.Archiver
	if strings.TrimSpace(cfg.S3.Endpoint) != "" {
		s3Client, err := s3infra.NewClient(s3infra.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init s3: %w", err)
		}
		storage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
		archiver = mediasvc.NewArchiver(storage, nil, logger)
	} else {
		logger.Info("s3 endpoint is empty, photo archiving disabled")
	}

	engine := dialog.NewEngine(dialog.Dependencies{
		Gateway:  gateway,
		Store:    store,
		Archiver: archiver,
		Logger:   logger,
	}, dialog.Config{PhotoCount: cfg.Dialogue.PhotoCount})

	registry := sessions.NewRegistry(sessions.Dependencies{
		Engine:  engine,
		Gateway: gateway,
		Store:   store,
		Logger:  logger,
	}, sessions.Config{IdleTimeout: cfg.Dialogue.IdleTimeout})

	app := &App{
		cfg:      cfg,
		logger:   logger,
		postgres: pool,
		redis:    redisClient,
		registry: registry,
	}

	bot, err := tginfra.NewClient(cfg.Bot.Token, cfg.Bot.PollTimeout, logger, app.handleUpdate)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init telegram client: %w", err)
	}
	app.bot = bot

	app.opsServer = &http.Server{
		Addr:         cfg.Ops.Addr,
		Handler:      app.routes(),
		ReadTimeout:  cfg.Ops.ReadTimeout,
		WriteTimeout: cfg.Ops.WriteTimeout,
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("bot app started")

	errCh := make(chan error, 2)
	go func() {
		err := a.opsServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()
	go func() {
		errCh <- a.bot.Start(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("bot app stopped")
			return nil
		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}
	}
}

func (a *App) Close() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Ops.WriteTimeout)
	defer cancel()
	_ = a.opsServer.Shutdown(shutdownCtx)

	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
}

// handleUpdate routes one long-poll update into the session registry and
// delivers every outbound message the turn produced.
func (a *App) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}

	operatorID := strconv.FormatInt(update.Message.From.ID, 10)
	chatID := update.Message.Chat.ID

	for _, out := range a.registry.HandleInbound(ctx, operatorID, text) {
		if err := a.bot.Deliver(ctx, chatID, out); err != nil {
			a.logger.Error("deliver message failed",
				zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
	}
}
