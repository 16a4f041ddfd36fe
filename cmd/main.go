package main

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"binary_joke_bot/internal/config"
	"binary_joke_bot/internal/infrastructure"
	"binary_joke_bot/internal/interfaces/http"
	"binary_joke_bot/internal/usecases"
)

func main() {
	// A missing .env is fine; the variables may come from the environment.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("no .env file loaded", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("bot stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := infrastructure.RouteTelegramLogs(logger.With("component", "tgbotapi")); err != nil {
		return err
	}

	var tracer *infrastructure.LangSmithTracer
	if cfg.TracingEnabled {
		tracer = infrastructure.NewLangSmithTracer(cfg, logger.With("component", "langsmith"))
		defer tracer.Wait()
	}

	groqClient, err := infrastructure.NewGroqClient(cfg, tracer, logger.With("component", "groq"))
	if err != nil {
		return err
	}

	telegramBot, err := infrastructure.NewTelegramBot(cfg.TelegramAPIKey, cfg.TelegramDebug, logger.With("component", "telegram"))
	if err != nil {
		return err
	}
	logger.Info("telegram bot connected", "bot", "@"+telegramBot.Handle())

	messageService := usecases.NewMessageService(groqClient, telegramBot, logger.With("component", "messages"))
	telegramBot.HandleCommand("start", messageService.Start)
	telegramBot.HandleCommand("help", messageService.Help)
	telegramBot.HandleText(messageService.HandleMessage)

	if cfg.HTTPAddr != "" {
		srv := newHTTPServer(cfg, groqClient, telegramBot.Handle(), logger.With("component", "http"))
		go func() {
			logger.Info("http server listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				logger.Error("http server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	return telegramBot.Run(ctx)
}

func newHTTPServer(cfg config.Config, jokes *infrastructure.GroqClient, botHandle string, logger *slog.Logger) *nethttp.Server {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	var middleware *http.Middleware
	if cfg.JWTSecret != "" {
		middleware = http.NewMiddleware(cfg.JWTSecret, logger)
	} else {
		logger.Warn("JWT_SECRET not set, /api routes disabled")
	}
	http.SetupRoutes(r, http.NewHandler(jokes, botHandle, logger), middleware)

	return &nethttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
