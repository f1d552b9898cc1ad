// Package main is the entry point for the support desk server: it wires the
// SQLite store, the Telegram bot, the notifier, and the HTTP API together
// and runs until interrupted.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	telebot "gopkg.in/telebot.v3"

	supportbot "supportdesk/internal/bot"
	"supportdesk/internal/config"
	httpapi "supportdesk/internal/http"
	"supportdesk/internal/logsink"
	"supportdesk/internal/notify"
	"supportdesk/internal/observability"
	"supportdesk/internal/repo"
	"supportdesk/internal/services"
	"supportdesk/internal/sysutil"
)

const version = "1.0.0"

// @title       Support Desk API
// @version     1.0
// @description Telegram customer-support ticketing service.
// @BasePath    /api
func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	sysutil.SetLogLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// mirror warn+ server logs into the logs table for the WebApp viewer
	sinkLevel, err := zerolog.ParseLevel(cfg.LogSinkLevel)
	if err != nil {
		sinkLevel = zerolog.WarnLevel
	}
	sink := logsink.New(db, sinkLevel)
	log.Logger = log.Logger.Hook(sink)
	defer sink.Close()

	shutdownOTel, err := observability.SetupOTel(context.Background(), cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(ctx); err != nil {
			log.Error().Err(err).Msg("tracing shutdown failed")
		}
	}()

	// The bot runs in webhook mode: no poller, updates arrive via POST
	// /webhook and are fed through ProcessUpdate.
	tgBot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Telegram.BotToken,
		Client: &http.Client{Timeout: cfg.Telegram.SendTimeout},
		OnError: func(err error, c telebot.Context) {
			log.Error().Err(err).Msg("bot handler error")
		},
	})
	if err != nil {
		// keep the HTTP API alive even when Telegram is unreachable
		log.Error().Err(err).Msg("failed to start Telegram bot; notifications disabled")
		tgBot = nil
	}

	var sender notify.Sender
	if tgBot != nil {
		sender = tgBot
	}
	notifier := notify.NewNotifier(sender, cfg)

	ticketSvc := services.NewRequestService(db)
	router := supportbot.NewRouter(tgBot, ticketSvc, notifier, cfg.Telegram.AdminGroupID, cfg.WebAppBaseURL)
	if tgBot != nil {
		router.Register()

		if cfg.Telegram.WebhookURL != "" {
			if _, err := tgBot.Raw("setWebhook", map[string]string{"url": cfg.Telegram.WebhookURL}); err != nil {
				log.Error().Err(err).Str("url", cfg.Telegram.WebhookURL).Msg("failed to register webhook")
			} else {
				log.Info().Str("url", cfg.Telegram.WebhookURL).Msg("webhook registered")
			}
		}
	}

	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, tgBot, notifier, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	if tgBot != nil && cfg.Telegram.WebhookURL != "" {
		if _, err := tgBot.Raw("deleteWebhook", map[string]string{}); err != nil {
			log.Warn().Err(err).Msg("failed to deregister webhook")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}

	log.Info().Msg("server exited")
}
