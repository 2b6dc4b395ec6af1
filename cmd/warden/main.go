package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guildwarden/internal/ai"
	"guildwarden/internal/bot"
	"guildwarden/internal/config"
	"guildwarden/internal/guildconfig"
	"guildwarden/internal/prompts"
	"guildwarden/internal/storage"
	"guildwarden/internal/warnings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	gateway, err := storage.NewGateway(cfg.DataDir, logger)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}

	configStore := guildconfig.NewStore(guildconfig.Defaults{
		SpamTimeoutMinutes:  cfg.Timeouts.SpamMinutes,
		CurseTimeoutMinutes: cfg.Timeouts.CurseMinutes,
	}, gateway)
	configStore.Restore(gateway.LoadGuildConfigs(), gateway.LoadSupportRoles(), gateway.LoadVerifyRoles())

	ledger := warnings.NewLedger(gateway)
	ledger.Restore(gateway.LoadWarnings())

	promptStore := prompts.NewStore(gateway)
	promptStore.Restore(gateway.LoadPrompts())

	var providers []ai.Provider
	if cfg.OpenAIKey != "" {
		providers = append(providers, ai.NewOpenAI(cfg.OpenAIKey))
	}
	if cfg.GeminiKey != "" {
		gemini, err := ai.NewGemini(context.Background(), cfg.GeminiKey)
		if err != nil {
			logger.Warn("gemini init failed", zap.Error(err))
		} else {
			defer gemini.Close()
			providers = append(providers, gemini)
		}
	}
	aiChain := ai.NewChain(logger, providers...)

	botSvc, err := bot.New(cfg, logger, gateway, configStore, ledger, promptStore, aiChain)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")

	var server *http.Server
	if cfg.Health.Enabled {
		server = &http.Server{Addr: cfg.Health.Addr}
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		go func() {
			logger.Info("health endpoint enabled", zap.String("addr", cfg.Health.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server != nil {
		_ = server.Shutdown(ctx)
	}
	botSvc.Close(ctx)
}
