package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SignalSentinel/internal/backtest"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/marketdata"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/scheduler"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] SignalSentinel starting...")

	// .env first, so env overrides in config.Load see it
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	cutoffMinutes, err := cfg.CutoffMinutes()
	if err != nil {
		log.Fatalf("[FATAL] config cutoff: %v", err)
	}

	// Security-id hints for the primary provider
	ids, err := marketdata.LoadSecurityIDs(cfg.Dhan.SecurityIDsFile, cfg.Dhan.ExchangeSegment)
	if err != nil {
		log.Fatalf("[FATAL] load security ids: %v", err)
	}
	log.Printf("[INFO] %d security ids loaded", ids.Len())

	// Provider chain: broker-grade primary (when credentials exist), then
	// public secondary, in that order.
	var chain []marketdata.ChainEntry
	var primary *marketdata.DhanProvider
	if cfg.Dhan.ClientID != "" {
		creds := marketdata.Credentials{ClientID: cfg.Dhan.ClientID, AccessToken: cfg.Dhan.AccessToken}
		primary = marketdata.NewDhanProvider(cfg.Dhan.BaseURL, creds, cfg.Proxy)
		chain = append(chain, marketdata.ChainEntry{Provider: primary, Origin: model.OriginPrimary})
		log.Println("[INFO] primary provider: dhan")
	}
	if !cfg.Yahoo.Disabled {
		chain = append(chain, marketdata.ChainEntry{Provider: marketdata.NewYahooProvider(cfg.Proxy), Origin: model.OriginSecondary})
		log.Println("[INFO] secondary provider: yahoo")
	}
	resolver := marketdata.NewResolver(chain,
		marketdata.FallbackPolicy(cfg.Backtest.Fallback),
		time.Duration(cfg.Backtest.ProviderTimeoutSec)*time.Second)

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using in-memory: %v", err)
			rec = recorder.NewMemoryRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewMemoryRecorder()
	}

	// Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Batch runner
	runner := &backtest.Runner{
		Source:        resolver,
		Hints:         ids,
		Limiter:       backtest.NewLimiter(time.Duration(cfg.Backtest.CallDelayMs) * time.Millisecond),
		Recorder:      rec,
		CutoffMinutes: cutoffMinutes,
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Scheduler
	var primaryAPI scheduler.PrimaryAPI
	if primary != nil {
		primaryAPI = primary
	}
	sched := scheduler.NewScheduler(ctx, runner, rec, tn, primaryAPI, ids)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.VacuumCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing today's backtest now")
		go sched.RunTodayNow()
	}

	log.Println("[INFO] SignalSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] SignalSentinel stopped")
}
