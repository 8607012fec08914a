package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"shopbot/internal/bot"
	"shopbot/internal/config"
	"shopbot/internal/dashboard"
	"shopbot/internal/gateway"
	"shopbot/internal/notify"
	"shopbot/internal/shop"
	"shopbot/internal/store"
	"shopbot/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.New(cfg.Data.Dir)
	gw := gateway.NewHTTPClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey)
	rates := gateway.NewRateClient(cfg.Prices.BaseURL)

	tracker := shop.NewTracker(st, gw, cfg.Gateway.PollInterval, cfg.Gateway.MaxAttempts)

	var notifier shop.Notifier
	if cfg.Email.SendGridKey != "" {
		notifier = notify.NewEmailNotifier(cfg.Email.SendGridKey, cfg.Email.From)
	}
	service := shop.NewService(st, tracker, notifier)

	b, err := bot.New(ctx, cfg.Bot, st, service, rates)
	if err != nil {
		log.Fatalf("create bot: %v", err)
	}
	if err := b.Open(); err != nil {
		log.Fatalf("connect to discord: %v", err)
	}
	defer b.Close()

	reconciler := worker.NewReconciliationWorker(st, gw, cfg.Gateway.ReconcileInterval, cfg.Gateway.ReconcileAfter)
	go reconciler.Run(ctx)

	if cfg.Dashboard.PasswordHash != "" && cfg.Dashboard.JWTSecret != "" {
		srv := dashboard.NewServer(cfg.Dashboard, st, service)
		go func() {
			log.Printf("dashboard listening on %s", cfg.Dashboard.Addr)
			if err := srv.Run(); err != nil {
				log.Printf("dashboard stopped: %v", err)
			}
		}()
	} else {
		log.Println("dashboard disabled: DASHBOARD_PASSWORD_HASH and DASHBOARD_JWT_SECRET not set")
	}

	log.Println("shop bot is running, press Ctrl+C to exit")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop

	log.Println("shutting down")
	cancel()
	tracker.CancelAll()
}
