package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Richetti123/CashFlow/internal/ai"
	"github.com/Richetti123/CashFlow/internal/bot"
	"github.com/Richetti123/CashFlow/internal/config"
	"github.com/Richetti123/CashFlow/internal/db"
	"github.com/Richetti123/CashFlow/internal/store"
	"github.com/Richetti123/CashFlow/internal/store/jsonfile"
	"github.com/Richetti123/CashFlow/internal/store/postgres"
)

func main() {
	cfg := config.MustLoad()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		ledger    store.Ledger
		users     store.UserStates
		derivados store.Derivados
	)

	if cfg.DatabaseURL != "" {
		pool := db.MustConnect(ctx, cfg.DatabaseURL)
		defer pool.Close()
		if err := db.ApplyMigrations(ctx, pool, "./migrations"); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		ledger = postgres.NewLedger(pool)
		users = postgres.NewUserStates(pool)
		derivados = postgres.NewDerivados(pool)
		log.Println("almacenamiento: postgres")
	} else {
		var err error
		if ledger, err = jsonfile.NewLedger(cfg.DataDir); err != nil {
			log.Fatalf("ledger: %v", err)
		}
		if users, err = jsonfile.NewUserStates(cfg.DataDir); err != nil {
			log.Fatalf("user states: %v", err)
		}
		if derivados, err = jsonfile.NewDerivados(cfg.DataDir); err != nil {
			log.Fatalf("derivados: %v", err)
		}
		log.Printf("almacenamiento: jsonfile en %s", cfg.DataDir)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("bot init: %v", err)
	}
	botAPI.Debug = false

	responder := ai.NewClient(cfg.AIAPIURL)
	h := bot.NewHandler(botAPI, cfg, ledger, users, derivados, responder)

	// Graceful shutdown: stop taking updates, let in-flight handling finish
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	// Reminder scan: once at startup, then on the configured cadence
	go h.RunReminderWorker(ctx, cfg.ReminderInterval)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botAPI.GetUpdatesChan(u)

	log.Printf("CashFlow iniciado como @%s", botAPI.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			log.Println("shutdown")
			return
		case upd := <-updates:
			h.HandleUpdate(ctx, upd)
		}
	}
}
