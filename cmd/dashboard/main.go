package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gunvolt24/wb_storefront/config"
	"github.com/Gunvolt24/wb_storefront/internal/app"
	"github.com/joho/godotenv"
)

// Консольная оболочка ядра витрины: поднимает подсистемы, при настроенных
// demo-учётных данных логинится, монтирует вьюху, печатает ленту уведомлений
// и живёт до SIGINT/SIGTERM.
func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appl, cleanup, err := app.Bootstrap(ctx, &cfg)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	if cfg.Demo.Email != "" {
		if err := demoLogin(ctx, appl, cfg); err != nil {
			appl.Logger.Warnf(ctx, "demo login failed: %v", err)
		}
	}

	go printFeed(ctx, appl)

	// graceful shutdown
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	if err := appl.Run(ctx); err != nil {
		appl.Logger.Errorf(ctx, "run failed: %v", err)
	}
}

// demoLogin — вход через REST имитатора; токен и идентичность уходят в сессию.
func demoLogin(ctx context.Context, appl *app.App, cfg config.Config) error {
	body, _ := json.Marshal(map[string]string{
		"email":    cfg.Demo.Email,
		"password": cfg.Demo.Password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cfg.API.BaseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := (&http.Client{Timeout: cfg.API.Timeout}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Token string `json:"token"`
			User  struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("login rejected: %s", env.Message)
	}

	appl.Session.Login(env.Data.User.ID, env.Data.Token, env.Data.User.Name)
	appl.Logger.Infof(ctx, "logged in as %s", cfg.Demo.Email)
	return nil
}

// printFeed — выводит новые уведомления в stdout раз в полсекунды.
func printFeed(ctx context.Context, appl *app.App) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	seen := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		entries := appl.Notifications.Entries()
		for ; seen < len(entries); seen++ {
			e := entries[seen]
			fmt.Printf("[%s] %s %s\n", e.At.Format("15:04:05"), e.Level, e.Message)
		}
	}
}
