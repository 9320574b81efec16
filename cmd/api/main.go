package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"frontdesk/api/internal/app"
	"frontdesk/api/internal/config"
	"frontdesk/api/internal/media"
	"frontdesk/api/internal/search"
	"frontdesk/api/internal/session"
	"frontdesk/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var gateway store.Gateway
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		log.Printf("Using Postgres for snapshot storage")
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()
		pg := store.NewPostgresGateway(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("schema setup failed: %v", err)
		}
		gateway = pg
	} else {
		log.Printf("Using file snapshot storage at %s", cfg.DataFile)
		fileGateway, err := store.NewFileGateway(cfg.DataFile)
		if err != nil {
			log.Fatalf("snapshot file setup failed: %v", err)
		}
		gateway = fileGateway
	}

	var tokens session.TokenStore
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for supervisor token storage")
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		tokens = redisStore
	} else {
		tokens = session.NewMemoryStore()
	}

	guard, err := session.NewGuard(cfg.SupervisorPassword, cfg.TokenTTL, tokens)
	if err != nil {
		log.Fatalf("supervisor guard setup failed: %v", err)
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}

	service := app.New(ctx, cfg, guard, gateway, meiliClient)

	var mediaIssuer *media.Issuer
	if cfg.LiveKitAPIKey != "" && cfg.LiveKitAPISecret != "" {
		mediaIssuer = media.NewIssuer(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret)
	}

	httpServer := app.NewHTTPServer(service, mediaIssuer, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Frontdesk API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
