package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/patrickassako/triomphe-immobilier/cache"
	"github.com/patrickassako/triomphe-immobilier/config"
	"github.com/patrickassako/triomphe-immobilier/logging"
	"github.com/patrickassako/triomphe-immobilier/scheduler"
	"github.com/patrickassako/triomphe-immobilier/server"
	"github.com/patrickassako/triomphe-immobilier/services"
	"github.com/patrickassako/triomphe-immobilier/storage"
	"github.com/patrickassako/triomphe-immobilier/workers"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("api.log", logging.DefaultMaxSize)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting triomphe-immobilier API...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer store.Close()
	log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Database.URL))

	auditStore, err := storage.NewAuditStore(cfg.AuditPath)
	if err != nil {
		log.Fatalf("Failed to open audit database: %v", err)
	}
	defer auditStore.Close()
	log.Printf("Audit database: %s", cfg.AuditPath)

	resultCache := cache.NewTTL(cfg.Cache.TTL, nil)
	// The featured cache keeps expired entries so the home page can fall back
	// to a stale strip when the backend is down.
	featuredCache := cache.NewStaleTTL(cfg.Cache.TTL, nil)

	auditService := services.NewAuditService(auditStore, "admin")
	listingService := services.NewListingService(store, resultCache, featuredCache, auditService)
	favoriteService := services.NewFavoriteService(store, cfg.Features.SharesCounter)
	contactService := services.NewContactService(store, auditService)
	userService := services.NewUserService(store, auditService)
	activityService := services.NewActivityService(store)
	analyticsService := services.NewAnalyticsService(store)
	log.Println("Services initialized")

	// Mirror worker only runs when a bucket is configured; without one the
	// site serves the original image URLs.
	if cfg.S3.Bucket != "" {
		uploader, err := storage.NewS3Uploader(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("Failed to init S3 uploader: %v", err)
		}
		mirrorWorker := workers.NewMirrorWorker(store, uploader)
		go mirrorWorker.Run(ctx, 20, 2*time.Minute)
		log.Println("Mirror worker started")
	}

	janitor := workers.NewJanitor(resultCache, featuredCache)
	go janitor.Run(ctx, cfg.Cache.SweepInterval)

	sched := scheduler.New(cfg, store)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	srv := server.New(
		listingService,
		favoriteService,
		contactService,
		userService,
		activityService,
		analyticsService,
		auditService,
		store,
	)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Router(),
	}

	go func() {
		log.Printf("Listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: shutdown: %v", err)
	}

	cancel()
	log.Println("Goodbye")
}

// maskConnectionString hides the password in a postgres URL for logs.
func maskConnectionString(conn string) string {
	at := strings.LastIndex(conn, "@")
	if at < 0 {
		return conn
	}
	proto := strings.Index(conn, "://")
	if proto < 0 {
		return conn
	}
	creds := conn[proto+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		creds = creds[:colon] + ":****"
	}
	return conn[:proto+3] + creds + conn[at:]
}
