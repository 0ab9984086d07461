package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tenantgate.org/internal/auth"
	"tenantgate.org/internal/bootstrap"
	"tenantgate.org/internal/config"
	"tenantgate.org/internal/httpapi"
	"tenantgate.org/internal/obs"
	"tenantgate.org/internal/store"
	"tenantgate.org/internal/tenant"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load(os.Getenv("TENANTGATE_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	registry, err := tenant.NewRegistry(cfg.Tenants)
	if err != nil {
		log.Fatalf("build tenant registry: %v", err)
	}

	// Every configured tenant database must be reachable before the server
	// accepts traffic.
	openCtx, cancelOpen := context.WithTimeout(context.Background(), 30*time.Second)
	router, err := store.Open(openCtx, registry)
	cancelOpen()
	if err != nil {
		log.Fatalf("open tenant databases: %v", err)
	}

	users := auth.NewPGUserStore(router)

	tokens, err := auth.NewTokenProvider(cfg.Auth.Secret,
		auth.WithIssuer(cfg.Auth.Issuer),
		auth.WithTokenTTL(cfg.Auth.TokenTTL.Std()),
	)
	if err != nil {
		log.Fatalf("build token provider: %v", err)
	}

	authSvc := auth.NewService(users, tokens, registry)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := bootstrap.Seed(seedCtx, users, registry, cfg.Bootstrap); err != nil {
		log.Printf("bootstrap: %v", err)
	}
	cancelSeed()

	api := httpapi.New(authSvc, httpapi.ReadyProbe{Router: router}, version)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout.Std(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout.Std(),
		WriteTimeout:      cfg.Server.WriteTimeout.Std(),
		IdleTimeout:       cfg.Server.IdleTimeout.Std(),
	}

	log.Printf("Starting tenantgate-api %s on %s (tenants: %d)", version, srv.Addr, registry.Len())

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = router.Close()
	log.Println("Stopped")
}
