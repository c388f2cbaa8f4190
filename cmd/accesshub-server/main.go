package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/service"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store/memory"
	sqlitestore "github.com/BrandonDHaskell/accesshub/internal/accesshub/store/sqlite"
	"github.com/BrandonDHaskell/accesshub/internal/auth"
	"github.com/BrandonDHaskell/accesshub/internal/config"
	"github.com/BrandonDHaskell/accesshub/internal/db"
	"github.com/BrandonDHaskell/accesshub/internal/grpchealth"
	"github.com/BrandonDHaskell/accesshub/internal/httpapi"
	"github.com/BrandonDHaskell/accesshub/internal/metrics"
)

func main() {
	logger := log.New(os.Stdout, "accesshub-server ", log.LstdFlags|log.LUTC)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores
	var (
		stores store.Stores
		conn   *sql.DB
		writer *db.Worker
	)
	switch cfg.Store {
	case "memory":
		logger.Printf("using in-memory store; data is lost on exit")
		stores = memory.New().Stores()
	default:
		conn, err = db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
		if err != nil {
			logger.Fatalf("db: %v", err)
		}
		defer conn.Close()

		writer = db.NewWorker(conn)
		defer writer.Close()

		if cfg.SeedDev {
			if err := db.SeedDev(ctx, conn, db.SeedDevOptions{}); err != nil {
				logger.Fatalf("seed dev: %v", err)
			}
			logger.Printf("WARNING: dev fixtures seeded with a well-known password (admin %s, customer %s); unset ACCESSHUB_SEED_DEV outside development",
				db.DevAdminEmail, db.DevCustomerEmail)
		}
		stores = sqlitestore.NewStores(conn, writer)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret, err = auth.NewSecret(32)
		if err != nil {
			logger.Fatalf("session secret: %v", err)
		}
		logger.Printf("ACCESSHUB_JWT_SECRET not set; sessions will not survive a restart")
	}

	m := metrics.New()

	// Services
	deps := service.Deps{
		Stores:   stores,
		Location: cfg.Location(),
		Logger:   logger,
	}
	authSvc := service.NewAuthService(deps, auth.NewTokenIssuer([]byte(secret), cfg.SessionTTL), service.AuthConfig{
		ResetPasswordTTL: cfg.ResetPasswordTTL,
		PublicBaseURL:    cfg.PublicBaseURL,
	})

	pruner := service.NewHeartbeatPruner(stores.Heartbeats, service.PrunerConfig{
		RetentionDays: cfg.HeartbeatRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
		OnPrune:       m.HeartbeatsPruned,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	ready := func(ctx context.Context) error {
		if conn == nil {
			return nil
		}
		return conn.PingContext(ctx)
	}

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:             logger,
		Addr:               cfg.HTTPAddr,
		Metrics:            m,
		Auth:               authSvc,
		Hubs:               service.NewHubService(deps),
		Points:             service.NewPointService(deps),
		AccessUsers:        service.NewAccessUserService(deps),
		Dashboard:          service.NewDashboardService(deps),
		Admin:              service.NewAdminService(deps),
		Devices:            service.NewDeviceService(deps),
		LoginRatePerMinute: cfg.LoginRatePerMin,
		SecureCookies:      cfg.Env == "prod",
		Ready:              ready,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	// gRPC health
	var health *grpchealth.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatalf("grpc listen: %v", err)
		}
		health = grpchealth.New(grpchealth.Config{Check: ready}, logger)
		health.Probe(ctx)
		go func() {
			logger.Printf("grpc health on %s", cfg.GRPCAddr)
			if err := health.Serve(lis); err != nil {
				logger.Printf("grpc error: %v", err)
				stop()
			}
		}()
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if health != nil {
		health.Stop(shutdownCtx)
	}
	_ = srv.Shutdown(shutdownCtx)
}
