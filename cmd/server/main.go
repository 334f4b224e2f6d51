package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"katalogtoko/backend/internal/cache"
	"katalogtoko/backend/internal/config"
	"katalogtoko/backend/internal/domain"
	"katalogtoko/backend/internal/httpapi"
	"katalogtoko/backend/internal/service"
	"katalogtoko/backend/internal/store"
	"katalogtoko/backend/internal/store/memory"
	pgstore "katalogtoko/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		} else {
			repo = pg
			closers = append(closers, pg.Close)
			log.Println("repository: postgres")
		}
	} else {
		repo = memory.NewSeeded()
		log.Println("repository: in-memory")
	}

	vendorCache := cache.VendorCache(cache.NoopVendorCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisVendorCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			vendorCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("cache: redis")
		}
	} else {
		log.Println("cache: noop")
	}

	svc := service.New(repo, vendorCache, time.Duration(cfg.VendorCacheTTLSeconds)*time.Second, cfg.DefaultBranch)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	scheduler := startRepairScheduler(svc, cfg.RepairCronSpec)
	if scheduler != nil {
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("catalog backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

// startRepairScheduler runs the order-total repair job on the given cron
// spec. An empty spec disables scheduling; the job stays reachable through
// the repair endpoint either way.
func startRepairScheduler(svc *service.Service, spec string) *cron.Cron {
	if spec == "" {
		return nil
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(spec, func() {
		jobCtx, jobCancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer jobCancel()
		jobCtx = service.WithActor(jobCtx, domain.Actor{Username: "scheduler", Role: "admin"})

		report, err := svc.RepairOrderTotals(jobCtx)
		if err != nil {
			log.Printf("scheduled repair failed: %v", err)
			return
		}
		log.Printf("scheduled repair: examined=%d updated=%d failed=%d", report.OrdersExamined, report.OrdersUpdated, len(report.Failures))
	})
	if err != nil {
		log.Fatalf("invalid REPAIR_CRON_SPEC %q: %v", spec, err)
	}

	scheduler.Start()
	log.Printf("repair scheduler: %s", spec)
	return scheduler
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	return nil
}
