package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio_backend/internals/configs"
	database "portfolio_backend/internals/databases"
	"portfolio_backend/internals/features/deps"
	"portfolio_backend/internals/helpers/dispatch"
	"portfolio_backend/internals/helpers/mailer"
	"portfolio_backend/internals/helpers/oss"
	"portfolio_backend/internals/middlewares"
	"portfolio_backend/internals/middlewares/auth"
	"portfolio_backend/internals/middlewares/ratestore"
	routes "portfolio_backend/internals/route"
	"portfolio_backend/internals/seeds"

	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg := configs.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] invalid configuration: %v", err)
	}

	// 🔌 DB connect + pool + schema
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	database.TunePool(db)
	if err := database.Migrate(db, routes.Models()...); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	if cfg.SeedDir != "" {
		if err := seeds.RunAllSeeds(context.Background(), db, cfg.SeedDir); err != nil {
			log.Fatalf("[FATAL] seed: %v", err)
		}
	}

	storage := newStorage(cfg)
	janitor := oss.NewJanitor(storage)
	if err := janitor.Start(cfg.JanitorSchedule); err != nil {
		log.Fatalf("[FATAL] janitor: %v", err)
	}

	dispatcher := dispatch.New(cfg.DispatchWorkers, cfg.DispatchQueue, 30*time.Second)
	rateStore := newRateStore(cfg)

	d := &deps.Deps{
		DB:           db,
		Config:       cfg,
		Storage:      storage,
		Janitor:      janitor,
		Dispatcher:   dispatcher,
		Mailer:       newMailer(cfg),
		RateStore:    rateStore,
		RequireAdmin: auth.RequireAdmin(cfg.JWTSecret),
		Upload:       middlewares.UploadGuard(middlewares.DefaultUploadPolicy(cfg.MaxFileSize, cfg.MaxFiles)),
	}
	app := routes.NewApp(d)

	// Start server non-blocking
	go func() {
		log.Printf("[INFO] listening on :%s (storage=%s)", cfg.Port, storage.Name())
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatalf("[FATAL] server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[INFO] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	if err := dispatcher.Shutdown(ctx); err != nil {
		log.Printf("[WARN] dispatcher shutdown: %v", err)
	}
	janitor.Stop()
	if c, ok := rateStore.(io.Closer); ok {
		_ = c.Close()
	}
	database.Close(db)
}

func newStorage(cfg *configs.Config) oss.Storage {
	if cfg.OSSEnabled() {
		s, err := oss.NewOSSStorage(oss.OSSConfig{
			Endpoint:   cfg.OSSEndpoint,
			AccessKey:  cfg.OSSAccessKey,
			SecretKey:  cfg.OSSSecretKey,
			Bucket:     cfg.OSSBucket,
			PublicBase: cfg.OSSPublicBase,
		})
		if err == nil {
			return s
		}
		log.Printf("[WARN] OSS unavailable, falling back to local storage: %v", err)
	}
	s, err := oss.NewLocalStorage(cfg.UploadDir, routes.UploadsPrefix)
	if err != nil {
		log.Fatalf("[FATAL] local storage: %v", err)
	}
	return s
}

func newMailer(cfg *configs.Config) mailer.Mailer {
	if !cfg.SMTPEnabled() {
		log.Println("[INFO] SMTP not configured, outgoing mail is logged only")
		return mailer.LogMailer{}
	}
	m, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if err != nil {
		log.Printf("[WARN] SMTP mailer: %v, outgoing mail is logged only", err)
		return mailer.LogMailer{}
	}
	return m
}

func newRateStore(cfg *configs.Config) fiber.Storage {
	if cfg.RateLimitRedisURL != "" {
		r, err := ratestore.NewRedis(cfg.RateLimitRedisURL, "portfolio:ratelimit:")
		if err == nil {
			return r
		}
		log.Printf("[WARN] redis rate store unavailable, using memory: %v", err)
	}
	return ratestore.NewMemory(time.Minute)
}
