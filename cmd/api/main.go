package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"deptbook/internal/audit"
	"deptbook/internal/config"
	"deptbook/internal/database"
	"deptbook/internal/modules/admin"
	"deptbook/internal/modules/booking"
	"deptbook/internal/modules/catalog"
	jwtsvc "deptbook/internal/pkg/jwt"
	"deptbook/internal/pkg/logger"
	"deptbook/internal/realtime"
	"deptbook/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logCloser, err := logger.Setup(logger.Options{File: cfg.LogFile})
	if err != nil {
		log.Fatal(err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, database.Options{})
	if err != nil {
		log.Fatal("DB connection failed: ", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resourceRepo := repository.NewResourceRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	dispatcher := audit.NewDispatcher(activityRepo, cfg.AuditBuffer)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	hub := realtime.NewHub()

	// booking and the fanout reference each other through the notifier, so
	// the fanout gets a late-bound status source.
	status := &lateStatus{}
	fanout := realtime.NewFanout(hub, status)

	var broker realtime.Broker = realtime.NewLocalBroker(fanout.HandleEvent)
	if cfg.RedisURL != "" {
		client, err := realtime.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()

		redisBroker := realtime.NewRedisBroker(client, realtime.DefaultChannel, fanout.HandleEvent)
		go func() {
			if err := redisBroker.Run(ctx); err != nil {
				log.Printf("redis broker stopped: %v", err)
			}
		}()
		broker = redisBroker
	}
	notifier := realtime.NewNotifier(broker)

	bookingService := booking.NewService(resourceRepo, reservationRepo, dispatcher, notifier, booking.Options{
		MaxAttempts:       cfg.TxMaxAttempts,
		RetryBackoff:      cfg.TxRetryBackoff,
		Location:          cfg.Location,
		TimelineStartHour: cfg.TimelineStartHour,
		TimelineEndHour:   cfg.TimelineEndHour,
	})
	status.svc = bookingService

	catalogService := catalog.NewService(resourceRepo)
	adminService := admin.NewService(activityRepo, resourceRepo, reservationRepo)

	refresh, err := realtime.StartStatusRefresh(fanout, cfg.StatusRefreshInterval)
	if err != nil {
		log.Fatal(err)
	}

	r := newRouter(db, routerDeps{
		jwt:            j,
		hub:            hub,
		booking:        bookingService,
		catalog:        catalogService,
		admin:          adminService,
		allowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if err := refresh.Shutdown(); err != nil {
		log.Printf("scheduler shutdown: %v", err)
	}
	notifier.Wait()
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Printf("audit drain: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

type lateStatus struct {
	svc *booking.Service
}

func (l *lateStatus) GetStatus(ctx context.Context, resourceID string, at time.Time) (*booking.StatusSnapshot, error) {
	return l.svc.GetStatus(ctx, resourceID, at)
}
