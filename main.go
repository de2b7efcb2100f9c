package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "railbook/internal/config"
	"railbook/internal/clients"
	"railbook/internal/db"
	router "railbook/internal/http"
	"railbook/internal/http/handlers"
	"railbook/internal/notify"
	"railbook/internal/repositories"
	"railbook/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if err := env.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	sqlDB, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		log.Fatalf("database unavailable: %v", err)
	}
	defer intconfig.CloseDB()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx, sqlDB); err != nil {
		cancelMigrate()
		log.Fatalf("migrate schema: %v", err)
	}
	cancelMigrate()

	var publisher services.Publisher = notify.LogPublisher{}
	if env.RedisAddr != "" {
		rdb, err := intconfig.ConnectRedis(context.Background(), env)
		if err != nil {
			log.Printf("warning: %v, ticket events will only be logged", err)
			_ = rdb.Close()
		} else {
			defer rdb.Close()
			publisher = notify.NewRedisPublisher(rdb, env.QueuePrefix, env.NotifyQueue)
		}
	}

	trainRepo := repositories.TrainRepo{DB: sqlDB}
	seatRepo := repositories.SeatBookingRepo{DB: sqlDB}
	ticketRepo := repositories.TicketRepo{DB: sqlDB}

	ledger := services.SeatLedger{Trains: trainRepo, Bookings: seatRepo}
	alloc := services.AllocationService{
		Trains:      trainRepo,
		Ledger:      ledger,
		MaxAttempts: env.AllocMaxAttempts,
		MaxSeats:    env.MaxSeatsPerBooking,
	}
	tickets := services.TicketService{
		Tickets:        ticketRepo,
		Trains:         trainRepo,
		Allocator:      alloc,
		Seats:          ledger,
		Payments:       clients.NewPaymentClient(env.PaymentBaseURL, env.PaymentTimeout),
		Notifier:       publisher,
		PaymentTimeout: env.PaymentTimeout,
	}

	hd := handlers.Handler{
		Allocator: alloc,
		Ledger:    ledger,
		Tickets:   tickets,
		Docs:      services.DocsService{Tickets: ticketRepo},
		Configs:   services.SeatConfigService{Trains: trainRepo},
		Trains:    services.TrainService{Trains: trainRepo},
		Schema: func(ctx context.Context) ([]string, error) {
			if err := intconfig.PingDB(ctx); err != nil {
				return nil, err
			}
			return db.MissingTables(ctx, sqlDB)
		},
	}

	r := router.NewRouter(env, hd)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("railbook listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
