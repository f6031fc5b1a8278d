package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"canteen-system/internal/auth"
	"canteen-system/internal/config"
	"canteen-system/internal/database"
	"canteen-system/internal/logger"
	"canteen-system/internal/messaging"
	"canteen-system/internal/metrics"
	"canteen-system/internal/services/menu"
	"canteen-system/internal/services/notification"
	"canteen-system/internal/services/order"
	"canteen-system/internal/services/slot"
	"canteen-system/internal/services/store"
	"canteen-system/internal/services/tracking"
)

func main() {
	var (
		mode       = flag.String("mode", "", "Service mode (order-service, tracking-service, notification-subscriber)")
		port       = flag.Int("port", 3000, "HTTP port")
		configPath = flag.String("config", "config.yaml", "Path to config file")
		prefetch   = flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode": *mode,
		"port": *port,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	switch *mode {
	case "order-service":
		err = runOrderService(ctx, cfg, log, *port)
	case "tracking-service":
		err = runTrackingService(ctx, cfg, log, *port, *prefetch)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log, *prefetch)
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runOrderService runs the write-side API: menu, slots, checkout admission,
// staff transitions, and the store gate.
func runOrderService(ctx context.Context, cfg *config.Config, log *logger.Logger, port int) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	publisher := messaging.NewPublisher(conn, log)

	orderService := order.NewService(db, publisher, log, cfg.Slots)
	orderHandler := order.NewHandler(orderService, log)
	menuHandler := menu.NewHandler(menu.NewService(db), log)
	slotHandler := slot.NewHandler(slot.NewService(db, cfg.Slots), log)
	storeHandler := store.NewHandler(store.NewService(db), log)

	secret := []byte(cfg.Auth.JWTSecret)

	r := chi.NewRouter()
	r.Get("/health", orderHandler.HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(secret))

		menuHandler.Routes(r)
		slotHandler.Routes(r)
		storeHandler.Routes(r)
		orderHandler.Routes(r)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			menuHandler.AdminRoutes(r)
			storeHandler.AdminRoutes(r)
			orderHandler.AdminRoutes(r)
		})
	})

	return serveHTTP(ctx, log, requestID, "Order Service", port, r)
}

// runTrackingService runs the read side: order feeds and the websocket
// live projection fed by the order_events queue.
func runTrackingService(ctx context.Context, cfg *config.Config, log *logger.Logger, port, prefetch int) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	hub := tracking.NewHub(log)
	go hub.Run()

	consumer := messaging.NewConsumer(conn, log, messaging.TrackingQueue, "tracking-service", prefetch)
	feed := tracking.NewFeed(consumer, hub, log)
	defer feed.Close()
	go func() {
		if err := feed.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("consumer_failed", "Order event feed failed", requestID, err, nil)
		}
	}()

	trackingService := tracking.NewService(db, log)
	trackingHandler := tracking.NewHandler(trackingService, hub, log)

	secret := []byte(cfg.Auth.JWTSecret)

	r := chi.NewRouter()
	r.Get("/health", trackingHandler.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(secret))

		trackingHandler.Routes(r)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			trackingHandler.AdminRoutes(r)
		})
	})

	return serveHTTP(ctx, log, requestID, "Tracking Service", port, r)
}

// runNotificationSubscriber consumes the notifications fanout and renders
// pickup-counter display lines.
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber", prefetch)
	subscriber := notification.NewSubscriber(consumer, log)
	defer subscriber.Close()

	return subscriber.Start(ctx)
}

func serveHTTP(ctx context.Context, log *logger.Logger, requestID, name string, port int, handler http.Handler) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	go func() {
		log.Info("service_started", fmt.Sprintf("%s started on port %d", name, port), requestID, map[string]interface{}{
			"port": port,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server_failed", "HTTP server failed", requestID, err, nil)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}
