package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/brewhub/brewhub/internal/auth"
	"github.com/brewhub/brewhub/internal/cart"
	"github.com/brewhub/brewhub/internal/catalog"
	"github.com/brewhub/brewhub/internal/messaging"
	"github.com/brewhub/brewhub/internal/notify"
	"github.com/brewhub/brewhub/internal/orders"
	"github.com/brewhub/brewhub/internal/profile"
	"github.com/brewhub/brewhub/internal/reviews"
	"github.com/brewhub/brewhub/internal/telemetry"
)

const (
	serviceName    = "brewhub-api"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var dispatcher *notify.Dispatcher
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		brokers := strings.Split(kafkaBrokers, ",")
		createdProducer := messaging.NewProducer(brokers, notify.TopicOrderCreated)
		statusProducer := messaging.NewProducer(brokers, notify.TopicOrderStatusChanged)
		defer func() { _ = createdProducer.Close() }()
		defer func() { _ = statusProducer.Close() }()
		dispatcher = notify.NewDispatcher(createdProducer, statusProducer, logger)
	} else {
		logger.Warn("KAFKA_BROKERS not set, order notifications disabled")
	}

	productRepo := catalog.NewProductRepository(db)
	cartRepo := cart.NewPostgresRepository(db)
	orderRepo := orders.NewPostgresRepository(db)
	reviewRepo := reviews.NewPostgresRepository(db)
	userRepo := profile.NewUserRepository(db)
	tokenRepo := auth.NewTokenRepository(db)

	cartService := cart.NewService(cartRepo, productRepo, logger)
	orderService := orders.NewService(orderRepo, productRepo, cartService, userRepo, dispatcher, logger)
	reviewService := reviews.NewService(reviewRepo, orderRepo, productRepo)

	catalogHandler := catalog.NewHandler(productRepo, logger)
	cartHandler := cart.NewHandler(cartService, logger)
	orderHandler := orders.NewHandler(orderService, logger)
	reviewHandler := reviews.NewHandler(reviewService, logger)
	profileHandler := profile.NewHandler(userRepo, logger)

	mw := auth.NewMiddleware(tokenRepo, logger)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /health", handleHealth)

	mux.HandleFunc("GET /products", route(catalogHandler.HandleList))
	mux.HandleFunc("GET /products/{id}", route(catalogHandler.HandleGet))
	mux.HandleFunc("GET /products/{id}/reviews", route(reviewHandler.HandleProductReviews))
	mux.HandleFunc("GET /categories", route(catalogHandler.HandleCategories))

	mux.HandleFunc("GET /cart", route(mw.Authenticate(cartHandler.HandleView)))
	mux.HandleFunc("POST /cart/add", route(mw.Authenticate(cartHandler.HandleAdd)))
	mux.HandleFunc("PUT /cart/update/{productId}", route(mw.Authenticate(cartHandler.HandleUpdate)))
	mux.HandleFunc("DELETE /cart/remove/{productId}", route(mw.Authenticate(cartHandler.HandleRemove)))
	mux.HandleFunc("DELETE /cart/clear", route(mw.Authenticate(cartHandler.HandleClear)))

	mux.HandleFunc("GET /orders", route(mw.Authenticate(orderHandler.HandleList)))
	mux.HandleFunc("POST /orders", route(mw.Authenticate(orderHandler.HandleCreate)))
	mux.HandleFunc("GET /orders/{id}", route(mw.Authenticate(orderHandler.HandleGet)))
	mux.HandleFunc("GET /orders/{id}/review-status", route(mw.Authenticate(reviewHandler.HandleOrderReviewStatus)))
	mux.HandleFunc("PUT /orders/{id}", route(mw.Authenticate(mw.RequireAdmin(orderHandler.HandleUpdate))))
	mux.HandleFunc("GET /admin/orders", route(mw.Authenticate(mw.RequireAdmin(orderHandler.HandleAdminList))))

	mux.HandleFunc("POST /reviews", route(mw.Authenticate(reviewHandler.HandleCreate)))

	mux.HandleFunc("GET /profile", route(mw.Authenticate(profileHandler.HandleShow)))
	mux.HandleFunc("PUT /profile", route(mw.Authenticate(profileHandler.HandleUpdate)))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting brewhub api", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func route(h http.HandlerFunc) http.HandlerFunc {
	return telemetry.WithHTTPRoute(h)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
