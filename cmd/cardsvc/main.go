package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/avvvet/bizcard-services/configs"
	"github.com/avvvet/bizcard-services/internal/cardsvc/auth"
	"github.com/avvvet/bizcard-services/internal/cardsvc/broker"
	cardcfg "github.com/avvvet/bizcard-services/internal/cardsvc/config"
	handlers "github.com/avvvet/bizcard-services/internal/cardsvc/handlers"
	"github.com/avvvet/bizcard-services/internal/cardsvc/seed"
	"github.com/avvvet/bizcard-services/internal/cardsvc/service"
	"github.com/avvvet/bizcard-services/internal/cardsvc/store"
	"github.com/avvvet/bizcard-services/internal/db"
	nats "github.com/avvvet/bizcard-services/internal/nats"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

const SERVICE_NAME = "card"

var instanceId string

func init() {
	config.LoadEnv(SERVICE_NAME)
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}
	config.Logging(SERVICE_NAME+"_service", logDir)
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
}

func main() {
	cfg, err := cardcfg.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var (
		userStore service.UserStore
		cardStore service.CardStore
		client    *mongo.Client
	)

	switch cfg.StoreDriver {
	case cardcfg.StoreMemory:
		mem := store.NewMemory()
		userStore, cardStore = mem, mem
		log.Warn("using in-memory store, data is lost on restart")
	default:
		// mongo connection
		var database *mongo.Database
		client, database, err = db.Connect(context.Background(), cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		log.Printf("mongo connection established successfully")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.EnsureIndexes(ctx, database); err != nil {
			log.Fatalf("Failed to create indexes: %+v", err)
		}
		cancel()

		userStore = store.NewUserStore(database)
		cardStore = store.NewCardStore(database)
	}

	hasher := auth.NewPasswordHasher(auth.DefaultHashCost)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn)

	userService := service.NewUserService(userStore, cardStore, hasher, tokens)
	cardService := service.NewCardService(cardStore, userStore)

	// Connect to NATS, events are optional
	if cfg.NatsURL != "" {
		n, err := nats.Connect(cfg.NatsURL, cfg.NatsToken, SERVICE_NAME+"_service_"+instanceId)
		if err != nil {
			log.Errorf("Error: unable to connect to NATS server %v, events disabled", err)
		} else {
			defer n.Conn.Close()
			log.Printf("NATS connection established successfully %s", n.Url)

			b := broker.NewBroker(n.Conn, instanceId)
			userService.WithNotifier(b)
			cardService.WithNotifier(b)
		}
	}

	if cfg.SeedData {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := seed.NewSeeder(userStore, cardStore, hasher, cardService).Run(ctx); err != nil {
			log.Errorf("unable to seed initial data: %+v", err)
		}
		cancel()
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.AllowedOrigins)

	h := handlers.NewHandler(userService, cardService, tokens, handlers.Options{
		UploadsDir:  cfg.UploadsDir,
		Development: cfg.IsDevelopment(),
		InstanceId:  instanceId,
	})

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(config.FailedRequestLogger(cfg.LogDir))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.Limit(cfg.RateLimit, 1*time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(h.TooManyRequestsHandler),
	))

	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	if client != nil {
		if err := client.Disconnect(ctx); err != nil {
			log.Errorf("mongo disconnect: %v", err)
		}
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
