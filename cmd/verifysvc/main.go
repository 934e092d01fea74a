package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/veritag/veriqr-services/configs"
	nats "github.com/veritag/veriqr-services/internal/nats"
	"github.com/veritag/veriqr-services/internal/verifysvc/broker"
	"github.com/veritag/veriqr-services/internal/verifysvc/db"
	handlers "github.com/veritag/veriqr-services/internal/verifysvc/handlers"
	"github.com/veritag/veriqr-services/internal/verifysvc/qr"
	"github.com/veritag/veriqr-services/internal/verifysvc/service"
	"github.com/veritag/veriqr-services/internal/verifysvc/store"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "verify"

func init() {
	config.Logging(SERVICE_NAME + "_service")
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg := config.Load()
	config.CreateUniqueInstance(SERVICE_NAME)

	// mongo connection
	database, cancelDB, err := db.ConnectToDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer cancelDB()
	log.Printf("mongo connection established successfully")

	if err := db.EnsureIndexes(database); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	productStore := store.NewProductStore(database)
	scanStore := store.NewScanStore(database)

	// Connect to NATS; scan events are best-effort, the service runs without
	// a broker
	var events *broker.Publisher
	n, err := nats.Connect()
	if err != nil {
		log.Warnf("unable to connect to NATS server, scan events disabled: %v", err)
	} else {
		defer n.Conn.Close()
		log.Printf("NATS connection established successfully %s", n.Url)
		events = broker.NewPublisher(n.Conn)
	}

	codec := &qr.Codec{BaseURL: cfg.VerifyBaseURL}

	verifyService := service.NewVerifyService(productStore, scanStore, events)
	productService := service.NewProductService(productStore)
	importService := service.NewImportService(productStore)
	qrService := service.NewQRService(productStore, codec)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.AllowedOrigins)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the public verify api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(verifyService, productService, importService, qrService, cfg.MaxUploadBytes)
	h.InitAuth(cfg.JWTSecretKey)
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
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
