package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"collectbook/internal/clients"
	"collectbook/internal/config"
	"collectbook/internal/repository"
	"collectbook/internal/service"
	"collectbook/internal/transport/auth"
	"collectbook/internal/transport/rest"
	"collectbook/internal/transport/websocket"
	"collectbook/pkg/database/postgres"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env or defaults")
	}

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()

	db := mustInitPostgres(cfg.Postgres)
	defer postgres.Close(db)

	redisClient := mustInitRedis(cfg.Redis)
	defer redisClient.Close()

	var files service.FileStore
	var localStorage *clients.StorageClient
	switch cfg.StorageDriver {
	case "s3":
		s3Client, err := clients.NewS3Client(ctx, clients.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			URLTTL:          time.Duration(cfg.S3.URLTTLMinutes) * time.Minute,
		})
		if err != nil {
			log.Fatalf("s3 init error: %v", err)
		}
		files = s3Client
	default:
		var err error
		localStorage, err = clients.NewLocalStorage(cfg.FilesDir, cfg.FilesPublicPrefix, cfg.ExternalURL)
		if err != nil {
			log.Fatalf("storage init error: %v", err)
		}
		files = localStorage
	}

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	customerRepo := repository.NewCustomerRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	planRepo := repository.NewLoanPlanRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	collectorRepo := repository.NewCollectorRepository(db)
	tokenRepo := repository.NewCollectorTokenRepository(db)

	collectionSvc := service.NewCollectionService(accountRepo, customerRepo, planRepo, settingsRepo)
	customerSvc := service.NewCustomerService(customerRepo, accountRepo, planRepo)
	receiptSvc := service.NewReceiptService(customerRepo, accountRepo, collectorRepo, files)
	reportSvc := service.NewReportService(accountRepo, redisClient, files, wsClient)
	reportListSvc := service.NewReportStatusService(redisClient)
	searchSvc := service.NewSearchService(customerRepo, accountRepo, accountRepo)

	tokenMiddleware := auth.TokenMiddleware(tokenRepo)

	handler := rest.NewHandler(collectionSvc, customerSvc, receiptSvc, reportSvc, reportListSvc, searchSvc)
	router := handler.InitRouterWithAuth(tokenMiddleware)

	// create a public root router and mount protected (auth) router underneath so
	// /files stays public while API routes remain protected
	root := chi.NewRouter()

	if localStorage != nil {
		root.Get("/files/{file}", serveLocalFile(localStorage))
	}

	// protected websocket endpoint; the auth middleware already accepts
	// ?token= so mobile clients without header support can connect
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		collectorID, err := auth.GetCollectorID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		log.Printf("WS connected: collector_id=%s", collectorID)
		wsHub.HandleWebSocket(w, r, collectorID)
	})

	// mount protected router on root
	root.Mount("/", router)

	corsHandler := withCORS(root)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run HTTP server in goroutine so we can listen for shutdown signals
	srvErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	// reports are short-lived downloads; clean up local copies periodically
	if localStorage != nil {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := localStorage.CleanupOlderThan(30 * time.Minute); err != nil {
						log.Printf("storage cleanup error: %v", err)
					}
				}
			}
		}()
	}

	// Listen for OS shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	case sig := <-stop:
		log.Printf("Shutdown signal received: %v", sig)

		// Give server up to 10 seconds to finish ongoing requests
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server Shutdown error: %v", err)
		}

		// Cancel top-level context so background services (websocket hub) stop
		cancel()

		// Close database & redis explicitly to free resources promptly
		postgres.Close(db)
		redisClient.Close()

		log.Println("Shutdown complete")
	}
}

func serveLocalFile(storage *clients.StorageClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := chi.URLParam(r, "file")
		// sanitize and open file from storage directory
		path := filepath.Join(storage.BaseDir, filepath.Base(file))
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "failed to access file", http.StatusInternalServerError)
			return
		}

		// prefer original filename in Content-Disposition (strip random prefix)
		orig := file
		if idx := strings.IndexByte(file, '_'); idx >= 0 {
			orig = file[idx+1:]
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", orig))

		http.ServeFile(w, r, path)
	}
}

func mustInitPostgres(cfg config.PostgresConfig) *sql.DB {
	db, err := postgres.NewPostgresConnection(postgres.ConnectionInfo{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Password: cfg.Password,
	})
	if err != nil {
		log.Fatalf("postgres init error: %v", err)
	}
	return db
}

func mustInitRedis(cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	return client
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
