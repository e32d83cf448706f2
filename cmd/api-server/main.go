package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"readinghub/internal/admin"
	"readinghub/internal/auth"
	"readinghub/internal/books"
	"readinghub/internal/dictionary"
	"readinghub/internal/events"
	"readinghub/internal/ingest"
	"readinghub/internal/replica"
	"readinghub/internal/shelf"
	"readinghub/internal/storage"
	"readinghub/pkg/database"
	"readinghub/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := events.NewHub()
	router.GET("/ws", hub.Handler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.Clients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.Clients,
		})
	})

	// Image storage; locally stored files are served from /static/images.
	store, local := storage.New(utils.LoadStorageConfig(), utils.DataDir())
	router.Static("/static/images", local.ImagesDir())

	replicaClient := replica.New(utils.LoadReplicaConfig())

	// Books (public) + import pipeline
	booksRepo := books.NewRepo(db)
	persister := books.NewDualWriter(booksRepo, replicaClient)
	importer := ingest.New(store, persister)
	booksHandler := books.NewHandler(booksRepo, importer, hub)
	booksHandler.RegisterRoutes(router.Group("/books"))

	// Dictionary (public)
	dictHandler := dictionary.NewHandler(utils.LoadYoudaoConfig())
	dictHandler.RegisterRoutes(router.Group("/dictionary"))

	// Admin (gated by READINGHUB_ADMIN_MODE)
	adminHandler := admin.NewHandler(booksRepo, store, replicaClient, hub, utils.BackupDir())
	adminHandler.RegisterRoutes(router.Group("/admin"))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Protected routes
	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	protected.GET("/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"email":    claims.Email,
		})
	})

	// Shelf (protected)
	shelfRepo := shelf.NewRepo(db)
	shelfHandler := shelf.NewHandler(shelfRepo, hub)
	shelfHandler.RegisterRoutes(protected.Group("/shelf"))

	httpSrv := &http.Server{
		Addr:    listenAddr(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}

func listenAddr() string {
	if addr := os.Getenv("READINGHUB_ADDR"); addr != "" {
		return addr
	}
	return ":8080"
}
