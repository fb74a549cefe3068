package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"anistream/internal/catalog"
	"anistream/internal/episodes"
	"anistream/internal/gateway"
	"anistream/internal/notify"
	"anistream/internal/progress"
	"anistream/internal/session"
	"anistream/internal/store"
	"anistream/pkg/database"
	"anistream/pkg/utils"
)

const adminLoginPath = "/admin/login"

func main() {
	cfg, err := utils.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	dbCfg := database.DefaultConfig()
	if cfg.Store.Path != "" {
		dbCfg = database.Config{Path: cfg.Store.Path}
	}
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Start the notify hub first so binding errors surface early
	hub := notify.NewHub()
	router.GET("/ws", notify.WSHandler(hub))
	tcpSrv := notify.NewServer(cfg.Notify.TCPAddr, hub)

	st := store.New(db)
	gw := gateway.New(cfg.Gateway)

	mgr := session.NewManager(gw, st, cfg.Admin)
	defer mgr.Dispose()
	mgr.Subscribe(func(snap session.Snapshot) {
		switch snap.State {
		case session.StateAuthenticated:
			if snap.User != nil {
				hub.Publish(notify.Event{Type: notify.EventSignedIn, Role: snap.User.Role})
			}
		case session.StateUnauthenticated:
			hub.Publish(notify.Event{Type: notify.EventSignedOut})
		}
	})
	go mgr.Restore(context.Background())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"store_error": err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"store":       "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		stats := hub.Stats()
		c.JSON(http.StatusOK, gin.H{
			"store":       dbCfg.Path,
			"session":     mgr.Current().State.String(),
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// Catalog (public)
	catalogSvc := catalog.NewService(gw, hub)
	catalogHandler := catalog.NewHandler(catalogSvc)
	catalogHandler.RegisterPublicRoutes(router)

	// Episode groups + recent selections
	recent := episodes.NewRecentList(context.Background(), st)
	episodes.NewHandler(gw, recent).RegisterRoutes(router)

	// Watch progress
	progress.NewHandler(progress.NewTracker(st)).RegisterRoutes(router)

	// Auth
	session.NewHandler(mgr).RegisterRoutes(router.Group("/auth"))
	router.GET(adminLoginPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"login": "POST /auth/admin-login or /auth/login"})
	})

	// Admin CRUD (protected)
	admin := router.Group("/admin")
	admin.Use(session.Middleware(mgr, adminLoginPath))
	catalogHandler.RegisterAdminRoutes(admin)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
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

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
