package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realtyhub/internal/config"
	"realtyhub/internal/httpapi"
	"realtyhub/internal/notify"
	"realtyhub/internal/services"
	"realtyhub/internal/storage/backends"
	"realtyhub/internal/upload"
)

const (
	shutdownTimeout = 30 * time.Second
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
)

func main() {
	// Initialize structured logging
	log.SetPrefix("[API] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Starting %s v%s", cfg.App.Name, cfg.App.Version)
	log.Printf("Environment: debug=%v, port=%s, host=%s, storage=%s", cfg.App.Debug, cfg.App.Port, cfg.App.Host, cfg.Storage.Driver)

	// Connect storage
	log.Println("Initializing storage...")
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), cfg.Storage.ConnectTimeout)
	store, err := backends.Open(connectCtx, cfg)
	cancelConnect()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	uploads, err := upload.NewLocalStore(&cfg.Upload)
	if err != nil {
		log.Fatalf("Failed to initialize uploads: %v", err)
	}

	// Create service instances
	log.Println("Initializing services...")
	hub := notify.NewHub(cfg.CORS.AllowedOrigins)
	whatsappSvc := notify.NewWhatsAppService(&cfg.WhatsApp)
	hub.OnConnect(func() []notify.Event {
		return []notify.Event{whatsappSvc.StatusEvent()}
	})
	whatsappSvc.OnStateChange(func(evt notify.Event) { hub.Broadcast(evt) })
	log.Printf("WhatsApp relay provider: %s (ready=%v)", whatsappSvc.Provider(), whatsappSvc.IsReady())

	var mailer services.InquiryMailer
	if emailSvc := notify.NewEmailService(&cfg.Email); emailSvc.IsEnabled() {
		mailer = emailSvc
	}

	handler := httpapi.NewRouter(httpapi.Deps{
		Config:     cfg,
		Auth:       services.NewAuthService(store, &cfg.Auth),
		Properties: services.NewPropertyService(store),
		Slider:     services.NewSliderService(store),
		Settings:   services.NewSettingsService(store),
		Contact:    services.NewContactService(store, whatsappSvc, hub, mailer),
		Health:     services.NewHealthService(store, cfg.App.Name),
		Uploads:    uploads,
		Hub:        hub,
	})

	// Create HTTP server with timeouts
	addr := fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     log.New(os.Stderr, "[HTTP] ", log.LstdFlags),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Printf("Server failed to start: %v", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v. Starting graceful shutdown...", sig)
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown
	hub.Broadcast(whatsappSvc.DisconnectedEvent())
	hub.Close()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Error during graceful shutdown: %v", err)
		if errors.Is(err, context.DeadlineExceeded) {
			log.Println("Shutdown timeout exceeded, forcing close...")
			_ = httpServer.Close()
		}
	}

	log.Println("Closing storage...")
	if err := store.Close(ctx); err != nil {
		log.Printf("Error closing storage: %v", err)
	}

	log.Println("Server shutdown complete")
}
