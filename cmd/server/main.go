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

	"langbot-backend/internal/api"
	"langbot-backend/internal/config"
	"langbot-backend/internal/handlers"
	"langbot-backend/internal/providers"
	"langbot-backend/internal/services"
	"langbot-backend/internal/store/backend"
	"langbot-backend/web"
)

func main() {
	log.Println("Starting LangBot Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Open the store
	st, err := backend.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("FATAL: Unable to open store: %v", err)
	}
	defer st.Close()

	// 3. Register AI providers
	registry := providers.NewRegistry(cfg.AIProvider)
	registry.Register(providers.NewGeminiProvider(providers.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModelName}))
	registry.Register(providers.NewOpenAIProvider(providers.Config{APIKey: cfg.OpenAIAPIKey}))
	registry.Register(providers.NewAnthropicProvider(providers.Config{APIKey: cfg.AnthropicAPIKey}))
	if p, ok := registry.Select(); ok {
		log.Printf("ProviderRegistry initialized, order %v, using %s.", registry.Order(), p.Name())
	} else {
		log.Println("WARN: No AI provider API key configured; chat will answer with the fallback reply.")
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(st, cfg)
	chatService := services.NewChatService(st, registry)
	conversationService := services.NewConversationService(st)
	log.Println("Services initialized.")

	staticFS, err := web.StaticFS()
	if err != nil {
		log.Fatalf("FATAL: Failed to load embedded web client: %v", err)
	}

	// 4. Setup Router & Inject Dependencies
	router := api.NewRouter(api.RouterDependencies{
		AuthHandler:         handlers.NewAuthHandler(authService),
		ChatHandler:         handlers.NewChatHandlers(chatService),
		ConversationHandler: handlers.NewConversationHandlers(conversationService),
		TokenVerifier:       authService,
		StaticFS:            staticFS,
		Config:              cfg,
	})
	log.Println("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for OS signals for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}
