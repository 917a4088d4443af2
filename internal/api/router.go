package api

import (
	"io/fs"
	"log"
	"net/http"
	"time"

	"langbot-backend/internal/config"
	"langbot-backend/internal/handlers"
	"langbot-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	AuthHandler         *handlers.AuthHandler
	ChatHandler         *handlers.ChatHandlers
	ConversationHandler *handlers.ConversationHandlers
	TokenVerifier       TokenVerifier
	// StaticFS is served at / when set.
	StaticFS fs.FS
	Config   *config.Config
}

// requestTimeout bounds every route except /chat.
const requestTimeout = 60 * time.Second

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	if deps.AuthHandler == nil || deps.TokenVerifier == nil {
		panic("AuthHandler and TokenVerifier dependencies are required in router setup")
	}

	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.MethodNotAllowed(methodNotAllowed)

	// Provider calls on /chat carry no deadline; everything else is bounded.
	timeout := middleware.Timeout(requestTimeout)

	// --- Public Routes (No JWT Required) ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Use(timeout)
		r.Post("/signup", deps.AuthHandler.HandleSignup)
		r.Post("/login", deps.AuthHandler.HandleLogin)
		r.With(JwtAuthMiddleware(deps.TokenVerifier)).Get("/verify", deps.AuthHandler.HandleVerify)
	})

	// --- Chat (JWT optional) ---
	if deps.ChatHandler != nil {
		r.Route("/chat", func(r chi.Router) {
			r.With(OptionalJwtAuthMiddleware(deps.TokenVerifier)).Post("/", deps.ChatHandler.HandleChat)
		})
	} else {
		log.Println("WARN: ChatHandler dependency is nil, skipping /chat route.")
	}

	// --- Authenticated Routes (JWT Required) ---
	if deps.ConversationHandler != nil {
		r.Route("/conversations", func(r chi.Router) {
			// Auth runs per route so unsupported methods get 405 before 401.
			requireUser := r.With(timeout, JwtAuthMiddleware(deps.TokenVerifier))
			requireUser.Get("/", deps.ConversationHandler.HandleListConversations)
			requireUser.Get("/{conversationID}", deps.ConversationHandler.HandleGetMessages)
		})
	} else {
		log.Println("WARN: ConversationHandler dependency is nil, skipping /conversations routes.")
	}

	// --- Browser client ---
	if deps.StaticFS != nil {
		r.Get("/*", http.FileServer(http.FS(deps.StaticFS)).ServeHTTP)
	} else {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httputil.RespondError(w, http.StatusNotFound, "Not found")
		})
	}

	return r
}
