package router

import (
	"net/http"

	"mc-bridge-api/internal/handler"
	"mc-bridge-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler            *handler.Handler
	InteractionHandler *handler.InteractionHandler
	ChatHandler        *handler.ChatHandler
	PlayerHandler      *handler.PlayerHandler
	InventoryHandler   *handler.InventoryHandler
	SettingHandler     *handler.SettingHandler
	APIKeyMiddleware   func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-API-Key", "X-Signature-Ed25519", "X-Signature-Timestamp"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Discord interactions webhook (Ed25519-signed, no API key)
	if cfg.InteractionHandler != nil {
		r.Post("/", cfg.InteractionHandler.Handle)
	}

	// Health check - public
	if cfg.Handler != nil {
		r.Get("/health", cfg.Handler.Health)
	}

	// Minecraft REST API (shared-secret header auth)
	r.Route("/api/mc", func(r chi.Router) {
		if cfg.APIKeyMiddleware != nil {
			r.Use(cfg.APIKeyMiddleware)
		}

		// Chat relay
		if cfg.ChatHandler != nil {
			r.Post("/chat", cfg.ChatHandler.PostChat)
			r.Get("/messages", cfg.ChatHandler.GetMessages)
			r.Post("/messages/ack", cfg.ChatHandler.AckMessages)
		}

		// Player bindings
		if cfg.PlayerHandler != nil {
			r.Get("/players", cfg.PlayerHandler.GetPlayers)
			r.Post("/players/bind", cfg.PlayerHandler.BindPlayer)
			r.Get("/players/{mc_uuid}", cfg.PlayerHandler.GetPlayer)
		}

		// Player inventories
		if cfg.InventoryHandler != nil {
			r.Route("/inventory/{mc_uuid}", func(r chi.Router) {
				r.Get("/", cfg.InventoryHandler.GetInventory)
				r.Put("/", cfg.InventoryHandler.PutInventory)
				r.Patch("/{item_id}", cfg.InventoryHandler.PatchInventoryItem)
			})
		}

		// Server settings mirror
		if cfg.SettingHandler != nil {
			r.Get("/settings", cfg.SettingHandler.GetSettings)
			r.Get("/settings/{key}", cfg.SettingHandler.GetSetting)
			r.Put("/settings/{key}", cfg.SettingHandler.PutSetting)
			r.Post("/server/status", cfg.SettingHandler.PostServerStatus)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found"))
	})

	return r
}
