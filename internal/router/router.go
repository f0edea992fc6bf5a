package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"akasha-terminal-api/internal/handler"
	"akasha-terminal-api/internal/middleware"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	UserHandler      *handler.UserHandler
	DrawHandler      *handler.DrawHandler
	ShopHandler      *handler.ShopHandler
	TaskHandler      *handler.TaskHandler
	BattleHandler    *handler.BattleHandler
	SynthesisHandler *handler.SynthesisHandler
	AdminHandler     *handler.AdminHandler
	Logger           *zap.SugaredLogger
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
			r.Get("/weapons", cfg.Handler.Weapons)
		}

		if cfg.ShopHandler != nil {
			r.Get("/shop", cfg.ShopHandler.Catalog)
		}
		if cfg.SynthesisHandler != nil {
			r.Get("/synthesis/recipes", cfg.SynthesisHandler.Recipes)
		}

		r.Route("/users/{user_id}", func(r chi.Router) {
			if cfg.UserHandler != nil {
				r.Get("/", cfg.UserHandler.Get)
				r.Delete("/", cfg.UserHandler.Delete)
				r.Put("/nickname", cfg.UserHandler.SetNickname)
				r.Post("/money", cfg.UserHandler.GrantMoney)
				r.Post("/signin", cfg.UserHandler.SignIn)
			}
			if cfg.DrawHandler != nil {
				r.Post("/draws", cfg.DrawHandler.Draw)
				r.Get("/draws", cfg.DrawHandler.History)
				r.Post("/fates", cfg.DrawHandler.GrantFates)
				r.Get("/armory", cfg.DrawHandler.Armory)
			}
			if cfg.ShopHandler != nil {
				r.Get("/backpack", cfg.ShopHandler.Backpack)
				r.Post("/shop/buy", cfg.ShopHandler.Buy)
				r.Post("/shop/use", cfg.ShopHandler.Use)
				r.Post("/shop/gift", cfg.ShopHandler.Gift)
			}
			if cfg.TaskHandler != nil {
				r.Get("/tasks", cfg.TaskHandler.Status)
				r.Post("/tasks/assign", cfg.TaskHandler.Assign)
				r.Post("/actions", cfg.TaskHandler.RecordAction)
				r.Post("/work", cfg.TaskHandler.Work)
			}
			if cfg.BattleHandler != nil {
				r.Post("/duels", cfg.BattleHandler.Duel)
				r.Get("/duels/cooldown", cfg.BattleHandler.Cooldown)
			}
			if cfg.SynthesisHandler != nil {
				r.Post("/synthesis/craft", cfg.SynthesisHandler.Craft)
				r.Post("/synthesis/decompose", cfg.SynthesisHandler.Decompose)
				r.Post("/synthesis/workshop", cfg.SynthesisHandler.UpgradeWorkshop)
			}
		})

		if cfg.AdminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", cfg.AdminHandler.GetStats)
				r.Get("/users", cfg.AdminHandler.ListUsers)
			})
		}
	})

	return r
}
