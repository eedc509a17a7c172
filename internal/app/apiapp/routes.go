package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/praytyushpande/crewlyx/internal/services/auth"
	matchessvc "github.com/praytyushpande/crewlyx/internal/services/matches"
	mediasvc "github.com/praytyushpande/crewlyx/internal/services/media"
	messagessvc "github.com/praytyushpande/crewlyx/internal/services/messages"
	swipesvc "github.com/praytyushpande/crewlyx/internal/services/swipes"
	userssvc "github.com/praytyushpande/crewlyx/internal/services/users"
	"github.com/praytyushpande/crewlyx/internal/transport/http/handlers"
	wstransport "github.com/praytyushpande/crewlyx/internal/transport/ws"
)

type Dependencies struct {
	AuthService     *authsvc.Service
	UsersService    *userssvc.Service
	SwipeService    *swipesvc.Service
	MatchesService  *matchessvc.Service
	MessagesService *messagessvc.Service
	MediaService    *mediasvc.Service
	Gateway         *wstransport.Gateway
	Logger          *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	usersHandler := handlers.NewUsersHandler(deps.UsersService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchesService)
	messagesHandler := handlers.NewMessagesHandler(deps.MessagesService)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.With(authMW).Post("/logout", authHandler.Logout)
			r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authMW)
			r.Get("/profile", usersHandler.Profile)
			r.Put("/profile", usersHandler.UpdateProfile)
			r.Post("/profile/photo", mediaHandler.UploadProfilePhoto)
			r.Get("/discover", usersHandler.Discover)
			r.Post("/deactivate", usersHandler.Deactivate)
			r.Get("/{id}", usersHandler.PublicProfile)
		})

		r.Route("/swipes", func(r chi.Router) {
			r.Use(authMW)
			r.Post("/", swipeHandler.Handle)
			r.Get("/history", swipeHandler.History)
			r.Get("/stats", swipeHandler.Stats)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Use(authMW)
			r.Get("/", matchesHandler.List)
			r.Get("/{matchId}", matchesHandler.Get)
			r.Delete("/{matchId}", matchesHandler.Unmatch)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Use(authMW)
			r.Get("/unread/count", messagesHandler.UnreadCount)
			r.Get("/{matchId}", messagesHandler.List)
			r.Post("/{matchId}", messagesHandler.Send)
			r.Post("/{matchId}/read", messagesHandler.MarkRead)
			r.Delete("/message/{messageId}", messagesHandler.Delete)
		})

		if deps.Gateway != nil {
			r.Get("/ws", deps.Gateway.Handle)
		}
	})
}
