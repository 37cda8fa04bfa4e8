package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"

	"school_journal/internal/api/handler"
	"school_journal/internal/api/middleware"
	"school_journal/internal/app/service"
	"school_journal/internal/common/security"
	"school_journal/internal/platform/storage"
)

func NewRouter(
	tokens *security.TokenService,
	authService *service.AuthService,
	journalService *service.JournalService,
	store *storage.LocalStore,
	log *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Base middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Parses "Authorization: Bearer <token>" and puts the outcome in the
	// context; middleware.Authenticator enforces it on protected routes.
	r.Use(jwtauth.Verifier(tokens.TokenAuth()))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Attachments are served by path with no auth: anyone holding the
	// path can fetch the file.
	fileServer := http.FileServer(http.Dir(store.Dir()))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	r.Route("/api", func(apiRouter chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		apiRouter.Route("/auth", authHandler.RegisterRoutes)

		journalHandler := handler.NewJournalHandler(journalService, store)
		apiRouter.Route("/journals", journalHandler.RegisterRoutes)
	})

	return r
}
