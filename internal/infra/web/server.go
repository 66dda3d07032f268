package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ripplix/internal/domain/ports/repository"
	"ripplix/internal/usecase"
)

type Server struct {
	catalog  usecase.PlanCatalog
	expiryUC usecase.ExpiryUseCase
	reconUC  usecase.ReconcileUseCase
	entUC    usecase.EntitlementUseCase
	gwUC     usecase.GatewayUseCase
	users    repository.UserRepository
	boards   repository.BoardRepository
	auth     *AuthManager
	apiKey   string
	log      *zerolog.Logger
}

func NewServer(
	catalog usecase.PlanCatalog,
	expiryUC usecase.ExpiryUseCase,
	reconUC usecase.ReconcileUseCase,
	entUC usecase.EntitlementUseCase,
	gwUC usecase.GatewayUseCase,
	users repository.UserRepository,
	boards repository.BoardRepository,
	auth *AuthManager,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	srvLog := logger.With().Str("component", "AdminAPI").Logger()
	return &Server{
		catalog:  catalog,
		expiryUC: expiryUC,
		reconUC:  reconUC,
		entUC:    entUC,
		gwUC:     gwUC,
		users:    users,
		boards:   boards,
		auth:     auth,
		apiKey:   apiKey,
		log:      &srvLog,
	}
}

// Routes builds the full admin router. Everything under /api/v1 except the
// login endpoint sits behind the auth middleware.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/login", s.loginHandler())

		api.Group(func(priv chi.Router) {
			priv.Use(s.authMiddleware)

			priv.Get("/stats", s.statsHandler())
			priv.Get("/plans", s.plansListHandler())
			priv.Post("/plans", s.planCreateHandler())
			priv.Delete("/plans/{id}", s.planDeleteHandler())
			priv.Get("/gateways", s.gatewaysHandler())

			priv.Get("/payments/drift", s.driftAuditHandler())
			priv.Post("/payments/drift/repair", s.driftRepairHandler())

			priv.Post("/boards", s.boardCreateHandler())
			priv.Post("/boards/{id}/items", s.boardAddItemHandler())
			priv.Post("/boards/{id}/share", s.boardShareHandler())
		})
	})
	return r
}

// authMiddleware accepts either the static API key or a minted session token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("Admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if hdr := r.Header.Get("Authorization"); hdr != "" {
			parts := strings.SplitN(hdr, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] == s.apiKey {
				next.ServeHTTP(w, r)
				return
			}
		}
		if _, err := s.auth.ParseFromRequest(r); err == nil {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}
