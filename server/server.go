// Package server exposes the HTTP surface. Handlers stay thin: decode, call
// the domain layer, encode. All tenant scoping happens below this package.
package server

import (
	"net/http"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/Nayab-Gohar-95/llm-saas-backend/auth"
	"github.com/Nayab-Gohar-95/llm-saas-backend/chat"
	"github.com/Nayab-Gohar-95/llm-saas-backend/internal/config"
)

// OidcClient holds the lazily-initialised upstream OIDC wiring for federated
// login. The provider is contacted on first use, not at startup.
type OidcClient struct {
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
	Verifier     *oidc.IDTokenVerifier
}

type Server struct {
	env          string // Environment (e.g., "DEV", "production")
	router       *mux.Router
	routes       []string
	config       config.Config
	guard        *auth.Guard
	repos        auth.Repos
	orchestrator *chat.Orchestrator

	oidcClient *OidcClient
	oidcLock   sync.Mutex
}

func New(config config.Config, guard *auth.Guard, repos auth.Repos, orchestrator *chat.Orchestrator) (*Server, error) {
	if guard == nil {
		return nil, errors.New("[Server New] guard is required")
	}
	if orchestrator == nil {
		return nil, errors.New("[Server New] orchestrator is required")
	}
	if repos.Users == nil || repos.Tenants == nil {
		return nil, errors.New("[Server New] repos are required")
	}

	s := &Server{
		router:       mux.NewRouter(),
		config:       config,
		guard:        guard,
		repos:        repos,
		orchestrator: orchestrator,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(method, pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, method+" "+pattern)
	s.router.HandleFunc(pattern, handler).Methods(method)
}
