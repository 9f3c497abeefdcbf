package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	// Public routes
	s.RegisterRouteFunc(http.MethodGet, RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc(http.MethodPost, RouteCreateTenant, ChainMiddleware(s.CreateTenantHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc(http.MethodPost, RouteRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc(http.MethodPost, RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))

	// Authenticated routes
	s.RegisterRouteFunc(http.MethodGet, RouteMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc(http.MethodPost, RouteMessages, ChainMiddleware(s.SendMessageHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc(http.MethodGet, RouteMessages, ChainMiddleware(s.ListMessagesHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc(http.MethodGet, RouteMessagesStream, ChainMiddleware(s.StreamMessageHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Admin routes
	s.RegisterRouteFunc(http.MethodPost, RouteAdminUsers, ChainMiddleware(s.AdminCreateUserHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))
	s.RegisterRouteFunc(http.MethodDelete, RouteAdminUser, ChainMiddleware(s.AdminDeleteUserHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))
	s.RegisterRouteFunc(http.MethodGet, RouteTenantUsers, ChainMiddleware(s.ListTenantUsersHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))

	// Federated login is only exposed when an upstream issuer is configured
	if s.config.GetOidcIssuer() != "" {
		s.RegisterRouteFunc(http.MethodGet, RouteFederatedLogin, ChainMiddleware(s.FederatedLoginHandler(), s.APIMiddleware()...))
		s.RegisterRouteFunc(http.MethodGet, RouteFederatedCallback, ChainMiddleware(s.FederatedCallbackHandler(), s.APIMiddleware()...))
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		log.Debug().Str("route", route).Msg("registered route")
	}
}
