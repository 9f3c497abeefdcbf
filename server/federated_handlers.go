package server

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	apperrors "github.com/Nayab-Gohar-95/llm-saas-backend/internal/errors"
)

const stateCookieName = "federated_state"

// getOidcClient returns the upstream OIDC wiring, initialising it on first
// use. Discovery hits the network, so it is deferred until a federated route
// is actually exercised.
func (s *Server) getOidcClient(r *http.Request) (*OidcClient, error) {
	s.oidcLock.Lock()
	defer s.oidcLock.Unlock()

	if s.oidcClient != nil {
		return s.oidcClient, nil
	}

	provider, err := oidc.NewProvider(r.Context(), s.config.GetOidcIssuer())
	if err != nil {
		return nil, fmt.Errorf("[getOidcClient] OIDC discovery failed: %w", err)
	}

	clientID := s.config.GetOidcClientID()
	s.oidcClient = &OidcClient{
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: s.config.GetOidcClientSecret(),
			RedirectURL:  s.config.GetOidcRedirectURL(),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		Verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}
	return s.oidcClient, nil
}

// FederatedLoginHandler redirects the browser to the configured upstream
// identity provider. The anti-forgery state round-trips in a short-lived
// cookie.
func (s *Server) FederatedLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := s.getOidcClient(r)
		if err != nil {
			writeError(w, err)
			return
		}

		state := generateRandomString(32)
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    state,
			Path:     "/",
			MaxAge:   int((10 * time.Minute).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		http.Redirect(w, r, client.OAuth2Config.AuthCodeURL(state), http.StatusFound)
	}
}

// FederatedCallbackHandler exchanges the authorization code, verifies the ID
// token, and maps the asserted email onto an existing local user. Tenant and
// role always come from the local record; upstream claims can never widen
// access. Unknown emails are rejected, not provisioned.
func (s *Server) FederatedCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if errParam := r.FormValue("error"); errParam != "" {
			writeJSONError(w, http.StatusBadRequest,
				fmt.Sprintf("authorization failed: %s - %s", errParam, r.FormValue("error_description")))
			return
		}

		code := r.FormValue("code")
		state := r.FormValue("state")
		if code == "" || state == "" {
			writeJSONError(w, http.StatusBadRequest, "missing code or state parameter")
			return
		}

		cookie, err := r.Cookie(stateCookieName)
		if err != nil || cookie.Value != state {
			writeJSONError(w, http.StatusBadRequest, "invalid state parameter")
			return
		}
		// Clean up state after use
		http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

		client, err := s.getOidcClient(r)
		if err != nil {
			writeError(w, err)
			return
		}

		oauth2Token, err := client.OAuth2Config.Exchange(r.Context(), code)
		if err != nil {
			writeJSONError(w, http.StatusBadGateway, "token exchange failed")
			return
		}

		rawIDToken, ok := oauth2Token.Extra("id_token").(string)
		if !ok {
			writeJSONError(w, http.StatusBadGateway, "no ID token in response")
			return
		}

		idToken, err := client.Verifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "ID token verification failed")
			return
		}

		var claims struct {
			Email         string `json:"email"`
			EmailVerified bool   `json:"email_verified"`
		}
		if err := idToken.Claims(&claims); err != nil || claims.Email == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing email claim")
			return
		}

		user, err := s.repos.Users.GetByEmail(r.Context(), claims.Email)
		if err != nil {
			// An upstream identity without a local account gets no credential
			writeError(w, apperrors.ErrInvalidCredentials)
			return
		}

		signed, err := s.guard.IssueFor(user)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TokenResponse{
			AccessToken: signed,
			TokenType:   "bearer",
			ExpiresIn:   int(s.guard.TokenTTL().Seconds()),
			User:        user,
		})
	}
}

func generateRandomString(length int) string {
	b := make([]byte, length)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)[:length]
}
