package config

type OidcConfig interface {
	GetOidcIssuer() string
	GetOidcClientID() string
	GetOidcClientSecret() string
	GetOidcRedirectURL() string
}

type Oidc struct{}

var _ OidcConfig = Oidc{}

// GetOidcIssuer returns the upstream OIDC issuer for federated login.
// When empty, the federated login routes are not registered.
func (Oidc) GetOidcIssuer() string {
	return GetEnv("OIDC_ISSUER", "")
}

func (Oidc) GetOidcClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (Oidc) GetOidcClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

func (Oidc) GetOidcRedirectURL() string {
	return GetEnv("OIDC_REDIRECT_URL", "http://localhost:8080/auth/federated/callback")
}
