package config

import (
	"strconv"
	"time"
)

type SecurityConfig interface {
	GetJWTSecret() string
	GetAccessTokenTTL() time.Duration
	GetTokenIssuer() string
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetJWTSecret() string {
	return GetEnv("SECRET_KEY", "")
}

func (Security) GetAccessTokenTTL() time.Duration {
	minutes, err := strconv.Atoi(GetEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "60"))
	if err != nil || minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

func (Security) GetTokenIssuer() string {
	return GetEnv("TOKEN_ISSUER", "llm-saas-backend")
}
