package app

import (
	"github.com/mvaldesd/relato/internal/auth"
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// GoogleVerifierOptions converts AuthConfig into Google verifier parameters.
func (c AuthConfig) GoogleVerifierOptions() auth.GoogleOptions {
	return auth.GoogleOptions{
		Timeout: c.Google.Timeout,
	}
}
