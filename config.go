package auth

import (
	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// EnvConfig is a Config implementation populated from the process
// environment. The signing key is process-wide: rotating it invalidates
// every outstanding token.
type EnvConfig struct {
	SigningKey      string   `env:"ORGAUTH_SIGNING_KEY"`
	SigningMethod   string   `env:"ORGAUTH_SIGNING_METHOD" envDefault:"HS256"`
	ContextKey      string   `env:"ORGAUTH_CONTEXT_KEY" envDefault:"user"`
	TokenExpiration int      `env:"ORGAUTH_TOKEN_EXPIRATION" envDefault:"24"`
	TokenLookup     string   `env:"ORGAUTH_TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme      string   `env:"ORGAUTH_AUTH_SCHEME" envDefault:"Bearer"`
	Issuer          string   `env:"ORGAUTH_ISSUER" envDefault:"orgauth"`
	Audience        []string `env:"ORGAUTH_AUDIENCE" envSeparator:","`
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse auth configuration")
	}

	if cfg.SigningKey == "" {
		return nil, goerrors.New("ORGAUTH_SIGNING_KEY is required", goerrors.CategoryBadInput).
			WithTextCode("MISSING_SIGNING_KEY")
	}

	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string    { return c.SigningKey }
func (c *EnvConfig) GetSigningMethod() string { return c.SigningMethod }
func (c *EnvConfig) GetContextKey() string    { return c.ContextKey }
func (c *EnvConfig) GetTokenExpiration() int  { return c.TokenExpiration }
func (c *EnvConfig) GetTokenLookup() string   { return c.TokenLookup }
func (c *EnvConfig) GetAuthScheme() string    { return c.AuthScheme }
func (c *EnvConfig) GetIssuer() string        { return c.Issuer }
func (c *EnvConfig) GetAudience() []string    { return c.Audience }
