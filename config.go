package userauth

import (
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	// DefaultTokenTTL is the default lifetime of an issued access token.
	DefaultTokenTTL = 7 * 24 * time.Hour
	// DefaultLegacyTokenTTL is the shorter lifetime used by the deprecated
	// token endpoint.
	DefaultLegacyTokenTTL = time.Hour
	// DefaultBcryptCost balances hashing latency against brute-force cost.
	DefaultBcryptCost = 12
	// DefaultAuthScheme is the token_type label and Authorization prefix.
	DefaultAuthScheme = "Bearer"
)

// Config holds the process-wide settings. It is built once at startup and
// injected into every component; nothing mutates it afterwards. The
// SecretKey doubles as JWT signing key and password pepper: changing it
// invalidates every previously issued token and hash.
type Config struct {
	ListenAddr     string
	DatabaseDSN    string
	SecretKey      string
	AuthScheme     string
	TokenTTL       time.Duration
	LegacyTokenTTL time.Duration
	BcryptCost     int
	Debug          bool
}

// LoadDefaults returns a Config populated with development defaults. The
// secret key is insecure and must be overridden outside local development.
func LoadDefaults() *Config {
	return &Config{
		ListenAddr:     ":8000",
		DatabaseDSN:    "file:userauth.db?cache=shared",
		SecretKey:      "development-secret",
		AuthScheme:     DefaultAuthScheme,
		TokenTTL:       DefaultTokenTTL,
		LegacyTokenTTL: DefaultLegacyTokenTTL,
		BcryptCost:     DefaultBcryptCost,
	}
}

// LoadConfig builds a Config by applying defaults and overlaying values
// from USERAUTH_* environment variables.
func LoadConfig() *Config {
	cfg := LoadDefaults()
	cfg.loadEnv()
	return cfg
}

func (c *Config) loadEnv() {
	if v := os.Getenv("USERAUTH_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("USERAUTH_DB_CONNECTION"); v != "" {
		c.DatabaseDSN = v
	}
	if v := os.Getenv("USERAUTH_SECRET_KEY"); v != "" {
		c.SecretKey = v
	}
	if v := os.Getenv("USERAUTH_AUTH_SCHEME"); v != "" {
		c.AuthScheme = v
	}
	if v := os.Getenv("USERAUTH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.TokenTTL = d
		}
	}
	if v := os.Getenv("USERAUTH_LEGACY_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.LegacyTokenTTL = d
		}
	}
	if v := os.Getenv("USERAUTH_BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BcryptCost = n
		}
	}
	if v := os.Getenv("USERAUTH_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
}

// Validate will run validation rules
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ListenAddr, validation.Required),
		validation.Field(&c.DatabaseDSN, validation.Required),
		validation.Field(&c.SecretKey, validation.Required, validation.Length(8, 0)),
		validation.Field(&c.AuthScheme, validation.Required),
		validation.Field(&c.TokenTTL, validation.Required),
	)
}
