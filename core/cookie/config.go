package cookie

import "net/http"

// Config provides environment-based configuration for the session cookie.
type Config struct {
	Name     string        `env:"SESSION_COOKIE_NAME" envDefault:"sid"`
	Path     string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	Domain   string        `env:"SESSION_COOKIE_DOMAIN" envDefault:""`
	MaxAge   int           `env:"SESSION_COOKIE_MAX_AGE" envDefault:"0"`
	Secure   bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	SameSite http.SameSite `env:"SESSION_COOKIE_SAME_SITE" envDefault:"2"` // SameSiteLaxMode
}

// NewFromConfig creates a Manager from configuration. Explicit options
// override config values.
func NewFromConfig(cfg Config, opts ...Option) *Manager {
	configOpts := []Option{
		WithName(cfg.Name),
		WithPath(cfg.Path),
		WithDomain(cfg.Domain),
		WithMaxAge(cfg.MaxAge),
		WithSecure(cfg.Secure),
	}
	if cfg.SameSite != 0 {
		configOpts = append(configOpts, WithSameSite(cfg.SameSite))
	}
	configOpts = append(configOpts, opts...)
	return New(configOpts...)
}
