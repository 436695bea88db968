package auth

import (
	"time"

	"github.com/teamgrid/gateway/core/gateway"
	"github.com/teamgrid/gateway/core/router"
	"github.com/teamgrid/gateway/middleware"
	"github.com/teamgrid/gateway/pkg/ratelimiter"
)

// Credential endpoints get tight per-route budgets to slow down
// brute-force attempts; the group budget covers the rest.
var (
	groupLimit    = ratelimiter.Limit{Window: time.Minute, MaxRequests: 60}
	loginLimit    = ratelimiter.Limit{Window: time.Minute, MaxRequests: 10}
	registerLimit = ratelimiter.Limit{Window: time.Minute, MaxRequests: 5}
)

// Routes declares the account endpoints.
func Routes(svc *Service) gateway.Node {
	return gateway.Group{
		Prefix:    "/auth",
		RateLimit: &groupLimit,
		Children: []gateway.Node{
			gateway.Leaf{
				Method:      router.POST,
				Path:        "/register",
				Handler:     svc.Register,
				Middlewares: []string{middleware.NameRequireGuest},
				Validator:   ValidatorRegister,
				RateLimit:   &registerLimit,
			},
			gateway.Leaf{
				Method:      router.POST,
				Path:        "/login",
				Handler:     svc.Login,
				Middlewares: []string{middleware.NameRequireGuest},
				Validator:   ValidatorCredentials,
				RateLimit:   &loginLimit,
			},
			gateway.Leaf{
				Method:      router.POST,
				Path:        "/logout",
				Handler:     svc.Logout,
				Middlewares: []string{middleware.NameRequireAuth},
			},
			gateway.Leaf{
				Method:      router.POST,
				Path:        "/logout-all",
				Handler:     svc.LogoutAll,
				Middlewares: []string{middleware.NameRequireAuth},
			},
			gateway.Leaf{
				Method:      router.GET,
				Path:        "/me",
				Handler:     svc.Me,
				Middlewares: []string{middleware.NameRequireAuth},
			},
			gateway.Leaf{
				Method:      router.POST,
				Path:        "/ws-ticket",
				Handler:     svc.WSTicket,
				Middlewares: []string{middleware.NameRequireAuth},
			},
		},
	}
}

// Validators returns the gateway options registering this package's
// payload validators under their route names.
func Validators() []gateway.Option {
	return []gateway.Option{
		gateway.WithValidator(ValidatorCredentials, ValidateCredentials),
		gateway.WithValidator(ValidatorRegister, ValidateRegister),
	}
}
