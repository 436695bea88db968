package notes

import (
	"time"

	"github.com/teamgrid/gateway/core/gateway"
	"github.com/teamgrid/gateway/core/router"
	"github.com/teamgrid/gateway/core/validator"
	"github.com/teamgrid/gateway/middleware"
	"github.com/teamgrid/gateway/pkg/ratelimiter"
)

// ValidatorNote names the payload validator for note writes.
const ValidatorNote = "note"

var groupLimit = ratelimiter.Limit{Window: time.Minute, MaxRequests: 120}

// ValidateNote checks a note write payload.
func ValidateNote(payload map[string]any) error {
	check := validator.NewCheck(payload)
	check.RequireString("title", 1, 200)
	check.String("body")
	return check.Err()
}

// Routes declares the HTTP note endpoints. All of them require an
// authenticated session.
func Routes(svc *Service) gateway.Node {
	return gateway.Group{
		Prefix:      "/notes",
		Middlewares: []string{middleware.NameRequireAuth},
		RateLimit:   &groupLimit,
		Children: []gateway.Node{
			gateway.Leaf{Method: router.GET, Path: "", Handler: svc.List},
			gateway.Leaf{Method: router.POST, Path: "", Handler: svc.Create, Validator: ValidatorNote},
			gateway.Leaf{Method: router.GET, Path: "/:id", Handler: svc.Get},
			gateway.Leaf{Method: router.PUT, Path: "/:id", Handler: svc.Update, Validator: ValidatorNote},
			gateway.Leaf{Method: router.DELETE, Path: "/:id", Handler: svc.Delete},
		},
	}
}

// EventRoutes declares the websocket note events. Tickets are only
// minted for authenticated sessions, but the auth middleware still runs
// per message: the session is revalidated on every event and could have
// been rotated to anonymous since the handshake.
func EventRoutes(svc *Service) gateway.Node {
	return gateway.Group{
		Middlewares: []string{middleware.NameRequireAuth},
		RateLimit:   &groupLimit,
		Children: []gateway.Node{
			gateway.Leaf{Method: router.MethodWS, Path: "note:list", Handler: svc.List},
			gateway.Leaf{Method: router.MethodWS, Path: "note:create", Handler: svc.Create, Validator: ValidatorNote},
			gateway.Leaf{Method: router.MethodWS, Path: "note:get", Handler: svc.Get},
			gateway.Leaf{Method: router.MethodWS, Path: "note:update", Handler: svc.Update, Validator: ValidatorNote},
			gateway.Leaf{Method: router.MethodWS, Path: "note:delete", Handler: svc.Delete},
		},
	}
}

// Validators returns the gateway options registering this package's
// payload validators under their route names.
func Validators() []gateway.Option {
	return []gateway.Option{
		gateway.WithValidator(ValidatorNote, ValidateNote),
	}
}
