// Package cookie carries the signed session token between the browser and
// the gateway.
//
// The token is opaque at this layer: signing and verification happen in the
// token package, so the cookie manager only handles transport attributes
// (name, path, SameSite, Secure, MaxAge).
//
// # Usage
//
//	cookies := cookie.New(cookie.WithSecure(true))
//	cookies.Set(w, token)
//	tok, err := cookies.Read(r)
//	cookies.Clear(w)
//
// Configuration can be loaded from the environment:
//
//	cfg := config.MustLoad[cookie.Config]()
//	cookies := cookie.NewFromConfig(cfg)
package cookie
