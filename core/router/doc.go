// Package router compiles declarative route trees into flat dispatch tables.
//
// Routes are declared as nested Leaf and Group nodes. Groups contribute a
// path prefix, shared middlewares, and a default rate limit to everything
// beneath them; leaves declare a method, a path with optional :name
// placeholders, and their own middlewares, validator, and rate limit
// override. Compile walks the tree once at startup and produces a Table
// with every inherited attribute resolved, so request-time dispatch is a
// single lookup with no tree traversal.
//
//	table, err := router.Compile(
//		router.Group[H]{
//			Prefix:      "/api",
//			Middlewares: []string{"request_id"},
//			RateLimit:   &ratelimiter.Limit{Window: time.Minute, MaxRequests: 100},
//			Children: []router.Node[H]{
//				router.Leaf[H]{Method: router.GET, Path: "/notes/:id", Handler: getNote},
//				router.Leaf[H]{Method: router.MethodWS, Path: "note:create", Handler: createNote},
//			},
//		},
//	)
//
// Structural defects such as duplicate routes are compile errors, not
// runtime surprises.
package router
