// Package server wraps http.Server with graceful shutdown, environment
// configuration, and errgroup-friendly lifecycle management.
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
package server
