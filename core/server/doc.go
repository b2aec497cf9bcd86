// Package server provides an HTTP server with graceful shutdown, functional options
// and environment configuration. It wraps the standard http.Server.
//
// # Basic Usage
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//	return g.Wait()
//
// Run returns a function suitable for errgroup: it serves until the context is
// canceled and then calls Stop, which waits up to the shutdown timeout for
// in-flight requests.
//
// # Configuration
//
//	HTTP_HOST              (default: 0.0.0.0)
//	HTTP_PORT              (default: 8080)
//	HTTP_READ_TIMEOUT      (default: 15s)
//	HTTP_WRITE_TIMEOUT     (default: 0s, disabled for event streams)
//	HTTP_IDLE_TIMEOUT      (default: 60s)
//	HTTP_SHUTDOWN_TIMEOUT  (default: 30s)
//	HTTP_MAX_HEADER_BYTES  (default: 1048576)
//	HTTP_TLS_CERT_FILE     (optional)
//	HTTP_TLS_KEY_FILE      (optional)
//
// Port 0 binds a random free port; Addr reports the bound address once started.
package server
