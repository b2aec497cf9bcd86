// Package shell is the composition root of authshell.
//
// NewApp loads Config from the environment, opens the backing store selected by
// STORE_DRIVER, builds the session container and exposes it over HTTP:
//
//	GET    /session           current state {user, isAuthenticated, loading, status}
//	POST   /session/login     {"provider":"google"}; ?async=true answers 202 immediately
//	POST   /session/logout
//	PATCH  /session/profile   partial identity
//	PUT    /session/location  {"latitude":..,"longitude":..}
//	GET    /session/events    server-sent stream of states
//	GET    /health/live
//	GET    /health/ready      runs the store healthcheck
//
// Run serves until the context is canceled:
//
//	app, err := shell.NewApp(ctx)
//	if err != nil {
//		return err
//	}
//	return app.Run(ctx)
package shell
