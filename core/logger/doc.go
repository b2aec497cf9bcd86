// Package logger provides structured logging utilities built on Go's standard slog package.
//
// New builds a *slog.Logger from functional options: environment presets, output format,
// level, static attributes and context extractors. The attribute helpers are nil safe,
// so log.Error("msg", logger.Error(err)) needs no guard.
//
// # Basic Usage
//
//	log := logger.New(
//		logger.ForEnv(cfg.Env, cfg.AppName),
//		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
//	)
//
//	log.Info("login completed",
//		logger.Component("session"),
//		logger.Provider("google"),
//		logger.UserID(identity.ID),
//		logger.Result("success"),
//	)
//
// # Context-Aware Logging
//
// Extract attributes automatically from context values:
//
//	log := logger.New(
//		logger.WithProduction("authshell"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//
//	log.InfoContext(ctx, "session requested")
//	// {"level":"INFO","msg":"session requested","service":"authshell","env":"production","request_id":"req-1"}
//
// # Presets
//
//   - WithDevelopment: text format, debug level
//   - WithStaging: JSON format, info level
//   - WithProduction: JSON format, info level
//
// Components that accept a logger default to Nop() so they stay silent unless wired.
package logger
