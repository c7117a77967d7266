// Package logging provides structured logging for the zdb client.
//
// The package wraps a package-level zap logger. Logging is silent unless a
// level is requested with the --log-level flag or the ZDB_LOG_LEVEL
// environment variable, so the interactive prompt is never interleaved with
// log output by accident.
//
// # Log Levels
//
//   - Debug: frame hex/ASCII dumps, map parse statistics
//   - Info: connection events, session announcements
//   - Warn: retries, unresolved symbols in batch loads
//   - Error: fatal protocol failures
//
// # Usage
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
//	logging.Info("connected", zap.String("addr", addr))
//	logging.LogFrame(nil, "sent", payload)
//
// Components that accept a *zap.Logger should be given logging.GetLogger().
package logging
