// Package logger provides a structured logging facility based on Zap.
//
// The debug level selects zap's development configuration; every other
// level uses the production configuration at that level. Format selects
// console or json encoding.
//
// # Context Awareness
//
// WithRayID extracts the RayID from a Fiber context and attaches it to the
// log entry, so all logs of one request can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
