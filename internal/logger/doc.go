// Package logger wraps a process-wide zap SugaredLogger.
// Helpers take a context first so call sites read the same across packages,
// and the level can be changed at runtime once the configuration is loaded.
package logger
