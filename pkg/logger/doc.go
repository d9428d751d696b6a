// Package logger builds *slog.Logger instances from functional options and
// provides attribute helpers that keep key names consistent across the
// state machine, the persistence adapters and the HTTP transport.
//
// New picks a text or JSON handler, applies static attributes and wraps the
// result in a decorator that pulls extra attributes from context.Context on
// every record (for example a request id).
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "articles"),
//	    logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.DebugContext(ctx, "transition applied",
//	    logger.Transition("publish"),
//	    logger.FromState("draft"),
//	    logger.ToState("published"),
//	)
//
// FromConfig maps a Config (loadable from the environment with pkg/config)
// onto the same options.
//
// Error and Errors return an empty attribute for nil errors, which slog
// drops, so call sites need no nil checks.
package logger
