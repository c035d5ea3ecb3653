// Package logger builds the service's slog logger.
//
// Records are written as JSON (or text with LOG_FORMAT=text) and enriched with
// request-scoped attributes through [ContextExtractor] functions, such as the
// request ID set by the middleware. When SENTRY_DSN is set, warnings and
// errors are also forwarded to Sentry; without it the logger only writes locally.
//
//	log, flush, err := logger.New(cfg.Log, os.Stdout, middlewares.RequestIDExtractor())
//	if err != nil {
//		return err
//	}
//	defer flush()
package logger
