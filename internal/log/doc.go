// Package log builds slog loggers that never write secrets.
//
// RedactingHandler wraps any slog.Handler and masks:
//   - values of sensitive keys (cookie, authorization, token, password, ...)
//   - secret-looking values (bearer and basic credentials, JWTs, AWS keys)
//   - sensitive query parameters and userinfo passwords in URL attributes
//     (url, target, final_url, ...)
//
// Per-site cookies and headers from the config file are sent with every
// request, and crawled links often carry session tokens, so masking applies
// at every level including Debug.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose, jsonFormat)
//	slog.SetDefault(logger)
package log
