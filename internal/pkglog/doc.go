// Package pkglog configures the process-wide slog logger.
//
// Records logged with a context that carries a run id get a "run_id"
// attribute, so every line of one batch run can be grouped together.
package pkglog
