package state

import (
	"context"
	"log/slog"
)

// Env carries the cross-cutting context of one simulator invocation. It can
// be read from any goroutine; per-run mutable state never lives here.
type Env struct {
	Context context.Context
	Cancel  context.CancelCauseFunc
	Log     *slog.Logger
	Settings
}
