package core

import (
	"context"
	"log/slog"
	"os"
	"path"

	"github.com/encodeous/tint"
	"github.com/relaymesh/dtnsim/state"
	slogmulti "github.com/samber/slog-multi"
)

// NewLogger builds the simulator's logger: a tinted console handler on
// stderr, fanned out to a plain text handler on logPath when set.
func NewLogger(prefix string, level slog.Level, logPath string) (*slog.Logger, error) {
	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:        level,
			AddSource:    false,
			CustomPrefix: prefix,
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))

	if logPath != "" {
		err := os.MkdirAll(path.Dir(logPath), 0700)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0700)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(slogmulti.Fanout(handlers...)), nil
}

// NewEnv assembles the invocation environment shared by the CLI commands.
func NewEnv(settings state.Settings, log *slog.Logger) *state.Env {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &state.Env{
		Context:  ctx,
		Cancel:   cancel,
		Log:      log,
		Settings: settings,
	}
}
