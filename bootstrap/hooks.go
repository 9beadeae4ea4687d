package bootstrap

import (
	"context"
	"errors"
	"fmt"
)

// Hook is a shutdown callback.
type Hook func(ctx context.Context) error

// OnStop registers hooks run during shutdown, last registered first.
func (a *App) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

func runStopHooks(ctx context.Context, hooks []Hook) error {
	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop hook %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
