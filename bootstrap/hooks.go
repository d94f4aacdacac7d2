package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a callback run by Shutdown.
type Hook func(ctx context.Context) error

// OnShutdown registers hooks that run at the start of Shutdown, in
// registration order, before the providers are flushed.
func (tk *Toolkit) OnShutdown(hooks ...Hook) {
	tk.onShutdown = append(tk.onShutdown, hooks...)
}

// runHooks executes hooks sequentially, returning the first error.
func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}
