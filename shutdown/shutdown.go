// Package shutdown turns termination signals into context cancellation.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/amp-labs/duesort/logger"
)

// Handler cancels a context when the process is asked to stop. Hooks
// registered with BeforeShutdown run once, before the context is canceled,
// while it is still usable.
type Handler struct {
	mut     sync.Mutex
	hooks   []func(context.Context)
	signals chan os.Signal
	once    sync.Once
}

// BeforeShutdown registers a hook run when a signal arrives or Trigger is called.
func (h *Handler) BeforeShutdown(f func(context.Context)) {
	h.mut.Lock()
	defer h.mut.Unlock()

	h.hooks = append(h.hooks, f)
}

// Listen returns a context canceled on SIGINT or SIGTERM. The returned
// stop function releases the signal handler and cancels the context.
func (h *Handler) Listen(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	h.signals = make(chan os.Signal, 1)
	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-h.signals:
			logger.Get(ctx).Warn("received signal, shutting down", "signal", sig.String())
			h.cleanup(ctx)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(h.signals)
		cancel()
	}
}

// Trigger starts the shutdown as if SIGINT had been received.
func (h *Handler) Trigger() {
	select {
	case h.signals <- os.Interrupt:
	default:
	}
}

func (h *Handler) cleanup(ctx context.Context) {
	h.once.Do(func() {
		h.mut.Lock()
		hooks := h.hooks
		h.hooks = nil
		h.mut.Unlock()

		for _, f := range hooks {
			f(ctx)
		}
	})
}
