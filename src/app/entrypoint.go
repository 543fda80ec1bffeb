package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

type Entrypoint interface {
	io.Closer
	Init(ctx context.Context) error
	Run(ctx context.Context) error
}

// Run drives an Entrypoint under SIGINT/SIGTERM: the workload and the
// shutdown watcher race in one errgroup, and Close always runs once Init has
// succeeded. A failed Init returns without calling Close.
func Run(ctx context.Context, e Entrypoint) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := e.Init(ctx); err != nil {
		return fmt.Errorf("entrypoint init error: %w", err)
	}

	eg, ctx := errgroup.WithContext(ctx)

	done := make(chan struct{})

	eg.Go(func() error {
		defer close(done)

		return e.Run(ctx)
	})

	eg.Go(func() error {
		select {
		case <-ctx.Done():
		case <-done:
		}

		return e.Close()
	})

	return eg.Wait()
}
