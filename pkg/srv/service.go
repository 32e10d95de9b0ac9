package srv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/ragway/pkg/log"
)

const DefaultShutdownTimeout = 10 * time.Second

type Service interface {
	// Start blocks until the service stops or fails.
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Run starts every service and blocks until ctx is done or one of them fails.
// Services are then shut down in reverse order, each bounded by timeout.
func Run(ctx context.Context, services []Service, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	logger := log.FromCtx(ctx)

	g, gctx := errgroup.WithContext(ctx)
	for _, service := range services {
		g.Go(func() error {
			if err := service.Start(gctx); err != nil {
				return fmt.Errorf("%T failed to start: %w", service, err)
			}
			return nil
		})
	}

	// Start of a long-running service returns only on failure or shutdown,
	// so wait on the group context rather than g.Wait.
	<-gctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var errs []error
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msgf("%T failed to shutdown", services[i])
			errs = append(errs, err)
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		errs = append([]error{err}, errs...)
	}
	return errors.Join(errs...)
}
