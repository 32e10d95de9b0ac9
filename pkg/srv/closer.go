package srv

import (
	"context"
	"errors"
)

// closer is a Service with nothing to run. It releases resources once the
// other services have stopped, last registered first.
type closer struct {
	fns []func() error
}

func (c *closer) Start(ctx context.Context) error {
	return nil
}

func (c *closer) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func NewCloser(fns ...func() error) Service {
	return &closer{fns: fns}
}
