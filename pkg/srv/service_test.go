package srv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingService struct {
	name  string
	order *[]string
	mu    *sync.Mutex
	stop  chan struct{}
}

func newBlocking(name string, order *[]string, mu *sync.Mutex) *blockingService {
	return &blockingService{name: name, order: order, mu: mu, stop: make(chan struct{})}
}

func (b *blockingService) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
	case <-b.stop:
	}
	return nil
}

func (b *blockingService) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	*b.order = append(*b.order, b.name)
	b.mu.Unlock()
	close(b.stop)
	return nil
}

type failingService struct{}

func (failingService) Start(context.Context) error    { return errors.New("port in use") }
func (failingService) Shutdown(context.Context) error { return nil }

func TestRun_ShutsDownInReverseOrder(t *testing.T) {
	var (
		order []string
		mu    sync.Mutex
	)
	ctx, cancel := context.WithCancel(context.Background())

	closed := false
	services := []Service{
		NewCloser(func() error { closed = true; return nil }),
		newBlocking("http", &order, &mu),
		newBlocking("telegram", &order, &mu),
	}

	done := make(chan error)
	go func() { done <- Run(ctx, services, time.Second) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}

	assert.Equal(t, []string{"telegram", "http"}, order)
	assert.True(t, closed)
}

func TestRun_StartFailureStopsEverything(t *testing.T) {
	var (
		order []string
		mu    sync.Mutex
	)
	services := []Service{newBlocking("http", &order, &mu), failingService{}}

	err := Run(context.Background(), services, time.Second)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "port in use")
	assert.Equal(t, []string{"http"}, order)
}

func TestCloser_ReverseOrderJoinsErrors(t *testing.T) {
	var order []string
	c := NewCloser(
		func() error { order = append(order, "db"); return nil },
		func() error { order = append(order, "cache"); return errors.New("cache busy") },
	)

	require.NoError(t, c.Start(context.Background()))
	err := c.Shutdown(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache busy")
	assert.Equal(t, []string{"cache", "db"}, order)
}
