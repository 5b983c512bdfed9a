package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())

	errA, errB := errors.New("a"), errors.New("b")
	err := errs.Add(errA).Aggregate()
	require.Equal(t, "a", err.Error())

	err = errs.Add(nil, errB).Aggregate()
	require.Equal(t, "Multiple errors:\na\nb", err.Error())
	require.True(t, errors.Is(err, errA))
	require.True(t, errors.Is(err, errB))
}

func TestCloseAll(t *testing.T) {
	var closed int
	ok := closerFunc(func() error { closed++; return nil })
	bad := closerFunc(func() error { closed++; return errors.New("bad") })

	require.NoError(t, CloseAll(ok, nil, ok))
	require.Equal(t, 2, closed)

	err := CloseAll(bad, ok, bad)
	require.Equal(t, 5, closed)
	var agg *AggregatedError
	require.True(t, errors.As(err, &agg))
	require.Len(t, agg.Errors, 2)
}

func TestRunner(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx)
	started := make(chan struct{}, 2)
	block := RunFunc(func(ctx context.Context) error {
		started <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	})
	r.Go(NamedRun("a", block), block)
	<-started
	<-started
	cancel()
	require.NoError(t, r.Wait())

	failure := errors.New("failed")
	r = NewRunner().Go(RunFunc(func(context.Context) error { return failure }))
	require.True(t, errors.Is(r.Wait(), failure))
}

func TestRunWithContextCloser(t *testing.T) {
	var closed int
	closer := closerFunc(func() error { closed++; return nil })

	require.NoError(t, RunWithContextCloser(context.Background(), closer, func() error { return nil }))
	require.Equal(t, 1, closed)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	unblock := make(chan struct{})
	err := RunWithContextCancel(ctx, func() { close(unblock) }, func() error {
		<-unblock
		return nil
	})
	require.Equal(t, context.Canceled, err)
}

func TestSignalContext(t *testing.T) {
	ctx, stop := SignalContext(context.Background())
	require.NoError(t, ctx.Err())
	stop()
	stop()
	require.Equal(t, context.Canceled, ctx.Err())
}
